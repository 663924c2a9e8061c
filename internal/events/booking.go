package events

import (
	"context"
	"encoding/json"
	"fmt"

	"triptailor-backend/internal/domain"
	"triptailor-backend/internal/service/trip"
	appErrors "triptailor-backend/pkg/errors"

	lambdaevents "github.com/aws/aws-lambda-go/events"
	"go.uber.org/zap"
)

// BookingConfirmed announces that a tentative item was booked under a new id.
type BookingConfirmed struct {
	UserID     string `json:"user_id"`
	ChatID     string `json:"chat_id"`
	Kind       string `json:"kind"`
	OriginalID string `json:"original_id"`
	BookedID   string `json:"booked_id"`
}

// Input translates the booking into a reconciliation: the booked id is a
// candidate marked booked, and the original id is renamed to it. The booked
// id lands on the card even when the original is not there.
func (b BookingConfirmed) Input() (trip.Input, error) {
	key := domain.TripKey{UserID: b.UserID, ChatID: b.ChatID}
	if err := key.Validate(); err != nil {
		return trip.Input{}, appErrors.NewValidation(err.Error())
	}
	kind, err := domain.ParseItemKind(b.Kind)
	if err != nil {
		return trip.Input{}, appErrors.NewValidation(err.Error())
	}
	if b.BookedID == "" {
		return trip.Input{}, appErrors.NewValidation("booked_id is required")
	}

	ki := trip.KindInput{
		Candidates: []string{b.BookedID},
		Overrides:  map[string]domain.Status{b.BookedID: domain.StatusBooked},
	}
	if b.OriginalID != "" && b.OriginalID != b.BookedID {
		ki.Remap = map[string]string{b.OriginalID: b.BookedID}
	}

	in := trip.Input{Key: key}
	if kind == domain.KindHotel {
		in.Hotels = ki
	} else {
		in.Flights = ki
	}
	return in, nil
}

// BookingHandler reconciles trips on BookingConfirmed events.
type BookingHandler struct {
	trips  trip.Service
	logger *zap.Logger
}

// NewBookingHandler creates a handler for booking events.
func NewBookingHandler(trips trip.Service, logger *zap.Logger) *BookingHandler {
	return &BookingHandler{trips: trips, logger: logger}
}

// Handle processes one event. Malformed events are logged and dropped;
// other failures are returned so EventBridge retries the delivery.
func (h *BookingHandler) Handle(ctx context.Context, event lambdaevents.EventBridgeEvent) error {
	if event.DetailType != DetailTypeBookingConfirmed {
		h.logger.Debug("ignoring event", zap.String("detail_type", event.DetailType))
		return nil
	}

	var detail BookingConfirmed
	if err := json.Unmarshal(event.Detail, &detail); err != nil {
		h.logger.Error("could not unmarshal booking event", zap.String("event_id", event.ID), zap.Error(err))
		return nil
	}
	in, err := detail.Input()
	if err != nil {
		h.logger.Error("invalid booking event", zap.String("event_id", event.ID), zap.Error(err))
		return nil
	}

	rec, err := h.trips.Reconcile(ctx, in)
	if err != nil {
		if appErrors.IsValidation(err) {
			h.logger.Error("booking event rejected", zap.String("event_id", event.ID), zap.Error(err))
			return nil
		}
		return fmt.Errorf("reconcile booking %s: %w", event.ID, err)
	}

	h.logger.Info("booking applied to trip",
		zap.String("trip", rec.Key.String()),
		zap.String("kind", detail.Kind),
		zap.String("booked_id", detail.BookedID))
	return nil
}
