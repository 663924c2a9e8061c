// Package events publishes trip card changes to EventBridge and consumes
// booking confirmations.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"triptailor-backend/internal/domain"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge/types"
	"github.com/google/uuid"
)

const (
	// DetailTypeTripCardUpdated is emitted after every trip record write.
	DetailTypeTripCardUpdated = "TripCardUpdated"
	// DetailTypeBookingConfirmed is consumed by the booking events function.
	DetailTypeBookingConfirmed = "BookingConfirmed"
)

// EventBridgeAPI is the subset of the EventBridge client used here.
type EventBridgeAPI interface {
	PutEvents(ctx context.Context, params *eventbridge.PutEventsInput, optFns ...func(*eventbridge.Options)) (*eventbridge.PutEventsOutput, error)
}

// TripCardUpdated is the detail of a TripCardUpdated event.
type TripCardUpdated struct {
	EventID      string    `json:"event_id"`
	UserID       string    `json:"user_id"`
	ChatID       string    `json:"chat_id"`
	Destinations []string  `json:"destinations"`
	Dates        string    `json:"dates"`
	Flights      int       `json:"flights"`
	Hotels       int       `json:"hotels"`
	LastModified time.Time `json:"last_modified"`
}

// Publisher sends trip events to an event bus.
type Publisher struct {
	client EventBridgeAPI
	bus    string
	source string
}

// NewPublisher creates a publisher on bus with the given event source.
func NewPublisher(client EventBridgeAPI, bus, source string) *Publisher {
	if bus == "" {
		bus = "default"
	}
	if source == "" {
		source = "triptailor.trips"
	}
	return &Publisher{client: client, bus: bus, source: source}
}

// TripUpdated publishes a TripCardUpdated event for record.
func (p *Publisher) TripUpdated(ctx context.Context, record *domain.TripRecord) error {
	detail, err := json.Marshal(TripCardUpdated{
		EventID:      uuid.New().String(),
		UserID:       record.Key.UserID,
		ChatID:       record.Key.ChatID,
		Destinations: record.Destinations,
		Dates:        record.Dates,
		Flights:      record.Flights.Len(),
		Hotels:       record.Hotels.Len(),
		LastModified: record.LastModified,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	output, err := p.client.PutEvents(ctx, &eventbridge.PutEventsInput{
		Entries: []types.PutEventsRequestEntry{{
			EventBusName: aws.String(p.bus),
			Source:       aws.String(p.source),
			DetailType:   aws.String(DetailTypeTripCardUpdated),
			Detail:       aws.String(string(detail)),
			Resources:    []string{record.Key.String()},
		}},
	})
	if err != nil {
		return fmt.Errorf("failed to put events: %w", err)
	}
	if output.FailedEntryCount > 0 {
		return fmt.Errorf("%d events failed to publish", output.FailedEntryCount)
	}
	return nil
}
