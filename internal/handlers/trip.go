package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"triptailor-backend/internal/domain"
	"triptailor-backend/internal/service/trip"
	"triptailor-backend/pkg/api"
	appErrors "triptailor-backend/pkg/errors"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// TripHandler handles trip card requests.
type TripHandler struct {
	trips    trip.Service
	validate *validator.Validate
	logger   *zap.Logger
}

// NewTripHandler creates a trip handler.
func NewTripHandler(trips trip.Service, logger *zap.Logger) *TripHandler {
	return &TripHandler{trips: trips, validate: validator.New(), logger: logger}
}

func (h *TripHandler) tripKey(w http.ResponseWriter, r *http.Request) (domain.TripKey, bool) {
	userID, ok := getUserID(r)
	if !ok {
		api.Error(w, http.StatusUnauthorized, "Authentication required")
		return domain.TripKey{}, false
	}
	return domain.TripKey{UserID: userID, ChatID: chi.URLParam(r, "chatId")}, true
}

// GetTrip handles GET /api/trips/{chatId}
func (h *TripHandler) GetTrip(w http.ResponseWriter, r *http.Request) {
	key, ok := h.tripKey(w, r)
	if !ok {
		return
	}
	card, err := h.trips.Card(r.Context(), key)
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	resp := api.TripCardResponse{
		Trip:    tripInfo(card.Record),
		Flights: make([]api.FlightCardItem, 0, len(card.Flights)),
		Hotels:  make([]api.HotelCardItem, 0, len(card.Hotels)),
	}
	for _, f := range card.Flights {
		resp.Flights = append(resp.Flights, api.FlightCardItem{FlightSummary: f.FlightSummary, Status: string(f.Status)})
	}
	for _, hotel := range card.Hotels {
		resp.Hotels = append(resp.Hotels, api.HotelCardItem{HotelSummary: hotel.HotelSummary, Status: string(hotel.Status)})
	}
	api.Success(w, http.StatusOK, resp)
}

// Reconcile handles POST /api/trips/{chatId}/reconcile
func (h *TripHandler) Reconcile(w http.ResponseWriter, r *http.Request) {
	key, ok := h.tripKey(w, r)
	if !ok {
		return
	}
	var req api.ReconcileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		api.Error(w, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}

	flightOverrides, err := parseOverrides(req.FlightStatuses)
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}
	hotelOverrides, err := parseOverrides(req.HotelStatuses)
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	rec, err := h.trips.Reconcile(r.Context(), trip.Input{
		Key:     key,
		Flights: trip.KindInput{Candidates: req.FlightIDs, Overrides: flightOverrides, Remap: req.FlightIDMapping},
		Hotels:  trip.KindInput{Candidates: req.HotelIDs, Overrides: hotelOverrides, Remap: req.HotelIDMapping},
	})
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}
	api.Success(w, http.StatusOK, recordResponse(rec))
}

// RemoveItem handles DELETE /api/trips/{chatId}/{kind}/{itemId}
func (h *TripHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	key, ok := h.tripKey(w, r)
	if !ok {
		return
	}
	kind, err := domain.ParseItemKind(chi.URLParam(r, "kind"))
	if err != nil {
		api.Error(w, http.StatusNotFound, "Unknown item kind")
		return
	}

	rec, err := h.trips.RemoveItem(r.Context(), key, kind, chi.URLParam(r, "itemId"))
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}
	api.Success(w, http.StatusOK, recordResponse(rec))
}

// DeleteTrip handles DELETE /api/trips/{chatId}
func (h *TripHandler) DeleteTrip(w http.ResponseWriter, r *http.Request) {
	key, ok := h.tripKey(w, r)
	if !ok {
		return
	}
	if err := h.trips.DeleteTrip(r.Context(), key); err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}
	api.NoContent(w)
}

func parseOverrides(in map[string]string) (map[string]domain.Status, error) {
	if len(in) == 0 {
		return nil, nil
	}
	out := make(map[string]domain.Status, len(in))
	for id, raw := range in {
		st, ok := domain.ParseStatus(raw)
		if !ok {
			return nil, appErrors.NewValidation("unknown status " + raw + " for item " + id)
		}
		out[id] = st
	}
	return out, nil
}

func tripInfo(rec *domain.TripRecord) api.TripInfo {
	info := api.TripInfo{
		UserAndChatID: rec.Key.String(),
		Destinations:  rec.Destinations,
		Dates:         rec.Dates,
		Summary:       rec.Summary,
	}
	if info.Destinations == nil {
		info.Destinations = []string{}
	}
	if !rec.LastModified.IsZero() {
		info.LastModified = rec.LastModified.UTC().Format(time.RFC3339)
	}
	return info
}

func recordResponse(rec *domain.TripRecord) api.TripRecordResponse {
	return api.TripRecordResponse{
		Trip:    tripInfo(rec),
		Flights: itemStatuses(rec.Items(domain.KindFlight)),
		Hotels:  itemStatuses(rec.Items(domain.KindHotel)),
	}
}

func itemStatuses(set *domain.ItemSet) []api.ItemStatus {
	out := make([]api.ItemStatus, 0, set.Len())
	for _, e := range set.Entries() {
		out = append(out, api.ItemStatus{ID: e.ID, Status: string(e.Status)})
	}
	return out
}
