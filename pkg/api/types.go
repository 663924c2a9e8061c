package api

import "triptailor-backend/internal/domain"

// ErrorResponse is the body of every error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// ReconcileRequest is the body of POST /api/trips/{chatId}/reconcile. The
// user id comes from the authorizer and the chat id from the path.
type ReconcileRequest struct {
	FlightIDs       []string          `json:"flight_ids" validate:"omitempty,max=200,dive,required"`
	HotelIDs        []string          `json:"hotel_ids" validate:"omitempty,max=200,dive,required"`
	FlightStatuses  map[string]string `json:"flight_statuses" validate:"omitempty,dive,keys,required,endkeys,required"`
	HotelStatuses   map[string]string `json:"hotel_statuses" validate:"omitempty,dive,keys,required,endkeys,required"`
	FlightIDMapping map[string]string `json:"flight_id_mapping" validate:"omitempty,dive,keys,required,endkeys,required"`
	HotelIDMapping  map[string]string `json:"hotel_id_mapping" validate:"omitempty,dive,keys,required,endkeys,required"`
}

// TripInfo is the metadata part of a trip card.
type TripInfo struct {
	UserAndChatID string   `json:"user_and_chat_id"`
	LastModified  string   `json:"last_modified"`
	Destinations  []string `json:"destinations"`
	Dates         string   `json:"dates"`
	Summary       string   `json:"summary"`
}

// ItemStatus is one [id, status] pair of a trip record.
type ItemStatus struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// TripRecordResponse is returned by write endpoints.
type TripRecordResponse struct {
	Trip    TripInfo     `json:"trip"`
	Flights []ItemStatus `json:"flights"`
	Hotels  []ItemStatus `json:"hotels"`
}

// FlightCardItem is a compacted flight with its status.
type FlightCardItem struct {
	domain.FlightSummary
	Status string `json:"status"`
}

// HotelCardItem is a compacted hotel with its status.
type HotelCardItem struct {
	domain.HotelSummary
	Status string `json:"status"`
}

// TripCardResponse is returned by GET /api/trips/{chatId}.
type TripCardResponse struct {
	Trip    TripInfo         `json:"trip"`
	Flights []FlightCardItem `json:"flights"`
	Hotels  []HotelCardItem  `json:"hotels"`
}

// HealthResponse is returned by /health.
type HealthResponse struct {
	Status      string `json:"status"`
	Environment string `json:"environment"`
}

// RecordItemRequest is the body of POST /api/items/{kind}.
type RecordItemRequest struct {
	Document map[string]any `json:"document" validate:"required"`
	Booked   bool           `json:"booked"`
}

// RecordItemResponse reports the identifier a document was stored under.
type RecordItemResponse struct {
	ID      string `json:"id"`
	Kind    string `json:"kind"`
	Created bool   `json:"created"`
}
