package status

import (
	"testing"

	"triptailor-backend/internal/domain"

	"github.com/stretchr/testify/assert"
)

func TestInferFlight(t *testing.T) {
	routed := []any{map[string]any{"segments": []any{map[string]any{"number": "1"}}}}

	tests := []struct {
		name     string
		doc      domain.Document
		existing domain.Status
		want     domain.Status
	}{
		{name: "existing booked wins", doc: domain.Document{}, existing: domain.StatusBooked, want: domain.StatusBooked},
		{name: "booked flag", doc: domain.Document{"booked": true}, want: domain.StatusBooked},
		{name: "booked string flag", doc: domain.Document{"isBooked": "true"}, want: domain.StatusBooked},
		{name: "reservation id", doc: domain.Document{"reservationId": "R-1"}, want: domain.StatusBooked},
		{name: "false flag ignored", doc: domain.Document{"booked": "false", "numberOfBookableSeats": 2.0}, want: domain.StatusAvailable},
		{name: "seats", doc: domain.Document{"numberOfBookableSeats": 3.0}, want: domain.StatusAvailable},
		{name: "seats as string", doc: domain.Document{"numberOfBookableSeats": "3"}, want: domain.StatusAvailable},
		{name: "zero seats without pricing", doc: domain.Document{"numberOfBookableSeats": 0.0, "itineraries": routed}, want: domain.StatusUnavailable},
		{name: "pricing and routing", doc: domain.Document{"price": map[string]any{"total": "1"}, "itineraries": routed}, want: domain.StatusAvailable},
		{name: "traveler pricing and routing", doc: domain.Document{"travelerPricings": []any{1.0}, "itineraries": routed}, want: domain.StatusAvailable},
		{name: "pricing without segments", doc: domain.Document{"price": map[string]any{"total": "1"}, "itineraries": []any{map[string]any{}}}, want: domain.StatusUnavailable},
		{name: "empty document", doc: domain.Document{}, want: domain.StatusUnavailable},
		{name: "nil document", doc: nil, existing: domain.StatusAvailable, want: domain.StatusUnavailable},
		{name: "mistyped fields", doc: domain.Document{"itineraries": "x", "price": "", "numberOfBookableSeats": []any{}}, want: domain.StatusUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Infer(domain.KindFlight, tt.doc, tt.existing))
		})
	}
}

func TestInferHotel(t *testing.T) {
	tests := []struct {
		name     string
		doc      domain.Document
		existing domain.Status
		want     domain.Status
	}{
		{name: "existing booked wins", doc: domain.Document{"available": false}, existing: domain.StatusBooked, want: domain.StatusBooked},
		{name: "booked flag", doc: domain.Document{"booked": true, "available": false}, want: domain.StatusBooked},
		{name: "explicit available", doc: domain.Document{"available": true}, want: domain.StatusAvailable},
		{name: "explicit unavailable beats offers", doc: domain.Document{"available": false, "offers": []any{1.0}}, want: domain.StatusUnavailable},
		{name: "non-bool flag falls through", doc: domain.Document{"available": "no", "offers": []any{1.0}}, want: domain.StatusAvailable},
		{name: "single offer", doc: domain.Document{"offer": map[string]any{"id": "x"}}, want: domain.StatusAvailable},
		{name: "no offers", doc: domain.Document{"offers": []any{}}, want: domain.StatusUnavailable},
		{name: "nil document", doc: nil, want: domain.StatusUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Infer(domain.KindHotel, tt.doc, tt.existing))
		})
	}
}
