// Package status derives item lifecycle statuses from provider documents.
package status

import "triptailor-backend/internal/domain"

// bookingMarkers are document keys whose truthy value means the item is booked.
var bookingMarkers = []string{"booked", "isBooked", "reservationId"}

// Infer returns the status of an item document. An existing booked status is
// kept unconditionally; unexpected shapes read as unavailable.
func Infer(kind domain.ItemKind, doc domain.Document, existing domain.Status) domain.Status {
	if existing.IsBooked() {
		return domain.StatusBooked
	}
	if hasBookingMarker(doc) {
		return domain.StatusBooked
	}
	if kind == domain.KindHotel {
		return inferHotel(doc)
	}
	return inferFlight(doc)
}

func hasBookingMarker(doc domain.Document) bool {
	for _, k := range bookingMarkers {
		if doc.Truthy(k) {
			return true
		}
	}
	return false
}

// inferFlight: bookable seats, or pricing plus at least one itinerary with
// segments, mean available.
func inferFlight(doc domain.Document) domain.Status {
	if doc.Number("numberOfBookableSeats") > 0 {
		return domain.StatusAvailable
	}
	hasPricing := doc.Truthy("price") || doc.Truthy("travelerPricings")
	hasRouting := false
	for _, it := range doc.Maps("itineraries") {
		if len(it.List("segments")) > 0 {
			hasRouting = true
			break
		}
	}
	if hasPricing && hasRouting {
		return domain.StatusAvailable
	}
	return domain.StatusUnavailable
}

// inferHotel: an explicit boolean availability flag decides; otherwise any
// offer means available.
func inferHotel(doc domain.Document) domain.Status {
	if avail, ok := doc["available"].(bool); ok {
		if avail {
			return domain.StatusAvailable
		}
		return domain.StatusUnavailable
	}
	if doc.Truthy("offers") || doc.Truthy("offer") {
		return domain.StatusAvailable
	}
	return domain.StatusUnavailable
}
