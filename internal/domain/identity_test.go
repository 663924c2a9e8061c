package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sha(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

func flightOffer() Document {
	return Document{
		"itineraries": []any{
			map[string]any{"segments": []any{
				map[string]any{
					"departure":   map[string]any{"iataCode": "TLV", "at": "2024-03-15T08:00:00"},
					"arrival":     map[string]any{"iataCode": "ATH", "at": "2024-03-15T10:30:00"},
					"carrierCode": "A3",
					"number":      "929",
				},
			}},
			map[string]any{"segments": []any{
				map[string]any{
					"departure":   map[string]any{"iataCode": "ATH", "at": "2024-03-25T12:00:00"},
					"arrival":     map[string]any{"iataCode": "TLV", "at": "2024-03-25T14:10:00"},
					"carrierCode": "A3",
					"number":      "928",
				},
			}},
		},
	}
}

func TestFlightID(t *testing.T) {
	outbound := "TLV-ATH-2024-03-15T08:00:00-2024-03-15T10:30:00-A3-929"
	all := outbound + "|ATH-TLV-2024-03-25T12:00:00-2024-03-25T14:10:00-A3-928"

	id, err := FlightID(flightOffer(), false)
	require.NoError(t, err)
	assert.Equal(t, sha(outbound), id, "search results hash the outbound itinerary")

	booked, err := FlightID(flightOffer(), true)
	require.NoError(t, err)
	assert.Equal(t, sha(all+"_booked"), booked, "bookings hash every itinerary")
	assert.NotEqual(t, id, booked)

	_, err = FlightID(Document{}, false)
	assert.ErrorIs(t, err, ErrNoSegments)
}

func TestHotelOfferID(t *testing.T) {
	doc := Document{
		"hotel":  map[string]any{"hotelId": "HLATH123"},
		"offers": []any{map[string]any{"id": "OF1"}, map[string]any{"id": "OF2"}},
	}
	assert.Equal(t, sha("HLATH123|OF1|OF2"), HotelOfferID(doc))

	noIDs := Document{
		"hotel": map[string]any{"hotelId": "H"},
		"offers": []any{map[string]any{
			"checkInDate": "2024-03-15", "checkOutDate": "2024-03-18",
			"price": map[string]any{"total": "300.00"},
		}},
	}
	assert.Equal(t, sha("H|2024-03-15-2024-03-18-300.00"), HotelOfferID(noIDs))
	assert.Equal(t, sha("OF1_booked"), BookedHotelID("OF1"))
}

func TestTruthiness(t *testing.T) {
	for _, v := range []any{true, "yes", "true", 1.0, []any{1}, map[string]any{"a": 1}} {
		assert.True(t, IsTruthy(v), "%v", v)
	}
	for _, v := range []any{nil, false, "", "0", "false", 0.0, []any{}, map[string]any{}} {
		assert.False(t, IsTruthy(v), "%v", v)
	}
}

func TestDocumentNumber(t *testing.T) {
	d := Document{"a": "4", "b": 2.5, "c": "n/a", "d": []any{}}
	assert.Equal(t, 4.0, d.Number("a"))
	assert.Equal(t, 2.5, d.Number("b"))
	assert.Equal(t, 0.0, d.Number("c"))
	assert.Equal(t, 0.0, d.Number("d"))
	assert.Equal(t, 0.0, d.Number("missing"))
}
