package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

const bookedSuffix = "_booked"

// ErrNoSegments is returned when a flight offer carries no segments to hash.
var ErrNoSegments = errors.New("flight offer has no segments")

// FlightID derives the content identifier of a flight offer. Search results
// hash the segments of the outbound itinerary only; booked offers hash every
// segment of every itinerary plus a suffix, so the tentative and confirmed
// versions never collide.
func FlightID(offer Document, booked bool) (string, error) {
	itineraries := offer.Maps("itineraries")
	if !booked && len(itineraries) > 1 {
		itineraries = itineraries[:1]
	}

	var sigs []string
	for _, it := range itineraries {
		for _, seg := range it.Maps("segments") {
			dep, arr := seg.Map("departure"), seg.Map("arrival")
			sigs = append(sigs, fmt.Sprintf("%s-%s-%s-%s-%s-%s",
				dep.String("iataCode"), arr.String("iataCode"),
				dep.String("at"), arr.String("at"),
				seg.String("carrierCode"), seg.String("number")))
		}
	}
	if len(sigs) == 0 {
		return "", ErrNoSegments
	}
	sig := strings.Join(sigs, "|")
	if booked {
		sig += bookedSuffix
	}
	return hashHex(sig), nil
}

// HotelOfferID derives the content identifier of a hotel offers document from
// the hotel id and its offer ids. Offers without ids contribute their dates
// and total price instead.
func HotelOfferID(doc Document) string {
	hotelID := doc.Map("hotel").String("hotelId")
	offers := doc.Maps("offers")

	var offerIDs []string
	for _, o := range offers {
		if id := o.String("id"); id != "" {
			offerIDs = append(offerIDs, id)
		}
	}
	if len(offerIDs) > 0 {
		return hashHex(hotelID + "|" + strings.Join(offerIDs, "|"))
	}

	parts := []string{hotelID}
	for _, o := range offers {
		parts = append(parts, fmt.Sprintf("%s-%s-%s",
			o.String("checkInDate"), o.String("checkOutDate"), o.Map("price").String("total")))
	}
	return hashHex(strings.Join(parts, "|"))
}

// BookedHotelID derives the identifier of a confirmed hotel booking from the
// provider offer id.
func BookedHotelID(offerID string) string {
	return hashHex(offerID + bookedSuffix)
}

// BookedHotelPayload returns the hotel/offers object of a booked hotel
// document: hotelPricingData.data when present, otherwise doc itself.
func BookedHotelPayload(doc Document) Document {
	if data := doc.Map("hotelPricingData").Map("data"); len(data) > 0 {
		return data
	}
	return doc
}

func hashHex(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}
