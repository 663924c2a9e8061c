// Package compact projects flight and hotel provider documents into the small
// summaries shown to users and sent to the decision oracle.
package compact

import (
	"math"
	"strconv"
	"strings"
	"time"

	"triptailor-backend/internal/domain"
)

// Flight projects a flight offer. Missing fields stay empty.
func Flight(id string, doc domain.Document) domain.FlightSummary {
	s := domain.FlightSummary{ID: id}
	if len(doc) == 0 {
		return s
	}

	var itinerary domain.Document
	if its := doc.Maps("itineraries"); len(its) > 0 {
		itinerary = its[0]
	}
	segments := itinerary.Maps("segments")

	if codes := doc.List("validatingAirlineCodes"); len(codes) > 0 {
		s.Airline = domain.Stringify(codes[0])
	}
	if s.Airline == "" && len(segments) > 0 {
		s.Airline = segments[0].String("carrierCode")
	}

	if len(segments) > 0 {
		first, last := segments[0], segments[len(segments)-1]
		s.FlightNumber = strings.TrimSpace(first.String("carrierCode") + first.String("number"))

		points := []string{first.Map("departure").String("iataCode")}
		for _, seg := range segments {
			points = append(points, seg.Map("arrival").String("iataCode"))
		}
		s.Route = joinNonEmpty(points, " -> ")

		s.Departure = first.Map("departure").String("at")
		s.Arrival = last.Map("arrival").String("at")
	}

	s.Duration = humanDuration(itinerary.String("duration"))

	price := doc.Map("price")
	s.Price = strings.TrimSpace(price.String("total") + " " + price.String("currency"))
	return s
}

// Hotel projects a hotel offers document. Booked documents usually keep their
// payload under hotelPricingData.data; flat booked documents are read as is.
func Hotel(id string, doc domain.Document) domain.HotelSummary {
	s := domain.HotelSummary{ID: id}
	if len(doc) == 0 {
		return s
	}
	if doc.Truthy("booked") {
		doc = domain.BookedHotelPayload(doc)
	}

	hotel := doc.Map("hotel")
	var offer domain.Document
	if offers := doc.Maps("offers"); len(offers) > 0 {
		offer = offers[0]
	}

	s.HotelID = hotel.String("hotelId")
	s.Name = hotel.String("name")

	address := hotel.Map("address")
	city := address.String("cityName")
	if city == "" {
		city = hotel.String("cityCode")
	}
	s.Location = joinNonEmpty([]string{city, address.String("countryCode")}, ", ")

	price := offer.Map("price")
	total, currency := price.String("total"), price.String("currency")
	s.CheckIn = offer.String("checkInDate")
	s.CheckOut = offer.String("checkOutDate")

	if nights := nightsBetween(s.CheckIn, s.CheckOut); nights > 0 {
		s.Nights = strconv.Itoa(nights)
		if t, err := strconv.ParseFloat(total, 64); err == nil {
			perNight := math.Round(t/float64(nights)*100) / 100
			s.PricePerNight = strings.TrimSpace(strconv.FormatFloat(perNight, 'f', -1, 64) + " " + currency)
		}
	}
	s.OverallPrice = strings.TrimSpace(total + " " + currency)
	return s
}

// humanDuration turns an ISO-8601 duration like "PT2H30M" into "2h 30m".
func humanDuration(d string) string {
	if d == "" {
		return ""
	}
	d = strings.ReplaceAll(d, "PT", "")
	d = strings.ReplaceAll(d, "H", "h ")
	d = strings.ReplaceAll(d, "M", "m")
	return strings.TrimSpace(d)
}

func nightsBetween(in, out string) int {
	if in == "" || out == "" {
		return 0
	}
	a, err := time.Parse("2006-01-02", in)
	if err != nil {
		return 0
	}
	b, err := time.Parse("2006-01-02", out)
	if err != nil {
		return 0
	}
	return int(b.Sub(a).Hours() / 24)
}

func joinNonEmpty(parts []string, sep string) string {
	out := parts[:0:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, sep)
}
