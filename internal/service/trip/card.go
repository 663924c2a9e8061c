package trip

import (
	"context"

	"triptailor-backend/internal/domain"
	"triptailor-backend/internal/repository"
	appErrors "triptailor-backend/pkg/errors"
)

// FlightItem is a compacted flight with its trip status.
type FlightItem struct {
	domain.FlightSummary
	Status domain.Status `json:"status"`
}

// HotelItem is a compacted hotel with its trip status.
type HotelItem struct {
	domain.HotelSummary
	Status domain.Status `json:"status"`
}

// Card is the read model of a trip record.
type Card struct {
	Record  *domain.TripRecord
	Flights []FlightItem
	Hotels  []HotelItem
}

func (s *service) Card(ctx context.Context, key domain.TripKey) (*Card, error) {
	if err := key.Validate(); err != nil {
		return nil, appErrors.NewValidation(err.Error())
	}
	rec, err := s.Trips.Get(ctx, key)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, appErrors.NewNotFound("trip not found")
		}
		return nil, appErrors.Wrap(err, "failed to read trip")
	}

	flights := rec.Items(domain.KindFlight).Entries()
	hotels := rec.Items(domain.KindHotel).Entries()
	flightSummaries := s.Compactor.Flights(ctx, entryIDs(flights))
	hotelSummaries := s.Compactor.Hotels(ctx, entryIDs(hotels))

	card := &Card{
		Record:  rec,
		Flights: make([]FlightItem, len(flights)),
		Hotels:  make([]HotelItem, len(hotels)),
	}
	for i, e := range flights {
		summary := flightSummaries[i]
		summary.ID = e.ID
		card.Flights[i] = FlightItem{FlightSummary: summary, Status: e.Status}
	}
	for i, e := range hotels {
		summary := hotelSummaries[i]
		summary.ID = e.ID
		card.Hotels[i] = HotelItem{HotelSummary: summary, Status: e.Status}
	}
	return card, nil
}

func entryIDs(entries []domain.ItemEntry) []string {
	ids := make([]string, len(entries))
	for i, e := range entries {
		ids[i] = e.ID
	}
	return ids
}
