// Package item records provider documents in the item store under their
// content-derived identifiers.
package item

import (
	"context"
	"errors"

	"triptailor-backend/internal/domain"
	"triptailor-backend/internal/repository"
	appErrors "triptailor-backend/pkg/errors"

	"go.uber.org/zap"
)

// Recorded is the outcome of storing one document.
type Recorded struct {
	ID      string
	Kind    domain.ItemKind
	Created bool
}

// Service writes item documents.
type Service struct {
	items  repository.ItemStore
	logger *zap.Logger
}

// NewService creates an item service.
func NewService(items repository.ItemStore, logger *zap.Logger) *Service {
	return &Service{items: items, logger: logger}
}

// Record stores doc and returns its identifier. Items are immutable: when the
// id already exists the stored version is kept and Created is false.
func (s *Service) Record(ctx context.Context, kind domain.ItemKind, doc domain.Document, booked bool) (Recorded, error) {
	if len(doc) == 0 {
		return Recorded{}, appErrors.NewValidation("document is required")
	}
	id, err := Identify(kind, doc, booked)
	if err != nil {
		return Recorded{}, err
	}

	stored := doc
	if booked && !doc.Truthy("booked") {
		stored = make(domain.Document, len(doc)+1)
		for k, v := range doc {
			stored[k] = v
		}
		stored["booked"] = true
	}

	err = s.items.Put(ctx, kind, id, stored)
	switch {
	case err == nil:
		s.logger.Debug("item recorded", zap.String("kind", string(kind)), zap.String("id", id), zap.Bool("booked", booked))
		return Recorded{ID: id, Kind: kind, Created: true}, nil
	case repository.IsConflict(err):
		return Recorded{ID: id, Kind: kind}, nil
	default:
		return Recorded{}, appErrors.Wrap(err, "failed to store "+string(kind))
	}
}

// Identify derives the item identifier of a provider document. Booked hotels
// are identified by their offer id, read from the booking pricing payload
// when present.
func Identify(kind domain.ItemKind, doc domain.Document, booked bool) (string, error) {
	if kind == domain.KindFlight {
		id, err := domain.FlightID(doc, booked)
		if errors.Is(err, domain.ErrNoSegments) {
			return "", appErrors.NewValidation(err.Error())
		}
		return id, err
	}

	if !booked {
		return domain.HotelOfferID(doc), nil
	}
	var offerID string
	if offers := domain.BookedHotelPayload(doc).Maps("offers"); len(offers) > 0 {
		offerID = offers[0].String("id")
	}
	if offerID == "" {
		return "", appErrors.NewValidation("booked hotel document has no offer id")
	}
	return domain.BookedHotelID(offerID), nil
}
