// Package trip reconciles conversation state into the persisted trip card.
package trip

import (
	"context"
	"time"

	"triptailor-backend/internal/concurrency"
	"triptailor-backend/internal/domain"
	"triptailor-backend/internal/observability"
	"triptailor-backend/internal/repository"
	"triptailor-backend/internal/service/oracle"
	"triptailor-backend/internal/service/status"
	appErrors "triptailor-backend/pkg/errors"

	"github.com/samber/lo"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

// KindInput is the per-kind part of a reconcile request.
type KindInput struct {
	Candidates []string
	Overrides  map[string]domain.Status
	Remap      map[string]string
}

// Input is one reconciliation request for a conversation.
type Input struct {
	Key     domain.TripKey
	Flights KindInput
	Hotels  KindInput
}

func (in Input) kind(k domain.ItemKind) KindInput {
	if k == domain.KindHotel {
		return in.Hotels
	}
	return in.Flights
}

// Decider is the decision oracle as seen by the reconciler.
type Decider interface {
	Decide(ctx context.Context, req oracle.Request) oracle.Result
}

// Summarizer compacts item ids into display summaries.
type Summarizer interface {
	Flights(ctx context.Context, ids []string) []domain.FlightSummary
	Hotels(ctx context.Context, ids []string) []domain.HotelSummary
}

// Publisher is notified after a trip record has been written.
type Publisher interface {
	TripUpdated(ctx context.Context, record *domain.TripRecord) error
}

// Service defines the trip card operations.
type Service interface {
	// Reconcile merges the turn into the stored record and writes it once.
	Reconcile(ctx context.Context, in Input) (*domain.TripRecord, error)

	// Card returns the stored record with compacted items.
	Card(ctx context.Context, key domain.TripKey) (*Card, error)

	// RemoveItem drops one item from the record.
	RemoveItem(ctx context.Context, key domain.TripKey, kind domain.ItemKind, id string) (*domain.TripRecord, error)

	// DeleteTrip removes the record. Deleting a missing record succeeds.
	DeleteTrip(ctx context.Context, key domain.TripKey) error
}

// Deps are the collaborators of the service. Publisher and Metrics are optional.
type Deps struct {
	Trips       repository.TripStore
	Items       repository.ItemStore
	Transcripts repository.TranscriptStore
	Compactor   Summarizer
	Oracle      Decider
	Publisher   Publisher
	Metrics     *observability.Collector
	Logger      *zap.Logger
}

type service struct {
	Deps
	limit int
	now   func() time.Time
}

// NewService creates the trip service. limit bounds parallel item lookups.
func NewService(deps Deps, limit int) Service {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if limit <= 0 {
		limit = 1
	}
	return &service{Deps: deps, limit: limit, now: time.Now}
}

func (s *service) Reconcile(ctx context.Context, in Input) (rec *domain.TripRecord, err error) {
	ctx, span := observability.Tracer().Start(ctx, "trip.Reconcile")
	defer span.End()
	start := s.now()
	defer func() {
		outcome := "ok"
		if err != nil {
			outcome = "failed"
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		s.Metrics.ObserveReconcile(outcome, time.Since(start))
	}()

	if err := in.Key.Validate(); err != nil {
		return nil, appErrors.NewValidation(err.Error())
	}
	span.SetAttributes(attribute.String("trip.key", in.Key.String()))

	prior, err := s.prior(ctx, in.Key)
	if err != nil {
		return nil, err
	}
	transcript, err := s.Transcripts.Messages(ctx, in.Key)
	if err != nil {
		return nil, appErrors.Wrap(err, "failed to read transcript")
	}

	existingFlights := prior.Items(domain.KindFlight).IDs()
	existingHotels := prior.Items(domain.KindHotel).IDs()
	verdict := s.Oracle.Decide(ctx, oracle.Request{
		Transcript: transcript,
		Flights:    s.Compactor.Flights(ctx, existingFlights),
		Hotels:     s.Compactor.Hotels(ctx, existingHotels),
	})

	next := prior.Clone()
	for _, kind := range domain.Kinds {
		items, err := s.merge(ctx, kind, prior.Items(kind), verdict.Decisions(kind), in.kind(kind))
		if err != nil {
			return nil, err
		}
		next.SetItems(kind, items)
	}

	if verdict.Outcome == oracle.Parsed {
		next.Destinations = lo.Uniq(verdict.Destinations)
		next.Dates = verdict.Dates
		next.Summary = verdict.Summary
	}
	next.LastModified = s.now().UTC()

	if err := s.Trips.Put(ctx, next); err != nil {
		return nil, appErrors.Wrap(err, "failed to save trip")
	}

	s.Logger.Info("trip reconciled",
		zap.String("trip", in.Key.String()),
		zap.String("oracle", verdict.Outcome.String()),
		zap.Int("flights", next.Flights.Len()),
		zap.Int("hotels", next.Hotels.Len()))
	s.publish(ctx, next)
	return next, nil
}

// prior loads the stored record. A missing record starts empty; any other
// read failure aborts so a transient error cannot wipe the card.
func (s *service) prior(ctx context.Context, key domain.TripKey) (*domain.TripRecord, error) {
	rec, err := s.Trips.Get(ctx, key)
	switch {
	case err == nil:
		return rec, nil
	case repository.IsNotFound(err):
		return domain.NewTripRecord(key), nil
	default:
		return nil, appErrors.Wrap(err, "failed to read trip")
	}
}

// merge runs the per-kind algorithm over one item collection.
func (s *service) merge(ctx context.Context, kind domain.ItemKind, prior *domain.ItemSet, decisions []domain.ItemDecision, in KindInput) (*domain.ItemSet, error) {
	existing := prior.IDs()
	removed := RemovedIDs(existing, decisions)
	s.Metrics.OracleRemoval(string(kind), len(removed))

	ids := ApplyDecisions(existing, decisions, in.Candidates)
	ids = lo.Uniq(append(ids, resurrectBooked(removed, in.Overrides, in.Remap)...))

	ids, carried := ApplyRemap(ids, prior.StatusMap(), in.Remap)
	overrides := RemapOverrides(in.Overrides, in.Remap)

	resolved := make([]domain.Status, len(ids))
	needsDoc := make([]bool, len(ids))
	for i, id := range ids {
		c, hasCarried := carried[id]
		o, hasOverride := overrides[id]
		resolved[i], needsDoc[i] = ResolveStatus(c, hasCarried, o, hasOverride)
	}

	err := concurrency.ForEach(ctx, len(ids), s.limit, func(ctx context.Context, i int) error {
		if needsDoc[i] {
			resolved[i] = s.infer(ctx, kind, ids[i], resolved[i])
		}
		return nil
	})
	if err != nil {
		return nil, appErrors.Wrap(err, "failed to resolve item statuses")
	}

	out := domain.NewItemSet()
	for i, id := range ids {
		out.Put(id, resolved[i])
		s.Metrics.ItemStatus(string(kind), string(resolved[i]))
	}
	return out, nil
}

// infer reads the latest document for id. Lookup failures read as unavailable.
func (s *service) infer(ctx context.Context, kind domain.ItemKind, id string, hint domain.Status) domain.Status {
	doc, err := s.Items.Latest(ctx, kind, id)
	switch {
	case err == nil:
		s.Metrics.ItemLookup(string(kind), "hit")
		return status.Infer(kind, doc, hint)
	case repository.IsNotFound(err):
		s.Metrics.ItemLookup(string(kind), "miss")
	default:
		s.Metrics.ItemLookup(string(kind), "error")
		s.Logger.Warn("item lookup failed, marking unavailable",
			zap.String("kind", string(kind)), zap.String("id", id), zap.Error(err))
	}
	return domain.StatusUnavailable
}

func (s *service) publish(ctx context.Context, rec *domain.TripRecord) {
	if s.Publisher == nil {
		return
	}
	if err := s.Publisher.TripUpdated(ctx, rec); err != nil {
		s.Logger.Warn("failed to publish trip update", zap.String("trip", rec.Key.String()), zap.Error(err))
	}
}

func (s *service) RemoveItem(ctx context.Context, key domain.TripKey, kind domain.ItemKind, id string) (*domain.TripRecord, error) {
	if err := key.Validate(); err != nil {
		return nil, appErrors.NewValidation(err.Error())
	}
	if id == "" {
		return nil, appErrors.NewValidation("item id is required")
	}

	rec, err := s.Trips.Get(ctx, key)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, appErrors.NewNotFound("trip not found")
		}
		return nil, appErrors.Wrap(err, "failed to read trip")
	}
	if !rec.Items(kind).Remove(id) {
		return nil, appErrors.NewNotFound(string(kind) + " not found in trip")
	}
	rec.LastModified = s.now().UTC()

	if err := s.Trips.Put(ctx, rec); err != nil {
		return nil, appErrors.Wrap(err, "failed to save trip")
	}
	s.Logger.Info("trip item removed",
		zap.String("trip", key.String()), zap.String("kind", string(kind)), zap.String("id", id))
	s.publish(ctx, rec)
	return rec, nil
}

func (s *service) DeleteTrip(ctx context.Context, key domain.TripKey) error {
	if err := key.Validate(); err != nil {
		return appErrors.NewValidation(err.Error())
	}
	if err := s.Trips.Delete(ctx, key); err != nil && !repository.IsNotFound(err) {
		return appErrors.Wrap(err, "failed to delete trip")
	}
	return nil
}
