package compact

import (
	"context"
	"encoding/json"

	"triptailor-backend/internal/cache"
	"triptailor-backend/internal/concurrency"
	"triptailor-backend/internal/domain"
	"triptailor-backend/internal/observability"
	"triptailor-backend/internal/repository"

	"go.uber.org/zap"
)

// Compactor resolves item ids against the item store and projects them.
// Lookups never fail: any error yields an empty summary for that id.
type Compactor struct {
	items   repository.ItemStore
	cache   cache.Cache
	metrics *observability.Collector
	logger  *zap.Logger
	limit   int
}

// NewCompactor creates a compactor. A nil cache disables caching; limit bounds
// parallel lookups in the batch methods.
func NewCompactor(items repository.ItemStore, c cache.Cache, metrics *observability.Collector, logger *zap.Logger, limit int) *Compactor {
	if c == nil {
		c = cache.Noop{}
	}
	return &Compactor{items: items, cache: c, metrics: metrics, logger: logger, limit: limit}
}

// Flight returns the summary of one flight.
func (c *Compactor) Flight(ctx context.Context, id string) domain.FlightSummary {
	var s domain.FlightSummary
	if c.cached(ctx, domain.KindFlight, id, &s) {
		return s
	}
	s = Flight(id, c.lookup(ctx, domain.KindFlight, id))
	if !s.IsEmpty() {
		c.store(ctx, domain.KindFlight, id, s)
	}
	return s
}

// Hotel returns the summary of one hotel offer.
func (c *Compactor) Hotel(ctx context.Context, id string) domain.HotelSummary {
	var s domain.HotelSummary
	if c.cached(ctx, domain.KindHotel, id, &s) {
		return s
	}
	s = Hotel(id, c.lookup(ctx, domain.KindHotel, id))
	if !s.IsEmpty() {
		c.store(ctx, domain.KindHotel, id, s)
	}
	return s
}

// Flights summarises ids in order with bounded parallel lookups.
func (c *Compactor) Flights(ctx context.Context, ids []string) []domain.FlightSummary {
	return concurrency.Map(ctx, ids, c.limit, c.Flight)
}

// Hotels summarises ids in order with bounded parallel lookups.
func (c *Compactor) Hotels(ctx context.Context, ids []string) []domain.HotelSummary {
	return concurrency.Map(ctx, ids, c.limit, c.Hotel)
}

func (c *Compactor) lookup(ctx context.Context, kind domain.ItemKind, id string) domain.Document {
	doc, err := c.items.Latest(ctx, kind, id)
	switch {
	case err == nil:
		c.metrics.ItemLookup(string(kind), "hit")
		return doc
	case repository.IsNotFound(err):
		c.metrics.ItemLookup(string(kind), "miss")
	default:
		c.metrics.ItemLookup(string(kind), "error")
		c.logger.Warn("item lookup failed, using empty summary",
			zap.String("kind", string(kind)), zap.String("id", id), zap.Error(err))
	}
	return nil
}

func cacheKey(kind domain.ItemKind, id string) string {
	return "summary:" + string(kind) + ":" + id
}

func (c *Compactor) cached(ctx context.Context, kind domain.ItemKind, id string, dst any) bool {
	b, ok, err := c.cache.Get(ctx, cacheKey(kind, id))
	if err != nil {
		c.logger.Warn("summary cache read failed", zap.String("id", id), zap.Error(err))
		return false
	}
	if ok && json.Unmarshal(b, dst) == nil {
		c.metrics.CacheResult(true)
		return true
	}
	c.metrics.CacheResult(false)
	return false
}

func (c *Compactor) store(ctx context.Context, kind domain.ItemKind, id string, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := c.cache.Set(ctx, cacheKey(kind, id), b); err != nil {
		c.logger.Warn("summary cache write failed", zap.String("id", id), zap.Error(err))
	}
}
