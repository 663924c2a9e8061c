package trip

import (
	"context"
	"errors"
	"testing"
	"time"

	"triptailor-backend/internal/domain"
	"triptailor-backend/internal/observability"
	"triptailor-backend/internal/repository/memory"
	"triptailor-backend/internal/service/compact"
	"triptailor-backend/internal/service/oracle"
	appErrors "triptailor-backend/pkg/errors"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var testKey = domain.TripKey{UserID: "user-1", ChatID: "chat-1"}

// stubDecider returns a fixed result and records requests.
type stubDecider struct {
	result   oracle.Result
	requests []oracle.Request
}

func (s *stubDecider) Decide(_ context.Context, req oracle.Request) oracle.Result {
	s.requests = append(s.requests, req)
	return s.result
}

type mockDecider struct {
	mock.Mock
}

func (m *mockDecider) Decide(ctx context.Context, req oracle.Request) oracle.Result {
	args := m.Called(ctx, req)
	return args.Get(0).(oracle.Result)
}

type recordingPublisher struct {
	records []*domain.TripRecord
	err     error
}

func (p *recordingPublisher) TripUpdated(_ context.Context, rec *domain.TripRecord) error {
	p.records = append(p.records, rec)
	return p.err
}

type fixture struct {
	trips       *memory.TripStore
	items       *memory.ItemStore
	transcripts *memory.TranscriptStore
	decider     *stubDecider
	publisher   *recordingPublisher
	metrics     *observability.Collector
	svc         *service
}

var (
	availableFlight   = domain.Document{"numberOfBookableSeats": 4}
	unavailableFlight = domain.Document{"itineraries": []any{}}
)

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		trips:       memory.NewTripStore(),
		items:       memory.NewItemStore(),
		transcripts: memory.NewTranscriptStore(),
		decider:     &stubDecider{result: oracle.NoDecision()},
		publisher:   &recordingPublisher{},
		metrics:     observability.NewCollector("test"),
	}
	f.svc = f.build(f.decider)
	return f
}

func (f *fixture) build(d Decider) *service {
	svc := NewService(Deps{
		Trips:       f.trips,
		Items:       f.items,
		Transcripts: f.transcripts,
		Compactor:   compact.NewCompactor(f.items, nil, f.metrics, zap.NewNop(), 2),
		Oracle:      d,
		Publisher:   f.publisher,
		Metrics:     f.metrics,
		Logger:      zap.NewNop(),
	}, 3).(*service)
	svc.now = func() time.Time { return time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC) }
	return svc
}

func (f *fixture) seed(t *testing.T, flights, hotels map[string]domain.Status) {
	t.Helper()
	rec := domain.NewTripRecord(testKey)
	rec.Destinations = []string{"Tokyo"}
	rec.Dates = "Mar 1, 2025 - Mar 9, 2025"
	rec.Summary = "You are visiting Tokyo."
	for id, st := range flights {
		rec.Flights.Put(id, st)
	}
	for id, st := range hotels {
		rec.Hotels.Put(id, st)
	}
	require.NoError(t, f.trips.Put(context.Background(), rec))
}

func parsed(flights ...domain.ItemDecision) oracle.Result {
	return oracle.Result{Outcome: oracle.Parsed, Destinations: []string{}, FlightDecisions: flights}
}

func TestReconcileRemovesRejectedFlight(t *testing.T) {
	f := newFixture(t)
	f.seed(t, map[string]domain.Status{"F1": domain.StatusAvailable}, nil)
	f.items.AddVersion(domain.KindFlight, "F1", availableFlight)
	f.transcripts.Append(testKey, domain.Message{Role: "user", Content: "remove F1"})
	f.decider.result = parsed(remove("F1"))

	rec, err := f.svc.Reconcile(context.Background(), Input{Key: testKey})
	require.NoError(t, err)

	assert.Equal(t, 0, rec.Flights.Len())
	require.Len(t, f.decider.requests, 1)
	assert.Equal(t, "F1", f.decider.requests[0].Flights[0].ID)
	assert.Equal(t, "remove F1", f.decider.requests[0].Transcript[0].Content)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.OracleRemovals.WithLabelValues("flight")))
}

func TestReconcileOracleFailureKeepsEverything(t *testing.T) {
	f := newFixture(t)
	f.items.AddVersion(domain.KindFlight, "F2", availableFlight)
	f.items.AddVersion(domain.KindFlight, "F3", availableFlight)

	rec, err := f.svc.Reconcile(context.Background(), Input{
		Key:     testKey,
		Flights: KindInput{Candidates: []string{"F2", "F3"}},
	})
	require.NoError(t, err)

	assert.Equal(t, map[string]domain.Status{"F2": domain.StatusAvailable, "F3": domain.StatusAvailable}, rec.Flights.StatusMap())
	assert.Empty(t, rec.Destinations)
	assert.Empty(t, rec.Summary)
	assert.Empty(t, rec.Dates)
}

func TestReconcileBookingOverrideWithRemap(t *testing.T) {
	f := newFixture(t)
	f.seed(t, map[string]domain.Status{"F1": domain.StatusAvailable}, nil)

	rec, err := f.svc.Reconcile(context.Background(), Input{
		Key: testKey,
		Flights: KindInput{
			Overrides: map[string]domain.Status{"F1": domain.StatusBooked},
			Remap:     map[string]string{"F1": "F1_NEW"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]domain.Status{"F1_NEW": domain.StatusBooked}, rec.Flights.StatusMap())
}

func TestReconcileBookedIsMonotonic(t *testing.T) {
	f := newFixture(t)
	f.seed(t, map[string]domain.Status{"F1": domain.StatusBooked}, nil)
	f.items.AddVersion(domain.KindFlight, "F1", unavailableFlight)

	for i := 0; i < 2; i++ {
		rec, err := f.svc.Reconcile(context.Background(), Input{
			Key:     testKey,
			Flights: KindInput{Overrides: map[string]domain.Status{"F1": domain.StatusUnavailable}},
		})
		require.NoError(t, err)
		st, ok := rec.Flights.Status("F1")
		require.True(t, ok)
		assert.Equal(t, domain.StatusBooked, st)
	}
}

func TestReconcileIsIdempotent(t *testing.T) {
	f := newFixture(t)
	f.seed(t, map[string]domain.Status{"F1": domain.StatusAvailable, "F2": domain.StatusUnavailable},
		map[string]domain.Status{"H1": domain.StatusBooked})
	f.items.AddVersion(domain.KindFlight, "F1", availableFlight)
	f.decider.result = parsed(keep("F1"))
	in := Input{Key: testKey, Flights: KindInput{Overrides: map[string]domain.Status{"F2": domain.StatusUnavailable}}}

	first, err := f.svc.Reconcile(context.Background(), in)
	require.NoError(t, err)
	second, err := f.svc.Reconcile(context.Background(), in)
	require.NoError(t, err)

	assert.Equal(t, first.Flights.StatusMap(), second.Flights.StatusMap())
	assert.Equal(t, first.Hotels.StatusMap(), second.Hotels.StatusMap())
}

func TestReconcileCandidatesAreNeverDropped(t *testing.T) {
	f := newFixture(t)
	f.seed(t, map[string]domain.Status{"F1": domain.StatusAvailable}, nil)
	f.decider.result = parsed(remove("F1"), remove("F9"))

	rec, err := f.svc.Reconcile(context.Background(), Input{
		Key:     testKey,
		Flights: KindInput{Candidates: []string{"F9", "F1"}},
	})
	require.NoError(t, err)

	assert.True(t, rec.Flights.Has("F9"))
	assert.True(t, rec.Flights.Has("F1"), "a removed id offered again as a candidate is kept")
}

func TestReconcileIgnoresStaleDecisions(t *testing.T) {
	f := newFixture(t)
	f.seed(t, map[string]domain.Status{"F1": domain.StatusAvailable}, nil)
	f.items.AddVersion(domain.KindFlight, "F1", availableFlight)
	f.decider.result = parsed(remove("GHOST"))

	rec, err := f.svc.Reconcile(context.Background(), Input{Key: testKey})
	require.NoError(t, err)
	assert.Equal(t, []string{"F1"}, rec.Flights.IDs())
}

func TestReconcileRemapPreservesBooked(t *testing.T) {
	f := newFixture(t)
	f.seed(t, nil, map[string]domain.Status{"A": domain.StatusBooked})

	rec, err := f.svc.Reconcile(context.Background(), Input{
		Key:    testKey,
		Hotels: KindInput{Remap: map[string]string{"A": "B", "MISSING": "X"}},
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]domain.Status{"B": domain.StatusBooked}, rec.Hotels.StatusMap())
}

func TestReconcileRemapOfRemovedBookedItem(t *testing.T) {
	f := newFixture(t)
	f.seed(t, map[string]domain.Status{"A": domain.StatusBooked, "B": domain.StatusAvailable}, nil)
	f.items.AddVersion(domain.KindFlight, "B", unavailableFlight)
	f.decider.result = parsed(remove("A"))

	rec, err := f.svc.Reconcile(context.Background(), Input{
		Key:     testKey,
		Flights: KindInput{Remap: map[string]string{"A": "B"}},
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]domain.Status{"B": domain.StatusUnavailable}, rec.Flights.StatusMap())
}

func TestReconcileOverrideAgainstRemove(t *testing.T) {
	f := newFixture(t)
	f.seed(t, map[string]domain.Status{
		"F1": domain.StatusAvailable,
		"F2": domain.StatusAvailable,
		"F3": domain.StatusAvailable,
	}, nil)
	f.decider.result = parsed(remove("F1"), remove("F2"), remove("F3"))

	rec, err := f.svc.Reconcile(context.Background(), Input{
		Key: testKey,
		Flights: KindInput{
			Overrides: map[string]domain.Status{
				"F1":     domain.StatusBooked,
				"F2":     domain.StatusUnavailable,
				"F3_NEW": domain.StatusBooked,
			},
			Remap: map[string]string{"F3": "F3_NEW"},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, map[string]domain.Status{
		"F1":     domain.StatusBooked,
		"F3_NEW": domain.StatusBooked,
	}, rec.Flights.StatusMap())
}

func TestReconcileOracleMayRemoveBookedItem(t *testing.T) {
	f := newFixture(t)
	f.seed(t, map[string]domain.Status{"F1": domain.StatusBooked}, nil)
	f.decider.result = parsed(remove("F1"))

	rec, err := f.svc.Reconcile(context.Background(), Input{Key: testKey})
	require.NoError(t, err)
	assert.Equal(t, 0, rec.Flights.Len())
}

func TestReconcileLookupFailureReadsUnavailable(t *testing.T) {
	f := newFixture(t)
	f.items.SetError("Latest", errors.New("throttled"))

	rec, err := f.svc.Reconcile(context.Background(), Input{
		Key:     testKey,
		Flights: KindInput{Candidates: []string{"F1"}},
		Hotels:  KindInput{Candidates: []string{"H1"}},
	})
	require.NoError(t, err)

	st, _ := rec.Flights.Status("F1")
	assert.Equal(t, domain.StatusUnavailable, st)
	st, _ = rec.Hotels.Status("H1")
	assert.Equal(t, domain.StatusUnavailable, st)
}

func TestReconcileMetadata(t *testing.T) {
	t.Run("parsed result replaces metadata", func(t *testing.T) {
		f := newFixture(t)
		f.seed(t, nil, nil)
		f.decider.result = oracle.Result{
			Outcome:      oracle.Parsed,
			Destinations: []string{"Tokyo", "Kyoto", "Tokyo"},
			Dates:        "Mar 2, 2025 - Mar 12, 2025",
			Summary:      "You are visiting Tokyo and Kyoto.",
		}

		rec, err := f.svc.Reconcile(context.Background(), Input{Key: testKey})
		require.NoError(t, err)
		assert.Equal(t, []string{"Tokyo", "Kyoto"}, rec.Destinations)
		assert.Equal(t, "Mar 2, 2025 - Mar 12, 2025", rec.Dates)
		assert.Equal(t, "You are visiting Tokyo and Kyoto.", rec.Summary)
		assert.Equal(t, time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC), rec.LastModified)
	})

	t.Run("failed oracle keeps prior metadata", func(t *testing.T) {
		f := newFixture(t)
		f.seed(t, nil, nil)

		rec, err := f.svc.Reconcile(context.Background(), Input{Key: testKey})
		require.NoError(t, err)
		assert.Equal(t, []string{"Tokyo"}, rec.Destinations)
		assert.Equal(t, "You are visiting Tokyo.", rec.Summary)
	})
}

func TestReconcileOracleSeesOnlyExistingItems(t *testing.T) {
	f := newFixture(t)
	f.seed(t, map[string]domain.Status{"F1": domain.StatusAvailable}, map[string]domain.Status{"H1": domain.StatusAvailable})

	d := new(mockDecider)
	d.On("Decide", mock.Anything, mock.MatchedBy(func(req oracle.Request) bool {
		return len(req.Flights) == 1 && req.Flights[0].ID == "F1" &&
			len(req.Hotels) == 1 && req.Hotels[0].ID == "H1"
	})).Return(oracle.NoDecision()).Once()

	_, err := f.build(d).Reconcile(context.Background(), Input{
		Key:     testKey,
		Flights: KindInput{Candidates: []string{"F2"}},
		Hotels:  KindInput{Candidates: []string{"H2"}},
	})
	require.NoError(t, err)
	d.AssertExpectations(t)
}

func TestReconcileFailures(t *testing.T) {
	t.Run("invalid key", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.Reconcile(context.Background(), Input{Key: domain.TripKey{UserID: "u"}})
		assert.True(t, appErrors.IsValidation(err))
		assert.Empty(t, f.decider.requests)
	})

	t.Run("write failure leaves prior record", func(t *testing.T) {
		f := newFixture(t)
		f.seed(t, map[string]domain.Status{"F1": domain.StatusAvailable}, nil)
		f.decider.result = parsed(remove("F1"))
		f.trips.SetError("Put", errors.New("dynamo unavailable"))

		_, err := f.svc.Reconcile(context.Background(), Input{Key: testKey})
		require.Error(t, err)
		assert.Empty(t, f.publisher.records)

		f.trips.SetError("Put", nil)
		stored, err := f.trips.Get(context.Background(), testKey)
		require.NoError(t, err)
		assert.True(t, stored.Flights.Has("F1"))
		assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.Reconciliations.WithLabelValues("failed")))
	})

	t.Run("prior read failure is fatal", func(t *testing.T) {
		f := newFixture(t)
		f.seed(t, map[string]domain.Status{"F1": domain.StatusBooked}, nil)
		f.trips.SetError("Get", errors.New("timeout"))

		_, err := f.svc.Reconcile(context.Background(), Input{Key: testKey})
		require.Error(t, err)
		assert.Equal(t, 1, f.trips.Puts())
	})

	t.Run("transcript read failure is fatal", func(t *testing.T) {
		f := newFixture(t)
		f.transcripts.SetError("Messages", errors.New("timeout"))

		_, err := f.svc.Reconcile(context.Background(), Input{Key: testKey})
		require.Error(t, err)
		assert.Zero(t, f.trips.Puts())
	})
}

func TestReconcilePublishes(t *testing.T) {
	f := newFixture(t)
	f.publisher.err = errors.New("bus down")

	rec, err := f.svc.Reconcile(context.Background(), Input{Key: testKey})
	require.NoError(t, err)
	require.Len(t, f.publisher.records, 1)
	assert.Equal(t, rec.Key, f.publisher.records[0].Key)
}

func TestRemoveItem(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.RemoveItem(context.Background(), testKey, domain.KindFlight, "F1")
	assert.True(t, appErrors.IsNotFound(err))

	f.seed(t, map[string]domain.Status{"F1": domain.StatusBooked, "F2": domain.StatusAvailable}, nil)

	_, err = f.svc.RemoveItem(context.Background(), testKey, domain.KindHotel, "F1")
	assert.True(t, appErrors.IsNotFound(err))

	rec, err := f.svc.RemoveItem(context.Background(), testKey, domain.KindFlight, "F1")
	require.NoError(t, err)
	assert.Equal(t, []string{"F2"}, rec.Flights.IDs())

	stored, err := f.trips.Get(context.Background(), testKey)
	require.NoError(t, err)
	assert.False(t, stored.Flights.Has("F1"))

	_, err = f.svc.RemoveItem(context.Background(), testKey, domain.KindFlight, "")
	assert.True(t, appErrors.IsValidation(err))
}

func TestDeleteTrip(t *testing.T) {
	f := newFixture(t)
	f.seed(t, nil, nil)

	require.NoError(t, f.svc.DeleteTrip(context.Background(), testKey))
	require.NoError(t, f.svc.DeleteTrip(context.Background(), testKey))

	_, err := f.svc.Card(context.Background(), testKey)
	assert.True(t, appErrors.IsNotFound(err))
}

func TestCard(t *testing.T) {
	f := newFixture(t)
	f.seed(t, map[string]domain.Status{"F1": domain.StatusBooked}, map[string]domain.Status{"H1": domain.StatusAvailable})
	f.items.AddVersion(domain.KindFlight, "F1", domain.Document{
		"itineraries": []any{map[string]any{
			"duration": "PT2H",
			"segments": []any{map[string]any{
				"carrierCode": "JL",
				"number":      "5",
				"departure":   map[string]any{"iataCode": "HND", "at": "2025-03-01T08:00:00"},
				"arrival":     map[string]any{"iataCode": "ITM", "at": "2025-03-01T10:00:00"},
			}},
		}},
	})

	card, err := f.svc.Card(context.Background(), testKey)
	require.NoError(t, err)

	require.Len(t, card.Flights, 1)
	assert.Equal(t, "F1", card.Flights[0].ID)
	assert.Equal(t, domain.StatusBooked, card.Flights[0].Status)
	assert.NotEmpty(t, card.Flights[0].Route)

	require.Len(t, card.Hotels, 1)
	assert.Equal(t, "H1", card.Hotels[0].ID, "missing documents still carry their id")
	assert.Equal(t, domain.StatusAvailable, card.Hotels[0].Status)
	assert.Equal(t, []string{"Tokyo"}, card.Record.Destinations)
}
