package observability

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"triptailor-backend/internal/domain"
	"triptailor-backend/internal/repository/memory"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap/zapcore"
)

func TestNewLogger(t *testing.T) {
	level, err := NewLevel("info")
	require.NoError(t, err)
	l, err := NewLogger(false, level)
	require.NoError(t, err)
	assert.False(t, l.Core().Enabled(zapcore.DebugLevel))

	level.SetLevel(zapcore.DebugLevel)
	assert.True(t, l.Core().Enabled(zapcore.DebugLevel), "level changes apply to a running logger")

	_, err = NewLevel("loud")
	assert.Error(t, err)
}

func TestCollector(t *testing.T) {
	c := NewCollector("test")
	c.ObserveReconcile("ok", 150*time.Millisecond)
	c.OracleCall("mock", "parsed")
	c.ItemLookup("flight", "miss")
	c.ItemStatus("hotel", "booked")
	c.OracleRemoval("flight", 2)
	c.CacheResult(true)

	assert.Equal(t, 1.0, testutil.ToFloat64(c.Reconciliations.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.OracleCalls.WithLabelValues("mock", "parsed")))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.OracleRemovals.WithLabelValues("flight")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.CacheHits))

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	assert.Contains(t, rec.Body.String(), "test_reconciliations_total")
}

func TestNilCollectorIsSafe(t *testing.T) {
	var c *Collector
	assert.NotPanics(t, func() {
		c.ObserveReconcile("ok", time.Second)
		c.OracleCall("mock", "error")
		c.CacheResult(false)
	})
}

func TestTracedTripStore(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	inner := memory.NewTripStore()
	store := TraceTripStore(inner, tp.Tracer("test"))
	ctx := context.Background()
	key := domain.TripKey{UserID: "u", ChatID: "c"}

	_, err := store.Get(ctx, key)
	require.Error(t, err)

	inner.SetError("Put", errors.New("boom"))
	require.Error(t, store.Put(ctx, domain.NewTripRecord(key)))

	spans := recorder.Ended()
	require.Len(t, spans, 2)
	assert.Equal(t, "trips.Get", spans[0].Name())
	assert.Empty(t, spans[0].Events(), "not found is not recorded as an error")
	assert.Equal(t, "trips.Put", spans[1].Name())
	assert.NotEmpty(t, spans[1].Events())
}
