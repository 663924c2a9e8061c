package oracle

import (
	"context"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// BreakerSettings configures the circuit breaker around a provider.
type BreakerSettings struct {
	MaxRequests  uint32
	Interval     time.Duration
	Timeout      time.Duration
	MinRequests  uint32
	FailureRatio float64
}

// BreakerProvider fails fast while the wrapped provider is tripped.
type BreakerProvider struct {
	inner Provider
	cb    *gobreaker.CircuitBreaker
}

// NewBreakerProvider wraps inner with a circuit breaker.
func NewBreakerProvider(inner Provider, s BreakerSettings, logger *zap.Logger) *BreakerProvider {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "oracle-" + inner.Name(),
		MaxRequests: s.MaxRequests,
		Interval:    s.Interval,
		Timeout:     s.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < s.MinRequests {
				return false
			}
			ratio := float64(counts.TotalFailures) / float64(counts.Requests)
			return ratio >= s.FailureRatio
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("oracle circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})
	return &BreakerProvider{inner: inner, cb: cb}
}

func (b *BreakerProvider) Complete(ctx context.Context, prompt string, options CompletionOptions) (string, error) {
	out, err := b.cb.Execute(func() (interface{}, error) {
		return b.inner.Complete(ctx, prompt, options)
	})
	if err != nil {
		return "", err
	}
	return out.(string), nil
}

func (b *BreakerProvider) IsAvailable() bool {
	return b.inner.IsAvailable()
}

func (b *BreakerProvider) Name() string { return b.inner.Name() }

// State reports the breaker state.
func (b *BreakerProvider) State() gobreaker.State { return b.cb.State() }
