package oracle

import (
	"context"
	"errors"
	"time"

	"triptailor-backend/internal/observability"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

// Options tunes the adapter.
type Options struct {
	Temperature     float64
	MaxTokens       int
	Timeout         time.Duration
	MaxMessages     int
	MaxMessageChars int
}

// DefaultOptions mirrors the production configuration.
func DefaultOptions() Options {
	return Options{
		Temperature:     0.2,
		MaxTokens:       900,
		Timeout:         25 * time.Second,
		MaxMessages:     60,
		MaxMessageChars: 2000,
	}
}

// Adapter turns provider completions into decision results. Decide never
// fails: provider errors and unreadable output both yield NoDecision.
type Adapter struct {
	provider Provider
	opts     Options
	metrics  *observability.Collector
	logger   *zap.Logger
}

// NewAdapter creates an adapter over provider.
func NewAdapter(provider Provider, opts Options, metrics *observability.Collector, logger *zap.Logger) *Adapter {
	return &Adapter{provider: provider, opts: opts, metrics: metrics, logger: logger}
}

// Decide asks the oracle about the existing items of a trip.
func (a *Adapter) Decide(ctx context.Context, req Request) Result {
	ctx, span := observability.Tracer().Start(ctx, "oracle.Decide")
	defer span.End()
	span.SetAttributes(
		attribute.String("oracle.provider", a.provider.Name()),
		attribute.Int("oracle.flights", len(req.Flights)),
		attribute.Int("oracle.hotels", len(req.Hotels)),
	)

	if !a.provider.IsAvailable() {
		a.metrics.OracleCall(a.provider.Name(), "unavailable")
		a.logger.Warn("oracle provider unavailable, keeping trip unchanged", zap.String("provider", a.provider.Name()))
		return NoDecision()
	}

	prompt, err := BuildPrompt(req, a.opts.MaxMessages, a.opts.MaxMessageChars)
	if err != nil {
		a.metrics.OracleCall(a.provider.Name(), "error")
		a.logger.Warn("failed to build oracle prompt", zap.Error(err))
		return NoDecision()
	}

	callCtx := ctx
	if a.opts.Timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, a.opts.Timeout)
		defer cancel()
	}

	raw, err := a.provider.Complete(callCtx, prompt, CompletionOptions{
		System:      systemPrompt,
		Temperature: a.opts.Temperature,
		MaxTokens:   a.opts.MaxTokens,
		Format:      "json",
	})
	if err != nil {
		result := "error"
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			result = "breaker_open"
		}
		a.metrics.OracleCall(a.provider.Name(), result)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		a.logger.Warn("oracle call failed, keeping trip unchanged",
			zap.String("provider", a.provider.Name()), zap.Error(err))
		return NoDecision()
	}

	res := ParseResponse(raw)
	a.metrics.OracleCall(a.provider.Name(), res.Outcome.String())
	span.SetAttributes(attribute.String("oracle.outcome", res.Outcome.String()))
	if res.Outcome == ParseFailed {
		a.logger.Warn("unparseable oracle response, keeping trip unchanged",
			zap.String("provider", a.provider.Name()), zap.Int("length", len(raw)))
		a.logger.Debug("raw oracle response", zap.String("raw", raw))
	}
	return res
}
