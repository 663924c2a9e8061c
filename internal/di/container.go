//go:build !wireinject
// +build !wireinject

package di

import (
	"context"

	"triptailor-backend/internal/config"
)

// InitializeContainer creates a fully wired container. The returned cleanup
// releases the cache, the LLM client and the tracer in reverse order.
func InitializeContainer(ctx context.Context, cfg *config.Config) (*Container, func(), error) {
	level, err := ProvideLogLevel(cfg)
	if err != nil {
		return nil, nil, err
	}
	logger, err := ProvideLogger(cfg, level)
	if err != nil {
		return nil, nil, err
	}
	metrics := ProvideMetrics()
	tracing, tracingCleanup, err := ProvideTracing(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	awsCfg, err := ProvideAWSConfig(ctx, cfg)
	if err != nil {
		tracingCleanup()
		return nil, nil, err
	}
	dynamo := ProvideDynamoDBClient(awsCfg, cfg)
	bus := ProvideEventBridgeClient(awsCfg)

	items := ProvideItemStore(dynamo, cfg, logger)
	trips := ProvideTripStore(dynamo, cfg, logger)
	transcripts := ProvideTranscriptStore(dynamo, cfg)

	summaryCache, cacheCleanup, err := ProvideCache(ctx, cfg, logger)
	if err != nil {
		tracingCleanup()
		return nil, nil, err
	}
	compactor := ProvideCompactor(items, summaryCache, metrics, logger, cfg)

	provider, providerCleanup, err := ProvideOracleProvider(ctx, cfg, logger)
	if err != nil {
		cacheCleanup()
		tracingCleanup()
		return nil, nil, err
	}
	decider := ProvideOracle(provider, cfg, metrics, logger)
	publisher := ProvidePublisher(bus, cfg)

	svc := ProvideTripService(trips, items, transcripts, compactor, decider, publisher, metrics, logger, cfg)
	container := &Container{
		Config:      cfg,
		LogLevel:    level,
		Logger:      logger,
		Limiter:     ProvideRateLimiter(cfg),
		Metrics:     metrics,
		Tracing:     tracing,
		Trips:       svc,
		TripHandler: ProvideTripHandler(svc, logger),
		ItemHandler: ProvideItemHandler(ProvideItemService(items, logger), logger),
		Bookings:    ProvideBookingHandler(svc, logger),
	}
	return container, func() {
		providerCleanup()
		cacheCleanup()
		tracingCleanup()
		_ = logger.Sync()
	}, nil
}
