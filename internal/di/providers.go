// Package di wires the service's dependencies for the entrypoints.
package di

import (
	"context"
	"fmt"
	"net/http"

	"triptailor-backend/internal/cache"
	"triptailor-backend/internal/config"
	"triptailor-backend/internal/events"
	"triptailor-backend/internal/handlers"
	"triptailor-backend/internal/middleware"
	"triptailor-backend/internal/observability"
	"triptailor-backend/internal/repository"
	"triptailor-backend/internal/repository/ddb"
	"triptailor-backend/internal/service/compact"
	"triptailor-backend/internal/service/item"
	"triptailor-backend/internal/service/oracle"
	"triptailor-backend/internal/service/trip"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"github.com/go-chi/chi/v5"
	"github.com/google/wire"
	"go.uber.org/zap"
)

// SuperSet holds every provider of the container.
var SuperSet = wire.NewSet(
	ProvideLogLevel,
	ProvideLogger,
	ProvideRateLimiter,
	ProvideMetrics,
	ProvideTracing,
	ProvideAWSConfig,
	ProvideDynamoDBClient,
	ProvideEventBridgeClient,
	ProvideItemStore,
	ProvideTripStore,
	ProvideTranscriptStore,
	ProvideCache,
	ProvideCompactor,
	ProvideOracleProvider,
	ProvideOracle,
	ProvidePublisher,
	ProvideTripService,
	ProvideTripHandler,
	ProvideItemService,
	ProvideItemHandler,
	ProvideBookingHandler,
	wire.Bind(new(trip.Summarizer), new(*compact.Compactor)),
	wire.Bind(new(trip.Decider), new(*oracle.Adapter)),
	wire.Struct(new(Container), "Config", "LogLevel", "Logger", "Limiter", "Metrics", "Tracing", "Trips", "TripHandler", "ItemHandler", "Bookings"),
)

// ProvideLogLevel parses the configured level into one that can be changed at runtime.
func ProvideLogLevel(cfg *config.Config) (zap.AtomicLevel, error) {
	return observability.NewLevel(cfg.LogLevel)
}

// ProvideLogger builds the zap logger for the environment.
func ProvideLogger(cfg *config.Config, level zap.AtomicLevel) (*zap.Logger, error) {
	return observability.NewLogger(cfg.IsProduction(), level)
}

func ProvideRateLimiter(cfg *config.Config) *middleware.RateLimiter {
	return middleware.NewRateLimiter(cfg.Server.RateLimitRPS, cfg.Server.RateLimitBurst)
}

// ProvideMetrics creates the Prometheus collector.
func ProvideMetrics() *observability.Collector {
	return observability.NewCollector("triptailor")
}

// ProvideTracing starts the OTLP exporter when tracing is enabled.
func ProvideTracing(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*observability.TracerProvider, func(), error) {
	if !cfg.Tracing.Enabled {
		return nil, func() {}, nil
	}
	tp, err := observability.InitTracing(ctx, cfg.Tracing.ServiceName, string(cfg.Environment), cfg.Tracing.Endpoint)
	if err != nil {
		return nil, nil, fmt.Errorf("init tracing: %w", err)
	}
	cleanup := func() {
		if err := tp.Shutdown(context.Background()); err != nil {
			logger.Warn("tracer shutdown failed", zap.Error(err))
		}
	}
	return tp, cleanup, nil
}

// ProvideAWSConfig loads the default AWS configuration for the region.
func ProvideAWSConfig(ctx context.Context, cfg *config.Config) (aws.Config, error) {
	awsCfg, err := awsConfig.LoadDefaultConfig(ctx, awsConfig.WithRegion(cfg.AWS.Region))
	if err != nil {
		return aws.Config{}, fmt.Errorf("unable to load SDK config: %w", err)
	}
	return awsCfg, nil
}

// ProvideDynamoDBClient creates the DynamoDB client, honouring a local endpoint.
func ProvideDynamoDBClient(awsCfg aws.Config, cfg *config.Config) *dynamodb.Client {
	return dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
		if cfg.AWS.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.AWS.Endpoint)
		}
	})
}

// ProvideEventBridgeClient creates the EventBridge client.
func ProvideEventBridgeClient(awsCfg aws.Config) *eventbridge.Client {
	return eventbridge.NewFromConfig(awsCfg)
}

func ProvideItemStore(client *dynamodb.Client, cfg *config.Config, logger *zap.Logger) repository.ItemStore {
	store := ddb.NewItemStore(client, cfg.Tables.Flights, cfg.Tables.Hotels, logger)
	return observability.TraceItemStore(store, observability.Tracer())
}

func ProvideTripStore(client *dynamodb.Client, cfg *config.Config, logger *zap.Logger) repository.TripStore {
	store := ddb.NewTripStore(client, cfg.Tables.Trips, logger)
	return observability.TraceTripStore(store, observability.Tracer())
}

func ProvideTranscriptStore(client *dynamodb.Client, cfg *config.Config) repository.TranscriptStore {
	store := ddb.NewTranscriptStore(client, cfg.Tables.ChatHistory)
	return observability.TraceTranscriptStore(store, observability.Tracer())
}

// ProvideCache selects the summary cache. A failing Redis connection falls
// back to the in-process cache.
func ProvideCache(ctx context.Context, cfg *config.Config, logger *zap.Logger) (cache.Cache, func(), error) {
	switch cfg.Cache.Provider {
	case config.CacheNone:
		return cache.Noop{}, func() {}, nil
	case config.CacheRedis:
		r, err := cache.NewRedis(ctx, cache.RedisOptions{
			Addr:     cfg.Cache.RedisAddr,
			Password: cfg.Cache.RedisPassword,
			DB:       cfg.Cache.RedisDB,
			Prefix:   "triptailor:",
			TTL:      cfg.Cache.TTL,
		})
		if err != nil {
			logger.Warn("redis unavailable, using in-memory summary cache", zap.Error(err))
			return cache.NewMemory(cfg.Cache.TTL), func() {}, nil
		}
		return r, func() { _ = r.Close() }, nil
	default:
		return cache.NewMemory(cfg.Cache.TTL), func() {}, nil
	}
}

func ProvideCompactor(items repository.ItemStore, c cache.Cache, metrics *observability.Collector, logger *zap.Logger, cfg *config.Config) *compact.Compactor {
	return compact.NewCompactor(items, c, metrics, logger, cfg.Reconcile.LookupConcurrency)
}

// ProvideOracleProvider creates the configured LLM provider behind a circuit breaker.
func ProvideOracleProvider(ctx context.Context, cfg *config.Config, logger *zap.Logger) (oracle.Provider, func(), error) {
	var (
		inner   oracle.Provider
		cleanup = func() {}
	)
	switch cfg.Oracle.Provider {
	case config.ProviderGemini:
		g, err := oracle.NewGeminiProvider(ctx, cfg.Oracle.GeminiAPIKey, cfg.Oracle.GeminiModel)
		if err != nil {
			return nil, nil, err
		}
		inner = g
		cleanup = func() { _ = g.Close() }
	case config.ProviderMock:
		inner = oracle.NewMockProvider()
	default:
		inner = oracle.NewOpenAIProvider(cfg.Oracle.OpenAIAPIKey, cfg.Oracle.OpenAIModel)
	}

	logger.Info("decision oracle configured", zap.String("provider", inner.Name()))
	return oracle.NewBreakerProvider(inner, oracle.BreakerSettings{
		MaxRequests:  cfg.Oracle.BreakerMaxRequests,
		Interval:     cfg.Oracle.BreakerInterval,
		Timeout:      cfg.Oracle.BreakerTimeout,
		MinRequests:  cfg.Oracle.BreakerMinRequests,
		FailureRatio: cfg.Oracle.BreakerFailureRatio,
	}, logger), cleanup, nil
}

func ProvideOracle(provider oracle.Provider, cfg *config.Config, metrics *observability.Collector, logger *zap.Logger) *oracle.Adapter {
	return oracle.NewAdapter(provider, oracle.Options{
		Temperature:     cfg.Oracle.Temperature,
		MaxTokens:       cfg.Oracle.MaxTokens,
		Timeout:         cfg.Oracle.Timeout,
		MaxMessages:     cfg.Oracle.MaxMessages,
		MaxMessageChars: cfg.Oracle.MaxMessageChars,
	}, metrics, logger)
}

// ProvidePublisher returns nil when events are disabled.
func ProvidePublisher(client *eventbridge.Client, cfg *config.Config) trip.Publisher {
	if !cfg.Events.Enabled {
		return nil
	}
	return events.NewPublisher(client, cfg.Events.BusName, cfg.Events.Source)
}

func ProvideTripService(
	trips repository.TripStore,
	items repository.ItemStore,
	transcripts repository.TranscriptStore,
	compactor trip.Summarizer,
	decider trip.Decider,
	publisher trip.Publisher,
	metrics *observability.Collector,
	logger *zap.Logger,
	cfg *config.Config,
) trip.Service {
	return trip.NewService(trip.Deps{
		Trips:       trips,
		Items:       items,
		Transcripts: transcripts,
		Compactor:   compactor,
		Oracle:      decider,
		Publisher:   publisher,
		Metrics:     metrics,
		Logger:      logger,
	}, cfg.Reconcile.LookupConcurrency)
}

func ProvideTripHandler(svc trip.Service, logger *zap.Logger) *handlers.TripHandler {
	return handlers.NewTripHandler(svc, logger)
}

func ProvideItemService(items repository.ItemStore, logger *zap.Logger) *item.Service {
	return item.NewService(items, logger)
}

func ProvideItemHandler(svc *item.Service, logger *zap.Logger) *handlers.ItemHandler {
	return handlers.NewItemHandler(svc, logger)
}

func ProvideBookingHandler(svc trip.Service, logger *zap.Logger) *events.BookingHandler {
	return events.NewBookingHandler(svc, logger)
}

// Container holds the wired application.
type Container struct {
	Config      *config.Config
	LogLevel    zap.AtomicLevel
	Logger      *zap.Logger
	Limiter     *middleware.RateLimiter
	Metrics     *observability.Collector
	Tracing     *observability.TracerProvider
	Trips       trip.Service
	TripHandler *handlers.TripHandler
	ItemHandler *handlers.ItemHandler
	Bookings    *events.BookingHandler
}

// Router builds the HTTP router with the given authenticator.
func (c *Container) Router(auth func(http.Handler) http.Handler) *chi.Mux {
	return handlers.NewRouter(c.TripHandler, c.ItemHandler, handlers.RouterConfig{
		Environment:    string(c.Config.Environment),
		AllowedOrigins: c.Config.Server.AllowedOrigins,
		RequestTimeout: c.Config.Server.RequestTimeout,
		RateLimitRPS:   c.Config.Server.RateLimitRPS,
		RateLimitBurst: c.Config.Server.RateLimitBurst,
		Limiter:        c.Limiter,
		Auth:           auth,
		Metrics:        c.Metrics,
		Logger:         c.Logger,
	})
}

// Reload applies the settings that can change without a restart: the log
// level and the API rate limit. Everything else needs a new container.
func (c *Container) Reload(cfg *config.Config) {
	if lvl, err := observability.NewLevel(cfg.LogLevel); err != nil {
		c.Logger.Warn("ignoring log level", zap.String("level", cfg.LogLevel), zap.Error(err))
	} else {
		c.LogLevel.SetLevel(lvl.Level())
	}
	if c.Limiter != nil {
		c.Limiter.Update(cfg.Server.RateLimitRPS, cfg.Server.RateLimitBurst)
	}
	c.Logger.Info("runtime settings reloaded",
		zap.String("log_level", cfg.LogLevel),
		zap.Float64("rate_limit_rps", cfg.Server.RateLimitRPS),
		zap.Int("rate_limit_burst", cfg.Server.RateLimitBurst))
}
