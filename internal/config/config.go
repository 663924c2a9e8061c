// Package config loads service configuration from code defaults, an optional
// YAML file and environment variables, in increasing priority.
package config

import (
	"fmt"
	"time"
)

// Environment names a deployment environment.
type Environment string

const (
	Development Environment = "development"
	Staging     Environment = "staging"
	Production  Environment = "production"
)

// Config is the root configuration.
type Config struct {
	Environment Environment `yaml:"environment"`
	LogLevel    string      `yaml:"log_level"`

	AWS       AWS       `yaml:"aws"`
	Tables    Tables    `yaml:"tables"`
	Oracle    Oracle    `yaml:"oracle"`
	Reconcile Reconcile `yaml:"reconcile"`
	Cache     Cache     `yaml:"cache"`
	Server    Server    `yaml:"server"`
	Tracing   Tracing   `yaml:"tracing"`
	Events    Events    `yaml:"events"`

	// LoadedFrom lists the sources applied, lowest priority first.
	LoadedFrom []string `yaml:"-"`
	// File is the YAML overlay that was applied, if any.
	File string `yaml:"-"`
}

type AWS struct {
	Region   string `yaml:"region"`
	Endpoint string `yaml:"endpoint"`
}

// Tables names the DynamoDB tables backing each store.
type Tables struct {
	Trips       string `yaml:"trips"`
	Flights     string `yaml:"flights"`
	Hotels      string `yaml:"hotels"`
	ChatHistory string `yaml:"chat_history"`
}

// Oracle configures the decision oracle and its provider.
type Oracle struct {
	Provider     string        `yaml:"provider"`
	OpenAIAPIKey string        `yaml:"openai_api_key"`
	OpenAIModel  string        `yaml:"openai_model"`
	GeminiAPIKey string        `yaml:"gemini_api_key"`
	GeminiModel  string        `yaml:"gemini_model"`
	Timeout      time.Duration `yaml:"timeout"`
	MaxTokens    int           `yaml:"max_tokens"`
	Temperature  float64       `yaml:"temperature"`

	// Transcript window sent with each request.
	MaxMessages     int `yaml:"max_messages"`
	MaxMessageChars int `yaml:"max_message_chars"`

	BreakerMaxRequests  uint32        `yaml:"breaker_max_requests"`
	BreakerInterval     time.Duration `yaml:"breaker_interval"`
	BreakerTimeout      time.Duration `yaml:"breaker_timeout"`
	BreakerMinRequests  uint32        `yaml:"breaker_min_requests"`
	BreakerFailureRatio float64       `yaml:"breaker_failure_ratio"`
}

// Reconcile tunes the reconciliation pipeline.
type Reconcile struct {
	LookupConcurrency int `yaml:"lookup_concurrency"`
}

// Cache selects the compact-summary cache.
type Cache struct {
	Provider      string        `yaml:"provider"`
	TTL           time.Duration `yaml:"ttl"`
	RedisAddr     string        `yaml:"redis_addr"`
	RedisPassword string        `yaml:"redis_password"`
	RedisDB       int           `yaml:"redis_db"`
}

type Server struct {
	Address        string        `yaml:"address"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	RateLimitRPS   float64       `yaml:"rate_limit_rps"`
	RateLimitBurst int           `yaml:"rate_limit_burst"`
	JWTSecret      string        `yaml:"jwt_secret"`
	AllowedOrigins []string      `yaml:"allowed_origins"`
}

type Tracing struct {
	Enabled     bool   `yaml:"enabled"`
	Endpoint    string `yaml:"endpoint"`
	ServiceName string `yaml:"service_name"`
}

type Events struct {
	Enabled bool   `yaml:"enabled"`
	BusName string `yaml:"bus_name"`
	Source  string `yaml:"source"`
}

const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
	ProviderMock   = "mock"

	CacheNone   = "none"
	CacheMemory = "memory"
	CacheRedis  = "redis"
)

// Default returns the configuration used when no file or env overrides apply.
func Default() *Config {
	return &Config{
		Environment: Development,
		LogLevel:    "info",
		AWS:         AWS{Region: "us-east-1"},
		Tables: Tables{
			Trips:       "trip",
			Flights:     "Flights",
			Hotels:      "Hotels",
			ChatHistory: "chat-history",
		},
		Oracle: Oracle{
			Provider:            ProviderOpenAI,
			OpenAIModel:         "gpt-4o",
			GeminiModel:         "gemini-1.5-pro",
			Timeout:             25 * time.Second,
			MaxTokens:           900,
			Temperature:         0.2,
			MaxMessages:         60,
			MaxMessageChars:     2000,
			BreakerMaxRequests:  1,
			BreakerInterval:     60 * time.Second,
			BreakerTimeout:      30 * time.Second,
			BreakerMinRequests:  5,
			BreakerFailureRatio: 0.6,
		},
		Reconcile: Reconcile{LookupConcurrency: 4},
		Cache: Cache{
			Provider:  CacheMemory,
			TTL:       time.Hour,
			RedisAddr: "localhost:6379",
		},
		Server: Server{
			Address:        ":8080",
			RequestTimeout: 30 * time.Second,
			RateLimitRPS:   20,
			RateLimitBurst: 40,
			AllowedOrigins: []string{"*"},
		},
		Tracing: Tracing{ServiceName: "triptailor-backend", Endpoint: "localhost:4317"},
		Events:  Events{BusName: "default", Source: "triptailor.trips"},
	}
}

// IsProduction reports whether the service runs in production.
func (c *Config) IsProduction() bool { return c.Environment == Production }

// IsDevelopment reports whether the service runs in development.
func (c *Config) IsDevelopment() bool { return c.Environment == Development }

// Validate checks the configuration for values the service cannot run with.
func (c *Config) Validate() error {
	switch c.Environment {
	case Development, Staging, Production:
	default:
		return fmt.Errorf("invalid environment %q", c.Environment)
	}
	if c.Tables.Trips == "" || c.Tables.Flights == "" || c.Tables.Hotels == "" || c.Tables.ChatHistory == "" {
		return fmt.Errorf("all table names must be set")
	}
	if c.Reconcile.LookupConcurrency <= 0 {
		return fmt.Errorf("lookup concurrency must be positive, got %d", c.Reconcile.LookupConcurrency)
	}
	if c.Oracle.MaxMessages <= 0 || c.Oracle.MaxMessageChars <= 0 {
		return fmt.Errorf("oracle transcript window must be positive")
	}
	switch c.Oracle.Provider {
	case ProviderOpenAI:
		if c.IsProduction() && c.Oracle.OpenAIAPIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY is required in production")
		}
	case ProviderGemini:
		if c.IsProduction() && c.Oracle.GeminiAPIKey == "" {
			return fmt.Errorf("GEMINI_API_KEY is required in production")
		}
	case ProviderMock:
		if c.IsProduction() {
			return fmt.Errorf("mock oracle provider is not allowed in production")
		}
	default:
		return fmt.Errorf("unknown oracle provider %q", c.Oracle.Provider)
	}
	switch c.Cache.Provider {
	case CacheNone, CacheMemory:
	case CacheRedis:
		if c.Cache.RedisAddr == "" {
			return fmt.Errorf("REDIS_ADDR is required for the redis cache")
		}
	default:
		return fmt.Errorf("unknown cache provider %q", c.Cache.Provider)
	}
	if c.Events.Enabled && c.Events.BusName == "" {
		return fmt.Errorf("EVENT_BUS_NAME is required when events are enabled")
	}
	return nil
}
