package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Load builds the configuration from defaults, the YAML file named by
// CONFIG_FILE (if any), then environment variables, and validates it.
func Load() (*Config, error) {
	cfg := Default()
	cfg.LoadedFrom = []string{"defaults"}

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := loadFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
		cfg.LoadedFrom = append(cfg.LoadedFrom, path)
		cfg.File = path
	}

	applyEnv(cfg)
	cfg.LoadedFrom = append(cfg.LoadedFrom, "environment")

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	return dec.Decode(cfg)
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("ENVIRONMENT"); v != "" {
		cfg.Environment = Environment(strings.ToLower(v))
	}
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)

	cfg.AWS.Region = getEnv("AWS_REGION", cfg.AWS.Region)
	cfg.AWS.Endpoint = getEnv("AWS_ENDPOINT_URL", cfg.AWS.Endpoint)

	cfg.Tables.Trips = getEnv("TRIPS_TABLE", cfg.Tables.Trips)
	cfg.Tables.Flights = getEnv("FLIGHTS_TABLE", cfg.Tables.Flights)
	cfg.Tables.Hotels = getEnv("HOTELS_TABLE", cfg.Tables.Hotels)
	cfg.Tables.ChatHistory = getEnv("CHAT_HISTORY_TABLE", cfg.Tables.ChatHistory)

	cfg.Oracle.Provider = strings.ToLower(getEnv("ORACLE_PROVIDER", cfg.Oracle.Provider))
	cfg.Oracle.OpenAIAPIKey = getEnv("OPENAI_API_KEY", cfg.Oracle.OpenAIAPIKey)
	cfg.Oracle.OpenAIModel = getEnv("OPENAI_MODEL", cfg.Oracle.OpenAIModel)
	cfg.Oracle.GeminiAPIKey = getEnv("GEMINI_API_KEY", cfg.Oracle.GeminiAPIKey)
	cfg.Oracle.GeminiModel = getEnv("GEMINI_MODEL", cfg.Oracle.GeminiModel)
	cfg.Oracle.Timeout = getEnvDuration("ORACLE_TIMEOUT", cfg.Oracle.Timeout)
	cfg.Oracle.MaxTokens = getEnvInt("ORACLE_MAX_TOKENS", cfg.Oracle.MaxTokens)
	cfg.Oracle.Temperature = getEnvFloat("ORACLE_TEMPERATURE", cfg.Oracle.Temperature)
	cfg.Oracle.MaxMessages = getEnvInt("TRANSCRIPT_MAX_MESSAGES", cfg.Oracle.MaxMessages)
	cfg.Oracle.MaxMessageChars = getEnvInt("TRANSCRIPT_MAX_CHARS", cfg.Oracle.MaxMessageChars)

	cfg.Reconcile.LookupConcurrency = getEnvInt("LOOKUP_CONCURRENCY", cfg.Reconcile.LookupConcurrency)

	cfg.Cache.Provider = strings.ToLower(getEnv("CACHE_PROVIDER", cfg.Cache.Provider))
	cfg.Cache.TTL = getEnvDuration("CACHE_TTL", cfg.Cache.TTL)
	cfg.Cache.RedisAddr = getEnv("REDIS_ADDR", cfg.Cache.RedisAddr)
	cfg.Cache.RedisPassword = getEnv("REDIS_PASSWORD", cfg.Cache.RedisPassword)
	cfg.Cache.RedisDB = getEnvInt("REDIS_DB", cfg.Cache.RedisDB)

	cfg.Server.Address = getEnv("SERVER_ADDRESS", cfg.Server.Address)
	cfg.Server.RequestTimeout = getEnvDuration("REQUEST_TIMEOUT", cfg.Server.RequestTimeout)
	cfg.Server.RateLimitRPS = getEnvFloat("RATE_LIMIT_RPS", cfg.Server.RateLimitRPS)
	cfg.Server.RateLimitBurst = getEnvInt("RATE_LIMIT_BURST", cfg.Server.RateLimitBurst)
	cfg.Server.JWTSecret = getEnv("JWT_SECRET", cfg.Server.JWTSecret)
	if v := os.Getenv("ALLOWED_ORIGINS"); v != "" {
		cfg.Server.AllowedOrigins = strings.Split(v, ",")
	}

	cfg.Tracing.Enabled = getEnvBool("ENABLE_TRACING", cfg.Tracing.Enabled)
	cfg.Tracing.Endpoint = getEnv("OTLP_ENDPOINT", cfg.Tracing.Endpoint)

	cfg.Events.Enabled = getEnvBool("ENABLE_EVENTS", cfg.Events.Enabled)
	cfg.Events.BusName = getEnv("EVENT_BUS_NAME", cfg.Events.BusName)
	cfg.Events.Source = getEnv("EVENT_SOURCE", cfg.Events.Source)
}

func getEnv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return v
	}
	return def
}

func getEnvFloat(key string, def float64) float64 {
	if v, err := strconv.ParseFloat(os.Getenv(key), 64); err == nil {
		return v
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return v
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	if v, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return v
	}
	return def
}
