// Package config reads the process configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	domorder "github.com/Zhima-Mochi/minishop-orders/internal/domain/order"
)

// DriverMemory keeps all state in process.
const DriverMemory = "memory"

type Config struct {
	ServiceName string
	Env         string
	LogLevel    string
	LogFile     string

	HTTPAddr        string
	ShutdownTimeout time.Duration

	DBDriver string
	DBDSN    string

	Pricing domorder.PricingPolicy

	RedisAddr        string
	RateLimit        int
	RateLimitWindow  time.Duration
	ProductCacheTTL  time.Duration
	// ProductCacheSize bounds the in-process cache used without Redis.
	ProductCacheSize int

	KafkaBrokers []string
	KafkaTopic   string

	OutboxPollInterval time.Duration
	OutboxBatchSize    int

	EventHandlerTimeout time.Duration
}

// Load reads every setting once. Malformed values are reported together.
func Load() (Config, error) {
	return load(os.Getenv)
}

func load(getenv func(string) string) (Config, error) {
	env := func(key, def string) string {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			return v
		}
		return def
	}

	var errs []error
	duration := func(key string, def time.Duration) time.Duration {
		raw := env(key, "")
		if raw == "" {
			return def
		}
		d, err := time.ParseDuration(raw)
		if err != nil || d <= 0 {
			errs = append(errs, fmt.Errorf("%s: want a positive duration, got %q", key, raw))
			return def
		}
		return d
	}
	integer := func(key string, def, min int) int {
		raw := env(key, "")
		if raw == "" {
			return def
		}
		n, err := strconv.Atoi(raw)
		if err != nil || n < min {
			errs = append(errs, fmt.Errorf("%s: want an integer >= %d, got %q", key, min, raw))
			return def
		}
		return n
	}

	cfg := Config{
		ServiceName:        env("SERVICE_NAME", "minishop-orders"),
		Env:                env("ENV", "dev"),
		LogLevel:           env("LOG_LEVEL", "info"),
		LogFile:            env("LOG_FILE", ""),
		HTTPAddr:           env("HTTP_ADDR", ":8080"),
		ShutdownTimeout:    duration("SHUTDOWN_TIMEOUT", 10*time.Second),
		DBDriver:           strings.ToLower(env("DB_DRIVER", DriverMemory)),
		DBDSN:              env("DB_DSN", ""),
		RedisAddr:          env("REDIS_ADDR", ""),
		RateLimit:          integer("RATE_LIMIT", 100, 0),
		RateLimitWindow:    duration("RATE_LIMIT_WINDOW", time.Minute),
		ProductCacheTTL:    duration("PRODUCT_CACHE_TTL", 5*time.Minute),
		ProductCacheSize:   integer("PRODUCT_CACHE_SIZE", 1024, 0),
		KafkaBrokers:       splitList(env("KAFKA_BROKERS", "")),
		KafkaTopic:         env("KAFKA_TOPIC", "minishop.orders"),
		OutboxPollInterval: duration("OUTBOX_POLL_INTERVAL", time.Second),
		OutboxBatchSize:    integer("OUTBOX_BATCH_SIZE", 100, 1),

		EventHandlerTimeout: duration("EVENT_HANDLER_TIMEOUT", 30*time.Second),
	}

	pricing, err := domorder.ParsePricingPolicy(env("PRICING_MODE", ""))
	if err != nil {
		errs = append(errs, fmt.Errorf("PRICING_MODE: %w", err))
	}
	cfg.Pricing = pricing

	switch cfg.DBDriver {
	case DriverMemory:
	case "sqlite", "sqlite3", "postgres", "postgresql", "pgx":
		if cfg.DBDSN == "" {
			errs = append(errs, fmt.Errorf("DB_DSN is required for DB_DRIVER=%s", cfg.DBDriver))
		}
	default:
		errs = append(errs, fmt.Errorf("DB_DRIVER: unsupported value %q", cfg.DBDriver))
	}

	if err := errors.Join(errs...); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
