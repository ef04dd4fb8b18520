package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/dalildz/dalil/pkg/config"
	"github.com/dalildz/dalil/pkg/httpserver"
	"github.com/dalildz/dalil/pkg/pg"
	"github.com/dalildz/dalil/pkg/redis"
)

// Audit storage backends selectable with AUDIT_STORAGE.
const (
	storageMemory   = "memory"
	storagePostgres = "postgres"
	storageRedis    = "redis"
)

var (
	ErrUnknownAuditStorage = errors.New("unknown audit storage")
	ErrInvalidConfig       = errors.New("invalid configuration")
)

type appConfig struct {
	Env      string `env:"APP_ENV" envDefault:"development"`
	Name     string `env:"APP_NAME" envDefault:"dalil"`
	LogLevel string `env:"LOG_LEVEL"`

	DisposableDomains []string `env:"VALIDATION_DISPOSABLE_DOMAINS" envSeparator:","`
	RulepackDir       string   `env:"VALIDATION_RULEPACK_DIR"`

	AuditStorage    string `env:"AUDIT_STORAGE" envDefault:"memory"`
	AuditBufferSize int    `env:"AUDIT_BUFFER_SIZE" envDefault:"1000"`
	AuditStream     string `env:"AUDIT_REDIS_STREAM" envDefault:"dalil:security_events"`

	FormSessionCapacity    int           `env:"FORM_SESSION_CAPACITY" envDefault:"10000"`
	FormSessionIdleTimeout time.Duration `env:"FORM_SESSION_IDLE_TIMEOUT" envDefault:"30m"`

	// RateLimitCapacity of zero disables per-client limiting.
	RateLimitCapacity       int           `env:"RATE_LIMIT_CAPACITY" envDefault:"120"`
	RateLimitRefillRate     int           `env:"RATE_LIMIT_REFILL_RATE" envDefault:"2"`
	RateLimitRefillInterval time.Duration `env:"RATE_LIMIT_REFILL_INTERVAL" envDefault:"1s"`
	TrustedProxyHeaders     []string      `env:"TRUSTED_PROXY_HEADERS" envSeparator:","`

	HTTP  httpserver.Config
	PG    pg.Config
	Redis redis.Config
}

func loadConfig(opts ...config.Option) (appConfig, error) {
	cfg, err := config.Load[appConfig](opts...)
	if err != nil {
		return cfg, err
	}
	return cfg, cfg.check()
}

func (c appConfig) check() error {
	switch c.AuditStorage {
	case storageMemory, storageRedis:
	case storagePostgres:
		if c.PG.ConnectionString == "" {
			return errors.Join(ErrInvalidConfig, errors.New("PG_CONN_URL is required for postgres audit storage"))
		}
	default:
		return errors.Join(ErrInvalidConfig, fmt.Errorf("%w: %q", ErrUnknownAuditStorage, c.AuditStorage))
	}
	if c.FormSessionCapacity <= 0 {
		return errors.Join(ErrInvalidConfig, errors.New("FORM_SESSION_CAPACITY must be positive"))
	}
	return nil
}
