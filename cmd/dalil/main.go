// Command dalil serves the input validation and sanitization engine over
// HTTP and records critical validation failures to the audit storage.
package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dalildz/dalil/pkg/audit"
	"github.com/dalildz/dalil/pkg/auditstore"
	"github.com/dalildz/dalil/pkg/clientip"
	"github.com/dalildz/dalil/pkg/httpapi"
	"github.com/dalildz/dalil/pkg/httpserver"
	"github.com/dalildz/dalil/pkg/logger"
	"github.com/dalildz/dalil/pkg/pg"
	"github.com/dalildz/dalil/pkg/ratelimiter"
	"github.com/dalildz/dalil/pkg/redis"
	"github.com/dalildz/dalil/pkg/validation"
)

func main() {
	cfg, err := loadConfig()
	if err != nil {
		slog.Error("failed to load configuration", logger.Error(err))
		os.Exit(1)
	}

	opts := []logger.Option{
		logger.WithEnvironment(cfg.Env, cfg.Name),
		logger.WithContextExtractors(httpapi.RequestIDLogExtractor),
	}
	if cfg.LogLevel != "" {
		opts = append(opts, logger.WithLevel(logger.ParseLevel(cfg.LogLevel)))
	}
	log := logger.New(opts...)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("dalil stopped with error", logger.Error(err))
		os.Exit(1)
	}
}

// auditBackend is the audit storage selected by configuration plus its
// readiness probes and the release function for its connections.
type auditBackend struct {
	storage audit.Storage
	probes  map[string]httpapi.Probe
	close   func()
}

func openAuditBackend(ctx context.Context, cfg appConfig, log *slog.Logger) (auditBackend, error) {
	switch cfg.AuditStorage {
	case storagePostgres:
		pool, err := pg.Connect(ctx, cfg.PG, log)
		if err != nil {
			return auditBackend{}, err
		}
		if err := pg.Migrate(ctx, pool, cfg.PG, auditstore.Migrations(), log); err != nil {
			pool.Close()
			return auditBackend{}, err
		}
		return auditBackend{
			storage: auditstore.NewPostgres(pool),
			probes:  map[string]httpapi.Probe{"postgres": pg.Healthcheck(pool)},
			close:   pool.Close,
		}, nil

	case storageRedis:
		client, err := redis.Connect(ctx, cfg.Redis, log)
		if err != nil {
			return auditBackend{}, err
		}
		return auditBackend{
			storage: auditstore.NewRedis(client, auditstore.WithStream(cfg.AuditStream)),
			probes:  map[string]httpapi.Probe{"redis": redis.Healthcheck(client)},
			close:   func() { _ = client.Close() },
		}, nil

	case storageMemory:
		log.Warn("audit events are kept in memory only", logger.Component("audit"))
		return auditBackend{storage: audit.NewMemoryStorage(), close: func() {}}, nil

	default:
		return auditBackend{}, ErrUnknownAuditStorage
	}
}

// buildEngine constructs the validation engine shared by every request.
func buildEngine(cfg appConfig, sink validation.AuditSink, log *slog.Logger) (*validation.Engine, error) {
	opts := []validation.Option{
		validation.WithLogger(log),
		validation.WithAuditSink(sink),
	}
	if len(cfg.DisposableDomains) > 0 {
		opts = append(opts, validation.WithDisposableDomains(cfg.DisposableDomains...))
	}
	engine := validation.New(opts...)

	if cfg.RulepackDir != "" {
		packs, err := validation.LoadRulepacks(cfg.RulepackDir, log)
		if err != nil {
			return nil, err
		}
		for _, p := range packs {
			engine.Registry().AddRulepack(p)
		}
		log.Info("rulepacks loaded", logger.Component("validation"), logger.Count(len(packs)))
	}
	return engine, nil
}

func run(ctx context.Context, cfg appConfig, log *slog.Logger) error {
	backend, err := openAuditBackend(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer backend.close()

	sink := audit.NewSink(backend.storage,
		audit.WithSinkOptions(audit.SinkOptions{BufferSize: cfg.AuditBufferSize}),
		audit.WithSinkLogger(log),
	)

	engine, err := buildEngine(cfg, sink, log)
	if err != nil {
		return errors.Join(err, sink.Close(context.Background()))
	}

	sessions := httpapi.NewFormSessions(engine, cfg.FormSessionCapacity, cfg.FormSessionIdleTimeout)
	go purgeSessions(ctx, sessions, cfg.FormSessionIdleTimeout, log)

	apiOpts := []httpapi.Option{
		httpapi.WithLogger(log),
		httpapi.WithMaxBodyBytes(cfg.HTTP.MaxBodyBytes),
		httpapi.WithClientIP(clientip.New(cfg.TrustedProxyHeaders...)),
		httpapi.WithAuditLogger(audit.NewLogger(backend.storage,
			audit.WithRequestIDExtractor(httpapi.RequestIDFromContext),
			audit.WithClientIPExtractor(clientip.FromContext),
		)),
	}
	if cfg.RateLimitCapacity > 0 {
		store := ratelimiter.NewMemoryStore()
		defer store.Close()
		limiter, err := ratelimiter.NewBucket(store, ratelimiter.Config{
			Capacity:       cfg.RateLimitCapacity,
			RefillRate:     cfg.RateLimitRefillRate,
			RefillInterval: cfg.RateLimitRefillInterval,
		})
		if err != nil {
			return errors.Join(err, sink.Close(context.Background()))
		}
		apiOpts = append(apiOpts, httpapi.WithRateLimiter(limiter))
	}
	for name, probe := range backend.probes {
		apiOpts = append(apiOpts, httpapi.WithProbe(name, probe))
	}
	api := httpapi.New(engine, sessions, apiOpts...)

	server := httpserver.New(cfg.HTTP,
		httpserver.WithLogger(log),
		httpserver.WithStopHook(sink.Close),
	)
	return server.Run(ctx, api.Router())
}

// purgeSessions drops idle form sessions every half idle timeout until ctx
// is done. Nothing runs without an idle timeout.
func purgeSessions(ctx context.Context, sessions *httpapi.FormSessions, idle time.Duration, log *slog.Logger) {
	if idle <= 0 {
		return
	}
	ticker := time.NewTicker(idle / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := sessions.Purge(); n > 0 {
				log.Debug("idle form sessions purged", logger.Component("httpapi"), logger.Count(n))
			}
		}
	}
}
