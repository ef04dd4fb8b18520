package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dalildz/dalil/pkg/audit"
	"github.com/dalildz/dalil/pkg/auditstore"
	"github.com/dalildz/dalil/pkg/config"
	"github.com/dalildz/dalil/pkg/logger"
	"github.com/dalildz/dalil/pkg/validation"
)

func TestLoadConfig(t *testing.T) {
	t.Parallel()

	t.Run("defaults", func(t *testing.T) {
		t.Parallel()
		cfg, err := loadConfig(config.WithEnvironment(map[string]string{}))
		require.NoError(t, err)

		assert.Equal(t, "development", cfg.Env)
		assert.Equal(t, storageMemory, cfg.AuditStorage)
		assert.Equal(t, 1000, cfg.AuditBufferSize)
		assert.Equal(t, 10000, cfg.FormSessionCapacity)
		assert.Equal(t, 30*time.Minute, cfg.FormSessionIdleTimeout)
		assert.Equal(t, ":8080", cfg.HTTP.Addr)
		assert.Equal(t, int64(1<<20), cfg.HTTP.MaxBodyBytes)
		assert.Equal(t, "redis://localhost:6379/0", cfg.Redis.ConnectionURL)
		assert.Empty(t, cfg.DisposableDomains)
		assert.Equal(t, 120, cfg.RateLimitCapacity)
		assert.Empty(t, cfg.TrustedProxyHeaders)
	})

	t.Run("overrides", func(t *testing.T) {
		t.Parallel()
		cfg, err := loadConfig(config.WithEnvironment(map[string]string{
			"APP_ENV":                       "production",
			"VALIDATION_DISPOSABLE_DOMAINS": "yopmail.com,trashmail.com",
			"AUDIT_STORAGE":                 "postgres",
			"PG_CONN_URL":                   "postgres://localhost/dalil",
			"HTTP_ADDR":                     ":9090",
			"FORM_SESSION_IDLE_TIMEOUT":     "5m",
			"TRUSTED_PROXY_HEADERS":         "CF-Connecting-IP,X-Forwarded-For",
		}))
		require.NoError(t, err)

		assert.Equal(t, []string{"yopmail.com", "trashmail.com"}, cfg.DisposableDomains)
		assert.Equal(t, storagePostgres, cfg.AuditStorage)
		assert.Equal(t, ":9090", cfg.HTTP.Addr)
		assert.Equal(t, 5*time.Minute, cfg.FormSessionIdleTimeout)
		assert.Equal(t, []string{"CF-Connecting-IP", "X-Forwarded-For"}, cfg.TrustedProxyHeaders)
	})

	invalid := []struct {
		name string
		env  map[string]string
	}{
		{"unknown storage", map[string]string{"AUDIT_STORAGE": "mongo"}},
		{"postgres without url", map[string]string{"AUDIT_STORAGE": "postgres"}},
		{"no session capacity", map[string]string{"FORM_SESSION_CAPACITY": "0"}},
	}
	for _, tt := range invalid {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := loadConfig(config.WithEnvironment(tt.env))
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestOpenAuditBackend(t *testing.T) {
	t.Parallel()

	t.Run("memory", func(t *testing.T) {
		t.Parallel()
		backend, err := openAuditBackend(t.Context(), appConfig{AuditStorage: storageMemory}, logger.Nop())
		require.NoError(t, err)
		defer backend.close()

		assert.IsType(t, &audit.MemoryStorage{}, backend.storage)
		assert.Empty(t, backend.probes)
	})

	t.Run("redis", func(t *testing.T) {
		t.Parallel()
		mr := miniredis.RunT(t)

		cfg, err := loadConfig(config.WithEnvironment(map[string]string{
			"AUDIT_STORAGE":        storageRedis,
			"REDIS_URL":            "redis://" + mr.Addr() + "/0",
			"REDIS_RETRY_ATTEMPTS": "1",
		}))
		require.NoError(t, err)

		backend, err := openAuditBackend(t.Context(), cfg, logger.Nop())
		require.NoError(t, err)
		defer backend.close()

		assert.IsType(t, &auditstore.Redis{}, backend.storage)
		require.Contains(t, backend.probes, "redis")
		assert.NoError(t, backend.probes["redis"](t.Context()))

		require.NoError(t, backend.storage.Store(t.Context(), audit.Event{ID: "e1", Action: "form.opened", CreatedAt: time.Now()}))
		assert.True(t, mr.Exists(auditstore.DefaultStream))
	})

	t.Run("unknown", func(t *testing.T) {
		t.Parallel()
		_, err := openAuditBackend(t.Context(), appConfig{AuditStorage: "s3"}, logger.Nop())
		assert.ErrorIs(t, err, ErrUnknownAuditStorage)
	})
}

func TestBuildEngine(t *testing.T) {
	t.Parallel()

	t.Run("custom disposable domains", func(t *testing.T) {
		t.Parallel()
		engine, err := buildEngine(appConfig{DisposableDomains: []string{"yopmail.com"}}, nil, logger.Nop())
		require.NoError(t, err)

		res := engine.Validate(validation.TypeEmail, "a@yopmail.com", "signup")
		assert.Equal(t, []string{validation.MsgSuspiciousDomain}, res.Warnings)

		res = engine.Validate(validation.TypeEmail, "a@tempmail.com", "signup")
		assert.Empty(t, res.Warnings)
	})

	t.Run("rulepacks", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		pack := "type: filename\nrules:\n  - name: pdf_only\n    pattern: '\\.pdf$'\n    match: require\n    message: Only PDF files are accepted\n"
		require.NoError(t, os.WriteFile(filepath.Join(dir, "files.yaml"), []byte(pack), 0o600))

		engine, err := buildEngine(appConfig{RulepackDir: dir}, nil, logger.Nop())
		require.NoError(t, err)

		res := engine.Validate(validation.TypeFilename, "loi.docx", "upload")
		assert.True(t, res.Valid)
		assert.Equal(t, []string{"Only PDF files are accepted"}, res.Warnings)
	})

	t.Run("missing rulepack dir", func(t *testing.T) {
		t.Parallel()
		_, err := buildEngine(appConfig{RulepackDir: filepath.Join(t.TempDir(), "nope")}, nil, logger.Nop())
		assert.ErrorIs(t, err, validation.ErrRulepackDirNotFound)
	})
}
