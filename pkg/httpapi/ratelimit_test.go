package httpapi_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dalildz/dalil/pkg/clientip"
	"github.com/dalildz/dalil/pkg/httpapi"
	"github.com/dalildz/dalil/pkg/ratelimiter"
)

type failingLimiter struct{}

func (failingLimiter) Allow(context.Context, string) (ratelimiter.Result, error) {
	return ratelimiter.Result{}, errors.New("store down")
}

func postValidate(t *testing.T, h http.Handler, forwardedFor string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/v1/validate", strings.NewReader(`{"type":"string","value":"ok"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Forwarded-For", forwardedFor)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRateLimit(t *testing.T) {
	t.Parallel()

	store := ratelimiter.NewMemoryStore(ratelimiter.WithCleanupInterval(0))
	limiter, err := ratelimiter.NewBucket(store, ratelimiter.Config{Capacity: 2, RefillRate: 1, RefillInterval: time.Hour})
	require.NoError(t, err)

	env := newTestEnv(t,
		httpapi.WithRateLimiter(limiter),
		httpapi.WithClientIP(clientip.New("X-Forwarded-For")),
	)

	for range 2 {
		rec := postValidate(t, env.handler, "198.51.100.7")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "2", rec.Header().Get("X-RateLimit-Limit"))
	}

	rec := postValidate(t, env.handler, "198.51.100.7")
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
	assert.Equal(t, "too_many_requests", decode[errorBody](t, rec).Error.Code)

	rec = postValidate(t, env.handler, "203.0.113.9")
	assert.Equal(t, http.StatusOK, rec.Code, "other clients keep their own bucket")

	rec = env.do(t, http.MethodGet, "/health/live", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("X-RateLimit-Limit"), "health checks are not limited")
}

func TestRateLimit_LimiterFailureLetsRequestThrough(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, httpapi.WithRateLimiter(failingLimiter{}))
	rec := postValidate(t, env.handler, "")
	assert.Equal(t, http.StatusOK, rec.Code)
}
