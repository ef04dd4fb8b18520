package httpapi

import (
	"math"
	"net/http"
	"strconv"

	"github.com/dalildz/dalil/pkg/clientip"
	"github.com/dalildz/dalil/pkg/logger"
)

// rateLimit consumes one token per request from the bucket of the client
// IP. Limiter failures let the request through.
func (a *API) rateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key, ok := clientip.FromContext(r.Context())
		if !ok {
			key = "unknown"
		}

		res, err := a.limiter.Allow(r.Context(), key)
		if err != nil {
			a.log.ErrorContext(r.Context(), "rate limiter failed", logger.Component("httpapi"), logger.Error(err))
			next.ServeHTTP(w, r)
			return
		}

		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(res.Limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(max(0, res.Remaining)))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(res.ResetAt.Unix(), 10))

		if !res.Allowed() {
			w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(res.RetryAfter().Seconds()))))
			a.write(w, r, Error(ErrTooManyRequests))
			return
		}
		next.ServeHTTP(w, r)
	})
}
