package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dalildz/dalil/pkg/audit"
	"github.com/dalildz/dalil/pkg/clientip"
	"github.com/dalildz/dalil/pkg/logger"
	"github.com/dalildz/dalil/pkg/ratelimiter"
	"github.com/dalildz/dalil/pkg/validation"
)

// Probe is a readiness check of a dependency.
type Probe func(ctx context.Context) error

// API wires HTTP handlers to a validation engine.
type API struct {
	engine   *validation.Engine
	sessions *FormSessions
	audit    *audit.Logger
	log      *slog.Logger
	maxBody  int64
	probes   map[string]Probe
	clientIP clientip.Resolver
	limiter  ratelimiter.Limiter
}

// Option configures an API.
type Option func(*API)

func WithLogger(l *slog.Logger) Option {
	return func(a *API) {
		if l != nil {
			a.log = l
		}
	}
}

// WithAuditLogger records form session lifecycle events.
func WithAuditLogger(l *audit.Logger) Option {
	return func(a *API) { a.audit = l }
}

// WithMaxBodyBytes caps JSON request bodies. Zero disables the cap.
func WithMaxBodyBytes(n int64) Option {
	return func(a *API) { a.maxBody = n }
}

// WithProbe adds a named readiness check to /health/ready.
func WithProbe(name string, p Probe) Option {
	return func(a *API) {
		if p != nil {
			a.probes[name] = p
		}
	}
}

// WithClientIP sets how the client address is resolved. By default only
// RemoteAddr is trusted.
func WithClientIP(r clientip.Resolver) Option {
	return func(a *API) { a.clientIP = r }
}

// WithRateLimiter limits /v1 requests per client IP.
func WithRateLimiter(l ratelimiter.Limiter) Option {
	return func(a *API) { a.limiter = l }
}

// New builds the API. sessions must share engine.
func New(engine *validation.Engine, sessions *FormSessions, opts ...Option) *API {
	if engine == nil || sessions == nil {
		panic("httpapi: engine and sessions are required")
	}
	a := &API{
		engine:   engine,
		sessions: sessions,
		log:      logger.Nop(),
		maxBody:  1 << 20,
		probes:   make(map[string]Probe),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Router returns the HTTP handler serving every route.
func (a *API) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(a.clientIP.Middleware)
	r.Use(a.accessLog)
	r.Use(middleware.Recoverer)

	r.NotFound(a.render(func(*http.Request) Response { return Error(ErrNotFound) }))
	r.MethodNotAllowed(a.render(func(*http.Request) Response { return Error(ErrMethodNotAllowed) }))

	r.Get("/health/live", a.render(a.live))
	r.Get("/health/ready", a.render(a.ready))

	r.Route("/v1", func(r chi.Router) {
		if a.limiter != nil {
			r.Use(a.rateLimit)
		}
		r.Post("/validate", withBody(a, a.validate))
		r.Post("/validate/object", withBody(a, a.validateObject))

		r.Post("/forms", a.render(a.openForm))
		r.Route("/forms/{id}", func(r chi.Router) {
			r.Get("/", a.render(a.formResults))
			r.Delete("/", a.render(a.closeForm))
			r.Post("/validate", withBody(a, a.validateForm))
			r.Delete("/fields", a.render(a.clearFields))
			r.Post("/fields/{field}", withBody(a, a.validateField))
			r.Delete("/fields/{field}", a.render(a.clearField))
		})
	})
	return r
}

// render adapts a handler returning a Response.
func (a *API) render(h func(r *http.Request) Response) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		a.write(w, r, h(r))
	}
}

// withBody decodes the JSON body into R before calling h.
func withBody[R any](a *API, h func(r *http.Request, req R) Response) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req R
		if err := bindJSON(w, r, &req, a.maxBody); err != nil {
			a.write(w, r, Error(err))
			return
		}
		a.write(w, r, h(r, req))
	}
}

func (a *API) write(w http.ResponseWriter, r *http.Request, resp Response) {
	if resp == nil {
		resp = Error(ErrInternalServerError)
	}
	if err := resp.Render(w, r); err != nil {
		a.log.WarnContext(r.Context(), "response render failed", logger.Component("httpapi"), logger.Error(err))
	}
}

func (a *API) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		ip, _ := clientip.FromContext(r.Context())
		level := slog.LevelInfo
		if ww.Status() >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		a.log.Log(r.Context(), level, "http request",
			logger.Component("httpapi"),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("client_ip", ip),
			slog.Int("status", ww.Status()),
			slog.Int("bytes", ww.BytesWritten()),
			logger.Duration(time.Since(start)),
		)
	})
}
