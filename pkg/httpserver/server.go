package httpserver

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/dalildz/dalil/pkg/logger"
)

type Config struct {
	Addr              string        `env:"HTTP_ADDR" envDefault:":8080"`             // Addr is the address the server listens on.
	ReadHeaderTimeout time.Duration `env:"HTTP_READ_HEADER_TIMEOUT" envDefault:"5s"` // ReadHeaderTimeout bounds reading request headers.
	ReadTimeout       time.Duration `env:"HTTP_READ_TIMEOUT" envDefault:"15s"`       // ReadTimeout is the maximum duration for reading the entire request.
	WriteTimeout      time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"15s"`      // WriteTimeout is the maximum duration before timing out writes of the response.
	IdleTimeout       time.Duration `env:"HTTP_IDLE_TIMEOUT" envDefault:"120s"`      // IdleTimeout is the keep-alive idle time.
	ShutdownTimeout   time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" envDefault:"10s"`   // ShutdownTimeout is the time allowed for graceful shutdown.
	MaxBodyBytes      int64         `env:"HTTP_MAX_BODY_BYTES" envDefault:"1048576"` // MaxBodyBytes caps request bodies read by handlers.
}

// Option configures the server.
type Option func(*Server)

// WithLogger supplies the logger for lifecycle messages.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.log = l
		}
	}
}

// WithStopHook registers a function run after the listener closed, in
// registration order. Typical hooks flush buffered audit events.
func WithStopHook(h func(context.Context) error) Option {
	if h == nil {
		panic("httpserver: nil stop hook")
	}
	return func(s *Server) { s.stopHooks = append(s.stopHooks, h) }
}

// WithListener serves on ln instead of listening on Config.Addr, for
// inherited sockets.
func WithListener(ln net.Listener) Option {
	return func(s *Server) { s.listener = ln }
}

// Server wraps http.Server with graceful shutdown and logging.
type Server struct {
	cfg       Config
	log       *slog.Logger
	stopHooks []func(context.Context) error

	mu       sync.Mutex
	srv      *http.Server
	listener net.Listener
	once     sync.Once
	stopped  chan struct{}
	stopErr  error
}

// New returns a configured Server. Zero durations leave the net/http
// defaults in place, except ShutdownTimeout which defaults to 10s.
func New(cfg Config, opts ...Option) *Server {
	if cfg.Addr == "" {
		cfg.Addr = ":8080"
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 10 * time.Second
	}

	s := &Server{
		cfg:     cfg,
		log:     logger.Nop(),
		stopped: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Addr returns the bound address once Run started listening, or the
// configured one before.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.cfg.Addr
}

// Run listens and serves handler until ctx is cancelled or Shutdown is
// called. Listen and serve errors are returned wrapped with ErrStart; the
// stop hooks run in every case once serving began.
func (s *Server) Run(ctx context.Context, handler http.Handler) error {
	if handler == nil {
		handler = http.NotFoundHandler()
	}

	s.mu.Lock()
	if s.srv != nil {
		s.mu.Unlock()
		return errors.Join(ErrStart, ErrAlreadyRunning)
	}
	select {
	case <-s.stopped:
		s.mu.Unlock()
		return s.stopErr
	default:
	}

	ln := s.listener
	if ln == nil {
		var err error
		if ln, err = net.Listen("tcp", s.cfg.Addr); err != nil {
			s.mu.Unlock()
			return errors.Join(ErrStart, err)
		}
	}

	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: s.cfg.ReadHeaderTimeout,
		ReadTimeout:       s.cfg.ReadTimeout,
		WriteTimeout:      s.cfg.WriteTimeout,
		IdleTimeout:       s.cfg.IdleTimeout,
		ErrorLog:          slog.NewLogLogger(s.log.Handler(), slog.LevelWarn),
	}
	s.srv = srv
	s.listener = ln
	s.mu.Unlock()

	s.log.Info("http server started", logger.Component("httpserver"), slog.String("addr", ln.Addr().String()))

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()

	var runErr error
	select {
	case <-ctx.Done():
		runErr = s.Shutdown(context.Background())
		<-errCh
	case <-s.stopped:
		// Shutdown may have run before srv was published.
		_ = srv.Close()
		<-errCh
		runErr = s.stopErr
	case err := <-errCh:
		// Stop hooks run on every exit path so buffered events get flushed.
		runErr = s.Shutdown(context.Background())
		if !errors.Is(err, http.ErrServerClosed) {
			runErr = errors.Join(ErrStart, err, runErr)
		}
	}
	return runErr
}

// Shutdown stops accepting connections, waits for in-flight requests and
// runs the stop hooks. Safe for repeated calls; only the first does work.
func (s *Server) Shutdown(ctx context.Context) error {
	s.once.Do(func() {
		defer close(s.stopped)

		s.mu.Lock()
		srv := s.srv
		s.mu.Unlock()

		ctx, cancel := context.WithTimeout(ctx, s.cfg.ShutdownTimeout)
		defer cancel()

		var errs []error
		if srv != nil {
			if err := srv.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errs = append(errs, errors.Join(ErrShutdown, err))
			}
		}
		for _, hook := range s.stopHooks {
			if err := hook(ctx); err != nil {
				errs = append(errs, err)
			}
		}

		s.stopErr = errors.Join(errs...)
		s.log.Info("http server stopped", logger.Component("httpserver"), logger.Error(s.stopErr))
	})
	return s.stopErr
}
