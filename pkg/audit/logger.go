package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// contextExtractor extracts string values from context.
// It returns (value, found) where found indicates if extraction succeeded.
type contextExtractor func(context.Context) (string, bool)

// Logger writes audit events synchronously.
type Logger struct {
	storage            Storage
	requestIDExtractor contextExtractor
	clientIPExtractor  contextExtractor
	now                func() time.Time
}

// Option configures Logger behavior during initialization
type Option func(*Logger)

// WithRequestIDExtractor fills Event.RequestID from the request context.
func WithRequestIDExtractor(fn func(context.Context) (string, bool)) Option {
	return func(l *Logger) {
		l.requestIDExtractor = fn
	}
}

// WithClientIPExtractor fills Event.ClientIP from the request context.
func WithClientIPExtractor(fn func(context.Context) (string, bool)) Option {
	return func(l *Logger) {
		l.clientIPExtractor = fn
	}
}

// NewLogger creates a new audit logger
func NewLogger(storage Storage, opts ...Option) *Logger {
	if storage == nil {
		panic("audit: storage cannot be nil")
	}

	l := &Logger{
		storage: storage,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Log records a successful action
func (l *Logger) Log(ctx context.Context, action string, opts ...EventOption) error {
	event := l.newEvent(ctx, action, ResultSuccess)
	return l.store(ctx, event, opts)
}

// LogError records a failed action
func (l *Logger) LogError(ctx context.Context, action string, err error, opts ...EventOption) error {
	event := l.newEvent(ctx, action, ResultError)
	if err != nil {
		event.Error = err.Error()
	}
	return l.store(ctx, event, opts)
}

func (l *Logger) newEvent(ctx context.Context, action string, result Result) Event {
	event := Event{
		ID:        uuid.New().String(),
		Action:    action,
		Result:    result,
		CreatedAt: l.now().UTC(),
	}
	if l.requestIDExtractor != nil {
		if requestID, ok := l.requestIDExtractor(ctx); ok {
			event.RequestID = requestID
		}
	}
	if l.clientIPExtractor != nil {
		if ip, ok := l.clientIPExtractor(ctx); ok {
			event.ClientIP = ip
		}
	}
	return event
}

func (l *Logger) store(ctx context.Context, event Event, opts []EventOption) error {
	for _, opt := range opts {
		opt(&event)
	}

	if err := event.Validate(); err != nil {
		return err
	}

	event.Hash = Hash(event)
	return l.storage.Store(ctx, event)
}
