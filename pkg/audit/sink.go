package audit

import (
	"context"
	"log/slog"
	"maps"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dalildz/dalil/pkg/logger"
)

// SinkOptions configures the batching and buffering behavior of a Sink.
type SinkOptions struct {
	BufferSize     int           // Max events queued in memory; further events are dropped
	BatchSize      int           // Target events per storage call
	BatchTimeout   time.Duration // Max time a partial batch waits before being flushed
	StorageTimeout time.Duration // Per-batch storage timeout
}

// SinkOption configures a Sink.
type SinkOption func(*Sink)

// WithSinkOptions overrides the buffering settings. Zero fields keep their defaults.
func WithSinkOptions(opts SinkOptions) SinkOption {
	return func(s *Sink) {
		if opts.BufferSize > 0 {
			s.options.BufferSize = opts.BufferSize
		}
		if opts.BatchSize > 0 {
			s.options.BatchSize = opts.BatchSize
		}
		if opts.BatchTimeout > 0 {
			s.options.BatchTimeout = opts.BatchTimeout
		}
		if opts.StorageTimeout > 0 {
			s.options.StorageTimeout = opts.StorageTimeout
		}
	}
}

// WithSinkLogger sets the logger used for dropped events and storage errors.
func WithSinkLogger(l *slog.Logger) SinkOption {
	return func(s *Sink) {
		if l != nil {
			s.log = l
		}
	}
}

// Sink is a fire-and-forget event receiver. It satisfies
// validation.AuditSink.
type Sink struct {
	storage Storage
	log     *slog.Logger
	options SinkOptions
	now     func() time.Time

	events chan Event
	done   chan struct{}
	wg     sync.WaitGroup

	closeOnce sync.Once
	mu        sync.RWMutex
	closed    bool
}

// NewSink starts the background worker. Call Close during shutdown to flush
// queued events.
func NewSink(storage Storage, opts ...SinkOption) *Sink {
	if storage == nil {
		panic("audit: storage cannot be nil")
	}

	s := &Sink{
		storage: storage,
		log:     logger.Nop(),
		now:     time.Now,
		options: SinkOptions{
			BufferSize:     1000,
			BatchSize:      100,
			BatchTimeout:   100 * time.Millisecond,
			StorageTimeout: 5 * time.Second,
		},
		done: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.events = make(chan Event, s.options.BufferSize)

	s.wg.Add(1)
	go s.worker()

	return s
}

// Record queues a security event. It never blocks: when the buffer is full
// or the sink is closed the event is dropped and a warning is logged.
func (s *Sink) Record(action string, payload map[string]any) {
	event := Event{
		ID:        uuid.New().String(),
		Action:    action,
		Result:    ResultFailure,
		Metadata:  maps.Clone(payload),
		CreatedAt: s.now().UTC(),
	}
	if v, ok := payload["type"].(string); ok {
		event.Resource = v
	}
	if v, ok := payload["context"].(string); ok {
		event.ResourceID = v
	}
	event.Hash = Hash(event)

	if err := s.enqueue(event); err != nil {
		s.log.Warn("audit event dropped",
			logger.Component("audit"),
			logger.Event(action),
			logger.Error(err),
		)
	}
}

func (s *Sink) enqueue(event Event) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return ErrSinkClosed
	}

	select {
	case s.events <- event:
		return nil
	default:
		return ErrBufferFull
	}
}

func (s *Sink) worker() {
	defer s.wg.Done()

	batch := make([]Event, 0, s.options.BatchSize)
	ticker := time.NewTicker(s.options.BatchTimeout)
	defer ticker.Stop()

	flush := func() {
		if len(batch) == 0 {
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), s.options.StorageTimeout)
		defer cancel()

		if err := s.storage.Store(ctx, batch...); err != nil {
			s.log.Error("audit batch store failed",
				logger.Component("audit"),
				logger.Count(len(batch)),
				logger.Error(err),
			)
		}

		clear(batch)
		batch = batch[:0]
	}

	for {
		select {
		case event := <-s.events:
			batch = append(batch, event)
			if len(batch) >= s.options.BatchSize {
				flush()
			}

		case <-ticker.C:
			flush()

		case <-s.done:
			for {
				select {
				case event := <-s.events:
					batch = append(batch, event)
					if len(batch) >= s.options.BatchSize {
						flush()
					}
				default:
					flush()
					return
				}
			}
		}
	}
}

// Close stops accepting events and waits for queued ones to be written.
// The context bounds the wait; on timeout some events may remain unflushed.
func (s *Sink) Close(ctx context.Context) error {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.closed = true
		s.mu.Unlock()
		close(s.done)
	})

	doneChan := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(doneChan)
	}()

	select {
	case <-doneChan:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
