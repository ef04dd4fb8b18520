package auditstore

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dalildz/dalil/pkg/audit"
)

// DefaultStream is the stream key used when none is configured.
const DefaultStream = "dalil:security_events"

// DefaultStreamMaxLen caps the stream so an attack cannot exhaust memory.
const DefaultStreamMaxLen = 100_000

// RedisOption configures a Redis store.
type RedisOption func(*Redis)

// WithStream sets the stream key.
func WithStream(key string) RedisOption {
	return func(r *Redis) {
		if key != "" {
			r.stream = key
		}
	}
}

// WithMaxLen caps the stream length. Older entries are trimmed on write.
func WithMaxLen(n int64) RedisOption {
	return func(r *Redis) {
		if n > 0 {
			r.maxLen = n
		}
	}
}

// Redis appends events to a Redis stream, one entry per event.
type Redis struct {
	client redis.Cmdable
	stream string
	maxLen int64
}

func NewRedis(client redis.Cmdable, opts ...RedisOption) *Redis {
	if client == nil {
		panic("auditstore: redis client cannot be nil")
	}
	r := &Redis{
		client: client,
		stream: DefaultStream,
		maxLen: DefaultStreamMaxLen,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Store writes the batch in a single MULTI/EXEC round trip.
func (r *Redis) Store(ctx context.Context, events ...audit.Event) error {
	if len(events) == 0 {
		return nil
	}

	values := make([]map[string]any, 0, len(events))
	for _, ev := range events {
		v, err := streamValues(ev)
		if err != nil {
			return errors.Join(audit.ErrEventValidation, err)
		}
		values = append(values, v)
	}

	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, v := range values {
			pipe.XAdd(ctx, &redis.XAddArgs{
				Stream: r.stream,
				MaxLen: r.maxLen,
				Values: v,
			})
		}
		return nil
	})
	if err != nil {
		return errors.Join(audit.ErrStorageNotAvailable, err)
	}
	return nil
}

func streamValues(ev audit.Event) (map[string]any, error) {
	metadata, err := json.Marshal(ev.Metadata)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"id":          ev.ID,
		"action":      ev.Action,
		"resource":    ev.Resource,
		"resource_id": ev.ResourceID,
		"result":      string(ev.Result),
		"error":       ev.Error,
		"request_id":  ev.RequestID,
		"client_ip":   ev.ClientIP,
		"metadata":    string(metadata),
		"hash":        ev.Hash,
		"created_at":  ev.CreatedAt.UTC().Format(time.RFC3339Nano),
	}, nil
}
