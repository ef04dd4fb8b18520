package audit

import (
	"context"
	"slices"
	"sync"
)

// Storage persists audit events. Implementations must store the whole batch
// or return an error.
type Storage interface {
	Store(ctx context.Context, events ...Event) error
}

// StorageFunc adapts a function to Storage.
type StorageFunc func(ctx context.Context, events ...Event) error

func (f StorageFunc) Store(ctx context.Context, events ...Event) error {
	return f(ctx, events...)
}

// MemoryStorage keeps events in process memory. Suitable for development
// and tests only.
type MemoryStorage struct {
	mu     sync.RWMutex
	events []Event
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{}
}

func (m *MemoryStorage) Store(ctx context.Context, events ...Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	m.events = append(m.events, events...)
	m.mu.Unlock()
	return nil
}

// Events returns a copy of every stored event in insertion order.
func (m *MemoryStorage) Events() []Event {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.events)
}

// Len returns the number of stored events.
func (m *MemoryStorage) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.events)
}
