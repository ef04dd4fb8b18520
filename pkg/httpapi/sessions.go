package httpapi

import (
	"time"

	"github.com/google/uuid"

	"github.com/dalildz/dalil/pkg/cache"
	"github.com/dalildz/dalil/pkg/validation"
)

// FormSessions holds open form sessions keyed by a random ID. The least
// recently used session is dropped when capacity is reached.
type FormSessions struct {
	engine *validation.Engine
	forms  *cache.LRU[string, *validation.Form]
}

// NewFormSessions panics when capacity is not positive. A zero idleTimeout
// keeps sessions until evicted by capacity.
func NewFormSessions(engine *validation.Engine, capacity int, idleTimeout time.Duration) *FormSessions {
	return &FormSessions{
		engine: engine,
		forms: cache.NewLRU[string, *validation.Form](capacity,
			cache.WithIdleTimeout[string, *validation.Form](idleTimeout),
		),
	}
}

// Open starts a session and returns its ID.
func (s *FormSessions) Open() (string, *validation.Form) {
	id := uuid.New().String()
	form := s.engine.NewForm()
	s.forms.Put(id, form)
	return id, form
}

// Get returns the session and refreshes its idle timer.
func (s *FormSessions) Get(id string) (*validation.Form, bool) {
	return s.forms.Get(id)
}

// Close ends a session and returns its form, if it existed.
func (s *FormSessions) Close(id string) (*validation.Form, bool) {
	return s.forms.Remove(id)
}

// Len counts open sessions.
func (s *FormSessions) Len() int {
	return s.forms.Len()
}

// Purge drops sessions idle for longer than the timeout.
func (s *FormSessions) Purge() int {
	return s.forms.Purge()
}
