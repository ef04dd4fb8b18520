package validation

import (
	"log/slog"
	"slices"
	"sync"

	"github.com/dalildz/dalil/pkg/logger"
)

// Registry holds the rules and sanitizers of every semantic type.
// Rule lists are append-only; a sanitizer can be replaced but not removed.
type Registry struct {
	mu         sync.RWMutex
	rules      map[SemanticType][]Rule
	sanitizers map[SemanticType]Sanitizer
	log        *slog.Logger
}

// NewRegistry returns an empty registry. A nil logger discards output.
func NewRegistry(log *slog.Logger) *Registry {
	if log == nil {
		log = logger.Nop()
	}
	return &Registry{
		rules:      make(map[SemanticType][]Rule),
		sanitizers: make(map[SemanticType]Sanitizer),
		log:        log,
	}
}

// AddRule appends rule to the list of t. A duplicate name within the same
// type is logged but kept: both rules run and both messages can surface.
func (r *Registry) AddRule(t SemanticType, rule Rule) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if slices.ContainsFunc(r.rules[t], func(existing Rule) bool { return existing.Name == rule.Name }) {
		r.log.Warn("duplicate validation rule name",
			logger.Component("validation"),
			logger.SemanticType(t.String()),
			logger.Rule(rule.Name),
		)
	}
	r.rules[t] = append(r.rules[t], rule)
}

// Rules returns a copy of the rules of t in registration order. Unknown
// types yield an empty slice.
func (r *Registry) Rules(t SemanticType) []Rule {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.rules[t])
}

// AddSanitizer sets the sanitizer of t, replacing any previous one.
// Registrations are never removed: a nil sanitizer is ignored with a warning.
func (r *Registry) AddSanitizer(t SemanticType, fn Sanitizer) {
	if fn == nil {
		r.log.Warn("nil sanitizer ignored", logger.Component("validation"), logger.SemanticType(t.String()))
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.sanitizers[t] = fn
}

// Sanitizer returns the sanitizer of t, or the identity function.
func (r *Registry) Sanitizer(t SemanticType) Sanitizer {
	r.mu.RLock()
	fn, ok := r.sanitizers[t]
	r.mu.RUnlock()

	if !ok {
		return identity
	}
	return fn
}

// Types lists every type that has at least one rule or a sanitizer, sorted.
func (r *Registry) Types() []SemanticType {
	r.mu.RLock()
	defer r.mu.RUnlock()

	types := make([]SemanticType, 0, len(r.rules)+len(r.sanitizers))
	for t := range r.rules {
		types = append(types, t)
	}
	for t := range r.sanitizers {
		if _, ok := r.rules[t]; !ok {
			types = append(types, t)
		}
	}
	slices.Sort(types)
	return types
}

func identity(value any) any {
	return value
}
