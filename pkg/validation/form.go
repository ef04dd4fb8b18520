package validation

import (
	"maps"
	"sync"
)

// Form caches the latest result of each field of a form being edited, so a
// form can re-validate one field per keystroke and still render every
// field's messages. A Form lives as long as the editing session and is never
// persisted.
type Form struct {
	engine  *Engine
	mu      sync.RWMutex
	results map[string]Result
}

func newForm(e *Engine) *Form {
	return &Form{
		engine:  e,
		results: make(map[string]Result),
	}
}

// ValidateField validates value as t and caches the result under fieldName.
func (f *Form) ValidateField(t SemanticType, value any, fieldName, context string) Result {
	res := f.engine.Validate(t, value, context)

	f.mu.Lock()
	f.results[fieldName] = res
	f.mu.Unlock()

	return res
}

// ValidateForm validates data against schema and replaces the whole cache
// with the per-field results.
func (f *Form) ValidateForm(schema Schema, data map[string]any, context string) SchemaResult {
	res := f.engine.ValidateObject(schema, data, context)

	f.mu.Lock()
	f.results = maps.Clone(res.Results)
	f.mu.Unlock()

	return res
}

// Clear drops the cached results of the named fields, or of every field
// when called without arguments.
func (f *Form) Clear(fieldNames ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(fieldNames) == 0 {
		f.results = make(map[string]Result)
		return
	}
	for _, name := range fieldNames {
		delete(f.results, name)
	}
}

// Results returns a snapshot of the cached results.
func (f *Form) Results() map[string]Result {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return maps.Clone(f.results)
}

// Result returns the cached result of one field.
func (f *Form) Result(fieldName string) (Result, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	res, ok := f.results[fieldName]
	return res, ok
}

// CanSubmit reports whether no cached field carries a blocking error.
// Warnings never prevent submission.
func (f *Form) CanSubmit() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	for _, res := range f.results {
		if !res.Valid {
			return false
		}
	}
	return true
}
