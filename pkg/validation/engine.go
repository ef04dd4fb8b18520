package validation

import (
	"fmt"
	"log/slog"

	"github.com/dalildz/dalil/pkg/logger"
	"github.com/dalildz/dalil/pkg/sanitizer"
)

// EventCriticalFailure is the audit event emitted for each failed critical rule.
const EventCriticalFailure = "critical_validation_failure"

// previewLength caps the string preview sent with audit events.
const previewLength = 50

// Engine validates single values and keyed records against a Registry.
type Engine struct {
	registry          *Registry
	audit             AuditSink
	log               *slog.Logger
	disposableDomains []string
	skipDefaults      bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger used for faulted rules and registry warnings.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

// WithAuditSink sets the receiver of critical-failure events.
func WithAuditSink(s AuditSink) Option {
	return func(e *Engine) {
		if s != nil {
			e.audit = s
		}
	}
}

// WithDisposableDomains replaces the denylist used by the email
// no_suspicious_domains rule. An empty list keeps the default one.
func WithDisposableDomains(domains ...string) Option {
	return func(e *Engine) {
		if len(domains) > 0 {
			e.disposableDomains = domains
		}
	}
}

// WithoutDefaults starts from an empty registry.
func WithoutDefaults() Option {
	return func(e *Engine) {
		e.skipDefaults = true
	}
}

// New builds an engine whose registry holds the default rules and sanitizers.
// It is meant to be created once at startup and shared.
func New(opts ...Option) *Engine {
	e := &Engine{
		audit:             nopSink{},
		log:               logger.Nop(),
		disposableDomains: DefaultDisposableDomains,
	}
	for _, opt := range opts {
		opt(e)
	}

	e.registry = NewRegistry(e.log)
	if !e.skipDefaults {
		registerDefaults(e.registry, e.disposableDomains)
	}
	return e
}

// Registry exposes the underlying registry, mostly for inspection.
func (e *Engine) Registry() *Registry {
	return e.registry
}

// AddRule appends a rule to t.
func (e *Engine) AddRule(t SemanticType, rule Rule) {
	e.registry.AddRule(t, rule)
}

// AddSanitizer sets the sanitizer of t.
func (e *Engine) AddSanitizer(t SemanticType, fn Sanitizer) {
	e.registry.AddSanitizer(t, fn)
}

// Validate runs every rule of t against value and sanitises it.
// context is a free-form label ("legal_text.title") forwarded to audit
// events; it may be empty.
func (e *Engine) Validate(t SemanticType, value any, context string) Result {
	rules := e.registry.Rules(t)

	res := Result{
		Errors:   []string{},
		Warnings: []string{},
	}
	if len(rules) > 0 {
		res.Outcomes = make([]RuleOutcome, 0, len(rules))
	}

	for _, rule := range rules {
		outcome := runRule(rule, value)
		res.Outcomes = append(res.Outcomes, outcome)

		switch outcome.Outcome {
		case OutcomeFaulted:
			e.log.Warn("validation rule failed to execute",
				logger.Component("validation"),
				logger.Rule(rule.Name),
				logger.SemanticType(t.String()),
				logger.Error(outcome.Err),
			)
		case OutcomeFailed:
			if !rule.Critical {
				res.Warnings = append(res.Warnings, rule.Message)
				continue
			}
			res.Errors = append(res.Errors, rule.Message)
			e.audit.Record(EventCriticalFailure, map[string]any{
				"rule":    rule.Name,
				"type":    t.String(),
				"context": context,
				"value":   preview(value),
			})
		}
	}

	res.Sanitized = e.registry.Sanitizer(t)(value)
	res.Valid = len(res.Errors) == 0
	return res
}

// ValidateObject validates each schema field of data in schema order.
// Missing fields are validated as nil. Fields absent from the schema are
// ignored and do not appear in the result.
func (e *Engine) ValidateObject(schema Schema, data map[string]any, context string) SchemaResult {
	out := SchemaResult{
		Valid:     true,
		Results:   make(map[string]Result, len(schema)),
		Sanitized: make(map[string]any, len(schema)),
	}

	for _, field := range schema {
		res := e.Validate(field.Type, data[field.Name], fieldContext(context, field.Name))
		out.Results[field.Name] = res
		out.Sanitized[field.Name] = res.Sanitized
		if !res.Valid {
			out.Valid = false
		}
	}
	return out
}

// NewForm opens a form-editing session backed by this engine.
func (e *Engine) NewForm() *Form {
	return newForm(e)
}

// runRule evaluates one predicate and classifies the run. Panics are
// recovered and reported as faults.
func runRule(rule Rule, value any) (out RuleOutcome) {
	out.Rule = rule.Name

	if rule.Test == nil {
		out.Outcome = OutcomeFaulted
		out.Err = ErrNilPredicate
		return out
	}

	defer func() {
		if r := recover(); r != nil {
			out.Outcome = OutcomeFaulted
			out.Err = fmt.Errorf("%w: %v", ErrRulePanicked, r)
		}
	}()

	ok, err := rule.Test(value)
	switch {
	case err != nil:
		out.Outcome = OutcomeFaulted
		out.Err = err
	case ok:
		out.Outcome = OutcomePassed
	default:
		out.Outcome = OutcomeFailed
	}
	return out
}

func fieldContext(context, field string) string {
	if context == "" {
		return field
	}
	return context + "." + field
}

func preview(value any) any {
	if s, ok := value.(string); ok {
		return sanitizer.Truncate(s, previewLength)
	}
	return value
}
