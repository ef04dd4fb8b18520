package validation

import (
	"fmt"
	"strings"
)

// SemanticType names the kind of value being validated. It selects both the
// rule list and the sanitizer.
type SemanticType string

// Built-in semantic types.
const (
	TypeString   SemanticType = "string"
	TypeEmail    SemanticType = "email"
	TypePassword SemanticType = "password"
	TypeFilename SemanticType = "filename"
	TypeURL      SemanticType = "url"
	TypeText     SemanticType = "text"
)

var builtinTypes = []SemanticType{TypeString, TypeEmail, TypePassword, TypeFilename, TypeURL, TypeText}

// Custom returns an extension semantic type. Built-in names are accepted and
// map to the built-in type.
func Custom(name string) SemanticType {
	return SemanticType(strings.TrimSpace(name))
}

// Builtin reports whether t is one of the predefined types.
func (t SemanticType) Builtin() bool {
	for _, b := range builtinTypes {
		if t == b {
			return true
		}
	}
	return false
}

func (t SemanticType) String() string {
	return string(t)
}

// Predicate tests a value. A non-nil error means the predicate could not
// decide, which the engine records as a fault rather than a failure.
type Predicate func(value any) (bool, error)

// Rule is a named predicate with the message shown when it fails.
// Critical rules block submission; the others only warn.
type Rule struct {
	Name     string
	Test     Predicate
	Message  string
	Critical bool
}

// Sanitizer transforms a value into its safe form. Sanitizers must not
// panic for any input they accept.
type Sanitizer func(value any) any

// Outcome is the result of running a single rule.
type Outcome uint8

const (
	OutcomePassed Outcome = iota
	OutcomeFailed
	OutcomeFaulted
)

func (o Outcome) String() string {
	switch o {
	case OutcomePassed:
		return "passed"
	case OutcomeFailed:
		return "failed"
	case OutcomeFaulted:
		return "faulted"
	default:
		return "unknown"
	}
}

func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

func (o *Outcome) UnmarshalText(text []byte) error {
	switch string(text) {
	case "passed":
		*o = OutcomePassed
	case "failed":
		*o = OutcomeFailed
	case "faulted":
		*o = OutcomeFaulted
	default:
		return fmt.Errorf("%w: %q", ErrUnknownOutcome, text)
	}
	return nil
}

// RuleOutcome records what happened to one rule during a validation pass.
type RuleOutcome struct {
	Rule    string  `json:"rule"`
	Outcome Outcome `json:"outcome"`
	Err     error   `json:"-"`
}

// Result is the verdict for a single value. Valid is true iff Errors is
// empty; warnings never affect it.
type Result struct {
	Valid     bool          `json:"is_valid"`
	Errors    []string      `json:"errors"`
	Warnings  []string      `json:"warnings"`
	Sanitized any           `json:"sanitized"`
	Outcomes  []RuleOutcome `json:"outcomes,omitempty"`
}

// Faulted returns the outcomes of rules that could not be evaluated.
func (r Result) Faulted() []RuleOutcome {
	var faulted []RuleOutcome
	for _, o := range r.Outcomes {
		if o.Outcome == OutcomeFaulted {
			faulted = append(faulted, o)
		}
	}
	return faulted
}

// Field binds a record key to the semantic type used to validate it.
type Field struct {
	Name string       `json:"field" yaml:"field"`
	Type SemanticType `json:"type" yaml:"type"`
}

// Schema lists the fields of a record in validation order.
type Schema []Field

// SchemaOf builds a schema from name/type pairs, keeping their order:
//
//	validation.SchemaOf("email", validation.TypeEmail, "password", validation.TypePassword)
//
// It panics on an odd number of arguments or a non-string name.
func SchemaOf(pairs ...any) Schema {
	if len(pairs)%2 != 0 {
		panic("validation: SchemaOf expects name/type pairs")
	}
	schema := make(Schema, 0, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		name, ok := pairs[i].(string)
		if !ok {
			panic("validation: SchemaOf field name must be a string")
		}
		var t SemanticType
		switch v := pairs[i+1].(type) {
		case SemanticType:
			t = v
		case string:
			t = Custom(v)
		default:
			panic("validation: SchemaOf field type must be a SemanticType or string")
		}
		schema = append(schema, Field{Name: name, Type: t})
	}
	return schema
}

// SchemaResult aggregates the per-field results of ValidateObject.
type SchemaResult struct {
	Valid     bool              `json:"is_valid"`
	Results   map[string]Result `json:"results"`
	Sanitized map[string]any    `json:"sanitized"`
}

// AuditSink receives security events. Implementations must not block:
// Record is called synchronously from the validation path.
type AuditSink interface {
	Record(event string, payload map[string]any)
}

// AuditSinkFunc adapts a function to AuditSink.
type AuditSinkFunc func(event string, payload map[string]any)

func (f AuditSinkFunc) Record(event string, payload map[string]any) {
	f(event, payload)
}

type nopSink struct{}

func (nopSink) Record(string, map[string]any) {}
