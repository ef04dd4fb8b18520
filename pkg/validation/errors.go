package validation

import "errors"

var (
	// ErrNotString is returned by string predicates receiving another type.
	ErrNotString = errors.New("value is not a string")

	// ErrNilPredicate marks a rule registered without a Test function.
	ErrNilPredicate = errors.New("rule has no predicate")

	// ErrRulePanicked wraps the value recovered from a panicking predicate.
	ErrRulePanicked = errors.New("rule predicate panicked")

	// ErrUnknownOutcome is returned when decoding an unrecognised outcome name.
	ErrUnknownOutcome = errors.New("unknown rule outcome")

	// ErrInvalidRulepack is returned when a rulepack file cannot be compiled.
	ErrInvalidRulepack = errors.New("invalid rulepack")

	// ErrRulepackDirNotFound is returned when the rulepack directory does not exist.
	ErrRulepackDirNotFound = errors.New("rulepack directory not found")
)
