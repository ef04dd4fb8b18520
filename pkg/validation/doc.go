// Package validation implements the input validation and sanitisation engine
// used by dalil.dz forms (legal text enrichment, procedure submissions,
// account management).
//
// The engine keeps, per semantic type, an ordered list of predicate rules and
// at most one sanitizer. Validating a value runs every rule of its type in
// registration order, sorts failures into blocking errors (critical rules)
// and advisory warnings (the others), then sanitises the value
// unconditionally:
//
//	engine := validation.New(
//	    validation.WithLogger(log),
//	    validation.WithAuditSink(sink),
//	)
//
//	res := engine.Validate(validation.TypeString, title, "legal_text.title")
//	if !res.Valid {
//	    // res.Errors holds the messages of the failed critical rules
//	}
//	store(res.Sanitized)
//
// # Rules
//
// A Rule wraps a Predicate returning (ok, err). The engine converts every
// run into an explicit Outcome: passed, failed, or faulted. A faulted rule
// (error or panic inside the predicate) is logged and otherwise treated as
// passed, so one broken rule never aborts a validation pass.
//
// Critical failures are also reported to an AuditSink as a
// "critical_validation_failure" event carrying the rule, type, context and a
// preview of the offending value.
//
// # Types
//
// Built-in semantic types are exposed as constants (TypeString, TypeEmail,
// TypePassword, TypeFilename, TypeURL, TypeText). Extension types are created
// with Custom. A type without rules always validates; a type without a
// sanitizer returns the value unchanged.
//
// # Forms
//
// Form is a per-session cache of field results for interactive editing. It is
// created with Engine.NewForm and discarded with the editing session.
//
// # Concurrency
//
// The registry only grows: rules are appended and sanitizers replaced under a
// lock, never removed. Validate and ValidateObject can be called from any
// number of goroutines.
package validation
