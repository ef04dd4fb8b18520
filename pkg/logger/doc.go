// Package logger builds the *slog.Logger shared by every dalil component.
//
// New assembles a JSON or text slog.Handler, attaches static attributes such
// as the service name and environment, and wraps the handler so that values
// stored in a context.Context (the request ID for instance) are added to
// each record at Handle time.
//
// Attribute helpers (Error, Rule, SemanticType, Field, ...) keep attribute
// keys consistent across packages:
//
//	log := logger.New(
//	    logger.WithEnvironment("production", "dalil-validation"),
//	    logger.WithContextExtractors(httpapi.RequestIDLogExtractor),
//	)
//	log.WarnContext(ctx, "validation rule failed to execute",
//	    logger.Rule("no_sql_injection"),
//	    logger.SemanticType("string"),
//	    logger.Error(err),
//	)
//
// Helpers that receive a nil value return an empty slog.Attr, which slog
// drops, so callers never need a nil check.
package logger
