// Package audit records security events such as critical validation
// failures.
//
// Two entry points share the same Event type and Storage backends:
//
//   - Sink implements validation.AuditSink. Record never blocks the
//     validation path: events are queued on a buffered channel and a
//     background worker writes them to Storage in batches. When the buffer is
//     full the event is dropped and a warning is logged.
//
//   - Logger is the synchronous API used by request handlers. It stamps the
//     event with an ID, a timestamp, and the request ID and client IP taken
//     from the context.
//
// Storage implementations live in pkg/auditstore (PostgreSQL, Redis);
// MemoryStorage is provided here for development and tests.
//
// # Usage
//
//	store := audit.NewMemoryStorage()
//	sink := audit.NewSink(store, audit.WithSinkLogger(log))
//	defer sink.Close(ctx)
//
//	engine := validation.New(validation.WithAuditSink(sink))
//
//	auditLog := audit.NewLogger(store,
//		audit.WithRequestIDExtractor(httpapi.RequestIDFromContext),
//		audit.WithClientIPExtractor(clientip.FromContext),
//	)
//	_ = auditLog.Log(ctx, "form.opened", audit.WithResource("form", id))
package audit
