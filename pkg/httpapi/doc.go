// Package httpapi exposes the validation engine over HTTP for form
// front-ends.
//
// Stateless endpoints validate a single value or a whole record. Form
// sessions keep the per-field results of one editing session in memory so a
// client can re-validate field by field and ask whether the form can be
// submitted. Sessions live in a bounded LRU with an idle timeout and are
// never persisted.
//
//	POST   /v1/validate                     {type, value, context}
//	POST   /v1/validate/object              {schema: [{field, type}], data, context}
//	POST   /v1/forms                        opens a session, returns {id}
//	GET    /v1/forms/{id}                   cached results and can_submit
//	POST   /v1/forms/{id}/fields/{field}    {type, value, context}
//	POST   /v1/forms/{id}/validate          same body as /v1/validate/object
//	DELETE /v1/forms/{id}/fields/{field}    clears one field
//	DELETE /v1/forms/{id}/fields            clears every field
//	DELETE /v1/forms/{id}                   ends the session
//	GET    /health/live, /health/ready
//
// Requests under /v1 can be limited per client IP with a token bucket; a
// denied request gets 429 with Retry-After.
//
// Errors use the envelope {"error": {"code": "...", "message": "..."}}.
package httpapi
