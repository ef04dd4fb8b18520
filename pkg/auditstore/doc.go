// Package auditstore persists audit events outside the process.
//
// Postgres writes to the security_events table created by the embedded
// goose migrations (see Migrations). Redis appends to a capped stream, which
// suits deployments that ship security events to a SIEM consumer.
package auditstore
