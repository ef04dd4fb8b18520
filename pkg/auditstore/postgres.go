package auditstore

import (
	"context"
	"embed"
	"errors"
	"io/fs"

	"github.com/jackc/pgx/v5"

	"github.com/dalildz/dalil/pkg/audit"
	"github.com/dalildz/dalil/pkg/pg"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Migrations returns the goose migrations of the audit schema, for pg.Migrate.
func Migrations() fs.FS {
	sub, err := fs.Sub(migrations, "migrations")
	if err != nil {
		panic(err)
	}
	return sub
}

const eventsTable = "security_events"

var eventColumns = []string{
	"id", "action", "resource", "resource_id", "result",
	"error", "request_id", "client_ip", "metadata", "hash", "created_at",
}

const insertEventSQL = `INSERT INTO security_events
	(id, action, resource, resource_id, result, error, request_id, client_ip, metadata, hash, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	ON CONFLICT (id) DO NOTHING`

// DB is the subset of *pgxpool.Pool used by Postgres.
type DB interface {
	CopyFrom(ctx context.Context, table pgx.Identifier, columns []string, src pgx.CopyFromSource) (int64, error)
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

// Postgres stores events in PostgreSQL.
type Postgres struct {
	db DB
}

func NewPostgres(db DB) *Postgres {
	if db == nil {
		panic("auditstore: db cannot be nil")
	}
	return &Postgres{db: db}
}

// Store bulk-loads events with COPY. When the batch contains an ID that is
// already stored, typically a retried batch, it falls back to row inserts
// that skip existing IDs.
func (p *Postgres) Store(ctx context.Context, events ...audit.Event) error {
	if len(events) == 0 {
		return nil
	}

	_, err := p.db.CopyFrom(ctx, pgx.Identifier{eventsTable}, eventColumns,
		pgx.CopyFromSlice(len(events), func(i int) ([]any, error) {
			return eventRow(events[i]), nil
		}),
	)
	if err == nil {
		return nil
	}
	if !pg.IsDuplicateKeyError(err) {
		return errors.Join(audit.ErrStorageNotAvailable, err)
	}

	batch := &pgx.Batch{}
	for _, ev := range events {
		batch.Queue(insertEventSQL, eventRow(ev)...)
	}

	results := p.db.SendBatch(ctx, batch)
	for range events {
		if _, err := results.Exec(); err != nil {
			_ = results.Close()
			return errors.Join(audit.ErrStorageNotAvailable, err)
		}
	}
	if err := results.Close(); err != nil {
		return errors.Join(audit.ErrStorageNotAvailable, err)
	}
	return nil
}

func eventRow(ev audit.Event) []any {
	var metadata any
	if len(ev.Metadata) > 0 {
		metadata = ev.Metadata
	}
	return []any{
		ev.ID, ev.Action, ev.Resource, ev.ResourceID, string(ev.Result),
		ev.Error, ev.RequestID, ev.ClientIP, metadata, ev.Hash, ev.CreatedAt,
	}
}
