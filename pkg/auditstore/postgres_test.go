package auditstore_test

import (
	"context"
	"errors"
	"io/fs"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dalildz/dalil/pkg/audit"
	"github.com/dalildz/dalil/pkg/auditstore"
)

type fakeDB struct {
	copyErr  error
	copied   [][]any
	table    pgx.Identifier
	columns  []string
	batch    *pgx.Batch
	execErrs []error
}

func (f *fakeDB) CopyFrom(_ context.Context, table pgx.Identifier, columns []string, src pgx.CopyFromSource) (int64, error) {
	f.table = table
	f.columns = columns
	if f.copyErr != nil {
		return 0, f.copyErr
	}
	for src.Next() {
		row, err := src.Values()
		if err != nil {
			return 0, err
		}
		f.copied = append(f.copied, row)
	}
	return int64(len(f.copied)), nil
}

func (f *fakeDB) SendBatch(_ context.Context, b *pgx.Batch) pgx.BatchResults {
	f.batch = b
	return &fakeBatchResults{errs: f.execErrs}
}

type fakeBatchResults struct {
	errs []error
	n    int
}

func (r *fakeBatchResults) Exec() (pgconn.CommandTag, error) {
	var err error
	if r.n < len(r.errs) {
		err = r.errs[r.n]
	}
	r.n++
	return pgconn.CommandTag{}, err
}

func (r *fakeBatchResults) Query() (pgx.Rows, error) { return nil, errors.New("not implemented") }
func (r *fakeBatchResults) QueryRow() pgx.Row        { return nil }
func (r *fakeBatchResults) Close() error             { return nil }

func TestPostgres_Store(t *testing.T) {
	t.Parallel()

	t.Run("copies every event", func(t *testing.T) {
		t.Parallel()
		db := &fakeDB{}
		store := auditstore.NewPostgres(db)

		require.NoError(t, store.Store(t.Context(), sampleEvent("0b8a0c1e-0000-4000-8000-000000000001"), sampleEvent("0b8a0c1e-0000-4000-8000-000000000002")))

		assert.Equal(t, pgx.Identifier{"security_events"}, db.table)
		assert.Equal(t, []string{"id", "action", "resource", "resource_id", "result", "error", "request_id", "client_ip", "metadata", "hash", "created_at"}, db.columns)
		require.Len(t, db.copied, 2)
		row := db.copied[0]
		assert.Equal(t, "0b8a0c1e-0000-4000-8000-000000000001", row[0])
		assert.Equal(t, "critical_validation_failure", row[1])
		assert.Equal(t, "failure", row[4])
		assert.Equal(t, map[string]any{"rule": "no_sql_injection", "value": "1 UNION SELECT"}, row[8])
		assert.Nil(t, db.batch)
	})

	t.Run("empty metadata is stored as null", func(t *testing.T) {
		t.Parallel()
		db := &fakeDB{}
		ev := sampleEvent("0b8a0c1e-0000-4000-8000-000000000003")
		ev.Metadata = nil

		require.NoError(t, auditstore.NewPostgres(db).Store(t.Context(), ev))
		assert.Nil(t, db.copied[0][8])
	})

	t.Run("duplicate ids fall back to idempotent inserts", func(t *testing.T) {
		t.Parallel()
		db := &fakeDB{copyErr: &pgconn.PgError{Code: "23505"}}

		require.NoError(t, auditstore.NewPostgres(db).Store(t.Context(), sampleEvent("a"), sampleEvent("b")))
		require.NotNil(t, db.batch)
		assert.Equal(t, 2, db.batch.Len())
	})

	t.Run("fallback insert error", func(t *testing.T) {
		t.Parallel()
		db := &fakeDB{
			copyErr:  &pgconn.PgError{Code: "23505"},
			execErrs: []error{nil, errors.New("connection reset")},
		}

		err := auditstore.NewPostgres(db).Store(t.Context(), sampleEvent("a"), sampleEvent("b"))
		assert.ErrorIs(t, err, audit.ErrStorageNotAvailable)
	})

	t.Run("other copy errors", func(t *testing.T) {
		t.Parallel()
		db := &fakeDB{copyErr: errors.New("connection refused")}

		err := auditstore.NewPostgres(db).Store(t.Context(), sampleEvent("a"))
		assert.ErrorIs(t, err, audit.ErrStorageNotAvailable)
		assert.Nil(t, db.batch)
	})

	t.Run("empty batch is a no-op", func(t *testing.T) {
		t.Parallel()
		db := &fakeDB{}
		require.NoError(t, auditstore.NewPostgres(db).Store(t.Context()))
		assert.Nil(t, db.table)
	})
}

func TestMigrations(t *testing.T) {
	t.Parallel()

	data, err := fs.ReadFile(auditstore.Migrations(), "00001_security_events.sql")
	require.NoError(t, err)
	assert.Contains(t, string(data), "-- +goose Up")
	assert.Contains(t, string(data), "CREATE TABLE IF NOT EXISTS security_events")
	assert.Contains(t, string(data), "-- +goose Down")
}
