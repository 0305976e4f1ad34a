package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/vietddude/resilient/internal/core/domain"
	"github.com/vietddude/resilient/internal/infra/storage"
)

// DumpRepo implements storage.DumpRepository using PostgreSQL.
type DumpRepo struct {
	db *DB
}

// NewDumpRepo creates a new PostgreSQL dump repository.
func NewDumpRepo(db *DB) *DumpRepo {
	return &DumpRepo{db: db}
}

func (r *DumpRepo) Name() string { return "postgres" }

type dumpRow struct {
	ID            string    `db:"id"`
	Label         string    `db:"label"`
	Attempts      int       `db:"attempts"`
	CustomMessage string    `db:"custom_message"`
	Kind          string    `db:"kind"`
	Message       string    `db:"message"`
	StackTrace    string    `db:"stack_trace"`
	Details       []byte    `db:"details"`
	Vars          []byte    `db:"vars"`
	Args          []byte    `db:"args"`
	Kwargs        []byte    `db:"kwargs"`
	CreatedAt     time.Time `db:"created_at"`
}

const dumpColumns = `id, label, attempts, custom_message, kind, message, stack_trace,
	details, vars, args, kwargs, created_at`

// Save inserts a record, assigning an ID and timestamp when missing.
func (r *DumpRepo) Save(ctx context.Context, rec *domain.Record) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	details, err := jsonText(nonNil(rec.Exception.Details))
	if err != nil {
		return err
	}
	vars, err := jsonText(nonNilDump(rec.Vars))
	if err != nil {
		return err
	}
	args, err := jsonText(nonNil(rec.Args))
	if err != nil {
		return err
	}
	kwargs, err := jsonText(nonNilDump(rec.Kwargs))
	if err != nil {
		return err
	}

	query := `
		INSERT INTO exception_dumps (` + dumpColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8::jsonb, $9::jsonb, $10::jsonb, $11::jsonb, $12)
	`
	_, err = r.db.ExecContext(
		ctx,
		query,
		rec.ID,
		rec.Label,
		rec.Attempts,
		rec.CustomMessage,
		rec.Exception.Kind,
		rec.Exception.Message,
		rec.Exception.StackTrace,
		details,
		vars,
		args,
		kwargs,
		rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save dump: %w", err)
	}
	return nil
}

func (r *DumpRepo) Get(ctx context.Context, id string) (*domain.Record, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, storage.ErrDumpNotFound
	}

	var row dumpRow
	query := `SELECT ` + dumpColumns + ` FROM exception_dumps WHERE id = $1`
	err := r.db.GetContext(ctx, &row, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrDumpNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get dump: %w", err)
	}
	return row.toRecord()
}

// List returns records newest first. An empty label filter matches everything.
func (r *DumpRepo) List(
	ctx context.Context,
	filter domain.RecordFilter,
) ([]*domain.Record, error) {
	labels := filter.Labels
	if labels == nil {
		labels = []string{}
	}
	var limit sql.NullInt64
	if filter.Limit > 0 {
		limit = sql.NullInt64{Int64: int64(filter.Limit), Valid: true}
	}

	query := `
		SELECT ` + dumpColumns + `
		FROM exception_dumps
		WHERE cardinality($1::text[]) = 0 OR label = ANY($1::text[])
		ORDER BY created_at DESC
		LIMIT $2
	`
	var rows []dumpRow
	if err := r.db.SelectContext(ctx, &rows, query, pq.Array(labels), limit); err != nil {
		return nil, fmt.Errorf("failed to list dumps: %w", err)
	}

	out := make([]*domain.Record, 0, len(rows))
	for i := range rows {
		rec, err := rows[i].toRecord()
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

func (r *DumpRepo) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return storage.ErrDumpNotFound
	}
	res, err := r.db.ExecContext(ctx, `DELETE FROM exception_dumps WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete dump: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete dump: %w", err)
	}
	if n == 0 {
		return storage.ErrDumpNotFound
	}
	return nil
}

func (r *DumpRepo) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM exception_dumps`); err != nil {
		return 0, fmt.Errorf("failed to count dumps: %w", err)
	}
	return n, nil
}

func (row *dumpRow) toRecord() (*domain.Record, error) {
	rec := &domain.Record{
		ID:            row.ID,
		Label:         row.Label,
		Attempts:      row.Attempts,
		CustomMessage: row.CustomMessage,
		Exception: domain.Exception{
			Kind:       row.Kind,
			Message:    row.Message,
			StackTrace: row.StackTrace,
		},
		CreatedAt: row.CreatedAt,
	}
	for _, col := range []struct {
		raw  []byte
		dest any
	}{
		{row.Details, &rec.Exception.Details},
		{row.Vars, &rec.Vars},
		{row.Args, &rec.Args},
		{row.Kwargs, &rec.Kwargs},
	} {
		if len(col.raw) == 0 {
			continue
		}
		if err := json.Unmarshal(col.raw, col.dest); err != nil {
			return nil, fmt.Errorf("failed to decode dump %s: %w", row.ID, err)
		}
	}
	return rec, nil
}

func jsonText(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("failed to encode dump column: %w", err)
	}
	return string(data), nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func nonNilDump(d domain.Dump) domain.Dump {
	if d == nil {
		return domain.Dump{}
	}
	return d
}
