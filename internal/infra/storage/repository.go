package storage

import (
	"context"
	"errors"

	"github.com/vietddude/resilient/internal/core/domain"
)

var (
	// ErrDumpNotFound is returned when a record doesn't exist
	ErrDumpNotFound = errors.New("dump not found")
)

// DumpWriter persists failure records. It is all the reporter needs.
type DumpWriter interface {
	// Save persists a record
	Save(ctx context.Context, rec *domain.Record) error
}

// DumpRepository handles failure record storage
type DumpRepository interface {
	DumpWriter

	// Get retrieves a record by ID
	Get(ctx context.Context, id string) (*domain.Record, error)

	// List retrieves records, newest first
	List(ctx context.Context, filter domain.RecordFilter) ([]*domain.Record, error)

	// Delete removes a record
	Delete(ctx context.Context, id string) error

	// Count returns the number of stored records
	Count(ctx context.Context) (int, error)

	// Name identifies the store in logs and metrics
	Name() string
}
