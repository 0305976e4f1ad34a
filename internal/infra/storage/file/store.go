// Package file persists the latest failure record to a single local file,
// replacing whatever the file held before.
package file

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/vietddude/resilient/internal/core/domain"
	"github.com/vietddude/resilient/internal/infra/storage"
)

// Store writes records to path using the codec matching its extension.
type Store struct {
	path  string
	codec Codec
}

// NewStore creates a file store for path.
func NewStore(path string) *Store {
	return &Store{path: path, codec: CodecFor(path)}
}

func (s *Store) Name() string { return "file" }

// Path returns the dump file location.
func (s *Store) Path() string { return s.path }

// Save replaces the dump file with rec. The write goes through a temporary
// file in the same directory so readers never see a partial dump.
func (s *Store) Save(ctx context.Context, rec *domain.Record) error {
	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".dump-*")
	if err != nil {
		return fmt.Errorf("failed to create temp dump file: %w", err)
	}
	defer func() {
		_ = os.Remove(tmp.Name())
	}()

	if err := s.codec.Encode(tmp, rec); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to encode dump: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close dump file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("failed to move dump into place: %w", err)
	}
	return nil
}

// Load reads the record currently in the dump file.
func (s *Store) Load(ctx context.Context) (*domain.Record, error) {
	f, err := os.Open(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, storage.ErrDumpNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open dump file: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()

	rec, err := s.codec.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode dump file: %w", err)
	}
	return rec, nil
}

func (s *Store) Get(ctx context.Context, id string) (*domain.Record, error) {
	rec, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}
	if rec.ID != id {
		return nil, storage.ErrDumpNotFound
	}
	return rec, nil
}

func (s *Store) List(ctx context.Context, filter domain.RecordFilter) ([]*domain.Record, error) {
	rec, err := s.Load(ctx)
	if errors.Is(err, storage.ErrDumpNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if !filter.Match(rec) {
		return nil, nil
	}
	return []*domain.Record{rec}, nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := os.Remove(s.path); err != nil {
		return fmt.Errorf("failed to remove dump file: %w", err)
	}
	return nil
}

func (s *Store) Count(ctx context.Context) (int, error) {
	recs, err := s.List(ctx, domain.RecordFilter{})
	return len(recs), err
}
