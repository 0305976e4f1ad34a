package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/vietddude/resilient/internal/core/domain"
	"github.com/vietddude/resilient/internal/infra/storage"
)

// DumpRepo keeps records in process memory.
type DumpRepo struct {
	mu      sync.RWMutex
	records map[string]*domain.Record
	order   []string
}

func NewDumpRepo() *DumpRepo {
	return &DumpRepo{records: make(map[string]*domain.Record)}
}

func (r *DumpRepo) Name() string { return "memory" }

func (r *DumpRepo) Save(ctx context.Context, rec *domain.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.records[rec.ID]; !ok {
		r.order = append(r.order, rec.ID)
	}
	cp := *rec
	r.records[rec.ID] = &cp
	return nil
}

func (r *DumpRepo) Get(ctx context.Context, id string) (*domain.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.records[id]
	if !ok {
		return nil, storage.ErrDumpNotFound
	}
	cp := *rec
	return &cp, nil
}

func (r *DumpRepo) List(ctx context.Context, filter domain.RecordFilter) ([]*domain.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.Record, 0, len(r.order))
	for i := len(r.order) - 1; i >= 0; i-- {
		rec := r.records[r.order[i]]
		if !filter.Match(rec) {
			continue
		}
		cp := *rec
		out = append(out, &cp)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (r *DumpRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.records[id]; !ok {
		return storage.ErrDumpNotFound
	}
	delete(r.records, id)
	for i, existing := range r.order {
		if existing == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

func (r *DumpRepo) Count(ctx context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.records), nil
}
