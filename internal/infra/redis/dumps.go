package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/vietddude/resilient/internal/core/domain"
	"github.com/vietddude/resilient/internal/infra/storage"
)

// DumpRepo implements storage.DumpRepository on Redis. Each record lives
// under its own key with a TTL; a sorted set scored by creation time keeps
// the listing order.
type DumpRepo struct {
	c *Client
}

// NewDumpRepo creates a dump repository backed by c.
func NewDumpRepo(c *Client) *DumpRepo {
	return &DumpRepo{c: c}
}

func (r *DumpRepo) Name() string { return "redis" }

func (r *DumpRepo) Save(ctx context.Context, rec *domain.Record) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to encode dump: %w", err)
	}

	pipe := r.c.rdb.TxPipeline()
	pipe.Set(ctx, dumpKey(rec.ID), data, r.c.ttl)
	pipe.ZAdd(ctx, indexKey, redis.Z{Score: float64(rec.CreatedAt.UnixNano()), Member: rec.ID})
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save dump: %w", err)
	}
	return nil
}

func (r *DumpRepo) Get(ctx context.Context, id string) (*domain.Record, error) {
	data, err := r.c.rdb.Get(ctx, dumpKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, storage.ErrDumpNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get failed: %w", err)
	}

	var rec domain.Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to decode dump %s: %w", id, err)
	}
	return &rec, nil
}

// List walks the index newest first. Index entries whose record has expired
// are pruned along the way.
func (r *DumpRepo) List(
	ctx context.Context,
	filter domain.RecordFilter,
) ([]*domain.Record, error) {
	ids, err := r.c.rdb.ZRevRange(ctx, indexKey, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("zrevrange failed: %w", err)
	}

	var out []*domain.Record
	var expired []any
	for _, id := range ids {
		rec, err := r.Get(ctx, id)
		if errors.Is(err, storage.ErrDumpNotFound) {
			expired = append(expired, id)
			continue
		}
		if err != nil {
			return nil, err
		}
		if !filter.Match(rec) {
			continue
		}
		out = append(out, rec)
		if filter.Limit > 0 && len(out) >= filter.Limit {
			break
		}
	}

	if len(expired) > 0 {
		if err := r.c.rdb.ZRem(ctx, indexKey, expired...).Err(); err != nil {
			return nil, fmt.Errorf("zrem failed: %w", err)
		}
	}
	return out, nil
}

func (r *DumpRepo) Delete(ctx context.Context, id string) error {
	pipe := r.c.rdb.TxPipeline()
	del := pipe.Del(ctx, dumpKey(id))
	pipe.ZRem(ctx, indexKey, id)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete dump: %w", err)
	}
	if del.Val() == 0 {
		return storage.ErrDumpNotFound
	}
	return nil
}

// Count reports the number of indexed records, including ones whose key has
// expired but has not been pruned yet.
func (r *DumpRepo) Count(ctx context.Context) (int, error) {
	n, err := r.c.rdb.ZCard(ctx, indexKey).Result()
	if err != nil {
		return 0, fmt.Errorf("zcard failed: %w", err)
	}
	return int(n), nil
}
