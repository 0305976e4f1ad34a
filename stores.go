package resilient

import (
	"context"

	"github.com/vietddude/resilient/internal/core/domain"
	redisclient "github.com/vietddude/resilient/internal/infra/redis"
	"github.com/vietddude/resilient/internal/infra/storage"
	"github.com/vietddude/resilient/internal/infra/storage/postgres"
)

type (
	// DumpRepository is a dump store that can be read back and pruned.
	DumpRepository = storage.DumpRepository
	// RecordFilter narrows down record listings.
	RecordFilter = domain.RecordFilter
	// RedisConfig configures NewRedisStore.
	RedisConfig = redisclient.Config
	// PostgresConfig configures NewPostgresStore. Driver is "pgx" (default)
	// or "postgres".
	PostgresConfig = postgres.Config
)

// ErrDumpNotFound is returned by stores for unknown record IDs.
var ErrDumpNotFound = storage.ErrDumpNotFound

// RedisStore keeps one JSON record per failure in Redis, expiring after the
// configured TTL.
type RedisStore struct {
	*redisclient.DumpRepo
	client *redisclient.Client
}

// NewRedisStore connects to Redis. Pass the result to WithDumpStore.
func NewRedisStore(ctx context.Context, cfg RedisConfig) (*RedisStore, error) {
	client, err := redisclient.NewClient(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &RedisStore{DumpRepo: redisclient.NewDumpRepo(client), client: client}, nil
}

// Close closes the Redis connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// PostgresStore keeps failure records in the exception_dumps table.
type PostgresStore struct {
	*postgres.DumpRepo
	db *postgres.DB
}

// NewPostgresStore connects to PostgreSQL. Call Migrate once before the
// first Save if the table may not exist yet.
func NewPostgresStore(ctx context.Context, cfg PostgresConfig) (*PostgresStore, error) {
	db, err := postgres.NewDB(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &PostgresStore{DumpRepo: postgres.NewDumpRepo(db), db: db}, nil
}

// Migrate creates or upgrades the dump table.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	return s.db.Migrate(ctx)
}

// Health pings the database.
func (s *PostgresStore) Health(ctx context.Context) error {
	return s.db.Health(ctx)
}

// Close closes the connection pool.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}
