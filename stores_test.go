package resilient

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewPostgresStore_RejectsUnknownDriver(t *testing.T) {
	_, err := NewPostgresStore(context.Background(), PostgresConfig{URL: "postgres://localhost/x", Driver: "mysql"})
	assert.ErrorContains(t, err, "unsupported database driver")
}

func TestNewRedisStore_RejectsBadURL(t *testing.T) {
	_, err := NewRedisStore(context.Background(), RedisConfig{URL: "not a redis url"})
	assert.ErrorContains(t, err, "failed to parse redis URL")
}

func TestStores_AreDumpRepositories(t *testing.T) {
	var _ DumpRepository = (*RedisStore)(nil)
	var _ DumpRepository = (*PostgresStore)(nil)
	var _ DumpStore = (*RedisStore)(nil)
}
