//go:build integration
// +build integration

package redis

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/vietddude/resilient/internal/core/domain"
	"github.com/vietddude/resilient/internal/infra/storage"
)

func startRedis(t *testing.T, ctx context.Context) (testcontainers.Container, string) {
	t.Helper()

	req := testcontainers.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForLog("Ready to accept connections"),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)

	host, err := container.Host(ctx)
	require.NoError(t, err)

	port, err := container.MappedPort(ctx, "6379")
	require.NoError(t, err)

	return container, fmt.Sprintf("redis://%s:%s/0", host, port.Port())
}

func TestIntegration_DumpRepo(t *testing.T) {
	ctx := context.Background()
	container, url := startRedis(t, ctx)
	defer func() {
		_ = container.Terminate(ctx)
	}()

	client, err := NewClient(ctx, Config{URL: url, TTL: time.Hour})
	require.NoError(t, err)
	defer client.Close()

	repo := NewDumpRepo(client)
	base := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	var ids []string
	for i, label := range []string{"sync", "fetch", "sync"} {
		rec := &domain.Record{
			Label:     label,
			Attempts:  i + 1,
			Exception: domain.Exception{Kind: "panic", Message: "boom"},
			CreatedAt: base.Add(time.Duration(i) * time.Second),
		}
		require.NoError(t, repo.Save(ctx, rec))
		ids = append(ids, rec.ID)
	}

	recs, err := repo.List(ctx, domain.RecordFilter{Labels: []string{"sync"}})
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, ids[2], recs[0].ID)
	assert.Equal(t, ids[0], recs[1].ID)

	// An expired record disappears from the index on the next listing.
	require.NoError(t, client.rdb.Del(ctx, dumpKey(ids[1])).Err())
	recs, err = repo.List(ctx, domain.RecordFilter{})
	require.NoError(t, err)
	assert.Len(t, recs, 2)
	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	require.NoError(t, repo.Delete(ctx, ids[0]))
	assert.ErrorIs(t, repo.Delete(ctx, ids[0]), storage.ErrDumpNotFound)
	_, err = repo.Get(ctx, ids[0])
	assert.ErrorIs(t, err, storage.ErrDumpNotFound)
}
