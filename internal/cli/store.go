package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/vietddude/resilient/internal/core/config"
	redisclient "github.com/vietddude/resilient/internal/infra/redis"
	"github.com/vietddude/resilient/internal/infra/storage"
	"github.com/vietddude/resilient/internal/infra/storage/file"
	"github.com/vietddude/resilient/internal/infra/storage/postgres"
)

const (
	sourceAll      = "all"
	sourceFile     = "file"
	sourceRedis    = "redis"
	sourcePostgres = "postgres"
)

// openStores connects to the dump stores named by source. With "all", the
// file store is always included and remote stores only when configured.
func openStores(
	ctx context.Context,
	cfg *config.AppConfig,
	source string,
) ([]storage.DumpRepository, func(), error) {
	var (
		repos   []storage.DumpRepository
		closers []func() error
	)
	closeAll := func() {
		for _, c := range closers {
			_ = c()
		}
	}

	all := source == sourceAll
	switch source {
	case sourceAll, sourceFile, sourceRedis, sourcePostgres:
	default:
		return nil, nil, fmt.Errorf("unknown source %q", source)
	}

	if all || source == sourceFile {
		fs := file.NewStore(cfg.Dumps.Path)
		slog.Debug("Using dump file", "path", fs.Path())
		repos = append(repos, fs)
	}

	if source == sourceRedis || (all && cfg.Redis.URL != "") {
		client, err := redisclient.NewClient(ctx, cfg.Redis)
		if err != nil {
			closeAll()
			return nil, nil, err
		}
		closers = append(closers, client.Close)
		repos = append(repos, redisclient.NewDumpRepo(client))
	}

	if source == sourcePostgres || (all && cfg.Database.URL != "") {
		db, err := postgres.NewDB(ctx, cfg.Database)
		if err != nil {
			closeAll()
			return nil, nil, err
		}
		closers = append(closers, db.Close)
		repos = append(repos, postgres.NewDumpRepo(db))
	}

	for _, r := range repos {
		slog.Debug("Dump store ready", "store", r.Name())
	}
	return repos, closeAll, nil
}
