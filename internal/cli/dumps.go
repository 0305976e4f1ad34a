package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v2"

	"github.com/vietddude/resilient/internal/core/domain"
	"github.com/vietddude/resilient/internal/infra/storage"
)

var (
	dumpSource string
	dumpLabels []string
	dumpLimit  int
)

var dumpsCmd = &cobra.Command{
	Use:   "dumps",
	Short: "Work with persisted failure dumps",
}

var dumpsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List failure dumps, newest first",
	Run:   runDumpsList,
}

var dumpsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print a failure dump as YAML",
	Args:  cobra.ExactArgs(1),
	Run:   runDumpsShow,
}

var dumpsPurgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Delete failure dumps",
	Run:   runDumpsPurge,
}

func init() {
	dumpsCmd.PersistentFlags().StringVar(&dumpSource, "source", sourceAll, "dump store: file, redis, postgres or all")
	dumpsCmd.PersistentFlags().StringSliceVar(&dumpLabels, "label", nil, "only dumps with this label (repeatable)")
	dumpsListCmd.Flags().IntVar(&dumpLimit, "limit", 50, "maximum number of dumps to list (0 for no limit)")

	dumpsCmd.AddCommand(dumpsListCmd, dumpsShowCmd, dumpsPurgeCmd)
	rootCmd.AddCommand(dumpsCmd)
}

// entry is a record together with the store it came from.
type entry struct {
	store string
	rec   *domain.Record
}

// collect lists every store concurrently and merges the results newest first.
func collect(
	ctx context.Context,
	repos []storage.DumpRepository,
	filter domain.RecordFilter,
) ([]entry, error) {
	results := make([][]*domain.Record, len(repos))
	g, gctx := errgroup.WithContext(ctx)
	for i, repo := range repos {
		g.Go(func() error {
			recs, err := repo.List(gctx, filter)
			if err != nil {
				return fmt.Errorf("failed to list %s dumps: %w", repo.Name(), err)
			}
			results[i] = recs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var out []entry
	for i, recs := range results {
		for _, rec := range recs {
			out = append(out, entry{store: repos[i].Name(), rec: rec})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].rec.CreatedAt.After(out[j].rec.CreatedAt)
	})
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func printEntries(w io.Writer, entries []entry) {
	tw := tabwriter.NewWriter(w, 0, 0, 3, ' ', 0)
	_, _ = fmt.Fprintln(tw, "ID\tSTORE\tLABEL\tKIND\tATTEMPTS\tCREATED")
	for _, e := range entries {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%s\n",
			e.rec.ID,
			e.store,
			e.rec.Label,
			e.rec.Exception.Kind,
			e.rec.Attempts,
			e.rec.CreatedAt.Format(time.RFC3339),
		)
	}
	_ = tw.Flush()
}

// find returns the first store holding id.
func find(ctx context.Context, repos []storage.DumpRepository, id string) (*domain.Record, error) {
	for _, repo := range repos {
		rec, err := repo.Get(ctx, id)
		if errors.Is(err, storage.ErrDumpNotFound) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to get dump from %s: %w", repo.Name(), err)
		}
		return rec, nil
	}
	return nil, storage.ErrDumpNotFound
}

// purge deletes every dump matching filter and returns how many went.
func purge(ctx context.Context, repos []storage.DumpRepository, filter domain.RecordFilter) (int, error) {
	entries, err := collect(ctx, repos, filter)
	if err != nil {
		return 0, err
	}
	byName := make(map[string]storage.DumpRepository, len(repos))
	for _, r := range repos {
		byName[r.Name()] = r
	}

	deleted := 0
	for _, e := range entries {
		err := byName[e.store].Delete(ctx, e.rec.ID)
		if errors.Is(err, storage.ErrDumpNotFound) {
			continue
		}
		if err != nil {
			return deleted, fmt.Errorf("failed to delete dump %s: %w", e.rec.ID, err)
		}
		deleted++
	}
	return deleted, nil
}

func runDumpsList(cmd *cobra.Command, args []string) {
	cfg := loadConfig()
	ctx := context.Background()

	repos, closeAll, err := openStores(ctx, cfg, dumpSource)
	if err != nil {
		slog.Error("Failed to open dump stores", "error", err)
		os.Exit(1)
	}
	defer closeAll()

	entries, err := collect(ctx, repos, domain.RecordFilter{Labels: dumpLabels, Limit: dumpLimit})
	if err != nil {
		slog.Error("Failed to list dumps", "error", err)
		os.Exit(1)
	}
	printEntries(os.Stdout, entries)
}

func runDumpsShow(cmd *cobra.Command, args []string) {
	cfg := loadConfig()
	ctx := context.Background()

	repos, closeAll, err := openStores(ctx, cfg, dumpSource)
	if err != nil {
		slog.Error("Failed to open dump stores", "error", err)
		os.Exit(1)
	}
	defer closeAll()

	rec, err := find(ctx, repos, args[0])
	if err != nil {
		slog.Error("Failed to find dump", "id", args[0], "error", err)
		os.Exit(1)
	}

	out, err := yaml.Marshal(rec)
	if err != nil {
		slog.Error("Failed to render dump", "error", err)
		os.Exit(1)
	}
	_, _ = os.Stdout.Write(out)
}

func runDumpsPurge(cmd *cobra.Command, args []string) {
	cfg := loadConfig()
	ctx := context.Background()

	repos, closeAll, err := openStores(ctx, cfg, dumpSource)
	if err != nil {
		slog.Error("Failed to open dump stores", "error", err)
		os.Exit(1)
	}
	defer closeAll()

	n, err := purge(ctx, repos, domain.RecordFilter{Labels: dumpLabels})
	if err != nil {
		slog.Error("Failed to purge dumps", "error", err, "deleted", n)
		os.Exit(1)
	}
	slog.Info("Purged dumps", "deleted", n)
}
