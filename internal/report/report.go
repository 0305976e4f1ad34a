// Package report emits the failure report once every attempt is exhausted:
// the variable dump goes to a dump store and/or a single error log entry.
package report

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vietddude/resilient/internal/capture"
	"github.com/vietddude/resilient/internal/core/config"
	"github.com/vietddude/resilient/internal/core/domain"
	"github.com/vietddude/resilient/internal/infra/storage"
	"github.com/vietddude/resilient/internal/infra/storage/file"
	"github.com/vietddude/resilient/internal/metrics"
)

// ScopedLabel identifies reports coming from the scoped form.
const ScopedLabel = "code block"

// Event is everything known about an exhausted unit of work.
type Event struct {
	Label     string
	Attempts  int
	Exception domain.Exception
	Dump      domain.Dump
	Args      *domain.Arguments
	Config    config.Config
}

// Reporter writes failure reports.
type Reporter struct {
	logger *slog.Logger
	store  storage.DumpWriter
}

// New creates a reporter. A nil logger uses slog.Default; a nil store falls
// back to a file store at the configured dump path.
func New(logger *slog.Logger, store storage.DumpWriter) *Reporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reporter{logger: logger, store: store}
}

// Report persists and logs ev according to its config. It never fails:
// secondary errors are logged and dropped.
func (r *Reporter) Report(ctx context.Context, ev Event) {
	if ev.Config.ToDump {
		r.persist(ctx, ev)
	}
	if ev.Config.ToLog {
		r.logger.Error(
			Compose(ev),
			"kind", ev.Exception.Kind,
			"error", ev.Exception.Message,
			"attempts", ev.Attempts,
		)
	}
}

// Compose renders the log message for ev, one section per line.
func Compose(ev Event) string {
	lines := []string{ev.Label}
	if ev.Config.CustomMessage != "" {
		lines = append(lines, ev.Config.CustomMessage)
	}
	if !ev.Config.Reraise && ev.Exception.StackTrace != "" {
		lines = append(lines, strings.TrimRight(ev.Exception.StackTrace, "\n"))
	}
	if !ev.Args.Empty() {
		args, kwargs := formatArgs(ev.Args, ev.Config.MaxVarStrLen)
		if len(ev.Args.Positional) > 0 {
			lines = append(lines, "args: ["+strings.Join(args, ", ")+"]")
		}
		if len(ev.Args.Keyword) > 0 {
			lines = append(lines, "kwargs: "+kwargs.String())
		}
	}
	lines = append(lines, "Exception variable dump: "+ev.Dump.String())
	return strings.Join(lines, "\n")
}

func (r *Reporter) persist(ctx context.Context, ev Event) {
	store := r.store
	if store == nil {
		store = file.NewStore(ev.Config.DumpPath)
	}
	name := storeName(store)

	if err := save(ctx, store, NewRecord(ev)); err != nil {
		metrics.DumpFailures.WithLabelValues(name).Inc()
		r.logger.Error(
			"PersistenceError",
			"error", &PersistenceError{Store: name, Err: err},
			"store", name,
		)
		return
	}
	metrics.DumpsPersisted.WithLabelValues(name).Inc()
}

// NewRecord builds the persisted form of ev.
func NewRecord(ev Event) *domain.Record {
	rec := &domain.Record{
		ID:            uuid.NewString(),
		Label:         ev.Label,
		Attempts:      ev.Attempts,
		CustomMessage: ev.Config.CustomMessage,
		Exception:     ev.Exception,
		Vars:          ev.Dump,
		CreatedAt:     time.Now().UTC(),
	}
	if !ev.Args.Empty() {
		rec.Args, rec.Kwargs = formatArgs(ev.Args, ev.Config.MaxVarStrLen)
	}
	return rec
}

func formatArgs(a *domain.Arguments, maxLen int) ([]string, domain.Dump) {
	var args []string
	for _, v := range a.Positional {
		args = append(args, capture.Truncate(v, maxLen))
	}
	var kwargs domain.Dump
	for _, kv := range a.Keyword {
		kwargs = append(kwargs, domain.Var{Name: kv.Name, Value: capture.Truncate(kv.Value, maxLen)})
	}
	return args, kwargs
}

// save shields the caller from a store that panics.
func save(ctx context.Context, store storage.DumpWriter, rec *domain.Record) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("store panicked: %v", p)
		}
	}()
	return store.Save(ctx, rec)
}

func storeName(store storage.DumpWriter) string {
	if n, ok := store.(interface{ Name() string }); ok {
		return n.Name()
	}
	return "custom"
}
