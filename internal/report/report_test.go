package report

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vietddude/resilient/internal/core/config"
	"github.com/vietddude/resilient/internal/core/domain"
	"github.com/vietddude/resilient/internal/infra/storage"
	"github.com/vietddude/resilient/internal/infra/storage/file"
	"github.com/vietddude/resilient/internal/infra/storage/memory"
	"github.com/vietddude/resilient/internal/metrics"
)

type recordingHandler struct {
	mu      sync.Mutex
	records []slog.Record
}

func (h *recordingHandler) Enabled(context.Context, slog.Level) bool { return true }

func (h *recordingHandler) Handle(_ context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.records = append(h.records, r)
	return nil
}

func (h *recordingHandler) WithAttrs([]slog.Attr) slog.Handler { return h }
func (h *recordingHandler) WithGroup(string) slog.Handler      { return h }

func (h *recordingHandler) messages() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	var out []string
	for _, r := range h.records {
		out = append(out, r.Message)
	}
	return out
}

func attr(r slog.Record, key string) (slog.Value, bool) {
	var found slog.Value
	ok := false
	r.Attrs(func(a slog.Attr) bool {
		if a.Key == key {
			found, ok = a.Value, true
			return false
		}
		return true
	})
	return found, ok
}

type failingStore struct{ err error }

func (s failingStore) Save(context.Context, *domain.Record) error { return s.err }
func (s failingStore) Name() string                               { return "failing" }

type panickingStore struct{}

func (panickingStore) Save(context.Context, *domain.Record) error { panic("disk on fire") }

func event(cfg config.Config) Event {
	return Event{
		Label:    "fetchPrices",
		Attempts: 3,
		Exception: domain.Exception{
			Kind:       "*errors.errorString",
			Message:    "boom",
			StackTrace: "goroutine 7 [running]:\nmain.fetch()",
		},
		Dump:   domain.Dump{{Name: "url", Value: "http://x"}},
		Config: cfg,
	}
}

func TestCompose_Order(t *testing.T) {
	cfg := config.Default()
	cfg.Reraise = false
	cfg.CustomMessage = "price sync failed"
	ev := event(cfg)
	ev.Args = &domain.Arguments{
		Positional: []any{1, "two"},
		Keyword:    []domain.Arg{{Name: "Symbol", Value: "BTC"}},
	}

	want := strings.Join([]string{
		"fetchPrices",
		"price sync failed",
		"goroutine 7 [running]:\nmain.fetch()",
		"args: [1, two]",
		"kwargs: {Symbol: BTC}",
		"Exception variable dump: {url: http://x}",
	}, "\n")
	assert.Equal(t, want, Compose(ev))
}

func TestCompose_ReraiseOmitsStack(t *testing.T) {
	ev := event(config.Default())
	ev.Label = ScopedLabel

	assert.Equal(t, "code block\nException variable dump: {url: http://x}", Compose(ev))
}

func TestCompose_TruncatesArgs(t *testing.T) {
	cfg := config.Default()
	cfg.MaxVarStrLen = 3
	ev := event(cfg)
	ev.Args = &domain.Arguments{Positional: []any{"abcdef"}}

	assert.Contains(t, Compose(ev), "args: [<string> abc]")
}

func TestReport_LogOnly(t *testing.T) {
	h := &recordingHandler{}
	store := memory.NewDumpRepo()
	r := New(slog.New(h), store)

	r.Report(context.Background(), event(config.Default()))

	require.Len(t, h.records, 1)
	rec := h.records[0]
	assert.Equal(t, slog.LevelError, rec.Level)
	kind, ok := attr(rec, "kind")
	require.True(t, ok)
	assert.Equal(t, "*errors.errorString", kind.String())
	attempts, ok := attr(rec, "attempts")
	require.True(t, ok)
	assert.Equal(t, int64(3), attempts.Int64())

	n, err := store.Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestReport_DumpOnly(t *testing.T) {
	h := &recordingHandler{}
	store := memory.NewDumpRepo()
	r := New(slog.New(h), store)

	cfg := config.Default()
	cfg.ToLog = false
	cfg.ToDump = true
	ev := event(cfg)
	ev.Args = &domain.Arguments{Keyword: []domain.Arg{{Name: "Symbol", Value: "ETH"}}}
	r.Report(context.Background(), ev)

	assert.Empty(t, h.messages())
	recs, err := store.List(context.Background(), domain.RecordFilter{})
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.NotEmpty(t, recs[0].ID)
	assert.Equal(t, "fetchPrices", recs[0].Label)
	assert.Equal(t, 3, recs[0].Attempts)
	assert.Equal(t, domain.Dump{{Name: "url", Value: "http://x"}}, recs[0].Vars)
	assert.Equal(t, domain.Dump{{Name: "Symbol", Value: "ETH"}}, recs[0].Kwargs)
}

func TestReport_DefaultFileStore(t *testing.T) {
	cfg := config.Default()
	cfg.ToLog = false
	cfg.ToDump = true
	cfg.DumpPath = filepath.Join(t.TempDir(), "dump.json")

	New(slog.New(&recordingHandler{}), nil).Report(context.Background(), event(cfg))

	rec, err := file.NewStore(cfg.DumpPath).Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "fetchPrices", rec.Label)
}

func TestReport_PersistenceFailureIsLogged(t *testing.T) {
	h := &recordingHandler{}
	cause := errors.New("read-only file system")
	r := New(slog.New(h), failingStore{err: cause})
	before := testutil.ToFloat64(metrics.DumpFailures.WithLabelValues("failing"))

	cfg := config.Default()
	cfg.ToDump = true
	r.Report(context.Background(), event(cfg))

	msgs := h.messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, "PersistenceError", msgs[0])
	assert.True(t, strings.HasPrefix(msgs[1], "fetchPrices\n"))

	v, ok := attr(h.records[0], "error")
	require.True(t, ok)
	var perr *PersistenceError
	require.True(t, errors.As(v.Any().(error), &perr))
	assert.Equal(t, "failing", perr.Store)
	assert.ErrorIs(t, perr, cause)

	assert.Equal(t, before+1, testutil.ToFloat64(metrics.DumpFailures.WithLabelValues("failing")))
}

func TestReport_PanickingStore(t *testing.T) {
	h := &recordingHandler{}
	r := New(slog.New(h), panickingStore{})

	cfg := config.Default()
	cfg.ToDump = true
	cfg.ToLog = false
	assert.NotPanics(t, func() {
		r.Report(context.Background(), event(cfg))
	})
	assert.Equal(t, []string{"PersistenceError"}, h.messages())
}

var _ storage.DumpWriter = failingStore{}
