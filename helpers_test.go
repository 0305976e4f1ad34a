package resilient

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"google.golang.org/grpc/status"

	"github.com/vietddude/resilient/internal/core/domain"
	"github.com/vietddude/resilient/internal/infra/storage/memory"
)

var errBoom = errors.New("boom")

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

type sleepRecorder struct {
	mu     sync.Mutex
	delays []time.Duration
}

func (s *sleepRecorder) Sleep(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.delays = append(s.delays, d)
}

func (s *sleepRecorder) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.delays)
}

type failingStore struct{}

func (failingStore) Save(context.Context, *domain.Record) error {
	return errors.New("disk full")
}

// harness wires a recording logger, a sleep recorder and an in-memory dump
// store into the options of a test.
type harness struct {
	log     *recordingHandler
	sleeper *sleepRecorder
	store   *memory.DumpRepo
}

func newHarness() *harness {
	return &harness{
		log:     &recordingHandler{},
		sleeper: &sleepRecorder{},
		store:   memory.NewDumpRepo(),
	}
}

func (h *harness) opts(extra ...Option) []Option {
	return append([]Option{
		WithLogger(slog.New(h.log)),
		WithSleeper(h.sleeper),
		WithDumpStore(h.store),
	}, extra...)
}

func (h *harness) records(t *testing.T) []*domain.Record {
	t.Helper()
	recs, err := h.store.List(context.Background(), domain.RecordFilter{})
	if err != nil {
		t.Fatalf("list dumps: %v", err)
	}
	return recs
}

func newLogger(h slog.Handler) *slog.Logger {
	return slog.New(h)
}

// grpcPanicker claims a gRPC status but blows up when asked for it.
type grpcPanicker struct{}

func (grpcPanicker) Error() string { return "grpc broke" }

func (grpcPanicker) GRPCStatus() *status.Status { panic("status unavailable") }
