package resilient

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/vietddude/resilient/internal/backoff"
	"github.com/vietddude/resilient/internal/capture"
	"github.com/vietddude/resilient/internal/core/config"
	"github.com/vietddude/resilient/internal/core/domain"
	"github.com/vietddude/resilient/internal/metrics"
	"github.com/vietddude/resilient/internal/report"
)

// engine holds what both forms share: the validated config, the reporter
// and the pause between attempts.
type engine struct {
	cfg      config.Config
	label    string
	logger   *slog.Logger
	reporter *report.Reporter
	sleeper  Sleeper
	calc     *backoff.Calculator
}

func newEngine(label string, o *options) *engine {
	logger := o.logger
	if logger == nil {
		logger = slog.Default()
	}
	return &engine{
		cfg:      o.cfg,
		label:    label,
		logger:   logger,
		reporter: report.New(logger, o.store),
		sleeper:  o.sleeper,
		calc:     backoff.NewCalculator(time.Now().UnixNano()),
	}
}

type attemptState struct {
	tries     int
	lastDelay time.Duration
}

func newAttemptState() attemptState {
	return attemptState{lastDelay: backoff.Unset}
}

// failure is one attempt that returned an error or panicked.
type failure struct {
	err        error
	panicked   bool
	panicValue any
	stack      []byte
}

// exception describes f. A failure whose error methods panic (a typed nil
// pointer, for one) is described by its type and rendering alone.
func (f *failure) exception() (exc domain.Exception) {
	defer func() {
		if p := recover(); p != nil {
			v := any(f.err)
			if f.panicked {
				v = f.panicValue
			}
			exc = domain.Exception{
				Kind:       fmt.Sprintf("%T", v),
				Message:    fmt.Sprint(v),
				StackTrace: string(f.stack),
			}
			if f.panicked {
				exc.Kind = domain.KindPanic
			}
		}
	}()
	if f.panicked {
		return domain.NewPanicException(f.panicValue, f.stack)
	}
	return domain.NewException(f.err, f.stack)
}

// protect runs fn and turns a returned error or a panic into a failure.
func protect(fn func() error) (f *failure) {
	defer func() {
		if p := recover(); p != nil {
			f = &failure{panicked: true, panicValue: p, stack: debug.Stack()}
		}
	}()
	if err := fn(); err != nil {
		return &failure{err: err, stack: debug.Stack()}
	}
	return nil
}

func (e *engine) attempted() {
	metrics.AttemptsTotal.WithLabelValues(e.label).Inc()
}

// retry records a failed attempt that will run again and waits out the
// backoff, if any.
func (e *engine) retry(st *attemptState) {
	metrics.RetriesTotal.WithLabelValues(e.label).Inc()
	if e.cfg.Backoff == nil {
		return
	}
	st.lastDelay = e.calc.Next(st.lastDelay, e.cfg.Backoff.Min, e.cfg.Backoff.Max)
	metrics.BackoffSeconds.WithLabelValues(e.label).Observe(st.lastDelay.Seconds())
	e.sleeper.Sleep(st.lastDelay)
}

// exhausted captures and reports the final failure. Nothing raised while
// reporting escapes; the caller still gets the original failure or nothing.
func (e *engine) exhausted(
	ctx context.Context,
	f *failure,
	frame []capture.Binding,
	known capture.NameSet,
	args *domain.Arguments,
	attempts int,
) {
	defer func() {
		if p := recover(); p != nil {
			e.logger.Error("Failed to report exhausted work", "label", e.label, "panic", fmt.Sprint(p))
		}
	}()

	e.reporter.Report(ctx, report.Event{
		Label:     e.label,
		Attempts:  attempts,
		Exception: f.exception(),
		Dump:      capture.Capture(frame, e.cfg, known),
		Args:      args,
		Config:    e.cfg,
	})

	outcome := metrics.OutcomeSwallowed
	if e.cfg.Reraise {
		outcome = metrics.OutcomeReraised
	}
	metrics.ExhaustedTotal.WithLabelValues(e.label, outcome).Inc()
}

// propagate returns the original error, re-panics the original panic value,
// or swallows the failure.
func (e *engine) propagate(f *failure) error {
	if !e.cfg.Reraise {
		return nil
	}
	if f.panicked {
		panic(f.panicValue)
	}
	return f.err
}
