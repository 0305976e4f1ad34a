package resilient

import (
	"context"
	"fmt"
	"iter"

	"github.com/vietddude/resilient/internal/capture"
)

// Attempts is the multi-attempt scoped form: it yields one Guard per try
// until a block succeeds or the tries run out.
type Attempts struct {
	eng    *engine
	locals *Locals
	known  capture.NameSet
	err    error
}

// handoff carries the outcome of a produced guard back to the iteration.
// Only the last attempt keeps the failure and the frame.
type handoff struct {
	lastAttempt bool
	failed      bool
	fail        *failure
	frame       []capture.Binding
}

func (h *handoff) record(f *failure, locals *Locals) {
	h.failed = f != nil
	if f != nil && h.lastAttempt {
		h.fail = f
		h.frame = locals.frame()
	}
}

// NewAttempts validates opts and snapshots the names currently in locals.
// A single try is rejected with ErrUsage; use a Guard for that.
func NewAttempts(locals *Locals, opts ...Option) (*Attempts, error) {
	o, err := buildOptions(opts)
	if err != nil {
		return nil, err
	}
	if o.cfg.MaxTries == 1 {
		return nil, fmt.Errorf("%w: max tries of 1 needs no iteration, use NewGuard", ErrUsage)
	}
	return &Attempts{
		eng:    newEngine(scopedLabel(o), o),
		locals: locals,
		known:  capture.Names(locals.frame()),
	}, nil
}

// All yields a fresh guard per try. The loop body must run its block
// through the yielded guard; a guard left unused counts as success.
// Breaking out of the loop ends the cycle without reporting.
//
// When every try fails the last failure is reported. With reraise on, a
// returned error is then available from Err and a panic is re-panicked.
func (a *Attempts) All(ctx context.Context) iter.Seq[*Guard] {
	return func(yield func(*Guard) bool) {
		a.err = nil
		st := newAttemptState()
		h := &handoff{}

		for {
			st.tries++
			h.failed = false
			g := &Guard{eng: a.eng, locals: a.locals, known: a.known, handoff: h}
			if !yield(g) {
				return
			}
			if !h.failed {
				return
			}

			if st.tries < a.eng.cfg.MaxTries {
				if st.tries+1 == a.eng.cfg.MaxTries {
					h.lastAttempt = true
				}
				a.eng.retry(&st)
				continue
			}

			a.eng.exhausted(ctx, h.fail, h.frame, a.known, nil, st.tries)
			a.err = a.eng.propagate(h.fail)
			return
		}
	}
}

// Err returns the reraised error of the last completed iteration, or nil.
func (a *Attempts) Err() error {
	return a.err
}

// Run runs block through every yielded guard and returns Err.
func (a *Attempts) Run(ctx context.Context, block func() error) error {
	for g := range a.All(ctx) {
		_ = g.Do(ctx, block)
	}
	return a.Err()
}
