package resilient

import (
	"context"

	"github.com/vietddude/resilient/internal/capture"
	"github.com/vietddude/resilient/internal/report"
)

// Guard runs blocks of code that report their failures.
//
// Names already present in locals when the guard is built are treated as
// belonging to the enclosing scope and are not reported. A name that existed
// before and is reassigned inside the block therefore never shows up unless
// it is whitelisted.
type Guard struct {
	eng     *engine
	locals  *Locals
	known   capture.NameSet
	handoff *handoff
}

// NewGuard validates opts and snapshots the names currently in locals.
func NewGuard(locals *Locals, opts ...Option) (*Guard, error) {
	o, err := buildOptions(opts)
	if err != nil {
		return nil, err
	}
	return &Guard{
		eng:    newEngine(scopedLabel(o), o),
		locals: locals,
		known:  capture.Names(locals.frame()),
	}, nil
}

func scopedLabel(o *options) string {
	if o.label != "" {
		return o.label
	}
	return report.ScopedLabel
}

// Do runs block once. A failure is reported, then returned or re-panicked
// when reraise is on. A guard may run any number of blocks one after
// another.
//
// Guards produced by Attempts.All never report or propagate; they hand the
// failure back to the iteration instead.
func (g *Guard) Do(ctx context.Context, block func() error) error {
	g.eng.attempted()
	fail := protect(block)

	if g.handoff != nil {
		g.handoff.record(fail, g.locals)
		return nil
	}
	if fail == nil {
		return nil
	}

	g.eng.exhausted(ctx, fail, g.locals.frame(), g.known, nil, 1)
	return g.eng.propagate(fail)
}
