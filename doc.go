// Package resilient retries fallible work and, when every attempt fails,
// reports the variables that were in scope at the failure point.
//
// Go cannot read another frame's locals, so work records the bindings it
// wants reported into a *Locals:
//
//	fetch, err := resilient.Wrap("fetch", func(ctx context.Context, l *resilient.Locals, url string) ([]byte, error) {
//		l.Set("url", url)
//		resp, err := http.Get(url)
//		l.Set("resp", resp)
//		...
//	}, resilient.WithMaxTries(3))
//
// The scoped form guards a block instead of a function. A Guard runs one
// attempt; Attempts yields one guard per try:
//
//	locals := resilient.NewLocals()
//	attempts, err := resilient.NewAttempts(locals, resilient.WithMaxTries(3))
//	for g := range attempts.All(ctx) {
//		g.Do(ctx, func() error {
//			locals.Set("batch", batch)
//			return process(batch)
//		})
//	}
//	if err := attempts.Err(); err != nil { ... }
//
// A panic escaping the work counts as a failure. When the failure is
// reraised, a returned error is returned unchanged and a panic is re-panicked
// with its original value.
package resilient
