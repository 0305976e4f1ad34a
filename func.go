package resilient

import (
	"context"
	"fmt"
	"reflect"
	"runtime"
	"sort"
	"strings"

	"github.com/vietddude/resilient/internal/core/domain"
)

// Work is a retryable unit of work. It records the bindings worth reporting
// into locals, which is fresh for every attempt.
type Work[A, T any] func(ctx context.Context, locals *Locals, arg A) (T, error)

// Func is a Work wrapped with retry and failure reporting.
// It is safe for concurrent use.
type Func[A, T any] struct {
	fn  Work[A, T]
	eng *engine
}

// Wrap validates opts and wraps fn. name labels the reports; WithLabel
// overrides it and an empty name falls back to fn's symbol name.
func Wrap[A, T any](name string, fn Work[A, T], opts ...Option) (*Func[A, T], error) {
	if fn == nil {
		return nil, fmt.Errorf("%w: nil work", ErrUsage)
	}
	o, err := buildOptions(opts)
	if err != nil {
		return nil, err
	}

	label := o.label
	if label == "" {
		label = name
	}
	if label == "" {
		label = funcName(fn)
	}
	return &Func[A, T]{fn: fn, eng: newEngine(label, o)}, nil
}

// Call runs the work until it succeeds or the tries run out.
//
// On exhaustion the bindings of the last attempt are reported. The failure
// is then returned unchanged, re-panicked if it was a panic, or swallowed
// with a zero result when reraise is off.
func (f *Func[A, T]) Call(ctx context.Context, arg A) (T, error) {
	st := newAttemptState()
	for {
		st.tries++
		f.eng.attempted()

		locals := NewLocals()
		var result T
		fail := protect(func() error {
			var err error
			result, err = f.fn(ctx, locals, arg)
			return err
		})
		if fail == nil {
			return result, nil
		}

		if st.tries < f.eng.cfg.MaxTries {
			f.eng.retry(&st)
			continue
		}

		f.eng.exhausted(ctx, fail, locals.frame(), nil, arguments(arg), st.tries)
		var zero T
		return zero, f.eng.propagate(fail)
	}
}

// Do wraps and calls fn once with the given options.
func Do(ctx context.Context, fn func(ctx context.Context, locals *Locals) error, opts ...Option) error {
	if fn == nil {
		return fmt.Errorf("%w: nil work", ErrUsage)
	}
	w, err := Wrap(funcName(fn), func(ctx context.Context, l *Locals, _ struct{}) (struct{}, error) {
		return struct{}{}, fn(ctx, l)
	}, opts...)
	if err != nil {
		return err
	}
	_, err = w.Call(ctx, struct{}{})
	return err
}

// arguments describes arg the way it is reported: struct fields and string
// keyed maps as keyword arguments, slices and arrays as positional ones.
func arguments(arg any) *domain.Arguments {
	v := reflect.ValueOf(arg)
	if !v.IsValid() {
		return nil
	}

	switch v.Kind() {
	case reflect.Struct:
		t := v.Type()
		if t.NumField() == 0 {
			return nil
		}
		var kw []domain.Arg
		for i := 0; i < t.NumField(); i++ {
			if !t.Field(i).IsExported() {
				continue
			}
			kw = append(kw, domain.Arg{Name: t.Field(i).Name, Value: v.Field(i).Interface()})
		}
		return &domain.Arguments{Keyword: kw}

	case reflect.Map:
		if v.Type().Key().Kind() != reflect.String {
			break
		}
		keys := v.MapKeys()
		sort.Slice(keys, func(i, j int) bool { return keys[i].String() < keys[j].String() })
		kw := make([]domain.Arg, 0, len(keys))
		for _, k := range keys {
			kw = append(kw, domain.Arg{Name: k.String(), Value: v.MapIndex(k).Interface()})
		}
		return &domain.Arguments{Keyword: kw}

	case reflect.Slice, reflect.Array:
		if v.Type().Elem().Kind() == reflect.Uint8 {
			break
		}
		pos := make([]any, 0, v.Len())
		for i := 0; i < v.Len(); i++ {
			pos = append(pos, v.Index(i).Interface())
		}
		return &domain.Arguments{Positional: pos}
	}

	return &domain.Arguments{Positional: []any{arg}}
}

// funcName returns the package-qualified symbol of fn without its import path.
func funcName(fn any) string {
	rf := runtime.FuncForPC(reflect.ValueOf(fn).Pointer())
	if rf == nil {
		return "func"
	}
	name := rf.Name()
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	return name
}
