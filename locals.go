package resilient

import (
	"sync"

	"github.com/vietddude/resilient/internal/capture"
)

// Locals is the ordered set of bindings visible at a failure point.
// New names are appended; setting an existing name keeps its position.
type Locals struct {
	mu     sync.Mutex
	names  []string
	values map[string]any
}

// NewLocals creates an empty binding set.
func NewLocals() *Locals {
	return &Locals{values: make(map[string]any)}
}

// Set binds name to v.
func (l *Locals) Set(name string, v any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.values[name]; !ok {
		l.names = append(l.names, name)
	}
	l.values[name] = v
}

// Get returns the value bound to name.
func (l *Locals) Get(name string) (any, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	v, ok := l.values[name]
	return v, ok
}

// Delete removes name.
func (l *Locals) Delete(name string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.values[name]; !ok {
		return
	}
	delete(l.values, name)
	for i, n := range l.names {
		if n == name {
			l.names = append(l.names[:i], l.names[i+1:]...)
			break
		}
	}
}

// Names returns the bound names in insertion order.
func (l *Locals) Names() []string {
	if l == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.names...)
}

// Len returns the number of bindings.
func (l *Locals) Len() int {
	if l == nil {
		return 0
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.names)
}

func (l *Locals) frame() []capture.Binding {
	if l == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	frame := make([]capture.Binding, 0, len(l.names))
	for _, n := range l.names {
		frame = append(frame, capture.Binding{Name: n, Value: l.values[n]})
	}
	return frame
}
