package domain

import "strings"

// Var is one reported binding: a variable name and its display value.
type Var struct {
	Name  string `json:"name"  yaml:"name"`
	Value string `json:"value" yaml:"value"`
}

// Dump is the filtered, truncated set of variables reported on failure.
// Order follows the order in which the bindings were recorded.
type Dump []Var

// Get returns the display value recorded for name.
func (d Dump) Get(name string) (string, bool) {
	for _, v := range d {
		if v.Name == name {
			return v.Value, true
		}
	}
	return "", false
}

// Names returns the variable names in dump order.
func (d Dump) Names() []string {
	names := make([]string, 0, len(d))
	for _, v := range d {
		names = append(names, v.Name)
	}
	return names
}

// String renders the dump as {name: value, ...}.
func (d Dump) String() string {
	var b strings.Builder
	b.WriteByte('{')
	for i, v := range d {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(v.Name)
		b.WriteString(": ")
		b.WriteString(v.Value)
	}
	b.WriteByte('}')
	return b.String()
}

// Arg is a keyword argument passed to a wrapped function.
type Arg struct {
	Name  string
	Value any
}

// Arguments holds the raw arguments of the attempt being reported.
type Arguments struct {
	Positional []any
	Keyword    []Arg
}

// Empty reports whether there is nothing to report.
func (a *Arguments) Empty() bool {
	return a == nil || (len(a.Positional) == 0 && len(a.Keyword) == 0)
}
