// Package capture turns the bindings recorded at a failure point into the
// reportable variable dump.
package capture

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/vietddude/resilient/internal/core/config"
	"github.com/vietddude/resilient/internal/core/domain"
)

// Binding is one recorded name and its raw value.
type Binding struct {
	Name  string
	Value any
}

// NameSet is a set of variable names.
type NameSet map[string]struct{}

// Names collects the names present in frame.
func Names(frame []Binding) NameSet {
	set := make(NameSet, len(frame))
	for _, b := range frame {
		set[b.Name] = struct{}{}
	}
	return set
}

// Has reports whether name is in the set.
func (s NameSet) Has(name string) bool {
	_, ok := s[name]
	return ok
}

// Capture filters frame according to cfg and truncates what survives.
//
// A non-empty whitelist selects exactly the listed names and nothing else is
// consulted. Otherwise internal names, opaque values and names in known are
// dropped, then the blacklist applies.
func Capture(frame []Binding, cfg config.Config, known NameSet) domain.Dump {
	var kept []Binding
	if len(cfg.Whitelist) > 0 {
		kept = whitelisted(frame, cfg.Whitelist)
	} else {
		blacklist := make(NameSet, len(cfg.Blacklist))
		for _, n := range cfg.Blacklist {
			blacklist[n] = struct{}{}
		}
		for _, b := range frame {
			if IsInternal(b.Name) || IsOpaque(b.Value) {
				continue
			}
			if known.Has(b.Name) || blacklist.Has(b.Name) {
				continue
			}
			kept = append(kept, b)
		}
	}

	dump := make(domain.Dump, 0, len(kept))
	for _, b := range kept {
		dump = append(dump, domain.Var{Name: b.Name, Value: Truncate(b.Value, cfg.MaxVarStrLen)})
	}
	return dump
}

// whitelisted keeps the listed names in frame order.
func whitelisted(frame []Binding, whitelist []string) []Binding {
	wanted := make(NameSet, len(whitelist))
	for _, n := range whitelist {
		wanted[n] = struct{}{}
	}
	var kept []Binding
	for _, b := range frame {
		if wanted.Has(b.Name) {
			kept = append(kept, b)
		}
	}
	return kept
}

// IsInternal reports whether name follows the leading-underscore convention.
func IsInternal(name string) bool {
	return strings.HasPrefix(name, "_")
}

// Truncate renders v and, when the rendering is longer than maxLen
// characters, returns "<type> " followed by its first maxLen characters.
func Truncate(v any, maxLen int) string {
	s := fmt.Sprint(v)
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	return fmt.Sprintf("<%T> %s", v, firstRunes(s, maxLen))
}

func firstRunes(s string, n int) string {
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
