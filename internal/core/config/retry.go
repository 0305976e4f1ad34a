package config

import (
	"slices"
	"time"
)

// DefaultDumpPath is where dumps go when persistence is enabled without a path.
const DefaultDumpPath = "exception_variable_dump.json"

// Backoff bounds the pause between attempts. The first pause is Min, each
// following one doubles up to Max.
type Backoff struct {
	Min time.Duration
	Max time.Duration
}

// Config is the retry-and-report configuration of one engine instance.
// When Whitelist is non-empty, Blacklist is ignored.
type Config struct {
	MaxTries      int
	Whitelist     []string
	Blacklist     []string
	MaxVarStrLen  int
	ToLog         bool
	Reraise       bool
	ToDump        bool
	DumpPath      string
	CustomMessage string
	Backoff       *Backoff // nil disables the pause between attempts
}

// Default returns the defaults shared by the function and scoped forms.
func Default() Config {
	return Config{
		MaxTries:     1,
		MaxVarStrLen: 500,
		ToLog:        true,
		Reraise:      true,
		DumpPath:     DefaultDumpPath,
		Backoff: &Backoff{
			Min: 50 * time.Millisecond,
			Max: 1 * time.Second,
		},
	}
}

// Clone returns a deep copy so engines never share slices or the backoff.
func (c Config) Clone() Config {
	out := c
	out.Whitelist = slices.Clone(c.Whitelist)
	out.Blacklist = slices.Clone(c.Blacklist)
	if c.Backoff != nil {
		b := *c.Backoff
		out.Backoff = &b
	}
	return out
}

// Validate checks range and shape constraints.
func (c Config) Validate() error {
	if c.MaxTries <= 0 {
		return valueError("max_tries", "must be a positive integer, got %d", c.MaxTries)
	}
	if c.MaxVarStrLen < 0 {
		return valueError("max_var_str_len", "must not be negative, got %d", c.MaxVarStrLen)
	}
	if err := validateNames("whitelist_var", c.Whitelist); err != nil {
		return err
	}
	if err := validateNames("blacklist_var", c.Blacklist); err != nil {
		return err
	}
	if c.Backoff != nil {
		if c.Backoff.Min < 0 {
			return valueError("backoff", "min must not be negative, got %s", c.Backoff.Min)
		}
		if c.Backoff.Max < c.Backoff.Min {
			return valueError("backoff", "max (%s) must be >= min (%s)", c.Backoff.Max, c.Backoff.Min)
		}
	}
	if c.ToDump && c.DumpPath == "" {
		return valueError("dump_path", "must be set when dumping is enabled")
	}
	return nil
}

func validateNames(field string, names []string) error {
	for i, n := range names {
		if n == "" {
			return valueError(field, "element %d is an empty name", i)
		}
	}
	return nil
}
