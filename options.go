package resilient

import (
	"log/slog"
	"time"

	"github.com/vietddude/resilient/internal/core/config"
	"github.com/vietddude/resilient/internal/infra/storage"
)

// Option configures Wrap, Do, NewGuard and NewAttempts.
type Option func(*options)

type options struct {
	cfg     config.Config
	logger  *slog.Logger
	store   storage.DumpWriter
	sleeper Sleeper
	label   string
	err     error
}

func buildOptions(opts []Option) (*options, error) {
	o := &options{cfg: config.Default(), sleeper: realSleeper{}}
	for _, opt := range opts {
		opt(o)
		if o.err != nil {
			return nil, o.err
		}
	}
	if err := o.cfg.Validate(); err != nil {
		return nil, err
	}
	return o, nil
}

// WithMaxTries sets how many times the work runs before giving up.
func WithMaxTries(n int) Option {
	return func(o *options) { o.cfg.MaxTries = n }
}

// WithWhitelist reports exactly these names and ignores every other filter.
func WithWhitelist(names ...string) Option {
	return func(o *options) { o.cfg.Whitelist = append([]string(nil), names...) }
}

// WithBlacklist never reports these names. Ignored when a whitelist is set.
func WithBlacklist(names ...string) Option {
	return func(o *options) { o.cfg.Blacklist = append([]string(nil), names...) }
}

// WithMaxVarStrLen caps the rendered length of each reported value.
func WithMaxVarStrLen(n int) Option {
	return func(o *options) { o.cfg.MaxVarStrLen = n }
}

// WithLog toggles the error log entry.
func WithLog(enabled bool) Option {
	return func(o *options) { o.cfg.ToLog = enabled }
}

// WithReraise chooses between propagating and swallowing the final failure.
func WithReraise(enabled bool) Option {
	return func(o *options) { o.cfg.Reraise = enabled }
}

// WithDump writes the variable dump to path. The extension picks the
// encoding: .json, .yaml, .gob or .pb.
func WithDump(path string) Option {
	return func(o *options) {
		o.cfg.ToDump = true
		o.cfg.DumpPath = path
	}
}

// WithDumpStore writes the variable dump to store instead of a file.
func WithDumpStore(store DumpStore) Option {
	return func(o *options) {
		o.cfg.ToDump = true
		o.store = store
	}
}

// WithBackoff pauses between attempts, starting at minDelay and doubling up
// to maxDelay.
func WithBackoff(minDelay, maxDelay time.Duration) Option {
	return func(o *options) {
		o.cfg.Backoff = &config.Backoff{Min: minDelay, Max: maxDelay}
	}
}

// WithoutBackoff retries immediately.
func WithoutBackoff() Option {
	return func(o *options) { o.cfg.Backoff = nil }
}

// WithCustomMessage adds a line to the log entry and the dump record.
func WithCustomMessage(msg string) Option {
	return func(o *options) { o.cfg.CustomMessage = msg }
}

// WithLogger sets the logger reports go to. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithSleeper replaces the pause between attempts.
func WithSleeper(s Sleeper) Option {
	return func(o *options) {
		if s != nil {
			o.sleeper = s
		}
	}
}

// WithLabel names the work in reports and metrics.
func WithLabel(label string) Option {
	return func(o *options) { o.label = label }
}

// WithSettings applies a raw settings bundle such as a YAML profile. Keys
// follow the snake_case field names (max_tries, whitelist_var, backoff, ...).
func WithSettings(raw map[string]any) Option {
	return func(o *options) {
		cfg, err := config.FromMap(raw, o.cfg)
		if err != nil {
			o.err = err
			return
		}
		o.cfg = cfg
	}
}
