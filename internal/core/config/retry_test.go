package config

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.Backoff == nil || cfg.Backoff.Min != 50*time.Millisecond || cfg.Backoff.Max != time.Second {
		t.Errorf("unexpected default backoff %+v", cfg.Backoff)
	}
	if !cfg.Reraise || !cfg.ToLog || cfg.ToDump {
		t.Errorf("unexpected default flags %+v", cfg)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"zero tries", func(c *Config) { c.MaxTries = 0 }, "max_tries"},
		{"negative tries", func(c *Config) { c.MaxTries = -2 }, "max_tries"},
		{"negative length", func(c *Config) { c.MaxVarStrLen = -1 }, "max_var_str_len"},
		{"blank whitelist name", func(c *Config) { c.Whitelist = []string{"a", ""} }, "whitelist_var"},
		{"blank blacklist name", func(c *Config) { c.Blacklist = []string{""} }, "blacklist_var"},
		{"negative min", func(c *Config) { c.Backoff = &Backoff{Min: -1, Max: 1} }, "backoff"},
		{"max below min", func(c *Config) { c.Backoff = &Backoff{Min: 2, Max: 1} }, "backoff"},
		{"dump without path", func(c *Config) { c.ToDump, c.DumpPath = true, "" }, "dump_path"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if !errors.Is(err, ErrInvalidConfig) {
				t.Fatalf("expected ErrInvalidConfig, got %v", err)
			}
			var ce *Error
			if !errors.As(err, &ce) || ce.Kind != KindValue || ce.Field != tt.field {
				t.Errorf("unexpected error %#v", err)
			}
		})
	}
}

func TestClone_DoesNotAlias(t *testing.T) {
	cfg := Default()
	cfg.Whitelist = []string{"a"}
	clone := cfg.Clone()
	clone.Whitelist[0] = "b"
	clone.Backoff.Max = time.Hour

	if cfg.Whitelist[0] != "a" {
		t.Error("whitelist aliased")
	}
	if cfg.Backoff.Max != time.Second {
		t.Error("backoff aliased")
	}
}

func TestFromMap(t *testing.T) {
	cfg, err := FromMap(map[string]any{
		"max_tries":       json.Number("4"),
		"blacklist_var":   []any{"password"},
		"max_var_str_len": 10.0,
		"reraise":         false,
		"to_pickle":       true,
		"to_pickle_path":  "dump.yaml",
		"custom_log_msg":  "nightly sync",
		"backoff":         map[any]any{"min": 1, "max": 1.5},
	}, Default())
	if err != nil {
		t.Fatalf("FromMap failed: %v", err)
	}
	if cfg.MaxTries != 4 || cfg.MaxVarStrLen != 10 || cfg.Reraise || !cfg.ToDump {
		t.Errorf("unexpected config %+v", cfg)
	}
	if cfg.DumpPath != "dump.yaml" || cfg.CustomMessage != "nightly sync" {
		t.Errorf("unexpected strings %+v", cfg)
	}
	if cfg.Backoff.Min != time.Second || cfg.Backoff.Max != 1500*time.Millisecond {
		t.Errorf("unexpected backoff %+v", cfg.Backoff)
	}
}

func TestFromMap_DisableBackoff(t *testing.T) {
	for _, v := range []any{false, nil} {
		cfg, err := FromMap(map[string]any{"exponential_backoff": v}, Default())
		if err != nil {
			t.Fatalf("FromMap(%v) failed: %v", v, err)
		}
		if cfg.Backoff != nil {
			t.Errorf("FromMap(%v) kept backoff %+v", v, cfg.Backoff)
		}
	}
}

func TestFromMap_Errors(t *testing.T) {
	tests := []struct {
		name string
		raw  map[string]any
		kind ErrorKind
	}{
		{"tries not integer", map[string]any{"max_tries": "3"}, KindType},
		{"tries fractional", map[string]any{"max_tries": 2.5}, KindType},
		{"tries zero", map[string]any{"max_tries": 0}, KindValue},
		{"length negative", map[string]any{"max_var_str_len": -5}, KindValue},
		{"whitelist not list", map[string]any{"whitelist_var": "a"}, KindType},
		{"whitelist element not string", map[string]any{"whitelist_var": []any{"a", 3}}, KindValue},
		{"blacklist element not string", map[string]any{"blacklist_var": []any{true}}, KindValue},
		{"to_log not bool", map[string]any{"to_log": "yes"}, KindType},
		{"backoff true", map[string]any{"backoff": true}, KindType},
		{"backoff wrong type", map[string]any{"backoff": 5}, KindType},
		{"backoff missing max", map[string]any{"backoff": map[string]any{"min": 1}}, KindValue},
		{"backoff min not number", map[string]any{"backoff": map[string]any{"min": "a", "max": 1}}, KindValue},
		{"unknown key", map[string]any{"retries": 3}, KindValue},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromMap(tt.raw, Default())
			if !IsKind(err, tt.kind) {
				t.Errorf("expected %s error, got %v", tt.kind, err)
			}
		})
	}
}
