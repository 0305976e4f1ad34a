package config

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"time"
)

// Keys accepted by FromMap. Aliases mirror the historic option names.
var settingKeys = map[string]string{
	"max_tries":           "max_tries",
	"whitelist_var":       "whitelist_var",
	"blacklist_var":       "blacklist_var",
	"max_var_str_len":     "max_var_str_len",
	"to_log":              "to_log",
	"reraise":             "reraise",
	"to_dump":             "to_dump",
	"to_pickle":           "to_dump",
	"dump_path":           "dump_path",
	"to_pickle_path":      "dump_path",
	"custom_message":      "custom_message",
	"custom_log_msg":      "custom_message",
	"backoff":             "backoff",
	"exponential_backoff": "backoff",
}

// FromMap applies a raw settings bundle on top of base and validates the
// result. A value of the wrong runtime type yields a KindType error, a value
// of the right type but out of range yields a KindValue error.
func FromMap(raw map[string]any, base Config) (Config, error) {
	cfg := base.Clone()

	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		canonical, ok := settingKeys[key]
		if !ok {
			return Config{}, valueError(key, "unknown setting")
		}
		if err := apply(&cfg, canonical, raw[key]); err != nil {
			return Config{}, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func apply(cfg *Config, field string, v any) error {
	var err error
	switch field {
	case "max_tries":
		cfg.MaxTries, err = asInt(field, v)
	case "max_var_str_len":
		cfg.MaxVarStrLen, err = asInt(field, v)
	case "whitelist_var":
		cfg.Whitelist, err = asNames(field, v)
	case "blacklist_var":
		cfg.Blacklist, err = asNames(field, v)
	case "to_log":
		cfg.ToLog, err = asBool(field, v)
	case "reraise":
		cfg.Reraise, err = asBool(field, v)
	case "to_dump":
		cfg.ToDump, err = asBool(field, v)
	case "dump_path":
		cfg.DumpPath, err = asString(field, v)
	case "custom_message":
		cfg.CustomMessage, err = asString(field, v)
	case "backoff":
		cfg.Backoff, err = asBackoff(field, v)
	}
	return err
}

func asInt(field string, v any) (int, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case int8:
		return int(n), nil
	case int16:
		return int(n), nil
	case int32:
		return int(n), nil
	case int64:
		return int(n), nil
	case uint:
		return int(n), nil
	case uint8:
		return int(n), nil
	case uint16:
		return int(n), nil
	case uint32:
		return int(n), nil
	case uint64:
		return int(n), nil
	case float64:
		if n == math.Trunc(n) && !math.IsInf(n, 0) {
			return int(n), nil
		}
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return int(i), nil
		}
	}
	return 0, typeError(field, "an integer", v)
}

func asBool(field string, v any) (bool, error) {
	b, ok := v.(bool)
	if !ok {
		return false, typeError(field, "a boolean", v)
	}
	return b, nil
}

func asString(field string, v any) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", typeError(field, "a string", v)
	}
	return s, nil
}

func asNames(field string, v any) ([]string, error) {
	switch list := v.(type) {
	case nil:
		return nil, nil
	case []string:
		return append([]string(nil), list...), nil
	case []any:
		names := make([]string, 0, len(list))
		for i, item := range list {
			s, ok := item.(string)
			if !ok {
				return nil, valueError(field, "element %d is %T, not a name", i, item)
			}
			names = append(names, s)
		}
		return names, nil
	}
	return nil, typeError(field, "a list of names", v)
}

func asSeconds(v any) (time.Duration, bool) {
	var f float64
	switch n := v.(type) {
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	case float32:
		f = float64(n)
	case float64:
		f = n
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	return time.Duration(f * float64(time.Second)), true
}

func asBackoff(field string, v any) (*Backoff, error) {
	var m map[string]any
	switch raw := v.(type) {
	case nil:
		return nil, nil
	case bool:
		if !raw {
			return nil, nil
		}
		return nil, typeError(field, "a {min, max} mapping or false", v)
	case map[string]any:
		m = raw
	case map[any]any:
		m = make(map[string]any, len(raw))
		for k, val := range raw {
			m[fmt.Sprint(k)] = val
		}
	default:
		return nil, typeError(field, "a {min, max} mapping or false", v)
	}

	minVal, okMin := m["min"]
	maxVal, okMax := m["max"]
	if !okMin || !okMax {
		return nil, valueError(field, "both min and max are required")
	}
	minDelay, ok := asSeconds(minVal)
	if !ok {
		return nil, valueError(field, "min must be a number of seconds, got %T", minVal)
	}
	maxDelay, ok := asSeconds(maxVal)
	if !ok {
		return nil, valueError(field, "max must be a number of seconds, got %T", maxVal)
	}
	return &Backoff{Min: minDelay, Max: maxDelay}, nil
}
