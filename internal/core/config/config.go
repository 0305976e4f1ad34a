package config

import (
	redisclient "github.com/vietddude/resilient/internal/infra/redis"
	"github.com/vietddude/resilient/internal/infra/storage/postgres"
)

// AppConfig is the resilientctl configuration file.
type AppConfig struct {
	Logging  LoggingConfig                     `yaml:"logging"`
	Dumps    DumpsConfig                       `yaml:"dumps"`
	Redis    redisclient.Config                `yaml:"redis"`
	Database postgres.Config                   `yaml:"database"`
	Profiles map[string]map[string]interface{} `yaml:"profiles"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}

// DumpsConfig points at the local dump file.
type DumpsConfig struct {
	Path string `yaml:"path"`
}

// Profile resolves a named retry profile into a validated Config.
func (c *AppConfig) Profile(name string) (Config, error) {
	raw, ok := c.Profiles[name]
	if !ok {
		return Config{}, valueError("profile", "unknown profile %q", name)
	}
	return FromMap(raw, Default())
}
