// Package config loads the engine configuration from a YAML file with
// environment variable overrides.
package config

import (
	"errors"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the top-level configuration.
type Config struct {
	Discord  Discord  `yaml:"discord"`
	Storage  Storage  `yaml:"storage"`
	Ops      Ops      `yaml:"ops"`
	Wagering Wagering `yaml:"wagering"`
}

// Discord holds bot credentials.
type Discord struct {
	Token string `yaml:"token"`
	// GuildID scopes slash-command registration to one guild (faster to
	// propagate during development); empty registers globally.
	GuildID string `yaml:"guild_id"`
}

// Storage selects the durable store. DatabaseURL (PostgreSQL) wins over
// SQLitePath; with neither set the engine runs on the in-memory store.
type Storage struct {
	DatabaseURL string `yaml:"database_url"`
	SQLitePath  string `yaml:"sqlite_path"`
	RedisURL    string `yaml:"redis_url"`
	CacheTTL    int    `yaml:"cache_ttl_seconds"`
}

// Ops configures the operational HTTP listener.
type Ops struct {
	Addr string `yaml:"addr"`
}

// Wagering holds table limits. MaxBet "0" or empty means no limit.
type Wagering struct {
	MaxBet string `yaml:"max_bet"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Storage: Storage{
			SQLitePath: "economy.db",
			CacheTTL:   30,
		},
		Ops: Ops{Addr: ":8080"},
	}
}

// Load reads the YAML file at path (if it exists), then applies
// environment overrides. A missing file is not an error; missing required
// values are caught at startup, not here.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	case errors.Is(err, os.ErrNotExist):
		// Fall through to env-only configuration.
	default:
		return nil, err
	}

	applyEnvOverrides(cfg)
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("DISCORD_TOKEN"); v != "" {
		cfg.Discord.Token = v
	}
	if v := os.Getenv("DISCORD_GUILD_ID"); v != "" {
		cfg.Discord.GuildID = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Storage.DatabaseURL = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Storage.SQLitePath = v
	}
	if v := os.Getenv("REDIS_URL"); v != "" {
		cfg.Storage.RedisURL = v
	}
	if v := os.Getenv("OPS_ADDR"); v != "" {
		cfg.Ops.Addr = v
	}
	if v := os.Getenv("MAX_BET"); v != "" {
		cfg.Wagering.MaxBet = v
	}
}
