package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/snackbot/economy-engine/internal/config"
)

func TestDefault(t *testing.T) {
	cfg := config.Default()

	if cfg.Storage.SQLitePath != "economy.db" {
		t.Errorf("unexpected sqlite path: %q", cfg.Storage.SQLitePath)
	}
	if cfg.Storage.CacheTTL != 30 {
		t.Errorf("unexpected cache ttl: %d", cfg.Storage.CacheTTL)
	}
	if cfg.Ops.Addr != ":8080" {
		t.Errorf("unexpected ops addr: %q", cfg.Ops.Addr)
	}
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Storage.SQLitePath != "economy.db" {
		t.Errorf("expected defaults, got %+v", cfg)
	}
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	raw := `
discord:
  token: abc123
  guild_id: "42"
storage:
  sqlite_path: /data/bot.db
  redis_url: redis://localhost:6379/0
ops:
  addr: ":9090"
wagering:
  max_bet: "5000"
`
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Discord.Token != "abc123" || cfg.Discord.GuildID != "42" {
		t.Errorf("unexpected discord config: %+v", cfg.Discord)
	}
	if cfg.Storage.SQLitePath != "/data/bot.db" {
		t.Errorf("unexpected sqlite path: %q", cfg.Storage.SQLitePath)
	}
	if cfg.Ops.Addr != ":9090" {
		t.Errorf("unexpected ops addr: %q", cfg.Ops.Addr)
	}
	if cfg.Wagering.MaxBet != "5000" {
		t.Errorf("unexpected max bet: %q", cfg.Wagering.MaxBet)
	}
	// Unset fields keep their defaults.
	if cfg.Storage.CacheTTL != 30 {
		t.Errorf("unexpected cache ttl: %d", cfg.Storage.CacheTTL)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	raw := `
discord:
  token: from-file
ops:
  addr: ":9090"
`
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	t.Setenv("DISCORD_TOKEN", "from-env")
	t.Setenv("MAX_BET", "100")

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Discord.Token != "from-env" {
		t.Errorf("env should win over file, got %q", cfg.Discord.Token)
	}
	if cfg.Wagering.MaxBet != "100" {
		t.Errorf("expected env max bet, got %q", cfg.Wagering.MaxBet)
	}
	if cfg.Ops.Addr != ":9090" {
		t.Errorf("file value without env override should stand, got %q", cfg.Ops.Addr)
	}
}

func TestLoad_MalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("discord: [oops"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	if _, err := config.Load(path); err == nil {
		t.Error("expected a parse error")
	}
}
