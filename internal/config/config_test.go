package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("IGNIS_DISCORD_TOKEN", "discord-token")
	t.Setenv("IGNIS_LLM_API_KEY", "sk-test")
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := LoadFile("")
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}

	if cfg.Store.Driver != "memory" {
		t.Errorf("expected memory store by default, got %q", cfg.Store.Driver)
	}
	if cfg.Chat.MaxHistory != 10 {
		t.Errorf("expected max history 10, got %d", cfg.Chat.MaxHistory)
	}
	if cfg.Chat.MaxResponseLength != 2000 {
		t.Errorf("expected max response length 2000, got %d", cfg.Chat.MaxResponseLength)
	}
	if cfg.LLM.Model != "gpt-4o-mini" || cfg.LLM.Provider != "openai" {
		t.Errorf("unexpected llm defaults: %+v", cfg.LLM)
	}
	if cfg.LLM.Timeout != 60*time.Second {
		t.Errorf("expected 60s timeout, got %v", cfg.LLM.Timeout)
	}
	if cfg.Discord.Token != "discord-token" || cfg.LLM.APIKey != "sk-test" {
		t.Errorf("env not applied: %+v %+v", cfg.Discord, cfg.LLM)
	}
}

func TestLoad_LegacyEnvNames(t *testing.T) {
	t.Setenv("DISCORD_TOKEN", "legacy-token")
	t.Setenv("OPENAI_API_KEY", "legacy-key")
	t.Setenv("GUILD_ID", "123")
	t.Setenv("REDIS_HOST", "cache.local")
	t.Setenv("REDIS_PORT", "6380")
	t.Setenv("IGNIS_STORE_DRIVER", "redis")

	cfg, err := LoadFile("")
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}

	if cfg.Discord.Token != "legacy-token" || cfg.LLM.APIKey != "legacy-key" || cfg.Discord.GuildID != "123" {
		t.Errorf("legacy env not applied: %+v %+v", cfg.Discord, cfg.LLM)
	}
	if cfg.Store.Redis.Addr() != "cache.local:6380" {
		t.Errorf("unexpected redis addr %s", cfg.Store.Redis.Addr())
	}
}

func TestLoadFile_YAML(t *testing.T) {
	setRequiredEnv(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := `
discord:
  development: true
  guild_id: "999"
store:
  driver: redis
  redis:
    host: redis
    ttl: 24h
chat:
  truncation_notice: notice
`
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}

	if !cfg.Discord.Development || cfg.Discord.GuildID != "999" {
		t.Errorf("discord section not loaded: %+v", cfg.Discord)
	}
	if cfg.Store.Redis.TTL != 24*time.Hour || cfg.Store.Redis.Port != 6379 {
		t.Errorf("redis section not loaded: %+v", cfg.Store.Redis)
	}
	if cfg.Chat.TruncationNotice != "notice" {
		t.Errorf("unexpected truncation notice %q", cfg.Chat.TruncationNotice)
	}
	if GetConfigSource(cfg)["config_file"] != path {
		t.Errorf("unexpected config source: %v", GetConfigSource(cfg))
	}
}

func TestLoadFile_Missing(t *testing.T) {
	setRequiredEnv(t)
	if _, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for explicit missing file")
	}
}

func validConfig() Config {
	return Config{
		Discord: DiscordConfig{Token: "t"},
		LLM:     LLMConfig{Provider: "openai", APIKey: "k", Model: "gpt-4o-mini"},
		Store:   StoreConfig{Driver: "memory"},
		Chat:    ChatConfig{MaxHistory: 10, MaxResponseLength: 2000, TruncationNotice: "ellipsis"},
	}
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"no token", func(c *Config) { c.Discord.Token = " " }, "discord token"},
		{"dev without guild", func(c *Config) { c.Discord.Development = true }, "guild_id"},
		{"bad provider", func(c *Config) { c.LLM.Provider = "cohere" }, "unsupported LLM provider"},
		{"no api key", func(c *Config) { c.LLM.APIKey = "" }, "API key"},
		{"bad base url", func(c *Config) { c.LLM.BaseURL = "ftp://x" }, "base_url"},
		{"bad driver", func(c *Config) { c.Store.Driver = "mongo" }, "unsupported store driver"},
		{"redis bad port", func(c *Config) {
			c.Store.Driver = "redis"
			c.Store.Redis = RedisConfig{Host: "h", Port: 0}
		}, "redis port"},
		{"postgres no url", func(c *Config) { c.Store.Driver = "postgres" }, "postgres url"},
		{"zero history", func(c *Config) { c.Chat.MaxHistory = 0 }, "max history"},
		{"too long response", func(c *Config) { c.Chat.MaxResponseLength = 4000 }, "max response length"},
		{"bad notice", func(c *Config) { c.Chat.TruncationNotice = "dots" }, "truncation notice"},
		{"bad server port", func(c *Config) {
			c.Server.Enabled = true
			c.Server.Port = 70000
		}, "server port"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := validateConfig(&cfg)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}
