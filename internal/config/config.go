package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/subosito/gotenv"
)

type Config struct {
	Discord DiscordConfig `mapstructure:"discord"`
	LLM     LLMConfig     `mapstructure:"llm"`
	Store   StoreConfig   `mapstructure:"store"`
	Chat    ChatConfig    `mapstructure:"chat"`
	Server  ServerConfig  `mapstructure:"server"`
	Logging LoggingConfig `mapstructure:"logging"`

	configFile string
}

type DiscordConfig struct {
	Token   string `mapstructure:"token"`
	GuildID string `mapstructure:"guild_id"`
	// Development регистрирует команды только в GuildID (мгновенно), иначе глобально
	Development bool   `mapstructure:"development"`
	StatusText  string `mapstructure:"status_text"`
}

type LLMConfig struct {
	Provider string        `mapstructure:"provider"` // openai, openrouter, gemini
	BaseURL  string        `mapstructure:"base_url"`
	APIKey   string        `mapstructure:"api_key"`
	Model    string        `mapstructure:"model"`
	Timeout  time.Duration `mapstructure:"timeout"`
	Retry    RetryConfig   `mapstructure:"retry"`
}

type RetryConfig struct {
	MaxRetries   int           `mapstructure:"max_retries"`
	InitialDelay time.Duration `mapstructure:"initial_delay"`
	MaxDelay     time.Duration `mapstructure:"max_delay"`
}

type StoreConfig struct {
	Driver   string         `mapstructure:"driver"` // memory, redis, postgres
	Redis    RedisConfig    `mapstructure:"redis"`
	Postgres PostgresConfig `mapstructure:"postgres"`
}

type RedisConfig struct {
	Host      string        `mapstructure:"host"`
	Port      int           `mapstructure:"port"`
	Password  string        `mapstructure:"password"`
	DB        int           `mapstructure:"db"`
	KeyPrefix string        `mapstructure:"key_prefix"`
	TTL       time.Duration `mapstructure:"ttl"`
}

type PostgresConfig struct {
	URL         string `mapstructure:"url"`
	AutoMigrate bool   `mapstructure:"auto_migrate"`
}

type ChatConfig struct {
	MaxHistory        int    `mapstructure:"max_history"`
	MaxResponseLength int    `mapstructure:"max_response_length"`
	TruncationNotice  string `mapstructure:"truncation_notice"` // ellipsis, notice
}

type ServerConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Addr returns host:port of the redis server
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// envBindings maps config keys without defaults onto environment variables.
// Plain names without the prefix are the ones older deployments kept in .env.
var envBindings = map[string][]string{
	"discord.token":        {"DISCORD_TOKEN"},
	"discord.guild_id":     {"GUILD_ID"},
	"llm.api_key":          {"OPENAI_API_KEY"},
	"llm.base_url":         nil,
	"store.redis.host":     {"REDIS_HOST"},
	"store.redis.port":     {"REDIS_PORT"},
	"store.redis.password": {"REDIS_PASSWORD"},
	"store.postgres.url":   {"DATABASE_URL"},
}

// Load reads config.yaml from ./configs or the working directory, if present,
// and overlays environment variables.
func Load() (*Config, error) {
	return LoadFile("")
}

// LoadFile is Load with an explicit config file path. Empty path searches the default locations.
func LoadFile(path string) (*Config, error) {
	// .env is optional
	_ = gotenv.Load()

	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	// Environment variables: IGNIS_DISCORD_TOKEN, IGNIS_STORE_DRIVER, ...
	v.SetEnvPrefix("IGNIS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	for key, extra := range envBindings {
		names := append([]string{"IGNIS_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))}, extra...)
		if err := v.BindEnv(append([]string{key}, names...)...); err != nil {
			return nil, fmt.Errorf("failed to bind env for %s: %w", key, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	config.configFile = v.ConfigFileUsed()

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	// Discord defaults
	v.SetDefault("discord.development", false)
	v.SetDefault("discord.status_text", "Type /help for usage!")

	// LLM defaults
	v.SetDefault("llm.provider", "openai")
	v.SetDefault("llm.model", "gpt-4o-mini")
	v.SetDefault("llm.timeout", "60s")
	v.SetDefault("llm.retry.max_retries", 2)
	v.SetDefault("llm.retry.initial_delay", "1s")
	v.SetDefault("llm.retry.max_delay", "10s")

	// Store defaults
	v.SetDefault("store.driver", "memory")
	v.SetDefault("store.redis.host", "localhost")
	v.SetDefault("store.redis.port", 6379)
	v.SetDefault("store.redis.db", 0)
	v.SetDefault("store.redis.key_prefix", "ignis:history:")
	v.SetDefault("store.redis.ttl", "0s")
	v.SetDefault("store.postgres.auto_migrate", true)

	// Chat defaults
	v.SetDefault("chat.max_history", 10)
	v.SetDefault("chat.max_response_length", 2000)
	v.SetDefault("chat.truncation_notice", "ellipsis")

	// Server defaults
	v.SetDefault("server.enabled", false)
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "90s")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

func validateConfig(config *Config) error {
	if strings.TrimSpace(config.Discord.Token) == "" {
		return fmt.Errorf("discord token is required, set %s", strings.Join(GetDiscordEnvVars(), " or "))
	}

	if config.Discord.Development && strings.TrimSpace(config.Discord.GuildID) == "" {
		return fmt.Errorf("discord.guild_id is required when discord.development is enabled")
	}

	switch strings.ToLower(config.LLM.Provider) {
	case "openai", "openrouter", "gemini":
	default:
		return fmt.Errorf("unsupported LLM provider: %s", config.LLM.Provider)
	}

	if strings.TrimSpace(config.LLM.APIKey) == "" {
		return fmt.Errorf("LLM API key is required, set %s", strings.Join(GetLLMEnvVars(), " or "))
	}

	if strings.TrimSpace(config.LLM.Model) == "" {
		return fmt.Errorf("LLM model is required")
	}

	if strings.TrimSpace(config.LLM.BaseURL) != "" && !strings.HasPrefix(config.LLM.BaseURL, "http") {
		return fmt.Errorf("LLM base_url must start with http:// or https://")
	}

	if config.LLM.Retry.MaxRetries < 0 {
		return fmt.Errorf("llm retry max_retries must not be negative: %d", config.LLM.Retry.MaxRetries)
	}

	switch strings.ToLower(config.Store.Driver) {
	case "memory":
	case "redis":
		if strings.TrimSpace(config.Store.Redis.Host) == "" {
			return fmt.Errorf("redis host is required for the redis store")
		}
		if config.Store.Redis.Port <= 0 || config.Store.Redis.Port > 65535 {
			return fmt.Errorf("invalid redis port: %d", config.Store.Redis.Port)
		}
	case "postgres":
		if strings.TrimSpace(config.Store.Postgres.URL) == "" {
			return fmt.Errorf("postgres url is required for the postgres store")
		}
	default:
		return fmt.Errorf("unsupported store driver: %s", config.Store.Driver)
	}

	if config.Chat.MaxHistory <= 0 {
		return fmt.Errorf("max history must be positive: %d", config.Chat.MaxHistory)
	}

	if config.Chat.MaxResponseLength <= 0 || config.Chat.MaxResponseLength > 2000 {
		return fmt.Errorf("max response length must be in 1..2000: %d", config.Chat.MaxResponseLength)
	}

	switch config.Chat.TruncationNotice {
	case "ellipsis", "notice":
	default:
		return fmt.Errorf("unsupported truncation notice: %s", config.Chat.TruncationNotice)
	}

	if config.Server.Enabled && (config.Server.Port <= 0 || config.Server.Port > 65535) {
		return fmt.Errorf("invalid server port: %d", config.Server.Port)
	}

	return nil
}

// GetConfigSource возвращает информацию о том, откуда взяты настройки (без секретов)
func GetConfigSource(config *Config) map[string]string {
	sources := make(map[string]string)

	sources["config_file"] = config.configFile
	if sources["config_file"] == "" {
		sources["config_file"] = "none (defaults and environment)"
	}

	sources["discord_token"] = "not set"
	if config.Discord.Token != "" {
		sources["discord_token"] = "set"
	}
	sources["llm_api_key"] = "not set"
	if config.LLM.APIKey != "" {
		sources["llm_api_key"] = "set"
	}

	sources["provider"] = config.LLM.Provider
	sources["store"] = config.Store.Driver
	sources["commands"] = "global"
	if config.Discord.Development {
		sources["commands"] = "guild " + config.Discord.GuildID
	}

	return sources
}

// GetDiscordEnvVars возвращает переменные окружения для токена бота
func GetDiscordEnvVars() []string {
	return []string{"IGNIS_DISCORD_TOKEN", "DISCORD_TOKEN"}
}

// GetLLMEnvVars возвращает переменные окружения для ключа LLM
func GetLLMEnvVars() []string {
	return []string{"IGNIS_LLM_API_KEY", "OPENAI_API_KEY"}
}

// GetStoreEnvVars возвращает переменные окружения для хранилища контекста
func GetStoreEnvVars() []string {
	return []string{
		"IGNIS_STORE_DRIVER",
		"IGNIS_STORE_REDIS_HOST",
		"IGNIS_STORE_REDIS_PORT",
		"IGNIS_STORE_REDIS_PASSWORD",
		"IGNIS_STORE_POSTGRES_URL",
	}
}
