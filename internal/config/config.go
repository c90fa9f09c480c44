package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v6"
)

const (
	defaultConfigPath  = "config.json"
	defaultTemperature = 0.8
)

// Config represents runtime configuration for the service.
type Config struct {
	BasicConfig BasicConfig    `json:"basic_config"`
	Provider    ProviderConfig `json:"provider"`
	Session     SessionConfig  `json:"session"`
	History     HistoryConfig  `json:"history"`
	Redis       RedisConfig    `json:"redis"`
}

type BasicConfig struct {
	ServerAddress    string `json:"server_address" env:"EDUMATE_SERVER_ADDRESS"`
	LogLevel         string `json:"log_level" env:"EDUMATE_LOG_LEVEL"`
	PrettyLogs       bool   `json:"pretty_logs" env:"EDUMATE_PRETTY_LOGS"`
	SystemPromptPath string `json:"system_prompt_path" env:"EDUMATE_SYSTEM_PROMPT_PATH"`
}

type ProviderConfig struct {
	Name        string  `json:"name" env:"EDUMATE_PROVIDER"`
	BaseURL     string  `json:"base_url" env:"EDUMATE_BASE_URL"`
	Model       string  `json:"model" env:"EDUMATE_MODEL"`
	APIKey      string  `json:"api_key" env:"EDUMATE_API_KEY"`
	Temperature float32 `json:"temperature" env:"EDUMATE_TEMPERATURE"`
	MaxTokens   int     `json:"max_tokens" env:"EDUMATE_MAX_TOKENS"`
}

type SessionConfig struct {
	CookieName string `json:"cookie_name" env:"EDUMATE_SESSION_COOKIE"`
	// MaxAgeHours bounds the session cookie lifetime.
	MaxAgeHours int `json:"max_age_hours" env:"EDUMATE_SESSION_MAX_AGE_HOURS"`
}

type HistoryConfig struct {
	// Backend is either "memory" or "redis".
	Backend    string `json:"backend" env:"EDUMATE_HISTORY_BACKEND"`
	TTLMinutes int    `json:"ttl_minutes" env:"EDUMATE_HISTORY_TTL_MINUTES"`
}

type RedisConfig struct {
	Host     string `json:"host" env:"EDUMATE_REDIS_HOST"`
	Port     int    `json:"port" env:"EDUMATE_REDIS_PORT"`
	Username string `json:"username" env:"EDUMATE_REDIS_USERNAME"`
	Password string `json:"password" env:"EDUMATE_REDIS_PASSWORD"`
	DB       int    `json:"db" env:"EDUMATE_REDIS_DB"`
}

// providerKeyEnv lists the conventional credential variables per provider,
// consulted when EDUMATE_API_KEY is not set.
var providerKeyEnv = map[string]string{
	"gemini": "GOOGLE_API_KEY",
	"openai": "OPENAI_API_KEY",
	"claude": "ANTHROPIC_API_KEY",
}

// Load reads configuration from the provided path (defaults to config.json),
// applies environment overrides and validates the result. A missing default
// config file is not an error; everything can come from the environment.
func Load(path string) (*Config, error) {
	// Temperature is seeded before decoding because zero is a valid setting.
	cfg := Config{Provider: ProviderConfig{Temperature: defaultTemperature}}
	explicit := path != ""
	if !explicit {
		path = defaultConfigPath
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve config path: %w", err)
	}

	file, err := os.Open(absPath)
	switch {
	case err == nil:
		defer file.Close()
		if err := json.NewDecoder(file).Decode(&cfg); err != nil {
			return nil, fmt.Errorf("decode config: %w", err)
		}
		if cfg.BasicConfig.SystemPromptPath != "" && !filepath.IsAbs(cfg.BasicConfig.SystemPromptPath) {
			cfg.BasicConfig.SystemPromptPath = filepath.Join(filepath.Dir(absPath), cfg.BasicConfig.SystemPromptPath)
		}
	case explicit || !errors.Is(err, os.ErrNotExist):
		return nil, fmt.Errorf("open config %s: %w", absPath, err)
	}

	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.BasicConfig.ServerAddress == "" {
		c.BasicConfig.ServerAddress = ":5000"
	}
	if c.BasicConfig.LogLevel == "" {
		c.BasicConfig.LogLevel = "info"
	}
	c.Provider.Name = strings.ToLower(strings.TrimSpace(c.Provider.Name))
	if c.Provider.Name == "" {
		c.Provider.Name = "gemini"
	}
	if c.Provider.Model == "" && c.Provider.Name == "gemini" {
		c.Provider.Model = "gemini-1.5-pro"
	}
	if c.Provider.MaxTokens == 0 {
		c.Provider.MaxTokens = 250
	}
	if c.Provider.APIKey == "" {
		if name, ok := providerKeyEnv[c.Provider.Name]; ok {
			c.Provider.APIKey = os.Getenv(name)
		}
	}
	if c.Session.CookieName == "" {
		c.Session.CookieName = "edumate_session"
	}
	if c.Session.MaxAgeHours <= 0 {
		c.Session.MaxAgeHours = 31 * 24
	}
	c.History.Backend = strings.ToLower(strings.TrimSpace(c.History.Backend))
	if c.History.Backend == "" {
		c.History.Backend = "memory"
	}
	if c.History.TTLMinutes <= 0 {
		c.History.TTLMinutes = c.Session.MaxAgeHours * 60
	}
}

// Validate reports configuration that would make the service unusable.
func (c *Config) Validate() error {
	if _, ok := providerKeyEnv[c.Provider.Name]; !ok {
		return fmt.Errorf("unsupported provider: %s", c.Provider.Name)
	}
	if c.Provider.Model == "" {
		return fmt.Errorf("model must be configured for provider %s", c.Provider.Name)
	}
	if c.Provider.APIKey == "" {
		return fmt.Errorf("api key for provider %s must be configured", c.Provider.Name)
	}
	switch c.History.Backend {
	case "memory", "redis":
	default:
		return fmt.Errorf("unsupported history backend: %s", c.History.Backend)
	}
	return nil
}
