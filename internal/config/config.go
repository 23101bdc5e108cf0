package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"pharmacy-copilot/internal/core"
	"pharmacy-copilot/internal/llm"
	"pharmacy-copilot/internal/secrets"
)

// Credential names, shared by the environment and the secret store.
const (
	OpenAIKeyName = "OPENAI_API_KEY"
	GoogleKeyName = "GOOGLE_API_KEY"
)

// ServerConfig HTTP server settings.
type ServerConfig struct {
	Port string `yaml:"port"`
}

// LLMConfig model provider settings.
type LLMConfig struct {
	Enabled       bool          `yaml:"enabled"`
	OpenAIModel   string        `yaml:"openai_model"`
	OpenAIBaseURL string        `yaml:"openai_base_url"`
	GeminiModel   string        `yaml:"gemini_model"`
	Timeout       time.Duration `yaml:"timeout"`
}

// SecretsConfig locations of the secondary credential stores.
type SecretsConfig struct {
	File        string `yaml:"file"`
	DatabaseURL string `yaml:"database_url"`
	Table       string `yaml:"table"`
}

// LogConfig logging settings.
type LogConfig struct {
	Level string `yaml:"level"`
}

// Config is the whole process configuration.  Credentials are never read
// from the YAML file.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	LLM     LLMConfig     `yaml:"llm"`
	Secrets SecretsConfig `yaml:"secrets"`
	Log     LogConfig     `yaml:"log"`

	OpenAIKey string `yaml:"-"`
	GoogleKey string `yaml:"-"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Server: ServerConfig{Port: "8080"},
		LLM: LLMConfig{
			Enabled:     true,
			OpenAIModel: llm.DefaultOpenAIModel,
			GeminiModel: llm.DefaultGeminiModel,
			Timeout:     60 * time.Second,
		},
		Secrets: SecretsConfig{File: ".secrets.yaml"},
		Log:     LogConfig{Level: "info"},
	}
}

// Load builds the configuration: .env is loaded into the environment first,
// then the optional YAML file is applied over the defaults, then environment
// variables override both.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := OverrideFromEnv(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// OverrideFromEnv applies environment variables to cfg.
func OverrideFromEnv(cfg *Config) error {
	if v := os.Getenv(OpenAIKeyName); v != "" {
		cfg.OpenAIKey = v
	}
	if v := os.Getenv(GoogleKeyName); v != "" {
		cfg.GoogleKey = v
	}
	if v := os.Getenv("OPENAI_MODEL"); v != "" {
		cfg.LLM.OpenAIModel = v
	}
	if v := os.Getenv("OPENAI_BASE_URL"); v != "" {
		cfg.LLM.OpenAIBaseURL = v
	}
	if v := os.Getenv("GEMINI_MODEL"); v != "" {
		cfg.LLM.GeminiModel = v
	}
	if v := os.Getenv("COPILOT_LLM_ENABLED"); v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("COPILOT_LLM_ENABLED: %w", err)
		}
		cfg.LLM.Enabled = enabled
	}
	if v := os.Getenv("LLM_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("LLM_TIMEOUT: %w", err)
		}
		cfg.LLM.Timeout = d
	}
	if v := os.Getenv("COPILOT_SECRETS_FILE"); v != "" {
		cfg.Secrets.File = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Secrets.DatabaseURL = v
	}
	if v := os.Getenv("SERVER_PORT"); v != "" {
		cfg.Server.Port = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	return nil
}

// ResolveCredentials fills any credential the environment did not provide
// from store.  A credential missing everywhere is left empty.
func (c *Config) ResolveCredentials(ctx context.Context, store secrets.Store) error {
	if store == nil {
		return nil
	}
	for _, item := range []struct {
		name string
		dst  *string
	}{
		{OpenAIKeyName, &c.OpenAIKey},
		{GoogleKeyName, &c.GoogleKey},
	} {
		if *item.dst != "" {
			continue
		}
		v, ok, err := store.Lookup(ctx, item.name)
		if err != nil {
			return fmt.Errorf("resolve %s: %w", item.name, err)
		}
		if ok {
			*item.dst = v
		}
	}
	return nil
}

// LLMOptions returns the provider options derived from c.
func (c *Config) LLMOptions() llm.Options {
	return llm.Options{
		OpenAIKey:     c.OpenAIKey,
		OpenAIModel:   c.LLM.OpenAIModel,
		OpenAIBaseURL: c.LLM.OpenAIBaseURL,
		GoogleKey:     c.GoogleKey,
		GeminiModel:   c.LLM.GeminiModel,
	}
}

// Settings returns the router settings derived from c.
func (c *Config) Settings() core.Settings {
	return core.Settings{Enabled: c.LLM.Enabled, Timeout: c.LLM.Timeout}
}
