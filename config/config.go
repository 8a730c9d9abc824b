package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DefaultRegistryBaseURL = "https://laws.e-gov.go.jp/api/1"
	DefaultViewerURL       = "https://elaws.e-gov.go.jp/document"
	DefaultGeminiModel     = "gemini-1.5-flash"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Registry RegistryConfig `yaml:"registry"`
	Gemini   GeminiConfig   `yaml:"gemini"`
	Cache    CacheConfig    `yaml:"cache"`
	Log      LogConfig      `yaml:"log"`
}

type ServerConfig struct {
	Port           int           `yaml:"port"`
	SessionIdleTTL time.Duration `yaml:"session_idle_ttl"`
}

type RegistryConfig struct {
	BaseURL     string        `yaml:"base_url"`
	ViewerURL   string        `yaml:"viewer_url"`
	ListTimeout time.Duration `yaml:"list_timeout"`
	DataTimeout time.Duration `yaml:"data_timeout"`
}

type GeminiConfig struct {
	APIKey         string        `yaml:"api_key"`
	Model          string        `yaml:"model"`
	MaxRetries     int           `yaml:"max_retries"`
	InitialBackoff time.Duration `yaml:"initial_backoff"`
}

// Enabled reports whether AI features can be offered
func (g GeminiConfig) Enabled() bool {
	return g.APIKey != ""
}

type CacheConfig struct {
	Type string        `yaml:"type"`
	TTL  time.Duration `yaml:"ttl"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load reads .env, the optional YAML file at path, applies defaults and then
// environment overrides. An empty path or a missing file is not an error.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	var cfg Config
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("failed to read config file: %w", err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
		}
	}

	cfg.setDefaults()
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) setDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.SessionIdleTTL == 0 {
		c.Server.SessionIdleTTL = 2 * time.Hour
	}
	if c.Registry.BaseURL == "" {
		c.Registry.BaseURL = DefaultRegistryBaseURL
	}
	if c.Registry.ViewerURL == "" {
		c.Registry.ViewerURL = DefaultViewerURL
	}
	if c.Registry.ListTimeout == 0 {
		c.Registry.ListTimeout = 30 * time.Second
	}
	if c.Registry.DataTimeout == 0 {
		c.Registry.DataTimeout = 60 * time.Second
	}
	if c.Gemini.Model == "" {
		c.Gemini.Model = DefaultGeminiModel
	}
	if c.Gemini.MaxRetries == 0 {
		c.Gemini.MaxRetries = 3
	}
	if c.Gemini.InitialBackoff == 0 {
		c.Gemini.InitialBackoff = time.Second
	}
	if c.Cache.Type == "" {
		c.Cache.Type = "memory"
	}
	if c.Cache.TTL == 0 {
		c.Cache.TTL = time.Hour
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "json"
	}
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid PORT %q: %w", v, err)
		}
		c.Server.Port = port
	}
	if v := os.Getenv("EGOV_API_BASE_URL"); v != "" {
		c.Registry.BaseURL = v
	}
	if v := os.Getenv("EGOV_VIEWER_URL"); v != "" {
		c.Registry.ViewerURL = v
	}
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		c.Gemini.APIKey = v
	}
	if v := os.Getenv("GEMINI_MODEL"); v != "" {
		c.Gemini.Model = v
	}
	if v := os.Getenv("GEMINI_MAX_RETRIES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid GEMINI_MAX_RETRIES %q: %w", v, err)
		}
		c.Gemini.MaxRetries = n
	}
	if v := os.Getenv("TEXT_CACHE_TTL"); v != "" {
		ttl, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid TEXT_CACHE_TTL %q: %w", v, err)
		}
		c.Cache.TTL = ttl
	}
	if v := os.Getenv("SESSION_IDLE_TTL"); v != "" {
		ttl, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid SESSION_IDLE_TTL %q: %w", v, err)
		}
		c.Server.SessionIdleTTL = ttl
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		c.Log.Format = v
	}
	return nil
}
