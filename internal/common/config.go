package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Config is constructed once at startup and passed by pointer to every service.
type Config struct {
	Environment string        `toml:"environment"` // "development" or "production"
	Server      ServerConfig  `toml:"server"`
	Storage     StorageConfig `toml:"storage"`
	Logging     LoggingConfig `toml:"logging"`
	Data        DataConfig    `toml:"data"`
	Quote       QuoteConfig   `toml:"quote"`
	LLM         LLMConfig     `toml:"llm"`
	Auth        AuthConfig    `toml:"auth"`
}

type ServerConfig struct {
	Port           int      `toml:"port"`
	Host           string   `toml:"host"`
	AllowedOrigins []string `toml:"allowed_origins"` // CORS origins, "*" allows any
}

type StorageConfig struct {
	Badger BadgerConfig `toml:"badger"`
}

type BadgerConfig struct {
	Path           string `toml:"path"`             // Database directory path
	ResetOnStartup bool   `toml:"reset_on_startup"` // Delete database on startup for clean test runs
}

type LoggingConfig struct {
	Level      string   `toml:"level"`       // "debug", "info", "warn", "error"
	Output     []string `toml:"output"`      // "stdout", "console", "file"
	TimeFormat string   `toml:"time_format"` // Time format for log lines (default: "15:04:05")
}

// DataConfig locates the static fundamentals dataset.
type DataConfig struct {
	Dir            string `toml:"dir"`
	MetadataFile   string `toml:"metadata_file"`
	FinancialsFile string `toml:"financials_file"`
}

// QuoteConfig configures the live quote service client.
type QuoteConfig struct {
	BaseURL    string `toml:"base_url"`
	SessionURL string `toml:"session_url"` // Issues the session cookie the crumb is bound to
	UserAgent  string `toml:"user_agent"`
	Timeout    string `toml:"timeout"`    // Per-request timeout (default: "10s")
	RateLimit  string `toml:"rate_limit"` // Minimum interval between outbound calls (default: "250ms")
}

type LLMProvider string

const (
	LLMProviderClaude LLMProvider = "claude"
	LLMProviderGemini LLMProvider = "gemini"
)

type LLMConfig struct {
	Provider  LLMProvider     `toml:"provider"`   // "claude" (default) or "gemini"
	MaxTokens int             `toml:"max_tokens"` // Bounded output length (default: 1000)
	Timeout   string          `toml:"timeout"`    // Generation call timeout (default: "2m")
	Anthropic AnthropicConfig `toml:"anthropic"`
	Gemini    GeminiConfig    `toml:"gemini"`
}

type AnthropicConfig struct {
	APIKey  string `toml:"api_key"`  // Prefer ANTHROPIC_API_KEY
	Model   string `toml:"model"`    // default: "claude-3-5-haiku-20241022"
	BaseURL string `toml:"base_url"` // Optional override, empty uses the SDK default
}

type GeminiConfig struct {
	APIKey  string `toml:"api_key"`  // Prefer GEMINI_API_KEY
	Model   string `toml:"model"`    // default: "gemini-2.5-flash"
	BaseURL string `toml:"base_url"` // Optional override, empty uses the SDK default
}

type AuthConfig struct {
	JWTSecret     string `toml:"jwt_secret"`
	TokenExpiry   string `toml:"token_expiry"` // default: "24h"
	AdminUsername string `toml:"admin_username"`
	AdminPassword string `toml:"admin_password"`
}

// NewDefaultConfig returns the built-in defaults that config files and the environment override.
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Port:           8085,
			Host:           "localhost",
			AllowedOrigins: []string{"*"},
		},
		Storage: StorageConfig{
			Badger: BadgerConfig{
				Path: "./db",
			},
		},
		Logging: LoggingConfig{
			Level:      "info",
			Output:     []string{"stdout", "file"},
			TimeFormat: "15:04:05",
		},
		Data: DataConfig{
			Dir:            "./data",
			MetadataFile:   "company_metadata.json",
			FinancialsFile: "company_financial_ratios.json",
		},
		Quote: QuoteConfig{
			BaseURL:    "https://query1.finance.yahoo.com",
			SessionURL: "https://fc.yahoo.com",
			UserAgent:  "Mozilla/5.0 (compatible; equitas/1.0)",
			Timeout:    "10s",
			RateLimit:  "250ms",
		},
		LLM: LLMConfig{
			Provider:  LLMProviderClaude,
			MaxTokens: 1000,
			Timeout:   "2m",
			Anthropic: AnthropicConfig{
				Model: "claude-3-5-haiku-20241022",
			},
			Gemini: GeminiConfig{
				Model: "gemini-2.5-flash",
			},
		},
		Auth: AuthConfig{
			JWTSecret:   "change-me-in-production",
			TokenExpiry: "24h",
		},
	}
}

// LoadFromFiles loads configuration with priority: defaults -> file1 -> file2 -> ... -> env.
// Later files override earlier files. CLI flags are applied afterwards via ApplyFlagOverrides.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for i, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	applyEnvOverrides(config)

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("EQUITAS_ENV"); env != "" {
		config.Environment = env
	}

	// Server
	if port := os.Getenv("EQUITAS_SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if host := os.Getenv("EQUITAS_SERVER_HOST"); host != "" {
		config.Server.Host = host
	}

	// Storage
	if badgerPath := os.Getenv("EQUITAS_BADGER_PATH"); badgerPath != "" {
		config.Storage.Badger.Path = badgerPath
	}

	// Logging
	if level := os.Getenv("EQUITAS_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	if output := os.Getenv("EQUITAS_LOG_OUTPUT"); output != "" {
		outputs := []string{}
		for _, o := range strings.Split(output, ",") {
			if trimmed := strings.TrimSpace(o); trimmed != "" {
				outputs = append(outputs, trimmed)
			}
		}
		if len(outputs) > 0 {
			config.Logging.Output = outputs
		}
	}

	// Data
	if dir := os.Getenv("EQUITAS_DATA_DIR"); dir != "" {
		config.Data.Dir = dir
	}

	// Quote
	if baseURL := os.Getenv("EQUITAS_QUOTE_BASE_URL"); baseURL != "" {
		config.Quote.BaseURL = baseURL
	}
	if sessionURL := os.Getenv("EQUITAS_QUOTE_SESSION_URL"); sessionURL != "" {
		config.Quote.SessionURL = sessionURL
	}
	if timeout := os.Getenv("EQUITAS_QUOTE_TIMEOUT"); timeout != "" {
		config.Quote.Timeout = timeout
	}

	// LLM
	if provider := os.Getenv("EQUITAS_LLM_PROVIDER"); provider != "" {
		config.LLM.Provider = LLMProvider(strings.ToLower(provider))
	}
	if maxTokens := os.Getenv("EQUITAS_LLM_MAX_TOKENS"); maxTokens != "" {
		if mt, err := strconv.Atoi(maxTokens); err == nil {
			config.LLM.MaxTokens = mt
		}
	}
	if timeout := os.Getenv("EQUITAS_LLM_TIMEOUT"); timeout != "" {
		config.LLM.Timeout = timeout
	}
	if apiKey := os.Getenv("ANTHROPIC_API_KEY"); apiKey != "" {
		config.LLM.Anthropic.APIKey = apiKey
	}
	if apiKey := os.Getenv("EQUITAS_ANTHROPIC_API_KEY"); apiKey != "" {
		config.LLM.Anthropic.APIKey = apiKey
	}
	if model := os.Getenv("EQUITAS_ANTHROPIC_MODEL"); model != "" {
		config.LLM.Anthropic.Model = model
	}
	if apiKey := os.Getenv("GEMINI_API_KEY"); apiKey != "" {
		config.LLM.Gemini.APIKey = apiKey
	}
	if model := os.Getenv("EQUITAS_GEMINI_MODEL"); model != "" {
		config.LLM.Gemini.Model = model
	}

	// Auth
	if secret := os.Getenv("EQUITAS_JWT_SECRET"); secret != "" {
		config.Auth.JWTSecret = secret
	}
	if expiry := os.Getenv("EQUITAS_TOKEN_EXPIRY"); expiry != "" {
		config.Auth.TokenExpiry = expiry
	}
	if user := os.Getenv("EQUITAS_ADMIN_USERNAME"); user != "" {
		config.Auth.AdminUsername = user
	}
	if pass := os.Getenv("EQUITAS_ADMIN_PASSWORD"); pass != "" {
		config.Auth.AdminPassword = pass
	}
}

// ApplyFlagOverrides applies command-line flag overrides to config
func ApplyFlagOverrides(config *Config, port int, host string) {
	if port > 0 {
		config.Server.Port = port
	}
	if host != "" {
		config.Server.Host = host
	}
}

// parseDurationOr parses s, falling back to def when s is empty or invalid.
func parseDurationOr(s string, def time.Duration) time.Duration {
	if s == "" {
		return def
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return def
	}
	return d
}

// GetTimeout returns the quote request timeout.
func (c QuoteConfig) GetTimeout() time.Duration {
	return parseDurationOr(c.Timeout, 10*time.Second)
}

// GetRateLimit returns the minimum spacing between outbound quote requests.
func (c QuoteConfig) GetRateLimit() time.Duration {
	return parseDurationOr(c.RateLimit, 250*time.Millisecond)
}

// GetTimeout returns the generation call timeout.
func (c LLMConfig) GetTimeout() time.Duration {
	return parseDurationOr(c.Timeout, 2*time.Minute)
}

// GetTokenExpiry returns the lifetime of issued JWTs.
func (c AuthConfig) GetTokenExpiry() time.Duration {
	return parseDurationOr(c.TokenExpiry, 24*time.Hour)
}

// IsProduction returns true if the environment is set to production
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	return env == "production" || env == "prod"
}
