package common

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Database DatabaseConfig
	LLM      LLMConfig
	Invoice  InvoiceConfig
}

// DatabaseConfig holds storage-related configuration
type DatabaseConfig struct {
	DSN string
}

// LLMConfig holds text-generation backend configuration
type LLMConfig struct {
	Provider      string // "claude", "openai" or "lm_studio"
	ClaudeAPIKey  string
	ClaudeModel   string
	OpenAIAPIKey  string
	OpenAIModel   string
	OpenAIBaseURL string
	LMStudioURL   string
	LMStudioModel string
	Temperature   float32
	MaxTokens     int
	Timeout       time.Duration
}

// InvoiceConfig holds invoice defaults and artifact output paths
type InvoiceConfig struct {
	DefaultCurrency string
	DefaultType     string
	OutputDir       string
}

// LoadConfig loads configuration from the environment. A .env file in the
// working directory is folded in first when present.
func LoadConfig() *Config {
	_ = godotenv.Load()

	return &Config{
		Database: DatabaseConfig{
			DSN: getEnv("DB_URL", "file:data/invoices.db"),
		},
		LLM: LLMConfig{
			Provider:      getEnv("LLM_PROVIDER", "lm_studio"),
			ClaudeAPIKey:  getEnv("CLAUDE_API_KEY", ""),
			ClaudeModel:   getEnv("CLAUDE_MODEL", "claude-3-5-sonnet-20241022"),
			OpenAIAPIKey:  getEnv("OPENAI_API_KEY", ""),
			OpenAIModel:   getEnv("OPENAI_MODEL", "gpt-4o"),
			OpenAIBaseURL: getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
			LMStudioURL:   getEnv("LM_STUDIO_URL", "http://localhost:1234"),
			LMStudioModel: getEnv("LM_STUDIO_MODEL", "local-model"),
			Temperature:   getEnvAsFloat32("LLM_TEMPERATURE", 0.1),
			MaxTokens:     getEnvAsInt("LLM_MAX_TOKENS", 2000),
			Timeout:       getEnvAsDuration("LLM_TIMEOUT", 45*time.Second),
		},
		Invoice: InvoiceConfig{
			DefaultCurrency: getEnv("DEFAULT_CURRENCY", "KRW"),
			DefaultType:     getEnv("DEFAULT_INVOICE_TYPE", "tax"),
			OutputDir:       getEnv("OUTPUT_DIR", "./output"),
		},
	}
}

// Validate checks that the configuration can support the selected backend.
// Credential errors here are fatal; there is no safe default to fall back to.
func (c *Config) Validate() error {
	switch c.LLM.Provider {
	case "claude":
		if c.LLM.ClaudeAPIKey == "" {
			return NewAppError("CONFIG_ERROR", "CLAUDE_API_KEY is required for the claude provider", ErrConfiguration)
		}
	case "openai":
		if c.LLM.OpenAIAPIKey == "" {
			return NewAppError("CONFIG_ERROR", "OPENAI_API_KEY is required for the openai provider", ErrConfiguration)
		}
	case "lm_studio":
		// local server, no credential
	default:
		return NewAppError("CONFIG_ERROR", "unknown LLM provider: "+c.LLM.Provider, ErrConfiguration)
	}
	if c.Database.DSN == "" {
		return NewAppError("CONFIG_ERROR", "DB_URL is required", ErrConfiguration)
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat32(key string, defaultValue float32) float32 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 32); err == nil {
			return float32(floatVal)
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
