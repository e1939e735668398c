package config

import (
	"encoding/json"
	"log"
	"os"
	"strings"
)

const (
	// DefaultModel is used when neither config.json nor the environment
	// names a model and the request carries no override
	DefaultModel = "gpt-5-mini"

	configFileName = "config.json"
)

// Config holds everything the service reads at startup. The service keeps
// no database and no session state, so this is all of it.
type Config struct {
	Environment string
	Port        string

	// Provider credentials
	OpenAIAPIKey string
	GeminiAPIKey string // for gemini-* models

	// Model is the default generation model; requests may override it
	Model string

	// Observability
	SentryDSN         string
	LangfusePublicKey string
	LangfuseSecretKey string
	LangfuseHost      string // cloud or self-hosted
	LangfuseEnabled   bool

	// Document sharing via SES
	AWSRegion string
	EmailFrom string // e.g., "PRD Generator <noreply@example.com>"
}

// fileConfig is the shape of the optional config.json dropped next to the
// binary. Values found there win over environment variables.
type fileConfig struct {
	OpenAIAPIKey string `json:"openai_api_key"`
	GeminiAPIKey string `json:"gemini_api_key"`
	Model        string `json:"model"`
}

func Load() *Config {
	cfg := &Config{
		Environment:       getEnv("ENVIRONMENT", "development"),
		Port:              getEnv("PORT", "8080"),
		OpenAIAPIKey:      getEnv("OPENAI_API_KEY", ""),
		GeminiAPIKey:      getEnv("GEMINI_API_KEY", ""),
		Model:             getEnv("PRDGEN_MODEL", DefaultModel),
		SentryDSN:         getEnv("SENTRY_DSN", ""),
		LangfusePublicKey: getEnv("LANGFUSE_PUBLIC_KEY", ""),
		LangfuseSecretKey: getEnv("LANGFUSE_SECRET_KEY", ""),
		LangfuseHost:      getEnv("LANGFUSE_HOST", "https://cloud.langfuse.com"),
		LangfuseEnabled:   getEnv("LANGFUSE_ENABLED", "false") == "true",
		AWSRegion:         getEnv("AWS_REGION", "us-east-1"),
		EmailFrom:         getEnv("EMAIL_FROM", ""),
	}

	cfg.applyFile(configFileName)
	return cfg
}

// applyFile overlays non-empty values from a config.json file. A missing
// file is normal; a malformed one is logged and ignored.
func (c *Config) applyFile(path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		return
	}

	var fc fileConfig
	if err := json.Unmarshal(data, &fc); err != nil {
		log.Printf("⚠️  Ignoring malformed %s: %v", path, err)
		return
	}

	if v := strings.TrimSpace(fc.OpenAIAPIKey); v != "" {
		c.OpenAIAPIKey = v
	}
	if v := strings.TrimSpace(fc.GeminiAPIKey); v != "" {
		c.GeminiAPIKey = v
	}
	if v := strings.TrimSpace(fc.Model); v != "" {
		c.Model = v
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
