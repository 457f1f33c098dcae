package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port        string
	Environment string
	CORSOrigins string
	// LLM Configuration
	OpenAIAPIKey  string
	OpenAIBaseURL string
	DefaultModel  string
	LLMTimeout    time.Duration
}

func Load() *Config {
	return &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "dev"),
		CORSOrigins: getEnv("CORS_ORIGINS", "*"),
		// LLM Configuration
		OpenAIAPIKey:  getEnv("OPENAI_API_KEY", ""),
		OpenAIBaseURL: getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1/chat/completions"),
		DefaultModel:  getEnv("DEFAULT_MODEL", "gpt-4o-mini"),
		LLMTimeout:    time.Duration(getEnvInt("LLM_TIMEOUT_SECONDS", 60)) * time.Second,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil || n <= 0 {
		return defaultValue
	}
	return n
}
