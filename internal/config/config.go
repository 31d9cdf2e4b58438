package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

func init() {
	// Load .env file if it exists (silently ignore if not found)
	_ = godotenv.Load()
}

type Config struct {
	// Required
	OpenRouterAPIKey string
	TelegramBotToken string
	TelegramAPIID    int
	TelegramAPIHash  string

	// Optional with defaults
	OpenRouterBaseURL     string
	Model                 string
	DBPath                string
	GoogleCredentialsFile string
	GoogleTokensDir       string
	TelegramSessionPath   string
	HistorySize           int
	MessageTimeout        time.Duration
}

func LoadFromEnv() *Config {
	cfg := &Config{
		// Required
		OpenRouterAPIKey: os.Getenv("OPENROUTER_API_KEY"),
		TelegramBotToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
		TelegramAPIID:    getEnvAsIntOrDefault("TELEGRAM_API_ID", 0),
		TelegramAPIHash:  os.Getenv("TELEGRAM_API_HASH"),

		// Optional with defaults
		OpenRouterBaseURL:     getEnvOrDefault("CALBOT_OPENROUTER_BASE_URL", "https://openrouter.ai/api/v1"),
		Model:                 getEnvOrDefault("CALBOT_MODEL", "meta-llama/llama-3-8b-instruct"),
		DBPath:                getEnvOrDefault("CALBOT_DB_PATH", "./calbot.db"),
		GoogleCredentialsFile: getEnvOrDefault("GOOGLE_CREDENTIALS_FILE", "./credentials.json"),
		GoogleTokensDir:       getEnvOrDefault("CALBOT_TOKENS_DIR", "./tokens"),
		TelegramSessionPath:   getEnvOrDefault("CALBOT_TELEGRAM_SESSION", "./telegram.session"),
		HistorySize:           getEnvAsIntOrDefault("CALBOT_HISTORY_SIZE", 25),
		MessageTimeout:        getEnvAsDurationOrDefault("CALBOT_MESSAGE_TIMEOUT", 60*time.Second),
	}

	return cfg
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
