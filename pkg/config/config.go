package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port     string
	LogLevel string

	DatabaseURL string

	JWTSecret        string
	JWTAccessExpiry  time.Duration
	JWTRefreshExpiry time.Duration
	GoogleClientID   string

	AIProvider    string
	GeminiApiKey  string
	GeminiModel   string
	OllamaBaseURL string
	OllamaModel   string

	FirebaseCredentialsFile string

	PubSubProjectID       string
	PubSubTopic           string
	PubSubCredentialsFile string

	FreeBriefLimit     int
	MeetingListLimit   int
	AnalyticsWorkers   int
	UsageResetInterval time.Duration
}

func Load() *Config {
	// Load .env file if it exists
	_ = godotenv.Load()

	return &Config{
		Port:     getEnv("PORT", "8080"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		DatabaseURL: getEnv("DATABASE_URL", "host=localhost user=postgres password=postgres dbname=meetingprep port=5432 sslmode=disable"),

		JWTSecret:        getEnv("JWT_SECRET", "your-secret-key-change-in-production"),
		JWTAccessExpiry:  getDuration("JWT_ACCESS_EXPIRY", 15*time.Minute),
		JWTRefreshExpiry: getDuration("JWT_REFRESH_EXPIRY", 168*time.Hour), // 7 days
		GoogleClientID:   getEnv("GOOGLE_CLIENT_ID", ""),

		AIProvider:    strings.ToLower(getEnv("AI_PROVIDER", "auto")),
		GeminiApiKey:  getEnv("GEMINI_API_KEY", ""),
		GeminiModel:   getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
		OllamaBaseURL: getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
		OllamaModel:   getEnv("OLLAMA_MODEL", "llama3"),

		FirebaseCredentialsFile: getEnv("FIREBASE_CREDENTIALS_FILE", ""),

		PubSubProjectID:       getEnv("PUBSUB_PROJECT_ID", ""),
		PubSubTopic:           getEnv("PUBSUB_ANALYTICS_TOPIC", "meetingprep-analytics"),
		PubSubCredentialsFile: getEnv("PUBSUB_CREDENTIALS_FILE", ""),

		FreeBriefLimit:     getInt("FREE_BRIEF_LIMIT", 20),
		MeetingListLimit:   getInt("MEETING_LIST_LIMIT", 50),
		AnalyticsWorkers:   getInt("ANALYTICS_WORKERS", 2),
		UsageResetInterval: getDuration("USAGE_RESET_INTERVAL", time.Hour),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			return parsed
		}
	}
	return defaultValue
}
