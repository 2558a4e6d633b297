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
	LineChannelSecret string
	LineChannelToken  string

	// Optional with defaults
	DBPath            string
	HTTPPort          int
	SchedulerInterval time.Duration
	SiteBaseURL       string
	LockerEndpoint    string

	// Cache tier knobs
	CacheL1Capacity int
	CacheL2Capacity int
	CacheL3Capacity int
	CacheL1TTL      time.Duration
	CacheL2TTL      time.Duration
	CacheL3TTL      time.Duration

	// Account linking (travel-site OAuth)
	LinkClientID     string
	LinkClientSecret string
	LinkAuthURL      string
	LinkTokenURL     string
	LinkRedirectURL  string
}

func LoadFromEnv() *Config {
	cfg := &Config{
		// Required
		LineChannelSecret: os.Getenv("LINE_CHANNEL_SECRET"),
		LineChannelToken:  os.Getenv("LINE_CHANNEL_ACCESS_TOKEN"),

		// Optional with defaults
		DBPath:            getEnvOrDefault("TRIPMATE_DB_PATH", "./tripmate.db"),
		HTTPPort:          getEnvAsIntOrDefault("TRIPMATE_HTTP_PORT", 8080),
		SchedulerInterval: getEnvAsDurationOrDefault("TRIPMATE_SCHEDULER_INTERVAL", 60*time.Second),
		SiteBaseURL:       getEnvOrDefault("TRIPMATE_SITE_BASE_URL", "https://tripmate.example.com"),
		LockerEndpoint:    getEnvOrDefault("TRIPMATE_LOCKER_ENDPOINT", ""),

		CacheL1Capacity: getEnvAsIntOrDefault("TRIPMATE_CACHE_L1_CAPACITY", 50),
		CacheL2Capacity: getEnvAsIntOrDefault("TRIPMATE_CACHE_L2_CAPACITY", 200),
		CacheL3Capacity: getEnvAsIntOrDefault("TRIPMATE_CACHE_L3_CAPACITY", 500),
		CacheL1TTL:      getEnvAsDurationOrDefault("TRIPMATE_CACHE_L1_TTL", 30*time.Minute),
		CacheL2TTL:      getEnvAsDurationOrDefault("TRIPMATE_CACHE_L2_TTL", 10*time.Minute),
		CacheL3TTL:      getEnvAsDurationOrDefault("TRIPMATE_CACHE_L3_TTL", 5*time.Minute),

		LinkClientID:     os.Getenv("TRIPMATE_LINK_CLIENT_ID"),
		LinkClientSecret: os.Getenv("TRIPMATE_LINK_CLIENT_SECRET"),
		LinkAuthURL:      getEnvOrDefault("TRIPMATE_LINK_AUTH_URL", "https://tripmate.example.com/oauth/authorize"),
		LinkTokenURL:     getEnvOrDefault("TRIPMATE_LINK_TOKEN_URL", "https://tripmate.example.com/oauth/token"),
		LinkRedirectURL:  getEnvOrDefault("TRIPMATE_LINK_REDIRECT_URL", "https://tripmate.example.com/linking/callback"),
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
		if d, err := time.ParseDuration(value); err == nil && d > 0 {
			return d
		}
	}
	return defaultValue
}
