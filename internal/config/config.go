package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all runtime settings, read from the environment with defaults
type Config struct {
	Port     string
	MongoURI string
	MongoDB  string
	RedisURI string
	LogLevel string

	TurnSeconds   int           // active turn countdown
	NoticeSeconds int           // pre-turn notification countdown
	TickInterval  time.Duration // one countdown tick; tests shrink this

	BotRetryMax   int
	BotRetryDelay time.Duration
}

// Load reads the configuration. A .env file is applied when present.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Port:     getEnv("PORT", "8080"),
		MongoURI: getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:  getEnv("MONGO_DB", "gridclash"),
		RedisURI: getEnv("REDIS_URI", "localhost:6379"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		TurnSeconds:   getEnvInt("TURN_SECONDS", 30),
		NoticeSeconds: getEnvInt("NOTICE_SECONDS", 3),
		TickInterval:  getEnvDuration("TICK_INTERVAL", time.Second),

		BotRetryMax:   getEnvInt("BOT_RETRY_MAX", 3),
		BotRetryDelay: getEnvDuration("BOT_RETRY_DELAY", time.Second),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
