package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port         string
	Env          string
	DataDir      string
	DBPath       string
	SyncAPIURL   string
	SyncInterval time.Duration
}

var AppConfig *Config

func Load() {
	_ = godotenv.Load()

	AppConfig = &Config{
		Port:         GetEnv("PORT", "3001"),
		Env:          GetEnv("ENV", "development"),
		DataDir:      GetEnv("DATA_DIR", "./data"),
		DBPath:       GetEnv("DB_PATH", "./data/chikondi-pos.db"),
		SyncAPIURL:   GetEnv("SYNC_API_URL", "http://localhost:3001"),
		SyncInterval: GetDurationEnv("SYNC_INTERVAL", 5*time.Minute),
	}
}

func GetEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func GetDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
