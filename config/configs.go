package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	PostgresDSN string
	ServerPort  string

	// Velo market-data API settings.
	VeloBaseURL string
	VeloAPIKey  string

	// Coins holds the coin symbols every snapshot covers.
	Coins []string

	// Exchanges passed through to the vendor rows query.
	Exchanges []string

	// SnapshotWindow is how far back from "now" the read path fetches.
	SnapshotWindow time.Duration

	// SnapshotResolution is the vendor resolution parameter, in minutes.
	SnapshotResolution int
}

func Load() *Config {
	err := godotenv.Load()
	if err != nil {
		log.Println("No .env file found, using environment variables")
	}

	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		getEnv("POSTGRES_HOST", "localhost"),
		getEnv("POSTGRES_PORT", "5432"),
		getEnv("POSTGRES_USER", "postgres"),
		getEnv("POSTGRES_PASSWORD", "postgres"),
		getEnv("POSTGRES_DB", "crypto"),
		getEnv("POSTGRES_SSLMODE", "disable"),
	)

	return &Config{
		PostgresDSN:        dsn,
		ServerPort:         getEnv("SERVER_PORT", "3080"),
		VeloBaseURL:        getEnv("VELO_BASE_URL", "https://api.velo.xyz/api/v1"),
		VeloAPIKey:         getEnv("VELO_API_KEY", ""),
		Coins:              getEnvList("COINS", []string{"BTC", "ETH"}),
		Exchanges:          getEnvList("VENDOR_EXCHANGES", []string{"binance-futures", "bybit"}),
		SnapshotWindow:     time.Duration(getEnvInt("SNAPSHOT_WINDOW_MINUTES", 2)) * time.Minute,
		SnapshotResolution: getEnvInt("SNAPSHOT_RESOLUTION", 1),
	}
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvList(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	parts := strings.Split(valueStr, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	if len(result) == 0 {
		return defaultValue
	}
	return result
}
