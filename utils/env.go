package utils

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

const (
	EnvNumRows            = "PYQUET_NUM_ROWS"
	EnvDestinationDir     = "PYQUET_DESTINATION_DIR"
	EnvCatalogDatabaseURL = "CATALOG_DATABASE_URL"
)

func LoadEnv() {
	err := godotenv.Load()
	if err != nil {
		log.Println("ℹ️  No .env file found, continuing...")
	}
}

// GetEnv returns the value of key, or fallback when it is unset or empty
func GetEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// GetEnvInt is GetEnv for integers. Values that do not parse fall back too
func GetEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("⚠️  %s=%q is not an integer, using %d", key, v, fallback)
		return fallback
	}
	return n
}
