package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"bidmarket-client/utils"
)

// Config holds the client runtime settings.
type Config struct {
	BaseURL         string
	RequestTimeout  time.Duration
	CredentialsPath string
}

// Load reads configuration from a .env file when present, falling back to
// process environment variables and built-in defaults.
func Load() Config {
	if err := godotenv.Load(); err != nil {
		utils.Debug("no .env file found, relying on environment variables", nil)
	}

	return Config{
		BaseURL:         getEnv("API_BASE_URL", "http://localhost:8080"),
		RequestTimeout:  time.Duration(getEnvAsInt("REQUEST_TIMEOUT_SECONDS", 10)) * time.Second,
		CredentialsPath: getEnv("CREDENTIALS_PATH", defaultCredentialsPath()),
	}
}

func defaultCredentialsPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "credentials.json"
	}
	return filepath.Join(home, ".bidmarket", "credentials.json")
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	if value, err := strconv.Atoi(getEnv(key, "")); err == nil {
		return value
	}
	return fallback
}
