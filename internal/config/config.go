package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	DatabaseURL     string
	FinAPIURL       string
	ListenAddr      string
	DataDir         string
	ShutdownTimeout int // seconds
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if exists (ignore error in production)
	_ = godotenv.Load()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	apiURL := os.Getenv("FINAPI_URL")
	if apiURL == "" {
		apiURL = "https://api.fintrack.example.com"
	}

	listenAddr := os.Getenv("LISTEN_ADDR")
	if listenAddr == "" {
		listenAddr = ":5050"
	}

	dataDir := os.Getenv("FINTRACK_DATA_DIR")
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("cannot resolve home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".fintrack-sync")
	}

	shutdownTimeout := 30
	if v := os.Getenv("SHUTDOWN_TIMEOUT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("invalid SHUTDOWN_TIMEOUT: %q", v)
		}
		shutdownTimeout = n
	}

	return &Config{
		DatabaseURL:     dbURL,
		FinAPIURL:       apiURL,
		ListenAddr:      listenAddr,
		DataDir:         dataDir,
		ShutdownTimeout: shutdownTimeout,
	}, nil
}

// TokenPath returns the path of the fallback token file inside the data dir.
func (c *Config) TokenPath() string {
	return filepath.Join(c.DataDir, ".token")
}
