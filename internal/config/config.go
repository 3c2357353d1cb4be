package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the application configuration.
type Config struct {
	DatabasePath       string
	LogPath            string
	FrontendLogPath    string
	CurlPath           string
	ServerAddr         string
	PoeEndpoint        string
	DefaultGranularity string
	LogLevel           slog.Level
	RequestTimeout     time.Duration
	PageInterval       time.Duration
	AutoFetchMaxPages  int
}

// Default values
const (
	defaultServerAddr        = ":58232"
	defaultRequestTimeout    = 30 * time.Second
	defaultPageInterval      = time.Second
	defaultAutoFetchMaxPages = 10
	defaultGranularity       = "hour"
	defaultConfigDirName     = "points-dashboard"
	defaultDatabaseFileName  = "points.db"
	defaultLogFileName       = "pdt.log"
	defaultFrontendLogName   = "frontend.log"
	defaultCurlFileName      = "curl.txt"
	defaultLogLevelName      = "info"
)

// Load reads configuration from .env files and environment variables.
func Load() (*Config, error) {
	// Try loading .env from multiple locations
	for _, path := range getEnvPaths() {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			break
		}
	}

	dir := getDefaultConfigDir()
	cfg := &Config{
		DatabasePath:       getEnvString("DATABASE_PATH", filepath.Join(dir, defaultDatabaseFileName)),
		LogPath:            getEnvString("LOG_PATH", filepath.Join(dir, "logs", defaultLogFileName)),
		FrontendLogPath:    getEnvString("FRONTEND_LOG_PATH", filepath.Join(dir, "logs", defaultFrontendLogName)),
		CurlPath:           getEnvString("CURL_PATH", filepath.Join(dir, defaultCurlFileName)),
		ServerAddr:         getEnvString("SERVER_ADDR", defaultServerAddr),
		PoeEndpoint:        getEnvString("POE_ENDPOINT", DefaultPoeEndpoint),
		DefaultGranularity: getEnvString("DEFAULT_GRANULARITY", defaultGranularity),
		LogLevel:           parseLogLevel(getEnvString("LOG_LEVEL", defaultLogLevelName)),
		RequestTimeout:     getEnvDuration("REQUEST_TIMEOUT", defaultRequestTimeout),
		PageInterval:       getEnvDuration("PAGE_INTERVAL", defaultPageInterval),
		AutoFetchMaxPages:  getEnvInt("AUTO_FETCH_MAX_PAGES", defaultAutoFetchMaxPages),
	}

	for _, p := range []string{cfg.DatabasePath, cfg.LogPath, cfg.FrontendLogPath, cfg.CurlPath} {
		if err := ensureDir(filepath.Dir(p)); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// getEnvPaths returns a list of paths to check for .env files.
func getEnvPaths() []string {
	var paths []string

	// Current directory
	if cwd, err := os.Getwd(); err == nil {
		paths = append(paths, filepath.Join(cwd, ".env"))
	}

	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", defaultConfigDirName, ".env"))
	}

	// Parent directories (useful for development)
	if cwd, err := os.Getwd(); err == nil {
		parent := filepath.Dir(cwd)
		paths = append(paths, filepath.Join(parent, ".env"))
		grandparent := filepath.Dir(parent)
		paths = append(paths, filepath.Join(grandparent, ".env"))
	}

	return paths
}

// getDefaultConfigDir returns the directory holding the database, logs and curl file.
func getDefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", defaultConfigDirName)
}

// getEnvString retrieves a string environment variable or returns the default.
func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt retrieves an integer environment variable or returns the default.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

// getEnvDuration retrieves a duration environment variable or returns the default.
// Accepts values like "30s", "1m", "500ms".
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
		// Try parsing as seconds if no unit specified
		if secs, err := strconv.Atoi(value); err == nil {
			return time.Duration(secs) * time.Second
		}
	}
	return defaultValue
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// ensureDir creates a directory and all parent directories if they don't exist.
func ensureDir(path string) error {
	if path == "" || path == "." {
		return nil
	}
	return os.MkdirAll(path, 0o750)
}
