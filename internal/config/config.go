package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	CORS      CORSConfig
	Log       LogConfig
	Feed      FeedConfig
	Scheduler SchedulerConfig
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port string
	Host string
	Addr string // Combined host:port for convenience
}

// DatabaseConfig holds database-specific configuration
type DatabaseConfig struct {
	Path string
}

// CORSConfig holds CORS-specific configuration
type CORSConfig struct {
	AllowedOrigins []string
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string
	Pretty bool
}

// FeedConfig holds market data feed configuration.
// Every external call is bounded by Timeout; cached entries expire after their TTL.
type FeedConfig struct {
	Timeout           time.Duration
	PriceCacheTTL     time.Duration
	DividendCacheTTL  time.Duration
	BenchmarkCacheTTL time.Duration
	Concurrency       int
}

// SchedulerConfig holds background job configuration
type SchedulerConfig struct {
	AlertSchedule string // cron spec, e.g. "@every 15m"
	PurgeSchedule string
}

// Load reads configuration from environment variables and .env file
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	var err error
	config := &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "5001"),
			Host: getEnv("SERVER_HOST", "localhost"),
		},
		Database: DatabaseConfig{
			Path: getEnv("DB_PATH", "./data/carteira.db"),
		},
		CORS: CORSConfig{
			AllowedOrigins: getList("CORS_ALLOWED_ORIGINS", []string{
				"http://localhost:3000",
				"http://localhost",
			}),
		},
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Scheduler: SchedulerConfig{
			AlertSchedule: getEnv("ALERT_SCHEDULE", "@every 15m"),
			PurgeSchedule: getEnv("CACHE_PURGE_SCHEDULE", "@every 1h"),
		},
	}

	if config.Log.Pretty, err = getBool("LOG_PRETTY", false); err != nil {
		return nil, err
	}
	if config.Feed.Timeout, err = getDuration("FEED_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}
	if config.Feed.PriceCacheTTL, err = getDuration("PRICE_CACHE_TTL", 15*time.Minute); err != nil {
		return nil, err
	}
	if config.Feed.DividendCacheTTL, err = getDuration("DIVIDEND_CACHE_TTL", 24*time.Hour); err != nil {
		return nil, err
	}
	if config.Feed.BenchmarkCacheTTL, err = getDuration("BENCHMARK_CACHE_TTL", 24*time.Hour); err != nil {
		return nil, err
	}
	if config.Feed.Concurrency, err = getInt("FEED_CONCURRENCY", 4); err != nil {
		return nil, err
	}
	if config.Feed.Concurrency < 1 {
		return nil, fmt.Errorf("FEED_CONCURRENCY must be at least 1, got %d", config.Feed.Concurrency)
	}

	// Combine host and port
	config.Server.Addr = fmt.Sprintf("%s:%s", config.Server.Host, config.Server.Port)

	return config, nil
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getList splits a comma-separated variable, dropping empty items.
func getList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}

func getBool(key string, defaultValue bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return b, nil
}

func getInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return n, nil
}

func getDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("invalid %s %q: must be positive", key, value)
	}
	return d, nil
}
