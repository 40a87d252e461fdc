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
	// Common
	Environment string
	LogLevel    string

	MarketData MarketDataConfig
	Scan       ScanConfig
	Watchlist  WatchlistConfig
	Notify     NotifyConfig
	Redis      RedisConfig
	API        APIConfig
	Scheduler  SchedulerConfig
}

// MarketDataConfig holds market data provider configuration
type MarketDataConfig struct {
	Provider      string // "yahoo" or "mock"
	BaseURL       string
	ProxyURL      string
	Timeout       time.Duration
	RetryAttempts int
	RetryDelay    time.Duration
	IndexSymbol   string
}

// ScanConfig holds scan orchestrator configuration
type ScanConfig struct {
	Workers        int
	LookbackDays   int
	MinRetainScore int
	TopTierScore   int
	Universe       []string
	UniverseFile   string
	OutputDir      string
	ProgressEvery  int
}

// WatchlistConfig holds watchlist store configuration
type WatchlistConfig struct {
	FilePath   string
	RetainDays int
}

// NotifyConfig holds notification sink configuration
type NotifyConfig struct {
	Sink       string // "log" or "redis"
	StreamName string
	TopN       int
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host         string
	Port         int
	Password     string
	DB           int
	PoolSize     int
	MinIdleConns int
}

// APIConfig holds the read-only HTTP API configuration
type APIConfig struct {
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// SchedulerConfig holds the daily scan scheduler configuration
type SchedulerConfig struct {
	CronSpec   string
	RunOnStart bool
}

// Load loads configuration from environment variables
// It automatically loads .env file if it exists in the current directory or parent directories
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	cfg := &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		MarketData: MarketDataConfig{
			Provider:      getEnv("MARKET_DATA_PROVIDER", "yahoo"),
			BaseURL:       getEnv("MARKET_DATA_BASE_URL", "https://query1.finance.yahoo.com"),
			ProxyURL:      getEnv("MARKET_DATA_PROXY_URL", ""),
			Timeout:       getEnvAsDuration("MARKET_DATA_TIMEOUT", 30*time.Second),
			RetryAttempts: getEnvAsInt("MARKET_DATA_RETRY_ATTEMPTS", 3),
			RetryDelay:    getEnvAsDuration("MARKET_DATA_RETRY_DELAY", 2*time.Second),
			IndexSymbol:   getEnv("MARKET_DATA_INDEX_SYMBOL", "000001.SS"),
		},
		Scan: ScanConfig{
			Workers:        getEnvAsInt("SCAN_WORKERS", 20),
			LookbackDays:   getEnvAsInt("SCAN_LOOKBACK_DAYS", 60),
			MinRetainScore: getEnvAsInt("SCAN_MIN_RETAIN_SCORE", 6),
			TopTierScore:   getEnvAsInt("SCAN_TOP_TIER_SCORE", 8),
			Universe:       getEnvAsStringSlice("SCAN_UNIVERSE", []string{}),
			UniverseFile:   getEnv("SCAN_UNIVERSE_FILE", ""),
			OutputDir:      getEnv("SCAN_OUTPUT_DIR", "data"),
			ProgressEvery:  getEnvAsInt("SCAN_PROGRESS_EVERY", 200),
		},
		Watchlist: WatchlistConfig{
			FilePath:   getEnv("WATCHLIST_FILE", "data/watchlist.json"),
			RetainDays: getEnvAsInt("WATCHLIST_RETAIN_DAYS", 30),
		},
		Notify: NotifyConfig{
			Sink:       getEnv("NOTIFY_SINK", "log"),
			StreamName: getEnv("NOTIFY_STREAM_NAME", "scan.reports"),
			TopN:       getEnvAsInt("NOTIFY_TOP_N", 10),
		},
		Redis: RedisConfig{
			Host:         getEnv("REDIS_HOST", "localhost"),
			Port:         getEnvAsInt("REDIS_PORT", 6379),
			Password:     getEnv("REDIS_PASSWORD", ""),
			DB:           getEnvAsInt("REDIS_DB", 0),
			PoolSize:     getEnvAsInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: getEnvAsInt("REDIS_MIN_IDLE_CONNS", 5),
		},
		API: APIConfig{
			Port:         getEnvAsInt("API_PORT", 8090),
			ReadTimeout:  getEnvAsDuration("API_READ_TIMEOUT", 10*time.Second),
			WriteTimeout: getEnvAsDuration("API_WRITE_TIMEOUT", 10*time.Second),
		},
		Scheduler: SchedulerConfig{
			CronSpec:   getEnv("SCHEDULER_CRON", "0 0 16 * * 1-5"),
			RunOnStart: getEnvAsBool("SCHEDULER_RUN_ON_START", false),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Scan.Workers < 1 {
		return fmt.Errorf("SCAN_WORKERS must be at least 1")
	}
	if c.Scan.LookbackDays < 20 {
		return fmt.Errorf("SCAN_LOOKBACK_DAYS must be at least 20")
	}
	if c.Scan.MinRetainScore < 0 || c.Scan.MinRetainScore > 10 {
		return fmt.Errorf("SCAN_MIN_RETAIN_SCORE must be in [0,10]")
	}
	if c.Watchlist.FilePath == "" {
		return fmt.Errorf("WATCHLIST_FILE is required")
	}
	if c.Notify.Sink == "redis" && c.Redis.Host == "" {
		return fmt.Errorf("REDIS_HOST is required when NOTIFY_SINK=redis")
	}
	return nil
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return intValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	boolValue, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return boolValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	duration, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return duration
}

func getEnvAsStringSlice(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	if len(result) == 0 {
		return defaultValue
	}
	return result
}
