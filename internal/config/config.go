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

	Provider   ProviderConfig
	Compliance ComplianceConfig
	Scan       ScanConfig
	PriceFeed  PriceFeedConfig
	Redis      RedisConfig
	Database   DatabaseConfig
	API        APIConfig
}

// ProviderConfig holds market data provider configuration
type ProviderConfig struct {
	Type           string // "mock", "yahoo", "broker"
	BaseURL        string
	ExchangeSuffix string // appended when querying the provider, e.g. ".NS"
	RequestTimeout time.Duration
	RateLimitRPS   float64
	RateLimitBurst int
}

// ComplianceConfig holds the Shariah screen thresholds
type ComplianceConfig struct {
	MaxDebtRatio float64
	MaxCashRatio float64
}

// ScanConfig holds scan orchestrator configuration
type ScanConfig struct {
	Symbols       []string
	ListName      string
	WorkerCount   int
	MinHistory    int
	HistoryPeriod string // provider period code, e.g. "1y"
	Interval      time.Duration
	SparklineLen  int
}

// PriceFeedConfig holds the live price feed configuration
type PriceFeedConfig struct {
	BatchSize      int
	BatchPause     time.Duration
	UpdateInterval time.Duration
}

// RedisConfig holds Redis configuration for the shared snapshot cache
type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

// DatabaseConfig holds Postgres configuration for snapshot history
type DatabaseConfig struct {
	Enabled         bool
	Host            string
	Port            int
	User            string
	Password        string
	Database        string
	SSLMode         string
	MaxConnections  int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// APIConfig holds REST/WebSocket service configuration
type APIConfig struct {
	Port          int
	ScanRateLimit int // requests per minute for /scan
	ReadTimeout   time.Duration
	WriteTimeout  time.Duration
	PingInterval  time.Duration
}

// Load loads configuration from environment variables.
// It automatically loads a .env file if one exists.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		Provider: ProviderConfig{
			Type:           getEnv("DATA_PROVIDER", "mock"),
			BaseURL:        getEnv("DATA_PROVIDER_BASE_URL", "https://query1.finance.yahoo.com"),
			ExchangeSuffix: getEnv("DATA_PROVIDER_EXCHANGE_SUFFIX", ".NS"),
			RequestTimeout: getEnvAsDuration("DATA_PROVIDER_TIMEOUT", 10*time.Second),
			RateLimitRPS:   getEnvAsFloat("DATA_PROVIDER_RATE_LIMIT_RPS", 5.0),
			RateLimitBurst: getEnvAsInt("DATA_PROVIDER_RATE_LIMIT_BURST", 10),
		},
		Compliance: ComplianceConfig{
			MaxDebtRatio: getEnvAsFloat("MAX_DEBT_RATIO", 50.0),
			MaxCashRatio: getEnvAsFloat("MAX_CASH_RATIO", 35.0),
		},
		Scan: ScanConfig{
			Symbols:       getEnvAsStringSlice("SCAN_SYMBOLS", defaultSymbols),
			ListName:      getEnv("SCAN_LIST_NAME", "Default Watchlist"),
			WorkerCount:   getEnvAsInt("SCAN_WORKER_COUNT", 4),
			MinHistory:    getEnvAsInt("SCAN_MIN_HISTORY", 50),
			HistoryPeriod: getEnv("SCAN_HISTORY_PERIOD", "1y"),
			Interval:      getEnvAsDuration("SCAN_INTERVAL", 5*time.Minute),
			SparklineLen:  getEnvAsInt("SCAN_SPARKLINE_LEN", 20),
		},
		PriceFeed: PriceFeedConfig{
			BatchSize:      getEnvAsInt("PRICE_FEED_BATCH_SIZE", 10),
			BatchPause:     getEnvAsDuration("PRICE_FEED_BATCH_PAUSE", 500*time.Millisecond),
			UpdateInterval: getEnvAsDuration("PRICE_FEED_UPDATE_INTERVAL", 10*time.Second),
		},
		Redis: RedisConfig{
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnvAsInt("REDIS_PORT", 6379),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Database: DatabaseConfig{
			Enabled:         getEnvAsBool("DB_ENABLED", false),
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnvAsInt("DB_PORT", 5432),
			User:            getEnv("DB_USER", "postgres"),
			Password:        getEnv("DB_PASSWORD", "postgres"),
			Database:        getEnv("DB_NAME", "halal_screener"),
			SSLMode:         getEnv("DB_SSL_MODE", "disable"),
			MaxConnections:  getEnvAsInt("DB_MAX_CONNECTIONS", 10),
			MaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvAsDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
		},
		API: APIConfig{
			Port:          getEnvAsInt("API_PORT", 8000),
			ScanRateLimit: getEnvAsInt("API_SCAN_RATE_LIMIT", 30),
			ReadTimeout:   getEnvAsDuration("API_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:  getEnvAsDuration("API_WRITE_TIMEOUT", 15*time.Second),
			PingInterval:  getEnvAsDuration("API_WS_PING_INTERVAL", 30*time.Second),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// defaultSymbols is the built-in watchlist used when SCAN_SYMBOLS is unset.
var defaultSymbols = []string{
	"RELIANCE", "TCS", "INFY", "HDFCBANK", "WIPRO",
	"SUNPHARMA", "TATAMOTORS", "MARUTI", "ASIANPAINT", "TITAN",
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if len(c.Scan.Symbols) == 0 {
		return fmt.Errorf("SCAN_SYMBOLS must contain at least one symbol")
	}
	if c.Scan.WorkerCount < 1 {
		return fmt.Errorf("SCAN_WORKER_COUNT must be at least 1")
	}
	if c.Scan.MinHistory < 2 {
		return fmt.Errorf("SCAN_MIN_HISTORY must be at least 2")
	}
	if c.Compliance.MaxDebtRatio <= 0 || c.Compliance.MaxCashRatio <= 0 {
		return fmt.Errorf("compliance thresholds must be positive")
	}
	if c.PriceFeed.BatchSize < 1 {
		return fmt.Errorf("PRICE_FEED_BATCH_SIZE must be at least 1")
	}
	switch c.Provider.Type {
	case "mock", "yahoo", "broker":
	default:
		return fmt.Errorf("unknown DATA_PROVIDER %q", c.Provider.Type)
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

func getEnvAsFloat(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	floatValue, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return defaultValue
	}
	return floatValue
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
