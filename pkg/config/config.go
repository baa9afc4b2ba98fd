package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application. Resolved once at
// process start; nothing else reads the environment.
type Config struct {
	// Server
	Port string
	Env  string // development, staging, production

	// Database
	Database DatabaseConfig

	// Provider selection (steam | mock | http)
	Provider ProviderConfig

	// Optional quote cache
	Redis RedisConfig

	// Tracker behavior
	SeedDays     int    // backfill target when the store is empty
	SyncSchedule string // cron expression for the scheduled sync

	// Strategy tuning file (scoring weights, rarity map, volatility band)
	StrategyConfigPath string

	// Logging
	LogLevel  string
	LogFormat string
}

// DatabaseConfig holds PostgreSQL configuration.
type DatabaseConfig struct {
	URL             string
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// ProviderConfig selects and parameterizes the market data provider.
type ProviderConfig struct {
	Name          string // steam | mock | http
	SteamCurrency int    // Steam currency code (1 = USD)
	MarketAPIURL  string // generic-http endpoint
	MarketAPIKey  string // bearer token for the generic-http endpoint
	FetchTimeout  time.Duration
	MinCallDelay  time.Duration // spacing between live-market calls
	Workers       int           // fan-out for ingestion fetches
}

// RedisConfig holds the optional quote-cache configuration.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Enabled  bool
	QuoteTTL time.Duration
}

// Load reads configuration from environment variables. Only this function
// calls os.Getenv.
func Load() (*Config, error) {
	loadEnvFile()

	cfg := &Config{
		Port: getEnv("PORT", "8080"),
		Env:  getEnv("ENV", "development"),

		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 10),
			MinConns:        getEnvAsInt("DB_MIN_CONNS", 2),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", "1h"),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", "30m"),
		},

		Provider: ProviderConfig{
			Name:          getEnv("PROVIDER", "steam"),
			SteamCurrency: getEnvAsInt("STEAM_CURRENCY", 1),
			MarketAPIURL:  getEnv("MARKET_API_URL", ""),
			MarketAPIKey:  getEnv("MARKET_API_KEY", ""),
			FetchTimeout:  getEnvAsDuration("FETCH_TIMEOUT", "20s"),
			MinCallDelay:  getEnvAsDuration("MIN_CALL_DELAY", "150ms"),
			Workers:       getEnvAsInt("INGEST_WORKERS", 4),
		},

		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
			QuoteTTL: getEnvAsDuration("REDIS_QUOTE_TTL", "10m"),
		},

		SeedDays:     getEnvAsInt("SEED_DAYS", 30),
		SyncSchedule: getEnv("SYNC_SCHEDULE", "0 0 */24 * * *"),

		StrategyConfigPath: getEnv("STRATEGY_CONFIG", "config/strategy/skin_market_v1.yaml"),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks required values and cross-field constraints.
func (c *Config) validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	switch c.Provider.Name {
	case "steam", "mock", "http":
	default:
		return fmt.Errorf("PROVIDER must be one of: steam, mock, http (got %q)", c.Provider.Name)
	}

	if c.Provider.Name == "http" && c.Provider.MarketAPIURL == "" {
		return fmt.Errorf("MARKET_API_URL is required when PROVIDER=http")
	}

	if c.SeedDays < 0 {
		return fmt.Errorf("SEED_DAYS must not be negative")
	}

	return nil
}

// loadEnvFile tries to load .env from a few likely locations.
func loadEnvFile() {
	paths := []string{".env"}

	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
		)
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}

	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		duration, _ = time.ParseDuration(defaultValue)
	}
	return duration
}
