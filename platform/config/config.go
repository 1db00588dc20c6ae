// Package config provides application configuration loading.
// This is part of the platform layer and contains no business logic.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Store drivers.
const (
	StoreDriverSpreadsheet = "spreadsheet"
	StoreDriverPostgres    = "postgres"
)

// =============================================================================
// Module-Specific Config Interfaces (Principle of Least Privilege)
// =============================================================================

// DatabaseConfig provides database connection settings.
type DatabaseConfig interface {
	GetDatabaseURL() string
}

// HTTPConfig provides settings for the HTTP server.
type HTTPConfig interface {
	GetHTTPAddr() string
	GetCORSAllowAll() bool
	GetCORSOrigins() []string
	GetSaveRateLimitPerMinute() int
}

// StoreConfig selects and locates the postal code store.
type StoreConfig interface {
	GetStoreDriver() string
	GetBaseWorkbook() string
	GetUserWorkbook() string
}

// CacheConfig provides settings for the lookup cache.
type CacheConfig interface {
	GetRedisURL() string
	GetCacheTTL() time.Duration
	GetLRUCacheSize() int
}

// SchedulerConfig provides settings for the asynq task queue.
type SchedulerConfig interface {
	GetRedisURL() string
	GetRedisTLSInsecure() bool
	GetAsynqQueueName() string
	GetAsynqConcurrency() int
}

// ClientConfig provides settings for the interactive lookup client.
type ClientConfig interface {
	GetAPIBaseURL() string
	GetLoadingDelay() time.Duration
	GetCopyResetDelay() time.Duration
	GetClientLogFile() string
	GetDiscardFormOnSaveError() bool
}

// =============================================================================
// Main Config Struct
// =============================================================================

// Config holds all application configuration values.
type Config struct {
	Env                    string
	HTTPAddr               string
	CORSAllowAll           bool
	CORSOrigins            []string
	SaveRateLimitPerMinute int
	StoreDriver            string
	BaseWorkbook           string
	UserWorkbook           string
	DatabaseURL            string
	RedisURL               string
	RedisTLSInsecure       bool
	CacheTTL               time.Duration
	LRUCacheSize           int
	AsynqQueueName         string
	AsynqConcurrency       int
	APIBaseURL             string
	LoadingDelay           time.Duration
	CopyResetDelay         time.Duration
	ClientLogFile          string
	DiscardFormOnSaveError bool
}

// =============================================================================
// Interface Implementations
// =============================================================================

// DatabaseConfig implementation
func (c *Config) GetDatabaseURL() string { return c.DatabaseURL }

// HTTPConfig implementation
func (c *Config) GetHTTPAddr() string            { return c.HTTPAddr }
func (c *Config) GetCORSAllowAll() bool          { return c.CORSAllowAll }
func (c *Config) GetCORSOrigins() []string       { return c.CORSOrigins }
func (c *Config) GetSaveRateLimitPerMinute() int { return c.SaveRateLimitPerMinute }

// StoreConfig implementation
func (c *Config) GetStoreDriver() string  { return c.StoreDriver }
func (c *Config) GetBaseWorkbook() string { return c.BaseWorkbook }
func (c *Config) GetUserWorkbook() string { return c.UserWorkbook }

// CacheConfig implementation
func (c *Config) GetRedisURL() string        { return c.RedisURL }
func (c *Config) GetCacheTTL() time.Duration { return c.CacheTTL }
func (c *Config) GetLRUCacheSize() int       { return c.LRUCacheSize }

// SchedulerConfig implementation
func (c *Config) GetRedisTLSInsecure() bool { return c.RedisTLSInsecure }
func (c *Config) GetAsynqQueueName() string { return c.AsynqQueueName }
func (c *Config) GetAsynqConcurrency() int  { return c.AsynqConcurrency }

// ClientConfig implementation
func (c *Config) GetAPIBaseURL() string            { return c.APIBaseURL }
func (c *Config) GetLoadingDelay() time.Duration   { return c.LoadingDelay }
func (c *Config) GetCopyResetDelay() time.Duration { return c.CopyResetDelay }
func (c *Config) GetClientLogFile() string         { return c.ClientLogFile }
func (c *Config) GetDiscardFormOnSaveError() bool  { return c.DiscardFormOnSaveError }

// Load reads server configuration from environment variables.
func Load() (*Config, error) {
	cfg := load()

	switch cfg.StoreDriver {
	case StoreDriverSpreadsheet:
		if cfg.BaseWorkbook == "" {
			return nil, fmt.Errorf("BASE_WORKBOOK is required for the spreadsheet store")
		}
	case StoreDriverPostgres:
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required for the postgres store")
		}
	default:
		return nil, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
	}

	return cfg, nil
}

// LoadClient reads the interactive client's configuration. It does not
// require any of the server's store settings.
func LoadClient() (*Config, error) {
	cfg := load()
	if cfg.APIBaseURL == "" {
		return nil, fmt.Errorf("CEP_API_URL is required")
	}
	return cfg, nil
}

func load() *Config {
	_ = godotenv.Load()

	corsOrigins := splitCSV(getEnv("CORS_ORIGINS", "http://localhost:8080"))
	corsAllowAll := strings.EqualFold(getEnv("CORS_ALLOW_ALL", "false"), "true")
	if containsWildcard(corsOrigins) {
		corsAllowAll = true
	}

	return &Config{
		Env:                    getEnv("APP_ENV", "development"),
		HTTPAddr:               getEnv("HTTP_ADDR", ":8080"),
		CORSAllowAll:           corsAllowAll,
		CORSOrigins:            corsOrigins,
		SaveRateLimitPerMinute: mustInt(getEnv("SAVE_RATE_LIMIT_PER_MIN", "30")),
		StoreDriver:            strings.ToLower(getEnv("STORE_DRIVER", StoreDriverSpreadsheet)),
		BaseWorkbook:           getEnv("BASE_WORKBOOK", "cep.xlsx"),
		UserWorkbook:           getEnv("USER_WORKBOOK", "user_ceps.xlsx"),
		DatabaseURL:            getEnv("DATABASE_URL", ""),
		RedisURL:               getEnv("REDIS_URL", ""),
		RedisTLSInsecure:       strings.EqualFold(getEnv("REDIS_TLS_INSECURE", "false"), "true"),
		CacheTTL:               mustDuration(getEnv("CACHE_TTL", "10m")),
		LRUCacheSize:           mustInt(getEnv("LRU_CACHE_SIZE", "1024")),
		AsynqQueueName:         getEnv("ASYNQ_QUEUE", "default"),
		AsynqConcurrency:       mustInt(getEnv("ASYNQ_CONCURRENCY", "5")),
		APIBaseURL:             strings.TrimRight(getEnv("CEP_API_URL", "http://localhost:8080"), "/"),
		LoadingDelay:           mustDuration(getEnv("CEP_LOADING_DELAY", "30ms")),
		CopyResetDelay:         mustDuration(getEnv("CEP_COPY_RESET_DELAY", "700ms")),
		ClientLogFile:          getEnv("CEP_LOG_FILE", "cep.log"),
		DiscardFormOnSaveError: strings.EqualFold(getEnv("CEP_DISCARD_FORM_ON_SAVE_ERROR", "false"), "true"),
	}
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func mustDuration(value string) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0
	}
	return d
}

func mustInt(value string) int {
	result, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0
	}
	return result
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	results := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			results = append(results, trimmed)
		}
	}
	return results
}

func containsWildcard(values []string) bool {
	for _, value := range values {
		if value == "*" {
			return true
		}
	}
	return false
}
