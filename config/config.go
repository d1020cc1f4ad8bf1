package config

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/upb/ciw-intake/models"
	"github.com/upb/ciw-intake/utils"
)

// Lock backends for per-identity serialization
const (
	LockBackendMemory = "memory"
	LockBackendRedis  = "redis"
)

// Config represents the complete application configuration
type Config struct {
	Database      DatabaseConfig
	Processing    ProcessingConfig
	Notification  NotificationConfig
	Redis         RedisConfig
	Observability ObservabilityConfig
	Environment   string
}

// DatabaseConfig holds PostgreSQL database configuration.
// When ConnectionString (from DATABASE_URL) is set, it takes precedence over individual fields.
type DatabaseConfig struct {
	ConnectionString string // From DATABASE_URL when set
	Host             string
	Port             int
	User             string
	Password         string
	Database         string
	SSLMode          string
	MaxOpenConns     int
	MaxIdleConns     int
	ConnMaxLifetime  time.Duration
	MigrationsPath   string
	AutoMigrate      bool // apply pending migrations before processing
}

// ProcessingConfig controls how worksheets are picked up and processed
type ProcessingConfig struct {
	ExpectedVersion string `validate:"required"`
	HomeCountry     string `validate:"required,len=2,alpha"`
	InboxDir        string `validate:"required"`
	Workers         int    `validate:"gte=1,lte=64"`
	ContractSource  string `validate:"required,oneof=new fpds sam"`
	LockBackend     string `validate:"required,oneof=memory redis"`
	LookupCacheSize int    `validate:"gte=1"`
	LookupCacheTTL  time.Duration
}

// NotificationConfig controls the outbound notification worker pool
type NotificationConfig struct {
	From           string `validate:"required,email"`
	SupportAddress string `validate:"required,email"`
	Workers        int    `validate:"gte=1"`
	BufferSize     int    `validate:"gte=1"`
}

// RedisConfig holds the Redis connection used for distributed identity locks
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	LockTTL  time.Duration
}

// ObservabilityConfig holds monitoring and logging configuration
type ObservabilityConfig struct {
	LogLevel  string `validate:"required,oneof=debug info warn error"`
	LogFormat string `validate:"oneof=json text"` // json or text
	OpsAddr   string
}

// New creates a new Config instance by loading environment variables
func New(ctx context.Context) (*Config, error) {
	_ = godotenv.Load(".env")

	cfg := &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		Database:    loadDatabaseConfig(),
		Processing: ProcessingConfig{
			ExpectedVersion: getEnv("CIW_EXPECTED_VERSION", models.BaselineVersion),
			HomeCountry:     strings.ToUpper(getEnv("CIW_HOME_COUNTRY", "US")),
			InboxDir:        getEnv("CIW_INBOX_DIR", "inbox"),
			Workers:         getEnvAsInt("CIW_WORKERS", 1),
			ContractSource:  getEnv("CIW_CONTRACT_SOURCE", string(models.ContractSourceNew)),
			LockBackend:     getEnv("CIW_LOCK_BACKEND", LockBackendMemory),
			LookupCacheSize: getEnvAsInt("CIW_LOOKUP_CACHE_SIZE", 1000),
			LookupCacheTTL:  getEnvAsDuration("CIW_LOOKUP_CACHE_TTL", 10*time.Minute),
		},
		Notification: NotificationConfig{
			From:           getEnv("NOTIFY_FROM", "ciw-intake@gsa.gov"),
			SupportAddress: getEnv("NOTIFY_SUPPORT_ADDRESS", "gcims-support@gsa.gov"),
			Workers:        getEnvAsInt("NOTIFY_WORKERS", 2),
			BufferSize:     getEnvAsInt("NOTIFY_BUFFER_SIZE", 100),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			LockTTL:  getEnvAsDuration("REDIS_LOCK_TTL", 2*time.Minute),
		},
		Observability: ObservabilityConfig{
			LogLevel:  getEnv("LOG_LEVEL", "info"),
			LogFormat: getEnv("LOG_FORMAT", "json"),
			OpsAddr:   getEnv("OPS_ADDR", ":9090"),
		},
	}

	// Validate the configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks if all required configuration fields are set
func (c *Config) Validate() error {
	// Database validation (DATABASE_URL or DB_* vars)
	if c.Database.ConnectionString == "" && c.Database.Host == "" {
		return fmt.Errorf("database configuration required: set DATABASE_URL or DB_HOST")
	}
	if c.Database.ConnectionString == "" {
		if c.Database.User == "" {
			return fmt.Errorf("database user is required")
		}
		if c.Database.Database == "" {
			return fmt.Errorf("database name is required")
		}
	}

	if err := utils.ValidateStruct(c.Processing); err != nil {
		return fmt.Errorf("invalid processing config: %w", describe(err))
	}
	if err := utils.ValidateStruct(c.Notification); err != nil {
		return fmt.Errorf("invalid notification config: %w", describe(err))
	}
	if err := utils.ValidateStruct(c.Observability); err != nil {
		return fmt.Errorf("invalid observability config: %w", describe(err))
	}

	if c.Processing.LockBackend == LockBackendRedis && c.Redis.Addr == "" {
		return fmt.Errorf("redis address is required when CIW_LOCK_BACKEND=redis")
	}

	return nil
}

// ContractSource returns the configured contract header write variant
func (c *Config) ContractSource() models.ContractSource {
	return models.ContractSource(c.Processing.ContractSource)
}

// IsProduction returns true if running in production environment
func (c *Config) IsProduction() bool {
	return c.Environment == "production" || c.Environment == "prod"
}

// IsDevelopment returns true if running in development environment
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development" || c.Environment == "dev"
}

// DSN returns the PostgreSQL connection string.
// Uses ConnectionString (from DATABASE_URL) when set; otherwise builds from individual fields.
func (c *DatabaseConfig) DSN() string {
	if c.ConnectionString != "" {
		return c.ConnectionString
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// LogString returns a safe string for logging (no password). Parses ConnectionString when set.
func (c *DatabaseConfig) LogString() string {
	if c.ConnectionString != "" {
		u, err := url.Parse(c.ConnectionString)
		if err == nil {
			host := u.Hostname()
			port := u.Port()
			if port == "" {
				port = "5432"
			}
			db := strings.TrimPrefix(u.Path, "/")
			return fmt.Sprintf("host=%s port=%s database=%s", host, port, db)
		}
		return "host=<from DATABASE_URL>"
	}
	return fmt.Sprintf("host=%s port=%d database=%s", c.Host, c.Port, c.Database)
}

// loadDatabaseConfig loads database config from DATABASE_URL or DB_* env vars
func loadDatabaseConfig() DatabaseConfig {
	migrations := getEnv("DB_MIGRATIONS_PATH", "migrations")
	autoMigrate := getEnvAsBool("DB_AUTO_MIGRATE", false)
	dbURL := getEnv("DATABASE_URL", "")
	if dbURL != "" {
		return DatabaseConfig{
			ConnectionString: dbURL,
			MaxOpenConns:     getEnvAsInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:     getEnvAsInt("DB_MAX_IDLE_CONNS", 2),
			ConnMaxLifetime:  getEnvAsDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
			MigrationsPath:   migrations,
			AutoMigrate:      autoMigrate,
		}
	}
	return DatabaseConfig{
		Host:            getEnv("DB_HOST", "localhost"),
		Port:            getEnvAsInt("DB_PORT", 5432),
		User:            getEnv("DB_USER", "ciw"),
		Password:        getEnv("DB_PASSWORD", ""),
		Database:        getEnv("DB_NAME", "gcims"),
		SSLMode:         getEnv("DB_SSLMODE", "disable"),
		MaxOpenConns:    getEnvAsInt("DB_MAX_OPEN_CONNS", 10),
		MaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 2),
		ConnMaxLifetime: getEnvAsDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
		MigrationsPath:  migrations,
		AutoMigrate:     autoMigrate,
	}
}

// describe flattens a utils.ValidationError into one message
func describe(err error) error {
	fields := utils.GetValidationFields(err)
	if len(fields) == 0 {
		return err
	}
	msgs := make([]string, 0, len(fields))
	for _, m := range fields {
		msgs = append(msgs, m)
	}
	sort.Strings(msgs)
	return fmt.Errorf("%s", strings.Join(msgs, "; "))
}

// Helper functions

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

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
