// Package config builds process configuration from the environment.
// A .env file in the working directory is loaded first when present.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

const devJWTSecret = "dev-secret-change-me"

// Config is shared by every binary. Each one reads the parts it needs.
type Config struct {
	App      AppConfig
	Database DatabaseConfig
	JWT      JWTConfig
	Business BusinessConfig
	Redis    RedisConfig
	HTTP     HTTPConfig
	Worker   WorkerConfig
}

type AppConfig struct {
	Env      string
	Port     string
	LogLevel string
	Version  string
}

// IsDevelopment reports whether the process runs in development mode.
func (c AppConfig) IsDevelopment() bool {
	return c.Env == EnvDevelopment
}

type DatabaseConfig struct {
	URL      string
	MaxConns int32
	MinConns int32
}

type JWTConfig struct {
	Secret string
	TTL    time.Duration
}

type BusinessConfig struct {
	// Timezone is the IANA zone business days are cut in.
	Timezone string
	// ExpenseDayShift moves expense windows back by whole days to match
	// rows stored by the legacy client. Zero disables it.
	ExpenseDayShift int
}

type RedisConfig struct {
	// Address empty means Redis is not used.
	Address  string
	Password string
	DB       int
	// ReportCacheTTL zero disables report caching.
	ReportCacheTTL time.Duration
	LockTTL        time.Duration
}

// Enabled reports whether a Redis address is configured.
func (c RedisConfig) Enabled() bool {
	return c.Address != ""
}

type HTTPConfig struct {
	CORSAllowedOrigins []string
	IdempotencyTTL     time.Duration
	ReadTimeout        time.Duration
	WriteTimeout       time.Duration
	ShutdownTimeout    time.Duration
}

type WorkerConfig struct {
	DriftInterval    time.Duration
	SnapshotInterval time.Duration
	CleanupInterval  time.Duration
	// RepairDrift rewrites mismatched balances instead of only reporting them.
	RepairDrift bool
}

// Load reads .env (if any) and the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	return FromEnv()
}

// FromEnv builds the config from the current environment only.
func FromEnv() (*Config, error) {
	cfg := &Config{
		App: AppConfig{
			Env:      getEnv("APP_ENV", EnvDevelopment),
			Port:     getEnv("APP_PORT", "8080"),
			LogLevel: getEnv("LOG_LEVEL", "info"),
			Version:  getEnv("APP_VERSION", "dev"),
		},
		Database: DatabaseConfig{
			URL:      os.Getenv("DATABASE_URL"),
			MaxConns: int32(getEnvInt("DB_MAX_CONNS", 20)),
			MinConns: int32(getEnvInt("DB_MIN_CONNS", 2)),
		},
		JWT: JWTConfig{
			Secret: os.Getenv("JWT_SECRET"),
			TTL:    getEnvDuration("JWT_TTL", 24*time.Hour),
		},
		Business: BusinessConfig{
			Timezone:        getEnv("BUSINESS_TIMEZONE", "America/Mexico_City"),
			ExpenseDayShift: getEnvInt("EXPENSE_DAY_SHIFT", 1),
		},
		Redis: RedisConfig{
			Address:        os.Getenv("REDIS_ADDRESS"),
			Password:       os.Getenv("REDIS_PASSWORD"),
			DB:             getEnvInt("REDIS_DB", 0),
			ReportCacheTTL: getEnvDuration("REPORT_CACHE_TTL", 5*time.Minute),
			LockTTL:        getEnvDuration("REDIS_LOCK_TTL", 10*time.Second),
		},
		HTTP: HTTPConfig{
			CORSAllowedOrigins: getEnvSlice("CORS_ALLOWED_ORIGINS", []string{"*"}),
			IdempotencyTTL:     getEnvDuration("IDEMPOTENCY_TTL", 24*time.Hour),
			ReadTimeout:        getEnvDuration("HTTP_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:       getEnvDuration("HTTP_WRITE_TIMEOUT", 60*time.Second),
			ShutdownTimeout:    getEnvDuration("HTTP_SHUTDOWN_TIMEOUT", 30*time.Second),
		},
		Worker: WorkerConfig{
			DriftInterval:    getEnvDuration("DRIFT_INTERVAL", time.Hour),
			SnapshotInterval: getEnvDuration("SNAPSHOT_INTERVAL", 6*time.Hour),
			CleanupInterval:  getEnvDuration("CLEANUP_INTERVAL", time.Hour),
			RepairDrift:      getEnvBool("REPAIR_DRIFT", true),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	var missing []string
	if c.Database.URL == "" {
		missing = append(missing, "DATABASE_URL")
	}
	if c.JWT.Secret == "" {
		if c.App.IsDevelopment() {
			c.JWT.Secret = devJWTSecret
		} else {
			missing = append(missing, "JWT_SECRET")
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("required environment variables not set: %s", strings.Join(missing, ", "))
	}
	if c.Business.ExpenseDayShift < 0 {
		return fmt.Errorf("EXPENSE_DAY_SHIFT must not be negative, got %d", c.Business.ExpenseDayShift)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(strings.TrimSpace(value)); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(strings.TrimSpace(value)); err == nil {
			return d
		}
	}
	return fallback
}

func getEnvSlice(key string, fallback []string) []string {
	value, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(value) == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
