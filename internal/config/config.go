package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Database  DatabaseConfig
	App       AppConfig
	JWT       JWTConfig
	Reconcile ReconcileConfig
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

// JWTConfig holds the verification key for the token middleware.
// Token issuance lives in the identity service, not here.
type JWTConfig struct {
	Secret string
}

// AppConfig holds application configuration
type AppConfig struct {
	Port     int
	Env      string
	LogLevel string
}

// ReconcileConfig holds batch reconciliation tuning knobs.
type ReconcileConfig struct {
	Workers       int
	PerKeyTimeout time.Duration
	RetryLimit    int
	RetryBackoff  time.Duration
	LookbackDays  int
	ScheduleEvery time.Duration
	KPIEvalEvery  time.Duration
}

func Load() (*Config, error) {
	// .env is optional; deployments set the environment directly.
	_ = godotenv.Load()

	config := &Config{}

	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}

	config.Database = DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     dbPort,
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "talenttrack"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
	}

	appPort, err := strconv.Atoi(getEnv("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}

	config.App = AppConfig{
		Port:     appPort,
		Env:      getEnv("APP_ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}

	config.JWT = JWTConfig{
		Secret: getEnv("JWT_SECRET_KEY", ""),
	}

	workers, err := strconv.Atoi(getEnv("RECONCILE_WORKERS", "8"))
	if err != nil {
		return nil, fmt.Errorf("invalid RECONCILE_WORKERS: %w", err)
	}

	perKeyTimeout, err := time.ParseDuration(getEnv("RECONCILE_KEY_TIMEOUT", "30s"))
	if err != nil {
		return nil, fmt.Errorf("invalid RECONCILE_KEY_TIMEOUT: %w", err)
	}

	retryLimit, err := strconv.Atoi(getEnv("RECONCILE_RETRY_LIMIT", "3"))
	if err != nil {
		return nil, fmt.Errorf("invalid RECONCILE_RETRY_LIMIT: %w", err)
	}

	retryBackoff, err := time.ParseDuration(getEnv("RECONCILE_RETRY_BACKOFF", "2s"))
	if err != nil {
		return nil, fmt.Errorf("invalid RECONCILE_RETRY_BACKOFF: %w", err)
	}

	lookbackDays, err := strconv.Atoi(getEnv("DASHBOARD_LOOKBACK_DAYS", "14"))
	if err != nil {
		return nil, fmt.Errorf("invalid DASHBOARD_LOOKBACK_DAYS: %w", err)
	}

	scheduleEvery, err := time.ParseDuration(getEnv("RECONCILE_INTERVAL", "1h"))
	if err != nil {
		return nil, fmt.Errorf("invalid RECONCILE_INTERVAL: %w", err)
	}

	kpiEvery, err := time.ParseDuration(getEnv("KPI_EVAL_INTERVAL", "6h"))
	if err != nil {
		return nil, fmt.Errorf("invalid KPI_EVAL_INTERVAL: %w", err)
	}

	config.Reconcile = ReconcileConfig{
		Workers:       workers,
		PerKeyTimeout: perKeyTimeout,
		RetryLimit:    retryLimit,
		RetryBackoff:  retryBackoff,
		LookbackDays:  lookbackDays,
		ScheduleEvery: scheduleEvery,
		KPIEvalEvery:  kpiEvery,
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Database.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}
	if c.Reconcile.Workers <= 0 {
		return fmt.Errorf("RECONCILE_WORKERS must be positive")
	}
	if c.Reconcile.RetryLimit < 0 {
		return fmt.Errorf("RECONCILE_RETRY_LIMIT must not be negative")
	}
	return nil
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
