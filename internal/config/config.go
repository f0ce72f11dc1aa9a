package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App struct {
		Env  string
		Port string
	}
	Postgres struct {
		Host     string
		Port     string
		User     string
		Password string
		DBName   string
		SSLMode  string
		MaxConns int32
	}
	JWT struct {
		Secret string
		TTL    time.Duration
	}
	SMTP struct {
		Enabled  bool
		Host     string
		Port     int
		User     string
		Password string
		From     string
	}
	Shipping struct {
		FreeThreshold float64
		Fee           float64
	}
}

// Load reads configuration from the environment, optionally seeding it from a
// .env file first. A missing .env file is not an error; missing required
// database variables are.
func Load(path string) (*Config, error) {
	if path != "" {
		if err := godotenv.Load(path); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to load %s: %w", path, err)
		}
	}

	cfg := &Config{}
	cfg.App.Env = getEnv("APP_ENV", "development")
	cfg.App.Port = getEnv("APP_PORT", "8080")

	var err error
	if cfg.Postgres.Host, err = requireEnv("DB_HOST"); err != nil {
		return nil, err
	}
	if cfg.Postgres.User, err = requireEnv("DB_USER"); err != nil {
		return nil, err
	}
	if cfg.Postgres.Password, err = requireEnv("DB_PASSWORD"); err != nil {
		return nil, err
	}
	if cfg.Postgres.DBName, err = requireEnv("DB_NAME"); err != nil {
		return nil, err
	}
	cfg.Postgres.Port = getEnv("DB_PORT", "5432")
	cfg.Postgres.SSLMode = getEnv("DB_SSLMODE", "disable")
	cfg.Postgres.MaxConns = int32(getEnvInt("DB_MAX_CONNS", 10))

	if cfg.JWT.Secret, err = requireEnv("JWT_SECRET"); err != nil {
		return nil, err
	}
	cfg.JWT.TTL = time.Duration(getEnvInt("JWT_TTL_HOURS", 24)) * time.Hour

	cfg.SMTP.Host = getEnv("SMTP_HOST", "")
	cfg.SMTP.Enabled = cfg.SMTP.Host != ""
	cfg.SMTP.Port = getEnvInt("SMTP_PORT", 587)
	cfg.SMTP.User = getEnv("SMTP_USER", "")
	cfg.SMTP.Password = getEnv("SMTP_PASSWORD", "")
	cfg.SMTP.From = getEnv("SMTP_FROM", "no-reply@tienda.local")

	cfg.Shipping.FreeThreshold = getEnvFloat("SHIPPING_FREE_THRESHOLD", 200000)
	cfg.Shipping.Fee = getEnvFloat("SHIPPING_FEE", 15000)

	return cfg, nil
}

func (c *Config) IsDevelopment() bool {
	return c.App.Env == "development"
}

// PostgresURL builds the connection URL used by both pgxpool and migrate.
func (c *Config) PostgresURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.Postgres.User, c.Postgres.Password, c.Postgres.Host, c.Postgres.Port, c.Postgres.DBName, c.Postgres.SSLMode)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func requireEnv(key string) (string, error) {
	v := os.Getenv(key)
	if v == "" {
		return "", fmt.Errorf("%s is required", key)
	}
	return v, nil
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getEnvFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}
