package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"

	defaultSessionSecretLen = 32
)

type Config struct {
	HTTPPort       string
	DatabaseDriver string
	DatabaseDSN    string
	SessionSecret  string
	BillDir        string // rendered receipts are written here as bill_<id>.png
	ShopName       string
	LogLevel       string

	// RestrictStockWrites limits add/edit/delete of stock to the owner role.
	RestrictStockWrites bool

	Owner SeedAccount
	Staff SeedAccount
}

// SeedAccount is created at startup when no account with Email exists.
type SeedAccount struct {
	Name     string
	Email    string
	Password string
}

// Load reads the environment (and an optional .env file) into a Config.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed loading env file %s: %w", envFile, err)
		}
	} else {
		// .env is optional; the real environment wins anyway.
		_ = godotenv.Load()
	}

	cfg := &Config{
		HTTPPort:            getEnv("HTTP_PORT", "8080"),
		DatabaseDriver:      strings.ToLower(getEnv("DATABASE_DRIVER", DriverSQLite)),
		DatabaseDSN:         getEnv("DATABASE_DSN", "goldsure.db"),
		SessionSecret:       getEnv("SESSION_SECRET", ""),
		BillDir:             getEnv("BILL_DIR", "static/bills"),
		ShopName:            getEnv("SHOP_NAME", "Goldsure"),
		LogLevel:            getEnv("LOG_LEVEL", "info"),
		RestrictStockWrites: getBool("RESTRICT_STOCK_WRITES", false),
		Owner: SeedAccount{
			Name:     getEnv("OWNER_NAME", "Goldsure Admin"),
			Email:    getEnv("OWNER_EMAIL", "admin@goldsure.com"),
			Password: getEnv("OWNER_PASSWORD", "agarwal8623"),
		},
		Staff: SeedAccount{
			Name:     getEnv("STAFF_NAME", "Goldsure Staff"),
			Email:    getEnv("STAFF_EMAIL", "staff@goldsure.com"),
			Password: getEnv("STAFF_PASSWORD", "staff2639"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	if c.HTTPPort == "" {
		return errors.New("HTTP_PORT must be provided")
	}
	switch c.DatabaseDriver {
	case DriverSQLite, DriverPostgres:
	default:
		return fmt.Errorf("DATABASE_DRIVER %q is not supported (sqlite|postgres)", c.DatabaseDriver)
	}
	if c.DatabaseDSN == "" {
		return errors.New("DATABASE_DSN must be provided")
	}
	if c.SessionSecret == "" {
		return errors.New("SESSION_SECRET must be provided")
	}
	if len(c.SessionSecret) < defaultSessionSecretLen {
		return fmt.Errorf("SESSION_SECRET must be at least %d characters", defaultSessionSecretLen)
	}
	if c.BillDir == "" {
		return errors.New("BILL_DIR must not be empty")
	}
	return nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}
