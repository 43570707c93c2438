package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v9"
	"github.com/joho/godotenv"
)

type Config struct {
	Database Database
	Redis    Redis
	Popup    Popup
	Catalog  CatalogAPI
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

type Database struct {
	Host            string        `env:"DB_HOST,required,notEmpty"`
	Port            int           `env:"DB_PORT,required"`
	User            string        `env:"DB_USER,required"`
	Password        string        `env:"DB_PASSWORD,required"`
	Name            string        `env:"DB_NAME,required"`
	MaxOpenConns    int           `env:"DB_MAX_OPEN_CONNS" envDefault:"25"`
	MaxIdleConns    int           `env:"DB_MAX_IDLE_CONNS" envDefault:"5"`
	ConnMaxLifetime time.Duration `env:"DB_CONN_MAX_LIFETIME" envDefault:"5m"`
	ConnMaxIdleTime time.Duration `env:"DB_CONN_MAX_IDLE_TIME" envDefault:"2m"`
}

type Redis struct {
	Addr          string        `env:"REDIS_ADDR,required,notEmpty"`
	Password      string        `env:"REDIS_PASSWORD"`
	DB            int           `env:"REDIS_DB" envDefault:"0"`
	CatalogTTL    time.Duration `env:"CATALOG_CACHE_TTL" envDefault:"10m"`
	CartRecordTTL time.Duration `env:"CART_RECORD_TTL" envDefault:"24h"`
}

type Popup struct {
	ParentFetchTimeout    time.Duration `env:"PARENT_FETCH_TIMEOUT" envDefault:"5s"`
	ParentFetchMaxElapsed time.Duration `env:"PARENT_FETCH_MAX_ELAPSED" envDefault:"8s"`
}

// CatalogAPI is the optional remote catalog used for parent bundle lookups.
// When URL is empty the Postgres catalog serves them.
type CatalogAPI struct {
	URL     string        `env:"CATALOG_API_URL"`
	Token   string        `env:"CATALOG_API_TOKEN"`
	Timeout time.Duration `env:"CATALOG_API_TIMEOUT" envDefault:"30s"`
}

// Load reads an optional .env file, then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to read .env: %w", err)
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if cfg.Database.Port <= 0 {
		return nil, fmt.Errorf("invalid DB_PORT: %d", cfg.Database.Port)
	}
	if cfg.Popup.ParentFetchTimeout <= 0 {
		return nil, fmt.Errorf("PARENT_FETCH_TIMEOUT must be positive")
	}

	return &cfg, nil
}
