package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	StorageDriverPostgres = "postgres"
	StorageDriverMemory   = "memory"
)

type Config struct {
	ServerPort      string        `env:"SERVER_PORT" envDefault:"8080"`
	DatabaseURL     string        `env:"DATABASE_URL"`
	StorageDriver   string        `env:"STORAGE_DRIVER" envDefault:"postgres"`
	LogLevel        string        `env:"LOG_LEVEL" envDefault:"info"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"5s"`

	ReadHeaderTimeout time.Duration `env:"READ_HEADER_TIMEOUT" envDefault:"5s"`
	ReadTimeout       time.Duration `env:"READ_TIMEOUT" envDefault:"15s"`
	WriteTimeout      time.Duration `env:"WRITE_TIMEOUT" envDefault:"30s"`
	IdleTimeout       time.Duration `env:"IDLE_TIMEOUT" envDefault:"60s"`

	Auth AuthConfig
}

type AuthConfig struct {
	JWTSecret    string        `env:"JWT_SECRET"`
	JWTIssuer    string        `env:"JWT_ISSUER" envDefault:"inventory-cart"`
	SessionTTL   time.Duration `env:"SESSION_TTL" envDefault:"24h"`
	RememberTTL  time.Duration `env:"REMEMBER_TTL" envDefault:"720h"`
	RegisterTTL  time.Duration `env:"REGISTER_TTL" envDefault:"720h"`
	BcryptCost   int           `env:"BCRYPT_COST" envDefault:"10"`
	HashWorkers  int           `env:"HASH_WORKERS" envDefault:"4"`
	CookieSecure bool          `env:"COOKIE_SECURE" envDefault:"false"`
}

func Load() (*Config, error) {
	// Load .env file if it exists (useful for local dev)
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	switch cfg.StorageDriver {
	case StorageDriverPostgres:
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL must be set")
		}
	case StorageDriverMemory:
	default:
		return nil, fmt.Errorf("unsupported STORAGE_DRIVER %q", cfg.StorageDriver)
	}

	if cfg.Auth.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET must be set")
	}
	if cfg.Auth.HashWorkers < 1 {
		return nil, fmt.Errorf("HASH_WORKERS must be positive")
	}

	return &cfg, nil
}
