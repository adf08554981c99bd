package config

import (
	"os"
	"strings"
)

// Load reads configuration from environment variables as raw strings.
// Components handle validation and defaults during initialization.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         env("SERVER_PORT"),
			Environment:  env("SERVER_ENV"),
			ReadTimeout:  env("SERVER_READ_TIMEOUT"),
			WriteTimeout: env("SERVER_WRITE_TIMEOUT"),
		},
		Database: DatabaseConfig{
			Host:            env("DB_HOST"),
			Port:            env("DB_PORT"),
			User:            env("DB_USER"),
			Password:        os.Getenv("DB_PASSWORD"),
			DBName:          env("DB_NAME"),
			SSLMode:         env("DB_SSLMODE"),
			MaxOpenConns:    env("DB_MAX_OPEN_CONNS"),
			MaxIdleConns:    env("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: env("DB_CONN_MAX_LIFETIME"),
		},
		JWT: JWTConfig{
			Secret:     os.Getenv("JWT_SECRET"),
			Expiration: env("JWT_EXPIRATION"),
			Issuer:     env("JWT_ISSUER"),
		},
		Worker: WorkerConfig{
			LowStockInterval: env("WORKER_LOW_STOCK_INTERVAL"),
		},
		Logging: LoggingConfig{
			Level:       strings.ToLower(env("LOG_LEVEL")),
			Format:      strings.ToLower(env("LOG_FORMAT")),
			ServiceName: env("SERVICE_NAME"),
		},
		Catalog: CatalogConfig{
			LowStockThreshold: env("CATALOG_LOW_STOCK_THRESHOLD"),
		},
	}
}

// env trims surrounding whitespace so "  30m " parses like "30m".
// Secrets are read verbatim.
func env(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}
