package config

// Config contains all configuration grouped by domain
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	JWT      JWTConfig
	Worker   WorkerConfig
	Logging  LoggingConfig
	Catalog  CatalogConfig
}

// All config structs use string fields only - packages handle conversion during initialization
type ServerConfig struct {
	Port         string
	Environment  string
	ReadTimeout  string
	WriteTimeout string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string

	// Connection pool, parsed by pkg/database
	MaxOpenConns    string
	MaxIdleConns    string
	ConnMaxLifetime string
}

type JWTConfig struct {
	Secret     string
	Expiration string
	Issuer     string
}

type WorkerConfig struct {
	LowStockInterval string
}

type LoggingConfig struct {
	Level       string
	Format      string
	ServiceName string
}

type CatalogConfig struct {
	LowStockThreshold string
}
