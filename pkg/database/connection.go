package database

import (
	"fmt"
	"strconv"
	"time"

	"github.com/Keeferf/SYSC4806-AmazinBookstore/config"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// PoolSettings holds the parsed connection pool limits
type PoolSettings struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// BuildDSN renders a postgres DSN, filling defaults for empty values
func BuildDSN(cfg *config.DatabaseConfig) string {
	host := cfg.Host
	if host == "" {
		host = "localhost"
	}

	port := cfg.Port
	if port == "" {
		port = "5432"
	}

	user := cfg.User
	if user == "" {
		user = "postgres"
	}

	dbName := cfg.DBName
	if dbName == "" {
		dbName = "bookstore"
	}

	sslMode := cfg.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}

	// Note: empty password is valid for local development
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		host, user, cfg.Password, dbName, port, sslMode)
}

// ParsePool validates the pool settings. Idle connections never exceed open ones.
func ParsePool(cfg *config.DatabaseConfig) (PoolSettings, error) {
	pool := PoolSettings{
		MaxOpenConns:    20,
		MaxIdleConns:    5,
		ConnMaxLifetime: 30 * time.Minute,
	}

	if cfg.MaxOpenConns != "" {
		n, err := strconv.Atoi(cfg.MaxOpenConns)
		if err != nil || n < 1 {
			return pool, fmt.Errorf("invalid max open connections '%s': must be a positive integer", cfg.MaxOpenConns)
		}
		pool.MaxOpenConns = n
	}

	if cfg.MaxIdleConns != "" {
		n, err := strconv.Atoi(cfg.MaxIdleConns)
		if err != nil || n < 0 {
			return pool, fmt.Errorf("invalid max idle connections '%s': must be zero or more", cfg.MaxIdleConns)
		}
		pool.MaxIdleConns = n
	}

	if cfg.ConnMaxLifetime != "" {
		d, err := time.ParseDuration(cfg.ConnMaxLifetime)
		if err != nil || d <= 0 {
			return pool, fmt.Errorf("invalid connection max lifetime '%s': must be a positive duration", cfg.ConnMaxLifetime)
		}
		pool.ConnMaxLifetime = d
	}

	pool.MaxIdleConns = min(pool.MaxIdleConns, pool.MaxOpenConns)

	return pool, nil
}

// NewConnection opens the catalog database and applies the pool limits.
// TranslateError maps unique violations to gorm.ErrDuplicatedKey so the
// repositories can report ISBN and username conflicts without parsing driver text.
func NewConnection(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	pool, err := ParsePool(cfg)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(postgres.Open(BuildDSN(cfg)), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access connection pool: %w", err)
	}
	sqlDB.SetMaxOpenConns(pool.MaxOpenConns)
	sqlDB.SetMaxIdleConns(pool.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(pool.ConnMaxLifetime)

	return db, nil
}
