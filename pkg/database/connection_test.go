package database

import (
	"testing"
	"time"

	"github.com/Keeferf/SYSC4806-AmazinBookstore/config"
	"github.com/stretchr/testify/assert"
)

func TestBuildDSN_Defaults(t *testing.T) {
	dsn := BuildDSN(&config.DatabaseConfig{})

	assert.Equal(t, "host=localhost user=postgres password= dbname=bookstore port=5432 sslmode=disable", dsn)
}

func TestBuildDSN_ExplicitValues(t *testing.T) {
	dsn := BuildDSN(&config.DatabaseConfig{
		Host:     "db.internal",
		Port:     "6543",
		User:     "shop",
		Password: "s3cret",
		DBName:   "amazin",
		SSLMode:  "require",
	})

	assert.Equal(t, "host=db.internal user=shop password=s3cret dbname=amazin port=6543 sslmode=require", dsn)
}

func TestParsePool(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		pool, err := ParsePool(&config.DatabaseConfig{})

		assert.NoError(t, err)
		assert.Equal(t, PoolSettings{MaxOpenConns: 20, MaxIdleConns: 5, ConnMaxLifetime: 30 * time.Minute}, pool)
	})

	t.Run("idle is capped by open", func(t *testing.T) {
		pool, err := ParsePool(&config.DatabaseConfig{MaxOpenConns: "4", MaxIdleConns: "10", ConnMaxLifetime: "5m"})

		assert.NoError(t, err)
		assert.Equal(t, 4, pool.MaxOpenConns)
		assert.Equal(t, 4, pool.MaxIdleConns)
		assert.Equal(t, 5*time.Minute, pool.ConnMaxLifetime)
	})

	invalid := []config.DatabaseConfig{
		{MaxOpenConns: "0"},
		{MaxOpenConns: "many"},
		{MaxIdleConns: "-1"},
		{ConnMaxLifetime: "forever"},
		{ConnMaxLifetime: "-5m"},
	}
	for _, cfg := range invalid {
		_, err := ParsePool(&cfg)
		assert.Error(t, err, "%+v", cfg)
	}
}

func TestNewConnection_RejectsBadPool(t *testing.T) {
	db, err := NewConnection(&config.DatabaseConfig{MaxOpenConns: "zero"})

	assert.Nil(t, db)
	assert.ErrorContains(t, err, "invalid max open connections")
}
