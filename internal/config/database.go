package config

import (
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"
)

type DBConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string

	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
}

var (
	dbConfig *DBConfig
	dbOnce   sync.Once
)

func LoadDBConfig() *DBConfig {
	dbOnce.Do(func() {
		// Pool sizing defaults follow the deployment tier; individual envs
		// override.
		maxIdle, maxOpen, lifetimeMin := 5, 10, 30
		if os.Getenv("APP_ENV") == "production" {
			maxIdle, maxOpen, lifetimeMin = 20, 200, 60
		}
		dbConfig = &DBConfig{
			Host:     os.Getenv("DB_HOST"),
			Port:     os.Getenv("DB_PORT"),
			User:     os.Getenv("DB_USER"),
			Password: os.Getenv("DB_PASSWORD"),
			Name:     os.Getenv("DB_NAME"),
			SSLMode:  os.Getenv("DB_SSLMODE"),

			MaxIdleConns:    envInt("DB_MAX_IDLE_CONNS", maxIdle),
			MaxOpenConns:    envInt("DB_MAX_OPEN_CONNS", maxOpen),
			ConnMaxLifetime: time.Duration(envInt("DB_CONN_MAX_LIFETIME_MIN", lifetimeMin)) * time.Minute,
		}
	})
	return dbConfig
}

// DSN builds the Postgres connection string for the gorm pgx driver.
func (c *DBConfig) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		c.Host, c.User, c.Password, c.Name, c.Port, c.SSLMode)
}

func envInt(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}
