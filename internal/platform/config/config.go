// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package config handles application-wide settings and environment parsing.

It leverages 'caarlos0/env' to map OS environment variables into a strongly-typed
Go struct, providing early validation and default values.

Usage:

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}

Architecture:

  - Immutability: Once loaded, configuration is read-only.
  - DI-Friendly: Passed to core components (catalog client, Redis, sessions) via constructors.
  - Zero Hidden State: No global variables are used to store config.

Optional backends (Redis, PostgreSQL) fall back to in-process implementations
when their URL is empty, so a bare `SESSION_SECRET=... go run ./cmd/web` works.
*/
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// # Configuration Schema

// Config holds all runtime configuration for the Charadex web server.
type Config struct {

	// Server settings
	ServerPort  string `env:"SERVER_PORT"  envDefault:"8080"`
	Environment string `env:"ENVIRONMENT"  envDefault:"development"`
	Debug       bool   `env:"DEBUG"        envDefault:"false"`

	// Remote character catalog
	CatalogBaseURL string        `env:"CATALOG_BASE_URL" envDefault:"https://rickandmortyapi.com/api"`
	CatalogTimeout time.Duration `env:"CATALOG_TIMEOUT"  envDefault:"10s"`

	// Key-Value store (Redis). Empty means in-memory.
	RedisURL string `env:"REDIS_URL"`

	// Relational Database (PostgreSQL) for diagnostic reports. Empty means log-only.
	DatabaseURL string `env:"DATABASE_URL"`

	// MigrationPath is the filesystem path to the SQL migrations directory.
	MigrationPath string `env:"MIGRATION_PATH" envDefault:"./data/migrations"`

	// Session signing and lifetimes
	SessionSecret  string        `env:"SESSION_SECRET,required,notEmpty"`
	SessionTTL     time.Duration `env:"SESSION_TTL"      envDefault:"720h"`
	SessionIdleTTL time.Duration `env:"SESSION_IDLE_TTL" envDefault:"30m"`

	// SupportEmail receives error reports from the render-failure fallback.
	SupportEmail string `env:"SUPPORT_EMAIL" envDefault:"support@example.com"`
}

// # Configuration Loading

// Load parses environment variables into a [Config] struct.
func Load() (*Config, error) {

	// Initialize an empty config struct
	cfg := &Config{}

	// Use the 'env' package to map environment variables to struct fields.
	// This will fail if any field marked with 'required' is missing.
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	if cfg.CatalogTimeout <= 0 {
		return nil, fmt.Errorf("config: CATALOG_TIMEOUT must be positive, got %s", cfg.CatalogTimeout)
	}

	return cfg, nil
}

// IsDevelopment reports whether the server is running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction reports whether the server is running in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
