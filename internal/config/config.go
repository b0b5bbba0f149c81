// Package config loads service configuration from environment variables.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config holds everything the service reads from its environment.
//
// JWTSecret has no default on purpose: the signing secret must be provided
// explicitly (and is passed into the token service at construction, never
// read from ambient state elsewhere). Generate one with:
//
//	JWT_SECRET=$(openssl rand -hex 32)
type Config struct {
	Port      int    `env:"PORT" envDefault:"8080"`
	DBPath    string `env:"DB_PATH" envDefault:"data/users.db"`
	JWTSecret string `env:"JWT_SECRET,required,notEmpty"`
}

// Load parses the environment into a Config.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: parsing environment: %w", err)
	}
	return cfg, nil
}
