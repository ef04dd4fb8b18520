// Package config loads typed configuration from environment variables.
//
// Values come from the process environment, optionally seeded from .env
// files through github.com/joho/godotenv (existing variables always win),
// and are parsed into a struct with github.com/caarlos0/env/v11 tags:
//
//	type Config struct {
//		LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
//		HTTP     httpserver.Config
//	}
//
//	cfg, err := config.Load[Config]()
//
// MustLoad panics instead of returning the error, for use in main.
package config
