package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type options struct {
	envFiles []string
	required bool
	prefix   string
	environ  map[string]string
}

// Option tunes Load.
type Option func(*options)

// WithEnvFiles loads the given files instead of the default ".env". Missing
// files are an error.
func WithEnvFiles(paths ...string) Option {
	return func(o *options) {
		o.envFiles = paths
		o.required = true
	}
}

// WithPrefix only reads variables starting with prefix; tags omit it.
func WithPrefix(prefix string) Option {
	return func(o *options) { o.prefix = prefix }
}

// WithEnvironment parses vars instead of the process environment, for tests.
// Env files are not read.
func WithEnvironment(vars map[string]string) Option {
	return func(o *options) { o.environ = vars }
}

// Load parses the environment into a new T.
func Load[T any](opts ...Option) (T, error) {
	o := options{envFiles: []string{".env"}}
	for _, opt := range opts {
		opt(&o)
	}

	var cfg T

	if o.environ == nil {
		for _, path := range o.envFiles {
			if err := godotenv.Load(path); err != nil {
				if !o.required && errors.Is(err, os.ErrNotExist) {
					continue
				}
				return cfg, errors.Join(ErrLoadingEnvFile, fmt.Errorf("%s: %w", path, err))
			}
		}
	}

	if err := env.ParseWithOptions(&cfg, env.Options{
		Prefix:      o.prefix,
		Environment: o.environ,
	}); err != nil {
		return cfg, errors.Join(ErrParsingConfig, err)
	}
	return cfg, nil
}

// MustLoad works like Load but panics on failure.
func MustLoad[T any](opts ...Option) T {
	cfg, err := Load[T](opts...)
	if err != nil {
		panic(fmt.Sprintf("failed to load required configuration: %v", err))
	}
	return cfg
}
