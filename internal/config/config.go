// Package config loads service configuration from the environment.
package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

// Config holds everything the binaries read from the environment, prefixed
// with BANKMAIL_ (e.g. BANKMAIL_PROJECT).
type Config struct {
	// Port the API server listens on.
	Port string `default:"8080"`

	// Project is the Google Cloud project hosting Firestore. When empty the
	// API falls back to an in-memory queue and disables profile endpoints,
	// for local development only.
	Project string

	// MaxResults caps candidate messages per crawl.
	MaxResults int64 `split_words:"true" default:"20"`
}

// Load reads configuration from the environment.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("bankmail", &cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return &cfg, nil
}
