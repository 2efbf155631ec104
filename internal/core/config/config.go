// Package config provides configuration management for the condkit tool.
package config

import "fmt"

// Config holds the settings shared by every condkit subcommand.
type Config struct {
	// DatabaseURL locates the condition-set store (sqlite:// or postgres://).
	DatabaseURL string

	// TemplateSyntax selects the {{path}} serialization convention by
	// default; individual commands can still override it per invocation.
	TemplateSyntax bool

	// Pretty controls whether emitted JSONLogic is indented.
	Pretty bool
}

// DefaultConfig returns configuration with default values: a local SQLite
// store, classic var-node serialization, indented output.
func DefaultConfig() *Config {
	return &Config{
		DatabaseURL:    "sqlite://condkit.db",
		TemplateSyntax: false,
		Pretty:         true,
	}
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("database_url must not be empty")
	}
	return nil
}
