package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// LoadConfig loads configuration with CLI flags > environment > config file
// > defaults precedence (flag overrides happen at the cobra layer).
// Environment variables use the CK_ prefix: CK_DATABASE_URL,
// CK_TEMPLATE_SYNTAX, CK_PRETTY.
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()

	defaults := DefaultConfig()
	v.SetDefault("database_url", defaults.DatabaseURL)
	v.SetDefault("template_syntax", defaults.TemplateSyntax)
	v.SetDefault("pretty", defaults.Pretty)

	v.SetEnvPrefix("CK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{
		DatabaseURL:    v.GetString("database_url"),
		TemplateSyntax: v.GetBool("template_syntax"),
		Pretty:         v.GetBool("pretty"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
