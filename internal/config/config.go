// Package config loads process configuration for the bridge. Values are
// resolved once at startup, with the following precedence (highest first):
// command-line flags, ANKI_MCP_* environment variables, an optional
// anki-mcp.yaml config file, built-in defaults.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config holds every process-wide setting. All fields are fixed for the
// process lifetime; nothing here is mutated after Load returns.
type Config struct {
	Port           string `mapstructure:"port"`
	Token          string `mapstructure:"token"`
	AnkiConnectURL string `mapstructure:"anki-connect-url"`
	Debug          bool   `mapstructure:"debug"`
}

// Load resolves the configuration. flags may be nil when no command-line
// flags should participate.
func Load(flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	v.SetDefault("port", "3000")
	v.SetDefault("token", "")
	v.SetDefault("anki-connect-url", "http://127.0.0.1:8765")
	v.SetDefault("debug", false)

	v.SetEnvPrefix("ANKI_MCP")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetConfigName("anki-mcp")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if dir, err := os.UserConfigDir(); err == nil {
		v.AddConfigPath(filepath.Join(dir, "anki-mcp"))
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, errors.Wrap(err, "read config file")
		}
	}

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return nil, errors.Wrap(err, "bind flags")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "unmarshal config")
	}
	return &cfg, nil
}
