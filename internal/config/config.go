// Package config resolves settings from defaults, a config file, the
// environment and command-line flags.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/chmouel/go-clover-coverage/internal/clover"
	"github.com/spf13/viper"
)

// Input formats.
const (
	FormatGo       = "go"
	FormatIstanbul = "istanbul"
)

// EnvPrefix prefixes every environment variable, e.g. CLOVER_OUTPUT.
const EnvPrefix = "CLOVER"

// Config holds the validated runtime configuration.
type Config struct {
	Profile    string   `mapstructure:"profile"`
	Format     string   `mapstructure:"format"`
	Output     string   `mapstructure:"output"`
	Src        string   `mapstructure:"src"`
	Exclude    []string `mapstructure:"exclude"`
	Badge      string   `mapstructure:"badge"`
	BadgeLabel string   `mapstructure:"badge-label"`
	Summary    bool     `mapstructure:"summary"`
	Verbose    bool     `mapstructure:"verbose"`
}

// Init wires config file lookup, environment variables and defaults into v.
func Init(v *viper.Viper, configFile string) {
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName(".clover") // Name of config file (without extension)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("profile", "coverage.out")
	v.SetDefault("format", FormatGo)
	v.SetDefault("output", clover.DefaultFile)
	v.SetDefault("src", ".")
	v.SetDefault("exclude", []string{})
	v.SetDefault("badge", "")
	v.SetDefault("badge-label", "coverage")
	v.SetDefault("summary", false)
	v.SetDefault("verbose", false)
}

// Load reads the config file if any, merges all sources and validates them.
func Load(v *viper.Viper) (*Config, error) {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			// Config file was found but another error was produced
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unable to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate normalizes the config and rejects unusable values.
func (c *Config) Validate() error {
	c.Format = strings.ToLower(strings.TrimSpace(c.Format))
	switch c.Format {
	case FormatGo, FormatIstanbul:
	default:
		return fmt.Errorf("invalid format %q: must be %s or %s", c.Format, FormatGo, FormatIstanbul)
	}

	if strings.TrimSpace(c.Profile) == "" {
		return errors.New("coverage input path must not be empty")
	}
	if c.Src == "" {
		c.Src = "."
	}
	if c.Output == "" {
		c.Output = clover.DefaultFile
	}
	if c.Output == c.Badge {
		return fmt.Errorf("report and badge cannot both be written to %s", c.Output)
	}
	return nil
}
