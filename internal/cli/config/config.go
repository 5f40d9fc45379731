// Package config resolves kindling settings from defaults, the
// [tool.kindling] table of pyproject.toml, KINDLING_* environment variables
// and command-line flags, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/kindling-dev/kindling/internal/scaffold"
)

const (
	// PyprojectFile holds the [tool.kindling] table
	PyprojectFile = "pyproject.toml"
	// EnvPrefix is prepended to every environment override
	EnvPrefix = "KINDLING"

	toolKey = "tool.kindling"
)

// ErrNotInProject is returned by FindRoot when no pyproject.toml is found
var ErrNotInProject = errors.New("not in a kindling project (no pyproject.toml found)")

// Config represents the effective kindling configuration
type Config struct {
	Name      string     `mapstructure:"name"`
	Verbosity int        `mapstructure:"verbosity"`
	List      ListConfig `mapstructure:"list"`
	NoColor   bool       `mapstructure:"no_color"`

	// CI is set when the CI environment variable is present. It disables
	// colour and interactive prompts.
	CI bool `mapstructure:"-"`
}

// ListConfig controls the output of `kindling list`
type ListConfig struct {
	Status   bool `mapstructure:"status"`
	Subtasks bool `mapstructure:"subtasks"`
}

// flagKeys maps config keys to the flags that may override them
var flagKeys = map[string]string{
	"name":          "name",
	"no_color":      "no-color",
	"list.status":   "status",
	"list.subtasks": "subtasks",
}

// Load reads the configuration for the project at dir. flags may be nil;
// only flags the user actually set take precedence over other sources.
func Load(dir string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	v.SetDefault("name", scaffold.DefaultName)
	v.SetDefault("verbosity", 2)
	v.SetDefault("list.status", true)
	v.SetDefault("list.subtasks", true)
	v.SetDefault("no_color", false)

	path := filepath.Join(dir, PyprojectFile)
	if _, err := os.Stat(path); err == nil {
		file := viper.New()
		file.SetConfigFile(path)
		file.SetConfigType("toml")
		if err := file.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", PyprojectFile, err)
		}
		if tool := file.Sub(toolKey); tool != nil {
			if err := v.MergeConfigMap(tool.AllSettings()); err != nil {
				return nil, fmt.Errorf("failed to merge [%s]: %w", toolKey, err)
			}
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		for key, name := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("failed to bind flag %s: %w", name, err)
				}
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if _, ok := os.LookupEnv("CI"); ok {
		cfg.CI = true
		cfg.NoColor = true
	}

	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// FindRoot walks up from dir to the nearest directory holding pyproject.toml
func FindRoot(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, PyprojectFile)); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", ErrNotInProject
		}
		dir = parent
	}
}

func validateConfig(cfg *Config) error {
	if err := scaffold.ValidateProjectName(cfg.Name); err != nil {
		return fmt.Errorf("name: %w", err)
	}
	if cfg.Verbosity < 0 || cfg.Verbosity > 2 {
		return fmt.Errorf("verbosity must be 0, 1 or 2, got: %d", cfg.Verbosity)
	}
	return nil
}
