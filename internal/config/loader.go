package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// DataDirEnv overrides the default per-user data directory.
const DataDirEnv = "VIBESCOUT_DB_PATH"

// Loader loads configuration from file and environment variables.
type Loader interface {
	Load() (*Config, error)
}

type loader struct {
	configPath string
}

// NewLoader creates a configuration loader rooted at the user's home
// directory config file, $HOME/.vibescout/config.json, per spec.md §6.
func NewLoader() Loader {
	return &loader{}
}

// NewLoaderForPath creates a loader against an explicit config file path,
// used by tests and the --config CLI flag.
func NewLoaderForPath(path string) Loader {
	return &loader{configPath: path}
}

// Load reads configuration with priority (highest to lowest):
//  1. Environment variables (VIBESCOUT_*)
//  2. Config file ($HOME/.vibescout/config.json, or an explicit path)
//  3. Built-in defaults
func (l *loader) Load() (*Config, error) {
	v := viper.New()
	v.SetConfigType("json")

	if l.configPath != "" {
		v.SetConfigFile(l.configPath)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve home directory: %w", err)
		}
		v.SetConfigName("config")
		v.AddConfigPath(filepath.Join(home, ".vibescout"))
	}

	v.SetEnvPrefix("VIBESCOUT")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v, Default())

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("provider", d.Provider)
	v.SetDefault("server", d.Server)
	v.SetDefault("indexing", d.Indexing)
	v.SetDefault("search", d.Search)
	v.SetDefault("gitIntegration", d.Git)
	v.SetDefault("prompts", d.Prompts)
}

// DataDir returns the per-user data directory housing the vector store,
// respecting VIBESCOUT_DB_PATH.
func DataDir() (string, error) {
	if p := os.Getenv(DataDirEnv); p != "" {
		return p, nil
	}
	if testDir := os.Getenv("VIBESCOUT_TEST_MODE"); testDir != "" {
		return "./.lancedb_test", nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, ".vibescout", "data"), nil
}

// PluginDir returns the default plugin directory.
func PluginDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, ".vibescout", "plugins"), nil
}
