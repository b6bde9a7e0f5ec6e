package model

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// ServerConfig holds settings for the HTTP server.
type ServerConfig struct {
	// Addr is the listen address, e.g. ":8080".
	Addr string `mapstructure:"addr" yaml:"addr"`

	// DBPath is the path to the SQLite database file.
	DBPath string `mapstructure:"db_path" yaml:"db_path"`

	// TokenSecret signs and verifies bearer tokens.
	TokenSecret string `mapstructure:"token_secret" yaml:"token_secret"`

	// TokenTTLHours is how long issued tokens stay valid.
	TokenTTLHours int `mapstructure:"token_ttl_hours" yaml:"token_ttl_hours"`

	// PageSize is the number of tasks per page in admin listings.
	PageSize int `mapstructure:"page_size" yaml:"page_size"`
}

// ClientConfig holds settings for the CLI client.
type ClientConfig struct {
	// ServerURL is the base URL of the taskflow server.
	ServerURL string `mapstructure:"server_url" yaml:"server_url"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	Server ServerConfig `mapstructure:"server" yaml:"server"`
	Client ClientConfig `mapstructure:"client" yaml:"client"`
}

// DefaultConfigPath returns the default path for the configuration file,
// located at ~/.config/taskflow/config.yaml.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "config.yaml")
	}
	return filepath.Join(home, ".config", "taskflow", "config.yaml")
}

// DefaultDBPath returns the default location of the SQLite database,
// next to the config file.
func DefaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "taskflow.db")
	}
	return filepath.Join(home, ".config", "taskflow", "taskflow.db")
}

// defaultAppConfig returns a sensible default configuration.
func defaultAppConfig() *AppConfig {
	return &AppConfig{
		Server: ServerConfig{
			Addr:          ":8080",
			DBPath:        DefaultDBPath(),
			TokenSecret:   "",
			TokenTTLHours: 24,
			PageSize:      9,
		},
		Client: ClientConfig{
			ServerURL: "http://127.0.0.1:8080",
		},
	}
}

// LoadConfig reads configuration from the given YAML file path using Viper.
// If the file does not exist, it returns a default configuration.
func LoadConfig(path string) (*AppConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	// Set defaults so missing keys resolve to sensible values.
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.db_path", DefaultDBPath())
	v.SetDefault("server.token_ttl_hours", 24)
	v.SetDefault("server.page_size", 9)
	v.SetDefault("client.server_url", "http://127.0.0.1:8080")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(*os.PathError); ok {
			return defaultAppConfig(), nil
		}
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return defaultAppConfig(), nil
		}
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	cfg := defaultAppConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	return cfg, nil
}

// SaveConfig writes the given configuration to a YAML file at path,
// creating parent directories if needed.
func SaveConfig(path string, cfg *AppConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("server", cfg.Server)
	v.Set("client", cfg.Client)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}
