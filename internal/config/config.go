package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	DefaultConfigDir  = ".config/spaces"
	DefaultConfigFile = "config.yaml"

	DefaultAerospacePath = "/opt/homebrew/bin/aerospace"
	DefaultQueryTimeout  = "3s"
	DefaultFocusDelay    = "100ms"
	DefaultOrphanFocus   = "fresh"
	DefaultInterval      = "1s"
	DefaultServerAddr    = "127.0.0.1:7788"
	DefaultLogLevel      = "info"
)

// EnvPrefix is the prefix for environment overrides, e.g. SPACES_AEROSPACE_PATH
const EnvPrefix = "SPACES"

// Default returns a configuration with every field set to its default
func Default() *Config {
	return &Config{
		Aerospace: AerospaceConfig{
			Path:         DefaultAerospacePath,
			QueryTimeout: DefaultQueryTimeout,
			FocusDelay:   DefaultFocusDelay,
			OrphanFocus:  DefaultOrphanFocus,
		},
		Refresh: RefreshConfig{Interval: DefaultInterval},
		Server:  ServerConfig{Addr: DefaultServerAddr},
		Logging: LoggingConfig{Level: DefaultLogLevel},
	}
}

// LoadConfig loads configuration from the specified path or default location.
// If path is empty, uses ~/.config/spaces/config.yaml (or config.json) and
// falls back to defaults when neither exists.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return Default(), nil
		}
		yamlPath := filepath.Join(home, DefaultConfigDir, "config.yaml")
		jsonPath := filepath.Join(home, DefaultConfigDir, "config.json")

		if _, err := os.Stat(yamlPath); err == nil {
			path = yamlPath
		} else if _, err := os.Stat(jsonPath); err == nil {
			path = jsonPath
		} else {
			return Default(), nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	return LoadConfigFromBytes(data, ext)
}

// LoadConfigFromBytes loads configuration from raw bytes
// format should be "yaml" or "json"
func LoadConfigFromBytes(data []byte, format string) (*Config, error) {
	cfg := Default()

	switch format {
	case "yaml", "yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse YAML config: %w", err)
		}
	case "json":
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse JSON config: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config format: %s", format)
	}

	cfg.fillDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// GetConfigPath returns the default config file path
func GetConfigPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, DefaultConfigDir, DefaultConfigFile)
}

// NewViper returns a viper instance reading SPACES_* environment variables
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// ApplyOverrides copies values set through flags or the environment over the
// file configuration, then validates the result.
func (c *Config) ApplyOverrides(v *viper.Viper) error {
	overrides := map[string]*string{
		"aerospace.path":         &c.Aerospace.Path,
		"aerospace.querytimeout": &c.Aerospace.QueryTimeout,
		"aerospace.focusdelay":   &c.Aerospace.FocusDelay,
		"aerospace.orphanfocus":  &c.Aerospace.OrphanFocus,
		"refresh.interval":       &c.Refresh.Interval,
		"server.addr":            &c.Server.Addr,
		"logging.level":          &c.Logging.Level,
		"logging.file":           &c.Logging.File,
	}
	for key, field := range overrides {
		if v.IsSet(key) {
			if val := v.GetString(key); val != "" {
				*field = val
			}
		}
	}
	if v.IsSet("logging.console") {
		c.Logging.Console = v.GetBool("logging.console")
	}

	return c.Validate()
}

// QueryTimeout returns the per-query deadline
func (c *Config) QueryTimeout() time.Duration {
	return mustDuration(c.Aerospace.QueryTimeout, DefaultQueryTimeout)
}

// FocusDelay returns the delay between a space switch and a window focus
func (c *Config) FocusDelay() time.Duration {
	return mustDuration(c.Aerospace.FocusDelay, DefaultFocusDelay)
}

// RefreshInterval returns the polling interval for watch and serve
func (c *Config) RefreshInterval() time.Duration {
	return mustDuration(c.Refresh.Interval, DefaultInterval)
}

// ToYAML renders the configuration as YAML
func (c *Config) ToYAML() ([]byte, error) {
	return yaml.Marshal(c)
}

// fillDefaults restores defaults for fields a partial file left empty
func (c *Config) fillDefaults() {
	d := Default()
	if c.Aerospace.Path == "" {
		c.Aerospace.Path = d.Aerospace.Path
	}
	if c.Aerospace.QueryTimeout == "" {
		c.Aerospace.QueryTimeout = d.Aerospace.QueryTimeout
	}
	if c.Aerospace.FocusDelay == "" {
		c.Aerospace.FocusDelay = d.Aerospace.FocusDelay
	}
	if c.Aerospace.OrphanFocus == "" {
		c.Aerospace.OrphanFocus = d.Aerospace.OrphanFocus
	}
	if c.Refresh.Interval == "" {
		c.Refresh.Interval = d.Refresh.Interval
	}
	if c.Server.Addr == "" {
		c.Server.Addr = d.Server.Addr
	}
	if c.Logging.Level == "" {
		c.Logging.Level = d.Logging.Level
	}
}

func mustDuration(s, fallback string) time.Duration {
	if d, err := time.ParseDuration(s); err == nil {
		return d
	}
	d, _ := time.ParseDuration(fallback)
	return d
}
