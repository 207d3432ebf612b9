package config

import (
	"fmt"
	"strings"
	"time"
)

var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Validate checks the configuration for errors
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Aerospace.Path) == "" {
		return fmt.Errorf("aerospace.path: executable path is required")
	}

	if err := validatePositiveDuration("aerospace.queryTimeout", c.Aerospace.QueryTimeout); err != nil {
		return err
	}
	if err := validateDuration("aerospace.focusDelay", c.Aerospace.FocusDelay); err != nil {
		return err
	}
	if err := validatePositiveDuration("refresh.interval", c.Refresh.Interval); err != nil {
		return err
	}

	switch c.Aerospace.OrphanFocus {
	case "fresh", "cached":
	default:
		return fmt.Errorf("aerospace.orphanFocus: must be 'fresh' or 'cached', got %q", c.Aerospace.OrphanFocus)
	}

	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr: address is required")
	}

	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		return fmt.Errorf("logging.level: unknown level %q", c.Logging.Level)
	}

	return nil
}

func validateDuration(field, value string) error {
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("%s: invalid duration %q: %w", field, value, err)
	}
	if d < 0 {
		return fmt.Errorf("%s: must not be negative", field)
	}
	return nil
}

func validatePositiveDuration(field, value string) error {
	if err := validateDuration(field, value); err != nil {
		return err
	}
	if d, _ := time.ParseDuration(value); d == 0 {
		return fmt.Errorf("%s: must be greater than zero", field)
	}
	return nil
}
