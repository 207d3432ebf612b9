package config

// Config is the root configuration structure
type Config struct {
	Aerospace AerospaceConfig `yaml:"aerospace" json:"aerospace"`
	Refresh   RefreshConfig   `yaml:"refresh" json:"refresh"`
	Server    ServerConfig    `yaml:"server" json:"server"`
	Logging   LoggingConfig   `yaml:"logging" json:"logging"`
}

// AerospaceConfig describes how to reach the window manager's CLI
type AerospaceConfig struct {
	Path         string `yaml:"path" json:"path"`
	QueryTimeout string `yaml:"queryTimeout" json:"queryTimeout"` // Duration, e.g. "3s"
	FocusDelay   string `yaml:"focusDelay" json:"focusDelay"`     // Delay between space switch and window focus
	OrphanFocus  string `yaml:"orphanFocus" json:"orphanFocus"`   // "fresh" or "cached"
}

// RefreshConfig controls the polling cadence of watch and serve
type RefreshConfig struct {
	Interval string `yaml:"interval" json:"interval"`
}

// ServerConfig controls the HTTP API
type ServerConfig struct {
	Addr string `yaml:"addr" json:"addr"`
}

// LoggingConfig controls the log file and level
type LoggingConfig struct {
	Level   string `yaml:"level" json:"level"`
	File    string `yaml:"file,omitempty" json:"file,omitempty"`
	Console bool   `yaml:"console,omitempty" json:"console,omitempty"`
}
