// Package config provides configuration management for the roastery CLI.
package config

import "time"

// Config holds all CLI configuration options.
type Config struct {
	// DatabaseURL is the connection descriptor, e.g. sqlite:///roastery.db.
	DatabaseURL string `koanf:"database_url"`
	// Archive is the zip archive the load command reads by default.
	Archive string `koanf:"archive"`
	// Mapping is an optional YAML mapping table replacing the built-in one.
	Mapping      string     `koanf:"mapping"`
	OutputFormat string     `koanf:"output"`
	Log          LogConfig  `koanf:"log"`
	HTTP         HTTPConfig `koanf:"http"`
}

// LogConfig selects the slog handler.
type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// HTTPConfig holds configuration for the report server.
type HTTPConfig struct {
	Addr            string        `koanf:"addr"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// Default configuration values.
const (
	DefaultDatabaseURL     = "sqlite:///roastery.db"
	DefaultArchive         = "data.zip"
	DefaultOutput          = "auto" // Auto-detect: TTY=text, non-TTY=markdown
	DefaultLogLevel        = "info"
	DefaultLogFormat       = "text"
	DefaultHTTPAddr        = ":8000"
	DefaultShutdownTimeout = 5 * time.Second
)

// EnvPrefix prefixes every environment variable the loader reads.
const EnvPrefix = "ROASTERY_"

// Defaults returns the configuration used when nothing else is set.
func Defaults() *Config {
	return &Config{
		DatabaseURL:  DefaultDatabaseURL,
		Archive:      DefaultArchive,
		OutputFormat: DefaultOutput,
		Log: LogConfig{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
		HTTP: HTTPConfig{
			Addr:            DefaultHTTPAddr,
			ShutdownTimeout: DefaultShutdownTimeout,
		},
	}
}
