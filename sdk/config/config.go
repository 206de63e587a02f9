// Package config provides the public environment configuration loader.
// These types are re-exported from the internal config package to provide
// a stable public API for external consumers.
package config

import (
	internal "github.com/thand-io/britive/internal/config"
	"github.com/thand-io/britive/internal/models"
)

// Config is the environment derived client configuration.
type Config = internal.Config

// LogEntry is a redacted copy of a recent log record.
type LogEntry = models.LogEntry

// Load reads BRITIVE_* variables and an optional .env file, and configures
// logging.
func Load() (*Config, error) {
	return internal.Load()
}

func DefaultConfig() *Config {
	return internal.DefaultConfig()
}

// RegisterSecret masks value in every subsequent log record.
func RegisterSecret(value string) {
	internal.RegisterSecret(value)
}

func Redact(s string) string {
	return internal.Redact(s)
}

// RecentEvents returns up to count of the most recent redacted log records.
func RecentEvents(count int) []*LogEntry {
	return internal.RecentEvents(count)
}
