// Package config defines jl's settings: the core keys, their defaults,
// environment overrides, and validation. Storage of the settings file
// lives in the yamlstore subpackage.
package config

import (
	"log/slog"
	"path/filepath"
)

// DBPath returns the database file for a repository. A relative db.path
// is resolved against the .jira directory.
func DBPath(configDir string, s Store) string {
	p, ok := s.Get(KeyDBPath)
	if !ok || p == "" {
		p = DefaultDBFile
	}
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(configDir, p)
}

// LogLevel maps log.level to a slog level. Unknown values fall back to warn.
func LogLevel(s Store) slog.Level {
	v, _ := s.Get(KeyLogLevel)
	switch v {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}
