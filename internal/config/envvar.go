package config

import (
	"os"
	"strings"
)

// Environment variables recognised by jl.
const (
	EnvDir      = "JL_DIR"       // path to the .jira directory (or its parent)
	EnvDB       = "JL_DB"        // database file, overrides db.path
	EnvLogLevel = "JL_LOG_LEVEL" // overrides log.level
	EnvJSON     = "JL_JSON"      // "1" or "true" forces JSON output
)

// ApplyEnvOverrides copies JL_DB and JL_LOG_LEVEL into s in memory.
// Overrides are never written back to the config file.
func ApplyEnvOverrides(s Store) {
	if db := os.Getenv(EnvDB); db != "" {
		s.SetInMemory(KeyDBPath, db)
	}
	if level := os.Getenv(EnvLogLevel); level != "" {
		s.SetInMemory(KeyLogLevel, strings.ToLower(level))
	}
}

// JSONFromEnv reports whether JL_JSON asks for JSON output.
func JSONFromEnv() bool {
	switch strings.ToLower(os.Getenv(EnvJSON)) {
	case "1", "true", "yes":
		return true
	}
	return false
}
