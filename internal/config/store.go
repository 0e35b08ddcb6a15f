package config

// Store is flat key/value access to the jira-lite settings file.
// Dotted keys such as "db.path" are literal strings, not nested paths.
type Store interface {
	Get(key string) (string, bool)

	// Set stores key=value and persists the file.
	Set(key, value string) error

	// SetInMemory stores key=value for this process only. Defaults and
	// environment overrides go through here so they never reach disk.
	SetInMemory(key, value string)

	// Unset removes key and persists the file.
	Unset(key string) error

	// All returns a copy of every key/value pair.
	All() map[string]string
}
