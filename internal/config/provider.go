package config

import "path/filepath"

// Dir and file names inside a repository.
const (
	DirName  = ".jira"
	FileName = "config.yaml"
)

// Paths captures resolved locations for config.
type Paths struct {
	ConfigDir  string // path to .jira directory
	ConfigFile string // path to .jira/config.yaml
}

// PathsFor returns the Paths rooted at the given .jira directory.
func PathsFor(configDir string) Paths {
	return Paths{
		ConfigDir:  configDir,
		ConfigFile: filepath.Join(configDir, FileName),
	}
}
