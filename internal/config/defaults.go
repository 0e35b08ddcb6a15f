package config

// Core keys understood by jl.
const (
	KeyDBPath   = "db.path"
	KeyLogLevel = "log.level"
)

// DefaultDBFile is the database file name used when db.path is unset.
const DefaultDBFile = "db.json"

// DefaultValues returns the value of every core key on a fresh repository.
func DefaultValues() map[string]string {
	return map[string]string{
		KeyDBPath:   DefaultDBFile,
		KeyLogLevel: "warn",
	}
}

// ApplyDefaults persists a default for every core key missing from s.
// It is used by "jl init" to write a complete config file.
func ApplyDefaults(s Store) error {
	all := s.All()
	for k, v := range DefaultValues() {
		if _, ok := all[k]; ok {
			continue
		}
		if err := s.Set(k, v); err != nil {
			return err
		}
	}
	return nil
}

// FillDefaults is the in-memory variant of ApplyDefaults, for reading a
// config file written by an older jl or edited by hand.
func FillDefaults(s Store) {
	all := s.All()
	for k, v := range DefaultValues() {
		if _, ok := all[k]; !ok {
			s.SetInMemory(k, v)
		}
	}
}
