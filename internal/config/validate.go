package config

import (
	"fmt"
	"sort"
	"strings"
)

// validValues maps known keys to their allowed values.
// An empty slice means any non-empty string is accepted.
var validValues = map[string][]string{
	KeyLogLevel: {"debug", "info", "warn", "error"},
	KeyDBPath:   {},
}

// ValidateValue checks a single key/value pair. Unknown keys are accepted.
func ValidateValue(key, value string) error {
	allowed, known := validValues[key]
	if !known {
		return nil
	}
	if len(allowed) == 0 {
		if strings.TrimSpace(value) == "" {
			return fmt.Errorf("%s: must not be empty", key)
		}
		return nil
	}
	if !contains(allowed, value) {
		return fmt.Errorf("%s: invalid value %q (allowed: %s)",
			key, value, strings.Join(allowed, ", "))
	}
	return nil
}

// Validate checks every known key present in s. The returned error lists
// all invalid values, one per line.
func Validate(s Store) error {
	errs := Problems(s)
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("config validation failed:\n  %s", strings.Join(errs, "\n  "))
}

// Problems returns one sorted message per invalid value in s.
func Problems(s Store) []string {
	var errs []string
	for key, val := range s.All() {
		if err := ValidateValue(key, val); err != nil {
			errs = append(errs, err.Error())
		}
	}
	sort.Strings(errs)
	return errs
}

func contains(ss []string, s string) bool {
	for _, v := range ss {
		if v == s {
			return true
		}
	}
	return false
}
