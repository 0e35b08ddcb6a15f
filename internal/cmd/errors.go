package cmd

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"jira-lite/internal/issuestorage"
)

// explain adds a hint to errors the user can act on.
// Not-found errors already name the missing ID and pass through unchanged.
func explain(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, issuestorage.ErrDeserialize):
		return fmt.Errorf("%w\nthe database file is corrupt; restore it from version control or fix it by hand", err)
	case errors.Is(err, issuestorage.ErrStorage) && errors.Is(err, os.ErrNotExist):
		return fmt.Errorf("%w\nrun `jl init` to create the database", err)
	}
	return err
}

// parseID parses a decimal epic or story ID.
func parseID(s string) (uint32, error) {
	n, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid ID %q: must be a non-negative integer", s)
	}
	return uint32(n), nil
}
