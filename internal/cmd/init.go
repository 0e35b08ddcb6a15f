package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"jira-lite/internal/config"
	"jira-lite/internal/config/yamlstore"
	"jira-lite/internal/configservice"
	"jira-lite/internal/issuestorage/filesystem"
	"jira-lite/internal/issueservice"

	"github.com/spf13/cobra"
)

// InitResult is the JSON output of "jl init".
type InitResult struct {
	ConfigDir string `json:"config_dir"`
	DBPath    string `json:"db_path"`
}

// newInitCmd creates the init command.
// init does not use the provider's App since it creates the .jira directory.
func newInitCmd(provider *AppProvider) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a new jira-lite repository",
		Long: `Initialize a new jira-lite repository.

Creates .jira/config.yaml with default settings and an empty database.
The location is taken from --path, then JL_DIR, then the current directory.
An existing database is never overwritten, even with --force.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			asJSON := provider.JSONOutput || config.JSONFromEnv()
			return runInit(cmd.Context(), provider.out(), provider.Path, force, asJSON)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Rewrite missing config defaults even if .jira exists")

	return cmd
}

func runInit(ctx context.Context, out io.Writer, path string, force, asJSON bool) error {
	if path == "" {
		path = os.Getenv(config.EnvDir)
	}
	if path == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("getting current directory: %w", err)
		}
		path = cwd
	}

	dir, err := configservice.NormalizeBasePath(path)
	if err != nil {
		return err
	}
	paths := config.PathsFor(dir)

	if _, err := os.Stat(paths.ConfigFile); err == nil {
		if !force {
			return errors.New("jira-lite repository already exists (use --force to reinitialize)")
		}
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("checking %s: %w", paths.ConfigFile, err)
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating .jira directory: %w", err)
	}

	store, err := yamlstore.New(paths.ConfigFile)
	if err != nil {
		return fmt.Errorf("creating config store: %w", err)
	}
	if err := config.ApplyDefaults(store); err != nil {
		return fmt.Errorf("writing default config: %w", err)
	}
	config.ApplyEnvOverrides(store)

	dbPath := config.DBPath(dir, store)
	if err := issueservice.New(filesystem.New(dbPath), nil).Init(ctx); err != nil {
		return fmt.Errorf("creating database: %w", err)
	}

	if asJSON {
		return json.NewEncoder(out).Encode(InitResult{ConfigDir: dir, DBPath: dbPath})
	}
	fmt.Fprintf(out, "Initialized jira-lite repository in %s\n", dir)
	return nil
}
