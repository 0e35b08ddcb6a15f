package cmd

import (
	"bytes"
	"path/filepath"
	"testing"

	"jira-lite/internal/config"
	"jira-lite/internal/config/yamlstore"
	"jira-lite/internal/issuestorage/memory"
	"jira-lite/internal/issueservice"

	"github.com/spf13/cobra"
)

// newTestApp returns an App over an in-memory backend with a config file
// in a temp dir.
func newTestApp(t *testing.T) (*App, *memory.Store, *bytes.Buffer) {
	t.Helper()
	dir := t.TempDir()
	store, err := yamlstore.New(filepath.Join(dir, config.FileName))
	if err != nil {
		t.Fatalf("creating config store: %v", err)
	}
	if err := config.ApplyDefaults(store); err != nil {
		t.Fatalf("writing defaults: %v", err)
	}

	backend := memory.New()
	var out bytes.Buffer
	app := &App{
		Repo:        issueservice.New(backend, nil),
		ConfigStore: store,
		ConfigDir:   dir,
		Out:         &out,
		Err:         &bytes.Buffer{},
	}
	return app, backend, &out
}

// execute runs cmd with args and returns its error.
func execute(t *testing.T, cmd *cobra.Command, args ...string) error {
	t.Helper()
	cmd.SetArgs(args)
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	return cmd.Execute()
}

// mustExecute runs cmd and fails the test on error.
func mustExecute(t *testing.T, cmd *cobra.Command, args ...string) {
	t.Helper()
	if err := execute(t, cmd, args...); err != nil {
		t.Fatalf("%s %v failed: %v", cmd.Name(), args, err)
	}
}
