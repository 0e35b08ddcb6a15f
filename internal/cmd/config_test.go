package cmd

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"jira-lite/internal/config"
	"jira-lite/internal/config/yamlstore"
)

func TestConfigGet(t *testing.T) {
	app, _, out := newTestApp(t)

	mustExecute(t, newConfigCmd(NewTestProvider(app)), "get", "log.level")
	mustExecute(t, newConfigCmd(NewTestProvider(app)), "get", "custom.key")

	want := "warn\ncustom.key (not set)\n"
	if got := out.String(); got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestConfigGet_JSON(t *testing.T) {
	app, _, out := newTestApp(t)
	app.JSON = true

	mustExecute(t, newConfigCmd(NewTestProvider(app)), "get", "db.path")

	var got map[string]interface{}
	if err := json.Unmarshal(out.Bytes(), &got); err != nil {
		t.Fatalf("invalid JSON %q: %v", out.String(), err)
	}
	if got["value"] != config.DefaultDBFile || got["set"] != true {
		t.Errorf("result = %v", got)
	}
}

func TestConfigSet_Persists(t *testing.T) {
	app, _, out := newTestApp(t)

	mustExecute(t, newConfigCmd(NewTestProvider(app)), "set", "log.level", "debug")
	if got := out.String(); got != "Set log.level = debug\n" {
		t.Errorf("output = %q", got)
	}

	reloaded, err := yamlstore.New(filepath.Join(app.ConfigDir, config.FileName))
	if err != nil {
		t.Fatal(err)
	}
	if v, _ := reloaded.Get("log.level"); v != "debug" {
		t.Errorf("persisted log.level = %q, want debug", v)
	}
}

func TestConfigSet_RejectsInvalid(t *testing.T) {
	app, _, _ := newTestApp(t)
	path := filepath.Join(app.ConfigDir, config.FileName)
	before, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	err = execute(t, newConfigCmd(NewTestProvider(app)), "set", "log.level", "chatty")
	if err == nil || !strings.Contains(err.Error(), "log.level") {
		t.Fatalf("err = %v, want log.level validation error", err)
	}

	after, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(before) != string(after) {
		t.Errorf("config file changed on rejected set:\n%s", after)
	}
}

func TestConfigUnsetAndList(t *testing.T) {
	app, _, out := newTestApp(t)
	mustExecute(t, newConfigCmd(NewTestProvider(app)), "set", "custom.key", "v")
	mustExecute(t, newConfigCmd(NewTestProvider(app)), "unset", "custom.key")
	out.Reset()

	mustExecute(t, newConfigCmd(NewTestProvider(app)), "list")
	want := "Configuration:\n  db.path = db.json\n  log.level = warn\n"
	if got := out.String(); got != want {
		t.Errorf("list output = %q, want %q", got, want)
	}
}

func TestConfigValidate(t *testing.T) {
	app, _, out := newTestApp(t)

	mustExecute(t, newConfigCmd(NewTestProvider(app)), "validate")
	if !strings.Contains(out.String(), "Configuration is valid.") {
		t.Errorf("output = %q", out.String())
	}

	app.ConfigStore.SetInMemory("log.level", "loud")
	out.Reset()
	app.JSON = true
	if err := execute(t, newConfigCmd(NewTestProvider(app)), "validate"); err == nil {
		t.Fatal("expected validate to fail")
	}

	var got struct {
		Valid  bool     `json:"valid"`
		Issues []string `json:"issues"`
	}
	if err := json.Unmarshal(out.Bytes(), &got); err != nil {
		t.Fatalf("invalid JSON %q: %v", out.String(), err)
	}
	if got.Valid || len(got.Issues) != 1 {
		t.Errorf("result = %+v", got)
	}
}
