package filesystem

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"jira-lite/internal/issuestorage"
)

func TestContract(t *testing.T) {
	issuestorage.RunContractTests(t, func(t *testing.T) issuestorage.Backend {
		s := New(filepath.Join(t.TempDir(), "db.json"))
		if err := s.Init(context.Background()); err != nil {
			t.Fatalf("Init: %v", err)
		}
		return s
	})
}

func writeFile(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "db.json")
	if err := os.WriteFile(path, []byte(contents), 0644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}
	return path
}

func TestReadMissingFile(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "INVALID_PATH"))
	_, err := s.Read(context.Background())
	if err == nil {
		t.Fatal("Read of missing file should fail")
	}
	if !errors.Is(err, issuestorage.ErrStorage) {
		t.Errorf("error = %v, want ErrStorage", err)
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("error = %v, want it to wrap os.ErrNotExist", err)
	}
}

func TestReadInvalidJSON(t *testing.T) {
	s := New(writeFile(t, `{ "last_item_id": 0 epics: {} stories {} }`))
	_, err := s.Read(context.Background())
	if !errors.Is(err, issuestorage.ErrDeserialize) {
		t.Errorf("error = %v, want ErrDeserialize", err)
	}
}

func TestReadValidEmpty(t *testing.T) {
	s := New(writeFile(t, `{ "last_item_id": 0, "epics": {}, "stories": {} }`))
	state, err := s.Read(context.Background())
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if state.LastItemID != 0 || len(state.Epics) != 0 || len(state.Stories) != 0 {
		t.Errorf("expected empty state, got %+v", state)
	}
}

func TestReadPopulated(t *testing.T) {
	s := New(writeFile(t, `{
  "last_item_id": 3,
  "epics": {"1": {"name": "Epic", "description": "E", "status": "InProgress", "stories": [2, 3]}},
  "stories": {
    "2": {"name": "S2", "description": "", "status": "Open"},
    "3": {"name": "S3", "description": "x", "status": "Closed"}
  }
}`))
	state, err := s.Read(context.Background())
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	epic := state.Epics[1]
	if epic == nil {
		t.Fatal("epic 1 missing")
	}
	if epic.Status != issuestorage.StatusInProgress {
		t.Errorf("epic status = %q, want InProgress", epic.Status)
	}
	if !reflect.DeepEqual(epic.Stories, []uint32{2, 3}) {
		t.Errorf("epic stories = %v, want [2 3]", epic.Stories)
	}
	if state.Stories[3].Status != issuestorage.StatusClosed {
		t.Errorf("story 3 status = %q, want Closed", state.Stories[3].Status)
	}
}

func TestReadRejectsSchemaMismatch(t *testing.T) {
	tests := []struct {
		name     string
		contents string
	}{
		{"missing counter", `{"epics": {}, "stories": {}}`},
		{"missing epics", `{"last_item_id": 0, "stories": {}}`},
		{"null stories", `{"last_item_id": 0, "epics": {}, "stories": null}`},
		{"negative counter", `{"last_item_id": -1, "epics": {}, "stories": {}}`},
		{"unknown top-level field", `{"last_item_id": 0, "epics": {}, "stories": {}, "extra": 1}`},
		{"non-integer key", `{"last_item_id": 1, "epics": {"abc": {"name": "", "description": "", "status": "Open", "stories": []}}, "stories": {}}`},
		{"unknown status", `{"last_item_id": 1, "epics": {}, "stories": {"1": {"name": "", "description": "", "status": "Done"}}}`},
		{"epic missing stories", `{"last_item_id": 1, "epics": {"1": {"name": "", "description": "", "status": "Open"}}, "stories": {}}`},
		{"story missing name", `{"last_item_id": 1, "epics": {}, "stories": {"1": {"description": "", "status": "Open"}}}`},
		{"null epic", `{"last_item_id": 1, "epics": {"1": null}, "stories": {}}`},
		{"trailing data", `{"last_item_id": 0, "epics": {}, "stories": {}} {}`},
		{"empty file", ``},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(writeFile(t, tt.contents))
			_, err := s.Read(context.Background())
			if err == nil {
				t.Fatal("expected Read to fail")
			}
			if !errors.Is(err, issuestorage.ErrDeserialize) {
				t.Errorf("error = %v, want ErrDeserialize", err)
			}
		})
	}
}

func TestWriteThenRead(t *testing.T) {
	s := New(writeFile(t, `{ "last_item_id": 0, "epics": {}, "stories": {} }`))
	ctx := context.Background()

	state := issuestorage.NewState()
	state.LastItemID = 2
	state.Epics[1] = &issuestorage.Epic{Name: "epic 1", Description: "epic 1", Status: issuestorage.StatusOpen, Stories: []uint32{2}}
	state.Stories[2] = &issuestorage.Story{Name: "epic 1", Description: "epic 1", Status: issuestorage.StatusOpen}

	if err := s.Write(ctx, state); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := s.Read(ctx)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if !reflect.DeepEqual(got, state) {
		t.Errorf("Read = %+v, want %+v", got, state)
	}
}

func TestWriteLayout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db.json")
	s := New(path)

	state := issuestorage.NewState()
	state.LastItemID = 12
	state.Epics[12] = &issuestorage.Epic{Name: "n", Status: issuestorage.StatusResolved}

	if err := s.Write(context.Background(), state); err != nil {
		t.Fatalf("Write: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("output is not a JSON object: %v", err)
	}
	if len(raw) != 3 {
		t.Errorf("top-level fields = %d, want 3: %s", len(raw), data)
	}
	for _, key := range []string{"last_item_id", "epics", "stories"} {
		if _, ok := raw[key]; !ok {
			t.Errorf("missing top-level field %q", key)
		}
	}

	var epics map[string]map[string]json.RawMessage
	if err := json.Unmarshal(raw["epics"], &epics); err != nil {
		t.Fatalf("epics: %v", err)
	}
	epic, ok := epics["12"]
	if !ok {
		t.Fatalf("epic key should be the decimal string \"12\": %s", raw["epics"])
	}
	if string(epic["status"]) != `"Resolved"` {
		t.Errorf("status = %s, want \"Resolved\"", epic["status"])
	}
	// A nil story list is persisted as an empty array, not null.
	if string(epic["stories"]) != "[]" {
		t.Errorf("stories = %s, want []", epic["stories"])
	}
}

func TestWriteLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	s := New(filepath.Join(dir, "db.json"))
	if err := s.Write(context.Background(), issuestorage.NewState()); err != nil {
		t.Fatalf("Write: %v", err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	for _, e := range entries {
		if strings.Contains(e.Name(), ".tmp.") {
			t.Errorf("leftover temp file %s", e.Name())
		}
	}
}

func TestWriteUnwritableDir(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "missing", "dir", "db.json"))
	err := s.Write(context.Background(), issuestorage.NewState())
	if !errors.Is(err, issuestorage.ErrStorage) {
		t.Errorf("error = %v, want ErrStorage", err)
	}
}

func TestInitCreatesEmptyDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "db.json")
	s := New(path)
	if err := s.Init(context.Background()); err != nil {
		t.Fatalf("Init: %v", err)
	}
	state, err := s.Read(context.Background())
	if err != nil {
		t.Fatalf("Read after Init: %v", err)
	}
	if !reflect.DeepEqual(state, issuestorage.NewState()) {
		t.Errorf("Init should write the empty state, got %+v", state)
	}
}

func TestInitKeepsExistingDatabase(t *testing.T) {
	contents := `{"last_item_id": 5, "epics": {}, "stories": {}}`
	path := writeFile(t, contents)
	s := New(path)
	if err := s.Init(context.Background()); err != nil {
		t.Fatalf("Init: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(data) != contents {
		t.Errorf("Init overwrote existing database: %s", data)
	}
}
