package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"jira-lite/internal/issuestorage"
)

func TestEpicCreate(t *testing.T) {
	app, backend, out := newTestApp(t)

	mustExecute(t, newEpicCmd(NewTestProvider(app)), "create", "Checkout", "-d", "pay for things")
	mustExecute(t, newEpicCmd(NewTestProvider(app)), "create", "Search")

	if got := out.String(); got != "1\n2\n" {
		t.Errorf("output = %q, want %q", got, "1\n2\n")
	}

	state, err := backend.Read(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	epic := state.Epics[1]
	if epic == nil || epic.Name != "Checkout" || epic.Description != "pay for things" {
		t.Fatalf("epic 1 = %+v", epic)
	}
	if epic.Status != issuestorage.StatusOpen || len(epic.Stories) != 0 {
		t.Errorf("new epic should be open with no stories, got %+v", epic)
	}
	if state.LastItemID != 2 {
		t.Errorf("LastItemID = %d, want 2", state.LastItemID)
	}
}

func TestEpicCreate_JSON(t *testing.T) {
	app, _, out := newTestApp(t)
	app.JSON = true

	mustExecute(t, newEpicCmd(NewTestProvider(app)), "create", "Checkout")

	var got MutationResult
	if err := json.Unmarshal(out.Bytes(), &got); err != nil {
		t.Fatalf("invalid JSON %q: %v", out.String(), err)
	}
	want := MutationResult{ID: 1, Kind: "epic", Action: "created"}
	if got != want {
		t.Errorf("result = %+v, want %+v", got, want)
	}
}

func TestEpicDelete(t *testing.T) {
	app, backend, out := newTestApp(t)
	mustExecute(t, newEpicCmd(NewTestProvider(app)), "create", "Checkout")
	mustExecute(t, newStoryCmd(NewTestProvider(app)), "create", "1", "Card")
	out.Reset()

	mustExecute(t, newEpicCmd(NewTestProvider(app)), "delete", "1")
	if !strings.Contains(out.String(), "Deleted epic 1") {
		t.Errorf("output = %q", out.String())
	}

	state, err := backend.Read(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(state.Epics) != 0 || len(state.Stories) != 0 {
		t.Errorf("epic and its story should be gone, got %+v", state)
	}

	err = execute(t, newEpicCmd(NewTestProvider(app)), "delete", "1")
	if !errors.Is(err, issuestorage.ErrNotFound) {
		t.Errorf("second delete err = %v, want ErrNotFound", err)
	}
}

func TestEpicStatus(t *testing.T) {
	app, backend, out := newTestApp(t)
	mustExecute(t, newEpicCmd(NewTestProvider(app)), "create", "Checkout")
	out.Reset()

	mustExecute(t, newEpicCmd(NewTestProvider(app)), "status", "1", "in-progress")
	if got := out.String(); got != "Epic 1 is now in-progress\n" {
		t.Errorf("output = %q", got)
	}

	state, err := backend.Read(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if state.Epics[1].Status != issuestorage.StatusInProgress {
		t.Errorf("status = %q, want InProgress", state.Epics[1].Status)
	}

	// Any status can follow any other.
	mustExecute(t, newEpicCmd(NewTestProvider(app)), "status", "1", "closed")
	mustExecute(t, newEpicCmd(NewTestProvider(app)), "status", "1", "Open")
}

func TestEpicStatus_Errors(t *testing.T) {
	app, _, _ := newTestApp(t)
	mustExecute(t, newEpicCmd(NewTestProvider(app)), "create", "Checkout")

	if err := execute(t, newEpicCmd(NewTestProvider(app)), "status", "1", "done"); err == nil {
		t.Error("expected error for unknown status")
	}
	if err := execute(t, newEpicCmd(NewTestProvider(app)), "status", "x", "open"); err == nil {
		t.Error("expected error for non-numeric ID")
	}
	err := execute(t, newEpicCmd(NewTestProvider(app)), "status", "9", "open")
	if !errors.Is(err, issuestorage.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}
