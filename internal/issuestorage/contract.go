package issuestorage

import (
	"context"
	"reflect"
	"testing"
)

// RunContractTests runs the full contract test suite against a Backend implementation.
// Each storage engine should call this with its own factory function to ensure
// consistent behavior across all implementations. The factory must return a
// backend whose first Read yields the empty State.
func RunContractTests(t *testing.T, factory func(t *testing.T) Backend) {
	t.Run("ReadEmpty", func(t *testing.T) { testReadEmpty(t, factory(t)) })
	t.Run("RoundTrip", func(t *testing.T) { testRoundTrip(t, factory(t)) })
	t.Run("LastWriteWins", func(t *testing.T) { testLastWriteWins(t, factory(t)) })
	t.Run("ReadIsolation", func(t *testing.T) { testReadIsolation(t, factory(t)) })
	t.Run("WriteIsolation", func(t *testing.T) { testWriteIsolation(t, factory(t)) })
	t.Run("StoryOrder", func(t *testing.T) { testStoryOrder(t, factory(t)) })
	t.Run("WriteRejectsNilRecords", func(t *testing.T) { testWriteRejectsNilRecords(t, factory(t)) })
}

// sampleState returns a small snapshot with one epic owning two stories.
func sampleState() *State {
	s := NewState()
	s.LastItemID = 3
	s.Epics[1] = &Epic{Name: "epic 1", Description: "first epic", Status: StatusInProgress, Stories: []uint32{2, 3}}
	s.Stories[2] = &Story{Name: "story 2", Description: "first story", Status: StatusOpen}
	s.Stories[3] = &Story{Name: "story 3", Description: "second story", Status: StatusResolved}
	return s
}

func testReadEmpty(t *testing.T, b Backend) {
	got, err := b.Read(context.Background())
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if got.LastItemID != 0 {
		t.Errorf("LastItemID = %d, want 0", got.LastItemID)
	}
	if len(got.Epics) != 0 || len(got.Stories) != 0 {
		t.Errorf("expected empty state, got %d epics and %d stories", len(got.Epics), len(got.Stories))
	}
	if got.Epics == nil || got.Stories == nil {
		t.Error("empty state maps should be non-nil")
	}
}

func testRoundTrip(t *testing.T, b Backend) {
	ctx := context.Background()
	want := sampleState()
	if err := b.Write(ctx, want); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	got, err := b.Read(ctx)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("round trip mismatch:\n got  %+v\n want %+v", got, want)
	}
}

func testLastWriteWins(t *testing.T, b Backend) {
	ctx := context.Background()
	if err := b.Write(ctx, sampleState()); err != nil {
		t.Fatalf("first Write failed: %v", err)
	}
	second := NewState()
	second.LastItemID = 7
	second.Epics[7] = &Epic{Name: "later", Status: StatusClosed, Stories: []uint32{}}
	if err := b.Write(ctx, second); err != nil {
		t.Fatalf("second Write failed: %v", err)
	}

	got, err := b.Read(ctx)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if !reflect.DeepEqual(got, second) {
		t.Errorf("expected second snapshot, got %+v", got)
	}
}

func testReadIsolation(t *testing.T, b Backend) {
	ctx := context.Background()
	if err := b.Write(ctx, sampleState()); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	first, err := b.Read(ctx)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	first.LastItemID = 99
	first.Epics[1].Status = StatusClosed
	first.Epics[1].Stories = append(first.Epics[1].Stories, 42)
	delete(first.Stories, 2)

	second, err := b.Read(ctx)
	if err != nil {
		t.Fatalf("second Read failed: %v", err)
	}
	if !reflect.DeepEqual(second, sampleState()) {
		t.Errorf("mutating a read result leaked into the backend: %+v", second)
	}
}

func testWriteIsolation(t *testing.T, b Backend) {
	ctx := context.Background()
	state := sampleState()
	if err := b.Write(ctx, state); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	state.Stories[2].Name = "changed after write"
	state.Epics[1].Stories[0] = 100

	got, err := b.Read(ctx)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if !reflect.DeepEqual(got, sampleState()) {
		t.Errorf("mutating a written state leaked into the backend: %+v", got)
	}
}

func testStoryOrder(t *testing.T, b Backend) {
	ctx := context.Background()
	state := NewState()
	state.LastItemID = 10
	state.Epics[1] = &Epic{Name: "ordered", Status: StatusOpen, Stories: []uint32{9, 3, 10, 5}}
	for _, id := range []uint32{9, 3, 10, 5} {
		state.Stories[id] = &Story{Name: "s", Status: StatusOpen}
	}
	if err := b.Write(ctx, state); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	got, err := b.Read(ctx)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	want := []uint32{9, 3, 10, 5}
	if !reflect.DeepEqual(got.Epics[1].Stories, want) {
		t.Errorf("Stories = %v, want %v (insertion order)", got.Epics[1].Stories, want)
	}
}

func testWriteRejectsNilRecords(t *testing.T, b Backend) {
	ctx := context.Background()
	if err := b.Write(ctx, sampleState()); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	withNilEpic := sampleState()
	withNilEpic.Epics[4] = nil
	if err := b.Write(ctx, withNilEpic); err == nil {
		t.Error("expected error writing a nil epic")
	}
	withNilStory := sampleState()
	withNilStory.Stories[2] = nil
	if err := b.Write(ctx, withNilStory); err == nil {
		t.Error("expected error writing a nil story")
	}

	got, err := b.Read(ctx)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if !reflect.DeepEqual(got, sampleState()) {
		t.Errorf("rejected write changed the stored state: %+v", got)
	}
}
