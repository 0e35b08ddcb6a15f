// Package issuestorage defines the epic/story record model and the interface
// for whole-snapshot persistence in jira-lite.
// All storage engines (filesystem, memory) implement Backend.
package issuestorage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
)

// Sentinel errors returned by Backend implementations and the issue service.
var (
	ErrNotFound     = errors.New("not found")
	ErrStorage      = errors.New("storage unavailable")
	ErrDeserialize  = errors.New("malformed database content")
	ErrIDsExhausted = errors.New("item IDs exhausted")
)

// Status is a free-form workflow label. Any status may be set from any other.
type Status string

// The string values are the on-disk tags and must not change.
const (
	StatusOpen       Status = "Open"
	StatusInProgress Status = "InProgress"
	StatusResolved   Status = "Resolved"
	StatusClosed     Status = "Closed"
)

// AllStatuses lists every status in display order.
var AllStatuses = []Status{StatusOpen, StatusInProgress, StatusResolved, StatusClosed}

// IsValid reports whether s is one of the four known statuses.
func (s Status) IsValid() bool {
	switch s {
	case StatusOpen, StatusInProgress, StatusResolved, StatusClosed:
		return true
	}
	return false
}

// Display returns the status in lower-case CLI form (e.g. "in-progress").
func (s Status) Display() string {
	switch s {
	case StatusOpen:
		return "open"
	case StatusInProgress:
		return "in-progress"
	case StatusResolved:
		return "resolved"
	case StatusClosed:
		return "closed"
	default:
		return string(s)
	}
}

// UnmarshalJSON rejects tags other than the four known statuses.
func (s *Status) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("status must be a string, got %s", string(data))
	}
	st := Status(raw)
	if !st.IsValid() {
		return fmt.Errorf("unknown status %q", raw)
	}
	*s = st
	return nil
}

// ParseStatus converts user input to a Status.
// Accepts the on-disk tags as well as case-insensitive CLI forms
// ("open", "in-progress", "in_progress", "inprogress", "resolved", "closed").
func ParseStatus(s string) (Status, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "open":
		return StatusOpen, nil
	case "in-progress", "in_progress", "inprogress":
		return StatusInProgress, nil
	case "resolved":
		return StatusResolved, nil
	case "closed":
		return StatusClosed, nil
	default:
		return "", fmt.Errorf("unknown status %q (want open, in-progress, resolved or closed)", s)
	}
}

// Epic groups zero or more stories. Stories holds story IDs in creation order;
// it is only changed by the issue service when stories are created or deleted.
type Epic struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Status      Status   `json:"status"`
	Stories     []uint32 `json:"stories"`
}

// NewEpic returns an open epic with no stories.
func NewEpic(name, description string) Epic {
	return Epic{
		Name:        name,
		Description: description,
		Status:      StatusOpen,
		Stories:     []uint32{},
	}
}

// HasStory reports whether id is listed under the epic.
func (e *Epic) HasStory(id uint32) bool {
	return e.storyIndex(id) >= 0
}

func (e *Epic) storyIndex(id uint32) int {
	for i, sid := range e.Stories {
		if sid == id {
			return i
		}
	}
	return -1
}

// RemoveStory drops the first occurrence of id from the story list and
// reports whether it was present.
func (e *Epic) RemoveStory(id uint32) bool {
	i := e.storyIndex(id)
	if i < 0 {
		return false
	}
	e.Stories = append(e.Stories[:i], e.Stories[i+1:]...)
	return true
}

// Story is a child record of exactly one epic. It does not record its owner.
type Story struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Status      Status `json:"status"`
}

// NewStory returns an open story.
func NewStory(name, description string) Story {
	return Story{
		Name:        name,
		Description: description,
		Status:      StatusOpen,
	}
}

// State is the full persisted snapshot. LastItemID is the highest ID ever
// allocated; epics and stories share one ID space and IDs are never reused.
type State struct {
	LastItemID uint32            `json:"last_item_id"`
	Epics      map[uint32]*Epic  `json:"epics"`
	Stories    map[uint32]*Story `json:"stories"`
}

// NewState returns the empty snapshot.
func NewState() *State {
	return &State{
		Epics:   make(map[uint32]*Epic),
		Stories: make(map[uint32]*Story),
	}
}

// NextID allocates a fresh ID by bumping LastItemID. Once the counter is at
// math.MaxUint32 it returns ErrIDsExhausted and leaves the state alone.
func (s *State) NextID() (uint32, error) {
	if s.LastItemID == math.MaxUint32 {
		return 0, fmt.Errorf("last_item_id is %d: %w", s.LastItemID, ErrIDsExhausted)
	}
	s.LastItemID++
	return s.LastItemID, nil
}

// Clone returns a deep copy of the snapshot.
func (s *State) Clone() *State {
	out := &State{
		LastItemID: s.LastItemID,
		Epics:      make(map[uint32]*Epic, len(s.Epics)),
		Stories:    make(map[uint32]*Story, len(s.Stories)),
	}
	for id, epic := range s.Epics {
		if epic == nil {
			out.Epics[id] = nil
			continue
		}
		e := *epic
		e.Stories = append([]uint32{}, epic.Stories...)
		out.Epics[id] = &e
	}
	for id, story := range s.Stories {
		if story == nil {
			out.Stories[id] = nil
			continue
		}
		st := *story
		out.Stories[id] = &st
	}
	return out
}

// CheckEntries reports the first epic or story key that maps to a nil
// record. Backends refuse to write such a snapshot.
func (s *State) CheckEntries() error {
	for _, id := range SortedIDs(s.Epics) {
		if s.Epics[id] == nil {
			return fmt.Errorf("epic %d has a nil record", id)
		}
	}
	for _, id := range SortedIDs(s.Stories) {
		if s.Stories[id] == nil {
			return fmt.Errorf("story %d has a nil record", id)
		}
	}
	return nil
}

// Backend defines whole-snapshot persistence of State.
// Read fails with ErrStorage if the medium is unreadable and with
// ErrDeserialize if its content does not match the State schema.
// Write fails with ErrStorage if the medium cannot be written, and with a
// plain error (nothing written) if CheckEntries rejects the snapshot.
type Backend interface {
	Read(ctx context.Context) (*State, error)
	Write(ctx context.Context, state *State) error
}

// Initializer is implemented by backends that need setup (directories,
// an empty database file) before the first Read.
type Initializer interface {
	Init(ctx context.Context) error
}
