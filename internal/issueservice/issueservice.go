// Package issueservice enforces the epic/story invariants on top of a
// storage backend. Backends are pure snapshot stores; every rule about IDs
// and cross-references lives here.
package issueservice

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"jira-lite/internal/issuestorage"
)

// Repository runs each operation as one read-modify-write cycle against its
// backend: read the full State, mutate the fresh copy, write it back.
// It keeps no state between calls and assumes a single writer.
type Repository struct {
	backend issuestorage.Backend
	logger  *slog.Logger
}

// New creates a Repository over backend. A nil logger discards output.
func New(backend issuestorage.Backend, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Repository{
		backend: backend,
		logger:  logger,
	}
}

// Init prepares the backend for first use if it supports initialization.
func (r *Repository) Init(ctx context.Context) error {
	if in, ok := r.backend.(issuestorage.Initializer); ok {
		return in.Init(ctx)
	}
	return nil
}

// ReadState returns the current snapshot.
func (r *Repository) ReadState(ctx context.Context) (*issuestorage.State, error) {
	return r.backend.Read(ctx)
}

// modify reads the State, applies fn and writes the result back.
// Nothing is written if fn returns an error.
func (r *Repository) modify(ctx context.Context, fn func(*issuestorage.State) error) error {
	state, err := r.backend.Read(ctx)
	if err != nil {
		return err
	}
	if err := fn(state); err != nil {
		return err
	}
	return r.backend.Write(ctx, state)
}

// CreateEpic stores epic under a newly allocated ID and returns the ID.
// The epic must not list any stories yet; use CreateStory to add them.
// An empty Status is stored as StatusOpen.
func (r *Repository) CreateEpic(ctx context.Context, epic issuestorage.Epic) (uint32, error) {
	epic.Status = defaultStatus(epic.Status)
	if err := validateStatus(epic.Status); err != nil {
		return 0, err
	}
	if len(epic.Stories) > 0 {
		return 0, fmt.Errorf("new epic cannot list stories (got %v)", epic.Stories)
	}
	var id uint32
	err := r.modify(ctx, func(state *issuestorage.State) error {
		var err error
		if id, err = state.NextID(); err != nil {
			return err
		}
		e := epic
		e.Stories = []uint32{}
		state.Epics[id] = &e
		return nil
	})
	if err != nil {
		return 0, err
	}
	r.logger.Debug("created epic", "epic_id", id)
	return id, nil
}

// CreateStory stores story under a newly allocated ID and appends the ID to
// the epic's story list. Returns ErrNotFound if the epic does not exist.
// An empty Status is stored as StatusOpen.
func (r *Repository) CreateStory(ctx context.Context, story issuestorage.Story, epicID uint32) (uint32, error) {
	story.Status = defaultStatus(story.Status)
	if err := validateStatus(story.Status); err != nil {
		return 0, err
	}
	var id uint32
	err := r.modify(ctx, func(state *issuestorage.State) error {
		epic, ok := state.Epics[epicID]
		if !ok {
			return epicNotFound(epicID)
		}
		var err error
		if id, err = state.NextID(); err != nil {
			return err
		}
		s := story
		state.Stories[id] = &s
		epic.Stories = append(epic.Stories, id)
		return nil
	})
	if err != nil {
		return 0, err
	}
	r.logger.Debug("created story", "story_id", id, "epic_id", epicID)
	return id, nil
}

// DeleteEpic removes the epic and every story listed under it.
func (r *Repository) DeleteEpic(ctx context.Context, epicID uint32) error {
	var removed int
	err := r.modify(ctx, func(state *issuestorage.State) error {
		epic, ok := state.Epics[epicID]
		if !ok {
			return epicNotFound(epicID)
		}
		for _, storyID := range epic.Stories {
			delete(state.Stories, storyID)
		}
		removed = len(epic.Stories)
		delete(state.Epics, epicID)
		return nil
	})
	if err != nil {
		return err
	}
	r.logger.Debug("deleted epic", "epic_id", epicID, "stories_removed", removed)
	return nil
}

// DeleteStory removes storyID from the epic's story list and from the
// store. The story must be listed under epicID; naming a different epic is
// an ErrNotFound even if the story exists elsewhere.
func (r *Repository) DeleteStory(ctx context.Context, epicID, storyID uint32) error {
	err := r.modify(ctx, func(state *issuestorage.State) error {
		epic, ok := state.Epics[epicID]
		if !ok {
			return epicNotFound(epicID)
		}
		if !epic.RemoveStory(storyID) {
			return fmt.Errorf("story %d is not listed under epic %d: %w", storyID, epicID, issuestorage.ErrNotFound)
		}
		delete(state.Stories, storyID)
		return nil
	})
	if err != nil {
		return err
	}
	r.logger.Debug("deleted story", "story_id", storyID, "epic_id", epicID)
	return nil
}

// UpdateEpicStatus sets the status of an existing epic.
func (r *Repository) UpdateEpicStatus(ctx context.Context, epicID uint32, status issuestorage.Status) error {
	if err := validateStatus(status); err != nil {
		return err
	}
	err := r.modify(ctx, func(state *issuestorage.State) error {
		epic, ok := state.Epics[epicID]
		if !ok {
			return epicNotFound(epicID)
		}
		epic.Status = status
		return nil
	})
	if err != nil {
		return err
	}
	r.logger.Debug("updated epic status", "epic_id", epicID, "status", status)
	return nil
}

// UpdateStoryStatus sets the status of an existing story.
func (r *Repository) UpdateStoryStatus(ctx context.Context, storyID uint32, status issuestorage.Status) error {
	if err := validateStatus(status); err != nil {
		return err
	}
	err := r.modify(ctx, func(state *issuestorage.State) error {
		story, ok := state.Stories[storyID]
		if !ok {
			return fmt.Errorf("story %d: %w", storyID, issuestorage.ErrNotFound)
		}
		story.Status = status
		return nil
	})
	if err != nil {
		return err
	}
	r.logger.Debug("updated story status", "story_id", storyID, "status", status)
	return nil
}

// Doctor checks the stored snapshot for broken references. With fix set
// and problems found, the repaired snapshot is written back.
func (r *Repository) Doctor(ctx context.Context, fix bool) ([]string, error) {
	state, err := r.backend.Read(ctx)
	if err != nil {
		return nil, err
	}
	problems := issuestorage.Doctor(state, fix)
	if fix && len(problems) > 0 {
		if err := r.backend.Write(ctx, state); err != nil {
			return nil, err
		}
		r.logger.Info("repaired database", "problems", len(problems))
	}
	return problems, nil
}

func epicNotFound(id uint32) error {
	return fmt.Errorf("epic %d: %w", id, issuestorage.ErrNotFound)
}

func defaultStatus(s issuestorage.Status) issuestorage.Status {
	if s == "" {
		return issuestorage.StatusOpen
	}
	return s
}

func validateStatus(s issuestorage.Status) error {
	if !s.IsValid() {
		return fmt.Errorf("invalid status %q", s)
	}
	return nil
}
