// Package testutil provides test utilities for jira-lite repository testing.
package testutil

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"reflect"

	"jira-lite/internal/issueservice"
	"jira-lite/internal/issuestorage"
)

// Generator drives random epic/story operations through a Repository and
// tracks the outcome it expects, so tests can compare the stored snapshot
// against an independent model.
type Generator struct {
	repo *issueservice.Repository
	rng  *rand.Rand

	lastID  uint32
	epics   map[uint32][]uint32 // epic ID -> story IDs in creation order
	owner   map[uint32]uint32   // story ID -> epic ID
	deleted []uint32            // IDs that existed once and were removed
}

// NewGenerator creates a generator over an empty repository.
// The seed makes runs reproducible.
func NewGenerator(repo *issueservice.Repository, seed int64) *Generator {
	return &Generator{
		repo:  repo,
		rng:   rand.New(rand.NewSource(seed)),
		epics: make(map[uint32][]uint32),
		owner: make(map[uint32]uint32),
	}
}

// LastID returns the highest ID the generator expects to have been allocated.
func (g *Generator) LastID() uint32 {
	return g.lastID
}

// EpicIDs returns the IDs of live epics in ascending order.
func (g *Generator) EpicIDs() []uint32 {
	return issuestorage.SortedIDs(g.epics)
}

// GenerateTree creates epics epics with perEpic stories each.
func (g *Generator) GenerateTree(ctx context.Context, epics, perEpic int) error {
	for i := 0; i < epics; i++ {
		epicID, err := g.createEpic(ctx)
		if err != nil {
			return err
		}
		for j := 0; j < perEpic; j++ {
			if _, err := g.createStory(ctx, epicID); err != nil {
				return err
			}
		}
	}
	return nil
}

// RandomOps performs n random operations, including ones that are expected
// to fail with ErrNotFound. It returns an error as soon as the repository
// result disagrees with the model.
func (g *Generator) RandomOps(ctx context.Context, n int) error {
	for i := 0; i < n; i++ {
		var err error
		switch g.rng.Intn(8) {
		case 0:
			_, err = g.createEpic(ctx)
		case 1, 2:
			err = g.randomCreateStory(ctx)
		case 3:
			err = g.randomDeleteEpic(ctx)
		case 4:
			err = g.randomDeleteStory(ctx)
		case 5:
			err = g.randomEpicStatus(ctx)
		case 6:
			err = g.randomStoryStatus(ctx)
		case 7:
			err = g.missingTargets(ctx)
		}
		if err != nil {
			return fmt.Errorf("op %d: %w", i, err)
		}
	}
	return nil
}

// Verify compares the stored snapshot with the model and runs the
// integrity check.
func (g *Generator) Verify(ctx context.Context) error {
	state, err := g.repo.ReadState(ctx)
	if err != nil {
		return err
	}
	if state.LastItemID != g.lastID {
		return fmt.Errorf("last_item_id = %d, want %d", state.LastItemID, g.lastID)
	}
	if len(state.Epics) != len(g.epics) {
		return fmt.Errorf("%d epics stored, want %d", len(state.Epics), len(g.epics))
	}
	for id, stories := range g.epics {
		epic, ok := state.Epics[id]
		if !ok {
			return fmt.Errorf("epic %d missing", id)
		}
		if !reflect.DeepEqual(epic.Stories, stories) {
			return fmt.Errorf("epic %d stories = %v, want %v", id, epic.Stories, stories)
		}
	}
	if len(state.Stories) != len(g.owner) {
		return fmt.Errorf("%d stories stored, want %d", len(state.Stories), len(g.owner))
	}
	for _, id := range g.deleted {
		if _, ok := state.Epics[id]; ok {
			return fmt.Errorf("deleted ID %d still present as epic", id)
		}
		if _, ok := state.Stories[id]; ok {
			return fmt.Errorf("deleted ID %d still present as story", id)
		}
	}
	if problems := issuestorage.Doctor(state, false); len(problems) > 0 {
		return fmt.Errorf("integrity problems: %v", problems)
	}
	return nil
}

func (g *Generator) createEpic(ctx context.Context) (uint32, error) {
	epic := issuestorage.NewEpic(fmt.Sprintf("Epic %d", g.lastID+1), "generated")
	id, err := g.repo.CreateEpic(ctx, epic)
	if err != nil {
		return 0, fmt.Errorf("create epic: %w", err)
	}
	if id != g.lastID+1 {
		return 0, fmt.Errorf("create epic returned ID %d, want %d", id, g.lastID+1)
	}
	g.lastID = id
	g.epics[id] = []uint32{}
	return id, nil
}

func (g *Generator) createStory(ctx context.Context, epicID uint32) (uint32, error) {
	story := issuestorage.NewStory(fmt.Sprintf("Story %d", g.lastID+1), "generated")
	id, err := g.repo.CreateStory(ctx, story, epicID)
	if err != nil {
		return 0, fmt.Errorf("create story under epic %d: %w", epicID, err)
	}
	if id != g.lastID+1 {
		return 0, fmt.Errorf("create story returned ID %d, want %d", id, g.lastID+1)
	}
	g.lastID = id
	g.epics[epicID] = append(g.epics[epicID], id)
	g.owner[id] = epicID
	return id, nil
}

func (g *Generator) pickEpic() (uint32, bool) {
	ids := g.EpicIDs()
	if len(ids) == 0 {
		return 0, false
	}
	return ids[g.rng.Intn(len(ids))], true
}

func (g *Generator) pickStory() (uint32, bool) {
	ids := issuestorage.SortedIDs(g.owner)
	if len(ids) == 0 {
		return 0, false
	}
	return ids[g.rng.Intn(len(ids))], true
}

func (g *Generator) randomCreateStory(ctx context.Context) error {
	epicID, ok := g.pickEpic()
	if !ok {
		_, err := g.createEpic(ctx)
		return err
	}
	_, err := g.createStory(ctx, epicID)
	return err
}

func (g *Generator) randomDeleteEpic(ctx context.Context) error {
	epicID, ok := g.pickEpic()
	if !ok {
		return nil
	}
	if err := g.repo.DeleteEpic(ctx, epicID); err != nil {
		return fmt.Errorf("delete epic %d: %w", epicID, err)
	}
	for _, storyID := range g.epics[epicID] {
		delete(g.owner, storyID)
		g.deleted = append(g.deleted, storyID)
	}
	delete(g.epics, epicID)
	g.deleted = append(g.deleted, epicID)
	return nil
}

func (g *Generator) randomDeleteStory(ctx context.Context) error {
	storyID, ok := g.pickStory()
	if !ok {
		return nil
	}
	epicID := g.owner[storyID]

	// Naming any other epic must be rejected.
	for _, other := range g.EpicIDs() {
		if other == epicID {
			continue
		}
		err := g.repo.DeleteStory(ctx, other, storyID)
		if !errors.Is(err, issuestorage.ErrNotFound) {
			return fmt.Errorf("delete story %d via wrong epic %d: got %v, want ErrNotFound", storyID, other, err)
		}
		break
	}

	if err := g.repo.DeleteStory(ctx, epicID, storyID); err != nil {
		return fmt.Errorf("delete story %d: %w", storyID, err)
	}
	stories := g.epics[epicID]
	for i, id := range stories {
		if id == storyID {
			g.epics[epicID] = append(stories[:i:i], stories[i+1:]...)
			break
		}
	}
	delete(g.owner, storyID)
	g.deleted = append(g.deleted, storyID)
	return nil
}

func (g *Generator) randomStatus() issuestorage.Status {
	return issuestorage.AllStatuses[g.rng.Intn(len(issuestorage.AllStatuses))]
}

func (g *Generator) randomEpicStatus(ctx context.Context) error {
	epicID, ok := g.pickEpic()
	if !ok {
		return nil
	}
	if err := g.repo.UpdateEpicStatus(ctx, epicID, g.randomStatus()); err != nil {
		return fmt.Errorf("update epic %d status: %w", epicID, err)
	}
	return nil
}

func (g *Generator) randomStoryStatus(ctx context.Context) error {
	storyID, ok := g.pickStory()
	if !ok {
		return nil
	}
	if err := g.repo.UpdateStoryStatus(ctx, storyID, g.randomStatus()); err != nil {
		return fmt.Errorf("update story %d status: %w", storyID, err)
	}
	return nil
}

// missingTargets calls operations with IDs that are not live (never
// allocated, or deleted earlier) and expects ErrNotFound from each.
func (g *Generator) missingTargets(ctx context.Context) error {
	missing := g.lastID + 1 + uint32(g.rng.Intn(100))
	if len(g.deleted) > 0 && g.rng.Intn(2) == 0 {
		missing = g.deleted[g.rng.Intn(len(g.deleted))]
	}

	checks := []struct {
		name string
		err  error
	}{
		{"create story", func() error {
			_, err := g.repo.CreateStory(ctx, issuestorage.NewStory("x", "x"), missing)
			return err
		}()},
		{"delete epic", g.repo.DeleteEpic(ctx, missing)},
		{"update epic status", g.repo.UpdateEpicStatus(ctx, missing, issuestorage.StatusClosed)},
		{"update story status", g.repo.UpdateStoryStatus(ctx, missing, issuestorage.StatusClosed)},
	}
	for _, c := range checks {
		if !errors.Is(c.err, issuestorage.ErrNotFound) {
			return fmt.Errorf("%s on missing ID %d: got %v, want ErrNotFound", c.name, missing, c.err)
		}
	}
	return nil
}

