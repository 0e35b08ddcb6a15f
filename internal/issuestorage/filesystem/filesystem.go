// Package filesystem implements issuestorage.Backend using a single JSON file.
// Every Write replaces the whole file with the encoded State.
package filesystem

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"jira-lite/internal/issuestorage"
)

// Store implements issuestorage.Backend backed by one JSON file.
type Store struct {
	path string
}

// New creates a Store that reads from and writes to path.
// The file is not touched until Init, Read or Write is called.
func New(path string) *Store {
	return &Store{path: path}
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// Init creates the parent directory and writes an empty State if the
// database file does not exist yet. An existing file is left untouched.
func (s *Store) Init(ctx context.Context) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("%w: creating database directory: %w", issuestorage.ErrStorage, err)
	}
	if _, err := os.Stat(s.path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("%w: checking %s: %w", issuestorage.ErrStorage, s.path, err)
	}
	return s.Write(ctx, issuestorage.NewState())
}

// wireState mirrors the on-disk layout. Pointer fields distinguish a missing
// or null field from a zero value so incomplete files are rejected.
type wireState struct {
	LastItemID *uint32                `json:"last_item_id"`
	Epics      *map[uint32]*wireEpic  `json:"epics"`
	Stories    *map[uint32]*wireStory `json:"stories"`
}

type wireEpic struct {
	Name        *string              `json:"name"`
	Description *string              `json:"description"`
	Status      *issuestorage.Status `json:"status"`
	Stories     *[]uint32            `json:"stories"`
}

type wireStory struct {
	Name        *string              `json:"name"`
	Description *string              `json:"description"`
	Status      *issuestorage.Status `json:"status"`
}

// Read loads the State from disk.
func (s *Store) Read(ctx context.Context) (*issuestorage.State, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %w", issuestorage.ErrStorage, s.path, err)
	}
	state, err := decode(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", issuestorage.ErrDeserialize, s.path, err)
	}
	return state, nil
}

func decode(data []byte) (*issuestorage.State, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	var w wireState
	if err := dec.Decode(&w); err != nil {
		return nil, err
	}
	if dec.More() {
		return nil, errors.New("trailing data after database object")
	}

	if w.LastItemID == nil {
		return nil, missingField("", "last_item_id")
	}
	if w.Epics == nil {
		return nil, missingField("", "epics")
	}
	if w.Stories == nil {
		return nil, missingField("", "stories")
	}

	state := issuestorage.NewState()
	state.LastItemID = *w.LastItemID

	for id, e := range *w.Epics {
		where := fmt.Sprintf("epic %d", id)
		switch {
		case e == nil:
			return nil, fmt.Errorf("%s: null record", where)
		case e.Name == nil:
			return nil, missingField(where, "name")
		case e.Description == nil:
			return nil, missingField(where, "description")
		case e.Status == nil:
			return nil, missingField(where, "status")
		case e.Stories == nil:
			return nil, missingField(where, "stories")
		}
		state.Epics[id] = &issuestorage.Epic{
			Name:        *e.Name,
			Description: *e.Description,
			Status:      *e.Status,
			Stories:     *e.Stories,
		}
	}

	for id, st := range *w.Stories {
		where := fmt.Sprintf("story %d", id)
		switch {
		case st == nil:
			return nil, fmt.Errorf("%s: null record", where)
		case st.Name == nil:
			return nil, missingField(where, "name")
		case st.Description == nil:
			return nil, missingField(where, "description")
		case st.Status == nil:
			return nil, missingField(where, "status")
		}
		state.Stories[id] = &issuestorage.Story{
			Name:        *st.Name,
			Description: *st.Description,
			Status:      *st.Status,
		}
	}

	return state, nil
}

func missingField(where, field string) error {
	if where == "" {
		return fmt.Errorf("missing field %q", field)
	}
	return fmt.Errorf("%s: missing field %q", where, field)
}

// Write encodes state and replaces the database file with it.
func (s *Store) Write(ctx context.Context, state *issuestorage.State) error {
	if err := state.CheckEntries(); err != nil {
		return fmt.Errorf("writing %s: %w", s.path, err)
	}
	epics := make(map[uint32]*issuestorage.Epic, len(state.Epics))
	for id, e := range state.Epics {
		if e.Stories == nil {
			cp := *e
			cp.Stories = []uint32{}
			e = &cp
		}
		epics[id] = e
	}
	stories := state.Stories
	if stories == nil {
		stories = map[uint32]*issuestorage.Story{}
	}
	out := issuestorage.State{
		LastItemID: state.LastItemID,
		Epics:      epics,
		Stories:    stories,
	}
	if err := atomicWriteJSON(s.path, &out); err != nil {
		return fmt.Errorf("%w: writing %s: %w", issuestorage.ErrStorage, s.path, err)
	}
	return nil
}

// atomicWriteJSON writes data to a temporary file next to path and renames
// it into place, so readers never observe a half-written database.
func atomicWriteJSON(path string, data interface{}) error {
	randBytes := make([]byte, 8)
	if _, err := rand.Read(randBytes); err != nil {
		return fmt.Errorf("generating random suffix: %w", err)
	}
	tmp := path + ".tmp." + hex.EncodeToString(randBytes)

	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0644)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(data); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}

	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}

// Compile-time check that Store implements issuestorage.Backend.
var _ issuestorage.Backend = (*Store)(nil)
