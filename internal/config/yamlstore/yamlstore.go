// Package yamlstore implements config.Store on top of a flat YAML file.
//
// Keys are written as literal strings ("db.path: db.json"), never nested.
// yaml.Marshal on map[string]string sorts keys, so the file is stable
// across writes and diffs cleanly.
package yamlstore

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"syscall"

	"jira-lite/internal/config"

	"gopkg.in/yaml.v3"
)

// YAMLStore implements config.Store using a YAML file on disk.
// Values set with SetInMemory shadow the file but are never persisted.
type YAMLStore struct {
	path string

	mu        sync.RWMutex
	disk      map[string]string
	overrides map[string]string
}

// New opens the config file at path. A missing or empty file yields an
// empty store; the file is created by the first Set.
func New(path string) (*YAMLStore, error) {
	disk, err := load(path)
	if err != nil {
		return nil, err
	}
	return &YAMLStore{
		path:      path,
		disk:      disk,
		overrides: make(map[string]string),
	}, nil
}

// Path returns the config file location.
func (s *YAMLStore) Path() string { return s.path }

func (s *YAMLStore) Get(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if v, ok := s.overrides[key]; ok {
		return v, true
	}
	v, ok := s.disk[key]
	return v, ok
}

// Set writes key=value to the file. An in-memory override for key is dropped.
func (s *YAMLStore) Set(key, value string) error {
	return s.update(func(m map[string]string) {
		m[key] = value
	}, key)
}

func (s *YAMLStore) SetInMemory(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.overrides[key] = value
}

// Unset removes key from the file and from the in-memory overrides.
func (s *YAMLStore) Unset(key string) error {
	return s.update(func(m map[string]string) {
		delete(m, key)
	}, key)
}

func (s *YAMLStore) All() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]string, len(s.disk)+len(s.overrides))
	for k, v := range s.disk {
		out[k] = v
	}
	for k, v := range s.overrides {
		out[k] = v
	}
	return out
}

// update holds an exclusive flock on "<path>.lock", reloads the file so
// writes from other processes are kept, applies fn, and rewrites the file.
func (s *YAMLStore) update(fn func(map[string]string), key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	lock, err := os.OpenFile(s.path+".lock", os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return fmt.Errorf("opening config lock: %w", err)
	}
	defer lock.Close()

	if err := syscall.Flock(int(lock.Fd()), syscall.LOCK_EX); err != nil {
		return fmt.Errorf("acquiring config lock: %w", err)
	}
	defer syscall.Flock(int(lock.Fd()), syscall.LOCK_UN)

	fresh, err := load(s.path)
	if err != nil {
		return err
	}
	fn(fresh)

	raw, err := yaml.Marshal(fresh)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := atomicWrite(s.path, raw); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	s.disk = fresh
	delete(s.overrides, key)
	return nil
}

func load(path string) (map[string]string, error) {
	m := make(map[string]string)
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return m, nil
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if len(raw) == 0 {
		return m, nil
	}
	if err := yaml.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}
	if m == nil {
		m = make(map[string]string)
	}
	return m, nil
}

func atomicWrite(path string, data []byte) error {
	suffix := make([]byte, 8)
	if _, err := rand.Read(suffix); err != nil {
		return fmt.Errorf("generating random suffix: %w", err)
	}
	tmp := path + ".tmp." + hex.EncodeToString(suffix)

	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}

var _ config.Store = (*YAMLStore)(nil)
