// Package tokenstore holds the local places an auth token can live: a file
// that survives restarts and an in-memory slot that dies with the process.
package tokenstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"travel_smart/internal/adapters/observability"
)

type session struct {
	Token   string    `json:"token"`
	SavedAt time.Time `json:"saved_at"`
}

// File persists the token as JSON. The directory is created with mode
// 0700 and the file is written with mode 0600.
type File struct {
	path string
}

func NewFile(path string) *File { return &File{path: path} }

// DefaultPath is $XDG_CONFIG_HOME/travel-smart/session.json, or the
// ~/.config equivalent.
func DefaultPath() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return filepath.Join(os.TempDir(), "travel-smart-session.json")
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "travel-smart", "session.json")
}

func (f *File) Path() string { return f.path }

func (f *File) Load(ctx context.Context) (string, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			observability.ObserveTokenStore("file", "miss")
			return "", nil
		}
		return "", fmt.Errorf("reading session file %s: %w", f.path, err)
	}
	var s session
	if err := json.Unmarshal(data, &s); err != nil {
		return "", fmt.Errorf("parsing session file %s: %w", f.path, err)
	}
	if s.Token == "" {
		observability.ObserveTokenStore("file", "miss")
		return "", nil
	}
	observability.ObserveTokenStore("file", "hit")
	return s.Token, nil
}

func (f *File) Save(ctx context.Context, token string) error {
	data, err := json.MarshalIndent(session{Token: token, SavedAt: time.Now().UTC()}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling session: %w", err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("creating session directory %s: %w", dir, err)
	}
	if err := os.WriteFile(f.path, data, 0600); err != nil {
		return fmt.Errorf("writing session file %s: %w", f.path, err)
	}
	observability.ObserveTokenStore("file", "save")
	return nil
}

func (f *File) Clear(ctx context.Context) error {
	observability.ObserveTokenStore("file", "clear")
	if err := os.Remove(f.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing session file %s: %w", f.path, err)
	}
	return nil
}

// Memory keeps the token for the life of the process.
type Memory struct {
	mu    sync.Mutex
	token string
}

func NewMemory() *Memory { return &Memory{} }

func (m *Memory) Load(ctx context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token, nil
}

func (m *Memory) Save(ctx context.Context, token string) error {
	m.mu.Lock()
	m.token = token
	m.mu.Unlock()
	return nil
}

func (m *Memory) Clear(ctx context.Context) error {
	m.mu.Lock()
	m.token = ""
	m.mu.Unlock()
	return nil
}

// Shelf hands out one Memory per key and keeps it for the life of the
// process, so a token outlives whoever first asked for it.
type Shelf struct {
	mu     sync.Mutex
	stores map[string]*Memory
}

func NewShelf() *Shelf { return &Shelf{stores: map[string]*Memory{}} }

func (s *Shelf) Store(key string) *Memory {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.stores[key]
	if !ok {
		m = NewMemory()
		s.stores[key] = m
	}
	return m
}
