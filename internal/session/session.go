// Package session persists the bearer credential between console
// invocations. A session is created by login, read on every command
// and torn down on logout or whenever the server rejects the
// credential.
package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// State is the persisted session record.
type State struct {
	ServerURL string    `json:"server_url"`
	Username  string    `json:"username"`
	Token     string    `json:"token"`
	CreatedAt time.Time `json:"created_at"`
}

// Store reads and writes the session file.
type Store struct {
	path string
}

// NewStore creates a store at the given path. An empty path defaults
// to ~/.ghostlock/session.json.
func NewStore(path string) (*Store, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve home directory: %w", err)
		}
		path = filepath.Join(home, ".ghostlock", "session.json")
	}
	return &Store{path: path}, nil
}

// Save writes the session state. The file is created 0600 since it
// holds a live credential.
func (s *Store) Save(state State) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0600); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}
	return nil
}

// Load reads the session state. A missing file returns ok=false, not
// an error.
func (s *Store) Load() (State, bool, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return State{}, false, nil
	}
	if err != nil {
		return State{}, false, fmt.Errorf("failed to read session file: %w", err)
	}
	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		return State{}, false, fmt.Errorf("failed to parse session file: %w", err)
	}
	return state, state.Token != "", nil
}

// Clear removes the session file. Clearing an absent session is not
// an error.
func (s *Store) Clear() error {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove session file: %w", err)
	}
	return nil
}
