// Package state persists the small recovery-oriented key/value state that
// lives outside the to-do store: the last reset timestamp, completion
// requests that arrived before the store was ready, and the focused to-do
// slot used for open-on-tap routing.
package state

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

type data struct {
	LastResetDate      *time.Time `json:"last_reset_date,omitempty"`
	PendingCompletions []string   `json:"pending_completions,omitempty"`
	FocusedTodoID      string     `json:"focused_todo_id,omitempty"`
}

// Store is a single-file JSON key/value store. Writes go through a temp
// file and rename so a crash never leaves a torn file behind.
type Store struct {
	path string

	mu   sync.Mutex
	data data
}

func New(path string) *Store {
	return &Store{path: path}
}

// Load reads the state file. A missing file is not an error; the store
// starts empty.
func (s *Store) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			s.data = data{}
			return nil
		}
		return fmt.Errorf("failed to read state file: %w", err)
	}

	var d data
	if err := json.Unmarshal(raw, &d); err != nil {
		return fmt.Errorf("failed to parse state file: %w", err)
	}
	s.data = d
	return nil
}

func (s *Store) save() error {
	raw, err := json.MarshalIndent(s.data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize state: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0600); err != nil {
		return fmt.Errorf("failed to write state file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace state file: %w", err)
	}
	return nil
}

// LastResetDate returns the persisted reset timestamp, if any.
func (s *Store) LastResetDate() (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data.LastResetDate == nil {
		return time.Time{}, false
	}
	return *s.data.LastResetDate, true
}

func (s *Store) SetLastResetDate(t time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.LastResetDate = &t
	return s.save()
}

// PendingCompletions returns a copy of the queued completion IDs.
func (s *Store) PendingCompletions() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.data.PendingCompletions))
	copy(out, s.data.PendingCompletions)
	return out
}

// AddPendingCompletion queues a to-do ID whose completion could not be
// applied yet. Adding an already-queued ID is a no-op.
func (s *Store) AddPendingCompletion(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.data.PendingCompletions {
		if existing == id {
			return nil
		}
	}
	s.data.PendingCompletions = append(s.data.PendingCompletions, id)
	return s.save()
}

// RemovePendingCompletion drops a queued ID. Removing an unknown ID is a
// no-op.
func (s *Store) RemovePendingCompletion(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, existing := range s.data.PendingCompletions {
		if existing == id {
			s.data.PendingCompletions = append(s.data.PendingCompletions[:i], s.data.PendingCompletions[i+1:]...)
			return s.save()
		}
	}
	return nil
}

func (s *Store) FocusedTodoID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.FocusedTodoID
}

// SetFocusedTodoID records the to-do a tapped reminder should bring into
// view. An empty id clears the slot.
func (s *Store) SetFocusedTodoID(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.FocusedTodoID = id
	return s.save()
}
