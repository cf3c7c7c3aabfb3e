package state

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func newTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "state.json")
	s := New(path)
	if err := s.Load(); err != nil {
		t.Fatalf("Load() failed on missing file: %v", err)
	}
	return s, path
}

func TestLoadMissingFile(t *testing.T) {
	s, _ := newTestStore(t)

	if _, ok := s.LastResetDate(); ok {
		t.Error("LastResetDate() reported a value for an empty store")
	}
	if got := s.PendingCompletions(); len(got) != 0 {
		t.Errorf("PendingCompletions() = %v, want empty", got)
	}
}

func TestLastResetDateRoundTrip(t *testing.T) {
	s, path := newTestStore(t)

	reset := time.Date(2026, 3, 10, 4, 0, 0, 0, time.UTC)
	if err := s.SetLastResetDate(reset); err != nil {
		t.Fatalf("SetLastResetDate() failed: %v", err)
	}

	// A fresh store reading the same file sees the persisted value.
	reloaded := New(path)
	if err := reloaded.Load(); err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	got, ok := reloaded.LastResetDate()
	if !ok {
		t.Fatal("LastResetDate() missing after reload")
	}
	if !got.Equal(reset) {
		t.Errorf("LastResetDate() = %v, want %v", got, reset)
	}
}

func TestPendingCompletions(t *testing.T) {
	s, path := newTestStore(t)

	if err := s.AddPendingCompletion("t1"); err != nil {
		t.Fatalf("AddPendingCompletion() failed: %v", err)
	}
	if err := s.AddPendingCompletion("t2"); err != nil {
		t.Fatalf("AddPendingCompletion() failed: %v", err)
	}
	// Duplicate add is a no-op.
	if err := s.AddPendingCompletion("t1"); err != nil {
		t.Fatalf("duplicate AddPendingCompletion() failed: %v", err)
	}

	if got := s.PendingCompletions(); len(got) != 2 {
		t.Errorf("PendingCompletions() = %v, want 2 entries", got)
	}

	if err := s.RemovePendingCompletion("t1"); err != nil {
		t.Fatalf("RemovePendingCompletion() failed: %v", err)
	}
	// Removing an unknown id is a no-op.
	if err := s.RemovePendingCompletion("missing"); err != nil {
		t.Fatalf("RemovePendingCompletion(missing) failed: %v", err)
	}

	reloaded := New(path)
	if err := reloaded.Load(); err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	got := reloaded.PendingCompletions()
	if len(got) != 1 || got[0] != "t2" {
		t.Errorf("PendingCompletions() after reload = %v, want [t2]", got)
	}
}

func TestFocusedTodoID(t *testing.T) {
	s, _ := newTestStore(t)

	if err := s.SetFocusedTodoID("t7"); err != nil {
		t.Fatalf("SetFocusedTodoID() failed: %v", err)
	}
	if got := s.FocusedTodoID(); got != "t7" {
		t.Errorf("FocusedTodoID() = %q, want %q", got, "t7")
	}

	if err := s.SetFocusedTodoID(""); err != nil {
		t.Fatalf("clearing FocusedTodoID failed: %v", err)
	}
	if got := s.FocusedTodoID(); got != "" {
		t.Errorf("FocusedTodoID() = %q, want empty", got)
	}
}

func TestLoadCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	if err := os.WriteFile(path, []byte("{not json"), 0600); err != nil {
		t.Fatal(err)
	}

	s := New(path)
	if err := s.Load(); err == nil {
		t.Error("Load() succeeded on corrupt file, want error")
	}
}
