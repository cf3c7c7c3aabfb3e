package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/dayloop/dayloop/internal/models"
)

type jsonData struct {
	Version  int                    `json:"version"`
	Settings models.Settings        `json:"settings"`
	Todos    map[string]models.Todo `json:"todos"`
}

// JSONStore is a single-file provider, handy for debugging and for tests
// that want a human-readable store. The agent reaches it from the reset
// timer, the action server, and the monitor loop at once, so every access
// goes through mu.
type JSONStore struct {
	path string

	mu   sync.RWMutex
	data *jsonData
}

func NewJSONStore(path string) *JSONStore {
	return &JSONStore{
		path: path,
	}
}

func (s *JSONStore) Init() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if _, err := os.Stat(s.path); err == nil {
		return fmt.Errorf("storage already initialized at %s", s.path)
	}

	s.data = &jsonData{
		Version:  1,
		Settings: models.DefaultSettings(),
		Todos:    make(map[string]models.Todo),
	}

	return s.save()
}

func (s *JSONStore) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("storage not initialized, run 'dayloop init' first")
		}
		return fmt.Errorf("failed to read storage: %w", err)
	}

	s.data = &jsonData{}
	if err := json.Unmarshal(raw, s.data); err != nil {
		return fmt.Errorf("failed to parse storage: %w", err)
	}

	if s.data.Todos == nil {
		s.data.Todos = make(map[string]models.Todo)
	}

	return nil
}

func (s *JSONStore) Close() error {
	return nil
}

// save writes through a temp file and rename. Callers hold mu.
func (s *JSONStore) save() error {
	raw, err := json.MarshalIndent(s.data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize storage: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0600); err != nil {
		return fmt.Errorf("failed to write storage: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace storage: %w", err)
	}

	return nil
}

func (s *JSONStore) AddTodo(todo models.Todo) error {
	if err := todo.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.data.Todos[todo.ID]; exists {
		return fmt.Errorf("todo %s already exists", todo.ID)
	}
	s.data.Todos[todo.ID] = todo
	return s.save()
}

func (s *JSONStore) GetTodo(id string) (models.Todo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	todo, ok := s.data.Todos[id]
	if !ok {
		return models.Todo{}, ErrNotFound
	}
	return todo, nil
}

func (s *JSONStore) GetAllTodos() ([]models.Todo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	todos := make([]models.Todo, 0, len(s.data.Todos))
	for _, todo := range s.data.Todos {
		todos = append(todos, todo)
	}
	models.SortTodos(todos)
	return todos, nil
}

func (s *JSONStore) GetCompletedTodos() ([]models.Todo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var todos []models.Todo
	for _, todo := range s.data.Todos {
		if todo.IsCompleted {
			todos = append(todos, todo)
		}
	}
	models.SortTodos(todos)
	return todos, nil
}

func (s *JSONStore) CountIncomplete() (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, todo := range s.data.Todos {
		if !todo.IsCompleted {
			count++
		}
	}
	return count, nil
}

func (s *JSONStore) UpdateTodo(todo models.Todo) error {
	if err := todo.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.data.Todos[todo.ID]; !ok {
		return ErrNotFound
	}
	s.data.Todos[todo.ID] = todo
	return s.save()
}

func (s *JSONStore) SaveTodos(todos []models.Todo) error {
	for _, todo := range todos {
		if err := todo.Validate(); err != nil {
			return err
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, todo := range todos {
		s.data.Todos[todo.ID] = todo
	}
	return s.save()
}

func (s *JSONStore) DeleteTodo(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.data.Todos[id]; !ok {
		return ErrNotFound
	}
	delete(s.data.Todos, id)
	return s.save()
}

func (s *JSONStore) GetSettings() (models.Settings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.data == nil {
		return models.Settings{}, fmt.Errorf("storage not loaded")
	}
	return s.data.Settings, nil
}

func (s *JSONStore) SaveSettings(settings models.Settings) error {
	if err := settings.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.Settings = settings
	return s.save()
}

func (s *JSONStore) GetConfigPath() string {
	return s.path
}
