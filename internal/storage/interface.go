package storage

import (
	"errors"
	"strings"

	"github.com/dayloop/dayloop/internal/models"
)

// ErrNotFound is returned when a to-do with the requested ID does not exist.
var ErrNotFound = errors.New("todo not found")

// Provider is the persistence contract the scheduling core depends on.
// Mutations on a fetched Todo value are visible to subsequent fetches only
// after the corresponding Update/Save call succeeds.
type Provider interface {
	// Lifecycle
	Init() error
	Load() error
	Close() error

	// Todos
	AddTodo(models.Todo) error
	GetTodo(id string) (models.Todo, error)
	GetAllTodos() ([]models.Todo, error)
	GetCompletedTodos() ([]models.Todo, error)
	CountIncomplete() (int, error)
	UpdateTodo(models.Todo) error
	// SaveTodos persists a batch atomically. The daily rollover relies on
	// the batch being fully visible before any subsequent fetch.
	SaveTodos([]models.Todo) error
	DeleteTodo(id string) error

	// Settings
	GetSettings() (models.Settings, error)
	SaveSettings(models.Settings) error

	// Utils
	GetConfigPath() string
}

// NewProvider selects a provider by storage path: a .json suffix selects the
// single-file JSON store, everything else the SQLite store.
func NewProvider(path string) Provider {
	if strings.HasSuffix(path, ".json") {
		return NewJSONStore(path)
	}
	return NewSQLiteStore(path)
}
