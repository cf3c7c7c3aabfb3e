package cli

import (
	"fmt"
	"strings"

	"github.com/dayloop/dayloop/internal/config"
	"github.com/dayloop/dayloop/internal/events"
	"github.com/dayloop/dayloop/internal/logger"
	"github.com/dayloop/dayloop/internal/models"
	"github.com/dayloop/dayloop/internal/notify"
	"github.com/dayloop/dayloop/internal/reset"
	"github.com/dayloop/dayloop/internal/state"
	"github.com/dayloop/dayloop/internal/storage"
)

// Context carries the wired application services into every command's Run.
type Context struct {
	Store       storage.Provider
	State       *state.Store
	Bus         *events.Bus
	Coordinator *notify.Coordinator
	Scheduler   *reset.Scheduler
	Config      *config.Config
}

// RefreshBadge updates the badge and logs instead of failing; a stale badge
// should never abort a successful mutation.
func (c *Context) RefreshBadge() {
	if err := c.Coordinator.RefreshBadge(); err != nil {
		logger.Warn("Badge refresh failed", "error", err)
	}
}

// ResolveTodo finds a to-do by exact ID, then by ID prefix, then by
// case-insensitive title. Ambiguous prefixes and titles are errors.
func ResolveTodo(store storage.Provider, ref string) (models.Todo, error) {
	if todo, err := store.GetTodo(ref); err == nil {
		return todo, nil
	}

	todos, err := store.GetAllTodos()
	if err != nil {
		return models.Todo{}, fmt.Errorf("failed to load todos: %w", err)
	}

	var matches []models.Todo
	for _, t := range todos {
		if strings.HasPrefix(t.ID, ref) {
			matches = append(matches, t)
		}
	}
	if len(matches) == 0 {
		for _, t := range todos {
			if strings.EqualFold(t.Title, ref) {
				matches = append(matches, t)
			}
		}
	}

	switch len(matches) {
	case 1:
		return matches[0], nil
	case 0:
		return models.Todo{}, fmt.Errorf("no todo matches %q", ref)
	default:
		var ids []string
		for _, m := range matches {
			ids = append(ids, shortID(m.ID))
		}
		return models.Todo{}, fmt.Errorf("%q is ambiguous, matches %s", ref, strings.Join(ids, ", "))
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// FormatTodoLine renders one to-do for list output.
func FormatTodoLine(t models.Todo) string {
	mark := "[ ]"
	if t.IsCompleted {
		mark = "[x]"
	}
	at := "--:--"
	if t.ScheduledTime != "" {
		at = t.ScheduledTime
	}
	return fmt.Sprintf("%s %s  %-9s %s  %s", mark, shortID(t.ID), t.Category, at, t.Title)
}
