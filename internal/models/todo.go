package models

import (
	"fmt"
	"sort"
	"time"

	"github.com/dayloop/dayloop/internal/constants"
)

type Category string

const (
	// CategoryRequired to-dos gate the "all done" state for the day.
	CategoryRequired Category = "required"
	// CategorySuggested to-dos are optional extras.
	CategorySuggested Category = "suggested"
)

// Todo is a recurring daily task. Completion state rolls back to incomplete
// at the daily reset; ScheduledTime, Category and Order are never touched by
// the rollover.
type Todo struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Category      Category  `json:"category"`
	Order         int       `json:"order"`
	ScheduledTime string    `json:"scheduled_time,omitempty"` // HH:MM format, empty = unscheduled
	IsCompleted   bool      `json:"is_completed"`
	CreatedAt     time.Time `json:"created_at"`
}

func (t *Todo) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("todo id cannot be empty")
	}

	if t.Title == "" {
		return fmt.Errorf("todo title cannot be empty")
	}

	switch t.Category {
	case CategoryRequired, CategorySuggested:
	default:
		return fmt.Errorf("invalid category %q (expected required or suggested)", t.Category)
	}

	if t.ScheduledTime != "" {
		if _, err := time.Parse(constants.TimeFormat, t.ScheduledTime); err != nil {
			return fmt.Errorf("invalid scheduled time format (expected HH:MM): %w", err)
		}
	}

	return nil
}

// IsSchedulable reports whether the to-do should have a reminder registered:
// not completed and carrying a scheduled time.
func (t *Todo) IsSchedulable() bool {
	return !t.IsCompleted && t.ScheduledTime != ""
}

// ScheduledHourMinute returns the hour and minute components of the
// scheduled time. It returns an error when no time is set.
func (t *Todo) ScheduledHourMinute() (int, int, error) {
	if t.ScheduledTime == "" {
		return 0, 0, fmt.Errorf("todo %s has no scheduled time", t.ID)
	}
	parsed, err := time.Parse(constants.TimeFormat, t.ScheduledTime)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid scheduled time %q: %w", t.ScheduledTime, err)
	}
	return parsed.Hour(), parsed.Minute(), nil
}

// SortTodos orders to-dos by display order, then creation time, then ID.
// The scheduling core relies on this for deterministic iteration.
func SortTodos(todos []Todo) {
	sort.SliceStable(todos, func(i, j int) bool {
		if todos[i].Order != todos[j].Order {
			return todos[i].Order < todos[j].Order
		}
		if !todos[i].CreatedAt.Equal(todos[j].CreatedAt) {
			return todos[i].CreatedAt.Before(todos[j].CreatedAt)
		}
		return todos[i].ID < todos[j].ID
	})
}
