package models

import (
	"testing"
	"time"
)

func validTodo() Todo {
	return Todo{
		ID:        "t1",
		Title:     "Water the plants",
		Category:  CategoryRequired,
		CreatedAt: time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC),
	}
}

func TestTodoValidate(t *testing.T) {
	t.Run("valid todo", func(t *testing.T) {
		todo := validTodo()
		if err := todo.Validate(); err != nil {
			t.Errorf("Validate() returned unexpected error: %v", err)
		}
	})

	t.Run("empty id", func(t *testing.T) {
		todo := validTodo()
		todo.ID = ""
		if err := todo.Validate(); err == nil {
			t.Error("expected error for empty id")
		}
	})

	t.Run("empty title", func(t *testing.T) {
		todo := validTodo()
		todo.Title = ""
		if err := todo.Validate(); err == nil {
			t.Error("expected error for empty title")
		}
	})

	t.Run("invalid category", func(t *testing.T) {
		todo := validTodo()
		todo.Category = "sometimes"
		if err := todo.Validate(); err == nil {
			t.Error("expected error for invalid category")
		}
	})

	t.Run("invalid scheduled time", func(t *testing.T) {
		todo := validTodo()
		todo.ScheduledTime = "25:61"
		if err := todo.Validate(); err == nil {
			t.Error("expected error for invalid scheduled time")
		}
	})

	t.Run("valid scheduled time", func(t *testing.T) {
		todo := validTodo()
		todo.ScheduledTime = "08:30"
		if err := todo.Validate(); err != nil {
			t.Errorf("Validate() returned unexpected error: %v", err)
		}
	})
}

func TestIsSchedulable(t *testing.T) {
	cases := []struct {
		name          string
		scheduledTime string
		completed     bool
		want          bool
	}{
		{"scheduled and incomplete", "08:00", false, true},
		{"scheduled but completed", "08:00", true, false},
		{"unscheduled", "", false, false},
		{"unscheduled and completed", "", true, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			todo := validTodo()
			todo.ScheduledTime = tc.scheduledTime
			todo.IsCompleted = tc.completed
			if got := todo.IsSchedulable(); got != tc.want {
				t.Errorf("IsSchedulable() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestScheduledHourMinute(t *testing.T) {
	todo := validTodo()
	todo.ScheduledTime = "21:45"

	hour, minute, err := todo.ScheduledHourMinute()
	if err != nil {
		t.Fatalf("ScheduledHourMinute() failed: %v", err)
	}
	if hour != 21 || minute != 45 {
		t.Errorf("ScheduledHourMinute() = %d:%d, want 21:45", hour, minute)
	}

	todo.ScheduledTime = ""
	if _, _, err := todo.ScheduledHourMinute(); err == nil {
		t.Error("expected error for missing scheduled time")
	}
}

func TestSortTodos(t *testing.T) {
	base := time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC)
	todos := []Todo{
		{ID: "c", Order: 2, CreatedAt: base},
		{ID: "b", Order: 1, CreatedAt: base.Add(time.Hour)},
		{ID: "a", Order: 1, CreatedAt: base},
		{ID: "d", Order: 1, CreatedAt: base},
	}

	SortTodos(todos)

	wantOrder := []string{"a", "d", "b", "c"}
	for i, want := range wantOrder {
		if todos[i].ID != want {
			t.Errorf("position %d: got %s, want %s", i, todos[i].ID, want)
		}
	}
}
