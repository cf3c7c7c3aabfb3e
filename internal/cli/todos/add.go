package todos

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dayloop/dayloop/internal/cli"
	"github.com/dayloop/dayloop/internal/models"
	"github.com/dayloop/dayloop/internal/utils"
)

type AddCmd struct {
	Title    string `arg:"" help:"To-do title."`
	Category string `short:"c" help:"Category (required|suggested)." default:"required"`
	At       string `short:"a" help:"Daily reminder time (HH:MM). Omit for no reminder."`
}

func (c *AddCmd) Validate() error {
	switch models.Category(c.Category) {
	case models.CategoryRequired, models.CategorySuggested:
	default:
		return fmt.Errorf("invalid category %q (expected required or suggested)", c.Category)
	}
	if c.At != "" && !utils.ValidateTimeFormat(c.At) {
		return fmt.Errorf("invalid time format %q (expected HH:MM)", c.At)
	}
	return nil
}

func (c *AddCmd) Run(ctx *cli.Context) error {
	existing, err := ctx.Store.GetAllTodos()
	if err != nil {
		return fmt.Errorf("failed to load todos: %w", err)
	}
	order := 0
	for _, t := range existing {
		if t.Order >= order {
			order = t.Order + 1
		}
	}

	todo := models.Todo{
		ID:            uuid.New().String(),
		Title:         c.Title,
		Category:      models.Category(c.Category),
		Order:         order,
		ScheduledTime: c.At,
		CreatedAt:     time.Now(),
	}
	if err := todo.Validate(); err != nil {
		return fmt.Errorf("invalid todo: %w", err)
	}

	if err := ctx.Store.AddTodo(todo); err != nil {
		return err
	}

	if err := ctx.Coordinator.Schedule(todo); err != nil {
		return fmt.Errorf("todo added but reminder registration failed: %w", err)
	}
	ctx.RefreshBadge()

	fmt.Printf("Added to-do: %s (ID: %s)\n", c.Title, todo.ID)
	return nil
}
