package todos

import (
	"fmt"

	"github.com/dayloop/dayloop/internal/cli"
	"github.com/dayloop/dayloop/internal/models"
	"github.com/dayloop/dayloop/internal/utils"
)

type EditCmd struct {
	Ref string `arg:"" help:"To-do ID, ID prefix, or title."`

	Title    *string `help:"New title."`
	Category *string `short:"c" help:"New category (required|suggested)."`
	At       *string `short:"a" help:"New daily reminder time (HH:MM). Pass an empty string to remove the reminder."`
	Order    *int    `short:"o" help:"New display order."`
}

func (c *EditCmd) Validate() error {
	if c.Category != nil {
		switch models.Category(*c.Category) {
		case models.CategoryRequired, models.CategorySuggested:
		default:
			return fmt.Errorf("invalid category %q (expected required or suggested)", *c.Category)
		}
	}
	if c.At != nil && *c.At != "" && !utils.ValidateTimeFormat(*c.At) {
		return fmt.Errorf("invalid time format %q (expected HH:MM)", *c.At)
	}
	return nil
}

func (c *EditCmd) Run(ctx *cli.Context) error {
	todo, err := cli.ResolveTodo(ctx.Store, c.Ref)
	if err != nil {
		return err
	}

	updated := false
	if c.Title != nil {
		todo.Title = *c.Title
		updated = true
	}
	if c.Category != nil {
		todo.Category = models.Category(*c.Category)
		updated = true
	}
	if c.At != nil {
		todo.ScheduledTime = *c.At
		updated = true
	}
	if c.Order != nil {
		todo.Order = *c.Order
		updated = true
	}

	if !updated {
		fmt.Println("No changes specified.")
		return nil
	}

	if err := todo.Validate(); err != nil {
		return fmt.Errorf("invalid todo: %w", err)
	}
	if err := ctx.Store.UpdateTodo(todo); err != nil {
		return fmt.Errorf("failed to update todo: %w", err)
	}

	// Schedule re-registers or cancels depending on the new shape.
	if err := ctx.Coordinator.Schedule(todo); err != nil {
		return fmt.Errorf("todo updated but reminder update failed: %w", err)
	}
	ctx.RefreshBadge()

	fmt.Printf("Updated: %s\n", todo.Title)
	return nil
}
