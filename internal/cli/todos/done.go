package todos

import (
	"fmt"

	"github.com/dayloop/dayloop/internal/cli"
	"github.com/dayloop/dayloop/internal/dispatcher"
)

type DoneCmd struct {
	Ref string `arg:"" help:"To-do ID, ID prefix, or title."`
}

func (c *DoneCmd) Run(ctx *cli.Context) error {
	todo, err := cli.ResolveTodo(ctx.Store, c.Ref)
	if err != nil {
		return err
	}
	if todo.IsCompleted {
		fmt.Printf("Already done: %s\n", todo.Title)
		return nil
	}

	// Same path as a reminder's complete button, so the two-phase events
	// and the reminder cancellation happen here too.
	err = ctx.Coordinator.HandleAction(dispatcher.Action{
		Kind:     dispatcher.ActionComplete,
		TodoID:   todo.ID,
		Category: todo.Category,
	})
	if err != nil {
		return err
	}

	fmt.Printf("Done: %s\n", todo.Title)
	return nil
}

type UndoneCmd struct {
	Ref string `arg:"" help:"To-do ID, ID prefix, or title."`
}

func (c *UndoneCmd) Run(ctx *cli.Context) error {
	todo, err := cli.ResolveTodo(ctx.Store, c.Ref)
	if err != nil {
		return err
	}
	if !todo.IsCompleted {
		fmt.Printf("Not completed: %s\n", todo.Title)
		return nil
	}

	todo.IsCompleted = false
	if err := ctx.Store.UpdateTodo(todo); err != nil {
		return fmt.Errorf("failed to update todo: %w", err)
	}

	if err := ctx.Coordinator.Schedule(todo); err != nil {
		return fmt.Errorf("todo reopened but reminder registration failed: %w", err)
	}
	ctx.RefreshBadge()

	fmt.Printf("Reopened: %s\n", todo.Title)
	return nil
}
