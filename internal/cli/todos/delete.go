package todos

import (
	"fmt"

	"github.com/dayloop/dayloop/internal/cli"
)

type DeleteCmd struct {
	Ref string `arg:"" help:"To-do ID, ID prefix, or title."`
}

func (c *DeleteCmd) Run(ctx *cli.Context) error {
	todo, err := cli.ResolveTodo(ctx.Store, c.Ref)
	if err != nil {
		return err
	}

	if err := ctx.Store.DeleteTodo(todo.ID); err != nil {
		return fmt.Errorf("failed to delete todo: %w", err)
	}

	if err := ctx.Coordinator.Cancel(todo.ID); err != nil {
		return fmt.Errorf("todo deleted but reminder cancellation failed: %w", err)
	}
	ctx.RefreshBadge()

	fmt.Printf("Deleted: %s\n", todo.Title)
	return nil
}
