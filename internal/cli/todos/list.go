package todos

import (
	"fmt"

	"github.com/dayloop/dayloop/internal/cli"
	"github.com/dayloop/dayloop/internal/models"
)

type ListCmd struct {
	All       bool   `help:"Include completed to-dos."`
	Category  string `short:"c" help:"Filter by category (required|suggested)."`
	Remaining bool   `short:"r" help:"Show only the remaining count."`
}

func (c *ListCmd) Validate() error {
	if c.Category != "" {
		switch models.Category(c.Category) {
		case models.CategoryRequired, models.CategorySuggested:
		default:
			return fmt.Errorf("invalid category %q (expected required or suggested)", c.Category)
		}
	}
	return nil
}

func (c *ListCmd) Run(ctx *cli.Context) error {
	if c.Remaining {
		count, err := ctx.Store.CountIncomplete()
		if err != nil {
			return fmt.Errorf("failed to count todos: %w", err)
		}
		fmt.Println(count)
		return nil
	}

	todos, err := ctx.Store.GetAllTodos()
	if err != nil {
		return fmt.Errorf("failed to load todos: %w", err)
	}

	shown := 0
	for _, t := range todos {
		if !c.All && t.IsCompleted {
			continue
		}
		if c.Category != "" && t.Category != models.Category(c.Category) {
			continue
		}
		fmt.Println(cli.FormatTodoLine(t))
		shown++
	}

	if shown == 0 {
		if c.All {
			fmt.Println("No to-dos yet. Add one with: dayloop add \"Title\"")
		} else {
			fmt.Println("All done for today.")
		}
	}
	return nil
}
