package system

import (
	"fmt"

	"github.com/dayloop/dayloop/internal/cli"
	"github.com/dayloop/dayloop/internal/constants"
	"github.com/dayloop/dayloop/internal/utils"
)

type ResetCmd struct {
	Now bool `help:"Roll back all completed to-dos immediately."`
}

func (c *ResetCmd) Run(ctx *cli.Context) error {
	settings, err := ctx.Store.GetSettings()
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}
	if err := ctx.Scheduler.ApplySettings(settings); err != nil {
		return err
	}

	if c.Now {
		if err := ctx.Scheduler.ResetAllTodos(); err != nil {
			return err
		}
		fmt.Println("Completed to-dos rolled back.")
		return nil
	}

	// Without --now, perform the missed-boundary check only.
	if err := ctx.Scheduler.CheckAndReschedule(); err != nil {
		return err
	}
	ctx.Scheduler.Stop()

	now, err := utils.NowInTimezone(settings.Timezone)
	if err != nil {
		return err
	}
	next := utils.NextResetTime(now, settings.ResetHour)
	fmt.Printf("Next reset: %s\n", next.Format(constants.DateFormat+" "+constants.TimeFormat))
	return nil
}
