package system

import (
	"fmt"

	"github.com/dayloop/dayloop/internal/cli"
	"github.com/dayloop/dayloop/internal/constants"
	"github.com/dayloop/dayloop/internal/dispatcher"
	"github.com/dayloop/dayloop/internal/utils"
)

type StatusCmd struct{}

func (c *StatusCmd) Run(ctx *cli.Context) error {
	settings, err := ctx.Store.GetSettings()
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}

	now, err := utils.NowInTimezone(settings.Timezone)
	if err != nil {
		return err
	}
	next := utils.NextResetTime(now, settings.ResetHour)
	fmt.Printf("Next reset:      %s\n", next.Format(constants.DateFormat+" "+constants.TimeFormat))

	if last, ok := ctx.State.LastResetDate(); ok {
		fmt.Printf("Last reset:      %s\n", last.Format(constants.DateFormat+" "+constants.TimeFormat))
	} else {
		fmt.Println("Last reset:      never")
	}

	count, err := ctx.Store.CountIncomplete()
	if err != nil {
		return fmt.Errorf("failed to count todos: %w", err)
	}
	fmt.Printf("Remaining today: %d\n", count)

	if pending := ctx.State.PendingCompletions(); len(pending) > 0 {
		fmt.Printf("Queued completions: %d\n", len(pending))
	}

	status, err := ctx.Coordinator.AuthorizationStatus()
	if err != nil {
		fmt.Printf("Reminders:       unavailable (%v)\n", err)
		return nil
	}
	fmt.Printf("Reminders:       %s\n", status)

	if status == dispatcher.AuthorizationAuthorized {
		registered, err := ctx.Coordinator.OwnedPending()
		if err != nil {
			return err
		}
		fmt.Printf("Registered:      %d\n", len(registered))
	}
	return nil
}
