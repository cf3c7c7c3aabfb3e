package system

import (
	"fmt"

	"github.com/dayloop/dayloop/internal/cli"
)

type SyncCmd struct{}

// Run performs one full reconciliation pass: missed-reset check, reminder
// synchronization, and badge refresh.
func (c *SyncCmd) Run(ctx *cli.Context) error {
	settings, err := ctx.Store.GetSettings()
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}
	if err := ctx.Scheduler.ApplySettings(settings); err != nil {
		return err
	}

	if err := ctx.Scheduler.CheckAndReschedule(); err != nil {
		return err
	}
	ctx.Scheduler.Stop()

	if err := ctx.Coordinator.Synchronize(); err != nil {
		return err
	}

	fmt.Println("Synchronized.")
	return nil
}
