package settings

import (
	"fmt"

	"github.com/dayloop/dayloop/internal/cli"
	"github.com/dayloop/dayloop/internal/events"
	"github.com/dayloop/dayloop/internal/logger"
	"github.com/dayloop/dayloop/internal/utils"
)

type SettingsCmd struct {
	List bool `help:"List current settings."`

	ResetHour              *int    `help:"Hour of day (0-23) at which completed to-dos roll back."`
	Timezone               *string `help:"IANA timezone for the reset boundary, or 'Local'."`
	NotificationsEnabled   *bool   `help:"Master switch for reminders."`
	RequiredNotifications  *bool   `help:"Reminders for required to-dos."`
	SuggestedNotifications *bool   `help:"Reminders for suggested to-dos."`
}

func (c *SettingsCmd) Validate() error {
	if c.Timezone != nil && !utils.ValidateTimezone(*c.Timezone) {
		return fmt.Errorf("invalid timezone %q", *c.Timezone)
	}
	return nil
}

func (c *SettingsCmd) Run(ctx *cli.Context) error {
	settings, err := ctx.Store.GetSettings()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	if c.List {
		fmt.Println("Current Settings:")
		fmt.Printf("  Reset Hour:              %02d:00\n", settings.ResetHour)
		fmt.Printf("  Timezone:                %s\n", settings.Timezone)
		fmt.Println("\nNotification Settings:")
		fmt.Printf("  Notifications Enabled:   %v\n", settings.NotificationsEnabled)
		fmt.Printf("  Required Notifications:  %v\n", settings.RequiredNotifications)
		fmt.Printf("  Suggested Notifications: %v\n", settings.SuggestedNotifications)
		return nil
	}

	updated := false
	if c.ResetHour != nil {
		settings.ResetHour = *c.ResetHour
		updated = true
	}
	if c.Timezone != nil {
		settings.Timezone = *c.Timezone
		updated = true
	}
	if c.NotificationsEnabled != nil {
		settings.NotificationsEnabled = *c.NotificationsEnabled
		updated = true
	}
	if c.RequiredNotifications != nil {
		settings.RequiredNotifications = *c.RequiredNotifications
		updated = true
	}
	if c.SuggestedNotifications != nil {
		settings.SuggestedNotifications = *c.SuggestedNotifications
		updated = true
	}

	if !updated {
		fmt.Println("No changes specified. Use --list to view settings or flags to update them.")
		return nil
	}

	if err := settings.Validate(); err != nil {
		return fmt.Errorf("invalid settings: %w", err)
	}
	if err := ctx.Store.SaveSettings(settings); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}

	// A running agent in this process re-arms its timer off the bus; other
	// processes pick the change up on their next reconciliation pass.
	ctx.Bus.Publish(events.SettingsChanged{Settings: settings})
	if err := ctx.Scheduler.ApplySettings(settings); err != nil {
		return err
	}
	// The save already committed; a reconciliation hiccup is not a command
	// failure. The next synchronization pass picks up the slack.
	if err := ctx.Coordinator.RescheduleAll(); err != nil {
		logger.Warn("Settings saved but reminder reconciliation failed", "error", err)
	}

	fmt.Println("Settings updated successfully.")
	return nil
}
