package models

import (
	"fmt"
	"time"

	"github.com/dayloop/dayloop/internal/constants"
)

// Settings represents application-wide preferences. They live in the to-do
// store so external edits are picked up by the same reconciliation passes
// that watch the to-dos themselves.
type Settings struct {
	ResetHour              int    `json:"reset_hour"`              // hour of day (0-23) completed to-dos roll back
	Timezone               string `json:"timezone"`                // IANA timezone name, or "Local" for the system timezone
	NotificationsEnabled   bool   `json:"notifications_enabled"`   // master switch
	RequiredNotifications  bool   `json:"required_notifications"`  // reminders for required to-dos
	SuggestedNotifications bool   `json:"suggested_notifications"` // reminders for suggested to-dos
}

func DefaultSettings() Settings {
	return Settings{
		ResetHour:              constants.DefaultResetHour,
		Timezone:               constants.DefaultTimezone,
		NotificationsEnabled:   true,
		RequiredNotifications:  true,
		SuggestedNotifications: true,
	}
}

func (s *Settings) Validate() error {
	if s.ResetHour < 0 || s.ResetHour > 23 {
		return fmt.Errorf("reset hour must be between 0 and 23")
	}
	if s.Timezone != "" && s.Timezone != constants.DefaultTimezone {
		if _, err := time.LoadLocation(s.Timezone); err != nil {
			return fmt.Errorf("invalid timezone %q: %w", s.Timezone, err)
		}
	}
	return nil
}

// CategoryEnabled reports whether reminders are enabled for a category,
// honoring the master switch.
func (s Settings) CategoryEnabled(c Category) bool {
	if !s.NotificationsEnabled {
		return false
	}
	switch c {
	case CategoryRequired:
		return s.RequiredNotifications
	case CategorySuggested:
		return s.SuggestedNotifications
	default:
		return false
	}
}
