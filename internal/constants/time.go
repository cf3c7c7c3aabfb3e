package constants

const (
	// DateFormat is the standard date format (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// TimeFormat is the standard time-of-day format (HH:MM)
	TimeFormat = "15:04"

	// DefaultResetHour is the hour (0-23) at which completed to-dos roll
	// back to incomplete when no custom hour is configured.
	DefaultResetHour = 4

	// DefaultTimezone resolves to the system timezone.
	DefaultTimezone = "Local"
)
