package constants

const (
	// AppName is the application name used for logging prefixes and keyring service lookups.
	AppName = "dayloop"

	// AppIdentifier is the reverse-DNS identifier shared with the tray daemon.
	AppIdentifier = "io.dayloop"

	// ReminderIDPrefix prefixes every reminder registration owned by this app.
	// Registration identifiers are ReminderIDPrefix + todo ID.
	ReminderIDPrefix = AppIdentifier + ".todo."

	// TrayAppName is the executable name of the notification daemon.
	TrayAppName = "dayloop-tray"

	// TrayAppIdentifier is the config directory name used by the tray daemon.
	TrayAppIdentifier = "io.dayloop.tray"

	// TrayLockfileName is written by the tray daemon: "port|pid|secret".
	TrayLockfileName = "dayloop-tray.lock"

	// AgentLockfileName is written by the running agent so the tray daemon
	// can deliver action callbacks: "port|pid|secret".
	AgentLockfileName = "dayloop-agent.lock"

	// SecretHeader carries the shared secret on every tray HTTP exchange.
	SecretHeader = "X-Dayloop-Secret"

	// DefaultKeyringUser is the keyring account name for the tray secret.
	DefaultKeyringUser = "tray-secret"

	DefaultConfigFileName = "dayloop.yaml"
	DefaultDBFileName     = "dayloop.db"
	DefaultStateFileName  = "state.json"
)
