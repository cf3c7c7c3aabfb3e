package main

import (
	"github.com/alecthomas/kong"

	"github.com/dayloop/dayloop/internal/cli"
	"github.com/dayloop/dayloop/internal/cli/settings"
	"github.com/dayloop/dayloop/internal/cli/system"
	"github.com/dayloop/dayloop/internal/cli/todos"
	"github.com/dayloop/dayloop/internal/config"
	"github.com/dayloop/dayloop/internal/dispatcher"
	apperrors "github.com/dayloop/dayloop/internal/errors"
	"github.com/dayloop/dayloop/internal/events"
	"github.com/dayloop/dayloop/internal/logger"
	"github.com/dayloop/dayloop/internal/notify"
	"github.com/dayloop/dayloop/internal/reset"
	"github.com/dayloop/dayloop/internal/state"
	"github.com/dayloop/dayloop/internal/storage"
)

var CLI struct {
	Version kong.VersionFlag
	Config  string `help:"Config file path." type:"path" env:"DAYLOOP_CONFIG"`
	Debug   bool   `help:"Enable debug logging."`
	DryRun  bool   `help:"Use an in-memory reminder dispatcher instead of the tray daemon."`

	Init     system.InitCmd       `cmd:"" help:"Initialize dayloop storage and config."`
	Add      todos.AddCmd         `cmd:"" help:"Add a to-do."`
	List     todos.ListCmd        `cmd:"" help:"List to-dos." default:"1"`
	Done     todos.DoneCmd        `cmd:"" help:"Mark a to-do as done for today."`
	Undone   todos.UndoneCmd      `cmd:"" help:"Reopen a completed to-do."`
	Edit     todos.EditCmd        `cmd:"" help:"Edit a to-do."`
	Delete   todos.DeleteCmd      `cmd:"" help:"Delete a to-do."`
	Run      system.RunCmd        `cmd:"" help:"Run the agent (reset timer + reminder actions)."`
	Reset    system.ResetCmd      `cmd:"" help:"Check the reset boundary, or roll back now with --now."`
	Sync     system.SyncCmd       `cmd:"" help:"Reconcile reminders and the badge with the store."`
	Status   system.StatusCmd     `cmd:"" help:"Show reset, reminder, and badge state."`
	Settings settings.SettingsCmd `cmd:"" help:"Manage application settings."`
	Keyring  struct {
		Set    system.KeyringSetCmd    `cmd:"" help:"Store the tray daemon's shared secret."`
		Delete system.KeyringDeleteCmd `cmd:"" help:"Remove the stored tray secret."`
		Status system.KeyringStatusCmd `cmd:"" help:"Check OS keyring availability." default:"1"`
	} `cmd:"" help:"Manage the tray secret in the OS keyring."`
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("dayloop"),
		kong.Description("Daily to-do loop: completions roll back every morning, reminders fire at their scheduled times."),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{"version": "v0.1.0"},
	)

	cfgPath := CLI.Config
	if cfgPath == "" {
		cfgPath = config.DefaultConfigPath()
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		apperrors.Fatal(err)
	}
	if CLI.Debug {
		cfg.Debug = true
	}
	if err := cfg.Validate(); err != nil {
		apperrors.Fatal(err)
	}

	if err := logger.Init(logger.Config{Debug: cfg.Debug, ConfigDir: cfg.DataDir}); err != nil {
		apperrors.Fatalf("failed to initialize logger: %v", err)
	}

	store := storage.NewProvider(cfg.Storage)

	st := state.New(cfg.StatePath())
	if err := st.Load(); err != nil {
		apperrors.Fatal(err)
	}

	var disp dispatcher.Dispatcher
	if CLI.DryRun {
		mem := dispatcher.NewMemoryDispatcher()
		mem.SetAuthorization(dispatcher.AuthorizationAuthorized, true)
		disp = mem
	} else {
		disp = dispatcher.NewTrayDispatcher()
	}

	bus := events.NewBus()
	coordinator := notify.New(store, st, disp, bus)
	scheduler := reset.New(store, st, bus, coordinator.Reconcile)

	appCtx := &cli.Context{
		Store:       store,
		State:       st,
		Bus:         bus,
		Coordinator: coordinator,
		Scheduler:   scheduler,
		Config:      cfg,
	}

	// The init command opens the store itself.
	if ctx.Selected() != nil && ctx.Selected().Name != "init" {
		if err := store.Load(); err != nil {
			apperrors.Fatal(err)
		}
	}

	err = ctx.Run(appCtx)
	if cerr := store.Close(); cerr != nil {
		logger.Warn("Failed to close store", "error", cerr)
	}
	if err != nil {
		apperrors.Fatal(err)
	}
}
