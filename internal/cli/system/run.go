package system

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/dayloop/dayloop/internal/cli"
	"github.com/dayloop/dayloop/internal/constants"
	"github.com/dayloop/dayloop/internal/dispatcher"
	"github.com/dayloop/dayloop/internal/events"
	"github.com/dayloop/dayloop/internal/logger"
)

type RunCmd struct{}

// Run is the long-lived agent: it owns the reset timer chain, listens for
// reminder actions from the tray daemon, and reconciles on start, on wake,
// and on demand (SIGUSR1).
func (c *RunCmd) Run(ctx *cli.Context) error {
	settings, err := ctx.Store.GetSettings()
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}
	if err := ctx.Scheduler.ApplySettings(settings); err != nil {
		return err
	}

	unsubscribe := ctx.Bus.Subscribe(func(ev events.Event) {
		if changed, ok := ev.(events.SettingsChanged); ok {
			if err := ctx.Scheduler.ApplySettings(changed.Settings); err != nil {
				logger.Error("Failed to apply settings change", "error", err)
			}
		}
	})
	defer unsubscribe()

	lockfilePath := filepath.Join(ctx.Config.DataDir, constants.AgentLockfileName)
	server := dispatcher.NewActionServer(ctx.Config.Agent.ListenHost, lockfilePath, func(action dispatcher.Action) {
		if err := ctx.Coordinator.HandleAction(action); err != nil {
			logger.Error("Reminder action failed", "kind", action.Kind, "todo", action.TodoID, "error", err)
		}
	})
	if err := server.Start(); err != nil {
		return fmt.Errorf("failed to start action server: %w", err)
	}
	defer func() {
		if err := server.Close(); err != nil {
			logger.Warn("Action server shutdown failed", "error", err)
		}
	}()
	logger.Info("Agent started", "addr", server.Addr())

	c.reconcile(ctx)
	ctx.Scheduler.ScheduleNextReset()
	defer ctx.Scheduler.Stop()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM, syscall.SIGUSR1)
	defer signal.Stop(sigs)

	interval := time.Duration(ctx.Config.Agent.MonitorIntervalSec) * time.Second
	wakeGap := time.Duration(ctx.Config.Agent.WakeGapSec) * time.Second
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	lastTick := time.Now()
	for {
		select {
		case now := <-ticker.C:
			// A tick arriving far later than scheduled means the machine
			// slept through the interval; the reset timer may have slept
			// with it.
			if now.Sub(lastTick) > interval+wakeGap {
				logger.Info("Wake detected", "gap", now.Sub(lastTick))
				c.reconcile(ctx)
			}
			lastTick = now
			c.pickUpSettings(ctx)

		case sig := <-sigs:
			if sig == syscall.SIGUSR1 {
				logger.Info("Reconciliation requested", "signal", sig)
				c.reconcile(ctx)
				continue
			}
			logger.Info("Agent stopping", "signal", sig)
			return nil
		}
	}
}

func (c *RunCmd) reconcile(ctx *cli.Context) {
	if err := ctx.Scheduler.CheckAndReschedule(); err != nil {
		logger.Error("Reset check failed", "error", err)
	}
	if err := ctx.Coordinator.Synchronize(); err != nil {
		logger.Error("Reminder synchronization failed", "error", err)
	}
}

// pickUpSettings re-reads preferences so changes made by another process
// (the one-shot settings command) reach the running timer chain.
func (c *RunCmd) pickUpSettings(ctx *cli.Context) {
	settings, err := ctx.Store.GetSettings()
	if err != nil {
		logger.Warn("Failed to re-read settings", "error", err)
		return
	}
	if err := ctx.Scheduler.ApplySettings(settings); err != nil {
		logger.Warn("Failed to apply settings", "error", err)
	}
}
