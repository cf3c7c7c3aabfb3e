package system

import (
	"fmt"
	"os"

	"github.com/dayloop/dayloop/internal/cli"
)

type InitCmd struct {
	Force bool `help:"Force reset by deleting the existing database before initialization."`
}

func (c *InitCmd) Run(ctx *cli.Context) error {
	if c.Force {
		dbPath := ctx.Store.GetConfigPath()
		if _, err := os.Stat(dbPath); err == nil {
			if err := ctx.Store.Close(); err != nil {
				return fmt.Errorf("failed to close existing database: %w", err)
			}
			if err := os.Remove(dbPath); err != nil {
				return fmt.Errorf("failed to delete existing database: %w", err)
			}
			fmt.Printf("Deleted existing database at: %s\n", dbPath)
		} else if !os.IsNotExist(err) {
			return fmt.Errorf("failed to access existing database: %w", err)
		}
	}

	if err := ctx.Store.Init(); err != nil {
		return err
	}
	fmt.Printf("Initialized dayloop storage at: %s\n", ctx.Store.GetConfigPath())

	if cfgPath := ctx.Config.Path; cfgPath != "" {
		if _, err := os.Stat(cfgPath); os.IsNotExist(err) {
			if err := ctx.Config.WriteDefault(cfgPath); err != nil {
				return fmt.Errorf("failed to write config file: %w", err)
			}
			fmt.Printf("Wrote default config to: %s\n", cfgPath)
		}
	}

	return nil
}
