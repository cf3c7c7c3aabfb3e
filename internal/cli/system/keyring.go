package system

import (
	"errors"
	"fmt"

	"github.com/dayloop/dayloop/internal/cli"
	"github.com/dayloop/dayloop/internal/secrets"
)

// KeyringSetCmd stores the tray daemon's shared secret in the OS keyring.
// The keyring copy takes precedence over the secret in the daemon lockfile.
type KeyringSetCmd struct {
	Secret string `arg:"" help:"Shared secret from the tray daemon."`
}

func (cmd *KeyringSetCmd) Run(ctx *cli.Context) error {
	if cmd.Secret == "" {
		return errors.New("secret cannot be empty")
	}
	if err := secrets.SetTraySecret(cmd.Secret); err != nil {
		return fmt.Errorf("failed to store secret in keyring: %w", err)
	}
	fmt.Println("Tray secret stored in OS keyring.")
	return nil
}

// KeyringDeleteCmd removes the stored tray secret, falling back to lockfile
// discovery.
type KeyringDeleteCmd struct{}

func (cmd *KeyringDeleteCmd) Run(ctx *cli.Context) error {
	err := secrets.DeleteTraySecret()
	if err != nil {
		if errors.Is(err, secrets.ErrNotFound) {
			return errors.New("no tray secret found in keyring")
		}
		return fmt.Errorf("failed to delete secret from keyring: %w", err)
	}
	fmt.Println("Tray secret deleted from OS keyring.")
	return nil
}

// KeyringStatusCmd checks OS keyring availability.
type KeyringStatusCmd struct{}

func (cmd *KeyringStatusCmd) Run(ctx *cli.Context) error {
	if !secrets.IsAvailable() {
		fmt.Println("OS keyring is NOT available; the tray secret will be read from the daemon lockfile.")
		return nil
	}
	fmt.Println("OS keyring is available.")
	if _, err := secrets.GetTraySecret(); err == nil {
		fmt.Println("A tray secret is stored.")
	} else {
		fmt.Println("No tray secret stored.")
	}
	return nil
}
