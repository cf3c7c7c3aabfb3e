// Package secrets stores the shared secret used to authenticate exchanges
// with the tray daemon in the OS keyring.
package secrets

import (
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"

	"github.com/dayloop/dayloop/internal/constants"
)

var (
	// ErrNotFound is returned when no secret is stored in the keyring
	ErrNotFound = errors.New("secret not found in keyring")
	// ErrKeyringUnavailable is returned when the OS keyring is not available
	ErrKeyringUnavailable = errors.New("OS keyring is not available")
)

// GetTraySecret retrieves the tray shared secret from the OS keyring.
// Returns ErrNotFound when no secret is stored.
func GetTraySecret() (string, error) {
	secret, err := keyring.Get(constants.AppName, constants.DefaultKeyringUser)
	if err != nil {
		if err == keyring.ErrNotFound {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("%w: %v", ErrKeyringUnavailable, err)
	}
	return secret, nil
}

// SetTraySecret stores the tray shared secret in the OS keyring.
func SetTraySecret(secret string) error {
	if secret == "" {
		return errors.New("secret cannot be empty")
	}
	if err := keyring.Set(constants.AppName, constants.DefaultKeyringUser, secret); err != nil {
		return fmt.Errorf("failed to store secret in keyring: %w", err)
	}
	return nil
}

// DeleteTraySecret removes the tray shared secret from the OS keyring.
func DeleteTraySecret() error {
	err := keyring.Delete(constants.AppName, constants.DefaultKeyringUser)
	if err != nil {
		if err == keyring.ErrNotFound {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete secret from keyring: %w", err)
	}
	return nil
}

// IsAvailable checks if the OS keyring is usable on the current system.
// Best effort; a keyring that errors for reasons other than a missing entry
// is treated as unavailable.
func IsAvailable() bool {
	_, err := keyring.Get(constants.AppName, "test-availability")
	return err == nil || err == keyring.ErrNotFound
}
