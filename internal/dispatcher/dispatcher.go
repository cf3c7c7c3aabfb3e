// Package dispatcher abstracts the local reminder surface. The scheduling
// core talks to the Dispatcher interface only; adapters translate to the
// actual delivery mechanism (the tray daemon, or an in-memory fake).
package dispatcher

import (
	"strings"

	"github.com/dayloop/dayloop/internal/constants"
	"github.com/dayloop/dayloop/internal/models"
)

type AuthorizationStatus string

const (
	AuthorizationNotDetermined AuthorizationStatus = "not_determined"
	AuthorizationAuthorized    AuthorizationStatus = "authorized"
	AuthorizationDenied        AuthorizationStatus = "denied"
)

// Registration describes one recurring daily reminder. The trigger repeats
// every day at Hour:Minute; there is deliberately no date component.
type Registration struct {
	Identifier string          `json:"identifier"`
	TodoID     string          `json:"todo_id"`
	Category   models.Category `json:"category"`
	Title      string          `json:"title"`
	Hour       int             `json:"hour"`
	Minute     int             `json:"minute"`
}

type ActionKind string

const (
	// ActionComplete marks the to-do done from the delivered reminder.
	ActionComplete ActionKind = "complete"
	// ActionDismiss closes the reminder without touching the to-do.
	ActionDismiss ActionKind = "dismiss"
	// ActionOpen brings the to-do into view. Opening never implies
	// completion; a separate explicit complete action is required.
	ActionOpen ActionKind = "open"
)

// Action is an inbound user interaction with a delivered reminder.
type Action struct {
	Kind     ActionKind      `json:"kind"`
	TodoID   string          `json:"todo_id"`
	Category models.Category `json:"category"`
}

// Dispatcher is the reminder surface contract. Cancel operations are
// idempotent; canceling an unknown identifier is not an error.
type Dispatcher interface {
	AuthorizationStatus() (AuthorizationStatus, error)
	RequestAuthorization() (bool, error)

	Register(Registration) error
	CancelPending(identifiers []string) error
	CancelDelivered(identifiers []string) error
	CancelAllPending() error
	CancelAllDelivered() error
	ListPending() ([]string, error)
	ListDelivered() ([]string, error)

	SetBadge(count int) error
}

// Identifier builds the registration identifier for a to-do ID.
func Identifier(todoID string) string {
	return constants.ReminderIDPrefix + todoID
}

// TodoIDFromIdentifier extracts the to-do ID from a registration identifier.
// Identifiers without the app prefix belong to someone else and are ignored.
func TodoIDFromIdentifier(identifier string) (string, bool) {
	if !strings.HasPrefix(identifier, constants.ReminderIDPrefix) {
		return "", false
	}
	id := strings.TrimPrefix(identifier, constants.ReminderIDPrefix)
	if id == "" {
		return "", false
	}
	return id, true
}
