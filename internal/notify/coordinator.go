// Package notify owns the reminder lifecycle: registering daily reminders
// for schedulable to-dos, reconciling registrations against the store, and
// applying user actions that arrive from delivered reminders.
package notify

import (
	"errors"
	"fmt"

	"github.com/dayloop/dayloop/internal/dispatcher"
	"github.com/dayloop/dayloop/internal/events"
	"github.com/dayloop/dayloop/internal/logger"
	"github.com/dayloop/dayloop/internal/models"
	"github.com/dayloop/dayloop/internal/state"
	"github.com/dayloop/dayloop/internal/storage"
)

// Coordinator sits between the store and the reminder dispatcher. All
// registration identifiers it creates carry the app prefix; identifiers
// without it are never touched.
type Coordinator struct {
	store storage.Provider
	state *state.Store
	disp  dispatcher.Dispatcher
	bus   *events.Bus
}

func New(store storage.Provider, st *state.Store, disp dispatcher.Dispatcher, bus *events.Bus) *Coordinator {
	return &Coordinator{store: store, state: st, disp: disp, bus: bus}
}

// AuthorizationStatus exposes the dispatcher's authorization state without
// prompting.
func (c *Coordinator) AuthorizationStatus() (dispatcher.AuthorizationStatus, error) {
	return c.disp.AuthorizationStatus()
}

// OwnedPending lists the pending registration identifiers that carry the
// app prefix.
func (c *Coordinator) OwnedPending() ([]string, error) {
	pending, err := c.disp.ListPending()
	if err != nil {
		return nil, fmt.Errorf("failed to list pending reminders: %w", err)
	}
	var owned []string
	for _, id := range pending {
		if _, ours := dispatcher.TodoIDFromIdentifier(id); ours {
			owned = append(owned, id)
		}
	}
	return owned, nil
}

// ensureAuthorized reports whether reminders may be registered, prompting
// once if the user has not decided yet. A denied status is not an error;
// scheduling simply becomes a no-op until the user changes their mind.
func (c *Coordinator) ensureAuthorized() (bool, error) {
	status, err := c.disp.AuthorizationStatus()
	if err != nil {
		return false, fmt.Errorf("failed to query reminder authorization: %w", err)
	}

	switch status {
	case dispatcher.AuthorizationAuthorized:
		return true, nil
	case dispatcher.AuthorizationNotDetermined:
		granted, err := c.disp.RequestAuthorization()
		if err != nil {
			return false, fmt.Errorf("failed to request reminder authorization: %w", err)
		}
		return granted, nil
	default:
		return false, nil
	}
}

// Schedule registers the daily reminder for a single to-do, replacing any
// existing registration for it. To-dos that are completed, unscheduled, or
// gated off by settings get their registration canceled instead. Dispatcher
// failures are logged and absorbed so a store mutation that already
// committed never fails its caller; the next synchronization pass retries.
func (c *Coordinator) Schedule(todo models.Todo) error {
	settings, err := c.store.GetSettings()
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}

	if !todo.IsSchedulable() || !settings.CategoryEnabled(todo.Category) {
		return c.Cancel(todo.ID)
	}

	ok, err := c.ensureAuthorized()
	if err != nil {
		logger.Warn("Reminder authorization unavailable, skipping registration", "todo", todo.ID, "error", err)
		return nil
	}
	if !ok {
		logger.Debug("Reminder registration skipped, not authorized", "todo", todo.ID)
		return nil
	}

	hour, minute, err := todo.ScheduledHourMinute()
	if err != nil {
		return fmt.Errorf("failed to parse scheduled time for %s: %w", todo.ID, err)
	}

	identifier := dispatcher.Identifier(todo.ID)
	if err := c.disp.CancelPending([]string{identifier}); err != nil {
		logger.Warn("Failed to cancel stale registration", "todo", todo.ID, "error", err)
		return nil
	}

	reg := dispatcher.Registration{
		Identifier: identifier,
		TodoID:     todo.ID,
		Category:   todo.Category,
		Title:      todo.Title,
		Hour:       hour,
		Minute:     minute,
	}
	if err := c.disp.Register(reg); err != nil {
		logger.Warn("Failed to register reminder", "todo", todo.ID, "error", err)
		return nil
	}

	logger.Debug("Registered reminder", "todo", todo.ID, "hour", hour, "minute", minute)
	return nil
}

// Cancel removes both the pending registration and any delivered copy for a
// to-do. Safe to call for to-dos that never had a reminder. Dispatcher
// failures are logged and absorbed; orphan pruning on the next
// synchronization pass removes what could not be canceled here.
func (c *Coordinator) Cancel(todoID string) error {
	ids := []string{dispatcher.Identifier(todoID)}
	if err := c.disp.CancelPending(ids); err != nil {
		logger.Warn("Failed to cancel pending reminder", "todo", todoID, "error", err)
		return nil
	}
	if err := c.disp.CancelDelivered(ids); err != nil {
		logger.Warn("Failed to cancel delivered reminder", "todo", todoID, "error", err)
	}
	return nil
}

// CancelAll removes every registration the app owns. Used when the user
// turns notifications off entirely. Identifiers without the app prefix
// belong to other software and are left alone.
func (c *Coordinator) CancelAll() error {
	pending, err := c.disp.ListPending()
	if err != nil {
		return fmt.Errorf("failed to list pending reminders: %w", err)
	}
	delivered, err := c.disp.ListDelivered()
	if err != nil {
		return fmt.Errorf("failed to list delivered reminders: %w", err)
	}

	owned := func(identifiers []string) []string {
		var out []string
		for _, id := range identifiers {
			if _, ours := dispatcher.TodoIDFromIdentifier(id); ours {
				out = append(out, id)
			}
		}
		return out
	}

	if ids := owned(pending); len(ids) > 0 {
		if err := c.disp.CancelPending(ids); err != nil {
			return fmt.Errorf("failed to cancel pending reminders: %w", err)
		}
	}
	if ids := owned(delivered); len(ids) > 0 {
		if err := c.disp.CancelDelivered(ids); err != nil {
			return fmt.Errorf("failed to cancel delivered reminders: %w", err)
		}
	}
	return nil
}

// RescheduleAll rebuilds every registration from the current store contents.
// Runs after the daily rollover and after settings changes.
func (c *Coordinator) RescheduleAll() error {
	todos, err := c.store.GetAllTodos()
	if err != nil {
		return fmt.Errorf("failed to load todos: %w", err)
	}
	return c.reconcile(todos)
}

// Reconcile is RescheduleAll over an already-fetched set. The reset
// scheduler hands it the refreshed batch so reconciliation and rollover see
// the same snapshot.
func (c *Coordinator) Reconcile(todos []models.Todo) {
	if err := c.reconcile(todos); err != nil {
		logger.Error("Reminder reconciliation failed", "error", err)
	}
}

func (c *Coordinator) reconcile(todos []models.Todo) error {
	settings, err := c.store.GetSettings()
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}

	if !settings.NotificationsEnabled {
		if err := c.CancelAll(); err != nil {
			return err
		}
		return c.RefreshBadge()
	}

	known := make(map[string]models.Todo, len(todos))
	for _, t := range todos {
		known[t.ID] = t
	}

	if err := c.pruneOrphans(known); err != nil {
		return err
	}

	for _, todo := range todos {
		if err := c.Schedule(todo); err != nil {
			logger.Warn("Failed to schedule reminder", "todo", todo.ID, "error", err)
		}
	}

	return c.RefreshBadge()
}

// pruneOrphans cancels registrations whose to-do no longer exists. Foreign
// identifiers (no app prefix) are left alone.
func (c *Coordinator) pruneOrphans(known map[string]models.Todo) error {
	pending, err := c.disp.ListPending()
	if err != nil {
		return fmt.Errorf("failed to list pending reminders: %w", err)
	}
	delivered, err := c.disp.ListDelivered()
	if err != nil {
		return fmt.Errorf("failed to list delivered reminders: %w", err)
	}

	orphans := func(identifiers []string) []string {
		var out []string
		for _, id := range identifiers {
			todoID, ours := dispatcher.TodoIDFromIdentifier(id)
			if !ours {
				continue
			}
			if _, exists := known[todoID]; !exists {
				out = append(out, id)
			}
		}
		return out
	}

	if stale := orphans(pending); len(stale) > 0 {
		logger.Info("Removing orphaned pending reminders", "count", len(stale))
		if err := c.disp.CancelPending(stale); err != nil {
			return fmt.Errorf("failed to cancel orphaned pending reminders: %w", err)
		}
	}
	if stale := orphans(delivered); len(stale) > 0 {
		logger.Info("Removing orphaned delivered reminders", "count", len(stale))
		if err := c.disp.CancelDelivered(stale); err != nil {
			return fmt.Errorf("failed to cancel orphaned delivered reminders: %w", err)
		}
	}
	return nil
}

// Synchronize is the full reconciliation pass run on agent start and on
// wake: one store fetch, orphan pruning, registration rebuild, pending
// completion replay, and a badge refresh.
func (c *Coordinator) Synchronize() error {
	if err := c.retryPendingCompletions(); err != nil {
		logger.Warn("Pending completion replay failed", "error", err)
	}
	return c.RescheduleAll()
}

// retryPendingCompletions replays complete actions that arrived while the
// to-do could not be found (store mid-write, or the action raced a delete).
// IDs that still resolve to nothing stay queued for the next pass.
func (c *Coordinator) retryPendingCompletions() error {
	for _, id := range c.state.PendingCompletions() {
		todo, err := c.store.GetTodo(id)
		if errors.Is(err, storage.ErrNotFound) {
			continue
		}
		if err != nil {
			return fmt.Errorf("failed to fetch pending completion %s: %w", id, err)
		}

		if !todo.IsCompleted {
			if err := c.completeTodo(todo); err != nil {
				return err
			}
		}
		if err := c.state.RemovePendingCompletion(id); err != nil {
			return fmt.Errorf("failed to clear pending completion %s: %w", id, err)
		}
		logger.Info("Replayed pending completion", "todo", id)
	}
	return nil
}

// RefreshBadge recomputes the incomplete count and pushes it to the
// dispatcher, then announces the new value on the bus.
func (c *Coordinator) RefreshBadge() error {
	count, err := c.store.CountIncomplete()
	if err != nil {
		return fmt.Errorf("failed to count incomplete todos: %w", err)
	}
	if err := c.disp.SetBadge(count); err != nil {
		return fmt.Errorf("failed to set badge: %w", err)
	}
	c.bus.Publish(events.BadgeUpdated{Count: count})
	return nil
}

// completeTodo performs the two-phase completion: announce intent, commit
// the mutation, then announce the result. Subscribers that snapshot state
// before a completion listen on the first event; everything downstream of
// the committed write listens on the second.
func (c *Coordinator) completeTodo(todo models.Todo) error {
	c.bus.Publish(events.TodoWillComplete{ID: todo.ID})

	todo.IsCompleted = true
	if err := c.store.UpdateTodo(todo); err != nil {
		return fmt.Errorf("failed to persist completion of %s: %w", todo.ID, err)
	}

	if err := c.Cancel(todo.ID); err != nil {
		logger.Warn("Failed to cancel reminder after completion", "todo", todo.ID, "error", err)
	}

	c.bus.Publish(events.TodoCompleted{ID: todo.ID})
	return nil
}

// HandleAction applies one user interaction from a delivered reminder.
// Opening a to-do only brings it into view; it never completes it.
func (c *Coordinator) HandleAction(action dispatcher.Action) error {
	switch action.Kind {
	case dispatcher.ActionComplete:
		// Any fetch failure queues the completion: the to-do may not exist
		// yet, or the store may be momentarily unreadable. Replay happens on
		// the next synchronization pass.
		todo, err := c.store.GetTodo(action.TodoID)
		if err != nil {
			logger.Warn("Complete action could not resolve todo, queueing", "todo", action.TodoID, "error", err)
			return c.state.AddPendingCompletion(action.TodoID)
		}
		if todo.IsCompleted {
			return c.RefreshBadge()
		}
		if err := c.completeTodo(todo); err != nil {
			return err
		}
		return c.RefreshBadge()

	case dispatcher.ActionDismiss:
		return c.RefreshBadge()

	case dispatcher.ActionOpen:
		if err := c.state.SetFocusedTodoID(action.TodoID); err != nil {
			return fmt.Errorf("failed to record focused todo: %w", err)
		}
		c.bus.Publish(events.TodoFocused{ID: action.TodoID})
		return nil

	default:
		return fmt.Errorf("unknown action kind %q", action.Kind)
	}
}
