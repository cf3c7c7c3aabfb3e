// Package reset owns the daily rollover: every completed to-do becomes
// incomplete exactly once per reset boundary, even when the process slept
// through the boundary, and never more than once.
package reset

import (
	"fmt"
	"sync"
	"time"

	"github.com/dayloop/dayloop/internal/constants"
	"github.com/dayloop/dayloop/internal/events"
	"github.com/dayloop/dayloop/internal/logger"
	"github.com/dayloop/dayloop/internal/models"
	"github.com/dayloop/dayloop/internal/state"
	"github.com/dayloop/dayloop/internal/storage"
	"github.com/dayloop/dayloop/internal/utils"
)

// nowFunc is swapped out by tests.
var nowFunc = time.Now

// ReconcileFunc receives the full refreshed to-do set after a rollover so
// the reminder set can be brought back in line.
type ReconcileFunc func([]models.Todo)

type Scheduler struct {
	store     storage.Provider
	state     *state.Store
	bus       *events.Bus
	reconcile ReconcileFunc

	// resetMu serializes rollover execution; mu guards the timer fields.
	// They are separate so event subscribers may re-arm the timer without
	// deadlocking against a rollover in progress.
	resetMu sync.Mutex

	mu        sync.Mutex
	resetHour int
	loc       *time.Location
	timer     *time.Timer
	target    time.Time
	armed     bool
}

func New(store storage.Provider, st *state.Store, bus *events.Bus, reconcile ReconcileFunc) *Scheduler {
	if reconcile == nil {
		reconcile = func([]models.Todo) {}
	}
	return &Scheduler{
		store:     store,
		state:     st,
		bus:       bus,
		reconcile: reconcile,
		resetHour: constants.DefaultResetHour,
		loc:       time.Local,
	}
}

// ApplySettings updates the reset hour and timezone. A stale timer aimed at
// the old hour is a correctness bug, so an armed timer is recomputed
// immediately.
func (s *Scheduler) ApplySettings(settings models.Settings) error {
	loc, err := utils.LoadLocation(settings.Timezone)
	if err != nil {
		return fmt.Errorf("invalid timezone in settings: %w", err)
	}

	s.mu.Lock()
	changed := s.resetHour != settings.ResetHour || s.loc != loc
	s.resetHour = settings.ResetHour
	s.loc = loc
	rearm := changed && s.armed
	s.mu.Unlock()

	if rearm {
		s.ScheduleNextReset()
	}
	return nil
}

// ScheduleNextReset cancels any pending timer and arms a one-shot timer for
// the next occurrence of the reset hour. The chain is self-perpetuating:
// each firing performs the rollover and then re-arms. A repeating timer
// would drift whenever the machine sleeps, so one never exists here.
func (s *Scheduler) ScheduleNextReset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}

	now := nowFunc().In(s.loc)
	target := utils.NextResetTime(now, s.resetHour)
	s.target = target
	s.armed = true
	s.timer = time.AfterFunc(target.Sub(now), s.onTimer)

	logger.Debug("Armed reset timer", "target", target)
}

func (s *Scheduler) onTimer() {
	if err := s.ResetAllTodos(); err != nil {
		// The re-armed timer retries tomorrow; a missed rollover is also
		// repaired by the next CheckAndReschedule.
		logger.Error("Scheduled reset failed", "error", err)
	}
	s.ScheduleNextReset()
}

// ResetAllTodos flips every completed to-do back to incomplete, persists the
// batch, records the rollover instant, and triggers reminder reconciliation
// with the refreshed set. Reconciliation reads the store only after the
// batch save has committed.
func (s *Scheduler) ResetAllTodos() error {
	s.resetMu.Lock()
	defer s.resetMu.Unlock()

	completed, err := s.store.GetCompletedTodos()
	if err != nil {
		return fmt.Errorf("failed to fetch completed todos: %w", err)
	}

	for i := range completed {
		completed[i].IsCompleted = false
	}

	if len(completed) > 0 {
		if err := s.store.SaveTodos(completed); err != nil {
			return fmt.Errorf("failed to persist reset batch: %w", err)
		}
	}

	now := s.nowInLocation()
	if err := s.state.SetLastResetDate(now); err != nil {
		// Worst case the next boundary check repeats the (idempotent) reset.
		logger.Warn("Failed to persist last reset date", "error", err)
	}

	logger.Info("Daily reset completed", "count", len(completed))
	s.bus.Publish(events.TodosReset{At: now, Count: len(completed)})

	all, err := s.store.GetAllTodos()
	if err != nil {
		logger.Error("Failed to fetch todos for post-reset reconciliation", "error", err)
		return nil
	}
	s.reconcile(all)

	return nil
}

// CheckAndReschedule runs on every process-active transition. It performs a
// missed rollover immediately and guarantees a timer is armed afterwards.
func (s *Scheduler) CheckAndReschedule() error {
	var resetErr error
	if s.shouldReset() {
		logger.Info("Reset boundary crossed while inactive, resetting now")
		resetErr = s.ResetAllTodos()
	}

	s.mu.Lock()
	armed := s.armed
	s.mu.Unlock()
	if !armed {
		s.ScheduleNextReset()
	}

	return resetErr
}

// ResetNow is the manual trigger.
func (s *Scheduler) ResetNow() error {
	err := s.ResetAllTodos()
	s.ScheduleNextReset()
	return err
}

// Stop cancels the pending timer. Used on shutdown.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.armed = false
}

// NextResetAt reports the armed timer's target, if any.
func (s *Scheduler) NextResetAt() (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.target, s.armed
}

// shouldReset is true iff now is past today's reset hour and the last reset
// happened on a different calendar day.
func (s *Scheduler) shouldReset() bool {
	now := s.nowInLocation()

	s.mu.Lock()
	resetHour := s.resetHour
	s.mu.Unlock()

	todayBoundary := time.Date(now.Year(), now.Month(), now.Day(), resetHour, 0, 0, 0, now.Location())
	if now.Before(todayBoundary) {
		return false
	}

	last, ok := s.state.LastResetDate()
	if !ok {
		return true
	}
	return !utils.SameDay(last, now)
}

func (s *Scheduler) nowInLocation() time.Time {
	s.mu.Lock()
	loc := s.loc
	s.mu.Unlock()
	return nowFunc().In(loc)
}
