// Package events carries typed notifications between the scheduling core and
// its subscribers (CLI output, a future UI shell). Variants form a closed set
// so payloads stay strongly typed.
package events

import (
	"sync"
	"time"

	"github.com/dayloop/dayloop/internal/logger"
	"github.com/dayloop/dayloop/internal/models"
)

// Event is the sealed union of everything the core publishes.
type Event interface {
	event()
}

// TodosReset is published after a daily rollover has been persisted.
type TodosReset struct {
	At    time.Time
	Count int // number of to-dos flipped back to incomplete
}

// TodoWillComplete is the first phase of a reminder-driven completion. It
// fires before any store mutation so a UI can begin its transition.
type TodoWillComplete struct {
	ID string
}

// TodoCompleted is the commit phase: the completion has been persisted.
type TodoCompleted struct {
	ID string
}

// TodoFocused asks the UI layer to bring a to-do into view (reminder tapped).
type TodoFocused struct {
	ID string
}

// SettingsChanged is published after settings are saved; a running agent
// re-arms its reset timer and reschedules reminders in response.
type SettingsChanged struct {
	Settings models.Settings
}

// BadgeUpdated reports the new badge count after a refresh.
type BadgeUpdated struct {
	Count int
}

func (TodosReset) event()       {}
func (TodoWillComplete) event() {}
func (TodoCompleted) event()    {}
func (TodoFocused) event()      {}
func (SettingsChanged) event()  {}
func (BadgeUpdated) event()     {}

// Handler receives published events.
type Handler func(Event)

// Bus delivers events to subscribers synchronously and in subscription
// order. Publishing from inside a handler is allowed.
type Bus struct {
	mu       sync.Mutex
	nextID   int
	handlers map[int]Handler
	order    []int
}

func NewBus() *Bus {
	return &Bus{handlers: make(map[int]Handler)}
}

// Subscribe registers a handler and returns a function that removes it.
func (b *Bus) Subscribe(h Handler) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	b.handlers[id] = h
	b.order = append(b.order, id)

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.handlers, id)
		for i, oid := range b.order {
			if oid == id {
				b.order = append(b.order[:i], b.order[i+1:]...)
				break
			}
		}
	}
}

// Publish invokes every subscriber with the event. A panicking subscriber is
// logged and skipped; it never takes down the publisher.
func (b *Bus) Publish(ev Event) {
	b.mu.Lock()
	handlers := make([]Handler, 0, len(b.order))
	for _, id := range b.order {
		if h, ok := b.handlers[id]; ok {
			handlers = append(handlers, h)
		}
	}
	b.mu.Unlock()

	for _, h := range handlers {
		func() {
			defer func() {
				if r := recover(); r != nil {
					logger.Error("Event subscriber panicked", "event", ev, "panic", r)
				}
			}()
			h(ev)
		}()
	}
}
