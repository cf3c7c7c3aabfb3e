package dispatcher

import (
	"sync"
)

// MemoryDispatcher is a fully in-memory Dispatcher. Tests and dry-run code
// paths use it in place of the tray daemon.
type MemoryDispatcher struct {
	mu        sync.Mutex
	status    AuthorizationStatus
	grant     bool // what RequestAuthorization will answer
	pending   map[string]Registration
	delivered map[string]Registration
	badge     int
}

func NewMemoryDispatcher() *MemoryDispatcher {
	return &MemoryDispatcher{
		status:    AuthorizationAuthorized,
		grant:     true,
		pending:   make(map[string]Registration),
		delivered: make(map[string]Registration),
	}
}

// SetAuthorization overrides the authorization state and the answer a
// future RequestAuthorization call will produce.
func (m *MemoryDispatcher) SetAuthorization(status AuthorizationStatus, grant bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.status = status
	m.grant = grant
}

func (m *MemoryDispatcher) AuthorizationStatus() (AuthorizationStatus, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status, nil
}

func (m *MemoryDispatcher) RequestAuthorization() (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.status == AuthorizationNotDetermined {
		if m.grant {
			m.status = AuthorizationAuthorized
		} else {
			m.status = AuthorizationDenied
		}
	}
	return m.status == AuthorizationAuthorized, nil
}

func (m *MemoryDispatcher) Register(reg Registration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pending[reg.Identifier] = reg
	return nil
}

func (m *MemoryDispatcher) CancelPending(identifiers []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range identifiers {
		delete(m.pending, id)
	}
	return nil
}

func (m *MemoryDispatcher) CancelDelivered(identifiers []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range identifiers {
		delete(m.delivered, id)
	}
	return nil
}

func (m *MemoryDispatcher) CancelAllPending() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pending = make(map[string]Registration)
	return nil
}

func (m *MemoryDispatcher) CancelAllDelivered() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.delivered = make(map[string]Registration)
	return nil
}

func (m *MemoryDispatcher) ListPending() ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.pending))
	for id := range m.pending {
		out = append(out, id)
	}
	return out, nil
}

func (m *MemoryDispatcher) ListDelivered() ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.delivered))
	for id := range m.delivered {
		out = append(out, id)
	}
	return out, nil
}

func (m *MemoryDispatcher) SetBadge(count int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.badge = count
	return nil
}

// Badge returns the last badge count set.
func (m *MemoryDispatcher) Badge() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.badge
}

// PendingRegistration returns the pending registration for an identifier.
func (m *MemoryDispatcher) PendingRegistration(identifier string) (Registration, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	reg, ok := m.pending[identifier]
	return reg, ok
}

// Deliver simulates the OS firing a pending reminder: it stays registered
// (the trigger repeats daily) and a delivered copy appears.
func (m *MemoryDispatcher) Deliver(identifier string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	reg, ok := m.pending[identifier]
	if !ok {
		return false
	}
	m.delivered[identifier] = reg
	return true
}
