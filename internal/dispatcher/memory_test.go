package dispatcher

import (
	"testing"
)

func TestMemoryDispatcherRegisterAndCancel(t *testing.T) {
	m := NewMemoryDispatcher()

	reg := Registration{Identifier: Identifier("t1"), TodoID: "t1", Hour: 8, Minute: 0}
	if err := m.Register(reg); err != nil {
		t.Fatalf("Register() failed: %v", err)
	}

	pending, err := m.ListPending()
	if err != nil {
		t.Fatalf("ListPending() failed: %v", err)
	}
	if len(pending) != 1 || pending[0] != Identifier("t1") {
		t.Errorf("ListPending() = %v, want [%s]", pending, Identifier("t1"))
	}

	if err := m.CancelPending([]string{Identifier("t1")}); err != nil {
		t.Fatalf("CancelPending() failed: %v", err)
	}
	pending, _ = m.ListPending()
	if len(pending) != 0 {
		t.Errorf("ListPending() after cancel = %v, want empty", pending)
	}

	// Canceling an unknown identifier is not an error.
	if err := m.CancelPending([]string{"unknown"}); err != nil {
		t.Errorf("CancelPending(unknown) = %v, want nil", err)
	}
}

func TestMemoryDispatcherDeliver(t *testing.T) {
	m := NewMemoryDispatcher()

	m.Register(Registration{Identifier: Identifier("t1"), TodoID: "t1"})
	if !m.Deliver(Identifier("t1")) {
		t.Fatal("Deliver() = false for a pending registration")
	}

	// A delivered daily reminder stays pending for tomorrow's occurrence.
	pending, _ := m.ListPending()
	delivered, _ := m.ListDelivered()
	if len(pending) != 1 || len(delivered) != 1 {
		t.Errorf("pending = %v, delivered = %v, want one each", pending, delivered)
	}

	if err := m.CancelDelivered([]string{Identifier("t1")}); err != nil {
		t.Fatalf("CancelDelivered() failed: %v", err)
	}
	delivered, _ = m.ListDelivered()
	if len(delivered) != 0 {
		t.Errorf("ListDelivered() after cancel = %v, want empty", delivered)
	}

	if m.Deliver("unknown") {
		t.Error("Deliver(unknown) = true, want false")
	}
}

func TestMemoryDispatcherCancelAll(t *testing.T) {
	m := NewMemoryDispatcher()

	for _, id := range []string{"a", "b", "c"} {
		m.Register(Registration{Identifier: Identifier(id), TodoID: id})
	}
	m.Deliver(Identifier("a"))

	if err := m.CancelAllPending(); err != nil {
		t.Fatalf("CancelAllPending() failed: %v", err)
	}
	if err := m.CancelAllDelivered(); err != nil {
		t.Fatalf("CancelAllDelivered() failed: %v", err)
	}

	pending, _ := m.ListPending()
	delivered, _ := m.ListDelivered()
	if len(pending) != 0 || len(delivered) != 0 {
		t.Errorf("pending = %v, delivered = %v, want both empty", pending, delivered)
	}
}

func TestMemoryDispatcherAuthorization(t *testing.T) {
	m := NewMemoryDispatcher()

	m.SetAuthorization(AuthorizationNotDetermined, true)
	granted, err := m.RequestAuthorization()
	if err != nil {
		t.Fatalf("RequestAuthorization() failed: %v", err)
	}
	if !granted {
		t.Error("RequestAuthorization() = false, want true")
	}
	status, _ := m.AuthorizationStatus()
	if status != AuthorizationAuthorized {
		t.Errorf("AuthorizationStatus() = %s, want authorized", status)
	}

	m.SetAuthorization(AuthorizationNotDetermined, false)
	granted, _ = m.RequestAuthorization()
	if granted {
		t.Error("RequestAuthorization() = true, want false when denied")
	}
	status, _ = m.AuthorizationStatus()
	if status != AuthorizationDenied {
		t.Errorf("AuthorizationStatus() = %s, want denied", status)
	}
}

func TestMemoryDispatcherBadge(t *testing.T) {
	m := NewMemoryDispatcher()
	if err := m.SetBadge(5); err != nil {
		t.Fatalf("SetBadge() failed: %v", err)
	}
	if m.Badge() != 5 {
		t.Errorf("Badge() = %d, want 5", m.Badge())
	}
}

func TestIdentifierRoundTrip(t *testing.T) {
	id := Identifier("abc-123")
	got, ok := TodoIDFromIdentifier(id)
	if !ok || got != "abc-123" {
		t.Errorf("TodoIDFromIdentifier(%q) = %q, %v; want abc-123, true", id, got, ok)
	}

	if _, ok := TodoIDFromIdentifier("com.other.app.reminder.1"); ok {
		t.Error("TodoIDFromIdentifier accepted a foreign identifier")
	}
	if _, ok := TodoIDFromIdentifier(Identifier("")); ok {
		t.Error("TodoIDFromIdentifier accepted an empty todo id")
	}
}
