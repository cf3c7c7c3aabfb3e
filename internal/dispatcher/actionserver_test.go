package dispatcher

import (
	"bytes"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dayloop/dayloop/internal/constants"
)

func startActionServer(t *testing.T) (*ActionServer, chan Action) {
	t.Helper()

	actions := make(chan Action, 8)
	lockfile := filepath.Join(t.TempDir(), constants.AgentLockfileName)
	server := NewActionServer("127.0.0.1", lockfile, func(a Action) {
		actions <- a
	})
	if err := server.Start(); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}
	t.Cleanup(func() { server.Close() })

	return server, actions
}

func postAction(t *testing.T, server *ActionServer, secret string, body any) *http.Response {
	t.Helper()

	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatal(err)
	}
	req, err := http.NewRequest(http.MethodPost, "http://"+server.Addr()+"/action", bytes.NewBuffer(raw))
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set(constants.SecretHeader, secret)

	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	t.Cleanup(func() { res.Body.Close() })
	return res
}

func TestActionServerDeliversActions(t *testing.T) {
	server, actions := startActionServer(t)

	res := postAction(t, server, server.Secret(), Action{Kind: ActionComplete, TodoID: "t1"})
	if res.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", res.StatusCode)
	}

	got := <-actions
	if got.Kind != ActionComplete || got.TodoID != "t1" {
		t.Errorf("received action %+v, want complete t1", got)
	}
}

func TestActionServerRejectsBadSecret(t *testing.T) {
	server, actions := startActionServer(t)

	res := postAction(t, server, "wrong", Action{Kind: ActionComplete, TodoID: "t1"})
	if res.StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", res.StatusCode)
	}

	select {
	case a := <-actions:
		t.Errorf("handler invoked for unauthorized request: %+v", a)
	default:
	}
}

func TestActionServerRejectsUnknownKind(t *testing.T) {
	server, _ := startActionServer(t)

	res := postAction(t, server, server.Secret(), map[string]string{"kind": "explode", "todo_id": "t1"})
	if res.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", res.StatusCode)
	}
}

func TestActionServerLockfile(t *testing.T) {
	lockfile := filepath.Join(t.TempDir(), constants.AgentLockfileName)
	server := NewActionServer("127.0.0.1", lockfile, func(Action) {})
	if err := server.Start(); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}

	raw, err := os.ReadFile(lockfile)
	if err != nil {
		t.Fatalf("lockfile not written: %v", err)
	}
	parts := strings.Split(string(raw), "|")
	if len(parts) != 3 {
		t.Fatalf("lockfile = %q, want port|pid|secret", raw)
	}
	if parts[2] != server.Secret() {
		t.Error("lockfile secret does not match server secret")
	}

	if err := server.Close(); err != nil {
		t.Fatalf("Close() failed: %v", err)
	}
	if _, err := os.Stat(lockfile); !os.IsNotExist(err) {
		t.Error("lockfile still present after Close()")
	}
}
