package dispatcher

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	ps "github.com/mitchellh/go-ps"

	"github.com/dayloop/dayloop/internal/constants"
)

type mockProcess struct {
	pid        int
	executable string
}

func (m *mockProcess) Pid() int           { return m.pid }
func (m *mockProcess) PPid() int          { return 0 }
func (m *mockProcess) Executable() string { return m.executable }

func TestGetTrayConfigDir(t *testing.T) {
	tempDir := t.TempDir()

	oldUserConfigDirFunc := userConfigDirFunc
	defer func() { userConfigDirFunc = oldUserConfigDirFunc }()
	userConfigDirFunc = func() (string, error) {
		return tempDir, nil
	}

	t.Run("default", func(t *testing.T) {
		expected := filepath.Join(tempDir, constants.TrayAppIdentifier)
		dir, err := GetTrayConfigDir()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if dir != expected {
			t.Errorf("GetTrayConfigDir() = %s, want %s", dir, expected)
		}
	})

	t.Run("custom lockfile dir", func(t *testing.T) {
		trayConfigDir := filepath.Join(tempDir, constants.TrayAppIdentifier)
		if err := os.MkdirAll(trayConfigDir, 0755); err != nil {
			t.Fatal(err)
		}

		customDir := "/custom/dayloop/dir"
		settingsJSON := `{"settings": {"lockfile_dir": "` + customDir + `"}}`
		if err := os.WriteFile(filepath.Join(trayConfigDir, "settings.json"), []byte(settingsJSON), 0644); err != nil {
			t.Fatal(err)
		}

		dir, err := GetTrayConfigDir()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if dir != customDir {
			t.Errorf("GetTrayConfigDir() = %s, want %s", dir, customDir)
		}
	})
}

func TestFindAndValidateTrayProcess(t *testing.T) {
	oldFindProcessFunc := findProcessFunc
	defer func() { findProcessFunc = oldFindProcessFunc }()

	tempDir := t.TempDir()
	lockfilePath := filepath.Join(tempDir, constants.TrayLockfileName)

	writeLockfile := func(content string) {
		t.Helper()
		if err := os.WriteFile(lockfilePath, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}

	t.Run("lockfile missing", func(t *testing.T) {
		os.Remove(lockfilePath)
		if _, _, err := findAndValidateTrayProcess(lockfilePath); err == nil {
			t.Error("expected error for missing lockfile")
		}
	})

	t.Run("malformed lockfile", func(t *testing.T) {
		writeLockfile("8080|12345")
		if _, _, err := findAndValidateTrayProcess(lockfilePath); err == nil {
			t.Error("expected error for two-part lockfile")
		}

		writeLockfile("invalid")
		if _, _, err := findAndValidateTrayProcess(lockfilePath); err == nil {
			t.Error("expected error for garbage lockfile")
		}
	})

	t.Run("empty secret", func(t *testing.T) {
		writeLockfile("8080|12345|")
		_, _, err := findAndValidateTrayProcess(lockfilePath)
		if err == nil {
			t.Fatal("expected error for empty secret")
		}
		if !strings.Contains(err.Error(), "secret") {
			t.Errorf("expected error about empty secret, got: %v", err)
		}
	})

	t.Run("invalid port", func(t *testing.T) {
		writeLockfile("|12345|secret123")
		if _, _, err := findAndValidateTrayProcess(lockfilePath); err == nil {
			t.Error("expected error for empty port")
		}

		writeLockfile("99999|12345|secret123")
		if _, _, err := findAndValidateTrayProcess(lockfilePath); err == nil {
			t.Error("expected error for port out of range")
		}
	})

	t.Run("process not running", func(t *testing.T) {
		writeLockfile("8080|12345|secret123")
		findProcessFunc = func(pid int) (ps.Process, error) {
			return nil, nil
		}
		if _, _, err := findAndValidateTrayProcess(lockfilePath); err == nil {
			t.Error("expected error for missing process")
		}
	})

	t.Run("wrong executable", func(t *testing.T) {
		writeLockfile("8080|12345|secret123")
		findProcessFunc = func(pid int) (ps.Process, error) {
			return &mockProcess{pid: pid, executable: "other-app"}, nil
		}
		if _, _, err := findAndValidateTrayProcess(lockfilePath); err == nil {
			t.Error("expected error for wrong executable")
		}
	})

	t.Run("success", func(t *testing.T) {
		writeLockfile("8080|12345|secret123")
		findProcessFunc = func(pid int) (ps.Process, error) {
			return &mockProcess{pid: pid, executable: constants.TrayAppName}, nil
		}
		port, secret, err := findAndValidateTrayProcess(lockfilePath)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if port != "8080" {
			t.Errorf("port = %s, want 8080", port)
		}
		if secret != "secret123" {
			t.Errorf("secret = %s, want secret123", secret)
		}
	})
}

// setupTrayDaemon points the dispatcher at an httptest server standing in
// for the tray daemon and returns the dispatcher plus a record of requests.
func setupTrayDaemon(t *testing.T, handler http.HandlerFunc) *TrayDispatcher {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get(constants.SecretHeader) != "tray-secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		handler(w, r)
	}))
	t.Cleanup(server.Close)

	parts := strings.Split(server.URL, ":")
	port := parts[len(parts)-1]

	tempDir := t.TempDir()
	trayDir := filepath.Join(tempDir, constants.TrayAppIdentifier)
	if err := os.MkdirAll(trayDir, 0755); err != nil {
		t.Fatal(err)
	}
	lock := port + "|4242|tray-secret"
	if err := os.WriteFile(filepath.Join(trayDir, constants.TrayLockfileName), []byte(lock), 0600); err != nil {
		t.Fatal(err)
	}

	oldUserConfigDirFunc := userConfigDirFunc
	oldFindProcessFunc := findProcessFunc
	t.Cleanup(func() {
		userConfigDirFunc = oldUserConfigDirFunc
		findProcessFunc = oldFindProcessFunc
	})
	userConfigDirFunc = func() (string, error) { return tempDir, nil }
	findProcessFunc = func(pid int) (ps.Process, error) {
		return &mockProcess{pid: pid, executable: constants.TrayAppName}, nil
	}

	return NewTrayDispatcher()
}

func TestTrayDispatcherAuthorizationStatus(t *testing.T) {
	d := setupTrayDaemon(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/status" || r.Method != http.MethodGet {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		json.NewEncoder(w).Encode(map[string]string{"authorization": "authorized"})
	})

	status, err := d.AuthorizationStatus()
	if err != nil {
		t.Fatalf("AuthorizationStatus() failed: %v", err)
	}
	if status != AuthorizationAuthorized {
		t.Errorf("AuthorizationStatus() = %s, want authorized", status)
	}
}

func TestTrayDispatcherRegister(t *testing.T) {
	var got Registration
	d := setupTrayDaemon(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/reminders" || r.Method != http.MethodPost {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	reg := Registration{Identifier: Identifier("t1"), TodoID: "t1", Title: "Stretch", Hour: 8, Minute: 30}
	if err := d.Register(reg); err != nil {
		t.Fatalf("Register() failed: %v", err)
	}
	if got.Identifier != reg.Identifier || got.Hour != 8 || got.Minute != 30 {
		t.Errorf("daemon received %+v, want %+v", got, reg)
	}
}

func TestTrayDispatcherCancelBatches(t *testing.T) {
	var got cancelRequest
	d := setupTrayDaemon(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/reminders/cancel" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusOK)
	})

	if err := d.CancelPending([]string{Identifier("a"), Identifier("b")}); err != nil {
		t.Fatalf("CancelPending() failed: %v", err)
	}
	if got.Kind != "pending" || len(got.Identifiers) != 2 {
		t.Errorf("daemon received %+v, want pending cancel with 2 ids", got)
	}

	if err := d.CancelAllDelivered(); err != nil {
		t.Fatalf("CancelAllDelivered() failed: %v", err)
	}
	if got.Kind != "delivered" || !got.All {
		t.Errorf("daemon received %+v, want delivered cancel-all", got)
	}

	// An empty cancel batch never reaches the daemon.
	got = cancelRequest{}
	if err := d.CancelPending(nil); err != nil {
		t.Fatalf("CancelPending(nil) failed: %v", err)
	}
	if got.Kind != "" {
		t.Error("empty cancel batch was sent to the daemon")
	}
}

func TestTrayDispatcherListAndBadge(t *testing.T) {
	var badge int
	d := setupTrayDaemon(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/reminders" && r.Method == http.MethodGet:
			kind := r.URL.Query().Get("kind")
			ids := []string{Identifier("x")}
			if kind == "delivered" {
				ids = nil
			}
			json.NewEncoder(w).Encode(map[string][]string{"identifiers": ids})
		case r.URL.Path == "/badge" && r.Method == http.MethodPut:
			var body struct {
				Count int `json:"count"`
			}
			json.NewDecoder(r.Body).Decode(&body)
			badge = body.Count
			w.WriteHeader(http.StatusOK)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	pending, err := d.ListPending()
	if err != nil {
		t.Fatalf("ListPending() failed: %v", err)
	}
	if len(pending) != 1 || pending[0] != Identifier("x") {
		t.Errorf("ListPending() = %v, want [%s]", pending, Identifier("x"))
	}

	delivered, err := d.ListDelivered()
	if err != nil {
		t.Fatalf("ListDelivered() failed: %v", err)
	}
	if len(delivered) != 0 {
		t.Errorf("ListDelivered() = %v, want empty", delivered)
	}

	if err := d.SetBadge(7); err != nil {
		t.Fatalf("SetBadge() failed: %v", err)
	}
	if badge != 7 {
		t.Errorf("daemon badge = %d, want 7", badge)
	}
}

func TestTrayDispatcherDaemonDown(t *testing.T) {
	tempDir := t.TempDir()

	oldUserConfigDirFunc := userConfigDirFunc
	defer func() { userConfigDirFunc = oldUserConfigDirFunc }()
	userConfigDirFunc = func() (string, error) { return tempDir, nil }

	d := NewTrayDispatcher()
	if _, err := d.AuthorizationStatus(); err == nil {
		t.Error("AuthorizationStatus() succeeded without a daemon, want error")
	}
	if err := d.Register(Registration{Identifier: Identifier("t1")}); err == nil {
		t.Error("Register() succeeded without a daemon, want error")
	}
}
