package dispatcher

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/mitchellh/go-ps"

	"github.com/dayloop/dayloop/internal/constants"
	"github.com/dayloop/dayloop/internal/secrets"
)

var (
	userConfigDirFunc = os.UserConfigDir
	findProcessFunc   = ps.FindProcess
)

// ErrUnauthorized means the tray daemon rejected our shared secret. The
// secret in the keyring or lockfile is stale; restarting the daemon rotates
// it.
var ErrUnauthorized = errors.New("tray daemon rejected the shared secret")

// TrayDispatcher talks to the local dayloop-tray daemon. The daemon writes a
// lockfile ("port|pid|secret") into its config directory; every call
// rediscovers it so a restarted daemon is picked up without restarting us.
type TrayDispatcher struct {
	client *http.Client
}

func NewTrayDispatcher() *TrayDispatcher {
	return &TrayDispatcher{
		client: &http.Client{Timeout: 5 * time.Second},
	}
}

type trayEndpoint struct {
	baseURL string
	secret  string
}

// GetTrayConfigDir returns the configuration directory used by the tray
// daemon. A "lockfile_dir" override in its settings.json is honored.
func GetTrayConfigDir() (string, error) {
	configDir, err := userConfigDirFunc()
	if err != nil {
		return "", fmt.Errorf("failed to get user config dir: %w", err)
	}

	trayConfigDir := filepath.Join(configDir, constants.TrayAppIdentifier)

	settingsPath := filepath.Join(trayConfigDir, "settings.json")
	if _, err := os.Stat(settingsPath); err == nil {
		data, err := os.ReadFile(settingsPath)
		if err == nil {
			var store struct {
				Settings struct {
					LockfileDir *string `json:"lockfile_dir"`
				} `json:"settings"`
			}
			if err := json.Unmarshal(data, &store); err == nil {
				if store.Settings.LockfileDir != nil && *store.Settings.LockfileDir != "" {
					return *store.Settings.LockfileDir, nil
				}
			}
		}
	}

	return trayConfigDir, nil
}

func (d *TrayDispatcher) discover() (trayEndpoint, error) {
	configDir, err := GetTrayConfigDir()
	if err != nil {
		return trayEndpoint{}, err
	}

	port, lockSecret, err := findAndValidateTrayProcess(filepath.Join(configDir, constants.TrayLockfileName))
	if err != nil {
		return trayEndpoint{}, err
	}

	// The keyring is authoritative when it holds a secret; the lockfile
	// copy exists for systems without a usable keyring.
	secret := lockSecret
	if s, err := secrets.GetTraySecret(); err == nil && s != "" {
		secret = s
	}

	return trayEndpoint{
		baseURL: "http://127.0.0.1:" + port,
		secret:  secret,
	}, nil
}

func findAndValidateTrayProcess(lockfilePath string) (string, string, error) {
	content, err := os.ReadFile(lockfilePath)
	if err != nil {
		return "", "", errors.New("dayloop-tray is not running")
	}

	parts := strings.Split(strings.TrimSpace(string(content)), "|")
	if len(parts) != 3 {
		return "", "", errors.New("lockfile is malformed")
	}

	port := parts[0]
	if strings.TrimSpace(port) == "" {
		return "", "", errors.New("port in lockfile is empty")
	}
	portNum, err := strconv.Atoi(port)
	if err != nil {
		return "", "", errors.New("invalid port number in lockfile")
	}
	if portNum < 1 || portNum > 65535 {
		return "", "", fmt.Errorf("port number %d is outside valid range (1-65535)", portNum)
	}

	pid, err := strconv.Atoi(parts[1])
	if err != nil {
		return "", "", errors.New("invalid process ID in lockfile")
	}
	secret := parts[2]
	if strings.TrimSpace(secret) == "" {
		return "", "", errors.New("secret in lockfile is empty")
	}

	process, err := findProcessFunc(pid)
	if err != nil || process == nil {
		return "", "", errors.New("dayloop-tray process not running")
	}

	if !strings.HasPrefix(process.Executable(), constants.TrayAppName) {
		return "", "", fmt.Errorf("process with PID %d is not %s (is %s)", pid, constants.TrayAppName, process.Executable())
	}

	return port, secret, nil
}

func (d *TrayDispatcher) do(method, path string, body any, out any) error {
	ep, err := d.discover()
	if err != nil {
		return err
	}

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewBuffer(raw)
	}

	req, err := http.NewRequest(method, ep.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(constants.SecretHeader, ep.secret)

	res, err := d.client.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusUnauthorized {
		return fmt.Errorf("tray request %s %s: %w", method, path, ErrUnauthorized)
	}
	if res.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(res.Body)
		return fmt.Errorf("tray request %s %s failed with status %d: %s", method, path, res.StatusCode, string(raw))
	}

	if out != nil {
		if err := json.NewDecoder(res.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode tray response: %w", err)
		}
	}
	return nil
}

func (d *TrayDispatcher) AuthorizationStatus() (AuthorizationStatus, error) {
	var resp struct {
		Authorization AuthorizationStatus `json:"authorization"`
	}
	if err := d.do(http.MethodGet, "/status", nil, &resp); err != nil {
		return AuthorizationNotDetermined, err
	}
	switch resp.Authorization {
	case AuthorizationAuthorized, AuthorizationDenied, AuthorizationNotDetermined:
		return resp.Authorization, nil
	default:
		return AuthorizationNotDetermined, fmt.Errorf("tray reported unknown authorization %q", resp.Authorization)
	}
}

func (d *TrayDispatcher) RequestAuthorization() (bool, error) {
	var resp struct {
		Granted bool `json:"granted"`
	}
	if err := d.do(http.MethodPost, "/authorize", nil, &resp); err != nil {
		return false, err
	}
	return resp.Granted, nil
}

func (d *TrayDispatcher) Register(reg Registration) error {
	return d.do(http.MethodPost, "/reminders", reg, nil)
}

type cancelRequest struct {
	Kind        string   `json:"kind"` // pending | delivered
	All         bool     `json:"all,omitempty"`
	Identifiers []string `json:"identifiers,omitempty"`
}

func (d *TrayDispatcher) CancelPending(identifiers []string) error {
	if len(identifiers) == 0 {
		return nil
	}
	return d.do(http.MethodPost, "/reminders/cancel", cancelRequest{Kind: "pending", Identifiers: identifiers}, nil)
}

func (d *TrayDispatcher) CancelDelivered(identifiers []string) error {
	if len(identifiers) == 0 {
		return nil
	}
	return d.do(http.MethodPost, "/reminders/cancel", cancelRequest{Kind: "delivered", Identifiers: identifiers}, nil)
}

func (d *TrayDispatcher) CancelAllPending() error {
	return d.do(http.MethodPost, "/reminders/cancel", cancelRequest{Kind: "pending", All: true}, nil)
}

func (d *TrayDispatcher) CancelAllDelivered() error {
	return d.do(http.MethodPost, "/reminders/cancel", cancelRequest{Kind: "delivered", All: true}, nil)
}

func (d *TrayDispatcher) listReminders(kind string) ([]string, error) {
	var resp struct {
		Identifiers []string `json:"identifiers"`
	}
	if err := d.do(http.MethodGet, "/reminders?kind="+kind, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Identifiers, nil
}

func (d *TrayDispatcher) ListPending() ([]string, error) {
	return d.listReminders("pending")
}

func (d *TrayDispatcher) ListDelivered() ([]string, error) {
	return d.listReminders("delivered")
}

func (d *TrayDispatcher) SetBadge(count int) error {
	body := struct {
		Count int `json:"count"`
	}{Count: count}
	return d.do(http.MethodPut, "/badge", body, nil)
}
