package dispatcher

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/dayloop/dayloop/internal/constants"
	"github.com/dayloop/dayloop/internal/logger"
)

// ActionHandler receives inbound reminder actions from the tray daemon.
type ActionHandler func(Action)

// ActionServer is the inbound half of the tray protocol: a loopback HTTP
// server the daemon calls when the user interacts with a delivered
// reminder. The server advertises itself through a lockfile in the same
// "port|pid|secret" format the daemon uses.
type ActionServer struct {
	host         string
	lockfilePath string
	handler      ActionHandler

	secret string
	ln     net.Listener
	srv    *http.Server
}

func NewActionServer(host, lockfilePath string, handler ActionHandler) *ActionServer {
	return &ActionServer{
		host:         host,
		lockfilePath: lockfilePath,
		handler:      handler,
	}
}

// Start binds an ephemeral port, writes the lockfile, and serves in the
// background until Close.
func (s *ActionServer) Start() error {
	secret, err := newSecret()
	if err != nil {
		return fmt.Errorf("failed to generate secret: %w", err)
	}
	s.secret = secret

	ln, err := net.Listen("tcp", net.JoinHostPort(s.host, "0"))
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}
	s.ln = ln

	mux := http.NewServeMux()
	mux.HandleFunc("/action", s.handleAction)

	s.srv = &http.Server{
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	}

	port := ln.Addr().(*net.TCPAddr).Port
	lock := strconv.Itoa(port) + "|" + strconv.Itoa(os.Getpid()) + "|" + s.secret
	if err := os.WriteFile(s.lockfilePath, []byte(lock), 0600); err != nil {
		ln.Close()
		return fmt.Errorf("failed to write agent lockfile: %w", err)
	}

	go func() {
		if err := s.srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			logger.Error("Action server stopped unexpectedly", "error", err)
		}
	}()

	return nil
}

// Addr returns the bound address, valid after Start.
func (s *ActionServer) Addr() string {
	if s.ln == nil {
		return ""
	}
	return s.ln.Addr().String()
}

// Secret returns the shared secret written to the lockfile.
func (s *ActionServer) Secret() string {
	return s.secret
}

// Close shuts the server down and removes the lockfile.
func (s *ActionServer) Close() error {
	if err := os.Remove(s.lockfilePath); err != nil && !os.IsNotExist(err) {
		logger.Warn("Failed to remove agent lockfile", "error", err)
	}
	if s.srv == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	return s.srv.Shutdown(ctx)
}

func (s *ActionServer) handleAction(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if r.Header.Get(constants.SecretHeader) != s.secret {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	var action Action
	if err := json.NewDecoder(r.Body).Decode(&action); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	switch action.Kind {
	case ActionComplete, ActionDismiss, ActionOpen:
	default:
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	s.handler(action)
	w.WriteHeader(http.StatusOK)
}

// PostAction delivers one action to an agent's action server. This is the
// client half of the protocol; the tray daemon uses the same call shape.
func PostAction(addr, secret string, action Action) error {
	raw, err := json.Marshal(action)
	if err != nil {
		return err
	}

	req, err := http.NewRequest(http.MethodPost, "http://"+addr+"/action", bytes.NewBuffer(raw))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(constants.SecretHeader, secret)

	client := &http.Client{Timeout: 5 * time.Second}
	res, err := client.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusUnauthorized {
		return ErrUnauthorized
	}
	if res.StatusCode != http.StatusOK {
		return fmt.Errorf("action post failed with status %d", res.StatusCode)
	}
	return nil
}

func newSecret() (string, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	return hex.EncodeToString(raw), nil
}
