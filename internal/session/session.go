// Package session holds the client-side login state for the CLI. A
// single session at a time is persisted to a JSON state file so that a
// restarted process resumes as the same user until an explicit logout.
package session

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mams-ops/apiserver/types"
)

// ErrNotLoggedIn is returned when no session is active.
var ErrNotLoggedIn = errors.New("not logged in")

// State is the persisted session snapshot.
type State struct {
	Token   string     `json:"token"`
	Profile types.User `json:"profile"`
}

// Manager talks to the API server and keeps the active session on disk.
type Manager struct {
	baseURL   string
	statePath string
	client    *http.Client

	state *State
}

// NewManager loads any previously saved session from statePath.
func NewManager(baseURL, statePath string) (*Manager, error) {
	m := &Manager{
		baseURL:   strings.TrimRight(baseURL, "/"),
		statePath: statePath,
		client:    &http.Client{Timeout: 10 * time.Second},
	}
	if err := m.load(); err != nil {
		return nil, err
	}
	return m, nil
}

// Current returns the active profile, or ErrNotLoggedIn.
func (m *Manager) Current() (types.User, error) {
	if m.state == nil {
		return types.User{}, ErrNotLoggedIn
	}
	return m.state.Profile, nil
}

// Token returns the active bearer token, or ErrNotLoggedIn.
func (m *Manager) Token() (string, error) {
	if m.state == nil {
		return "", ErrNotLoggedIn
	}
	return m.state.Token, nil
}

type authResponse struct {
	Token string     `json:"token"`
	User  types.User `json:"user"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Login authenticates against the server and replaces any previous
// session with the new one.
func (m *Manager) Login(username, password string) (types.User, error) {
	body, err := json.Marshal(map[string]string{
		"username": username,
		"password": password,
	})
	if err != nil {
		return types.User{}, err
	}

	resp, err := m.client.Post(m.baseURL+"/auth/login", "application/json", bytes.NewReader(body))
	if err != nil {
		return types.User{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return types.User{}, responseError(resp)
	}

	var auth authResponse
	if err := json.NewDecoder(resp.Body).Decode(&auth); err != nil {
		return types.User{}, err
	}
	if err := m.save(&State{Token: auth.Token, Profile: auth.User}); err != nil {
		return types.User{}, err
	}
	return auth.User, nil
}

// RegisterInput carries the self-registration fields.
type RegisterInput struct {
	Username        string `json:"username"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password,omitempty"`
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
}

// Register creates a new account and logs in as it.
func (m *Manager) Register(input RegisterInput) (types.User, error) {
	body, err := json.Marshal(input)
	if err != nil {
		return types.User{}, err
	}

	resp, err := m.client.Post(m.baseURL+"/auth/register", "application/json", bytes.NewReader(body))
	if err != nil {
		return types.User{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		return types.User{}, responseError(resp)
	}

	var auth authResponse
	if err := json.NewDecoder(resp.Body).Decode(&auth); err != nil {
		return types.User{}, err
	}
	if err := m.save(&State{Token: auth.Token, Profile: auth.User}); err != nil {
		return types.User{}, err
	}
	return auth.User, nil
}

// Logout clears the saved session. Logging out when no session is
// active is not an error.
func (m *Manager) Logout() error {
	if m.state != nil {
		req, err := http.NewRequest(http.MethodPost, m.baseURL+"/auth/logout", nil)
		if err == nil {
			req.Header.Set("Authorization", "Bearer "+m.state.Token)
			if resp, err := m.client.Do(req); err == nil {
				resp.Body.Close()
			}
		}
	}

	m.state = nil
	if err := os.Remove(m.statePath); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (m *Manager) load() error {
	data, err := os.ReadFile(m.statePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		return fmt.Errorf("corrupt session state %s: %w", m.statePath, err)
	}
	if state.Token == "" {
		return nil
	}
	m.state = &state
	return nil
}

func (m *Manager) save(state *State) error {
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(m.statePath), 0o700); err != nil {
		return err
	}
	if err := os.WriteFile(m.statePath, data, 0o600); err != nil {
		return err
	}
	m.state = state
	return nil
}

func responseError(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	var apiErr errorResponse
	if json.Unmarshal(data, &apiErr) == nil && apiErr.Error != "" {
		return fmt.Errorf("server: %s", apiErr.Error)
	}
	return fmt.Errorf("server returned %s", resp.Status)
}
