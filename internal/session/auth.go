package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/tonimelisma/box-client/pkg/box"
)

const authSessionFile = "auth_session.json"

// AuthStateTTL bounds how long a started login can be completed.
const AuthStateTTL = 10 * time.Minute

// AuthState is a pending authorization code login. The verifier and state
// are needed again when the user returns with the code.
type AuthState struct {
	CodeVerifier string    `json:"code_verifier"`
	State        string    `json:"state"`
	AuthURL      string    `json:"auth_url"`
	RedirectURL  string    `json:"redirect_url,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// Expired reports whether the login can no longer be completed.
func (s *AuthState) Expired(now time.Time) bool {
	return now.Sub(s.CreatedAt) > AuthStateTTL
}

func (m *Manager) getAuthSessionFilePath() string {
	return filepath.Join(m.getSessionDir(), authSessionFile)
}

// SaveAuthState persists a pending login.
func (m *Manager) SaveAuthState(state *AuthState) error {
	path := m.getAuthSessionFilePath()
	return m.withLock(path, func() error {
		data, err := json.MarshalIndent(state, "", "  ")
		if err != nil {
			return fmt.Errorf("marshalling auth session state: %w", err)
		}
		return os.WriteFile(path, data, box.PermSecureFile)
	})
}

// LoadAuthState returns the pending login, or nil when there is none. An
// expired login is removed and reported as absent.
func (m *Manager) LoadAuthState() (*AuthState, error) {
	path := m.getAuthSessionFilePath()

	var state *AuthState
	err := m.withLock(path, func() error {
		data, err := os.ReadFile(path)
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("reading auth session file: %w", err)
		}

		var s AuthState
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("unmarshalling auth session state: %w", err)
		}
		if s.Expired(time.Now()) {
			return removeIfExists(path)
		}
		state = &s
		return nil
	})
	return state, err
}

// DeleteAuthState removes the pending login. Deleting a missing state is
// not an error.
func (m *Manager) DeleteAuthState() error {
	path := m.getAuthSessionFilePath()
	return m.withLock(path, func() error {
		return removeIfExists(path)
	})
}

func removeIfExists(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("deleting auth session file: %w", err)
	}
	return nil
}
