// Package session stores short-lived state that must survive between two
// CLI invocations, such as a pending interactive login.
package session

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	"github.com/tonimelisma/box-client/internal/config"
	"github.com/tonimelisma/box-client/pkg/box"
)

// Manager handles session files below a configuration directory.
type Manager struct {
	configDir string
}

// NewManager creates a manager rooted at the box-client config directory.
func NewManager() (*Manager, error) {
	dir, err := config.GetConfigDir()
	if err != nil {
		return nil, err
	}
	return &Manager{configDir: dir}, nil
}

// NewManagerWithConfigDir creates a session manager with a custom directory.
func NewManagerWithConfigDir(configDir string) *Manager {
	return &Manager{configDir: configDir}
}

func (m *Manager) getSessionDir() string {
	return filepath.Join(m.configDir, "sessions")
}

// withLock runs fn while holding the lock file next to path.
func (m *Manager) withLock(path string, fn func() error) error {
	if err := os.MkdirAll(m.getSessionDir(), box.PermSecureDir); err != nil {
		return fmt.Errorf("creating session directory: %w", err)
	}

	lock := flock.New(path + ".lock")
	locked, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("could not acquire file lock: %w", err)
	}
	if !locked {
		return errors.New("could not acquire file lock, another instance may be running")
	}
	defer lock.Unlock()

	return fn()
}
