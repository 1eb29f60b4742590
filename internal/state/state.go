package state

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const (
	stateDirName  = "filedress"
	stateFileName = "update.json"
)

// State is the content of the state file.
type State struct {
	// LastChecked is the Unix time of the last update check.
	LastChecked int64 `json:"last_checked"`
}

// Manager handles the lifecycle of the state file.
type Manager struct {
	statePath string
	state     State
}

// New loads the state kept in dir, or in the user's config directory when
// dir is empty. A missing or unreadable file yields an empty state.
func New(dir string) (*Manager, error) {
	if dir == "" {
		base, err := os.UserConfigDir()
		if err != nil {
			return nil, fmt.Errorf("could not locate the config directory: %w", err)
		}
		dir = filepath.Join(base, stateDirName)
	}
	m := &Manager{statePath: filepath.Join(dir, stateFileName)}
	if err := m.load(); err != nil {
		m.state = State{}
	}
	return m, nil
}

// Path is the location of the state file.
func (m *Manager) Path() string {
	return m.statePath
}

func (m *Manager) load() error {
	data, err := os.ReadFile(m.statePath)
	if err != nil {
		if os.IsNotExist(err) {
			m.state = State{}
			return nil
		}
		return err
	}
	var s State
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("invalid state file: %w", err)
	}
	m.state = s
	return nil
}

// LastChecked returns the time of the last recorded check.
func (m *Manager) LastChecked() time.Time {
	if m.state.LastChecked == 0 {
		return time.Time{}
	}
	return time.Unix(m.state.LastChecked, 0)
}

// Due reports whether at least interval has passed since the last check.
func (m *Manager) Due(now time.Time, interval time.Duration) bool {
	last := m.LastChecked()
	return last.IsZero() || now.Sub(last) >= interval
}

// MarkChecked records now as the time of the last check.
func (m *Manager) MarkChecked(now time.Time) error {
	m.state.LastChecked = now.UTC().Unix()
	if err := os.MkdirAll(filepath.Dir(m.statePath), 0o755); err != nil {
		return fmt.Errorf("could not create state directory: %w", err)
	}
	data, err := json.Marshal(m.state)
	if err != nil {
		return err
	}
	if err := os.WriteFile(m.statePath, data, 0o644); err != nil {
		return fmt.Errorf("could not write state file: %w", err)
	}
	return nil
}
