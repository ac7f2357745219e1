package voicebank

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
)

// Loader reads a voicebank from a directory.
type Loader interface {
	LoadVoicebank(dir string) (*Voicebank, error)
}

// Manager caches loaded voicebanks by normalized location so the same
// voicebank is only loaded once. It is safe for concurrent use.
type Manager struct {
	mu          sync.Mutex
	voicebanks  map[string]*Voicebank
	loader      Loader
	defaultPath string
	userDefault string
	logger      *slog.Logger
}

func NewManager(loader Loader, defaultPath string) *Manager {
	return &Manager{
		voicebanks:  make(map[string]*Voicebank),
		loader:      loader,
		defaultPath: defaultPath,
		logger:      slog.Default(),
	}
}

func (m *Manager) SetUserDefault(location string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.userDefault = location
}

// Default returns the user's default voicebank, falling back to the
// built-in one when it cannot be read.
func (m *Manager) Default() (*Voicebank, error) {
	m.mu.Lock()
	userDefault := m.userDefault
	m.mu.Unlock()

	if userDefault != "" {
		vb, err := m.Get(userDefault, false)
		if err == nil {
			return vb, nil
		}
		m.logger.Warn("could not read default voicebank", "location", userDefault, "err", err)
	}
	vb, err := m.Get(m.defaultPath, false)
	if err != nil {
		return nil, fmt.Errorf("load built-in voicebank: %w", err)
	}
	return vb, nil
}

func (m *Manager) Has(location string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.voicebanks[normalize(location)]
	return ok
}

// Get returns the cached voicebank at location, loading it first when it is
// not cached or reload is set.
func (m *Manager) Get(location string, reload bool) (*Voicebank, error) {
	key := normalize(location)
	m.mu.Lock()
	vb, ok := m.voicebanks[key]
	m.mu.Unlock()
	if ok && !reload {
		return vb, nil
	}

	vb, err := m.loader.LoadVoicebank(location)
	if err != nil {
		return nil, err
	}
	m.Set(location, vb)
	return vb, nil
}

func (m *Manager) Set(location string, vb *Voicebank) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.voicebanks[normalize(location)] = vb
}

func (m *Manager) Remove(location string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.voicebanks, normalize(location))
}

func normalize(location string) string {
	abs, err := filepath.Abs(location)
	if err != nil {
		return filepath.Clean(location)
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		return resolved
	}
	return abs
}
