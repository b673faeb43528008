package session

import (
	"errors"
	"sync"

	"github.com/signalsfoundry/plant-ots/core"
	"github.com/signalsfoundry/plant-ots/internal/logging"
	"github.com/signalsfoundry/plant-ots/model"
)

var ErrSessionNotFound = errors.New("session not found")

// ActiveGauge reports the live session count; the observability collector
// satisfies it.
type ActiveGauge interface {
	SetActiveSessions(n int)
}

// Recorder bundles the per-turn and per-manager observability hooks.
type Recorder interface {
	core.TurnRecorder
	ActiveGauge
}

// Manager owns the live sessions. All methods are safe for concurrent use;
// the per-session mutex serialises turns on the same session.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*managed
	log      logging.Logger
	recorder Recorder
}

type managed struct {
	mu sync.Mutex
	s  *Session
}

// NewManager returns an empty manager. recorder may be nil.
func NewManager(log logging.Logger, recorder Recorder) *Manager {
	if log == nil {
		log = logging.Noop()
	}
	return &Manager{
		sessions: make(map[string]*managed),
		log:      log,
		recorder: recorder,
	}
}

// Create starts a new session for a scenario and registers it.
func (m *Manager) Create(cfg *model.PlantConfig, scenario model.Scenario) (*Session, error) {
	var rec core.TurnRecorder
	if m.recorder != nil {
		rec = m.recorder
	}
	s, err := New(cfg, scenario, m.log, rec)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.sessions[s.ID] = &managed{s: s}
	n := len(m.sessions)
	m.mu.Unlock()

	if m.recorder != nil {
		m.recorder.SetActiveSessions(n)
	}
	return s, nil
}

// Get returns a registered session.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ms, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return ms.s, nil
}

// Delete removes a session.
func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	_, ok := m.sessions[id]
	if ok {
		delete(m.sessions, id)
	}
	n := len(m.sessions)
	m.mu.Unlock()

	if !ok {
		return ErrSessionNotFound
	}
	if m.recorder != nil {
		m.recorder.SetActiveSessions(n)
	}
	return nil
}

// WithSession runs fn while holding the session's lock, serialising turns on
// the same session without blocking turns on other sessions.
func (m *Manager) WithSession(id string, fn func(*Session) error) error {
	m.mu.Lock()
	ms, ok := m.sessions[id]
	m.mu.Unlock()
	if !ok {
		return ErrSessionNotFound
	}

	ms.mu.Lock()
	defer ms.mu.Unlock()
	return fn(ms.s)
}

// Count returns the number of live sessions.
func (m *Manager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}
