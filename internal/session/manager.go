package session

import (
	"sync"
	"time"

	"gobandit/domain/core"
	"gobandit/internal"
	"gobandit/internal/bandit"
	"gobandit/internal/errors"
)

// Session is one live bandit experiment. Its Ensemble is only touched under mu.
type Session struct {
	ID        core.SessionID
	CreatedAt time.Time

	mu          sync.Mutex
	ensemble    *bandit.Ensemble
	config      bandit.EnsembleConfig
	rounds      int
	totalReward float64
}

// Snapshot is a point-in-time view of a session
type Snapshot struct {
	ID          core.SessionID        `json:"id"`
	CreatedAt   time.Time             `json:"created_at"`
	Config      bandit.EnsembleConfig `json:"config"`
	Rounds      int                   `json:"rounds"`
	TotalReward float64               `json:"total_reward"`
	Ensemble    bandit.EnsembleState  `json:"ensemble"`
}

// Manager owns every live session. Learner state lives only in memory.
type Manager struct {
	mu          sync.RWMutex
	sessions    map[core.SessionID]*Session
	maxSessions int
	logger      *internal.Logger
}

// NewManager creates a manager holding at most maxSessions sessions (unbounded when <= 0)
func NewManager(maxSessions int, logger *internal.Logger) *Manager {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &Manager{
		sessions:    make(map[core.SessionID]*Session),
		maxSessions: maxSessions,
		logger:      logger.Named("sessions"),
	}
}

// Create starts a session with a fresh Ensemble. A zero window means bandit.DefaultWindow.
func (m *Manager) Create(cfg bandit.EnsembleConfig) (*Snapshot, error) {
	if cfg.Window == 0 {
		cfg.Window = bandit.DefaultWindow
	}
	en, err := bandit.NewEnsemble(cfg, bandit.WithLogger(m.logger))
	if err != nil {
		return nil, err
	}

	s := &Session{
		ID:        core.NewSessionID(),
		CreatedAt: time.Now().UTC(),
		ensemble:  en,
		config:    cfg,
	}

	m.mu.Lock()
	if m.maxSessions > 0 && len(m.sessions) >= m.maxSessions {
		m.mu.Unlock()
		return nil, errors.InvalidInput("session limit reached")
	}
	m.sessions[s.ID] = s
	m.mu.Unlock()

	m.logger.Info("session %s created (seed=%d window=%d members=%d)", s.ID, cfg.Seed, cfg.Window, en.Size())
	return s.snapshot(), nil
}

// Select asks the session's leading expert for an arm
func (m *Manager) Select(id core.SessionID) (core.Arm, error) {
	s, err := m.get(id)
	if err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ensemble.SelectArm(), nil
}

// Update feeds the realized reward for arm into the session
func (m *Manager) Update(id core.SessionID, arm core.Arm, reward float64) (*Snapshot, error) {
	s, err := m.get(id)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensemble.Update(arm, reward); err != nil {
		return nil, err
	}
	s.rounds++
	s.totalReward += reward
	return s.snapshotLocked(), nil
}

// State returns a snapshot of the session
func (m *Manager) State(id core.SessionID) (*Snapshot, error) {
	s, err := m.get(id)
	if err != nil {
		return nil, err
	}
	return s.snapshot(), nil
}

// Delete ends a session
func (m *Manager) Delete(id core.SessionID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[id]; !ok {
		return core.ErrSessionNotFound
	}
	delete(m.sessions, id)
	m.logger.Info("session %s deleted", id)
	return nil
}

// Count returns the number of live sessions
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

func (m *Manager) get(id core.SessionID) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, core.ErrSessionNotFound
	}
	return s, nil
}

func (s *Session) snapshot() *Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Session) snapshotLocked() *Snapshot {
	return &Snapshot{
		ID:          s.ID,
		CreatedAt:   s.CreatedAt,
		Config:      s.config,
		Rounds:      s.rounds,
		TotalReward: s.totalReward,
		Ensemble:    s.ensemble.State(),
	}
}
