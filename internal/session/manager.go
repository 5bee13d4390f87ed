package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ManagerConfig controls session lifetime and limits.
type ManagerConfig struct {
	TTL             time.Duration
	CleanupInterval time.Duration
	Session         Options
}

// Manager creates sessions and evicts idle ones in the background.
type Manager struct {
	store *Store
	log   *slog.Logger
	cfg   ManagerConfig

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewManager(cfg ManagerConfig, log *slog.Logger) *Manager {
	if cfg.TTL <= 0 {
		cfg.TTL = time.Hour
	}
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = 5 * time.Minute
	}
	return &Manager{
		store: NewStore(cfg.TTL),
		log:   log,
		cfg:   cfg,
	}
}

// Start launches the cleanup loop.
func (m *Manager) Start(ctx context.Context) {
	loopCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		ticker := time.NewTicker(m.cfg.CleanupInterval)
		defer ticker.Stop()
		for {
			select {
			case <-loopCtx.Done():
				return
			case <-ticker.C:
				if n := m.store.Cleanup(); n > 0 {
					m.log.Info("evicted idle sessions", "count", n, "remaining", m.store.Len())
				}
			}
		}
	}()
}

// Stop ends the cleanup loop and waits for it.
func (m *Manager) Stop() {
	if m.cancel != nil {
		m.cancel()
	}
	m.wg.Wait()
}

// Create registers a new empty session.
func (m *Manager) Create() *Session {
	sess := New(uuid.NewString(), m.cfg.Session)
	m.store.Put(sess)
	m.log.Info("session created", "session_id", sess.ID)
	return sess
}

// Get returns a session by ID, or nil.
func (m *Manager) Get(id string) *Session {
	return m.store.Get(id)
}

// Delete removes a session and reports whether it existed.
func (m *Manager) Delete(id string) bool {
	ok := m.store.Delete(id)
	if ok {
		m.log.Info("session deleted", "session_id", id)
	}
	return ok
}

// Len returns the number of live sessions.
func (m *Manager) Len() int {
	return m.store.Len()
}

// MaxQuestions is the budget given to new sessions.
func (m *Manager) MaxQuestions() int {
	if m.cfg.Session.MaxQuestions <= 0 {
		return DefaultMaxQuestions
	}
	return m.cfg.Session.MaxQuestions
}
