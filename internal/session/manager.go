package session

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// Factory supplies the collaborators for a new session. It is called on
// every Create so that a config reload reaches sessions created afterwards.
type Factory func() Config

// Manager keeps independent in-memory sessions keyed by ID.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Controller
	factory  Factory
	ctx      context.Context
	logger   *slog.Logger
}

// NewManager creates a session manager. ctx is the parent of every
// operation dispatched by its sessions.
func NewManager(ctx context.Context, factory Factory, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	if factory == nil {
		factory = func() Config { return Config{} }
	}
	return &Manager{
		sessions: make(map[string]*Controller),
		factory:  factory,
		ctx:      ctx,
		logger:   logger,
	}
}

// Create starts a new session.
func (m *Manager) Create() *Controller {
	cfg := m.factory()
	cfg.ID = uuid.New().String()
	if cfg.Logger == nil {
		cfg.Logger = m.logger
	}
	if cfg.Context == nil {
		cfg.Context = m.ctx
	}
	c := New(cfg)

	m.mu.Lock()
	m.sessions[c.ID()] = c
	m.mu.Unlock()

	m.logger.Info("session created", "session_id", c.ID(), "mode", c.Mode())
	return c
}

// Get returns a session by ID.
func (m *Manager) Get(id string) (*Controller, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.sessions[id]
	if !ok {
		return nil, fmt.Errorf("session not found: %s", id)
	}
	return c, nil
}

// Delete drops a session. Work still in flight finishes and is discarded.
func (m *Manager) Delete(id string) bool {
	m.mu.Lock()
	c, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()

	if ok {
		c.ClearAll()
		m.logger.Info("session deleted", "session_id", id)
	}
	return ok
}

// List returns all session IDs, sorted.
func (m *Manager) List() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Len returns the number of live sessions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
