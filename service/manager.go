package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/atomic"
	"go.uber.org/zap"

	"attritioninsight/cache"
	"attritioninsight/models"
	"attritioninsight/validation"
)

// Manager resolves session IDs to live sessions. Idle sessions expire from
// memory after the TTL; their transcript survives in the store and is
// restored on the next request. A session with a turn in flight stays pinned
// even if its cache entry expires, so one ID never maps to two sessions.
type Manager struct {
	p        *Pipeline
	sessions *cache.Cache

	mu       sync.Mutex
	inflight map[string]*pinned
	restored *atomic.Int64
	evicted  *atomic.Int64
}

type pinned struct {
	s     *Session
	turns int
}

func NewManager(p *Pipeline, ttl, cleanupInterval time.Duration) *Manager {
	if p.Log == nil {
		p.Log = zap.NewNop()
	}
	m := &Manager{
		p:        p,
		sessions: cache.New(ttl, cleanupInterval),
		inflight: make(map[string]*pinned),
		restored: atomic.NewInt64(0),
		evicted:  atomic.NewInt64(0),
	}
	m.sessions.OnEvicted(func(id string, _ interface{}) {
		m.evicted.Inc()
		p.Log.Debug("session evicted from memory", zap.String("session_id", id))
	})
	return m
}

// Get returns the session for id, restoring it from the store or creating
// it when needed. An empty id starts a new session.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lookup(id)
}

// lookup must be called with m.mu held.
func (m *Manager) lookup(id string) (*Session, error) {
	if err := validation.CheckSessionID(id); err != nil {
		return nil, fmt.Errorf("%w: %q", err, id)
	}
	if id == "" {
		id = uuid.NewString()
	}

	if p, ok := m.inflight[id]; ok {
		m.sessions.SetDefault(id, p.s)
		return p.s, nil
	}
	if v, ok := m.sessions.Get(id); ok {
		s := v.(*Session)
		m.sessions.SetDefault(id, s)
		return s, nil
	}

	var history []models.Message
	if m.p.Store != nil {
		var err error
		history, err = m.p.Store.LoadMessages(id)
		if err != nil {
			return nil, fmt.Errorf("failed to restore session %s: %w", id, err)
		}
		if len(history) > 0 {
			m.restored.Inc()
			m.p.Log.Debug("restored session", zap.String("session_id", id), zap.Int("messages", len(history)))
		}
	}

	s := NewSession(id, m.p, history)
	m.sessions.SetDefault(id, s)
	return s, nil
}

// acquire pins the session for id until the returned release is called.
func (m *Manager) acquire(id string) (*Session, func(), error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, err := m.lookup(id)
	if err != nil {
		return nil, nil, err
	}
	p, ok := m.inflight[s.ID()]
	if !ok {
		p = &pinned{s: s}
		m.inflight[s.ID()] = p
	}
	p.turns++

	release := func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		p.turns--
		if p.turns == 0 {
			delete(m.inflight, s.ID())
		}
		m.sessions.SetDefault(s.ID(), s)
	}
	return s, release, nil
}

// Chat runs one turn on the session named by id.
func (m *Manager) Chat(ctx context.Context, id, query string) models.ChatResult {
	s, release, err := m.acquire(id)
	if err != nil {
		return models.ChatResult{
			Response:  fmt.Sprintf("Error processing query: %v", err),
			Status:    models.StatusError,
			SessionID: id,
		}
	}
	defer release()
	return s.Send(ctx, query)
}

func (m *Manager) Reset(id string) error {
	s, err := m.Get(id)
	if err != nil {
		return err
	}
	return s.Reset()
}

func (m *Manager) History(id string) ([]models.Message, error) {
	s, err := m.Get(id)
	if err != nil {
		return nil, err
	}
	return s.History(), nil
}

// Sessions lists persisted sessions, most recent first.
func (m *Manager) Sessions() ([]models.SessionInfo, error) {
	if m.p.Store == nil {
		return []models.SessionInfo{}, nil
	}
	return m.p.Store.ListSessions()
}

// Active returns the number of sessions held in memory.
func (m *Manager) Active() int {
	return m.sessions.Len()
}

// Evicted returns how many idle sessions have expired from memory.
func (m *Manager) Evicted() int64 {
	return m.evicted.Load()
}

// Restored returns how many sessions were rebuilt from the store.
func (m *Manager) Restored() int64 {
	return m.restored.Load()
}
