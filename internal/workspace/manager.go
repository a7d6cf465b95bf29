package workspace

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/your-org/partsboard/internal/observability"
)

// Factory builds the workspace of a new session.
type Factory func(sess Session) *Workspace

// Manager keeps one workspace per session and closes those left idle.
type Manager struct {
	mu      sync.Mutex
	items   map[string]*managed
	factory Factory
	idleTTL time.Duration
	now     func() time.Time
}

type managed struct {
	ws       *Workspace
	lastUsed time.Time
}

func NewManager(factory Factory, idleTTL time.Duration) *Manager {
	return &Manager{
		items:   make(map[string]*managed),
		factory: factory,
		idleTTL: idleTTL,
		now:     time.Now,
	}
}

// Get returns the session's workspace, creating it on first use. A changed token
// (re-login under the same session) replaces the workspace.
func (m *Manager) Get(sess Session) *Workspace {
	m.mu.Lock()
	defer m.mu.Unlock()

	if it, ok := m.items[sess.ID]; ok {
		if it.ws.session.Token == sess.Token {
			it.lastUsed = m.now()
			return it.ws
		}
		it.ws.Close()
		delete(m.items, sess.ID)
	}

	ws := m.factory(sess)
	m.items[sess.ID] = &managed{ws: ws, lastUsed: m.now()}
	observability.ActiveWorkspaces.Set(float64(len(m.items)))
	slog.Debug("workspace opened", "session", sess.ID)
	return ws
}

func (m *Manager) Lookup(id string) (*Workspace, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	it, ok := m.items[id]
	if !ok {
		return nil, false
	}
	return it.ws, true
}

// Close tears down the workspace of a session, cancelling pending debounces.
func (m *Manager) Close(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if it, ok := m.items[id]; ok {
		it.ws.Close()
		delete(m.items, id)
		observability.ActiveWorkspaces.Set(float64(len(m.items)))
	}
}

// Sweep closes every workspace idle for longer than the TTL.
func (m *Manager) Sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.idleTTL <= 0 {
		return 0
	}
	cutoff := m.now().Add(-m.idleTTL)
	closed := 0
	for id, it := range m.items {
		if it.lastUsed.Before(cutoff) {
			it.ws.Close()
			delete(m.items, id)
			closed++
		}
	}
	observability.ActiveWorkspaces.Set(float64(len(m.items)))
	return closed
}

func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}

// Run sweeps periodically until ctx is done, then closes everything.
func (m *Manager) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			m.closeAll()
			return
		case <-ticker.C:
			if n := m.Sweep(); n > 0 {
				slog.Info("idle workspaces closed", "count", n)
			}
		}
	}
}

func (m *Manager) closeAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, it := range m.items {
		it.ws.Close()
		delete(m.items, id)
	}
	observability.ActiveWorkspaces.Set(0)
}
