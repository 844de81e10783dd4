package session

import (
	"context"
	"log/slog"
	"sync"
)

// Manager keeps one open Session per signed-in account.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Session
	opts     Options
}

// NewManager creates a Manager whose sessions share opts.
func NewManager(opts Options) *Manager {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Manager{sessions: make(map[string]*Session), opts: opts}
}

// Open returns the account's session, opening it if needed.
func (m *Manager) Open(ctx context.Context, account string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[account]; ok {
		return s, nil
	}
	s, err := Open(ctx, account, m.opts)
	if err != nil {
		return nil, err
	}
	m.sessions[account] = s
	return s, nil
}

// Get returns an already open session.
func (m *Manager) Get(account string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[account]
	return s, ok
}

// Close ends the account's session. Closing an account without a session
// is a no-op.
func (m *Manager) Close(account string) {
	m.mu.Lock()
	s, ok := m.sessions[account]
	delete(m.sessions, account)
	m.mu.Unlock()
	if ok {
		s.Close()
	}
}

// CloseAll ends every session. Used on shutdown.
func (m *Manager) CloseAll() {
	m.mu.Lock()
	open := m.sessions
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()

	var wg sync.WaitGroup
	for _, s := range open {
		wg.Add(1)
		go func(s *Session) {
			defer wg.Done()
			s.Close()
		}(s)
	}
	wg.Wait()
}

// Len returns the number of open sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}
