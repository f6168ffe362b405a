package dashboard

import (
	"context"
	"sync"
	"time"

	"github.com/chrisdamba/menuboard/internal/menu"
	"github.com/chrisdamba/menuboard/internal/models"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type storedSession struct {
	session  *menu.Session
	lastSeen time.Time
}

// SessionStore keeps one independent menu session per dashboard visitor. Sessions idle
// for longer than the TTL are dropped by Sweep; a zero TTL keeps them forever.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*storedSession
	create   func() *menu.Session
	ttl      time.Duration
	now      func() time.Time
}

func NewSessionStore(create func() *menu.Session, ttl time.Duration) *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*storedSession),
		create:   create,
		ttl:      ttl,
		now:      time.Now,
	}
}

func (s *SessionStore) Create() (string, *menu.Session) {
	id := uuid.NewString()
	session := s.create()

	s.mu.Lock()
	s.sessions[id] = &storedSession{session: session, lastSeen: s.now()}
	s.mu.Unlock()
	return id, session
}

// Get returns the session and marks it as used.
func (s *SessionStore) Get(id string) (*menu.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.sessions[id]
	if !ok {
		return nil, &models.NotFoundError{What: "session " + id}
	}
	stored.lastSeen = s.now()
	return stored.session, nil
}

// Sweep drops the sessions not used since now minus the TTL and returns how many went.
func (s *SessionStore) Sweep(now time.Time) int {
	if s.ttl <= 0 {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for id, stored := range s.sessions {
		if now.Sub(stored.lastSeen) > s.ttl {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

// sweepEvery runs Sweep on a ticker until ctx is done.
func (s *SessionStore) sweepEvery(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.Sweep(s.now()); n > 0 {
				log.Info().Int("sessions", n).Msg("Evicted idle dashboard sessions")
			}
		}
	}
}

func (s *SessionStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[id]; !ok {
		return &models.NotFoundError{What: "session " + id}
	}
	delete(s.sessions, id)
	return nil
}

func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// CatalogItems counts the items across all sessions.
func (s *SessionStore) CatalogItems() int {
	s.mu.RLock()
	sessions := make([]*menu.Session, 0, len(s.sessions))
	for _, stored := range s.sessions {
		sessions = append(sessions, stored.session)
	}
	s.mu.RUnlock()

	total := 0
	for _, session := range sessions {
		session.WithLock(func() error {
			total += session.Catalog.Len()
			return nil
		})
	}
	return total
}
