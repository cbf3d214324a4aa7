package session

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"sync"
	"time"

	"github.com/Tk21111/journal_board/config"
)

var ErrUnknownSession = errors.New("unknown session")

// Backend persists sessions by the sha256 of their token; the token itself
// is never stored.
type Backend interface {
	CreateSession(ctx context.Context, rec config.SessionRecord) error
	DeleteSession(ctx context.Context, tokenHash string) error
	PurgeSessions(now time.Time)
	SessionUser(ctx context.Context, tokenHash string, now time.Time) (config.User, error)
}

type Manager struct {
	backend Backend
	ttl     time.Duration
	now     func() time.Time
}

func NewManager(backend Backend, ttl time.Duration) *Manager {
	return &Manager{backend: backend, ttl: ttl, now: time.Now}
}

func (m *Manager) TTL() time.Duration { return m.ttl }

// Create issues a fresh token for userID. Expired sessions are purged on
// the way.
func (m *Manager) Create(ctx context.Context, userID string) (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	token := base64.RawURLEncoding.EncodeToString(b)

	now := m.now()
	m.backend.PurgeSessions(now)

	err := m.backend.CreateSession(ctx, config.SessionRecord{
		TokenHash: HashToken(token),
		UserID:    userID,
		ExpiresAt: now.Add(m.ttl),
	})
	if err != nil {
		return "", err
	}
	return token, nil
}

func (m *Manager) Lookup(ctx context.Context, token string) (config.User, bool) {
	if token == "" {
		return config.User{}, false
	}
	return m.LookupHash(ctx, HashToken(token))
}

// LookupHash resolves a session by its stored hash. Bearer tokens carry the
// hash, never the cookie token.
func (m *Manager) LookupHash(ctx context.Context, tokenHash string) (config.User, bool) {
	if tokenHash == "" {
		return config.User{}, false
	}
	u, err := m.backend.SessionUser(ctx, tokenHash, m.now())
	if err != nil {
		return config.User{}, false
	}
	return u, true
}

func (m *Manager) Delete(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return m.DeleteHash(ctx, HashToken(token))
}

func (m *Manager) DeleteHash(ctx context.Context, tokenHash string) error {
	if tokenHash == "" {
		return nil
	}
	return m.backend.DeleteSession(ctx, tokenHash)
}

func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// Memory is a Backend that lives in the process, for tests and for
// running without a database.
type Memory struct {
	mu       sync.RWMutex
	sessions map[string]config.SessionRecord // token hash -> session
	users    map[string]config.User          // user id -> user
}

func NewMemory() *Memory {
	return &Memory{
		sessions: make(map[string]config.SessionRecord),
		users:    make(map[string]config.User),
	}
}

func (s *Memory) AddUser(u config.User) {
	s.mu.Lock()
	s.users[u.ID] = u
	s.mu.Unlock()
}

func (s *Memory) CreateSession(_ context.Context, rec config.SessionRecord) error {
	s.mu.Lock()
	s.sessions[rec.TokenHash] = rec
	s.mu.Unlock()
	return nil
}

func (s *Memory) DeleteSession(_ context.Context, tokenHash string) error {
	s.mu.Lock()
	delete(s.sessions, tokenHash)
	s.mu.Unlock()
	return nil
}

func (s *Memory) PurgeSessions(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, rec := range s.sessions {
		if rec.ExpiresAt.Before(now) {
			delete(s.sessions, k)
		}
	}
}

func (s *Memory) SessionUser(_ context.Context, tokenHash string, now time.Time) (config.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.sessions[tokenHash]
	if !ok || !rec.ExpiresAt.After(now) {
		return config.User{}, ErrUnknownSession
	}
	u, ok := s.users[rec.UserID]
	if !ok {
		return config.User{}, ErrUnknownSession
	}
	return u, nil
}
