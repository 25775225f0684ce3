package printshop

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrSessionNotFound is returned by stores for unknown session ids.
var ErrSessionNotFound = errors.New("printshop: session not found")

const (
	// DefaultSessionTTL is how long an idle session stays loadable.
	DefaultSessionTTL = 12 * time.Hour
	// DefaultMaxSessions caps the in-memory store.
	DefaultMaxSessions = 10000
)

// InMemorySessionStore is a concurrency-safe default SessionStore. Sessions
// expire after the idle TTL, and the least recently used session is evicted
// once the store is full.
type InMemorySessionStore struct {
	mu   sync.Mutex
	data map[string]storedSession
	ttl  time.Duration
	max  int
	now  func() time.Time
}

type storedSession struct {
	session  Session
	lastSeen time.Time
}

// SessionStoreOption customizes an InMemorySessionStore.
type SessionStoreOption func(*InMemorySessionStore)

// WithSessionTTL sets the idle expiry. Non-positive values keep the default.
func WithSessionTTL(ttl time.Duration) SessionStoreOption {
	return func(s *InMemorySessionStore) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithMaxSessions caps how many sessions are held. Non-positive values keep
// the default.
func WithMaxSessions(n int) SessionStoreOption {
	return func(s *InMemorySessionStore) {
		if n > 0 {
			s.max = n
		}
	}
}

// NewInMemorySessionStore creates an empty session store.
func NewInMemorySessionStore(opts ...SessionStoreOption) *InMemorySessionStore {
	s := &InMemorySessionStore{
		data: make(map[string]storedSession),
		ttl:  DefaultSessionTTL,
		max:  DefaultMaxSessions,
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewSessionID returns a random session identifier.
func NewSessionID() string {
	return uuid.NewString()
}

// Load returns the stored session and refreshes its idle timer. Unknown and
// expired ids return ErrSessionNotFound.
func (s *InMemorySessionStore) Load(_ context.Context, id string) (Session, error) {
	if id == "" {
		return Session{}, ErrSessionNotFound
	}
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.data[id]
	if !ok {
		return Session{}, ErrSessionNotFound
	}
	if s.expired(entry, now) {
		delete(s.data, id)
		return Session{}, ErrSessionNotFound
	}
	entry.lastSeen = now
	s.data[id] = entry
	return entry.session, nil
}

// Save persists the session under its id.
func (s *InMemorySessionStore) Save(_ context.Context, session Session) error {
	if session.ID == "" {
		return fmt.Errorf("session store requires session id")
	}
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.data[session.ID]; !ok && len(s.data) >= s.max {
		s.evictLocked(now)
	}
	s.data[session.ID] = storedSession{session: session, lastSeen: now}
	return nil
}

// Delete forgets the session. Deleting an unknown id is not an error.
func (s *InMemorySessionStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, id)
	return nil
}

// Len reports how many sessions are held, expired ones included.
func (s *InMemorySessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.data)
}

func (s *InMemorySessionStore) expired(entry storedSession, now time.Time) bool {
	return now.Sub(entry.lastSeen) >= s.ttl
}

// evictLocked drops expired sessions, then the least recently seen one if
// the store is still full.
func (s *InMemorySessionStore) evictLocked(now time.Time) {
	var (
		oldestID string
		oldest   time.Time
	)
	for id, entry := range s.data {
		if s.expired(entry, now) {
			delete(s.data, id)
			continue
		}
		if oldestID == "" || entry.lastSeen.Before(oldest) {
			oldestID, oldest = id, entry.lastSeen
		}
	}
	if len(s.data) >= s.max && oldestID != "" {
		delete(s.data, oldestID)
	}
}

// ResolveSession returns the stored session for id. Unknown ids yield an
// anonymous session that is not saved; only a login persists it. An empty id
// is replaced by a new one.
func ResolveSession(ctx context.Context, store SessionStore, id string) (Session, error) {
	session, err := store.Load(ctx, id)
	if err == nil {
		return session, nil
	}
	if !errors.Is(err, ErrSessionNotFound) {
		return Session{}, err
	}
	if id == "" {
		id = NewSessionID()
	}
	return Session{ID: id}, nil
}
