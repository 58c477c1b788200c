// Package sessionstore keeps admin sessions in Redis, or in process memory
// when no Redis address is configured.
package sessionstore

import (
	"context"
	"sync"
	"time"

	"github.com/khoahotran/portfolio/internal/application/session"
	"github.com/khoahotran/portfolio/internal/datastore"
)

type entry struct {
	sess    datastore.Session
	expires time.Time
}

type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]entry
	now     func() time.Time
}

var _ session.Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]entry), now: time.Now}
}

func (s *MemoryStore) Save(_ context.Context, id string, sess datastore.Session, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[id] = entry{sess: sess, expires: s.now().Add(ttl)}
	return nil
}

func (s *MemoryStore) Load(_ context.Context, id string) (*datastore.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[id]
	if !ok {
		return nil, nil
	}
	if !s.now().Before(e.expires) {
		delete(s.entries, id)
		return nil, nil
	}
	sess := e.sess
	return &sess, nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, id)
	return nil
}
