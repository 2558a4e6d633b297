// Package session holds the per-user locker-carousel position. Entries
// live in process memory and expire after 30 minutes of inactivity.
package session

import (
	"sync"
	"time"

	"github.com/weichenlin/tripmate/internal/gateway"
)

const (
	defaultTTL      = 30 * time.Minute
	janitorInterval = 5 * time.Minute
)

// LockerSession is one user's carousel state.
type LockerSession struct {
	Lockers []gateway.Locker
	Index   int
}

type entry struct {
	session   LockerSession
	expiresAt time.Time
}

type Store struct {
	mu      sync.Mutex
	entries map[string]entry
	ttl     time.Duration
	done    chan struct{}
	once    sync.Once

	now func() time.Time
}

func NewStore() *Store {
	s := &Store{
		entries: make(map[string]entry),
		ttl:     defaultTTL,
		done:    make(chan struct{}),
		now:     time.Now,
	}
	go s.janitor()
	return s
}

// Get returns the user's session if it has not expired. Reading refreshes
// the TTL.
func (s *Store) Get(userID string) (LockerSession, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[userID]
	if !ok || s.now().After(e.expiresAt) {
		delete(s.entries, userID)
		return LockerSession{}, false
	}
	e.expiresAt = s.now().Add(s.ttl)
	s.entries[userID] = e
	return e.session, true
}

// Put stores the user's session with a fresh TTL.
func (s *Store) Put(userID string, session LockerSession) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[userID] = entry{session: session, expiresAt: s.now().Add(s.ttl)}
}

// Delete drops the user's session.
func (s *Store) Delete(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, userID)
}

// Stop terminates the janitor goroutine.
func (s *Store) Stop() {
	s.once.Do(func() { close(s.done) })
}

func (s *Store) janitor() {
	ticker := time.NewTicker(janitorInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			s.mu.Lock()
			now := s.now()
			for k, e := range s.entries {
				if now.After(e.expiresAt) {
					delete(s.entries, k)
				}
			}
			s.mu.Unlock()
		}
	}
}
