package session

import (
	"errors"
	"sort"
	"sync"

	"dilemma-lab/internal/game"
)

var (
	ErrSessionNotFound  = errors.New("session_not_found")
	ErrDuplicateSession = errors.New("duplicate_session")
)

type entry struct {
	mu      sync.Mutex
	sess    *game.Session
	deleted bool
}

// Store holds live sessions. Operations on one id are serialized by that
// id's lock; the map lock is held only for lookups and membership changes.
// Sessions never leave the store by reference: reads return clones and
// writes store clones.
type Store struct {
	mu      sync.RWMutex
	entries map[string]*entry
}

func NewStore() *Store {
	return &Store{entries: map[string]*entry{}}
}

func (s *Store) Create(sess *game.Session) (string, error) {
	id := sess.ID()
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[id]; ok {
		return "", ErrDuplicateSession
	}
	s.entries[id] = &entry{sess: sess.Clone()}
	return id, nil
}

func (s *Store) Get(id string) (*game.Session, error) {
	e := s.lookup(id)
	if e == nil {
		return nil, ErrSessionNotFound
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.deleted {
		return nil, ErrSessionNotFound
	}
	return e.sess.Clone(), nil
}

func (s *Store) Replace(id string, sess *game.Session) error {
	e := s.lookup(id)
	if e == nil {
		return ErrSessionNotFound
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.deleted {
		return ErrSessionNotFound
	}
	e.sess = sess.Clone()
	return nil
}

// Update runs fn on a copy of the session while holding the id's lock and
// commits the copy only when fn returns nil.
func (s *Store) Update(id string, fn func(*game.Session) error) error {
	e := s.lookup(id)
	if e == nil {
		return ErrSessionNotFound
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.deleted {
		return ErrSessionNotFound
	}
	next := e.sess.Clone()
	if err := fn(next); err != nil {
		return err
	}
	e.sess = next
	return nil
}

// Delete removes the session. An Update blocked on the same id observes the
// removal and fails with ErrSessionNotFound.
func (s *Store) Delete(id string) bool {
	s.mu.Lock()
	e, ok := s.entries[id]
	if ok {
		delete(s.entries, id)
	}
	s.mu.Unlock()
	if !ok {
		return false
	}
	e.mu.Lock()
	e.deleted = true
	e.mu.Unlock()
	return true
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// IDs returns the live session ids in sorted order.
func (s *Store) IDs() []string {
	s.mu.RLock()
	ids := make([]string, 0, len(s.entries))
	for id := range s.entries {
		ids = append(ids, id)
	}
	s.mu.RUnlock()
	sort.Strings(ids)
	return ids
}

// Range calls fn with a snapshot of every live session until fn returns
// false. Sessions created during the walk may or may not be visited.
func (s *Store) Range(fn func(snap game.Snapshot) bool) {
	s.mu.RLock()
	entries := make([]*entry, 0, len(s.entries))
	for _, e := range s.entries {
		entries = append(entries, e)
	}
	s.mu.RUnlock()

	for _, e := range entries {
		e.mu.Lock()
		if e.deleted {
			e.mu.Unlock()
			continue
		}
		snap := e.sess.Snapshot()
		e.mu.Unlock()
		if !fn(snap) {
			return
		}
	}
}

func (s *Store) lookup(id string) *entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.entries[id]
}
