// Package store holds the email repositories: in-memory, SQLite, MySQL and PostgreSQL.
package store

import (
	"context"
	"sort"
	"sync"

	"github.com/rasi23/pingpeek-phishguard/internal/core"
)

// MemoryStore is an in-memory implementation of core.EmailRepository
type MemoryStore struct {
	mu     sync.RWMutex
	emails map[string]core.Email
}

// NewMemoryStore creates an empty store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{emails: make(map[string]core.Email)}
}

// List returns all emails, newest first
func (s *MemoryStore) List(ctx context.Context) ([]core.Email, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]core.Email, 0, len(s.emails))
	for _, e := range s.emails {
		out = append(out, cloneEmail(e))
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Date.Equal(out[j].Date) {
			return out[i].ID < out[j].ID
		}
		return out[i].Date.After(out[j].Date)
	})
	return out, nil
}

// Get returns one email
func (s *MemoryStore) Get(ctx context.Context, id string) (*core.Email, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.emails[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	e = cloneEmail(e)
	return &e, nil
}

// Save inserts or replaces an email. A re-analysed email keeps its quarantine flag.
func (s *MemoryStore) Save(ctx context.Context, email *core.Email) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := cloneEmail(*email)
	if prev, ok := s.emails[e.ID]; ok && prev.Quarantined {
		e.Quarantined = true
	}
	s.emails[e.ID] = e
	return nil
}

// Quarantine flags an email
func (s *MemoryStore) Quarantine(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.emails[id]
	if !ok {
		return core.ErrNotFound
	}
	e.Quarantined = true
	s.emails[id] = e
	return nil
}

// Close is a no-op
func (s *MemoryStore) Close() error {
	return nil
}

func cloneEmail(e core.Email) core.Email {
	e.Rules = append([]string(nil), e.Rules...)
	return e
}
