package web

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/stardustkit/cataloguer/internal/catalogue"
)

// Session is one live catalogue being assembled over the API. The catalogue
// itself is single-owner and not safe for concurrent use, so every access
// goes through the session mutex.
type Session struct {
	ID        string
	CreatedAt time.Time

	mu        sync.Mutex
	cat       *catalogue.Catalogue
	artifacts []string // absolute paths written by the last save
}

// WithCatalogue runs fn with exclusive access to the session's catalogue.
func (s *Session) WithCatalogue(fn func(c *catalogue.Catalogue) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.cat)
}

// SetArtifacts records the file paths written by the last save.
func (s *Session) SetArtifacts(paths []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.artifacts = append([]string(nil), paths...)
}

// Artifacts returns the file paths written by the last save, if any.
func (s *Session) Artifacts() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.artifacts...)
}

// SessionRegistry tracks open catalogue sessions by uuid handle. It caps
// the number of simultaneously open sessions and rejects duplicate
// catalogue names, since two live catalogues with the same name would write
// over each other's bundles.
type SessionRegistry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	max      int
}

// NewSessionRegistry creates a registry allowing up to max open sessions.
func NewSessionRegistry(max int) *SessionRegistry {
	return &SessionRegistry{
		sessions: make(map[string]*Session),
		max:      max,
	}
}

// Add registers a new session for the catalogue and returns its handle.
func (r *SessionRegistry) Add(cat *catalogue.Catalogue) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.sessions) >= r.max {
		return nil, fmt.Errorf("too many catalogues open (limit %d)", r.max)
	}
	for _, s := range r.sessions {
		if s.cat.Name() == cat.Name() {
			return nil, fmt.Errorf("catalogue name %q already in use", cat.Name())
		}
	}

	s := &Session{
		ID:        uuid.NewString(),
		CreatedAt: time.Now(),
		cat:       cat,
	}
	r.sessions[s.ID] = s
	return s, nil
}

// Get returns the session with the given handle.
func (r *SessionRegistry) Get(id string) (*Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.sessions[id]
	if !ok {
		return nil, fmt.Errorf("catalogue not found: %s", id)
	}
	return s, nil
}

// Remove discards a session. Artifacts already written stay on disk.
func (r *SessionRegistry) Remove(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[id]; !ok {
		return fmt.Errorf("catalogue not found: %s", id)
	}
	delete(r.sessions, id)
	return nil
}

// List returns all open sessions ordered by creation time, then id for
// stability when two sessions share a timestamp.
func (r *SessionRegistry) List() []*Session {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Len returns the number of open sessions.
func (r *SessionRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
