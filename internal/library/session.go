package library

import (
	"fmt"
	"strings"

	"github.com/rebeliceyang/lazyquery/internal/models"
)

// cachedFields is the unsaved criteria and display state of a query
type cachedFields struct {
	criteria []models.CriteriaField
	display  []models.DisplayField
}

// Session tracks the query currently open for editing.
// Edits go to a working copy; Commit writes them to the library.
// Leaving a query keeps its uncommitted fields in memory so reopening
// it in the same session restores them.
type Session struct {
	lib     *Manager
	current *models.QueryDefinition
	cache   map[string]cachedFields
}

// NewSession creates a session over lib
func NewSession(lib *Manager) *Session {
	return &Session{
		lib:   lib,
		cache: make(map[string]cachedFields),
	}
}

// Current returns the working copy of the open query, or nil
func (s *Session) Current() *models.QueryDefinition {
	return s.current
}

// Open leaves the current query and opens name. Cached fields from an
// earlier visit take precedence over the persisted ones.
func (s *Session) Open(name string) (*models.QueryDefinition, error) {
	stored, err := s.lib.Get(name)
	if err != nil {
		return nil, err
	}
	s.Leave()

	working := stored.Clone()
	if c, ok := s.cache[cacheKey(stored.Name)]; ok {
		working.Criteria = models.CloneCriteria(c.criteria)
		working.Display = append([]models.DisplayField(nil), c.display...)
	}
	s.current = working
	return working, nil
}

// Leave closes the open query, caching its fields
func (s *Session) Leave() {
	if s.current == nil {
		return
	}
	s.cache[cacheKey(s.current.Name)] = cachedFields{
		criteria: models.CloneCriteria(s.current.Criteria),
		display:  append([]models.DisplayField(nil), s.current.Display...),
	}
	s.current = nil
}

// Commit saves the working copy to the library and drops its cache entry
func (s *Session) Commit() error {
	if s.current == nil {
		return fmt.Errorf("no query is open")
	}
	if err := s.lib.Update(s.current); err != nil {
		return err
	}
	delete(s.cache, cacheKey(s.current.Name))
	return nil
}

// Discard forgets cached fields for name. If name is open its working copy
// is reloaded from the library.
func (s *Session) Discard(name string) error {
	delete(s.cache, cacheKey(name))
	if s.current == nil || !strings.EqualFold(s.current.Name, name) {
		return nil
	}
	stored, err := s.lib.Get(name)
	if err != nil {
		return err
	}
	s.current = stored.Clone()
	return nil
}

// Cached reports whether name has uncommitted fields in the session
func (s *Session) Cached(name string) bool {
	_, ok := s.cache[cacheKey(name)]
	return ok
}

func cacheKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
