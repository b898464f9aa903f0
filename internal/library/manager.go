package library

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/rebeliceyang/lazyquery/internal/models"
	"gopkg.in/yaml.v3"
)

var (
	// ErrQueryNotFound is returned when no query has the requested name
	ErrQueryNotFound = errors.New("query not found")
	// ErrDuplicateName is returned when a name is already taken (names are case-insensitive)
	ErrDuplicateName = errors.New("query name already exists")
)

// DefaultFileName is the library file created inside the config directory
const DefaultFileName = "queries.yaml"

type libraryFile struct {
	Queries []*models.QueryDefinition `yaml:"queries"`
}

// Manager manages the saved query definitions.
// Every change made through a definition's mutation methods is written back
// to disk immediately.
type Manager struct {
	path    string
	queries []*models.QueryDefinition
	logger  *slog.Logger
	mu      sync.Mutex
}

// NewManager creates a library backed by the YAML file at path.
// A directory path gets DefaultFileName appended.
func NewManager(path string, logger *slog.Logger) (*Manager, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		path = filepath.Join(path, DefaultFileName)
	}

	m := &Manager{
		path:   path,
		logger: logger,
	}

	// Load existing queries if file exists
	if _, err := os.Stat(path); err == nil {
		if err := m.Load(); err != nil {
			return nil, fmt.Errorf("failed to load query library: %w", err)
		}
	}

	return m, nil
}

// Path returns the library file path
func (m *Manager) Path() string {
	return m.path
}

// Load loads the queries from the YAML file, replacing any in memory
func (m *Manager) Load() error {
	data, err := os.ReadFile(m.path)
	if err != nil {
		return fmt.Errorf("failed to read library file: %w", err)
	}

	var file libraryFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("failed to parse library: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.queries = m.queries[:0]
	for _, q := range file.Queries {
		if q == nil {
			continue
		}
		if q.ID == "" {
			q.ID = uuid.New().String()
		}
		q.SetOnChange(m.autosave)
		m.queries = append(m.queries, q)
	}
	return nil
}

// Save writes every query to the YAML file
func (m *Manager) Save() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saveLocked()
}

func (m *Manager) saveLocked() error {
	data, err := yaml.Marshal(libraryFile{Queries: m.queries})
	if err != nil {
		return fmt.Errorf("failed to marshal library: %w", err)
	}

	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(m.path), 0755); err != nil {
		return fmt.Errorf("failed to create library directory: %w", err)
	}

	if err := os.WriteFile(m.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write library file: %w", err)
	}
	return nil
}

func (m *Manager) autosave(q *models.QueryDefinition) {
	if err := m.Save(); err != nil {
		m.logger.Error("failed to save query library", "query", q.Name, "error", err)
	}
}

// Create adds a new empty query
func (m *Manager) Create(name string) (*models.QueryDefinition, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("query name cannot be empty")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.indexLocked(name) >= 0 {
		return nil, fmt.Errorf("%w: %q", ErrDuplicateName, name)
	}

	q := models.NewQueryDefinition(uuid.New().String(), name)
	q.SetOnChange(m.autosave)
	m.queries = append(m.queries, q)

	if err := m.saveLocked(); err != nil {
		return nil, fmt.Errorf("failed to save query: %w", err)
	}
	return q, nil
}

// Get returns the query named name. The returned definition is live:
// mutating it saves the library.
func (m *Manager) Get(name string) (*models.QueryDefinition, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.indexLocked(name)
	if i < 0 {
		return nil, fmt.Errorf("%w: %q", ErrQueryNotFound, name)
	}
	return m.queries[i], nil
}

// List returns every query sorted by name
func (m *Manager) List() []*models.QueryDefinition {
	m.mu.Lock()
	sorted := make([]*models.QueryDefinition, len(m.queries))
	copy(sorted, m.queries)
	m.mu.Unlock()

	sort.Slice(sorted, func(i, j int) bool {
		return strings.ToLower(sorted[i].Name) < strings.ToLower(sorted[j].Name)
	})
	return sorted
}

// Rename changes the name of a query
func (m *Manager) Rename(oldName, newName string) error {
	newName = strings.TrimSpace(newName)
	if newName == "" {
		return fmt.Errorf("query name cannot be empty")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.indexLocked(oldName)
	if i < 0 {
		return fmt.Errorf("%w: %q", ErrQueryNotFound, oldName)
	}
	// allow case-only renames of the same query
	if j := m.indexLocked(newName); j >= 0 && j != i {
		return fmt.Errorf("%w: %q", ErrDuplicateName, newName)
	}

	m.queries[i].Name = newName
	if err := m.saveLocked(); err != nil {
		return fmt.Errorf("failed to save renamed query: %w", err)
	}
	return nil
}

// Update copies the editable contents of def onto the stored query with the same ID
func (m *Manager) Update(def *models.QueryDefinition) error {
	m.mu.Lock()
	var stored *models.QueryDefinition
	for _, q := range m.queries {
		if q.ID == def.ID {
			stored = q
			break
		}
	}
	m.mu.Unlock()

	if stored == nil {
		return fmt.Errorf("%w: %q", ErrQueryNotFound, def.Name)
	}

	c := def.Clone()
	stored.DataSource = c.DataSource
	stored.Joins = c.Joins
	// ReplaceFields triggers the save
	stored.ReplaceFields(c.Criteria, c.Display)
	return nil
}

// Delete removes the query named name
func (m *Manager) Delete(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.indexLocked(name)
	if i < 0 {
		return fmt.Errorf("%w: %q", ErrQueryNotFound, name)
	}

	m.queries[i].SetOnChange(nil)
	m.queries = append(m.queries[:i], m.queries[i+1:]...)
	if err := m.saveLocked(); err != nil {
		return fmt.Errorf("failed to save library after deletion: %w", err)
	}
	return nil
}

func (m *Manager) indexLocked(name string) int {
	name = strings.TrimSpace(name)
	for i, q := range m.queries {
		if strings.EqualFold(q.Name, name) {
			return i
		}
	}
	return -1
}
