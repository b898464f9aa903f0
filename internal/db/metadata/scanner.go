package metadata

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rebeliceyang/lazyquery/internal/db/connection"
	"github.com/rebeliceyang/lazyquery/internal/models"
)

// Scanner caches table and field listings of one data source
type Scanner struct {
	pool *connection.Pool
	ttl  time.Duration
	now  func() time.Time

	mu       sync.Mutex
	tables   []models.TableInfo
	tablesAt time.Time
	fields   map[string][]models.FieldInfo
	fieldsAt map[string]time.Time
}

// NewScanner creates a scanner. ttl <= 0 disables caching.
func NewScanner(pool *connection.Pool, ttl time.Duration) *Scanner {
	return &Scanner{
		pool:     pool,
		ttl:      ttl,
		now:      time.Now,
		fields:   make(map[string][]models.FieldInfo),
		fieldsAt: make(map[string]time.Time),
	}
}

func (s *Scanner) fresh(at time.Time) bool {
	return s.ttl > 0 && !at.IsZero() && s.now().Sub(at) < s.ttl
}

// Tables returns the table listing, scanning when the cache is stale
func (s *Scanner) Tables(ctx context.Context) ([]models.TableInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.tables != nil && s.fresh(s.tablesAt) {
		return s.tables, nil
	}

	tables, err := ListTables(ctx, s.pool)
	if err != nil {
		return nil, err
	}
	s.tables = tables
	s.tablesAt = s.now()
	return tables, nil
}

// Fields returns the field listing of table, scanning when the cache is stale
func (s *Scanner) Fields(ctx context.Context, table string) ([]models.FieldInfo, error) {
	key := strings.ToUpper(table)

	s.mu.Lock()
	defer s.mu.Unlock()

	if cached, ok := s.fields[key]; ok && s.fresh(s.fieldsAt[key]) {
		return cached, nil
	}

	fields, err := ListFields(ctx, s.pool, table)
	if err != nil {
		return nil, err
	}
	s.fields[key] = fields
	s.fieldsAt[key] = s.now()
	return fields, nil
}

// Field looks up one field of table
func (s *Scanner) Field(ctx context.Context, table, field string) (models.FieldRef, bool, error) {
	fields, err := s.Fields(ctx, table)
	if err != nil {
		return models.FieldRef{}, false, err
	}
	for _, f := range fields {
		if strings.EqualFold(f.Field, field) {
			return f.FieldRef, true, nil
		}
	}
	return models.FieldRef{}, false, nil
}

// Criteria builds a criteria field for table.field, offering a list box when
// the field has at most threshold distinct values
func (s *Scanner) Criteria(ctx context.Context, field models.FieldRef, threshold int) (models.CriteriaField, []string, error) {
	if threshold <= 0 {
		return NewCriteria(field, nil, true), nil, nil
	}
	values, truncated, err := UniqueValues(ctx, s.pool, field.Table, field.Field, threshold)
	if err != nil {
		return models.CriteriaField{}, nil, err
	}
	return NewCriteria(field, values, truncated), values, nil
}

// Invalidate drops every cached listing
func (s *Scanner) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tables = nil
	s.tablesAt = time.Time{}
	s.fields = make(map[string][]models.FieldInfo)
	s.fieldsAt = make(map[string]time.Time)
}
