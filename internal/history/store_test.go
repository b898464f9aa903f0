package history

import (
	"path/filepath"
	"testing"
	"time"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStore_AddAndGetRecent(t *testing.T) {
	s := newTestStore(t)
	base := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)

	for i, name := range []string{"first", "second", "third"} {
		_, err := s.Add(HistoryEntry{
			QueryName:    name,
			DataSource:   "NEON_DSN",
			Query:        "SELECT T.A FROM T",
			ExecutedAt:   base.Add(time.Duration(i) * time.Minute),
			Duration:     1500 * time.Millisecond,
			RowsAffected: int64(i),
			Success:      true,
		})
		if err != nil {
			t.Fatalf("Add failed: %v", err)
		}
	}

	entries, err := s.GetRecent(2)
	if err != nil {
		t.Fatalf("GetRecent failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].QueryName != "third" || entries[1].QueryName != "second" {
		t.Errorf("unexpected order: %s, %s", entries[0].QueryName, entries[1].QueryName)
	}
	if entries[0].Duration != 1500*time.Millisecond {
		t.Errorf("expected 1.5s duration, got %v", entries[0].Duration)
	}
	if !entries[0].ExecutedAt.Equal(base.Add(2 * time.Minute)) {
		t.Errorf("unexpected executed_at: %v", entries[0].ExecutedAt)
	}
	if entries[0].RunID == "" {
		t.Error("expected a generated run id")
	}
}

func TestStore_Search(t *testing.T) {
	s := newTestStore(t)

	if _, err := s.Add(HistoryEntry{QueryName: "claims", Query: "SELECT CLAIM.ID FROM CLAIM", Success: true}); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if _, err := s.Add(HistoryEntry{QueryName: "members", Query: "SELECT MEMBER.ID FROM MEMBER", Success: false, ErrorMessage: "boom"}); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	entries, err := s.Search("CLAIM", 10)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(entries) != 1 || entries[0].QueryName != "claims" {
		t.Errorf("unexpected search result: %+v", entries)
	}

	entries, err = s.Search("members", 10)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(entries) != 1 || entries[0].Success || entries[0].ErrorMessage != "boom" {
		t.Errorf("unexpected search result: %+v", entries)
	}
}

func TestStore_Prune(t *testing.T) {
	s := newTestStore(t)
	base := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		if _, err := s.Add(HistoryEntry{Query: "SELECT 1", ExecutedAt: base.Add(time.Duration(i) * time.Second), Success: true}); err != nil {
			t.Fatalf("Add failed: %v", err)
		}
	}

	removed, err := s.Prune(2)
	if err != nil {
		t.Fatalf("Prune failed: %v", err)
	}
	if removed != 3 {
		t.Errorf("expected 3 removed, got %d", removed)
	}

	entries, _ := s.GetRecent(10)
	if len(entries) != 2 {
		t.Errorf("expected 2 remaining entries, got %d", len(entries))
	}
}
