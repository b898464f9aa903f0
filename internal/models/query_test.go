package models

import (
	"errors"
	"strings"
	"testing"
)

func TestQueryDefinition_OnChangeFiresForEveryMutation(t *testing.T) {
	q := NewQueryDefinition("id-1", "Claims")
	calls := 0
	q.SetOnChange(func(*QueryDefinition) { calls++ })

	q.AddDisplay(DisplayField{Table: "T1", Field: "A"})
	q.AddCriteria(CriteriaField{Table: "T1", Field: "B", TextValue: "x"})
	q.AddJoin(JoinSpec{LeftTable: "T1", Type: InnerJoin, RightTable: "T2"})
	q.SetDataSource("NEON_DSN")
	if err := q.UpdateCriteria(0, func(c *CriteriaField) { c.TextValue = "y" }); err != nil {
		t.Fatalf("UpdateCriteria failed: %v", err)
	}
	if err := q.RemoveJoin(0); err != nil {
		t.Fatalf("RemoveJoin failed: %v", err)
	}
	if err := q.RemoveCriteria(0); err != nil {
		t.Fatalf("RemoveCriteria failed: %v", err)
	}
	if err := q.RemoveDisplay(0); err != nil {
		t.Fatalf("RemoveDisplay failed: %v", err)
	}

	if calls != 8 {
		t.Errorf("expected 8 change notifications, got %d", calls)
	}
}

func TestQueryDefinition_OutOfRangeDoesNotNotify(t *testing.T) {
	q := NewQueryDefinition("id-1", "Claims")
	calls := 0
	q.SetOnChange(func(*QueryDefinition) { calls++ })

	if err := q.RemoveCriteria(0); !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("expected ErrIndexOutOfRange, got %v", err)
	}
	if err := q.RemoveDisplay(-1); !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("expected ErrIndexOutOfRange, got %v", err)
	}
	if err := q.MoveJoin(0, 1); !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("expected ErrIndexOutOfRange, got %v", err)
	}
	if calls != 0 {
		t.Errorf("expected no notifications, got %d", calls)
	}
}

func TestQueryDefinition_RemoveLastJoinAllowed(t *testing.T) {
	q := NewQueryDefinition("id-1", "Claims")
	q.AddJoin(JoinSpec{LeftTable: "T1", Type: InnerJoin, RightTable: "T2"})

	if err := q.RemoveJoin(0); err != nil {
		t.Fatalf("expected removing the only join to succeed, got %v", err)
	}
	if len(q.Joins) != 0 {
		t.Errorf("expected zero joins, got %d", len(q.Joins))
	}
}

func TestQueryDefinition_MoveJoin(t *testing.T) {
	q := NewQueryDefinition("id-1", "Claims")
	q.AddJoin(JoinSpec{LeftTable: "A", RightTable: "B"})
	q.AddJoin(JoinSpec{LeftTable: "B", RightTable: "C"})
	q.AddJoin(JoinSpec{LeftTable: "C", RightTable: "D"})

	if err := q.MoveJoin(2, 0); err != nil {
		t.Fatalf("MoveJoin failed: %v", err)
	}

	got := []string{q.Joins[0].LeftTable, q.Joins[1].LeftTable, q.Joins[2].LeftTable}
	want := []string{"C", "A", "B"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected order %v, got %v", want, got)
		}
	}
	if q.BaseTable() != "C" {
		t.Errorf("expected base table C, got %s", q.BaseTable())
	}
}

func TestQueryDefinition_BaseTable(t *testing.T) {
	q := NewQueryDefinition("id-1", "Claims")
	if q.BaseTable() != "" {
		t.Errorf("expected empty base table, got %q", q.BaseTable())
	}

	q.AddDisplay(DisplayField{Table: "T1", Field: "A"})
	if q.BaseTable() != "T1" {
		t.Errorf("expected T1, got %s", q.BaseTable())
	}

	q.AddJoin(JoinSpec{LeftTable: "T9", RightTable: "T1"})
	if q.BaseTable() != "T9" {
		t.Errorf("expected T9 from first join, got %s", q.BaseTable())
	}
}

func TestQueryDefinition_CloneIsDeep(t *testing.T) {
	q := NewQueryDefinition("id-1", "Claims")
	q.AddCriteria(CriteriaField{Table: "T", Field: "F", HasListBox: true, SelectedValues: []string{"A"}})
	q.AddJoin(JoinSpec{LeftTable: "T", RightTable: "U", Conditions: []JoinCondition{{LeftField: "a", RightField: "b"}}})

	c := q.Clone()
	c.Criteria[0].SelectedValues[0] = "B"
	c.Joins[0].Conditions[0].LeftField = "z"

	if q.Criteria[0].SelectedValues[0] != "A" {
		t.Error("clone shares selected values with the original")
	}
	if q.Joins[0].Conditions[0].LeftField != "a" {
		t.Error("clone shares join conditions with the original")
	}
}

func TestParseJoinType(t *testing.T) {
	tests := []struct {
		in   string
		want JoinType
	}{
		{"INNER", InnerJoin},
		{"inner join", InnerJoin},
		{"LEFT OUTER", LeftOuterJoin},
		{"left", LeftOuterJoin},
		{"Right Outer Join", RightOuterJoin},
	}
	for _, tt := range tests {
		got, err := ParseJoinType(tt.in)
		if err != nil {
			t.Errorf("ParseJoinType(%q) error: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseJoinType(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}

	if _, err := ParseJoinType("CROSS"); err == nil {
		t.Error("expected error for CROSS join")
	}
}

func TestParseStringOperator(t *testing.T) {
	if ParseStringOperator("Begins With") != OpBeginsWith {
		t.Error("expected begins with")
	}
	if ParseStringOperator("none") != OpNone {
		t.Error("expected none")
	}
	if ParseStringOperator("weird") != StringOperator("weird") {
		t.Error("expected unknown operator to pass through")
	}
}

func TestDataSourceConfig_OdbcName(t *testing.T) {
	ds := DataSourceConfig{Name: "prod", Driver: "odbc", DSN: "DSN=NEON_DSN;UID=me;PWD=secret"}
	if ds.OdbcName() != "NEON_DSN" {
		t.Errorf("expected NEON_DSN, got %s", ds.OdbcName())
	}
	if !ds.HasPassword() {
		t.Error("expected DSN password to be detected")
	}

	ds = DataSourceConfig{Name: "local", Driver: "sqlite3", DSN: "file:test.db"}
	if ds.OdbcName() != "local" {
		t.Errorf("expected fallback to name, got %s", ds.OdbcName())
	}
	if ds.HasPassword() {
		t.Error("expected no password")
	}
}

func TestParseFieldKey(t *testing.T) {
	tests := []struct {
		in      string
		want    FieldKey
		wantErr bool
	}{
		{"CLAIM.ID", FieldKey{Table: "CLAIM", Field: "ID"}, false},
		{" DB2TAB.CLAIM.STATUS ", FieldKey{Table: "DB2TAB.CLAIM", Field: "STATUS"}, false},
		{"CLAIM", FieldKey{}, true},
		{".ID", FieldKey{}, true},
		{"CLAIM.", FieldKey{}, true},
	}

	for _, tt := range tests {
		got, err := ParseFieldKey(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseFieldKey(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseFieldKey(%q) = %+v, want %+v", tt.in, got, tt.want)
		}
		if !tt.wantErr && !got.Matches(strings.ToLower(tt.want.Table), tt.want.Field) {
			t.Errorf("expected %+v to match its own table case-insensitively", got)
		}
	}
}
