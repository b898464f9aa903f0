package models

import (
	"fmt"
	"strings"
	"time"
)

// TableRef identifies a table by name. Names compare case-insensitively.
type TableRef struct {
	Name string
}

// SameTable reports whether two table names refer to the same table
func SameTable(a, b string) bool {
	return strings.EqualFold(a, b)
}

// FieldRef describes one scanned column.
// DataType is either an ODBC type code ("4", "-5") or a textual tag ("VARCHAR(20)").
type FieldRef struct {
	Table    string `yaml:"table"`
	Field    string `yaml:"field"`
	DataType string `yaml:"data_type"`
}

// Key returns the table/field pair of the reference
func (f FieldRef) Key() FieldKey {
	return FieldKey{Table: f.Table, Field: f.Field}
}

// FieldKey is the table/field pair attached to anything that represents a column
// (list entries, criteria panels, display chips).
type FieldKey struct {
	Table string
	Field string
}

// Qualified returns "table.field"
func (k FieldKey) Qualified() string {
	return k.Table + "." + k.Field
}

// ParseFieldKey parses "table.field". A schema-qualified table keeps its
// schema: "DB2TAB.CLAIM.ID" is table DB2TAB.CLAIM, field ID.
func ParseFieldKey(s string) (FieldKey, error) {
	s = strings.TrimSpace(s)
	i := strings.LastIndex(s, ".")
	if i <= 0 || i == len(s)-1 {
		return FieldKey{}, fmt.Errorf("invalid field %q: want table.field", s)
	}
	return FieldKey{Table: s[:i], Field: s[i+1:]}, nil
}

// Matches reports whether k refers to the given table and field.
// Table names are matched case-insensitively, field names exactly.
func (k FieldKey) Matches(table, field string) bool {
	return SameTable(k.Table, table) && k.Field == field
}

// TableInfo is one entry of a table listing
type TableInfo struct {
	Name   string
	Schema string
	Type   string // TABLE, VIEW, ...
}

// FieldInfo is one entry of a field listing
type FieldInfo struct {
	FieldRef
	Nullable bool
	Position int
}

// FileEntry is one entry of a directory scan listing
type FileEntry struct {
	Name      string
	Directory string
	Extension string
	Size      int64
	Modified  time.Time
}
