package autofilter

import (
	"github.com/rebeliceyang/lazyquery/internal/models"
)

// Column names exposed by the table and field listings
const (
	ColName      = "Name"
	ColSchema    = "Schema"
	ColType      = "Type"
	ColTable     = "Table"
	ColField     = "Field"
	ColDirectory = "Directory"
	ColExtension = "Extension"
	ColModified  = "Modified"
)

// TimestampLayout is the canonical string form of timestamps handed to filters
const TimestampLayout = "2006-01-02 15:04:05"

// TableProjector exposes Name, Schema and Type of a table listing
func TableProjector(t models.TableInfo, column string) (string, bool) {
	switch column {
	case ColName:
		return t.Name, true
	case ColSchema:
		return t.Schema, true
	case ColType:
		return t.Type, true
	}
	return "", false
}

// FieldProjector exposes Table, Field and Type of a field listing
func FieldProjector(f models.FieldInfo, column string) (string, bool) {
	switch column {
	case ColTable:
		return f.Table, true
	case ColField:
		return f.Field, true
	case ColType:
		return f.DataType, true
	}
	return "", false
}

// FileProjector exposes Name, Directory, Extension and Modified of a directory scan
func FileProjector(f models.FileEntry, column string) (string, bool) {
	switch column {
	case ColName:
		return f.Name, true
	case ColDirectory:
		return f.Directory, true
	case ColExtension:
		return f.Extension, true
	case ColModified:
		return f.Modified.Format(TimestampLayout), true
	}
	return "", false
}

// ResultProjector exposes the named columns of a result set row
func ResultProjector(columns []string) Projector[[]string] {
	index := make(map[string]int, len(columns))
	for i, c := range columns {
		if _, dup := index[c]; !dup {
			index[c] = i
		}
	}
	return func(row []string, column string) (string, bool) {
		i, ok := index[column]
		if !ok || i >= len(row) {
			return "", false
		}
		return row[i], true
	}
}

// NewResultEngine creates an engine over the rows of a query result
func NewResultEngine(result models.QueryResult) *Engine[[]string] {
	return New(result.Rows, ResultProjector(result.Columns))
}
