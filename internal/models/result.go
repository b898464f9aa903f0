package models

import (
	"strings"
	"time"
)

// QueryResult is a tabular result with every cell rendered as a string
type QueryResult struct {
	Columns      []string
	Rows         [][]string
	RowsAffected int64
	Duration     time.Duration
	Error        error
}

// ColumnIndex returns the index of the named column, or -1
func (r QueryResult) ColumnIndex(name string) int {
	for i, c := range r.Columns {
		if c == name {
			return i
		}
	}
	for i, c := range r.Columns {
		if strings.EqualFold(c, name) {
			return i
		}
	}
	return -1
}

// WithRows returns a copy of the result holding rows instead of the original rows
func (r QueryResult) WithRows(rows [][]string) QueryResult {
	r.Rows = rows
	r.RowsAffected = int64(len(rows))
	return r
}
