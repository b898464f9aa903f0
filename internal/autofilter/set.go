package autofilter

import (
	"maps"
	"slices"
)

// Set is an unordered set of column values
type Set map[string]struct{}

// NewSet creates a set holding values
func NewSet(values ...string) Set {
	s := make(Set, len(values))
	for _, v := range values {
		s[v] = struct{}{}
	}
	return s
}

// Add inserts v
func (s Set) Add(v string) {
	s[v] = struct{}{}
}

// Has reports whether v is in the set
func (s Set) Has(v string) bool {
	_, ok := s[v]
	return ok
}

// Len returns the number of values
func (s Set) Len() int {
	return len(s)
}

// Equal reports whether both sets hold the same values
func (s Set) Equal(other Set) bool {
	if len(s) != len(other) {
		return false
	}
	for v := range s {
		if !other.Has(v) {
			return false
		}
	}
	return true
}

// Intersect returns the values present in both sets
func (s Set) Intersect(other Set) Set {
	out := NewSet()
	for v := range s {
		if other.Has(v) {
			out.Add(v)
		}
	}
	return out
}

// Covers reports whether every value of other is in s
func (s Set) Covers(other Set) bool {
	for v := range other {
		if !s.Has(v) {
			return false
		}
	}
	return true
}

// Clone returns an independent copy
func (s Set) Clone() Set {
	return maps.Clone(s)
}

// Sorted returns the values in lexicographic, case-sensitive order.
// This is the order candidate lists are shown in.
func (s Set) Sorted() []string {
	return slices.Sorted(maps.Keys(s))
}
