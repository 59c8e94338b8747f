// Package collections holds small generic containers
package collections

import (
	"cmp"
	"fmt"
	"maps"
	"slices"
)

// Set is a map with zero-size values
type Set[T comparable] map[T]struct{}

// NewSet creates a set holding vs
func NewSet[T comparable](vs ...T) Set[T] {
	s := make(Set[T], len(vs))
	s.Add(vs...)
	return s
}

// Add inserts values
func (s Set[T]) Add(vs ...T) {
	for _, v := range vs {
		s[v] = struct{}{}
	}
}

// Delete removes values that are present
func (s Set[T]) Delete(vs ...T) {
	for _, v := range vs {
		delete(s, v)
	}
}

func (s Set[T]) Has(v T) bool {
	_, ok := s[v]
	return ok
}

func (s Set[T]) Len() int { return len(s) }

// Members returns the values in map order
func (s Set[T]) Members() []T {
	return slices.Collect(maps.Keys(s))
}

// Sorted returns the members of s in ascending order
func Sorted[T cmp.Ordered](s Set[T]) []T {
	return slices.Sorted(maps.Keys(s))
}

func (s Set[T]) String() string {
	return fmt.Sprintf("%v", s.Members())
}
