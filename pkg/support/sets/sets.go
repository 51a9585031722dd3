// Copyright 2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package sets implement a set type as a `map[T]struct{}` but with better ergonomics.
package sets

import (
	"cmp"
	"slices"
)

// Set implements a Set for the key type T.
type Set[T comparable] map[T]struct{}

// Make returns an empty Set of the given type. Size is optional, and if given
// will reserve the expected size.
func Make[T comparable](size ...int) Set[T] {
	if len(size) == 0 {
		return make(Set[T])
	}
	return make(Set[T], size[0])
}

// MakeWith creates a Set[T] with the given elements inserted.
func MakeWith[T comparable](elements ...T) Set[T] {
	s := Make[T](len(elements))
	for _, element := range elements {
		s.Insert(element)
	}
	return s
}

// FromSlice creates a Set[T] with the elements of the slice.
func FromSlice[T comparable](elements []T) Set[T] {
	return MakeWith[T](elements...)
}

// Has returns true if Set s has the given key.
func (s Set[T]) Has(key T) bool {
	_, found := s[key]
	return found
}

// Insert keys into set.
func (s Set[T]) Insert(keys ...T) {
	for _, key := range keys {
		s[key] = struct{}{}
	}
}

// Delete keys from the set. Deleting a key not in the set is a no-op.
func (s Set[T]) Delete(keys ...T) {
	for _, key := range keys {
		delete(s, key)
	}
}

// Sub returns `s - s2`, that is, all elements in `s` that are not in `s2`.
func (s Set[T]) Sub(s2 Set[T]) Set[T] {
	sub := Make[T]()
	for k := range s {
		if !s2.Has(k) {
			sub.Insert(k)
		}
	}
	return sub
}

// Union returns a new set with the elements of both s and s2.
func (s Set[T]) Union(s2 Set[T]) Set[T] {
	union := Make[T](len(s) + len(s2))
	for k := range s {
		union.Insert(k)
	}
	for k := range s2 {
		union.Insert(k)
	}
	return union
}

// Equal returns whether s and s2 have the exact same elements.
func (s Set[T]) Equal(s2 Set[T]) bool {
	if len(s) != len(s2) {
		return false
	}
	for k := range s {
		if !s2.Has(k) {
			return false
		}
	}
	return true
}

// Sorted returns the elements of the set as a sorted slice.
func Sorted[T cmp.Ordered](s Set[T]) []T {
	elements := make([]T, 0, len(s))
	for k := range s {
		elements = append(elements, k)
	}
	slices.Sort(elements)
	return elements
}
