// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package slab provides a generic slab arena: values live at stable
// integer indices, freed slots are recycled through a free list, and no
// pointers between entries are required. The texture cache stores its
// decoded sources here and keeps per-page reverse indices as plain index
// sets instead of intrusive linked lists.
package slab

// Index identifies a slot in a Slab. The zero value is not a valid
// allocated index marker by itself; use Invalid for "no entry".
type Index int32

// Invalid is the sentinel for "no slot".
const Invalid Index = -1

// Slab is a growable arena of T with O(1) allocate and free.
// Slab must not be copied after first use.
type Slab[T any] struct {
	entries []entry[T]
	free    []Index
	live    int
}

type entry[T any] struct {
	value T
	used  bool
}

// New creates a slab with room for capacity entries before growing.
func New[T any](capacity int) *Slab[T] {
	return &Slab[T]{entries: make([]entry[T], 0, capacity)}
}

// Alloc reserves a slot and returns its index together with a pointer to
// the (zeroed) value. The pointer stays valid until the slot is freed;
// the index stays valid across slab growth.
func (s *Slab[T]) Alloc() (Index, *T) {
	s.live++
	if n := len(s.free); n > 0 {
		idx := s.free[n-1]
		s.free = s.free[:n-1]
		e := &s.entries[idx]
		var zero T
		e.value = zero
		e.used = true
		return idx, &e.value
	}
	s.entries = append(s.entries, entry[T]{used: true})
	idx := Index(len(s.entries) - 1)
	return idx, &s.entries[idx].value
}

// Get returns the value at idx. It panics if the slot is not allocated;
// a stale index is a programming error, not a runtime condition.
func (s *Slab[T]) Get(idx Index) *T {
	e := &s.entries[idx]
	if !e.used {
		panic("slab: access to freed slot")
	}
	return &e.value
}

// Free releases the slot at idx for reuse. Freeing an unallocated slot
// panics.
func (s *Slab[T]) Free(idx Index) {
	e := &s.entries[idx]
	if !e.used {
		panic("slab: double free")
	}
	var zero T
	e.value = zero
	e.used = false
	s.free = append(s.free, idx)
	s.live--
}

// Len returns the number of live entries.
func (s *Slab[T]) Len() int {
	return s.live
}
