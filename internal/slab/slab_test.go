// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package slab

import "testing"

func TestAllocGet(t *testing.T) {
	var s Slab[int]

	idx, v := s.Alloc()
	if idx == Invalid {
		t.Fatalf("Alloc returned Invalid")
	}
	*v = 42

	if got := *s.Get(idx); got != 42 {
		t.Errorf("Get(%d) = %d, want 42", idx, got)
	}
	if s.Len() != 1 {
		t.Errorf("Len() = %d, want 1", s.Len())
	}
}

func TestFreeReusesSlot(t *testing.T) {
	var s Slab[string]

	a, _ := s.Alloc()
	b, _ := s.Alloc()
	s.Free(a)

	c, v := s.Alloc()
	if c != a {
		t.Errorf("Alloc after Free = %d, want reused slot %d", c, a)
	}
	*v = "reused"

	if *s.Get(b) != "" {
		t.Errorf("unrelated slot modified by reuse")
	}
	if s.Len() != 2 {
		t.Errorf("Len() = %d, want 2", s.Len())
	}
}

func TestFreeClearsValue(t *testing.T) {
	var s Slab[[]byte]

	idx, v := s.Alloc()
	*v = make([]byte, 16)
	s.Free(idx)

	_, v2 := s.Alloc()
	if *v2 != nil {
		t.Errorf("freed slot retained value")
	}
}

func TestGetFreedPanics(t *testing.T) {
	var s Slab[int]

	idx, _ := s.Alloc()
	s.Free(idx)

	defer func() {
		if recover() == nil {
			t.Errorf("Get on freed slot did not panic")
		}
	}()
	s.Get(idx)
}

func TestDoubleFreePanics(t *testing.T) {
	var s Slab[int]

	idx, _ := s.Alloc()
	s.Free(idx)

	defer func() {
		if recover() == nil {
			t.Errorf("double Free did not panic")
		}
	}()
	s.Free(idx)
}
