package utils

import "sort"

// CodeSet is a set of numeric area codes.
type CodeSet struct {
	seen map[int]struct{}
}

// NewCodeSet creates a CodeSet holding codes.
func NewCodeSet(codes ...int) *CodeSet {
	s := &CodeSet{seen: make(map[int]struct{}, len(codes))}
	for _, c := range codes {
		s.Add(c)
	}
	return s
}

// Add returns true if the code was newly added, false if already present.
func (s *CodeSet) Add(code int) bool {
	if _, exists := s.seen[code]; exists {
		return false
	}
	s.seen[code] = struct{}{}
	return true
}

// Contains reports whether code is in the set.
func (s *CodeSet) Contains(code int) bool {
	_, exists := s.seen[code]
	return exists
}

// Size returns the number of unique codes tracked.
func (s *CodeSet) Size() int {
	return len(s.seen)
}

// Intersect returns the codes present in both s and other.
func (s *CodeSet) Intersect(other *CodeSet) *CodeSet {
	small, large := s, other
	if large.Size() < small.Size() {
		small, large = large, small
	}
	out := NewCodeSet()
	for c := range small.seen {
		if large.Contains(c) {
			out.Add(c)
		}
	}
	return out
}

// Sorted returns the codes in ascending order.
func (s *CodeSet) Sorted() []int {
	out := make([]int, 0, len(s.seen))
	for c := range s.seen {
		out = append(out, c)
	}
	sort.Ints(out)
	return out
}
