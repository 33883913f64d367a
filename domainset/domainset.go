// Package domainset holds the legal seed input space: an ordered set of
// (start, length) intervals queried by predecessor search.
//
// Intervals are half-open, [Start, Start+Length), the same convention
// rangemap uses for rule coverage. A Set is built once and read-only
// afterwards. Insert does not merge or validate overlap; an insert with a
// start already present replaces the earlier length, and Contains only
// consults the interval with the nearest start. Callers holding possibly
// overlapping input check it with Overlaps and insert Merge(ivs) instead.
package domainset

import (
	"fmt"
	"math"

	"github.com/emirpasic/gods/maps/treemap"
	"github.com/emirpasic/gods/utils"
)

// Interval is one contiguous run of legal input values.
type Interval struct {
	Start  uint64 `json:"start" yaml:"start" toml:"start"`
	Length uint64 `json:"length" yaml:"length" toml:"length"`
}

// Contains reports whether x lies in [Start, Start+Length).
func (iv Interval) Contains(x uint64) bool {
	return x >= iv.Start && x-iv.Start < iv.Length
}

func (iv Interval) String() string {
	return fmt.Sprintf("start=%d length=%d", iv.Start, iv.Length)
}

// Overflows reports whether Start+Length exceeds 2^64.
func (iv Interval) Overflows() bool {
	return iv.Length > 0 && iv.Length-1 > math.MaxUint64-iv.Start
}

// Last returns the greatest value in the interval. Only meaningful when
// Length > 0.
func (iv Interval) Last() uint64 {
	return iv.Start + (iv.Length - 1)
}

// Set is an ordered collection of intervals keyed by start.
type Set struct {
	intervals *treemap.Map // uint64 start -> uint64 length
}

// New creates an empty set.
func New() *Set {
	return &Set{intervals: treemap.NewWith(utils.UInt64Comparator)}
}

// FromIntervals builds a set from a list of intervals.
func FromIntervals(ivs []Interval) *Set {
	s := New()
	for _, iv := range ivs {
		s.Insert(iv.Start, iv.Length)
	}
	return s
}

// Insert adds one interval.
func (s *Set) Insert(start, length uint64) {
	s.intervals.Put(start, length)
}

// Contains reports whether x lies in the interval with the greatest start <= x.
func (s *Set) Contains(x uint64) bool {
	key, value := s.intervals.Floor(x)
	if key == nil {
		return false
	}
	return Interval{Start: key.(uint64), Length: value.(uint64)}.Contains(x)
}

// Len returns the number of intervals.
func (s *Set) Len() int {
	return s.intervals.Size()
}

// Intervals returns the intervals in ascending start order.
func (s *Set) Intervals() []Interval {
	ivs := make([]Interval, 0, s.intervals.Size())
	it := s.intervals.Iterator()
	for it.Next() {
		ivs = append(ivs, Interval{Start: it.Key().(uint64), Length: it.Value().(uint64)})
	}
	return ivs
}

// Size returns the sum of interval lengths, saturating at MaxUint64.
// Overlapping intervals are counted twice.
func (s *Set) Size() uint64 {
	var total uint64
	it := s.intervals.Iterator()
	for it.Next() {
		length := it.Value().(uint64)
		if length > math.MaxUint64-total {
			return math.MaxUint64
		}
		total += length
	}
	return total
}

// Min returns the smallest start, or false for an empty set.
func (s *Set) Min() (uint64, bool) {
	key, _ := s.intervals.Min()
	if key == nil {
		return 0, false
	}
	return key.(uint64), true
}
