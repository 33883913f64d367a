// Package rangemap implements one directed stage transform: a sparse table of
// interval rules over uint64, queried by predecessor search.
//
// A Map never materializes the values it covers. Each Rule maps the half-open
// source interval [SourceStart, SourceStart+Length) affinely onto
// [DestStart, DestStart+Length). Lookup finds the rule with the greatest
// SourceStart <= x in O(log n); values not covered by that rule pass through
// unchanged, which makes Lookup total over all uint64 inputs.
//
// Rules are keyed by SourceStart. Inserting a rule with a SourceStart already
// present replaces the earlier rule (last write wins). Rules with distinct keys
// whose intervals intersect are accepted; Overlaps reports them, and because
// Lookup only consults the nearest predecessor, the later-starting rule shadows
// the earlier one from its start onward.
package rangemap

import (
	"fmt"
	"math"

	"github.com/emirpasic/gods/maps/treemap"
	"github.com/emirpasic/gods/utils"
)

// Rule is one interval-to-interval offset rule.
type Rule struct {
	SourceStart uint64 `json:"source_start" yaml:"source_start"`
	DestStart   uint64 `json:"dest_start" yaml:"dest_start"`
	Length      uint64 `json:"length" yaml:"length"`
}

// Covers reports whether x lies in [SourceStart, SourceStart+Length).
// The subtraction form stays correct for intervals ending at 2^64.
func (r Rule) Covers(x uint64) bool {
	return x >= r.SourceStart && x-r.SourceStart < r.Length
}

// Apply maps x through the rule. The caller must check Covers first.
func (r Rule) Apply(x uint64) uint64 {
	return r.DestStart + (x - r.SourceStart)
}

// Reverse swaps source and destination.
func (r Rule) Reverse() Rule {
	return Rule{SourceStart: r.DestStart, DestStart: r.SourceStart, Length: r.Length}
}

// SourceOverflows reports whether SourceStart+Length exceeds 2^64.
func (r Rule) SourceOverflows() bool {
	return r.Length > 0 && r.Length-1 > math.MaxUint64-r.SourceStart
}

// DestOverflows reports whether DestStart+Length exceeds 2^64.
func (r Rule) DestOverflows() bool {
	return r.Length > 0 && r.Length-1 > math.MaxUint64-r.DestStart
}

func (r Rule) String() string {
	return fmt.Sprintf("%d %d %d", r.DestStart, r.SourceStart, r.Length)
}

// Map is an ordered table of rules keyed by source start, labelled with the
// domain it maps from and the domain it maps to.
type Map struct {
	from  string
	to    string
	rules *treemap.Map // uint64 SourceStart -> Rule
}

// New creates an empty table mapping the from domain to the to domain.
func New(from, to string) *Map {
	return &Map{
		from:  from,
		to:    to,
		rules: treemap.NewWith(utils.UInt64Comparator),
	}
}

// From returns the label of the domain this map reads.
func (m *Map) From() string { return m.from }

// To returns the label of the domain this map produces.
func (m *Map) To() string { return m.to }

// Len returns the number of rules.
func (m *Map) Len() int { return m.rules.Size() }

// Insert adds a rule keyed by its source start, replacing any rule with the
// same start.
func (m *Map) Insert(r Rule) {
	m.rules.Put(r.SourceStart, r)
}

// Lookup maps x through the table. Values with no covering rule are returned
// unchanged.
func (m *Map) Lookup(x uint64) uint64 {
	r, ok := m.floor(x)
	if !ok || !r.Covers(x) {
		return x
	}
	return r.Apply(x)
}

// RuleFor returns the rule covering x, if any.
func (m *Map) RuleFor(x uint64) (Rule, bool) {
	r, ok := m.floor(x)
	if !ok || !r.Covers(x) {
		return Rule{}, false
	}
	return r, true
}

func (m *Map) floor(x uint64) (Rule, bool) {
	key, value := m.rules.Floor(x)
	if key == nil {
		return Rule{}, false
	}
	return value.(Rule), true
}

// Rules returns all rules in ascending source start order.
func (m *Map) Rules() []Rule {
	rules := make([]Rule, 0, m.rules.Size())
	it := m.rules.Iterator()
	for it.Next() {
		rules = append(rules, it.Value().(Rule))
	}
	return rules
}

// Reverse builds the mirror table: every rule with source and destination
// swapped, labelled to -> from. Rules whose destination starts coincide
// collapse to the last one in source order.
func (m *Map) Reverse() *Map {
	rev := New(m.to, m.from)
	it := m.rules.Iterator()
	for it.Next() {
		rev.Insert(it.Value().(Rule).Reverse())
	}
	return rev
}

func (m *Map) String() string {
	return fmt.Sprintf("%s-to-%s (%d rules)", m.from, m.to, m.rules.Size())
}
