package rangemap

import "sort"

// Overlap is a pair of rules whose intervals intersect. First starts at or
// before Second.
type Overlap struct {
	First  Rule
	Second Rule
}

// Overlaps reports rules whose source intervals intersect. Lookup resolves such
// input by nearest predecessor, so the later-starting rule wins from its start.
func (m *Map) Overlaps() []Overlap {
	return overlaps(m.Rules(), func(r Rule) uint64 { return r.SourceStart })
}

// DestOverlaps reports rules whose destination intervals intersect. A stage
// with destination overlaps is not a bijection and its reverse table cannot
// invert it.
func (m *Map) DestOverlaps() []Overlap {
	rules := m.Rules()
	sort.SliceStable(rules, func(i, j int) bool { return rules[i].DestStart < rules[j].DestStart })
	return overlaps(rules, func(r Rule) uint64 { return r.DestStart })
}

// overlaps walks rules sorted by start and compares each against the rule
// reaching furthest so far, which also catches one rule containing several.
func overlaps(sorted []Rule, start func(Rule) uint64) []Overlap {
	var found []Overlap
	var reach Rule
	haveReach := false

	for _, r := range sorted {
		if r.Length == 0 {
			continue
		}
		if haveReach && start(r)-start(reach) < reach.Length {
			found = append(found, Overlap{First: reach, Second: r})
		}
		if !haveReach || extendsPast(r, reach, start) {
			reach = r
			haveReach = true
		}
	}
	return found
}

// extendsPast reports whether r ends after reach. r starts at or after reach.
func extendsPast(r, reach Rule, start func(Rule) uint64) bool {
	offset := start(r) - start(reach)
	if offset >= reach.Length {
		return true
	}
	return r.Length > reach.Length-offset
}
