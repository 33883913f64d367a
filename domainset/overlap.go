package domainset

import "sort"

// Overlap is a pair of intervals that share at least one value. First starts
// at or before Second.
type Overlap struct {
	First  Interval
	Second Interval
}

// Overlaps reports intersecting intervals in ivs, including intervals with
// equal starts that a Set would collapse into one. Zero-length intervals
// never overlap.
func Overlaps(ivs []Interval) []Overlap {
	var found []Overlap
	var reach Interval
	haveReach := false

	for _, iv := range sorted(ivs) {
		if haveReach && reach.Contains(iv.Start) {
			found = append(found, Overlap{First: reach, Second: iv})
		}
		if !haveReach || iv.Last() > reach.Last() {
			reach = iv
			haveReach = true
		}
	}
	return found
}

// Merge returns the union of ivs as disjoint intervals in ascending order.
// A union reaching MaxUint64 from start 0 cannot be expressed as a length and
// is clamped to Length MaxUint64.
func Merge(ivs []Interval) []Interval {
	var merged []Interval
	for _, iv := range sorted(ivs) {
		n := len(merged)
		if n == 0 || !merged[n-1].Contains(iv.Start) {
			merged = append(merged, iv)
			continue
		}
		cur := &merged[n-1]
		if last := iv.Last(); last > cur.Last() {
			span := last - cur.Start
			if span == ^uint64(0) {
				cur.Length = span
			} else {
				cur.Length = span + 1
			}
		}
	}
	return merged
}

// sorted copies the non-empty intervals of ivs ordered by start, longest
// first on equal starts.
func sorted(ivs []Interval) []Interval {
	out := make([]Interval, 0, len(ivs))
	for _, iv := range ivs {
		if iv.Length > 0 {
			out = append(out, iv)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Start != out[j].Start {
			return out[i].Start < out[j].Start
		}
		return out[i].Length > out[j].Length
	})
	return out
}
