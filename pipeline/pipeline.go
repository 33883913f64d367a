// Package pipeline chains named range-mapping stages from a start domain to an
// end domain and walks the chain in either direction.
//
// Every stage owns a forward rangemap.Map and a reverse one derived from it
// at build time by swapping source and destination of each rule. The chain is
// not a graph: each domain label has at most one outgoing stage, so traversal
// follows labels until no stage exists for the current one.
//
// Reverse traversal mirrors the forward structure; it is a true inverse only
// when every stage is a bijection on the values exercised. That is a property
// of the input and is not verified here (rangemap.Map.DestOverlaps reports the
// obvious violations).
//
// A Pipeline is read-only after Build and safe for concurrent use.
package pipeline

import (
	"github.com/teranos/almanac/domainset"
	"github.com/teranos/almanac/rangemap"
)

// Default chain labels.
const (
	DefaultStartLabel = "seed"
	DefaultEndLabel   = "location"
)

// Pipeline is an ordered chain of stages plus the seed inputs.
type Pipeline struct {
	forward map[string]*rangemap.Map // keyed by From label
	reverse map[string]*rangemap.Map // keyed by To label of the forward stage
	order   []string                 // From labels in description order

	seeds  []uint64
	domain *domainset.Set

	startLabel string
	endLabel   string
}

// Step is one point on a traversal: the value as it appears in a domain.
type Step struct {
	Label string `json:"label"`
	Value uint64 `json:"value"`
}

// Convert maps value from the start domain through every stage to the end of
// the chain.
func (p *Pipeline) Convert(value uint64) uint64 {
	return p.ConvertFrom(value, p.startLabel)
}

// ConvertFrom maps value forward starting at the given domain label. A label
// with no outgoing stage returns value unchanged.
func (p *Pipeline) ConvertFrom(value uint64, label string) uint64 {
	current := value
	for m, ok := p.forward[label]; ok; m, ok = p.forward[label] {
		current = m.Lookup(current)
		label = m.To()
	}
	return current
}

// ReverseConvert maps value from the end domain backwards to the start of the
// chain.
func (p *Pipeline) ReverseConvert(value uint64) uint64 {
	return p.ReverseConvertFrom(value, p.endLabel)
}

// ReverseConvertFrom maps value backward starting at the given domain label.
func (p *Pipeline) ReverseConvertFrom(value uint64, label string) uint64 {
	current := value
	for m, ok := p.reverse[label]; ok; m, ok = p.reverse[label] {
		current = m.Lookup(current)
		label = m.To()
	}
	return current
}

// Trace returns every intermediate value of a forward conversion, starting
// with the input in the start domain.
func (p *Pipeline) Trace(value uint64) []Step {
	return walk(p.forward, value, p.startLabel)
}

// TraceFrom is Trace starting at the given domain label.
func (p *Pipeline) TraceFrom(value uint64, label string) []Step {
	return walk(p.forward, value, label)
}

// ReverseTrace returns every intermediate value of a reverse conversion.
func (p *Pipeline) ReverseTrace(value uint64) []Step {
	return walk(p.reverse, value, p.endLabel)
}

// ReverseTraceFrom is ReverseTrace starting at the given domain label.
func (p *Pipeline) ReverseTraceFrom(value uint64, label string) []Step {
	return walk(p.reverse, value, label)
}

func walk(maps map[string]*rangemap.Map, value uint64, label string) []Step {
	steps := []Step{{Label: label, Value: value}}
	for m, ok := maps[label]; ok; m, ok = maps[label] {
		value = m.Lookup(value)
		label = m.To()
		steps = append(steps, Step{Label: label, Value: value})
	}
	return steps
}

// ValueInSeedDomain reports whether value is a legal seed input.
func (p *Pipeline) ValueInSeedDomain(value uint64) bool {
	return p.domain.Contains(value)
}

// Seeds returns the explicit seed values.
func (p *Pipeline) Seeds() []uint64 {
	return p.seeds
}

// Domain returns the seed domain.
func (p *Pipeline) Domain() *domainset.Set {
	return p.domain
}

// StartLabel returns the label forward traversal starts from.
func (p *Pipeline) StartLabel() string { return p.startLabel }

// EndLabel returns the label reverse traversal starts from.
func (p *Pipeline) EndLabel() string { return p.endLabel }

// Stage returns the forward map leaving the given domain.
func (p *Pipeline) Stage(from string) (*rangemap.Map, bool) {
	m, ok := p.forward[from]
	return m, ok
}

// ReverseStage returns the reverse map leaving the given domain.
func (p *Pipeline) ReverseStage(from string) (*rangemap.Map, bool) {
	m, ok := p.reverse[from]
	return m, ok
}

// Stages returns the forward maps in description order.
func (p *Pipeline) Stages() []*rangemap.Map {
	stages := make([]*rangemap.Map, 0, len(p.order))
	for _, from := range p.order {
		stages = append(stages, p.forward[from])
	}
	return stages
}

// Chain returns the labels visited by forward traversal from the start label.
func (p *Pipeline) Chain() []string {
	steps := p.Trace(0)
	labels := make([]string, len(steps))
	for i, s := range steps {
		labels[i] = s.Label
	}
	return labels
}
