package testing

import (
	"testing"

	"github.com/teranos/almanac/domainset"
	"github.com/teranos/almanac/pipeline"
)

// ExampleAlmanac is the reference seven-stage almanac in the line-oriented
// text format.
const ExampleAlmanac = `seeds: 79 14 55 13

seed-to-soil map:
50 98 2
52 50 48

soil-to-fertilizer map:
0 15 37
37 52 2
39 0 15

fertilizer-to-water map:
49 53 8
0 11 42
42 0 7
57 7 4

water-to-light map:
88 18 7
18 25 70

light-to-temperature map:
45 77 23
81 45 19
68 64 13

temperature-to-humidity map:
0 69 1
1 0 69

humidity-to-location map:
60 56 37
56 93 4
`

// ExampleSeeds are the explicit seed values of ExampleAlmanac.
var ExampleSeeds = []uint64{79, 14, 55, 13}

// ExampleSeedRanges are the seed values of ExampleAlmanac read as
// (start, length) pairs.
var ExampleSeedRanges = []domainset.Interval{{Start: 79, Length: 14}, {Start: 55, Length: 13}}

// ExampleStages returns the stage descriptions of ExampleAlmanac.
func ExampleStages() []pipeline.StageDescription {
	return []pipeline.StageDescription{
		{From: "seed", To: "soil", Rows: []pipeline.RuleRow{{Dest: 50, Source: 98, Length: 2}, {Dest: 52, Source: 50, Length: 48}}},
		{From: "soil", To: "fertilizer", Rows: []pipeline.RuleRow{{Dest: 0, Source: 15, Length: 37}, {Dest: 37, Source: 52, Length: 2}, {Dest: 39, Source: 0, Length: 15}}},
		{From: "fertilizer", To: "water", Rows: []pipeline.RuleRow{{Dest: 49, Source: 53, Length: 8}, {Dest: 0, Source: 11, Length: 42}, {Dest: 42, Source: 0, Length: 7}, {Dest: 57, Source: 7, Length: 4}}},
		{From: "water", To: "light", Rows: []pipeline.RuleRow{{Dest: 88, Source: 18, Length: 7}, {Dest: 18, Source: 25, Length: 70}}},
		{From: "light", To: "temperature", Rows: []pipeline.RuleRow{{Dest: 45, Source: 77, Length: 23}, {Dest: 81, Source: 45, Length: 19}, {Dest: 68, Source: 64, Length: 13}}},
		{From: "temperature", To: "humidity", Rows: []pipeline.RuleRow{{Dest: 0, Source: 69, Length: 1}, {Dest: 1, Source: 0, Length: 69}}},
		{From: "humidity", To: "location", Rows: []pipeline.RuleRow{{Dest: 60, Source: 56, Length: 37}, {Dest: 56, Source: 93, Length: 4}}},
	}
}

// ExamplePipeline builds the pipeline of ExampleAlmanac or fails the test.
func ExamplePipeline(t testing.TB, opts ...pipeline.Option) *pipeline.Pipeline {
	t.Helper()

	p, err := pipeline.Build(ExampleSeeds, ExampleSeedRanges, ExampleStages(), opts...)
	if err != nil {
		t.Fatalf("Failed to build example pipeline: %v", err)
	}
	return p
}
