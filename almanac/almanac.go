// Package almanac reads pipeline inputs: the line-oriented text almanac and
// the structured YAML and TOML documents carrying the same content.
//
// The text format is:
//
//	seeds: 79 14 55 13
//
//	seed-to-soil map:
//	50 98 2
//	52 50 48
//
//	soil-to-fertilizer map:
//	...
//
// Seed values double as seed ranges read in (start, length) pairs; a
// trailing odd value takes part in the explicit seeds only.
package almanac

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"github.com/teranos/almanac/domainset"
	"github.com/teranos/almanac/pipeline"
)

// Format identifies an input encoding.
type Format string

// Known formats.
const (
	FormatText Format = "text"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// Input is a parsed almanac, ready to be built into a pipeline.
type Input struct {
	Format     Format                      `json:"format"`
	SeedValues []uint64                    `json:"seeds"`
	SeedRanges []domainset.Interval        `json:"seed_ranges"`
	Stages     []pipeline.StageDescription `json:"stages"`
}

// Pipeline builds the pipeline described by the input.
func (in *Input) Pipeline(opts ...pipeline.Option) (*pipeline.Pipeline, error) {
	return pipeline.Build(in.SeedValues, in.SeedRanges, in.Stages, opts...)
}

// Digest returns a hex SHA-256 of the input's content. Two inputs with the
// same seeds, ranges and stages share a digest regardless of format.
func (in *Input) Digest() string {
	content := struct {
		SeedValues []uint64                    `json:"seeds"`
		SeedRanges []domainset.Interval        `json:"seed_ranges"`
		Stages     []pipeline.StageDescription `json:"stages"`
	}{in.SeedValues, in.SeedRanges, in.Stages}

	// Marshalling plain integers and strings cannot fail.
	data, _ := json.Marshal(content)
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// RangesFromSeeds reads seed values as (start, length) pairs. A trailing odd
// value is ignored.
func RangesFromSeeds(seeds []uint64) []domainset.Interval {
	ranges := make([]domainset.Interval, 0, len(seeds)/2)
	for i := 0; i+1 < len(seeds); i += 2 {
		ranges = append(ranges, domainset.Interval{Start: seeds[i], Length: seeds[i+1]})
	}
	return ranges
}
