package almanac

import (
	"io"

	"github.com/BurntSushi/toml"
	"github.com/Masterminds/semver/v3"
	"gopkg.in/yaml.v3"

	"github.com/teranos/almanac/domainset"
	"github.com/teranos/almanac/errors"
	"github.com/teranos/almanac/pipeline"
)

// CurrentFormatVersion is the structured document version this package writes.
const CurrentFormatVersion = "1.0.0"

// SupportedFormats is the semver constraint a document's format must satisfy.
const SupportedFormats = "^1"

// Document is the structured almanac shared by the YAML and TOML encodings.
// SeedRanges may be omitted, in which case Seeds are read as pairs.
type Document struct {
	Format     string                      `json:"format" yaml:"format" toml:"format"`
	Seeds      []uint64                    `json:"seeds" yaml:"seeds" toml:"seeds"`
	SeedRanges []domainset.Interval        `json:"seed_ranges,omitempty" yaml:"seed_ranges,omitempty" toml:"seed_ranges,omitempty"`
	Stages     []pipeline.StageDescription `json:"stages" yaml:"stages" toml:"stages"`
}

// NewDocument converts an input into its structured form.
func NewDocument(in *Input) Document {
	return Document{
		Format:     CurrentFormatVersion,
		Seeds:      in.SeedValues,
		SeedRanges: in.SeedRanges,
		Stages:     in.Stages,
	}
}

// ParseYAML reads a YAML document. Unknown keys are rejected.
func ParseYAML(r io.Reader) (*Input, error) {
	var doc Document
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		if err == io.EOF {
			return nil, errors.NewMalformedInputf("empty YAML almanac")
		}
		return nil, errors.WrapMalformedInput(err, "decoding YAML almanac")
	}
	return doc.input(FormatYAML)
}

// ParseTOML reads a TOML document. Unknown keys are rejected.
func ParseTOML(r io.Reader) (*Input, error) {
	var doc Document
	md, err := toml.NewDecoder(r).Decode(&doc)
	if err != nil {
		return nil, errors.WrapMalformedInput(err, "decoding TOML almanac")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, errors.NewMalformedInputf("unknown keys in TOML almanac: %v", undecoded)
	}
	return doc.input(FormatTOML)
}

func (d Document) input(format Format) (*Input, error) {
	if err := checkFormatVersion(d.Format); err != nil {
		return nil, err
	}

	ranges := d.SeedRanges
	if len(ranges) == 0 {
		ranges = RangesFromSeeds(d.Seeds)
	}
	return &Input{
		Format:     format,
		SeedValues: d.Seeds,
		SeedRanges: ranges,
		Stages:     d.Stages,
	}, nil
}

// checkFormatVersion accepts an empty version as the current one.
func checkFormatVersion(version string) error {
	if version == "" {
		return nil
	}

	v, err := semver.NewVersion(version)
	if err != nil {
		return errors.WithHint(
			errors.WrapMalformedInput(err, "format version "+version),
			"format must be a semantic version such as "+CurrentFormatVersion)
	}

	constraint, err := semver.NewConstraint(SupportedFormats)
	if err != nil {
		return errors.AssertionFailedf("invalid format constraint %s: %v", SupportedFormats, err)
	}
	if !constraint.Check(v) {
		return errors.WithHintf(
			errors.NewMalformedInputf("format %s is not supported", version),
			"supported formats: %s", SupportedFormats)
	}
	return nil
}
