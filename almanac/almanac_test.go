package almanac

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/almanac/domainset"
	"github.com/teranos/almanac/errors"
	qtest "github.com/teranos/almanac/internal/testing"
	"github.com/teranos/almanac/pipeline"
)

func TestParseExample(t *testing.T) {
	in, err := Parse(strings.NewReader(qtest.ExampleAlmanac))
	require.NoError(t, err)

	assert.Equal(t, FormatText, in.Format)
	assert.Equal(t, qtest.ExampleSeeds, in.SeedValues)
	assert.Equal(t, qtest.ExampleSeedRanges, in.SeedRanges)
	assert.Equal(t, qtest.ExampleStages(), in.Stages)
}

func TestParseStageRuleCounts(t *testing.T) {
	in, err := Parse(strings.NewReader(qtest.ExampleAlmanac))
	require.NoError(t, err)
	p, err := in.Pipeline()
	require.NoError(t, err)

	want := map[string]int{
		"seed":        2,
		"soil":        3,
		"fertilizer":  4,
		"water":       2,
		"light":       3,
		"temperature": 2,
		"humidity":    2,
	}
	require.Len(t, p.Stages(), 7)
	for from, n := range want {
		m, ok := p.Stage(from)
		require.True(t, ok, from)
		assert.Equal(t, n, m.Len(), from)
	}

	seedToSoil, _ := p.Stage("seed")
	assert.Equal(t, uint64(81), seedToSoil.Lookup(79))
	assert.Equal(t, uint64(14), seedToSoil.Lookup(14))
	assert.Equal(t, uint64(57), seedToSoil.Lookup(55))
	assert.Equal(t, uint64(13), seedToSoil.Lookup(13))

	assert.Equal(t, uint64(82), p.Convert(79))
	assert.Equal(t, uint64(43), p.Convert(14))
	assert.Equal(t, uint64(86), p.Convert(55))
	assert.Equal(t, uint64(35), p.Convert(13))
}

func TestParseTolerance(t *testing.T) {
	text := "\n  seeds: 1 2 3\r\n\n\nseed-to-soil map:\r\n 10 0 5 \n\n\nsoil-to-location map:\n0 10 5"
	in, err := Parse(strings.NewReader(text))
	require.NoError(t, err)

	assert.Equal(t, []uint64{1, 2, 3}, in.SeedValues)
	// The odd trailing seed takes no part in the ranges.
	assert.Equal(t, []domainset.Interval{{Start: 1, Length: 2}}, in.SeedRanges)
	require.Len(t, in.Stages, 2)
	assert.Equal(t, []pipeline.RuleRow{{Dest: 10, Source: 0, Length: 5}}, in.Stages[0].Rows)
	assert.Equal(t, "location", in.Stages[1].To)
}

func TestParseEmptyMapBlock(t *testing.T) {
	in, err := Parse(strings.NewReader("seeds: 5\n\nseed-to-location map:\n"))
	require.NoError(t, err)
	require.Len(t, in.Stages, 1)
	assert.Empty(t, in.Stages[0].Rows)
	assert.Empty(t, in.SeedRanges)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		line  string
	}{
		{"empty input", "", ""},
		{"blank input", "\n\n", ""},
		{"no seeds prefix", "seed: 1 2\n", "line 1"},
		{"bad seed", "seeds: 1 x 3\n", "line 1"},
		{"negative seed", "seeds: -1\n", "line 1"},
		{"bad header", "seeds: 1\n\nseed to soil map:\n", "line 3"},
		{"header without target", "seeds: 1\n\nseed-to- map:\n", "line 3"},
		{"row outside block", "seeds: 1\n\n50 98 2\n", "line 3"},
		{"row after blank line", "seeds: 1\n\nseed-to-soil map:\n50 98 2\n\n52 50 48\n", "line 6"},
		{"short row", "seeds: 1\n\nseed-to-soil map:\n50 98\n", "line 4"},
		{"bad integer", "seeds: 1\n\nseed-to-soil map:\n50 98 two\n", "line 4"},
		{"integer too large", "seeds: 1\n\nseed-to-soil map:\n50 98 18446744073709551616\n", "line 4"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.input))
			require.Error(t, err)
			assert.True(t, errors.IsMalformedInput(err), "got %v", err)
			if tt.line != "" {
				assert.Contains(t, err.Error(), tt.line)
			}
		})
	}
}

func TestParsedInputBuildErrors(t *testing.T) {
	in, err := Parse(strings.NewReader("seeds: 1\n\na-to-b map:\n\nb-to-a map:\n"))
	require.NoError(t, err)

	_, err = in.Pipeline(pipeline.WithStartLabel("a"))
	assert.True(t, errors.IsMalformedInput(err))
}

func TestParseYAMLExample(t *testing.T) {
	in, err := ParseFile(filepath.Join("testdata", "example.yaml"))
	require.NoError(t, err)

	assert.Equal(t, FormatYAML, in.Format)
	assert.Equal(t, qtest.ExampleSeeds, in.SeedValues)
	assert.Equal(t, qtest.ExampleSeedRanges, in.SeedRanges)
	assert.Equal(t, qtest.ExampleStages(), in.Stages)
}

func TestParseTOMLExample(t *testing.T) {
	in, err := ParseFile(filepath.Join("testdata", "example.toml"))
	require.NoError(t, err)

	assert.Equal(t, FormatTOML, in.Format)
	assert.Equal(t, qtest.ExampleSeeds, in.SeedValues)
	assert.Equal(t, qtest.ExampleSeedRanges, in.SeedRanges)
	assert.Equal(t, qtest.ExampleStages(), in.Stages)
}

func TestFormatsShareDigest(t *testing.T) {
	text, err := ParseFile(filepath.Join("testdata", "example.txt"))
	require.NoError(t, err)
	yml, err := ParseFile(filepath.Join("testdata", "example.yaml"))
	require.NoError(t, err)
	tml, err := ParseFile(filepath.Join("testdata", "example.toml"))
	require.NoError(t, err)

	assert.Len(t, text.Digest(), 64)
	assert.Equal(t, text.Digest(), yml.Digest())
	assert.Equal(t, text.Digest(), tml.Digest())

	other, err := Parse(strings.NewReader("seeds: 1 2\n"))
	require.NoError(t, err)
	assert.NotEqual(t, text.Digest(), other.Digest())
}

func TestStructuredFormatVersion(t *testing.T) {
	tests := []struct {
		name    string
		format  string
		wantErr bool
	}{
		{"omitted", "", false},
		{"current", "1.0.0", false},
		{"minor bump", "1.4.2", false},
		{"short form", "1", false},
		{"next major", "2.0.0", true},
		{"zero major", "0.9.0", true},
		{"not a version", "latest", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := "seeds: [1, 2]\nstages: []\n"
			if tt.format != "" {
				doc = "format: \"" + tt.format + "\"\n" + doc
			}
			in, err := ParseYAML(strings.NewReader(doc))
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.IsMalformedInput(err))
				assert.NotEmpty(t, errors.GetAllHints(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, []domainset.Interval{{Start: 1, Length: 2}}, in.SeedRanges)
		})
	}
}

func TestStructuredErrors(t *testing.T) {
	_, err := ParseYAML(strings.NewReader(""))
	assert.True(t, errors.IsMalformedInput(err))

	_, err = ParseYAML(strings.NewReader("seeds: [1]\nunknown: true\n"))
	assert.True(t, errors.IsMalformedInput(err))

	_, err = ParseYAML(strings.NewReader("seeds: [-1]\n"))
	assert.True(t, errors.IsMalformedInput(err))

	_, err = ParseTOML(strings.NewReader("seeds = [1]\nunknown = true\n"))
	assert.True(t, errors.IsMalformedInput(err))

	_, err = ParseTOML(strings.NewReader("seeds = [1\n"))
	assert.True(t, errors.IsMalformedInput(err))
}

func TestExplicitSeedRangesWin(t *testing.T) {
	doc := `
seeds = [1, 2, 3, 4]

[[seed_ranges]]
start = 100
length = 5
`
	in, err := ParseTOML(strings.NewReader(doc))
	require.NoError(t, err)
	assert.Equal(t, []domainset.Interval{{Start: 100, Length: 5}}, in.SeedRanges)
}

func TestDetectFormat(t *testing.T) {
	assert.Equal(t, FormatYAML, DetectFormat("input.yaml"))
	assert.Equal(t, FormatYAML, DetectFormat("INPUT.YML"))
	assert.Equal(t, FormatTOML, DetectFormat("/tmp/a.toml"))
	assert.Equal(t, FormatText, DetectFormat("input.txt"))
	assert.Equal(t, FormatText, DetectFormat("input"))
}

func TestParseFormatName(t *testing.T) {
	f, err := ParseFormatName("YML")
	require.NoError(t, err)
	assert.Equal(t, FormatYAML, f)

	_, err = ParseFormatName("xml")
	assert.Error(t, err)
}

func TestParseFileMissing(t *testing.T) {
	_, err := ParseFile(filepath.Join(t.TempDir(), "nope.txt"))
	require.Error(t, err)
	assert.False(t, errors.IsMalformedInput(err))
}

func TestNewDocument(t *testing.T) {
	in, err := Parse(strings.NewReader(qtest.ExampleAlmanac))
	require.NoError(t, err)

	doc := NewDocument(in)
	assert.Equal(t, CurrentFormatVersion, doc.Format)
	assert.Len(t, doc.Stages, 7)
}
