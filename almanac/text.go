package almanac

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/teranos/almanac/errors"
	"github.com/teranos/almanac/pipeline"
)

const (
	seedsPrefix  = "seeds:"
	headerSuffix = " map:"
	labelJoiner  = "-to-"
)

// maxLineBytes bounds a single input line; seed lines of real inputs run to
// a few hundred bytes.
const maxLineBytes = 1 << 20

// Parse reads the text almanac. The first non-blank line must be the seeds
// line; every following block is a "from-to-to map:" header followed by
// "dest source length" rows up to the next blank line.
func Parse(r io.Reader) (*Input, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	in := &Input{Format: FormatText}
	seenSeeds := false
	current := -1
	lineNo := 0

	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())

		switch {
		case line == "":
			current = -1

		case !seenSeeds:
			seeds, err := parseSeeds(line)
			if err != nil {
				return nil, atLine(err, lineNo)
			}
			in.SeedValues = seeds
			seenSeeds = true

		case strings.HasSuffix(line, headerSuffix):
			from, to, err := parseHeader(line)
			if err != nil {
				return nil, atLine(err, lineNo)
			}
			in.Stages = append(in.Stages, pipeline.StageDescription{From: from, To: to})
			current = len(in.Stages) - 1

		case current < 0:
			return nil, atLine(errors.WithHint(
				errors.NewMalformedInputf("rule row %q outside of a map block", line),
				"each block starts with a \"<from>-to-<to> map:\" header"), lineNo)

		default:
			row, err := pipeline.ParseRuleRow(line)
			if err != nil {
				return nil, atLine(err, lineNo)
			}
			in.Stages[current].Rows = append(in.Stages[current].Rows, row)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrapf(err, "reading almanac at line %d", lineNo+1)
	}

	if !seenSeeds {
		return nil, errors.WithHint(
			errors.NewMalformedInputf("missing seeds line"),
			"the almanac must start with \"seeds: <n> <n> ...\"")
	}

	in.SeedRanges = RangesFromSeeds(in.SeedValues)
	return in, nil
}

func parseSeeds(line string) ([]uint64, error) {
	rest, ok := strings.CutPrefix(line, seedsPrefix)
	if !ok {
		return nil, errors.WithHint(
			errors.NewMalformedInputf("expected seeds line, got %q", line),
			"the almanac must start with \"seeds: <n> <n> ...\"")
	}

	fields := strings.Fields(rest)
	seeds := make([]uint64, 0, len(fields))
	for _, f := range fields {
		v, err := strconv.ParseUint(f, 10, 64)
		if err != nil {
			return nil, errors.WrapMalformedInput(err, "seed "+strconv.Quote(f))
		}
		seeds = append(seeds, v)
	}
	return seeds, nil
}

func parseHeader(line string) (string, string, error) {
	name := strings.TrimSuffix(line, headerSuffix)
	from, to, ok := strings.Cut(name, labelJoiner)
	if !ok || from == "" || to == "" || strings.ContainsAny(name, " \t") {
		return "", "", errors.WithHint(
			errors.NewMalformedInputf("invalid map header %q", line),
			"headers look like \"seed-to-soil map:\"")
	}
	return from, to, nil
}

func atLine(err error, line int) error {
	return errors.Wrapf(err, "line %d", line)
}
