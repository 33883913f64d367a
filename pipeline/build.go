package pipeline

import (
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/teranos/almanac/domainset"
	"github.com/teranos/almanac/errors"
	"github.com/teranos/almanac/logger"
	"github.com/teranos/almanac/rangemap"
)

// RuleRow is one parsed rule row in the order the almanac writes it:
// destination start, source start, length.
type RuleRow struct {
	Dest   uint64 `json:"dest" yaml:"dest" toml:"dest"`
	Source uint64 `json:"source" yaml:"source" toml:"source"`
	Length uint64 `json:"length" yaml:"length" toml:"length"`
}

// Rule converts the row to a rangemap rule.
func (r RuleRow) Rule() rangemap.Rule {
	return rangemap.Rule{SourceStart: r.Source, DestStart: r.Dest, Length: r.Length}
}

// StageDescription describes one stage as handed over by a parser. Rows holds
// already parsed rules; RawRows holds unparsed "dest source length" lines and
// is parsed during Build. Both may be set; Rows are inserted first.
type StageDescription struct {
	From    string    `json:"from" yaml:"from" toml:"from"`
	To      string    `json:"to" yaml:"to" toml:"to"`
	Rows    []RuleRow `json:"rules,omitempty" yaml:"rules,omitempty" toml:"rules,omitempty"`
	RawRows []string  `json:"-" yaml:"-" toml:"-"`
}

// Name returns the stage in "from-to-to" form.
func (d StageDescription) Name() string {
	return d.From + "-to-" + d.To
}

// ParseRuleRow parses a "dest source length" line.
func ParseRuleRow(line string) (RuleRow, error) {
	fields := strings.Fields(line)
	if len(fields) != 3 {
		return RuleRow{}, errors.WithHint(
			errors.NewMalformedInputf("rule row %q has %d fields, expected 3", line, len(fields)),
			"rule rows are: <dest start> <source start> <length>")
	}

	var values [3]uint64
	for i, f := range fields {
		v, err := strconv.ParseUint(f, 10, 64)
		if err != nil {
			return RuleRow{}, errors.WrapMalformedInput(err, "rule row "+strconv.Quote(line))
		}
		values[i] = v
	}
	return RuleRow{Dest: values[0], Source: values[1], Length: values[2]}, nil
}

// Option configures Build.
type Option func(*buildConfig)

type buildConfig struct {
	startLabel  string
	endLabel    string
	strictRules bool
	logger      *zap.SugaredLogger
}

// WithStartLabel sets the domain forward traversal starts from.
func WithStartLabel(label string) Option {
	return func(c *buildConfig) { c.startLabel = label }
}

// WithEndLabel sets the domain reverse traversal starts from.
func WithEndLabel(label string) Option {
	return func(c *buildConfig) { c.endLabel = label }
}

// WithStrictRules rejects stages whose rules overlap in source space and
// overlapping seed ranges. Without it overlaps are logged, Lookup resolves
// rule overlaps by nearest start and seed ranges are merged.
func WithStrictRules(strict bool) Option {
	return func(c *buildConfig) { c.strictRules = strict }
}

// WithLogger sets the logger used for build diagnostics.
func WithLogger(l *zap.SugaredLogger) Option {
	return func(c *buildConfig) { c.logger = l }
}

// Build assembles a pipeline from seed values, seed ranges and stage
// descriptions. Every failure is an errors.ErrMalformedInput.
func Build(seedValues []uint64, seedRanges []domainset.Interval, stages []StageDescription, opts ...Option) (*Pipeline, error) {
	cfg := buildConfig{
		startLabel: DefaultStartLabel,
		endLabel:   DefaultEndLabel,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	log := cfg.logger
	if log == nil {
		log = logger.ComponentLogger("pipeline")
	}

	if cfg.startLabel == "" || cfg.endLabel == "" {
		return nil, errors.NewMalformedInputf("start and end labels must be non-empty")
	}

	p := &Pipeline{
		forward:    make(map[string]*rangemap.Map, len(stages)),
		reverse:    make(map[string]*rangemap.Map, len(stages)),
		order:      make([]string, 0, len(stages)),
		seeds:      append([]uint64(nil), seedValues...),
		domain:     domainset.New(),
		startLabel: cfg.startLabel,
		endLabel:   cfg.endLabel,
	}

	for i, iv := range seedRanges {
		if iv.Overflows() {
			return nil, errors.NewMalformedInputf("seed range %d (start %d, length %d) extends past 2^64", i, iv.Start, iv.Length)
		}
	}
	ranges := seedRanges
	if found := domainset.Overlaps(seedRanges); len(found) > 0 {
		if cfg.strictRules {
			o := found[0]
			return nil, errors.WithDetailf(
				errors.NewMalformedInputf("%d overlapping seed ranges", len(found)),
				"first overlap: [%s] and [%s]", o.First, o.Second)
		}
		ranges = domainset.Merge(seedRanges)
		log.Warnw("Seed ranges overlap, merging them",
			logger.FieldCount, len(found),
			logger.FieldIntervals, len(ranges))
	}
	for _, iv := range ranges {
		p.domain.Insert(iv.Start, iv.Length)
	}

	for i, desc := range stages {
		fwd, err := buildStage(i, desc)
		if err != nil {
			return nil, err
		}
		if _, dup := p.forward[desc.From]; dup {
			return nil, errors.WithHint(
				errors.NewMalformedInputf("stage %d: domain %q already has an outgoing stage", i, desc.From),
				"each domain may be the source of only one stage")
		}
		if _, dup := p.reverse[desc.To]; dup {
			return nil, errors.WithHint(
				errors.NewMalformedInputf("stage %d: domain %q already has an incoming stage", i, desc.To),
				"each domain may be the target of only one stage")
		}

		if found := fwd.Overlaps(); len(found) > 0 {
			if cfg.strictRules {
				o := found[0]
				return nil, errors.WithDetailf(
					errors.NewMalformedInputf("stage %s: %d overlapping rules", desc.Name(), len(found)),
					"first overlap: [%s] and [%s]", o.First, o.Second)
			}
			log.Warnw("Stage has overlapping rules, nearest start wins",
				logger.FieldStage, desc.Name(),
				logger.FieldCount, len(found))
		}
		if found := fwd.DestOverlaps(); len(found) > 0 {
			log.Warnw("Stage is not a bijection, reverse traversal may not invert it",
				logger.FieldStage, desc.Name(),
				logger.FieldCount, len(found))
		}

		p.forward[desc.From] = fwd
		p.reverse[desc.To] = fwd.Reverse()
		p.order = append(p.order, desc.From)
	}

	if err := p.checkAcyclic(); err != nil {
		return nil, err
	}

	if len(stages) > 0 {
		if _, ok := p.forward[p.startLabel]; !ok {
			log.Warnw("No stage leaves the start domain, conversion is the identity", logger.FieldFrom, p.startLabel)
		}
		if _, ok := p.reverse[p.endLabel]; !ok {
			log.Warnw("No stage enters the end domain, reverse conversion is the identity", logger.FieldTo, p.endLabel)
		}
	}

	log.Debugw("Pipeline built",
		logger.FieldStages, len(p.order),
		logger.FieldSeeds, len(p.seeds),
		logger.FieldIntervals, p.domain.Len())

	return p, nil
}

func buildStage(index int, desc StageDescription) (*rangemap.Map, error) {
	if desc.From == "" || desc.To == "" {
		return nil, errors.NewMalformedInputf("stage %d: missing from or to label", index)
	}
	if desc.From == desc.To {
		return nil, errors.NewMalformedInputf("stage %d: %s maps a domain onto itself", index, desc.Name())
	}

	rows := append([]RuleRow(nil), desc.Rows...)
	for j, raw := range desc.RawRows {
		if strings.TrimSpace(raw) == "" {
			continue
		}
		row, err := ParseRuleRow(raw)
		if err != nil {
			return nil, errors.Wrapf(err, "stage %s row %d", desc.Name(), j+1)
		}
		rows = append(rows, row)
	}

	m := rangemap.New(desc.From, desc.To)
	for j, row := range rows {
		r := row.Rule()
		if r.SourceOverflows() || r.DestOverflows() {
			return nil, errors.NewMalformedInputf("stage %s row %d: [%s] extends past 2^64", desc.Name(), j+1, r)
		}
		m.Insert(r)
	}
	return m, nil
}

// checkAcyclic rejects label chains that loop, which would make traversal
// run forever. Labels have at most one outgoing stage, so a walk longer than
// the number of stages must have revisited a label.
func (p *Pipeline) checkAcyclic() error {
	for _, start := range p.order {
		label := start
		for steps := 0; ; steps++ {
			m, ok := p.forward[label]
			if !ok {
				break
			}
			if steps >= len(p.forward) {
				return errors.WithHint(
					errors.NewMalformedInputf("stage chain starting at %q loops back on itself", start),
					"stage labels must form a linear chain")
			}
			label = m.To()
		}
	}
	return nil
}
