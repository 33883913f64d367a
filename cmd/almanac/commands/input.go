package commands

import (
	"io"
	"os"

	"github.com/teranos/almanac/almanac"
	"github.com/teranos/almanac/am"
	"github.com/teranos/almanac/errors"
	"github.com/teranos/almanac/logger"
	"github.com/teranos/almanac/pipeline"
)

const stdinSource = "-"

// readInput parses the almanac at path, or stdin when path is empty or "-".
// An empty formatName picks the format from the file extension.
func readInput(path, formatName string, stdin io.Reader) (*almanac.Input, string, error) {
	if path == "" {
		path = stdinSource
	}
	if path != stdinSource && formatName == "" {
		in, err := almanac.ParseFile(path)
		return in, path, err
	}

	format := almanac.FormatText
	if formatName != "" {
		f, err := almanac.ParseFormatName(formatName)
		if err != nil {
			return nil, "", err
		}
		format = f
	}

	r := stdin
	if path != stdinSource {
		f, err := os.Open(path)
		if err != nil {
			return nil, "", errors.Wrapf(err, "opening almanac %s", path)
		}
		defer f.Close()
		r = f
	}

	in, err := almanac.ParseFormat(r, format)
	if err != nil {
		return nil, "", errors.Wrapf(err, "parsing %s", path)
	}
	return in, path, nil
}

// buildPipeline builds in with the chain settings from cfg.
func buildPipeline(in *almanac.Input, cfg *am.Config) (*pipeline.Pipeline, error) {
	return in.Pipeline(
		pipeline.WithStartLabel(cfg.Resolve.StartLabel),
		pipeline.WithEndLabel(cfg.Resolve.EndLabel),
		pipeline.WithStrictRules(cfg.Resolve.StrictRules),
		pipeline.WithLogger(logger.ComponentLogger("pipeline")),
	)
}
