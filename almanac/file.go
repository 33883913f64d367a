package almanac

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/teranos/almanac/errors"
	"github.com/teranos/almanac/logger"
)

// DetectFormat picks a format from the file extension. Anything that is not
// YAML or TOML is read as text.
func DetectFormat(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	case ".toml":
		return FormatTOML
	default:
		return FormatText
	}
}

// ParseFormatName resolves a user-supplied format name.
func ParseFormatName(name string) (Format, error) {
	switch f := Format(strings.ToLower(name)); f {
	case FormatText, FormatYAML, FormatTOML:
		return f, nil
	case "yml":
		return FormatYAML, nil
	case "txt":
		return FormatText, nil
	default:
		return "", errors.WithHint(
			errors.Newf("unknown almanac format %q", name),
			"valid formats: text, yaml, toml")
	}
}

// ParseFormat reads r in the given format.
func ParseFormat(r io.Reader, format Format) (*Input, error) {
	switch format {
	case FormatYAML:
		return ParseYAML(r)
	case FormatTOML:
		return ParseTOML(r)
	case FormatText, "":
		return Parse(r)
	default:
		return nil, errors.Newf("unknown almanac format %q", format)
	}
}

// ParseFile opens path and parses it in the format its extension names.
func ParseFile(path string) (*Input, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening almanac %s", path)
	}
	defer f.Close()

	format := DetectFormat(path)
	in, err := ParseFormat(f, format)
	if err != nil {
		return nil, errors.Wrapf(err, "parsing %s", path)
	}

	logger.ComponentLogger("almanac").Debugw("Parsed almanac",
		logger.FieldFile, path,
		logger.FieldFormat, string(format),
		logger.FieldSeeds, len(in.SeedValues),
		logger.FieldStages, len(in.Stages))
	return in, nil
}
