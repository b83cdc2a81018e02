package ui

import (
	"io"
	"os"
	"strings"

	"github.com/arthur-debert/modlink/pkg/errors"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
)

// Format is an output format
type Format int

const (
	// FormatAuto picks terminal or text from where output goes
	FormatAuto Format = iota
	// FormatTerminal is styled output: tables, colors
	FormatTerminal
	// FormatText is plain text, safe for pipes
	FormatText
	// FormatJSON encodes the display documents as JSON
	FormatJSON
	// FormatYAML encodes the same documents as YAML
	FormatYAML
)

// formatNames are the canonical names, in Formats order
var formatNames = []string{"auto", "term", "text", "json", "yaml"}

var formatAliases = map[string]Format{
	"":         FormatAuto,
	"terminal": FormatTerminal,
	"plain":    FormatText,
	"yml":      FormatYAML,
}

// Formats lists the names ParseFormat accepts, aliases aside
func Formats() []string {
	return append([]string(nil), formatNames...)
}

func (f Format) String() string {
	if f < 0 || int(f) >= len(formatNames) {
		return "unknown"
	}
	return formatNames[f]
}

// Structured reports whether a format is meant for programs rather than
// people. Prompts and progress bars stay off for them.
func (f Format) Structured() bool {
	return f == FormatJSON || f == FormatYAML
}

// ParseFormat reads a --format value
func ParseFormat(s string) (Format, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for i, known := range formatNames {
		if name == known {
			return Format(i), nil
		}
	}
	if f, ok := formatAliases[name]; ok {
		return f, nil
	}
	return FormatAuto, errors.Newf(errors.ErrInvalidInput, "unknown format %q (expected one of %s)",
		s, strings.Join(formatNames, ", ")).
		WithDetail("format", s)
}

// DetectFormat chooses between terminal and text for output. NO_COLOR, a
// pipe or a terminal without colors all mean text.
func DetectFormat(output *os.File) Format {
	if os.Getenv("NO_COLOR") != "" {
		return FormatText
	}
	fd := output.Fd()
	if !isatty.IsTerminal(fd) && !isatty.IsCygwinTerminal(fd) {
		return FormatText
	}
	if termenv.ColorProfile() == termenv.Ascii {
		return FormatText
	}
	return FormatTerminal
}

// Resolve turns FormatAuto into a concrete format for output. Writers that
// are not files (buffers, tests) get text.
func Resolve(f Format, output io.Writer) Format {
	if f != FormatAuto {
		return f
	}
	if file, ok := output.(*os.File); ok {
		return DetectFormat(file)
	}
	return FormatText
}
