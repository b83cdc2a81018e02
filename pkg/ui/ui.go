// Package ui renders command documents in the format the user asked for:
// styled terminal output, plain text, JSON or YAML.
package ui

import (
	"io"

	"github.com/arthur-debert/modlink/pkg/errors"
	"github.com/arthur-debert/modlink/pkg/ui/json"
	"github.com/arthur-debert/modlink/pkg/ui/terminal"
	"github.com/arthur-debert/modlink/pkg/ui/text"
	"github.com/arthur-debert/modlink/pkg/ui/yaml"
)

// Renderer writes command output. Results are usually documents from
// pkg/ui/display; renderers that do not know a type fall back to a
// generic rendering of it.
type Renderer interface {
	RenderResult(result interface{}) error
	RenderError(err error) error
	RenderMessage(msg string) error
}

// NewRenderer returns the renderer for format, resolving FormatAuto
// against output first
func NewRenderer(format Format, output io.Writer) (Renderer, error) {
	switch Resolve(format, output) {
	case FormatTerminal:
		return terminal.New(output)
	case FormatText:
		return text.New(output)
	case FormatJSON:
		return json.New(output)
	case FormatYAML:
		return yaml.New(output)
	}
	return nil, errors.Newf(errors.ErrInvalidInput, "unknown format %q", format.String()).
		WithDetail("format", int(format))
}
