package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/amasotti/cbplace/internal/analysis"
	"github.com/amasotti/cbplace/internal/config"
)

// Renderer writes a report in one output format.
type Renderer interface {
	Render(w io.Writer, report *analysis.Report) error
}

// Options configures the table renderer; document formats ignore them.
type Options struct {
	NoColor     bool
	MarkdownDir string
}

// New returns the renderer for format. Unknown formats fall back to the table.
func New(format string, opts Options) Renderer {
	switch strings.ToLower(format) {
	case config.OutputJSON:
		return &jsonRenderer{}
	case config.OutputYAML:
		return &yamlRenderer{}
	default:
		return &TableRenderer{NoColor: opts.NoColor, MarkdownDir: opts.MarkdownDir}
	}
}

type jsonRenderer struct{}

func (r *jsonRenderer) Render(w io.Writer, report *analysis.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		return fmt.Errorf("failed to encode report as json: %w", err)
	}
	return nil
}

type yamlRenderer struct{}

func (r *yamlRenderer) Render(w io.Writer, report *analysis.Report) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(report); err != nil {
		return fmt.Errorf("failed to encode report as yaml: %w", err)
	}
	return enc.Close()
}
