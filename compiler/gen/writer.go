package gen

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/fatih/color"
)

// writeFile renders the artifact file directly to disk.
func (g *Generator) writeFile(a *Artifact) (err error) {
	if a.File == nil {
		return NewGenerationError(a.Path, "artifact has no file", nil)
	}
	path := filepath.Join(g.graph.Config.Target, filepath.FromSlash(a.Path))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return NewGenerationError(a.Path, "create directory", err)
	}
	out, err := os.Create(path)
	if err != nil {
		return NewGenerationError(a.Path, "create file", err)
	}
	defer func() {
		if cerr := out.Close(); cerr != nil && err == nil {
			err = NewGenerationError(a.Path, "close file", cerr)
		}
	}()
	// Jennifer renders with correct imports and formatting.
	if err := a.File.Render(out); err != nil {
		return NewGenerationError(a.Path, "render", err)
	}
	return nil
}

var (
	check = color.New(color.FgGreen).SprintFunc()
	bold  = color.New(color.Bold).SprintFunc()
	faint = color.New(color.Faint).SprintFunc()
)

// printer writes the human readable progress transcript.
type printer struct {
	w io.Writer
}

func newPrinter(c *Config) *printer {
	w := c.Output
	if c.Quiet {
		w = io.Discard
	}
	return &printer{w: w}
}

func (p *printer) table(t *Type) {
	fmt.Fprintf(p.w, "Generating resources for table '%s'...\n", bold(t.TableName()))
}

func (p *printer) artifact(a *Artifact) {
	fmt.Fprintf(p.w, "  %s %s: %s\n", check("✓"), a.Kind.Label(), faint(a.Path))
}

func (p *printer) done(t *Type) {
	fmt.Fprintf(p.w, "%s Generated: %s (Model, Service, Controller, Migration)\n\n", check("✓"), t.Name)
}

func (p *printer) finish() {
	fmt.Fprintln(p.w, "All resources generated successfully!")
}
