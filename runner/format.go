package runner

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

// Formatter renders run results as text. Styling is applied only when the
// destination is a terminal (or forced via WithColor).
type Formatter struct {
	w        io.Writer
	color    bool
	detailed bool

	pass  lipgloss.Style
	fail  lipgloss.Style
	dim   lipgloss.Style
	title lipgloss.Style
}

// NewFormatter creates a formatter writing to w. Color defaults to on when w
// is a terminal.
func NewFormatter(w io.Writer) *Formatter {
	color := false
	if f, ok := w.(*os.File); ok {
		color = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return newFormatter(w, color)
}

// WithColor forces color on or off.
func (f *Formatter) WithColor(color bool) *Formatter {
	clone := newFormatter(f.w, color)
	clone.detailed = f.detailed
	return clone
}

// WithDetails enables per-case output.
func (f *Formatter) WithDetails(detailed bool) *Formatter {
	clone := *f
	clone.detailed = detailed
	return &clone
}

func newFormatter(w io.Writer, color bool) *Formatter {
	f := &Formatter{w: w, color: color}
	if color {
		f.pass = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
		f.fail = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
		f.dim = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
		f.title = lipgloss.NewStyle().Bold(true)
	}
	return f
}

// Render writes the full report: one line per case when detailed, failures,
// then the summary.
func (f *Formatter) Render(result *Result) error {
	if f.detailed {
		for _, c := range result.Cases {
			f.renderCase(c)
		}
		fmt.Fprintln(f.w)
	}

	for _, c := range result.Failed() {
		if !f.detailed {
			f.renderCase(c)
		}
		for _, d := range c.Diagnostics {
			fmt.Fprintf(f.w, "    %s\n", f.dim.Render(d.Message))
		}
		if c.Failure != "" {
			fmt.Fprintf(f.w, "    %s\n", f.dim.Render(c.Failure))
		}
	}

	return f.Summary(result)
}

func (f *Formatter) renderCase(c CaseResult) {
	mark := f.pass.Render("PASS")
	if !c.Passed {
		mark = f.fail.Render("FAIL")
	}
	fmt.Fprintf(f.w, "%s %s / %s\n", mark, c.Group, c.Name)
}

// Summary writes the aggregate statistics.
func (f *Formatter) Summary(result *Result) error {
	s := result.Stats
	fmt.Fprintln(f.w, f.title.Render("Summary"))
	fmt.Fprintf(f.w, "  files:        %d\n", s.Files)
	fmt.Fprintf(f.w, "  queries:      %d\n", s.Queries)
	fmt.Fprintf(f.w, "  passed:       %d\n", s.Passed)
	fmt.Fprintf(f.w, "  failed:       %d\n", s.Failed)
	fmt.Fprintf(f.w, "  parse errors: %d\n", s.ParseErrors)
	_, err := fmt.Fprintf(f.w, "  accuracy:     %.1f%%\n", s.Accuracy())
	return err
}

// RenderJSON writes the result as indented JSON.
func RenderJSON(w io.Writer, result *Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}
