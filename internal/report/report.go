// Package report prints per-file status lines and the run summary.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"swupfix/internal/model"
)

// Printer writes human-readable progress. Colors are only emitted when w is
// a terminal.
type Printer struct {
	w io.Writer

	titleStyle  lipgloss.Style
	okStyle     lipgloss.Style
	warnStyle   lipgloss.Style
	dimStyle    lipgloss.Style
	addStyle    lipgloss.Style
	removeStyle lipgloss.Style
}

// New creates a Printer for w.
func New(w io.Writer) *Printer {
	r := lipgloss.NewRenderer(w)
	// Diff lines carry template source; keep their tabs.
	base := r.NewStyle().TabWidth(lipgloss.NoTabConversion)
	return &Printer{
		w:           w,
		titleStyle:  base.Bold(true),
		okStyle:     base.Foreground(lipgloss.Color("42")),  // Green
		warnStyle:   base.Foreground(lipgloss.Color("208")), // Orange
		dimStyle:    base.Foreground(lipgloss.Color("240")), // Grey
		addStyle:    base.Foreground(lipgloss.Color("42")),
		removeStyle: base.Foreground(lipgloss.Color("203")),
	}
}

// Header announces the run.
func (p *Printer) Header(event string) {
	fmt.Fprintln(p.w, p.titleStyle.Render(fmt.Sprintf("Fixing %s listeners...", event)))
}

// File prints the status line for one section. Missing and unchanged
// sections print nothing.
func (p *Printer) File(r model.FileResult) {
	name := r.Target.File
	switch r.Status {
	case model.StatusFixed:
		verb := "Fixed"
		if r.DryRun {
			verb = "Would fix"
		}
		fmt.Fprintf(p.w, "  %s %s %s\n", p.okStyle.Render(model.IconFixed), verb, name)
		if r.Residual > 0 {
			fmt.Fprintf(p.w, "  %s %s still has %d unmatched listener(s), may need manual fix\n",
				p.warnStyle.Render(model.IconWarn), name, r.Residual)
		}
		for _, key := range r.Unbalanced {
			fmt.Fprintf(p.w, "  %s %s listener %s has nested braces and was cut short, needs manual fix\n",
				p.warnStyle.Render(model.IconWarn), name, key)
		}
		if r.Diff != "" {
			p.diff(r.Diff)
		}
	case model.StatusComplex:
		fmt.Fprintf(p.w, "  %s %s has complex patterns, may need manual fix\n",
			p.warnStyle.Render(model.IconWarn), name)
	}
}

func (p *Printer) diff(d string) {
	for _, line := range strings.Split(strings.TrimSuffix(d, "\n"), "\n") {
		style := p.dimStyle
		switch {
		case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"):
			style = p.titleStyle
		case strings.HasPrefix(line, "+"):
			style = p.addStyle
		case strings.HasPrefix(line, "-"):
			style = p.removeStyle
		}
		fmt.Fprintf(p.w, "    %s\n", style.Render(line))
	}
}

// Summary prints the fixed-file count.
func (p *Printer) Summary(s model.Summary) {
	verb := "Fixed"
	if s.DryRun {
		verb = "Would fix"
	}
	fmt.Fprintf(p.w, "\n%s %d files\n", verb, s.Fixed)
}

// JSON writes the summary as indented JSON.
func JSON(w io.Writer, s model.Summary) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(s)
}
