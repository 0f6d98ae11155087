// Package report renders validation results for people (tables) and for
// tools (JSON).
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/FocuswithJustin/exportcheck/core/diag"
	"github.com/FocuswithJustin/exportcheck/internal/scan"
)

// Format selects the output encoding.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// ParseFormat converts a format name to a Format.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatText, FormatJSON:
		return f, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want text or json)", s)
	}
}

// Verdict lines printed under a scan summary.
const (
	VerdictValid  = "USB EXPORT VALID"
	VerdictIssues = "USB EXPORT HAS ISSUES"
)

// Options controls rendering.
type Options struct {
	Format  Format
	Color   bool
	Verbose bool // Include per-table and per-section detail
}

// Renderer writes reports to w.
type Renderer struct {
	w    io.Writer
	opts Options

	pass, fail, warn, faint *color.Color
}

// New creates a Renderer.
func New(w io.Writer, opts Options) *Renderer {
	if opts.Format == "" {
		opts.Format = FormatText
	}
	r := &Renderer{
		w:     w,
		opts:  opts,
		pass:  color.New(color.FgGreen, color.Bold),
		fail:  color.New(color.FgRed, color.Bold),
		warn:  color.New(color.FgYellow),
		faint: color.New(color.Faint),
	}
	for _, c := range []*color.Color{r.pass, r.fail, r.warn, r.faint} {
		if opts.Color {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return r
}

// Summary renders the result of a whole export scan.
func (r *Renderer) Summary(sum *scan.Summary) error {
	if r.opts.Format == FormatJSON {
		return r.json(sum)
	}

	fmt.Fprintf(r.w, "Export: %s\n", sum.Root)
	fmt.Fprintln(r.w, r.faint.Sprintf("run %s", sum.RunID))

	fmt.Fprintln(r.w)
	fmt.Fprintln(r.w, "Directory structure")
	fmt.Fprintln(r.w, r.layoutTable(sum.Layout))

	fmt.Fprintln(r.w)
	if len(sum.Files) == 0 {
		fmt.Fprintln(r.w, "No export files found")
	} else {
		fmt.Fprintln(r.w, "Files")
		fmt.Fprintln(r.w, r.filesTable(sum.Files))
		for _, f := range sum.Files {
			r.diagnostics(f.Rel, f.Diagnostics)
		}
		if r.opts.Verbose {
			for _, f := range sum.Files {
				r.detail(f)
			}
		}
	}

	fmt.Fprintln(r.w)
	failed := len(sum.Failed())
	fmt.Fprintf(r.w, "%d files, %d failed, %d cached, %s\n",
		len(sum.Files), failed, sum.Cache.Hits, sum.Duration.Round(time.Millisecond))
	if sum.Pass {
		fmt.Fprintln(r.w, r.pass.Sprint(VerdictValid))
	} else {
		fmt.Fprintln(r.w, r.fail.Sprint(VerdictIssues))
	}
	return nil
}

// File renders the result for a single file.
func (r *Renderer) File(f *scan.FileResult) error {
	if r.opts.Format == FormatJSON {
		return r.json(f)
	}

	name := f.Rel
	if name == "" {
		name = f.Path
	}
	fmt.Fprintf(r.w, "%s (%s, %s)\n", name, f.Kind, size(f.Size))
	if f.Fingerprint != "" {
		fmt.Fprintln(r.w, r.faint.Sprintf("blake3 %s", f.Fingerprint))
	}
	r.detail(f)
	r.diagnostics("", f.Diagnostics)
	fmt.Fprintln(r.w, r.status(f.Pass))
	return nil
}

func (r *Renderer) json(v any) error {
	enc := json.NewEncoder(r.w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (r *Renderer) status(pass bool) string {
	if pass {
		return r.pass.Sprint("PASS")
	}
	return r.fail.Sprint("FAIL")
}

func (r *Renderer) diagnostics(name string, diags diag.List) {
	if len(diags) == 0 {
		return
	}
	if name != "" {
		fmt.Fprintf(r.w, "\n%s\n", name)
	}
	for _, d := range diags {
		label := r.warn.Sprint("WARN ")
		if d.Severity == diag.SeverityError {
			label = r.fail.Sprint("ERROR")
		}
		fmt.Fprintf(r.w, "  %s [%s] %s\n", label, d.Code, d.Message)
	}
}

func (r *Renderer) layoutTable(entries []scan.LayoutEntry) string {
	tbl := newTable()
	tbl.AppendHeader(table.Row{"Path", "Present"})
	for _, e := range entries {
		present := r.pass.Sprint("yes")
		if !e.Exists {
			present = r.fail.Sprint("no")
		}
		tbl.AppendRow(table.Row{e.Path, present})
	}
	return tbl.Render()
}

func (r *Renderer) filesTable(files []*scan.FileResult) string {
	tbl := newTable()
	tbl.AppendHeader(table.Row{"File", "Kind", "Size", "Errors", "Warnings", "Status"})
	for _, f := range files {
		tbl.AppendRow(table.Row{
			f.Rel,
			f.Kind,
			size(f.Size),
			len(f.Diagnostics.Errors()),
			len(f.Diagnostics.Warnings()),
			r.status(f.Pass),
		})
	}
	return tbl.Render()
}

func newTable() table.Writer {
	tbl := table.NewWriter()
	tbl.SetStyle(table.StyleLight)
	tbl.Style().Options.SeparateRows = false
	tbl.Style().Options.SeparateColumns = false
	tbl.Style().Options.DrawBorder = false
	return tbl
}

func size(n int) string {
	return humanize.Bytes(uint64(n))
}
