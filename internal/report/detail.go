package report

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/FocuswithJustin/exportcheck/core/anlz"
	"github.com/FocuswithJustin/exportcheck/core/pdb"
	"github.com/FocuswithJustin/exportcheck/internal/device"
	"github.com/FocuswithJustin/exportcheck/internal/scan"
)

// detail renders whatever decoded value the result carries.
func (r *Renderer) detail(f *scan.FileResult) {
	switch {
	case f.Database != nil:
		r.database(f.Database)
	case f.Container != nil:
		r.container(f.Container)
	case f.Setting != nil:
		r.setting(f.Setting)
	case f.Profile != nil:
		r.profile(f.Profile)
	}
}

func (r *Renderer) database(db *pdb.Database) {
	h := db.Directory.Header
	fmt.Fprintf(r.w, "page size %d, %d pages, %d tables (next unused page %d)\n",
		h.PageSize, db.Directory.NumPages, h.TableCount, h.NextUnusedPage)

	tbl := newTable()
	tbl.AppendHeader(table.Row{"Table", "Type", "First", "Last", "Rows"})
	for _, t := range db.Directory.Tables {
		tbl.AppendRow(table.Row{t.Name, uint32(t.Type), t.First, t.Last, fmt.Sprintf("~%d", t.EstimatedRows)})
	}
	fmt.Fprintln(r.w, tbl.Render())

	s := db.Stats
	fmt.Fprintf(r.w, "pages: %d data, %d empty, %d other; %d rows on data pages\n",
		s.Data, s.Empty, s.Other, s.Rows)
}

func (r *Renderer) container(c *anlz.Container) {
	fmt.Fprintf(r.w, "header %d bytes, declared size %d, actual %d\n", c.HeaderLen, c.DeclaredLen, c.Size)

	tbl := newTable()
	tbl.AppendHeader(table.Row{"Offset", "Tag", "Kind", "Length", "Summary"})
	for _, s := range c.Sections {
		tbl.AppendRow(table.Row{s.Offset, s.Tag.String(), s.Kind.String(), s.Length, s.Summary()})
	}
	fmt.Fprintln(r.w, tbl.Render())

	switch {
	case c.Terminated:
		fmt.Fprintln(r.w, r.faint.Sprint("stopped at terminator"))
	case c.Truncated:
		fmt.Fprintln(r.w, r.warn.Sprint("stopped at truncated section"))
	}
}

func (r *Renderer) setting(s *device.Setting) {
	tbl := newTable()
	tbl.AppendRows([]table.Row{
		{"Size header", fmt.Sprintf("0x%X", s.HeaderSize)},
		{"Brand", s.Brand},
		{"Application", s.Application},
		{"Version", s.Version},
		{"Marker", fmt.Sprintf("0x%X", s.Marker)},
		{"Magic", fmt.Sprintf("0x%08X", s.Magic)},
	})
	fmt.Fprintln(r.w, tbl.Render())
}

func (r *Renderer) profile(p *device.Profile) {
	padding := "clean"
	if !p.PaddingClean {
		padding = r.warn.Sprint("non-zero")
	}
	fmt.Fprintf(r.w, "profile name %q, padding %s\n", p.Name, padding)
}
