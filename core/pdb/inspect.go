package pdb

import (
	"github.com/FocuswithJustin/exportcheck/core/diag"
)

// PageStats counts pages by kind.
type PageStats struct {
	Total int `json:"total"`
	Empty int `json:"empty"`
	Data  int `json:"data"`
	Other int `json:"other"`
	Rows  int `json:"rows"` // Sum of NumRows over data pages
}

// DataPage is a decoded data page with its row-group footers.
type DataPage struct {
	Page      Page           `json:"page"`
	RowGroups RowGroupReport `json:"row_groups"`
}

// Database is the result of inspecting a whole export database.
type Database struct {
	Directory   *Directory `json:"directory"`
	Pages       []DataPage `json:"pages"`
	Stats       PageStats  `json:"stats"`
	Diagnostics diag.List  `json:"diagnostics,omitempty"`
}

// Inspect decodes the directory and then every complete page after page 0.
// Unused and non-data pages are counted and skipped. Data pages are checked
// for row-group bitmap consistency (errors) and for header oddities and
// offset ratios other than 4.0 (warnings).
func Inspect(data []byte, opts Options) (*Database, error) {
	dir, err := ReadDirectory(data, opts)
	if err != nil {
		return nil, err
	}

	pageSize := opts.pageSize()
	db := &Database{Directory: dir, Stats: PageStats{Total: dir.NumPages}}
	db.Diagnostics.Append(dir.Diagnostics)

	if rem := len(data) % pageSize; rem != 0 {
		db.Diagnostics.Warnf(diag.CodeAlignment, "file size %d is not a multiple of page size %d (%d trailing bytes ignored)",
			len(data), pageSize, rem)
	}

	for n := 1; n < dir.NumPages; n++ {
		buf := data[n*pageSize : (n+1)*pageSize : (n+1)*pageSize]
		p := DecodePage(buf, uint32(n))
		switch {
		case p.Empty:
			db.Stats.Empty++
			continue
		case !p.IsData:
			db.Stats.Other++
			continue
		}

		db.Stats.Data++
		db.Stats.Rows += int(p.NumRows)
		db.Pages = append(db.Pages, checkDataPage(p, pageSize, &db.Diagnostics))
	}

	return db, nil
}

func checkDataPage(p Page, pageSize int, diags *diag.List) DataPage {
	if p.PageIndex != p.Number {
		diags.Warnf(diag.CodePageIndex, "page %d: stored page index %d does not match position",
			p.Number, p.PageIndex)
	}

	switch p.Flags {
	case FlagsDataEmpty, FlagsData, FlagsDataTrack:
	default:
		diags.Warnf(diag.CodePageFlags, "page %d: unexpected page flags 0x%02X", p.Number, p.Flags)
	}

	if maxHeap := pageSize - HeapStart; int(p.UsedSize) > maxHeap {
		diags.Warnf(diag.CodeHeapOverflow, "page %d: used size %d exceeds max heap %d",
			p.Number, p.UsedSize, maxHeap)
	}

	if ratio, ok := p.OffsetRatio(); ok && ratio != CanonicalOffsetRatio {
		diags.Warnf(diag.CodeOffsetRatio, "page %d: offset ratio %.1f (expected %.1f)",
			p.Number, ratio, CanonicalOffsetRatio)
	}

	groups := CheckRowGroups(p, pageSize)
	for _, g := range groups.Groups {
		if !g.Consistent {
			diags.Errorf(diag.CodeBitmapMismatch, "page %d group %d: presence (%#x) != pad (%#x)",
				p.Number, g.Index, g.Presence, g.Pad)
		}
	}
	if groups.Overrun {
		diags.Warnf(diag.CodeRowGroupOverrun, "page %d: %d rows need %d row groups, only %d fit in the page footer",
			p.Number, p.NumRows, groups.Expected, len(groups.Groups))
	}

	return DataPage{Page: p, RowGroups: groups}
}
