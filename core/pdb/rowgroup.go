package pdb

import "github.com/FocuswithJustin/exportcheck/core/binfmt"

// Row group footer layout
const (
	RowGroupSize         = 36 // Bytes per group footer block
	RowsPerGroup         = 16
	GroupOffsetPresence  = 32 // Presence bitmask within the block (2 bytes)
	GroupOffsetPad       = 34 // Pad bitmask within the block (2 bytes)
	CanonicalOffsetRatio = 4.0
)

// RowGroup is the footer descriptor of one group of up to 16 rows.
type RowGroup struct {
	Index      int    `json:"index"`
	Offset     int    `json:"offset"` // Block start within the page
	Presence   uint16 `json:"presence"`
	Pad        uint16 `json:"pad"`
	Consistent bool   `json:"consistent"`
}

// RowGroupReport holds every group read from one page.
type RowGroupReport struct {
	Expected int        `json:"expected"`
	Groups   []RowGroup `json:"groups"`
	// Overrun is set when a block would overlap the page header; the
	// remaining groups were not read.
	Overrun bool `json:"overrun,omitempty"`
}

// Consistent reports whether every group read has presence == pad.
func (r RowGroupReport) Consistent() bool {
	for _, g := range r.Groups {
		if !g.Consistent {
			return false
		}
	}
	return true
}

// NumRowGroups returns max(1, ceil(numRows/16)). An empty page still carries
// one group.
func NumRowGroups(numRows uint16) int {
	if numRows == 0 {
		return 1
	}
	return (int(numRows) + RowsPerGroup - 1) / RowsPerGroup
}

// CheckRowGroups reads each group footer of a data page. Group g lives at
// pageSize - (g+1)*36.
func CheckRowGroups(p Page, pageSize int) RowGroupReport {
	r := binfmt.LE(p.Raw)
	report := RowGroupReport{Expected: NumRowGroups(p.NumRows)}

	for g := 0; g < report.Expected; g++ {
		base := pageSize - (g+1)*RowGroupSize
		if base < HeapStart {
			report.Overrun = true
			break
		}
		presence, ok1 := r.Uint16(base + GroupOffsetPresence)
		pad, ok2 := r.Uint16(base + GroupOffsetPad)
		if !ok1 || !ok2 {
			report.Overrun = true
			break
		}
		report.Groups = append(report.Groups, RowGroup{
			Index:      g,
			Offset:     base,
			Presence:   presence,
			Pad:        pad,
			Consistent: presence == pad,
		})
	}

	return report
}
