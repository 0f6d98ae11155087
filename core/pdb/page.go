package pdb

import (
	"fmt"

	"github.com/FocuswithJustin/exportcheck/core/binfmt"
)

// Data page header offsets
const (
	PageOffsetIndex    = 4    // Page index (4 bytes)
	PageOffsetType     = 8    // Table type (4 bytes)
	PageOffsetNext     = 12   // Next page in the table chain (4 bytes)
	PageOffsetCounts   = 0x18 // Packed row/offset counts (3 bytes)
	PageOffsetFlags    = 0x1B // Page flags (1 byte)
	PageOffsetFreeSize = 28   // Free heap bytes (2 bytes)
	PageOffsetUsedSize = 30   // Used heap bytes (2 bytes)
)

// Page flag bits and packed-count layout
const (
	FlagNonData      = 0x40  // Set on index and other non-data pages
	RowCountMask     = 0x7FF // Low 11 bits of the packed counts
	OffsetCountShift = 11    // Offset-table entries occupy the bits above the row count
)

// Page flag values seen on data pages.
const (
	FlagsDataEmpty = 0x00
	FlagsData      = 0x24
	FlagsDataTrack = 0x34
	FlagsIndex     = 0x64
)

// Page is one decoded page. All-zero pages decode to the Empty variant with
// every other field zero.
type Page struct {
	Number uint32 `json:"number"` // Position in the file
	Empty  bool   `json:"empty"`

	PageIndex  uint32    `json:"page_index"` // Index stored in the page header
	Type       TableType `json:"type"`
	NextPage   uint32    `json:"next_page"`
	Flags      byte      `json:"flags"`
	IsData     bool      `json:"is_data"`
	NumRows    uint16    `json:"num_rows"`
	NumOffsets uint16    `json:"num_offsets"`
	FreeSize   uint16    `json:"free_size"`
	UsedSize   uint16    `json:"used_size"`

	Raw []byte `json:"-"`
}

// DecodePage interprets one page buffer. It never fails: fields that do not fit
// in a short buffer read as zero, and nonsensical values pass through untouched.
func DecodePage(buf []byte, number uint32) Page {
	r := binfmt.LE(buf)
	if r.IsZero() {
		return Page{Number: number, Empty: true, Raw: buf}
	}

	p := Page{Number: number, Raw: buf}
	p.PageIndex, _ = r.Uint32(PageOffsetIndex)
	typ, _ := r.Uint32(PageOffsetType)
	p.Type = TableType(typ)
	p.NextPage, _ = r.Uint32(PageOffsetNext)
	p.Flags, _ = r.Byte(PageOffsetFlags)
	p.IsData = p.Flags&FlagNonData == 0

	packed, _ := r.Uint24(PageOffsetCounts)
	p.NumRows = uint16(packed & RowCountMask)
	p.NumOffsets = uint16(packed >> OffsetCountShift)

	p.FreeSize, _ = r.Uint16(PageOffsetFreeSize)
	p.UsedSize, _ = r.Uint16(PageOffsetUsedSize)
	return p
}

// OffsetRatio returns NumOffsets/NumRows. ok is false when the page has no rows.
func (p Page) OffsetRatio() (ratio float64, ok bool) {
	if p.NumRows == 0 {
		return 0, false
	}
	return float64(p.NumOffsets) / float64(p.NumRows), true
}

func (p Page) String() string {
	if p.Empty {
		return fmt.Sprintf("Page{%d empty}", p.Number)
	}
	kind := "data"
	if !p.IsData {
		kind = "other"
	}
	return fmt.Sprintf("Page{%d %s, type=%s, rows=%d, offsets=%d, flags=0x%02x}",
		p.Number, kind, p.Type, p.NumRows, p.NumOffsets, p.Flags)
}
