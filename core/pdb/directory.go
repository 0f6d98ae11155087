package pdb

import (
	"fmt"

	"github.com/FocuswithJustin/exportcheck/core/binfmt"
	"github.com/FocuswithJustin/exportcheck/core/diag"
	exerrors "github.com/FocuswithJustin/exportcheck/core/errors"
)

// FormatName names the format in structural errors.
const FormatName = "export database"

// Directory row-count estimate layout: bits 13-23 of the u32 at page offset 24.
const (
	EstimateOffset = 24
	EstimateShift  = 13
	EstimateMask   = 0x7FF
	estimateExtent = EstimateOffset + 4
)

// TableSummary is one directory entry with its estimated row count.
type TableSummary struct {
	TableDescriptor
	Name          string `json:"name"`
	Known         bool   `json:"known"`
	EstimatedRows uint32 `json:"estimated_rows"`
}

// Directory is the decoded file header and table directory.
type Directory struct {
	Header      FileHeader         `json:"header"`
	NumPages    int                `json:"num_pages"` // Complete pages in the buffer
	Tables      []TableSummary     `json:"tables"`
	Types       map[TableType]bool `json:"-"`
	Diagnostics diag.List          `json:"diagnostics,omitempty"`
}

// Missing returns the required table types absent from the directory, in the
// order given.
func (d *Directory) Missing(required []TableType) []TableType {
	var missing []TableType
	for _, t := range required {
		if !d.Types[t] {
			missing = append(missing, t)
		}
	}
	return missing
}

// ReadDirectory parses the file header and table descriptors, then estimates
// each table's row count across its first..last page range.
//
// It fails only when the buffer is shorter than one page or the header's page
// size disagrees with opts; every other finding is a diagnostic.
func ReadDirectory(data []byte, opts Options) (*Directory, error) {
	pageSize := opts.pageSize()
	if len(data) < pageSize {
		return nil, exerrors.NewStructural(FormatName, -1, exerrors.ErrTooSmall,
			fmt.Sprintf("%d bytes (minimum %d for the header page)", len(data), pageSize))
	}

	r := binfmt.LE(data)
	d := &Directory{
		Header:   parseFileHeader(r),
		NumPages: len(data) / pageSize,
		Types:    make(map[TableType]bool),
	}

	if int64(d.Header.PageSize) != int64(pageSize) {
		return nil, exerrors.NewStructural(FormatName, OffsetPageSize, exerrors.ErrInvalidHeader,
			fmt.Sprintf("page size %d (expected %d)", d.Header.PageSize, pageSize))
	}

	if opts.ExpectedTableCount > 0 && int64(d.Header.TableCount) != int64(opts.ExpectedTableCount) {
		d.Diagnostics.Warnf(diag.CodeTableCount, "expected %d tables, found %d",
			opts.ExpectedTableCount, d.Header.TableCount)
	}
	if int64(d.Header.NextUnusedPage) > int64(d.NumPages) {
		d.Diagnostics.Warnf(diag.CodeNextUnused, "next unused page %d exceeds page count %d",
			d.Header.NextUnusedPage, d.NumPages)
	}

	// Descriptors must sit on the header page.
	header, _ := r.Sub(0, pageSize)
	for i := uint32(0); i < d.Header.TableCount; i++ {
		off := OffsetDescriptors + int(i)*DescriptorSize
		desc, ok := parseDescriptor(header, off)
		if !ok {
			d.Diagnostics.Warnf(diag.CodeDescriptor,
				"table descriptor %d at byte %d extends beyond the header page", i, off)
			break
		}

		if desc.First != 0 && int64(desc.First) >= int64(d.NumPages) {
			d.Diagnostics.Warnf(diag.CodeDescriptor, "table %s first page %d exceeds page count %d",
				desc.Type, desc.First, d.NumPages)
		}
		if int64(desc.Last) >= int64(d.NumPages) {
			d.Diagnostics.Warnf(diag.CodeDescriptor, "table %s last page %d exceeds page count %d",
				desc.Type, desc.Last, d.NumPages)
		}

		d.Types[desc.Type] = true
		d.Tables = append(d.Tables, TableSummary{
			TableDescriptor: desc,
			Name:            desc.Type.String(),
			Known:           desc.Type.Known(),
			EstimatedRows:   estimateTableRows(data, desc, pageSize),
		})
	}

	return d, nil
}

// estimateTableRows sums EstimateRows over first..last. Pages past the buffer
// are skipped, so the range is clamped to the last page that could be read.
func estimateTableRows(data []byte, desc TableDescriptor, pageSize int) uint32 {
	if len(data) < estimateExtent {
		return 0
	}
	maxPage := uint64(len(data)-estimateExtent) / uint64(pageSize)
	last := uint64(desc.Last)
	if last > maxPage {
		last = maxPage
	}

	var total uint32
	for page := uint64(desc.First); page <= last; page++ {
		if rows, ok := EstimateRows(data, uint32(page), pageSize); ok {
			total += rows
		}
	}
	return total
}

// EstimateRows is the directory's coarse row count for one page: bits 13-23 of
// the u32 at page offset 24. Page 0 and pages whose field lies past the buffer
// report ok=false.
func EstimateRows(data []byte, page uint32, pageSize int) (rows uint32, ok bool) {
	if page == 0 {
		return 0, false
	}
	off := uint64(page) * uint64(pageSize)
	if off+estimateExtent > uint64(len(data)) {
		return 0, false
	}
	v, ok := binfmt.LE(data).Uint32(int(off) + EstimateOffset)
	if !ok {
		return 0, false
	}
	return (v >> EstimateShift) & EstimateMask, true
}
