package pdb

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/FocuswithJustin/exportcheck/core/binfmt"
)

// Export database format constants
const (
	// PageSize is the fixed page size of export databases.
	PageSize = 4096

	// FileHeaderSize is the size of the fixed header fields on page 0.
	// The table descriptor array starts right after it.
	FileHeaderSize = 28

	// DescriptorSize is the size of one table descriptor.
	DescriptorSize = 16

	// HeapStart is the end of the data page header.
	HeapStart = 0x28

	// ExpectedTableCount is the number of tables written by current exporters.
	ExpectedTableCount = 20
)

// File header offsets (all little-endian u32)
const (
	OffsetUnknown1    = 0
	OffsetPageSize    = 4
	OffsetTableCount  = 8
	OffsetNextUnused  = 12
	OffsetUnknown2    = 16
	OffsetSequence    = 20
	OffsetUnknown3    = 24
	OffsetDescriptors = FileHeaderSize
)

// Table descriptor field offsets, relative to the descriptor
const (
	DescriptorOffsetType      = 0
	DescriptorOffsetEmpty     = 4
	DescriptorOffsetFirstPage = 8
	DescriptorOffsetLastPage  = 12
)

// Options configures the database decoders.
type Options struct {
	// PageSize is the page size every page and the header must agree on.
	PageSize int

	// ExpectedTableCount is compared against the header; 0 disables the check.
	ExpectedTableCount int
}

// DefaultOptions returns options for standard export databases.
func DefaultOptions() Options {
	return Options{
		PageSize:           PageSize,
		ExpectedTableCount: ExpectedTableCount,
	}
}

func (o Options) pageSize() int {
	if o.PageSize <= 0 {
		return PageSize
	}
	return o.PageSize
}

// TableType identifies a logical table.
type TableType uint32

// Known table types.
const (
	TableTracks           TableType = 0
	TableGenres           TableType = 1
	TableArtists          TableType = 2
	TableAlbums           TableType = 3
	TableLabels           TableType = 4
	TableKeys             TableType = 5
	TableColors           TableType = 6
	TablePlaylistTree     TableType = 7
	TablePlaylistEntries  TableType = 8
	TableHistoryPlaylists TableType = 11
	TableHistoryEntries   TableType = 12
	TableArtwork          TableType = 13
	TableColumns          TableType = 16
	TableHistory          TableType = 19
)

var tableNames = map[TableType]string{
	TableTracks:           "Tracks",
	TableGenres:           "Genres",
	TableArtists:          "Artists",
	TableAlbums:           "Albums",
	TableLabels:           "Labels",
	TableKeys:             "Keys",
	TableColors:           "Colors",
	TablePlaylistTree:     "PlaylistTree",
	TablePlaylistEntries:  "PlaylistEntries",
	TableHistoryPlaylists: "HistoryPlaylists",
	TableHistoryEntries:   "HistoryEntries",
	TableArtwork:          "Artwork",
	TableColumns:          "Columns",
	TableHistory:          "History",
}

// RequiredTables are the tables every usable export carries.
var RequiredTables = []TableType{TableTracks, TableGenres, TableArtists, TableAlbums, TableColors}

// Known reports whether t is a recognised table type.
func (t TableType) Known() bool {
	_, ok := tableNames[t]
	return ok
}

// String returns the table name, or a synthesized "Unknown<N>" label.
func (t TableType) String() string {
	if name, ok := tableNames[t]; ok {
		return name
	}
	return fmt.Sprintf("Unknown%d", uint32(t))
}

// ParseTableType accepts a table name (case-insensitive) or a decimal type number.
func ParseTableType(s string) (TableType, bool) {
	for t, name := range tableNames {
		if strings.EqualFold(name, s) {
			return t, true
		}
	}
	n, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, false
	}
	return TableType(n), true
}

// FileHeader is the fixed header on page 0. Unknown fields are kept verbatim.
type FileHeader struct {
	Unknown1       uint32 `json:"unknown1"`
	PageSize       uint32 `json:"page_size"`
	TableCount     uint32 `json:"table_count"`
	NextUnusedPage uint32 `json:"next_unused_page"`
	Unknown2       uint32 `json:"unknown2"`
	Sequence       uint32 `json:"sequence"`
	Unknown3       uint32 `json:"unknown3"`
}

// parseFileHeader reads the header fields. The caller guarantees len(data) >= FileHeaderSize.
func parseFileHeader(r binfmt.Reader) FileHeader {
	var h FileHeader
	h.Unknown1, _ = r.Uint32(OffsetUnknown1)
	h.PageSize, _ = r.Uint32(OffsetPageSize)
	h.TableCount, _ = r.Uint32(OffsetTableCount)
	h.NextUnusedPage, _ = r.Uint32(OffsetNextUnused)
	h.Unknown2, _ = r.Uint32(OffsetUnknown2)
	h.Sequence, _ = r.Uint32(OffsetSequence)
	h.Unknown3, _ = r.Uint32(OffsetUnknown3)
	return h
}

// TableDescriptor is one directory entry on page 0.
type TableDescriptor struct {
	Type           TableType `json:"type"`
	EmptyCandidate uint32    `json:"empty_candidate"`
	First          uint32    `json:"first_page"`
	Last           uint32    `json:"last_page"`
}

// parseDescriptor reads the descriptor at off, reporting false if it does not fit.
func parseDescriptor(r binfmt.Reader, off int) (TableDescriptor, bool) {
	d, ok := r.Sub(off, DescriptorSize)
	if !ok {
		return TableDescriptor{}, false
	}
	typ, _ := d.Uint32(DescriptorOffsetType)
	empty, _ := d.Uint32(DescriptorOffsetEmpty)
	first, _ := d.Uint32(DescriptorOffsetFirstPage)
	last, _ := d.Uint32(DescriptorOffsetLastPage)
	return TableDescriptor{
		Type:           TableType(typ),
		EmptyCandidate: empty,
		First:          first,
		Last:           last,
	}, true
}
