// Package testfixture builds synthetic export files for tests.
//
// The builders write raw bytes with their own offsets instead of importing the
// decoders, so a decoder bug cannot hide behind a matching builder bug.
package testfixture

import "encoding/binary"

// DefaultPageSize matches the export database page size.
const DefaultPageSize = 4096

// Table is one table descriptor.
type Table struct {
	Type        uint32
	Empty       uint32
	First, Last uint32
}

// DataPage describes one non-empty page.
type DataPage struct {
	Type     uint32
	Next     uint32
	Flags    byte
	Rows     uint16
	Offsets  uint16
	UsedSize uint16

	// IndexOverride is stored as the page index when non-zero; otherwise the
	// page's position is stored.
	IndexOverride uint32

	// Presence and Pad override the per-group bitmasks. When nil, each group
	// gets a mask with one bit per row it holds and Pad copies Presence.
	Presence []uint16
	Pad      []uint16

	// Counts overrides the 24-bit packed field at offset 0x18 when non-zero,
	// for tests that need the two row-count readings to diverge.
	Counts uint32
}

// NewDataPage returns a well-formed data page with the canonical 4:1 offset ratio.
func NewDataPage(tableType uint32, rows uint16) DataPage {
	return DataPage{
		Type:    tableType,
		Next:    0xFFFFFFFF,
		Flags:   0x24,
		Rows:    rows,
		Offsets: rows * 4,
	}
}

// Database describes a whole export database.
type Database struct {
	PageSize int
	NumPages int

	// TableCount is written to the header when non-zero; otherwise len(Tables).
	TableCount     uint32
	NextUnusedPage uint32
	Sequence       uint32
	Tables         []Table
	Pages          map[int]DataPage

	// Trailing bytes appended after the last page.
	Trailing []byte
}

// RequiredTables returns descriptors for the five tables every export needs,
// all pointing at page 1.
func RequiredTables() []Table {
	types := []uint32{0, 1, 2, 3, 6}
	tables := make([]Table, len(types))
	for i, t := range types {
		tables[i] = Table{Type: t, First: 1, Last: 1}
	}
	return tables
}

// Bytes serialises the database.
func (db Database) Bytes() []byte {
	pageSize := db.PageSize
	if pageSize == 0 {
		pageSize = DefaultPageSize
	}
	numPages := db.NumPages
	for n := range db.Pages {
		if n+1 > numPages {
			numPages = n + 1
		}
	}
	if numPages == 0 {
		numPages = 1
	}

	data := make([]byte, numPages*pageSize, numPages*pageSize+len(db.Trailing))
	le := binary.LittleEndian

	tableCount := db.TableCount
	if tableCount == 0 {
		tableCount = uint32(len(db.Tables))
	}
	next := db.NextUnusedPage
	if next == 0 {
		next = uint32(numPages)
	}
	le.PutUint32(data[4:], uint32(pageSize))
	le.PutUint32(data[8:], tableCount)
	le.PutUint32(data[12:], next)
	le.PutUint32(data[20:], db.Sequence)
	for i, t := range db.Tables {
		off := 28 + i*16
		if off+16 > pageSize {
			break
		}
		le.PutUint32(data[off:], t.Type)
		le.PutUint32(data[off+4:], t.Empty)
		le.PutUint32(data[off+8:], t.First)
		le.PutUint32(data[off+12:], t.Last)
	}

	for n, p := range db.Pages {
		writeDataPage(data[n*pageSize:(n+1)*pageSize], uint32(n), p)
	}

	return append(data, db.Trailing...)
}

func writeDataPage(page []byte, number uint32, p DataPage) {
	le := binary.LittleEndian
	pageSize := len(page)

	index := number
	if p.IndexOverride != 0 {
		index = p.IndexOverride
	}
	le.PutUint32(page[4:], index)
	le.PutUint32(page[8:], p.Type)
	le.PutUint32(page[12:], p.Next)
	le.PutUint32(page[16:], 1)

	packed := uint32(p.Rows&0x7FF) | uint32(p.Offsets)<<11
	if p.Counts != 0 {
		packed = p.Counts
	}
	page[0x18] = byte(packed)
	page[0x19] = byte(packed >> 8)
	page[0x1A] = byte(packed >> 16)
	page[0x1B] = p.Flags
	le.PutUint16(page[30:], p.UsedSize)

	groups := 1
	if p.Rows > 0 {
		groups = (int(p.Rows) + 15) / 16
	}
	for g := 0; g < groups; g++ {
		base := pageSize - (g+1)*36
		if base < 0x28 {
			break
		}
		presence := groupMask(p.Rows, g)
		if g < len(p.Presence) {
			presence = p.Presence[g]
		}
		pad := presence
		if g < len(p.Pad) {
			pad = p.Pad[g]
		}
		for r := 0; r < 16; r++ {
			if presence&(1<<r) != 0 {
				le.PutUint16(page[base+(15-r)*2:], uint16(0x28+g*16+r))
			}
		}
		le.PutUint16(page[base+32:], presence)
		le.PutUint16(page[base+34:], pad)
	}
}

func groupMask(rows uint16, g int) uint16 {
	n := int(rows) - g*16
	if n <= 0 {
		return 0
	}
	if n >= 16 {
		return 0xFFFF
	}
	return uint16(1<<n - 1)
}
