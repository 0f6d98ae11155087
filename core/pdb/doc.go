// Package pdb decodes the paged export database written to DJ USB media.
//
// The database is little-endian and split into fixed-size pages (4096 bytes).
// Page 0 holds the file header and the table directory; every other page is
// either unused (all zero bytes), a data page or a non-data (index) page.
//
// # File Header
//
//	Offset  Size  Field
//	0       4     unknown (preserved)
//	4       4     page size
//	8       4     table count
//	12      4     next unused page
//	16      4     unknown (preserved)
//	20      4     sequence
//	24      4     unknown (preserved)
//	28      16*N  table descriptors: type, empty candidate, first page, last page
//
// # Data Page Header
//
//	Offset  Size  Field
//	4       4     page index
//	8       4     page type (table type)
//	12      4     next page
//	24      3     packed counts: low 11 bits rows, high 13 bits offset entries
//	27      1     flags (bit 6 set on non-data pages)
//	28      2     free size
//	30      2     used size
//
// # Row Groups
//
// Rows are tracked in groups of 16. Group g owns the 36-byte footer block at
// page_size - (g+1)*36: sixteen 2-byte row offsets followed by the 2-byte
// presence bitmask (block offset 32) and the 2-byte pad bitmask (offset 34).
// In well-formed pages both bitmasks are identical copies.
//
// Two readings of the row count coexist. DecodePage takes the low 11 bits of
// the 3-byte field; the directory's estimate (EstimateRows) takes bits 13-23
// of a 4-byte read at the same offset. The two readings may disagree.
//
// # Usage
//
//	db, err := pdb.Inspect(data, pdb.DefaultOptions())
//	if err != nil {
//	    // fatal: too small, or wrong page size
//	}
//	for _, t := range db.Directory.Tables {
//	    fmt.Printf("%-16s pages %d-%d ~%d rows\n", t.Name, t.First, t.Last, t.EstimatedRows)
//	}
//	if !db.Diagnostics.Pass() {
//	    // row-group bitmaps disagree
//	}
package pdb
