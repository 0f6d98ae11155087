// Package binfmt provides a bounds-checked view over an immutable byte slice.
//
// Every accessor takes an absolute offset and reports whether the field fit
// inside the buffer. Nothing is copied and nothing panics on short input, so
// decoders built on it stay total: a field that does not fit is simply absent.
//
// The byte order is fixed per Reader. The export database is little-endian and
// the analysis container is big-endian; callers pick explicitly.
package binfmt

import "encoding/binary"

// Reader is a read-only view over buf with a fixed byte order.
type Reader struct {
	buf   []byte
	order binary.ByteOrder
}

// LE returns a little-endian reader over buf.
func LE(buf []byte) Reader {
	return Reader{buf: buf, order: binary.LittleEndian}
}

// BE returns a big-endian reader over buf.
func BE(buf []byte) Reader {
	return Reader{buf: buf, order: binary.BigEndian}
}

// Len returns the length of the underlying buffer.
func (r Reader) Len() int {
	return len(r.buf)
}

// Fits reports whether n bytes starting at off lie inside the buffer.
func (r Reader) Fits(off, n int) bool {
	return off >= 0 && n >= 0 && off <= len(r.buf) && n <= len(r.buf)-off
}

// Byte returns the byte at off.
func (r Reader) Byte(off int) (byte, bool) {
	if !r.Fits(off, 1) {
		return 0, false
	}
	return r.buf[off], true
}

// Uint16 returns the 2-byte field at off.
func (r Reader) Uint16(off int) (uint16, bool) {
	if !r.Fits(off, 2) {
		return 0, false
	}
	return r.order.Uint16(r.buf[off:]), true
}

// Uint24 returns the 3-byte field at off widened to 32 bits.
func (r Reader) Uint24(off int) (uint32, bool) {
	if !r.Fits(off, 3) {
		return 0, false
	}
	b := r.buf[off : off+3]
	if r.order == binary.BigEndian {
		return uint32(b[0])<<16 | uint32(b[1])<<8 | uint32(b[2]), true
	}
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16, true
}

// Uint32 returns the 4-byte field at off.
func (r Reader) Uint32(off int) (uint32, bool) {
	if !r.Fits(off, 4) {
		return 0, false
	}
	return r.order.Uint32(r.buf[off:]), true
}

// Slice returns the n bytes at off without copying.
func (r Reader) Slice(off, n int) ([]byte, bool) {
	if !r.Fits(off, n) {
		return nil, false
	}
	return r.buf[off : off+n : off+n], true
}

// Sub returns a reader over the n bytes at off with the same byte order.
// If the range does not fit, the returned reader is empty and ok is false.
func (r Reader) Sub(off, n int) (Reader, bool) {
	b, ok := r.Slice(off, n)
	return Reader{buf: b, order: r.order}, ok
}

// IsZero reports whether every byte of the buffer is zero.
func (r Reader) IsZero() bool {
	for _, b := range r.buf {
		if b != 0 {
			return false
		}
	}
	return true
}
