package testfixture

import (
	"encoding/binary"

	"golang.org/x/text/encoding/unicode"
)

// Section is one tag/length/value record.
type Section struct {
	Tag       string
	HeaderLen uint32
	Payload   []byte // Bytes after the 12-byte record header

	// LengthOverride replaces the written body length when non-zero.
	LengthOverride uint32
	// ZeroLength writes a body length of 0.
	ZeroLength bool
}

// Len returns the number of bytes the section occupies.
func (s Section) Len() int {
	return 12 + len(s.Payload)
}

// Bytes serialises the section.
func (s Section) Bytes() []byte {
	be := binary.BigEndian
	out := make([]byte, 12, s.Len())
	copy(out, padTag(s.Tag))
	hdr := s.HeaderLen
	if hdr == 0 {
		hdr = 12
	}
	be.PutUint32(out[4:], hdr)
	length := uint32(s.Len())
	switch {
	case s.ZeroLength:
		length = 0
	case s.LengthOverride != 0:
		length = s.LengthOverride
	}
	be.PutUint32(out[8:], length)
	return append(out, s.Payload...)
}

func padTag(tag string) []byte {
	b := make([]byte, 4)
	copy(b, tag)
	return b
}

// PathSection builds a PPTH section: code-unit count at +12, UTF-16BE text at +16.
func PathSection(path string) Section {
	enc := unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM).NewEncoder()
	text, err := enc.Bytes([]byte(path))
	if err != nil {
		panic(err)
	}
	payload := make([]byte, 4, 4+len(text)+2)
	binary.BigEndian.PutUint32(payload, uint32(len(text)/2))
	payload = append(payload, text...)
	payload = append(payload, 0, 0)
	return Section{Tag: "PPTH", HeaderLen: 16, Payload: payload}
}

// RawPathSection builds a PPTH section with a raw code-unit count and raw text bytes.
func RawPathSection(units uint32, text []byte) Section {
	payload := make([]byte, 4, 4+len(text))
	binary.BigEndian.PutUint32(payload, units)
	return Section{Tag: "PPTH", HeaderLen: 16, Payload: append(payload, text...)}
}

// BeatGridSection builds a PQTZ section with the beat count at +20 and 8 bytes per beat.
func BeatGridSection(beats uint32) Section {
	payload := make([]byte, 12+int(beats)*8)
	binary.BigEndian.PutUint32(payload[4:], 0x00080000)
	binary.BigEndian.PutUint32(payload[8:], beats)
	for i := 0; i < int(beats); i++ {
		off := 12 + i*8
		binary.BigEndian.PutUint16(payload[off:], uint16(i%4+1))
		binary.BigEndian.PutUint16(payload[off+2:], 12800)
		binary.BigEndian.PutUint32(payload[off+4:], uint32(i*468))
	}
	return Section{Tag: "PQTZ", HeaderLen: 24, Payload: payload}
}

// WaveformSection builds a waveform section with the entry count at +12.
// entrySize bytes are written per entry.
func WaveformSection(tag string, entries uint32, entrySize int) Section {
	payload := make([]byte, 8+int(entries)*entrySize)
	binary.BigEndian.PutUint32(payload, entries)
	binary.BigEndian.PutUint32(payload[4:], 0x00960000)
	return Section{Tag: tag, HeaderLen: 20, Payload: payload}
}

// CueSection builds a PCOB/PCO2 section: type at +12, count at +18.
func CueSection(tag string, hot bool, count uint16) Section {
	payload := make([]byte, 8)
	if hot {
		binary.BigEndian.PutUint32(payload, 1)
	}
	binary.BigEndian.PutUint16(payload[6:], count)
	return Section{Tag: tag, HeaderLen: 24, Payload: payload}
}

// RawSection builds a section with an opaque payload.
func RawSection(tag string, payload []byte) Section {
	return Section{Tag: tag, HeaderLen: 12, Payload: payload}
}

// Container describes a whole analysis file.
type Container struct {
	Tag       string // Defaults to "PMAI"
	HeaderLen uint32 // Defaults to 24, so sections start at byte 28
	Sections  []Section

	// DeclaredLen replaces the written total length when non-zero.
	DeclaredLen uint32
	// Terminator appends a zero tag after the sections.
	Terminator bool
	// Trailing bytes appended after everything else.
	Trailing []byte
}

// Bytes serialises the container.
func (c Container) Bytes() []byte {
	tag := c.Tag
	if tag == "" {
		tag = "PMAI"
	}
	hdr := c.HeaderLen
	if hdr == 0 {
		hdr = 24
	}
	headerBytes := 4 + int(hdr)
	if headerBytes < 12 {
		headerBytes = 12
	}

	out := make([]byte, headerBytes)
	copy(out, padTag(tag))
	binary.BigEndian.PutUint32(out[4:], hdr)
	for _, s := range c.Sections {
		out = append(out, s.Bytes()...)
	}
	if c.Terminator {
		out = append(out, make([]byte, 12)...)
	}
	out = append(out, c.Trailing...)

	total := uint32(len(out))
	if c.DeclaredLen != 0 {
		total = c.DeclaredLen
	}
	binary.BigEndian.PutUint32(out[8:], total)
	return out
}

// DATSections returns the sections a well-formed .DAT file carries.
func DATSections() []Section {
	return []Section{
		PathSection("/Contents/Artist/Album/01 Track.mp3"),
		BeatGridSection(8),
		WaveformSection("PWAV", 400, 1),
		WaveformSection("PWV5", 600, 2),
		CueSection("PCOB", true, 0),
		CueSection("PCOB", false, 0),
	}
}

// EXTSections returns the sections a well-formed .EXT file carries.
func EXTSections() []Section {
	return []Section{
		PathSection("/Contents/Artist/Album/01 Track.mp3"),
		BeatGridSection(8),
		WaveformSection("PWAV", 400, 1),
		WaveformSection("PWV3", 600, 1),
		WaveformSection("PWV4", 1200, 6),
		WaveformSection("PWV5", 600, 2),
		CueSection("PCO2", true, 2),
	}
}
