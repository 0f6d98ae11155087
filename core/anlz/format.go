package anlz

import "fmt"

// Analysis container format constants
const (
	// ContainerTag is the literal every analysis file starts with.
	ContainerTag = "PMAI"

	// MinHeaderSize is the smallest buffer that can hold a container header.
	MinHeaderSize = 28

	// SectionHeaderSize is the tag, header length and body length of a section.
	SectionHeaderSize = 12
)

// Container header offsets (big-endian u32)
const (
	OffsetHeaderLen = 4
	OffsetTotalLen  = 8
)

// Section field offsets, relative to the section start
const (
	SectionOffsetHeaderLen = 4
	SectionOffsetLength    = 8

	PathOffsetUnits     = 12 // Path length in UTF-16 code units (4 bytes)
	PathOffsetText      = 16
	BeatOffsetCount     = 20 // Beat count (4 bytes)
	WaveformOffsetCount = 12 // Entry count (4 bytes)
	CueOffsetType       = 12 // 0 = memory cues, otherwise hot cues (4 bytes)
	CueOffsetCount      = 18 // Cue count (2 bytes)
)

// Expected waveform entry counts.
const (
	PreviewEntries = 400
	DetailEntries  = 1200
)

// Options configures the section decoder.
type Options struct {
	// PreviewEntries is the entry count expected in PWAV sections; 0 disables the check.
	PreviewEntries uint32
	// DetailEntries is the entry count expected in PWV4 sections; 0 disables the check.
	DetailEntries uint32
}

// DefaultOptions returns options for standard analysis files.
func DefaultOptions() Options {
	return Options{
		PreviewEntries: PreviewEntries,
		DetailEntries:  DetailEntries,
	}
}

// Tag is a 4-byte section tag.
type Tag [4]byte

// Known section tags.
var (
	TagPath          = Tag{'P', 'P', 'T', 'H'}
	TagBeatGrid      = Tag{'P', 'Q', 'T', 'Z'}
	TagPreview       = Tag{'P', 'W', 'A', 'V'}
	TagWaveform3     = Tag{'P', 'W', 'V', '3'}
	TagColorDetail   = Tag{'P', 'W', 'V', '4'}
	TagColorWaveform = Tag{'P', 'W', 'V', '5'}
	TagCues          = Tag{'P', 'C', 'O', 'B'}
	TagCuesExtended  = Tag{'P', 'C', 'O', '2'}
)

// Required section sets per analysis file variant.
var (
	RequiredDAT = []Tag{TagPath, TagBeatGrid, TagPreview, TagColorWaveform}
	RequiredEXT = []Tag{TagPath, TagBeatGrid, TagPreview, TagWaveform3, TagColorDetail, TagColorWaveform}
)

// ParseTag converts a 4-character string into a Tag. Shorter strings are
// zero-padded and longer ones truncated.
func ParseTag(s string) Tag {
	var t Tag
	copy(t[:], s)
	return t
}

// String returns the tag text, or its hex form when it is not printable ASCII.
func (t Tag) String() string {
	for _, b := range t {
		if b < 0x20 || b > 0x7E {
			return fmt.Sprintf("0x%02X%02X%02X%02X", t[0], t[1], t[2], t[3])
		}
	}
	return string(t[:])
}

// MarshalText implements encoding.TextMarshaler.
func (t Tag) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// SectionKind groups tags by how their payload is summarised.
type SectionKind int

const (
	KindUnknown SectionKind = iota
	KindPath
	KindBeatGrid
	KindWaveform
	KindCueList
)

// KindOf maps a tag to its payload kind. Unrecognised tags map to KindUnknown.
func KindOf(tag Tag) SectionKind {
	switch tag {
	case TagPath:
		return KindPath
	case TagBeatGrid:
		return KindBeatGrid
	case TagPreview, TagWaveform3, TagColorDetail, TagColorWaveform:
		return KindWaveform
	case TagCues, TagCuesExtended:
		return KindCueList
	default:
		return KindUnknown
	}
}

func (k SectionKind) String() string {
	switch k {
	case KindPath:
		return "path"
	case KindBeatGrid:
		return "beat_grid"
	case KindWaveform:
		return "waveform"
	case KindCueList:
		return "cue_list"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (k SectionKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// expectedEntries returns the entry count a waveform tag must carry, or 0 when
// the tag is unconstrained.
func (o Options) expectedEntries(tag Tag) uint32 {
	switch tag {
	case TagPreview:
		return o.PreviewEntries
	case TagColorDetail:
		return o.DetailEntries
	default:
		return 0
	}
}
