package anlz

import (
	"fmt"

	"github.com/FocuswithJustin/exportcheck/core/binfmt"
	exerrors "github.com/FocuswithJustin/exportcheck/core/errors"
)

// Payload is the decoded synopsis of one section.
type Payload interface {
	Summary() string
}

// PathPayload is the track path of a PPTH section.
type PathPayload struct {
	Units uint32 `json:"units"` // Declared length in UTF-16 code units
	Path  string `json:"path,omitempty"`
	Err   error  `json:"-"`
}

func (p PathPayload) Summary() string {
	if p.Err != nil {
		return fmt.Sprintf("path_len=%d", p.Units)
	}
	return fmt.Sprintf("path='%s'", displayPath(p.Path))
}

// BeatGridPayload is the beat count of a PQTZ section.
type BeatGridPayload struct {
	Beats uint32 `json:"beats"`
}

func (p BeatGridPayload) Summary() string {
	return fmt.Sprintf("beats=%d", p.Beats)
}

// WaveformPayload is the entry count of a waveform section.
type WaveformPayload struct {
	Entries  uint32 `json:"entries"`
	Expected uint32 `json:"expected,omitempty"` // 0 when unconstrained
}

// Deviates reports whether the entry count differs from a constrained expectation.
func (p WaveformPayload) Deviates() bool {
	return p.Expected != 0 && p.Entries != p.Expected
}

func (p WaveformPayload) Summary() string {
	if p.Deviates() {
		return fmt.Sprintf("entries=%d (expected %d)", p.Entries, p.Expected)
	}
	return fmt.Sprintf("entries=%d", p.Entries)
}

// CuePayload describes a PCOB/PCO2 cue list.
type CuePayload struct {
	Hot   bool   `json:"hot"`
	Count uint16 `json:"count"`
}

func (p CuePayload) Summary() string {
	kind := "memory"
	if p.Hot {
		kind = "hot"
	}
	return fmt.Sprintf("type=%s, count=%d", kind, p.Count)
}

// RawPayload is an uninterpreted section, recorded by size only.
type RawPayload struct {
	Size uint32 `json:"size"`
}

func (p RawPayload) Summary() string {
	return fmt.Sprintf("size=%d", p.Size)
}

// ShortPayload marks a known section too small to hold its synopsis fields.
type ShortPayload struct {
	Need int `json:"need"`
	Have int `json:"have"`
}

func (p ShortPayload) Summary() string {
	return "short payload"
}

// Section is one tag/length/value record.
type Section struct {
	Offset    int         `json:"offset"`
	Tag       Tag         `json:"tag"`
	HeaderLen uint32      `json:"header_len"`
	Length    uint32      `json:"length"` // Total bytes including the section header
	Kind      SectionKind `json:"kind"`
	Payload   Payload     `json:"payload"`
}

// End returns the offset just past the section.
func (s Section) End() int {
	return s.Offset + int(s.Length)
}

// Summary returns the payload synopsis.
func (s Section) Summary() string {
	if s.Payload == nil {
		return ""
	}
	return s.Payload.Summary()
}

func (s Section) String() string {
	return fmt.Sprintf("%s: size=%6d %s", s.Tag, s.Length, s.Summary())
}

// decodePayload summarises one section. r covers exactly the section's
// declared extent, so no read can reach the next section.
func decodePayload(r binfmt.Reader, tag Tag, opts Options) Payload {
	switch KindOf(tag) {
	case KindPath:
		return decodePathPayload(r)

	case KindBeatGrid:
		beats, ok := r.Uint32(BeatOffsetCount)
		if !ok {
			return ShortPayload{Need: BeatOffsetCount + 4, Have: r.Len()}
		}
		return BeatGridPayload{Beats: beats}

	case KindWaveform:
		entries, ok := r.Uint32(WaveformOffsetCount)
		if !ok {
			return ShortPayload{Need: WaveformOffsetCount + 4, Have: r.Len()}
		}
		return WaveformPayload{Entries: entries, Expected: opts.expectedEntries(tag)}

	case KindCueList:
		typ, ok1 := r.Uint32(CueOffsetType)
		count, ok2 := r.Uint16(CueOffsetCount)
		if !ok1 || !ok2 {
			return ShortPayload{Need: CueOffsetCount + 2, Have: r.Len()}
		}
		return CuePayload{Hot: typ != 0, Count: count}

	default:
		return RawPayload{Size: uint32(r.Len())}
	}
}

func decodePathPayload(r binfmt.Reader) Payload {
	units, ok := r.Uint32(PathOffsetUnits)
	if !ok {
		return ShortPayload{Need: PathOffsetText, Have: r.Len()}
	}

	p := PathPayload{Units: units}
	text, ok := r.Slice(PathOffsetText, int(uint64(units)*2))
	if !ok {
		p.Err = exerrors.NewParse(pathEncoding, PathOffsetText,
			fmt.Sprintf("%d code units exceed the %d-byte section", units, r.Len()))
		return p
	}

	p.Path, p.Err = DecodePath(text)
	return p
}
