package anlz

import (
	"encoding/binary"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/FocuswithJustin/exportcheck/core/diag"
	exerrors "github.com/FocuswithJustin/exportcheck/core/errors"
	"github.com/FocuswithJustin/exportcheck/internal/testfixture"
)

func tagsOf(c *Container) []string {
	var out []string
	for _, t := range c.Tags() {
		out = append(out, t.String())
	}
	return out
}

func TestDecode_WellFormed(t *testing.T) {
	data := testfixture.Container{Sections: testfixture.EXTSections()}.Bytes()

	c, err := Decode(data, DefaultOptions())
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	if len(c.Diagnostics) != 0 {
		t.Errorf("unexpected diagnostics:\n%s", c.Diagnostics)
	}
	want := []string{"PPTH", "PQTZ", "PWAV", "PWV3", "PWV4", "PWV5", "PCO2"}
	if diff := cmp.Diff(want, tagsOf(c)); diff != "" {
		t.Errorf("Tags() mismatch (-want +got):\n%s", diff)
	}
	if missing := c.Missing(RequiredEXT); len(missing) != 0 {
		t.Errorf("Missing() = %v, want none", missing)
	}
	if c.HeaderLen != 24 || c.DeclaredLen != uint32(len(data)) || c.Size != len(data) {
		t.Errorf("header = %d/%d/%d", c.HeaderLen, c.DeclaredLen, c.Size)
	}
	if c.Sections[0].Offset != 28 {
		t.Errorf("first section at %d, want 28", c.Sections[0].Offset)
	}
}

func TestDecode_Summaries(t *testing.T) {
	data := testfixture.Container{
		Sections: []testfixture.Section{
			testfixture.PathSection("/Contents/Artist/Album/01 Track.mp3"),
			testfixture.BeatGridSection(8),
			testfixture.WaveformSection("PWAV", 400, 1),
			testfixture.WaveformSection("PWV4", 1200, 6),
			testfixture.WaveformSection("PWV5", 77, 2),
			testfixture.CueSection("PCOB", true, 3),
			testfixture.CueSection("PCO2", false, 0),
			testfixture.RawSection("PSSI", make([]byte, 20)),
		},
	}.Bytes()

	c, err := Decode(data, DefaultOptions())
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	want := []string{
		"path='/Contents/Artist/Album/01 Track.mp3'",
		"beats=8",
		"entries=400",
		"entries=1200",
		"entries=77",
		"type=hot, count=3",
		"type=memory, count=0",
		"size=32",
	}
	var got []string
	for _, s := range c.Sections {
		got = append(got, s.Summary())
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("summaries mismatch (-want +got):\n%s", diff)
	}
	if k := c.Sections[7].Kind; k != KindUnknown {
		t.Errorf("PSSI kind = %v, want unknown", k)
	}
}

func TestDecode_BadMagic(t *testing.T) {
	for _, tag := range []string{"PMAX", "pmai", "\x00MAI", "IAMP"} {
		data := testfixture.Container{Tag: tag, Sections: testfixture.DATSections()}.Bytes()
		_, err := Decode(data, DefaultOptions())
		if !exerrors.Is(err, exerrors.ErrInvalidHeader) {
			t.Errorf("tag %q: err = %v, want ErrInvalidHeader", tag, err)
		}
	}
}

func TestDecode_TooSmall(t *testing.T) {
	data := []byte("PMAI")
	_, err := Decode(append(data, make([]byte, 23)...), DefaultOptions())
	if !exerrors.Is(err, exerrors.ErrTooSmall) {
		t.Errorf("err = %v, want ErrTooSmall", err)
	}
}

func TestDecode_HeaderLengthPastBuffer(t *testing.T) {
	data := make([]byte, 28)
	copy(data, "PMAI")
	binary.BigEndian.PutUint32(data[4:], 500)
	binary.BigEndian.PutUint32(data[8:], 28)

	c, err := Decode(data, DefaultOptions())
	if err == nil {
		t.Fatalf("Decode() = %+v, want fatal error", c)
	}
	var se *exerrors.StructuralError
	if !exerrors.As(err, &se) || se.Offset != OffsetHeaderLen {
		t.Errorf("err = %v, want StructuralError at byte %d", err, OffsetHeaderLen)
	}
}

func TestDecode_HeaderOnly(t *testing.T) {
	data := testfixture.Container{}.Bytes()

	c, err := Decode(data, DefaultOptions())
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if len(c.Sections) != 0 || c.Terminated || c.Truncated {
		t.Errorf("header-only container = %+v", c)
	}
	want := []Tag{TagPath, TagBeatGrid, TagPreview, TagColorWaveform}
	if diff := cmp.Diff(want, c.Missing(RequiredDAT)); diff != "" {
		t.Errorf("Missing() mismatch (-want +got):\n%s", diff)
	}
}

func TestDecode_Terminator(t *testing.T) {
	// A valid-looking section after the terminator must never be read.
	after := testfixture.PathSection("/never").Bytes()
	data := testfixture.Container{
		Sections:   []testfixture.Section{testfixture.BeatGridSection(4)},
		Terminator: true,
		Trailing:   after,
	}.Bytes()

	c, err := Decode(data, DefaultOptions())
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if !c.Terminated {
		t.Error("Terminated should be set")
	}
	if c.Has(TagPath) || len(c.Sections) != 1 {
		t.Errorf("sections after the terminator were read: %v", tagsOf(c))
	}
}

func TestDecode_Truncation(t *testing.T) {
	tests := []struct {
		name string
		last testfixture.Section
	}{
		{"zero length", testfixture.Section{Tag: "PWV3", ZeroLength: true, Payload: make([]byte, 8)}},
		{"overrun", testfixture.Section{Tag: "PWV3", LengthOverride: 5000, Payload: make([]byte, 8)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := testfixture.Container{
				Sections: append(testfixture.DATSections(), tt.last, testfixture.CueSection("PCO2", true, 1)),
			}.Bytes()

			c, err := Decode(data, DefaultOptions())
			if err != nil {
				t.Fatalf("Decode() error = %v", err)
			}
			if !c.Truncated {
				t.Error("Truncated should be set")
			}
			if !exerrors.Is(c.Truncation, exerrors.ErrTruncated) {
				t.Errorf("Truncation = %v, want ErrTruncated", c.Truncation)
			}
			var pe *exerrors.ParseError
			if !exerrors.As(c.Truncation, &pe) || pe.Offset != c.Size-tt.last.Len()-testfixture.CueSection("PCO2", true, 1).Len() {
				t.Errorf("Truncation = %#v, want the offset of the bad section", c.Truncation)
			}
			if !c.Diagnostics.Has(diag.CodeTruncated) || !c.Diagnostics.Pass() {
				t.Errorf("want a truncation warning only, got:\n%s", c.Diagnostics)
			}
			if len(c.Sections) != len(testfixture.DATSections()) {
				t.Errorf("kept %d sections, want %d", len(c.Sections), len(testfixture.DATSections()))
			}
			if c.Has(TagCuesExtended) {
				t.Error("traversal continued past the bad section")
			}
			if missing := c.Missing(RequiredDAT); len(missing) != 0 {
				t.Errorf("sections before the cut should be retained, missing %v", missing)
			}
		})
	}
}

func TestDecode_OffsetsIncrease(t *testing.T) {
	sections := append(testfixture.EXTSections(),
		testfixture.RawSection("PSSI", []byte{1}),
		testfixture.Section{Tag: "PXYZ", HeaderLen: 3}, // bare record header, no payload
	)
	data := testfixture.Container{Sections: sections}.Bytes()

	c, err := Decode(data, DefaultOptions())
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	prev := -1
	for _, s := range c.Sections {
		if s.Offset <= prev {
			t.Errorf("section %s at %d does not follow %d", s.Tag, s.Offset, prev)
		}
		prev = s.Offset
		if s.End() > int(c.DeclaredLen) {
			t.Errorf("section %s ends at %d past declared length %d", s.Tag, s.End(), c.DeclaredLen)
		}
	}
	if len(c.Sections) != len(sections) {
		t.Errorf("decoded %d sections, want %d", len(c.Sections), len(sections))
	}
}

func TestDecode_AdvancesByDeclaredLength(t *testing.T) {
	// The path claims far more text than the section holds; the next section
	// must still be found at the declared boundary.
	bad := testfixture.RawPathSection(1000, []byte{0, 'a'})
	data := testfixture.Container{
		Sections: []testfixture.Section{bad, testfixture.BeatGridSection(2)},
	}.Bytes()

	c, err := Decode(data, DefaultOptions())
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if len(c.Sections) != 2 {
		t.Fatalf("decoded %d sections, want 2", len(c.Sections))
	}
	if got := c.Sections[0].Summary(); got != "path_len=1000" {
		t.Errorf("path summary = %q, want fallback", got)
	}
	if p, ok := c.Sections[0].Payload.(PathPayload); !ok || p.Err == nil ||
		!strings.Contains(p.Err.Error(), "1000 code units exceed the 18-byte section") {
		t.Errorf("path payload = %#v, want an overrun error", c.Sections[0].Payload)
	}
	if got := c.Sections[1].Summary(); got != "beats=2" {
		t.Errorf("beat summary = %q", got)
	}
	if !c.Diagnostics.Has(diag.CodePathEncoding) {
		t.Error("expected a path encoding warning")
	}
}

func TestDecode_PathFallbackOnBadUTF16(t *testing.T) {
	data := testfixture.Container{
		Sections: []testfixture.Section{testfixture.RawPathSection(2, []byte{0xDC, 0x00, 0, 'a'})},
	}.Bytes()

	c, err := Decode(data, DefaultOptions())
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if got := c.Sections[0].Summary(); got != "path_len=2" {
		t.Errorf("Summary() = %q, want path_len=2", got)
	}
	if !c.Diagnostics.Pass() {
		t.Errorf("a bad path must not fail the container:\n%s", c.Diagnostics)
	}
}

func TestDecode_LongPathSummary(t *testing.T) {
	path := "/Contents/" + strings.Repeat("a", 60) + ".mp3"
	data := testfixture.Container{Sections: []testfixture.Section{testfixture.PathSection(path)}}.Bytes()

	c, err := Decode(data, DefaultOptions())
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	p, ok := c.Sections[0].Payload.(PathPayload)
	if !ok {
		t.Fatalf("payload = %T, want PathPayload", c.Sections[0].Payload)
	}
	if p.Path != path {
		t.Errorf("Path = %q, want %q", p.Path, path)
	}
	if want := "path='" + path[:40] + "...'"; p.Summary() != want {
		t.Errorf("Summary() = %q, want %q", p.Summary(), want)
	}
}

func TestDecode_EntryCountWarnings(t *testing.T) {
	data := testfixture.Container{
		Sections: []testfixture.Section{
			testfixture.WaveformSection("PWAV", 399, 1),
			testfixture.WaveformSection("PWV4", 1000, 6),
			testfixture.WaveformSection("PWV3", 5, 1),
			testfixture.WaveformSection("PWV5", 5, 2),
		},
	}.Bytes()

	c, err := Decode(data, DefaultOptions())
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	want := []string{
		"PWAV: 399 entries (expected 400)",
		"PWV4: 1000 entries (expected 1200)",
	}
	var got []string
	for _, d := range c.Diagnostics {
		if d.Code == diag.CodeEntryCount {
			got = append(got, d.Message)
		}
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("entry count warnings mismatch (-want +got):\n%s", diff)
	}
	if !c.Diagnostics.Pass() {
		t.Error("entry count deviations must only warn")
	}

	c, err = Decode(data, Options{})
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if c.Diagnostics.Has(diag.CodeEntryCount) {
		t.Error("zero options should disable entry count checks")
	}
}

func TestDecode_SizeMismatch(t *testing.T) {
	data := testfixture.Container{Sections: testfixture.DATSections(), DeclaredLen: 10}.Bytes()

	c, err := Decode(data, DefaultOptions())
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	warns := c.Diagnostics.Warnings()
	if len(warns) != 1 || warns[0].Code != diag.CodeSizeMismatch {
		t.Fatalf("warnings = %v, want one size mismatch", warns)
	}
	if len(c.Sections) != len(testfixture.DATSections()) {
		t.Error("size mismatch must not stop traversal")
	}
}

func TestDecode_ShortPayload(t *testing.T) {
	data := testfixture.Container{
		Sections: []testfixture.Section{
			testfixture.RawSection("PQTZ", make([]byte, 4)),
			testfixture.RawSection("PCOB", make([]byte, 6)),
			testfixture.RawSection("PWAV", nil),
			testfixture.RawSection("PPTH", []byte{0, 0}),
		},
	}.Bytes()

	c, err := Decode(data, DefaultOptions())
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if len(c.Sections) != 4 {
		t.Fatalf("decoded %d sections, want 4", len(c.Sections))
	}
	for _, s := range c.Sections {
		if _, ok := s.Payload.(ShortPayload); !ok {
			t.Errorf("%s payload = %T, want ShortPayload", s.Tag, s.Payload)
		}
		if s.Summary() != "short payload" {
			t.Errorf("%s summary = %q", s.Tag, s.Summary())
		}
	}
}

func TestDecode_SectionHeaderAtEnd(t *testing.T) {
	// Fewer than 12 bytes after the last section are not read as a section.
	data := testfixture.Container{
		Sections: []testfixture.Section{testfixture.BeatGridSection(1)},
		Trailing: []byte("PWAV\x00\x00\x00"),
	}.Bytes()

	c, err := Decode(data, DefaultOptions())
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if len(c.Sections) != 1 || c.Truncated || c.Terminated {
		t.Errorf("sections = %v truncated=%v terminated=%v", tagsOf(c), c.Truncated, c.Terminated)
	}
}

func TestDecode_HeaderOnlySectionAtEnd(t *testing.T) {
	data := testfixture.Container{
		Sections: []testfixture.Section{testfixture.BeatGridSection(1), {Tag: "PWV5"}},
	}.Bytes()

	c, err := Decode(data, DefaultOptions())
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if !c.Has(TagColorWaveform) || len(c.Sections) != 2 {
		t.Errorf("sections = %v, want the trailing PWV5 read", tagsOf(c))
	}
	if c.Truncation != nil {
		t.Errorf("Truncation = %v, want nil", c.Truncation)
	}
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		tag  string
		want SectionKind
	}{
		{"PPTH", KindPath},
		{"PQTZ", KindBeatGrid},
		{"PWAV", KindWaveform},
		{"PWV3", KindWaveform},
		{"PWV4", KindWaveform},
		{"PWV5", KindWaveform},
		{"PCOB", KindCueList},
		{"PCO2", KindCueList},
		{"PSSI", KindUnknown},
		{"PWV6", KindUnknown},
		{"", KindUnknown},
	}
	for _, tt := range tests {
		if got := KindOf(ParseTag(tt.tag)); got != tt.want {
			t.Errorf("KindOf(%q) = %v, want %v", tt.tag, got, tt.want)
		}
	}
}

func TestTagString(t *testing.T) {
	if got := TagColorDetail.String(); got != "PWV4" {
		t.Errorf("String() = %q", got)
	}
	if got := (Tag{'P', 0x01, 0xFF, 'X'}).String(); got != "0x5001FF58" {
		t.Errorf("String() = %q, want hex form", got)
	}
}
