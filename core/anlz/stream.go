package anlz

import (
	"fmt"

	"github.com/FocuswithJustin/exportcheck/core/binfmt"
	"github.com/FocuswithJustin/exportcheck/core/diag"
	exerrors "github.com/FocuswithJustin/exportcheck/core/errors"
)

// FormatName names the format in structural errors.
const FormatName = "analysis container"

// Container is a decoded analysis file.
type Container struct {
	HeaderLen   uint32    `json:"header_len"`
	DeclaredLen uint32    `json:"declared_len"`
	Size        int       `json:"size"` // Actual buffer length
	Sections    []Section `json:"sections"`

	// Terminated is set when traversal stopped on a zero tag.
	Terminated bool `json:"terminated,omitempty"`
	// Truncated is set when a zero-length or overrunning section stopped traversal.
	Truncated bool `json:"truncated,omitempty"`
	// Truncation describes where traversal stopped; it wraps ErrTruncated.
	Truncation error `json:"-"`

	Diagnostics diag.List `json:"diagnostics,omitempty"`

	seen map[Tag]bool
}

// Has reports whether a section with tag was decoded.
func (c *Container) Has(tag Tag) bool {
	return c.seen[tag]
}

// Tags returns the distinct tags seen, in first-seen order.
func (c *Container) Tags() []Tag {
	var tags []Tag
	done := make(map[Tag]bool, len(c.seen))
	for _, s := range c.Sections {
		if !done[s.Tag] {
			done[s.Tag] = true
			tags = append(tags, s.Tag)
		}
	}
	return tags
}

// Missing returns the required tags absent from the container, in the order given.
func (c *Container) Missing(required []Tag) []Tag {
	var missing []Tag
	for _, t := range required {
		if !c.seen[t] {
			missing = append(missing, t)
		}
	}
	return missing
}

// Decode walks the section chain of an analysis file.
//
// A buffer shorter than MinHeaderSize, a wrong container tag, or a header
// length reaching past the buffer are fatal. Everything else is collected:
// traversal stops quietly on a zero tag and with a warning on a zero-length
// or overrunning section, keeping the sections read so far.
func Decode(data []byte, opts Options) (*Container, error) {
	if len(data) < MinHeaderSize {
		return nil, exerrors.NewStructural(FormatName, -1, exerrors.ErrTooSmall,
			fmt.Sprintf("%d bytes (minimum %d)", len(data), MinHeaderSize))
	}
	if tag := ParseTag(string(data[:4])); tag != ParseTag(ContainerTag) {
		return nil, exerrors.NewStructural(FormatName, 0, exerrors.ErrInvalidHeader,
			fmt.Sprintf("tag %s (expected %s)", tag, ContainerTag))
	}

	r := binfmt.BE(data)
	c := &Container{Size: len(data), seen: make(map[Tag]bool)}
	c.HeaderLen, _ = r.Uint32(OffsetHeaderLen)
	c.DeclaredLen, _ = r.Uint32(OffsetTotalLen)

	start := uint64(4) + uint64(c.HeaderLen)
	if start > uint64(len(data)) {
		return nil, exerrors.NewStructural(FormatName, OffsetHeaderLen, exerrors.ErrInvalidHeader,
			fmt.Sprintf("header length %d exceeds file size %d", c.HeaderLen, len(data)))
	}

	if int64(c.DeclaredLen) != int64(len(data)) {
		c.Diagnostics.Warnf(diag.CodeSizeMismatch, "declared size %d, actual %d", c.DeclaredLen, len(data))
	}

	// A header-only section ending exactly at EOF is still read.
	for off := int(start); off+SectionHeaderSize <= len(data); {
		var tag Tag
		copy(tag[:], data[off:off+4])
		if tag[0] == 0 {
			c.Terminated = true
			break
		}

		headerLen, _ := r.Uint32(off + SectionOffsetHeaderLen)
		length, _ := r.Uint32(off + SectionOffsetLength)
		if length == 0 {
			c.truncate(off, fmt.Sprintf("section %s at byte %d has zero length", tag, off))
			break
		}
		if uint64(off)+uint64(length) > uint64(len(data)) {
			c.truncate(off, fmt.Sprintf("section %s at byte %d declares %d bytes, only %d remain",
				tag, off, length, len(data)-off))
			break
		}

		body, _ := r.Sub(off, int(length))
		s := Section{
			Offset:    off,
			Tag:       tag,
			HeaderLen: headerLen,
			Length:    length,
			Kind:      KindOf(tag),
			Payload:   decodePayload(body, tag, opts),
		}
		checkPayload(s, &c.Diagnostics)

		c.Sections = append(c.Sections, s)
		c.seen[tag] = true
		off += int(length)
	}

	return c, nil
}

func (c *Container) truncate(off int, msg string) {
	c.Truncated = true
	c.Truncation = &exerrors.ParseError{Format: FormatName, Offset: off, Message: msg, Err: exerrors.ErrTruncated}
	c.Diagnostics.Warnf(diag.CodeTruncated, "%s", msg)
}

func checkPayload(s Section, diags *diag.List) {
	switch p := s.Payload.(type) {
	case WaveformPayload:
		if p.Deviates() {
			diags.Warnf(diag.CodeEntryCount, "%s: %d entries (expected %d)", s.Tag, p.Entries, p.Expected)
		}
	case PathPayload:
		if p.Err != nil {
			diags.Warnf(diag.CodePathEncoding, "%s at byte %d: %v", s.Tag, s.Offset, p.Err)
		}
	}
}
