// Package anlz decodes the tagged-section analysis files (.DAT, .EXT, .2EX)
// that accompany each track on DJ USB media.
//
// All fields are big-endian. A file starts with the "PMAI" tag, a header
// length and the declared total length; sections begin at 4 + header length.
// Each section is a 4-byte tag, its own header length and its total length
// (header included), followed by a tag-specific payload:
//
//	PPTH        code-unit count at +12, UTF-16BE track path at +16
//	PQTZ        beat count at +20
//	PWAV        preview waveform, entry count at +12 (400 expected)
//	PWV3        waveform, entry count at +12
//	PWV4        colour detail waveform, entry count at +12 (1200 expected)
//	PWV5        colour waveform, entry count at +12
//	PCOB, PCO2  cue type at +12 (0 = memory, otherwise hot), cue count at +18
//
// Any other tag is kept by size only. Traversal always advances by the
// declared section length, whatever the payload decoder managed to read.
package anlz
