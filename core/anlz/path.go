package anlz

import (
	"encoding/binary"
	"fmt"
	"strings"

	"golang.org/x/text/encoding/unicode"

	exerrors "github.com/FocuswithJustin/exportcheck/core/errors"
)

const pathEncoding = "UTF-16BE"

// MaxPathDisplay is the number of characters kept in a path synopsis.
const MaxPathDisplay = 40

var utf16be = unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM)

// DecodePath decodes big-endian UTF-16 text. Trailing NUL code units are
// dropped. Odd byte counts and unpaired surrogates are reported as a
// *errors.ParseError carrying the byte offset of the bad code unit.
func DecodePath(b []byte) (string, error) {
	if len(b)%2 != 0 {
		return "", exerrors.NewParse(pathEncoding, len(b)-1, fmt.Sprintf("odd byte count %d", len(b)))
	}
	if off, ok := findUnpairedSurrogate(b); !ok {
		return "", exerrors.NewParse(pathEncoding, off, "unpaired surrogate")
	}

	out, err := utf16be.NewDecoder().Bytes(b)
	if err != nil {
		return "", &exerrors.ParseError{Format: pathEncoding, Message: err.Error(), Err: err}
	}
	return strings.TrimRight(string(out), "\x00"), nil
}

// findUnpairedSurrogate scans code units for a high surrogate without a
// following low surrogate, or a stray low surrogate.
func findUnpairedSurrogate(b []byte) (offset int, ok bool) {
	for i := 0; i+1 < len(b); i += 2 {
		u := binary.BigEndian.Uint16(b[i:])
		switch {
		case u >= 0xD800 && u <= 0xDBFF:
			if i+3 >= len(b) {
				return i, false
			}
			next := binary.BigEndian.Uint16(b[i+2:])
			if next < 0xDC00 || next > 0xDFFF {
				return i, false
			}
			i += 2
		case u >= 0xDC00 && u <= 0xDFFF:
			return i, false
		}
	}
	return 0, true
}

// displayPath shortens p to MaxPathDisplay characters, marking the cut with "...".
func displayPath(p string) string {
	runes := []rune(p)
	if len(runes) <= MaxPathDisplay {
		return p
	}
	return string(runes[:MaxPathDisplay]) + "..."
}
