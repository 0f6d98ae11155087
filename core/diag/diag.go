// Package diag holds the diagnostics produced while decoding export files.
//
// Decoders never stop on a finding they can step over. They record an Error
// (the file fails) or a Warning (the file is unusual but still passes) and keep
// going. A file passes iff its list holds no Error.
package diag

import (
	"fmt"
	"strings"
)

// Severity classifies a diagnostic.
type Severity int

const (
	// SeverityWarning is recorded but never flips the verdict.
	SeverityWarning Severity = iota
	// SeverityError fails the file.
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return fmt.Sprintf("severity(%d)", int(s))
	}
}

// MarshalText implements encoding.TextMarshaler so JSON reports carry names.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Code identifies the kind of finding.
type Code string

// Diagnostic codes.
const (
	CodeTooSmall        Code = "too_small"
	CodeInvalidHeader   Code = "invalid_header"
	CodePageSize        Code = "page_size"
	CodeAlignment       Code = "alignment"
	CodeTableCount      Code = "table_count"
	CodeNextUnused      Code = "next_unused_page"
	CodeDescriptor      Code = "table_descriptor"
	CodeMissingTable    Code = "missing_table"
	CodeBitmapMismatch  Code = "bitmap_mismatch"
	CodeRowGroupOverrun Code = "row_group_overrun"
	CodeOffsetRatio     Code = "offset_ratio"
	CodePageIndex       Code = "page_index"
	CodePageFlags       Code = "page_flags"
	CodeHeapOverflow    Code = "heap_overflow"
	CodeSizeMismatch    Code = "size_mismatch"
	CodeTruncated       Code = "truncated"
	CodeEntryCount      Code = "entry_count"
	CodePathEncoding    Code = "path_encoding"
	CodeMissingSection  Code = "missing_section"
	CodeDevice          Code = "device"
	CodeIO              Code = "io"
	CodeUnsupported     Code = "unsupported"
	CodeContentType     Code = "content_type"
)

// Diagnostic is one finding about a file.
type Diagnostic struct {
	Severity Severity `json:"severity"`
	Code     Code     `json:"code"`
	Message  string   `json:"message"`
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s [%s] %s", d.Severity, d.Code, d.Message)
}

// List is an ordered collection of diagnostics.
type List []Diagnostic

// Errorf appends an Error.
func (l *List) Errorf(code Code, format string, args ...any) {
	*l = append(*l, Diagnostic{Severity: SeverityError, Code: code, Message: fmt.Sprintf(format, args...)})
}

// Warnf appends a Warning.
func (l *List) Warnf(code Code, format string, args ...any) {
	*l = append(*l, Diagnostic{Severity: SeverityWarning, Code: code, Message: fmt.Sprintf(format, args...)})
}

// Append appends every diagnostic in other.
func (l *List) Append(other List) {
	*l = append(*l, other...)
}

// Errors returns the Error diagnostics in order.
func (l List) Errors() List {
	return l.filter(SeverityError)
}

// Warnings returns the Warning diagnostics in order.
func (l List) Warnings() List {
	return l.filter(SeverityWarning)
}

// Pass reports whether the list holds no Error.
func (l List) Pass() bool {
	for _, d := range l {
		if d.Severity == SeverityError {
			return false
		}
	}
	return true
}

// Has reports whether any diagnostic carries code.
func (l List) Has(code Code) bool {
	for _, d := range l {
		if d.Code == code {
			return true
		}
	}
	return false
}

func (l List) filter(s Severity) List {
	var out List
	for _, d := range l {
		if d.Severity == s {
			out = append(out, d)
		}
	}
	return out
}

func (l List) String() string {
	lines := make([]string, len(l))
	for i, d := range l {
		lines[i] = d.String()
	}
	return strings.Join(lines, "\n")
}
