// Package validation checks user-supplied paths and input files before they
// are read, guarding against path traversal and oversized inputs.
package validation

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode"
)

// Input limits.
const (
	// MaxFileSize is the maximum allowed input file size (256 MB).
	MaxFileSize = 256 << 20
	// MaxPathLength is the maximum allowed path length.
	MaxPathLength = 4096
)

// Common validation errors.
var (
	ErrPathTraversal    = errors.New("path traversal detected")
	ErrPathTooLong      = errors.New("path too long")
	ErrInvalidCharacter = errors.New("invalid character in path")
	ErrEmptyPath        = errors.New("path cannot be empty")
	ErrFileTooLarge     = errors.New("file too large")
	ErrTypeMismatch     = errors.New("file type mismatch")
)

// SanitizePath validates a path relative to baseDir and ensures it does not
// escape it. Returns the cleaned relative path.
func SanitizePath(baseDir, userPath string) (string, error) {
	if userPath == "" {
		return "", ErrEmptyPath
	}
	if len(userPath) > MaxPathLength {
		return "", ErrPathTooLong
	}

	cleanPath := filepath.Clean(userPath)
	if cleanPath == ".." || strings.HasPrefix(cleanPath, ".."+string(filepath.Separator)) {
		return "", ErrPathTraversal
	}
	if filepath.IsAbs(cleanPath) {
		return "", fmt.Errorf("%w: absolute path not allowed", ErrPathTraversal)
	}

	absBase, err := filepath.Abs(baseDir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve base directory: %w", err)
	}
	absPath, err := filepath.Abs(filepath.Join(baseDir, cleanPath))
	if err != nil {
		return "", fmt.Errorf("failed to resolve path: %w", err)
	}

	relPath, err := filepath.Rel(absBase, absPath)
	if err != nil || relPath == ".." || strings.HasPrefix(relPath, ".."+string(filepath.Separator)) {
		return "", ErrPathTraversal
	}

	return cleanPath, nil
}

// ValidatePath checks an input path for length limits and invalid characters.
func ValidatePath(path string) error {
	if path == "" {
		return ErrEmptyPath
	}
	if len(path) > MaxPathLength {
		return ErrPathTooLong
	}
	if strings.Contains(path, "\x00") {
		return fmt.Errorf("%w: null byte not allowed", ErrInvalidCharacter)
	}
	for _, r := range path {
		if unicode.IsControl(r) {
			return fmt.Errorf("%w: control character not allowed", ErrInvalidCharacter)
		}
	}
	return nil
}

// CheckFileSize rejects inputs larger than limit. A limit of 0 uses MaxFileSize.
func CheckFileSize(size, limit int64) error {
	if limit <= 0 {
		limit = MaxFileSize
	}
	if size > limit {
		return fmt.Errorf("%w: %d bytes (limit %d)", ErrFileTooLarge, size, limit)
	}
	return nil
}

// FileType is the content type detected from magic bytes.
type FileType string

const (
	// FileTypeXZ is an xz stream, as in export.pdb.xz.
	FileTypeXZ FileType = "xz"
	// FileTypeAnalysis is a PMAI analysis container (DAT, EXT, 2EX).
	FileTypeAnalysis FileType = "analysis"
	// FileTypeExportDB is an export database with 4096-byte pages.
	FileTypeExportDB FileType = "export_db"
	// FileTypeUnknown matches no known magic. Device descriptors land here.
	FileTypeUnknown FileType = "unknown"
)

// exportPageSize is the little-endian page size at byte 4 of an export database.
var exportPageSize = []byte{0x00, 0x10, 0x00, 0x00}

// magicBytes defines magic byte signatures for file type detection.
var magicBytes = []struct {
	fileType FileType
	magic    []byte
	offset   int
}{
	{FileTypeXZ, []byte{0xfd, 0x37, 0x7a, 0x58, 0x5a, 0x00}, 0},
	{FileTypeAnalysis, []byte("PMAI"), 0},
	{FileTypeExportDB, exportPageSize, 4},
}

// DetectFileType detects the content type from the first bytes of a file.
func DetectFileType(buf []byte) FileType {
	for _, sig := range magicBytes {
		if sig.offset+len(sig.magic) <= len(buf) {
			if bytes.Equal(buf[sig.offset:sig.offset+len(sig.magic)], sig.magic) {
				return sig.fileType
			}
		}
	}
	return FileTypeUnknown
}

// ValidateFileType reads the head of a file and checks it against the name:
// a ".xz" name must hold xz data. Returns the detected type.
func ValidateFileType(reader io.Reader, filename string) (FileType, error) {
	buf := make([]byte, 16)
	n, err := io.ReadFull(reader, buf)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return FileTypeUnknown, fmt.Errorf("failed to read file header: %w", err)
	}

	detected := DetectFileType(buf[:n])
	if strings.EqualFold(filepath.Ext(filename), ".xz") && detected != FileTypeXZ {
		return detected, fmt.Errorf("%w: extension suggests xz but content is %s", ErrTypeMismatch, detected)
	}
	return detected, nil
}
