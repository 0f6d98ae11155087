package scan

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"github.com/ulikunitz/xz"
	"github.com/zeebo/blake3"

	exerrors "github.com/FocuswithJustin/exportcheck/core/errors"
	"github.com/FocuswithJustin/exportcheck/internal/validation"
)

// LoadFile reads a whole input file into memory. Files holding xz data are
// decompressed transparently, whatever their name. Both the stored and the
// decompressed size are bounded by maxSize (0 uses validation.MaxFileSize).
func LoadFile(path string, maxSize int64) ([]byte, error) {
	if err := validation.ValidatePath(path); err != nil {
		return nil, exerrors.NewIO("validate", path, err)
	}
	if maxSize <= 0 {
		maxSize = validation.MaxFileSize
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, exerrors.NewIO("stat", path, err)
	}
	if info.IsDir() {
		return nil, exerrors.NewIO("read", path, fmt.Errorf("is a directory"))
	}
	if err := validation.CheckFileSize(info.Size(), maxSize); err != nil {
		return nil, exerrors.NewIO("read", path, err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, exerrors.NewIO("read", path, err)
	}

	ft, err := validation.ValidateFileType(bytes.NewReader(raw), path)
	if err != nil {
		return nil, exerrors.NewIO("read", path, err)
	}
	if ft != validation.FileTypeXZ {
		return raw, nil
	}

	data, err := decompress(raw, maxSize)
	if err != nil {
		return nil, exerrors.NewIO("decompress", path, err)
	}
	return data, nil
}

func decompress(raw []byte, maxSize int64) ([]byte, error) {
	xzr, err := xz.NewReader(bytes.NewReader(raw))
	if err != nil {
		return nil, exerrors.Wrap(err, "xz reader")
	}
	data, err := io.ReadAll(io.LimitReader(xzr, maxSize+1))
	if err != nil {
		return nil, exerrors.Wrap(err, "xz stream")
	}
	if err := validation.CheckFileSize(int64(len(data)), maxSize); err != nil {
		return nil, err
	}
	return data, nil
}

// Fingerprint returns the hex BLAKE3-256 digest of data.
func Fingerprint(data []byte) string {
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:])
}
