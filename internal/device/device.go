// Package device reads the fixed-layout descriptor files written next to an
// export: PIONEER/DEVSETTING.DAT and PIONEER/djprofile.nxs.
package device

import (
	"fmt"
	"strings"

	"github.com/FocuswithJustin/exportcheck/core/binfmt"
	"github.com/FocuswithJustin/exportcheck/core/diag"
	exerrors "github.com/FocuswithJustin/exportcheck/core/errors"
)

// File names relative to the PIONEER directory.
const (
	SettingFile = "DEVSETTING.DAT"
	ProfileFile = "djprofile.nxs"
)

// DEVSETTING.DAT layout (little-endian)
const (
	SettingSize = 140

	SettingOffsetSize    = 0
	SettingOffsetBrand   = 4
	SettingOffsetApp     = 36
	SettingOffsetVersion = 68
	SettingOffsetMarker  = 100
	SettingOffsetMagic   = 104

	SettingBrandLen   = 28
	SettingAppLen     = 32
	SettingVersionLen = 32

	SettingHeaderSize = 0x60
	SettingMarker     = 0x20
	SettingMagic      = 0x12345678

	ExpectedBrand       = "PIONEER"
	ExpectedApplication = "rekordbox"
)

// djprofile.nxs layout
const (
	ProfileSize       = 160
	ProfileOffsetName = 0x20
	ProfileNameEnd    = 0x40
)

// Setting is a decoded DEVSETTING.DAT.
type Setting struct {
	HeaderSize  uint32    `json:"header_size"`
	Brand       string    `json:"brand"`
	Application string    `json:"application"`
	Version     string    `json:"version"`
	Marker      uint32    `json:"marker"`
	Magic       uint32    `json:"magic"`
	Diagnostics diag.List `json:"diagnostics,omitempty"`
}

// Pass reports whether the descriptor has no Error diagnostics.
func (s *Setting) Pass() bool {
	return s.Diagnostics.Pass()
}

// ReadSetting decodes DEVSETTING.DAT. Buffers shorter than SettingSize are
// rejected; field mismatches are Error diagnostics, except the marker which
// only warns.
func ReadSetting(data []byte) (*Setting, error) {
	if len(data) < SettingSize {
		return nil, exerrors.NewStructural(SettingFile, -1, exerrors.ErrTooSmall,
			fmt.Sprintf("%d bytes (expected %d)", len(data), SettingSize))
	}

	r := binfmt.LE(data)
	s := &Setting{
		Brand:       cString(data[SettingOffsetBrand : SettingOffsetBrand+SettingBrandLen]),
		Application: cString(data[SettingOffsetApp : SettingOffsetApp+SettingAppLen]),
		Version:     cString(data[SettingOffsetVersion : SettingOffsetVersion+SettingVersionLen]),
	}
	s.HeaderSize, _ = r.Uint32(SettingOffsetSize)
	s.Marker, _ = r.Uint32(SettingOffsetMarker)
	s.Magic, _ = r.Uint32(SettingOffsetMagic)

	if s.HeaderSize != SettingHeaderSize {
		s.Diagnostics.Errorf(diag.CodeDevice, "size header 0x%X (expected 0x%X)", s.HeaderSize, SettingHeaderSize)
	}
	if !strings.Contains(s.Brand, ExpectedBrand) {
		s.Diagnostics.Errorf(diag.CodeDevice, "brand %q does not contain %q", s.Brand, ExpectedBrand)
	}
	if !strings.Contains(s.Application, ExpectedApplication) {
		s.Diagnostics.Errorf(diag.CodeDevice, "application %q does not contain %q", s.Application, ExpectedApplication)
	}
	if s.Magic != SettingMagic {
		s.Diagnostics.Errorf(diag.CodeDevice, "magic 0x%X (expected 0x%X)", s.Magic, SettingMagic)
	}
	if s.Marker != SettingMarker {
		s.Diagnostics.Warnf(diag.CodeDevice, "marker 0x%X (expected 0x%X)", s.Marker, SettingMarker)
	}
	if len(data) != SettingSize {
		s.Diagnostics.Warnf(diag.CodeSizeMismatch, "%d bytes (expected %d)", len(data), SettingSize)
	}

	return s, nil
}

// Profile is a decoded djprofile.nxs.
type Profile struct {
	Name         string    `json:"name"`
	PaddingClean bool      `json:"padding_clean"`
	Diagnostics  diag.List `json:"diagnostics,omitempty"`
}

// Pass reports whether the profile has no Error diagnostics.
func (p *Profile) Pass() bool {
	return p.Diagnostics.Pass()
}

// ReadProfile decodes djprofile.nxs. Only a short buffer is fatal; bytes
// outside the name field are expected to be zero and only warn otherwise.
func ReadProfile(data []byte) (*Profile, error) {
	if len(data) < ProfileSize {
		return nil, exerrors.NewStructural(ProfileFile, -1, exerrors.ErrTooSmall,
			fmt.Sprintf("%d bytes (expected %d)", len(data), ProfileSize))
	}

	p := &Profile{
		Name:         cString(data[ProfileOffsetName:ProfileNameEnd]),
		PaddingClean: binfmt.LE(data[:ProfileOffsetName]).IsZero() && binfmt.LE(data[ProfileNameEnd:]).IsZero(),
	}
	if !p.PaddingClean {
		p.Diagnostics.Warnf(diag.CodeDevice, "non-zero padding outside the profile name")
	}
	return p, nil
}

// cString trims trailing NULs and replaces non-ASCII bytes with U+FFFD.
func cString(b []byte) string {
	b = []byte(strings.TrimRight(string(b), "\x00"))
	var sb strings.Builder
	sb.Grow(len(b))
	for _, c := range b {
		if c > 0x7F {
			sb.WriteRune('\uFFFD')
			continue
		}
		sb.WriteByte(c)
	}
	return sb.String()
}
