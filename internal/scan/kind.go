package scan

import (
	"path/filepath"
	"strings"

	"github.com/FocuswithJustin/exportcheck/core/check"
	"github.com/FocuswithJustin/exportcheck/internal/device"
)

// Kind classifies a file the scanner knows how to validate. The export
// database and analysis variants use the check.Kind names.
type Kind string

// Device descriptor kinds.
const (
	KindSetting Kind = "devsetting"
	KindProfile Kind = "djprofile"
)

// Kinds of validated core files.
var (
	KindExportDB    = fromCheck(check.KindExportDB)
	KindAnalysisDAT = fromCheck(check.KindAnalysisDAT)
	KindAnalysisEXT = fromCheck(check.KindAnalysisEXT)
	KindAnalysis2EX = fromCheck(check.KindAnalysis2EX)
)

func fromCheck(k check.Kind) Kind {
	return Kind(k.String())
}

// Check returns the validator kind for k, or false for device descriptors.
func (k Kind) Check() (check.Kind, bool) {
	return check.ParseKind(string(k))
}

// ParseKind converts a kind name to a Kind.
func ParseKind(s string) (Kind, bool) {
	switch k := Kind(strings.ToLower(s)); k {
	case KindSetting, KindProfile:
		return k, true
	}
	if ck, ok := check.ParseKind(s); ok {
		return fromCheck(ck), true
	}
	return "", false
}

// KindFromPath classifies a file by name. The device descriptors are matched
// by file name before extensions, since DEVSETTING.DAT shares the analysis
// file extension.
func KindFromPath(path string) (Kind, bool) {
	base := filepath.Base(path)
	switch {
	case strings.EqualFold(base, device.SettingFile):
		return KindSetting, true
	case strings.EqualFold(base, device.ProfileFile):
		return KindProfile, true
	}
	if ck, ok := check.KindFromPath(path); ok {
		return fromCheck(ck), true
	}
	return "", false
}
