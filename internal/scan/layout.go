package scan

import (
	"os"
	"path/filepath"

	"github.com/FocuswithJustin/exportcheck/internal/device"
	"github.com/FocuswithJustin/exportcheck/internal/logging"
	"github.com/FocuswithJustin/exportcheck/internal/validation"
)

// Export tree locations, relative to the media root.
const (
	PioneerDir  = "PIONEER"
	DatabaseDir = "PIONEER/rekordbox"
	Database    = "PIONEER/rekordbox/export.pdb"
	AnalysisDir = "PIONEER/USBANLZ"
	ContentsDir = "Contents"
)

// ExpectedPaths are the entries a complete export carries.
var ExpectedPaths = []string{PioneerDir, DatabaseDir, Database, AnalysisDir, ContentsDir}

// LayoutEntry reports whether one expected path exists.
type LayoutEntry struct {
	Path   string `json:"path"`
	Exists bool   `json:"exists"`
	IsDir  bool   `json:"is_dir"`
}

// CheckLayout stats every expected path under root. Missing paths are
// reported, never treated as failures on their own.
func CheckLayout(root string) []LayoutEntry {
	entries := make([]LayoutEntry, 0, len(ExpectedPaths))
	for _, rel := range ExpectedPaths {
		e := LayoutEntry{Path: rel}
		if clean, err := validation.SanitizePath(root, filepath.FromSlash(rel)); err == nil {
			if info, err := os.Stat(filepath.Join(root, clean)); err == nil {
				e.Exists = true
				e.IsDir = info.IsDir()
			}
		}
		if !e.Exists {
			logging.Debug("layout_missing", "root", root, "path", rel)
		}
		entries = append(entries, e)
	}
	return entries
}

func settingPath(root string) string {
	return filepath.Join(root, PioneerDir, device.SettingFile)
}

func profilePath(root string) string {
	return filepath.Join(root, PioneerDir, device.ProfileFile)
}
