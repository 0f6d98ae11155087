package scan

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	exerrors "github.com/FocuswithJustin/exportcheck/core/errors"
	"github.com/FocuswithJustin/exportcheck/internal/logging"
)

// Target is one file selected for validation.
type Target struct {
	Path string `json:"path"`
	Rel  string `json:"rel"` // Slash-separated, relative to the scan root
	Kind Kind   `json:"kind"`
}

// Discover lists the files of an export rooted at root: the device
// descriptors, the export database, and every analysis file under
// PIONEER/USBANLZ. Absent files are simply not listed; CheckLayout reports
// them.
func Discover(root string) ([]Target, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, exerrors.NewIO("stat", root, err)
	}
	if !info.IsDir() {
		return nil, exerrors.NewIO("scan", root, errors.New("not a directory"))
	}

	var targets []Target
	for _, p := range []string{settingPath(root), profilePath(root), filepath.Join(root, filepath.FromSlash(Database))} {
		if t, ok := targetFor(root, p); ok {
			targets = append(targets, t)
		}
	}
	if t, ok := targetFor(root, filepath.Join(root, filepath.FromSlash(Database))+".xz"); ok {
		targets = append(targets, t)
	}

	analysis, err := discoverAnalysis(root)
	if err != nil {
		return nil, err
	}
	targets = append(targets, analysis...)
	logging.Debug("export_discovered", "root", root, "files", len(targets), "analysis", len(analysis))
	return targets, nil
}

func discoverAnalysis(root string) ([]Target, error) {
	dir := filepath.Join(root, filepath.FromSlash(AnalysisDir))
	if _, err := os.Stat(dir); errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}

	var targets []Target
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		k, ok := KindFromPath(path)
		if !ok {
			return nil
		}
		if ck, ok := k.Check(); !ok || !ck.IsAnalysis() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		targets = append(targets, Target{Path: path, Rel: filepath.ToSlash(rel), Kind: k})
		return nil
	})
	if err != nil {
		return nil, exerrors.NewIO("walk", dir, err)
	}

	sort.Slice(targets, func(i, j int) bool { return targets[i].Rel < targets[j].Rel })
	return targets, nil
}

func targetFor(root, path string) (Target, bool) {
	info, err := os.Stat(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			logging.Warn("stat_failed", "path", path, "error", err)
		}
		return Target{}, false
	}
	if info.IsDir() {
		return Target{}, false
	}
	k, ok := KindFromPath(path)
	if !ok {
		return Target{}, false
	}
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return Target{}, false
	}
	return Target{Path: path, Rel: filepath.ToSlash(rel), Kind: k}, true
}
