package testfixture

import (
	"os"
	"path/filepath"
)

// Tree maps slash-separated paths, relative to the export root, to contents.
type Tree map[string][]byte

// ValidExport returns a small export that passes every check.
func ValidExport() Tree {
	db := Database{
		Tables: RequiredTables(),
		Pages: map[int]DataPage{
			1: NewDataPage(0, 5),
			2: NewDataPage(0, 5),
		},
	}
	return Tree{
		"PIONEER/DEVSETTING.DAT":                     ValidDevSetting(),
		"PIONEER/djprofile.nxs":                      DJProfile("DJ Gopher"),
		"PIONEER/rekordbox/export.pdb":               db.Bytes(),
		"PIONEER/USBANLZ/P001/00000001/ANLZ0000.DAT": Container{Sections: DATSections()}.Bytes(),
		"PIONEER/USBANLZ/P001/00000001/ANLZ0000.EXT": Container{Sections: EXTSections()}.Bytes(),
		"Contents/Artist/Album/01 Track.mp3":         {},
	}
}

// Write creates every file of the tree under root.
func (t Tree) Write(root string) error {
	for rel, data := range t {
		path := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return err
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return err
		}
	}
	return nil
}
