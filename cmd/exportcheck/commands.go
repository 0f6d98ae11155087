package main

import (
	"fmt"

	"github.com/FocuswithJustin/exportcheck/internal/scan"
)

// USBCmd validates a whole export tree.
type USBCmd struct {
	Root string `arg:"" help:"Root of the USB export (the directory holding PIONEER)" type:"existingdir"`
}

func (c *USBCmd) Run(g *Globals) error {
	sc, err := g.scanner()
	if err != nil {
		return err
	}
	r, err := g.renderer()
	if err != nil {
		return err
	}

	sum, err := sc.Scan(g.context(), c.Root)
	if err != nil {
		return err
	}
	if err := r.Summary(sum); err != nil {
		return err
	}
	if !sum.Pass {
		return errVerification
	}
	return nil
}

// PDBCmd validates an export database.
type PDBCmd struct {
	Path string `arg:"" help:"Path to export.pdb (optionally xz-compressed)" type:"existingfile"`
}

func (c *PDBCmd) Run(g *Globals) error {
	return validateFiles(g, []string{c.Path}, func(string) (scan.Kind, error) {
		return scan.KindExportDB, nil
	})
}

// ANLZCmd validates analysis containers.
type ANLZCmd struct {
	Paths []string `arg:"" help:"Analysis files to validate" type:"existingfile"`
	Kind  string   `help:"Variant whose required sections apply (auto picks it from the extension)" enum:"auto,dat,ext,2ex" default:"auto"`
}

func (c *ANLZCmd) Run(g *Globals) error {
	return validateFiles(g, c.Paths, func(path string) (scan.Kind, error) {
		if c.Kind != "" && c.Kind != "auto" {
			k, _ := scan.ParseKind(c.Kind)
			return k, nil
		}
		k, ok := scan.KindFromPath(path)
		if !ok || k == scan.KindExportDB || k == scan.KindSetting || k == scan.KindProfile {
			return "", fmt.Errorf("%s: not an analysis file (.DAT, .EXT, .2EX); use --kind", path)
		}
		return k, nil
	})
}

// DeviceCmd validates device descriptor files.
type DeviceCmd struct {
	Paths []string `arg:"" help:"DEVSETTING.DAT and/or djprofile.nxs" type:"existingfile"`
}

func (c *DeviceCmd) Run(g *Globals) error {
	return validateFiles(g, c.Paths, func(path string) (scan.Kind, error) {
		k, ok := scan.KindFromPath(path)
		if !ok || (k != scan.KindSetting && k != scan.KindProfile) {
			return "", fmt.Errorf("%s: expected DEVSETTING.DAT or djprofile.nxs", path)
		}
		return k, nil
	})
}

// VersionCmd prints version information.
type VersionCmd struct{}

func (c *VersionCmd) Run(g *Globals) error {
	fmt.Fprintf(g.out(), "exportcheck version %s\n", version)
	return nil
}

func validateFiles(g *Globals, paths []string, kindOf func(string) (scan.Kind, error)) error {
	kinds := make([]scan.Kind, len(paths))
	for i, p := range paths {
		k, err := kindOf(p)
		if err != nil {
			return err
		}
		kinds[i] = k
	}

	sc, err := g.scanner()
	if err != nil {
		return err
	}
	r, err := g.renderer()
	if err != nil {
		return err
	}

	failed := 0
	for i, p := range paths {
		res := sc.ValidateFile(g.context(), p, kinds[i])
		if err := r.File(res); err != nil {
			return err
		}
		if !res.Pass {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%w: %d of %d files", errVerification, failed, len(paths))
	}
	return nil
}
