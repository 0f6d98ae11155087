// Package config loads YAML profiles that override the default validation
// settings.
//
// Every key is optional; absent keys keep the defaults:
//
//	database:
//	  page_size: 4096
//	  expected_table_count: 20
//	  required_tables: [Tracks, Genres, Artists, Albums, Colors]
//	analysis:
//	  required_dat: [PPTH, PQTZ, PWAV, PWV5]
//	  required_ext: [PPTH, PQTZ, PWAV, PWV3, PWV4, PWV5]
//	  preview_entries: 400
//	  detail_entries: 1200
//	scan:
//	  workers: 8
//	  max_file_size: 256MiB
//	  cache_ttl: 10m
//	  cache_size: 4096
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"gopkg.in/yaml.v3"

	"github.com/FocuswithJustin/exportcheck/core/anlz"
	exerrors "github.com/FocuswithJustin/exportcheck/core/errors"
	"github.com/FocuswithJustin/exportcheck/core/pdb"
	"github.com/FocuswithJustin/exportcheck/internal/scan"
)

// Profile is the on-disk configuration.
type Profile struct {
	Database Database `yaml:"database"`
	Analysis Analysis `yaml:"analysis"`
	Scan     Scan     `yaml:"scan"`
}

// Database overrides the export database checks.
type Database struct {
	PageSize           *int     `yaml:"page_size"`
	ExpectedTableCount *int     `yaml:"expected_table_count"`
	RequiredTables     []string `yaml:"required_tables"`
}

// Analysis overrides the analysis container checks.
type Analysis struct {
	RequiredDAT    []string `yaml:"required_dat"`
	RequiredEXT    []string `yaml:"required_ext"`
	PreviewEntries *uint32  `yaml:"preview_entries"`
	DetailEntries  *uint32  `yaml:"detail_entries"`
}

// Scan overrides the scanner settings.
type Scan struct {
	Workers     *int   `yaml:"workers"`
	MaxFileSize string `yaml:"max_file_size"` // Human-readable, e.g. "64MiB"
	CacheTTL    string `yaml:"cache_ttl"`     // Go duration, e.g. "10m"
	CacheSize   *int   `yaml:"cache_size"`
}

// Load reads a profile from path. Environment variables in the file are
// expanded before parsing.
func Load(path string) (*Profile, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, exerrors.Wrap(err, "read config")
	}
	return Parse(b)
}

// Parse decodes a profile. Unknown keys are rejected.
func Parse(b []byte) (*Profile, error) {
	var p Profile
	dec := yaml.NewDecoder(strings.NewReader(os.ExpandEnv(string(b))))
	dec.KnownFields(true)
	if err := dec.Decode(&p); err != nil && !errors.Is(err, io.EOF) {
		return nil, exerrors.Wrap(err, "parse config")
	}
	return &p, nil
}

// Options returns the scanner options with the profile applied over
// scan.DefaultOptions.
func (p *Profile) Options() (scan.Options, error) {
	opts := scan.DefaultOptions()
	cfg := &opts.Config

	if v := p.Database.PageSize; v != nil {
		if *v <= 0 {
			return opts, fmt.Errorf("database.page_size must be positive, got %d", *v)
		}
		cfg.PageSize = *v
	}
	if v := p.Database.ExpectedTableCount; v != nil {
		cfg.ExpectedTableCount = *v
	}
	if p.Database.RequiredTables != nil {
		tables, err := parseTables(p.Database.RequiredTables)
		if err != nil {
			return opts, err
		}
		cfg.RequiredTables = tables
	}

	if p.Analysis.RequiredDAT != nil {
		tags, err := parseTags("analysis.required_dat", p.Analysis.RequiredDAT)
		if err != nil {
			return opts, err
		}
		cfg.RequiredDAT = tags
	}
	if p.Analysis.RequiredEXT != nil {
		tags, err := parseTags("analysis.required_ext", p.Analysis.RequiredEXT)
		if err != nil {
			return opts, err
		}
		cfg.RequiredEXT = tags
	}
	if v := p.Analysis.PreviewEntries; v != nil {
		cfg.PreviewEntries = *v
	}
	if v := p.Analysis.DetailEntries; v != nil {
		cfg.DetailEntries = *v
	}

	if v := p.Scan.Workers; v != nil {
		if *v <= 0 {
			return opts, fmt.Errorf("scan.workers must be positive, got %d", *v)
		}
		opts.Workers = *v
	}
	if s := p.Scan.MaxFileSize; s != "" {
		n, err := humanize.ParseBytes(s)
		if err != nil {
			return opts, exerrors.Wrap(err, "scan.max_file_size")
		}
		opts.MaxFileSize = int64(n)
	}
	if s := p.Scan.CacheTTL; s != "" {
		d, err := time.ParseDuration(s)
		if err != nil {
			return opts, exerrors.Wrap(err, "scan.cache_ttl")
		}
		opts.CacheTTL = d
	}
	if v := p.Scan.CacheSize; v != nil {
		opts.CacheSize = *v
	}

	return opts, nil
}

func parseTables(names []string) ([]pdb.TableType, error) {
	tables := make([]pdb.TableType, 0, len(names))
	for _, name := range names {
		t, ok := pdb.ParseTableType(name)
		if !ok {
			return nil, fmt.Errorf("database.required_tables: unknown table %q", name)
		}
		tables = append(tables, t)
	}
	return tables, nil
}

func parseTags(key string, names []string) ([]anlz.Tag, error) {
	tags := make([]anlz.Tag, 0, len(names))
	for _, name := range names {
		if len(name) != 4 {
			return nil, fmt.Errorf("%s: tag %q must be 4 characters", key, name)
		}
		tags = append(tags, anlz.ParseTag(name))
	}
	return tags, nil
}
