// Package check composes the export decoders into a single pass/fail verdict
// per file.
package check

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/FocuswithJustin/exportcheck/core/anlz"
	"github.com/FocuswithJustin/exportcheck/core/diag"
	exerrors "github.com/FocuswithJustin/exportcheck/core/errors"
	"github.com/FocuswithJustin/exportcheck/core/pdb"
)

// Status values for reports.
const (
	StatusPass = "pass"
	StatusFail = "fail"
)

// Kind is the type of file being validated.
type Kind int

const (
	KindUnknown Kind = iota
	KindExportDB
	KindAnalysisDAT
	KindAnalysisEXT
	KindAnalysis2EX
)

var kindNames = map[Kind]string{
	KindUnknown:     "unknown",
	KindExportDB:    "pdb",
	KindAnalysisDAT: "dat",
	KindAnalysisEXT: "ext",
	KindAnalysis2EX: "2ex",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// IsAnalysis reports whether k is one of the analysis container variants.
func (k Kind) IsAnalysis() bool {
	return k == KindAnalysisDAT || k == KindAnalysisEXT || k == KindAnalysis2EX
}

// ParseKind converts a kind name ("pdb", "dat", "ext", "2ex") to a Kind.
func ParseKind(s string) (Kind, bool) {
	s = strings.ToLower(strings.TrimPrefix(s, "."))
	for k, name := range kindNames {
		if k != KindUnknown && name == s {
			return k, true
		}
	}
	return KindUnknown, false
}

// KindFromPath classifies a file by extension. A trailing ".xz" is ignored so
// compressed copies classify like the uncompressed file.
func KindFromPath(path string) (Kind, bool) {
	name := strings.TrimSuffix(strings.ToLower(filepath.Base(path)), ".xz")
	return ParseKind(filepath.Ext(name))
}

// Config holds every tunable the validator uses.
type Config struct {
	PageSize           int
	ExpectedTableCount int
	RequiredTables     []pdb.TableType
	RequiredDAT        []anlz.Tag
	RequiredEXT        []anlz.Tag // Also used for .2EX
	PreviewEntries     uint32
	DetailEntries      uint32
}

// DefaultConfig returns the configuration for standard exports.
func DefaultConfig() Config {
	return Config{
		PageSize:           pdb.PageSize,
		ExpectedTableCount: pdb.ExpectedTableCount,
		RequiredTables:     append([]pdb.TableType(nil), pdb.RequiredTables...),
		RequiredDAT:        append([]anlz.Tag(nil), anlz.RequiredDAT...),
		RequiredEXT:        append([]anlz.Tag(nil), anlz.RequiredEXT...),
		PreviewEntries:     anlz.PreviewEntries,
		DetailEntries:      anlz.DetailEntries,
	}
}

// PDBOptions returns the export database decoder options.
func (c Config) PDBOptions() pdb.Options {
	return pdb.Options{PageSize: c.PageSize, ExpectedTableCount: c.ExpectedTableCount}
}

// AnalysisOptions returns the analysis container decoder options.
func (c Config) AnalysisOptions() anlz.Options {
	return anlz.Options{PreviewEntries: c.PreviewEntries, DetailEntries: c.DetailEntries}
}

// RequiredSections returns the section tags an analysis variant must carry.
func (c Config) RequiredSections(k Kind) []anlz.Tag {
	switch k {
	case KindAnalysisDAT:
		return c.RequiredDAT
	case KindAnalysisEXT, KindAnalysis2EX:
		return c.RequiredEXT
	default:
		return nil
	}
}

// Result is the verdict for one file.
type Result struct {
	Path        string          `json:"path,omitempty"`
	Kind        Kind            `json:"kind"`
	Size        int             `json:"size"`
	Fingerprint string          `json:"fingerprint,omitempty"`
	Pass        bool            `json:"pass"`
	Diagnostics diag.List       `json:"diagnostics,omitempty"`
	Database    *pdb.Database   `json:"database,omitempty"`
	Container   *anlz.Container `json:"container,omitempty"`

	// Err is the fatal decode error, if any. It is also recorded as an Error
	// diagnostic.
	Err error `json:"-"`
	// Missing holds one error per absent required table or section, each
	// wrapping ErrMissing.
	Missing []error `json:"-"`
}

// Status returns StatusPass or StatusFail.
func (r *Result) Status() string {
	if r.Pass {
		return StatusPass
	}
	return StatusFail
}

// Validate decodes data as kind and applies the required-element checks.
// It always returns a Result: fatal decode errors become Error diagnostics.
func Validate(kind Kind, data []byte, cfg Config) *Result {
	r := &Result{Kind: kind, Size: len(data)}

	switch {
	case kind == KindExportDB:
		validateDatabase(r, data, cfg)
	case kind.IsAnalysis():
		validateContainer(r, data, cfg)
	default:
		r.fail(diag.CodeUnsupported, exerrors.NewUnsupported("file kind", kind.String()))
	}

	r.Pass = r.Diagnostics.Pass()
	return r
}

func validateDatabase(r *Result, data []byte, cfg Config) {
	db, err := pdb.Inspect(data, cfg.PDBOptions())
	if err != nil {
		r.fail(fatalCode(err), err)
		return
	}
	r.Database = db
	r.Diagnostics.Append(db.Diagnostics)

	for _, t := range db.Directory.Missing(cfg.RequiredTables) {
		r.missing(diag.CodeMissingTable, pdb.FormatName,
			fmt.Sprintf("missing required table %s (type %d)", t, uint32(t)))
	}
}

func validateContainer(r *Result, data []byte, cfg Config) {
	c, err := anlz.Decode(data, cfg.AnalysisOptions())
	if err != nil {
		r.fail(fatalCode(err), err)
		return
	}
	r.Container = c
	r.Diagnostics.Append(c.Diagnostics)

	for _, t := range c.Missing(cfg.RequiredSections(r.Kind)) {
		r.missing(diag.CodeMissingSection, anlz.FormatName, fmt.Sprintf("missing required section %s", t))
	}
}

func (r *Result) fail(code diag.Code, err error) {
	r.Err = err
	r.Diagnostics.Errorf(code, "%v", err)
}

func (r *Result) missing(code diag.Code, format, msg string) {
	r.Missing = append(r.Missing, exerrors.NewStructural(format, -1, exerrors.ErrMissing, msg))
	r.Diagnostics.Errorf(code, "%s", msg)
}

func fatalCode(err error) diag.Code {
	var se *exerrors.StructuralError
	switch {
	case exerrors.Is(err, exerrors.ErrTooSmall):
		return diag.CodeTooSmall
	case exerrors.As(err, &se) && se.Format == pdb.FormatName && se.Offset == pdb.OffsetPageSize:
		return diag.CodePageSize
	default:
		return diag.CodeInvalidHeader
	}
}
