package check

import (
	"testing"

	"github.com/FocuswithJustin/exportcheck/core/anlz"
	"github.com/FocuswithJustin/exportcheck/core/diag"
	exerrors "github.com/FocuswithJustin/exportcheck/core/errors"
	"github.com/FocuswithJustin/exportcheck/core/pdb"
	"github.com/FocuswithJustin/exportcheck/internal/testfixture"
)

func lenientConfig() Config {
	cfg := DefaultConfig()
	cfg.ExpectedTableCount = 0
	return cfg
}

func wellFormedDatabase() []byte {
	return testfixture.Database{
		Tables: testfixture.RequiredTables(),
		Pages: map[int]testfixture.DataPage{
			1: testfixture.NewDataPage(0, 5),
			2: testfixture.NewDataPage(0, 5),
		},
	}.Bytes()
}

func withoutTag(sections []testfixture.Section, tag string) []testfixture.Section {
	var out []testfixture.Section
	for _, s := range sections {
		if s.Tag != tag {
			out = append(out, s)
		}
	}
	return out
}

func TestKindFromPath(t *testing.T) {
	tests := []struct {
		path   string
		want   Kind
		wantOK bool
	}{
		{"/media/usb/PIONEER/rekordbox/export.pdb", KindExportDB, true},
		{"EXPORT.PDB", KindExportDB, true},
		{"PIONEER/USBANLZ/P016/0000875E/ANLZ0000.DAT", KindAnalysisDAT, true},
		{"ANLZ0000.EXT", KindAnalysisEXT, true},
		{"ANLZ0000.2EX", KindAnalysis2EX, true},
		{"ANLZ0000.ext.xz", KindAnalysisEXT, true},
		{"export.pdb.xz", KindExportDB, true},
		{"track.mp3", KindUnknown, false},
		{"noext", KindUnknown, false},
		{"archive.xz", KindUnknown, false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, ok := KindFromPath(tt.path)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("KindFromPath(%q) = %v, %v; want %v, %v", tt.path, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestParseKind(t *testing.T) {
	for _, k := range []Kind{KindExportDB, KindAnalysisDAT, KindAnalysisEXT, KindAnalysis2EX} {
		got, ok := ParseKind(k.String())
		if !ok || got != k {
			t.Errorf("ParseKind(%q) = %v, %v", k.String(), got, ok)
		}
	}
	if _, ok := ParseKind("unknown"); ok {
		t.Error("ParseKind(\"unknown\") should fail")
	}
}

func TestValidate_Database(t *testing.T) {
	r := Validate(KindExportDB, wellFormedDatabase(), lenientConfig())

	if !r.Pass || r.Status() != StatusPass {
		t.Fatalf("well-formed database failed:\n%s", r.Diagnostics)
	}
	if r.Database == nil || r.Container != nil {
		t.Error("only Database should be set")
	}
	if r.Size != 3*pdb.PageSize {
		t.Errorf("Size = %d", r.Size)
	}
}

func TestValidate_DatabaseMissingTable(t *testing.T) {
	data := testfixture.Database{
		Tables: []testfixture.Table{
			{Type: 0, First: 1, Last: 1},
			{Type: 1, First: 1, Last: 1},
			{Type: 2, First: 1, Last: 1},
			{Type: 3, First: 1, Last: 1},
		},
		Pages: map[int]testfixture.DataPage{1: testfixture.NewDataPage(0, 5)},
	}.Bytes()

	r := Validate(KindExportDB, data, lenientConfig())

	if r.Pass {
		t.Fatal("database without Colors should fail")
	}
	errs := r.Diagnostics.Errors()
	if len(errs) != 1 || errs[0].Code != diag.CodeMissingTable {
		t.Fatalf("errors = %v, want one missing table", errs)
	}
	if want := "missing required table Colors (type 6)"; errs[0].Message != want {
		t.Errorf("Message = %q, want %q", errs[0].Message, want)
	}
	if len(r.Missing) != 1 || !exerrors.Is(r.Missing[0], exerrors.ErrMissing) {
		t.Errorf("Missing = %v, want one ErrMissing", r.Missing)
	}
	if r.Err != nil {
		t.Errorf("Err = %v, a missing table is not a fatal decode error", r.Err)
	}
}

func TestValidate_DatabaseFatal(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		code diag.Code
	}{
		{"too small", make([]byte, 100), diag.CodeTooSmall},
		{"wrong page size", testfixture.Database{PageSize: 8192}.Bytes(), diag.CodePageSize},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Validate(KindExportDB, tt.data, DefaultConfig())
			if r.Pass {
				t.Fatal("should fail")
			}
			if r.Err == nil {
				t.Error("Err should carry the fatal error")
			}
			if r.Database != nil {
				t.Error("Database should be nil on fatal errors")
			}
			if errs := r.Diagnostics.Errors(); len(errs) != 1 || errs[0].Code != tt.code {
				t.Errorf("errors = %v, want one %s", errs, tt.code)
			}
		})
	}
}

func TestValidate_WarningsDoNotFail(t *testing.T) {
	page := testfixture.NewDataPage(0, 5)
	page.Offsets = 7
	data := testfixture.Database{
		Tables:   testfixture.RequiredTables(),
		Pages:    map[int]testfixture.DataPage{1: page},
		Trailing: []byte{1, 2, 3},
	}.Bytes()

	r := Validate(KindExportDB, data, DefaultConfig())

	if !r.Pass {
		t.Fatalf("warnings flipped the verdict:\n%s", r.Diagnostics)
	}
	for _, code := range []diag.Code{diag.CodeOffsetRatio, diag.CodeAlignment, diag.CodeTableCount} {
		if !r.Diagnostics.Has(code) {
			t.Errorf("missing %s warning", code)
		}
	}
}

func TestValidate_BitmapMismatchFails(t *testing.T) {
	page := testfixture.NewDataPage(0, 5)
	page.Pad = []uint16{0}
	data := testfixture.Database{
		Tables: testfixture.RequiredTables(),
		Pages:  map[int]testfixture.DataPage{1: page},
	}.Bytes()

	r := Validate(KindExportDB, data, lenientConfig())
	if r.Pass || !r.Diagnostics.Has(diag.CodeBitmapMismatch) {
		t.Errorf("bitmap mismatch should fail:\n%s", r.Diagnostics)
	}
}

func TestValidate_AnalysisVariants(t *testing.T) {
	// Missing PWV4 is fatal for extended files and irrelevant for primary ones.
	noDetail := testfixture.Container{
		Sections: withoutTag(testfixture.EXTSections(), "PWV4"),
	}.Bytes()

	tests := []struct {
		kind Kind
		pass bool
	}{
		{KindAnalysisDAT, true},
		{KindAnalysisEXT, false},
		{KindAnalysis2EX, false},
	}

	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			r := Validate(tt.kind, noDetail, DefaultConfig())
			if r.Pass != tt.pass {
				t.Fatalf("Pass = %v, want %v:\n%s", r.Pass, tt.pass, r.Diagnostics)
			}
			if r.Container == nil {
				t.Fatal("Container should be set")
			}
			if !tt.pass {
				errs := r.Diagnostics.Errors()
				if len(errs) != 1 || errs[0].Message != "missing required section PWV4" {
					t.Errorf("errors = %v", errs)
				}
				var se *exerrors.StructuralError
				if len(r.Missing) != 1 || !exerrors.As(r.Missing[0], &se) ||
					se.Format != anlz.FormatName || !exerrors.Is(se, exerrors.ErrMissing) {
					t.Errorf("Missing = %v, want one analysis container ErrMissing", r.Missing)
				}
			} else if len(r.Missing) != 0 {
				t.Errorf("Missing = %v, want none", r.Missing)
			}
		})
	}
}

func TestValidate_AnalysisWellFormed(t *testing.T) {
	tests := []struct {
		kind     Kind
		sections []testfixture.Section
	}{
		{KindAnalysisDAT, testfixture.DATSections()},
		{KindAnalysisEXT, testfixture.EXTSections()},
		{KindAnalysis2EX, testfixture.EXTSections()},
	}

	for _, tt := range tests {
		data := testfixture.Container{Sections: tt.sections}.Bytes()
		r := Validate(tt.kind, data, DefaultConfig())
		if !r.Pass || len(r.Diagnostics) != 0 {
			t.Errorf("%s: pass=%v diagnostics:\n%s", tt.kind, r.Pass, r.Diagnostics)
		}
	}
}

func TestValidate_AnalysisFatal(t *testing.T) {
	data := testfixture.Container{Tag: "PMAX", Sections: testfixture.DATSections()}.Bytes()

	r := Validate(KindAnalysisDAT, data, DefaultConfig())

	if r.Pass || r.Container != nil {
		t.Fatal("bad magic should fail without a container")
	}
	if !exerrors.Is(r.Err, exerrors.ErrInvalidHeader) {
		t.Errorf("Err = %v, want ErrInvalidHeader", r.Err)
	}
	if !r.Diagnostics.Has(diag.CodeInvalidHeader) {
		t.Errorf("diagnostics = %s", r.Diagnostics)
	}
}

func TestValidate_CustomRequiredSections(t *testing.T) {
	cfg := DefaultConfig()
	cfg.RequiredDAT = append(cfg.RequiredDAT, anlz.TagCues)

	data := testfixture.Container{Sections: withoutTag(testfixture.DATSections(), "PCOB")}.Bytes()
	if r := Validate(KindAnalysisDAT, data, cfg); r.Pass {
		t.Error("configured PCOB requirement should fail the file")
	}
	if r := Validate(KindAnalysisDAT, data, DefaultConfig()); !r.Pass {
		t.Errorf("default requirements should pass:\n%s", r.Diagnostics)
	}
}

func TestValidate_UnknownKind(t *testing.T) {
	r := Validate(KindUnknown, []byte("whatever"), DefaultConfig())
	if r.Pass {
		t.Fatal("unknown kind should fail")
	}
	if !exerrors.Is(r.Err, exerrors.ErrUnsupported) {
		t.Errorf("Err = %v, want ErrUnsupported", r.Err)
	}
}

func TestDefaultConfigIsolated(t *testing.T) {
	cfg := DefaultConfig()
	cfg.RequiredTables[0] = pdb.TableHistory
	cfg.RequiredDAT[0] = anlz.ParseTag("XXXX")

	if pdb.RequiredTables[0] != pdb.TableTracks || anlz.RequiredDAT[0] != anlz.TagPath {
		t.Error("DefaultConfig must not alias the package defaults")
	}
}
