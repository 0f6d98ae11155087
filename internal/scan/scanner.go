// Package scan validates a whole export tree: it checks the directory layout,
// discovers the export files, loads them (decompressing xz copies) and
// validates them concurrently, reusing results for byte-identical files.
package scan

import (
	"context"
	"runtime"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/FocuswithJustin/exportcheck/core/anlz"
	"github.com/FocuswithJustin/exportcheck/core/check"
	"github.com/FocuswithJustin/exportcheck/core/diag"
	exerrors "github.com/FocuswithJustin/exportcheck/core/errors"
	"github.com/FocuswithJustin/exportcheck/core/pdb"
	"github.com/FocuswithJustin/exportcheck/internal/cache"
	"github.com/FocuswithJustin/exportcheck/internal/device"
	"github.com/FocuswithJustin/exportcheck/internal/logging"
	"github.com/FocuswithJustin/exportcheck/internal/validation"
)

// DefaultCacheSize bounds the number of cached file results.
const DefaultCacheSize = 4096

// Options configures a Scanner.
type Options struct {
	Workers     int   // Concurrent validations; 0 uses runtime.NumCPU()
	MaxFileSize int64 // 0 uses validation.MaxFileSize
	Config      check.Config
	CacheTTL    time.Duration // 0 keeps results for the scanner's lifetime
	CacheSize   int
}

// DefaultOptions returns options for a standard export.
func DefaultOptions() Options {
	return Options{
		Workers:   runtime.NumCPU(),
		Config:    check.DefaultConfig(),
		CacheSize: DefaultCacheSize,
	}
}

// FileResult is the verdict for one file of an export.
type FileResult struct {
	Path        string        `json:"path"`
	Rel         string        `json:"rel,omitempty"`
	Kind        Kind          `json:"kind"`
	Size        int           `json:"size"`
	Fingerprint string        `json:"fingerprint,omitempty"`
	Pass        bool          `json:"pass"`
	Cached      bool          `json:"cached,omitempty"`
	Duration    time.Duration `json:"duration_ns"`
	Diagnostics diag.List     `json:"diagnostics,omitempty"`

	Database  *pdb.Database   `json:"database,omitempty"`
	Container *anlz.Container `json:"container,omitempty"`
	Setting   *device.Setting `json:"setting,omitempty"`
	Profile   *device.Profile `json:"profile,omitempty"`

	// Err is the error that stopped the file from being read or decoded.
	Err error `json:"-"`
}

// Status returns check.StatusPass or check.StatusFail.
func (r *FileResult) Status() string {
	if r.Pass {
		return check.StatusPass
	}
	return check.StatusFail
}

// Summary is the outcome of scanning one export root.
type Summary struct {
	RunID    string        `json:"run_id"`
	Root     string        `json:"root"`
	Started  time.Time     `json:"started"`
	Duration time.Duration `json:"duration_ns"`
	Layout   []LayoutEntry `json:"layout"`
	Files    []*FileResult `json:"files"`
	Pass     bool          `json:"pass"`
	Cache    cache.Stats   `json:"cache"`
}

// Failed returns the files that did not pass, in scan order.
func (s *Summary) Failed() []*FileResult {
	var failed []*FileResult
	for _, f := range s.Files {
		if !f.Pass {
			failed = append(failed, f)
		}
	}
	return failed
}

type cacheKey struct {
	fingerprint string
	kind        Kind
}

// Scanner validates export files. It is safe for concurrent use; results for
// identical content are cached across calls.
type Scanner struct {
	opts  Options
	cache *cache.TTLCache[cacheKey, *FileResult]
}

// New creates a Scanner.
func New(opts Options) *Scanner {
	if opts.Workers <= 0 {
		opts.Workers = runtime.NumCPU()
	}
	if opts.CacheSize < 0 {
		opts.CacheSize = 0
	}
	return &Scanner{
		opts:  opts,
		cache: cache.New[cacheKey, *FileResult](opts.CacheTTL, opts.CacheSize),
	}
}

// Scan checks the layout of root and validates every discovered file.
// Per-file failures are recorded on the Summary; an error is returned only
// when root cannot be scanned or ctx is cancelled.
func (s *Scanner) Scan(ctx context.Context, root string) (*Summary, error) {
	sum := &Summary{
		RunID:   uuid.NewString(),
		Root:    root,
		Started: time.Now(),
	}
	ctx = logging.WithRunID(ctx, sum.RunID)
	logging.ScanStarted(ctx, root, s.opts.Workers)
	if n := s.cache.Prune(); n > 0 {
		logging.DebugContext(ctx, "cache_pruned", "entries", n)
	}

	targets, err := Discover(root)
	if err != nil {
		logging.FileError(ctx, root, "discover", err)
		return nil, err
	}
	sum.Layout = CheckLayout(root)

	sum.Files = make([]*FileResult, len(targets))
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(s.opts.Workers)
	for i, t := range targets {
		i, t := i, t
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			sum.Files[i] = s.validate(ctx, t)
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	sum.Pass = len(sum.Failed()) == 0
	sum.Duration = time.Since(sum.Started)
	sum.Cache = s.cache.Stats()
	logging.ScanFinished(ctx, root, len(sum.Files), len(sum.Failed()), sum.Duration)
	return sum, nil
}

// ValidateFile validates a single file as kind.
func (s *Scanner) ValidateFile(ctx context.Context, path string, kind Kind) *FileResult {
	return s.validate(ctx, Target{Path: path, Kind: kind})
}

// CacheStats reports the result cache counters.
func (s *Scanner) CacheStats() cache.Stats {
	return s.cache.Stats()
}

func (s *Scanner) validate(ctx context.Context, t Target) *FileResult {
	start := time.Now()

	data, err := LoadFile(t.Path, s.opts.MaxFileSize)
	if err != nil {
		logging.FileError(ctx, t.Path, "load", err)
		r := &FileResult{Path: t.Path, Rel: t.Rel, Kind: t.Kind, Err: err}
		r.Diagnostics.Errorf(diag.CodeIO, "%v", err)
		r.Duration = time.Since(start)
		return r
	}

	key := cacheKey{fingerprint: Fingerprint(data), kind: t.Kind}
	shared, cached := s.cache.GetOrCompute(key, func() *FileResult {
		return s.decode(t.Kind, data, key.fingerprint)
	})

	r := *shared
	r.Path = t.Path
	r.Rel = t.Rel
	r.Cached = cached
	r.Duration = time.Since(start)

	if r.Err != nil {
		logging.FileError(ctx, t.Path, "decode", r.Err)
	}
	if r.Diagnostics.Has(diag.CodeContentType) {
		logging.WarnContext(ctx, "content_type_mismatch", "path", t.Path, "kind", t.Kind)
	}
	logging.FileValidated(ctx, t.Path, string(t.Kind), r.Pass,
		len(r.Diagnostics.Errors()), len(r.Diagnostics.Warnings()), r.Duration,
		"fingerprint", r.Fingerprint, "cached", cached)
	return &r
}

// decode runs the validator for kind. The result carries no path so it can be
// shared between identical files.
func (s *Scanner) decode(kind Kind, data []byte, fingerprint string) *FileResult {
	r := &FileResult{Kind: kind, Size: len(data), Fingerprint: fingerprint}
	if got, want, ok := contentMismatch(kind, data); ok {
		r.Diagnostics.Warnf(diag.CodeContentType, "content looks like %s, expected %s", got, want)
	}

	switch kind {
	case KindSetting:
		r.Setting, r.Err = device.ReadSetting(data)
		if r.Setting != nil {
			r.Diagnostics.Append(r.Setting.Diagnostics)
		}
	case KindProfile:
		r.Profile, r.Err = device.ReadProfile(data)
		if r.Profile != nil {
			r.Diagnostics.Append(r.Profile.Diagnostics)
		}
	default:
		ck, ok := kind.Check()
		if !ok {
			r.Err = exerrors.NewUnsupported("file kind", string(kind))
			break
		}
		res := check.Validate(ck, data, s.opts.Config)
		r.Database = res.Database
		r.Container = res.Container
		r.Diagnostics.Append(res.Diagnostics)
		r.Err = res.Err
		r.Pass = res.Pass
		return r
	}

	if r.Err != nil {
		code := diag.CodeDevice
		if exerrors.Is(r.Err, exerrors.ErrTooSmall) {
			code = diag.CodeTooSmall
		} else if exerrors.Is(r.Err, exerrors.ErrUnsupported) {
			code = diag.CodeUnsupported
		}
		r.Diagnostics.Errorf(code, "%v", r.Err)
	}
	r.Pass = r.Diagnostics.Pass()
	return r
}

// contentMismatch reports when the magic bytes of data belong to a different
// kind of file than kind. Content that matches no known magic never mismatches.
func contentMismatch(kind Kind, data []byte) (got, want validation.FileType, mismatch bool) {
	switch kind {
	case KindSetting, KindProfile:
		want = validation.FileTypeUnknown
	case KindExportDB:
		want = validation.FileTypeExportDB
	default:
		ck, ok := kind.Check()
		if !ok || !ck.IsAnalysis() {
			return "", "", false
		}
		want = validation.FileTypeAnalysis
	}
	got = validation.DetectFileType(data)
	return got, want, got != validation.FileTypeUnknown && got != want
}
