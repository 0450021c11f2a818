package parser

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"runtime"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/specvital/jstd/pkg/domain"
	"github.com/specvital/jstd/pkg/parser/framework"
	"github.com/specvital/jstd/pkg/parser/strategies"
)

const (
	// DefaultWorkers indicates that the scanner should use GOMAXPROCS as the worker count.
	DefaultWorkers = 0
	// DefaultTimeout is the default scan timeout duration.
	DefaultTimeout = 5 * time.Minute
	// MaxWorkers is the maximum number of concurrent workers allowed.
	MaxWorkers = 1024
	// DefaultMaxFileSize is the default maximum file size for scanning (10MB).
	DefaultMaxFileSize = 10 * 1024 * 1024
)

// Scan phases reported in ScanError.
const (
	PhaseDiscovery = "discovery"
	PhaseConfig    = "config-parse"
	PhaseRead      = "read"
	PhaseParsing   = "parsing"
)

// DefaultSkipPatterns contains directory names that are skipped by default during scanning.
var DefaultSkipPatterns = []string{
	"node_modules",
	".git",
	"vendor",
	"dist",
	"coverage",
	".cache",
}

var (
	// ErrScanCancelled is returned when scanning is cancelled via context.
	ErrScanCancelled = errors.New("scanner: scan cancelled")
	// ErrScanTimeout is returned when scanning exceeds the timeout duration.
	ErrScanTimeout = errors.New("scanner: scan timeout")
)

// Scanner discovers JavaScript files, applies jsTestDriver.conf scopes and
// parses every candidate with the first strategy that accepts it.
type Scanner struct {
	registry *strategies.Registry
	options  *ScanOptions
	logger   *slog.Logger
}

// ScanResult contains the outcome of a scan operation.
type ScanResult struct {
	// Inventory contains all parsed test files, sorted by path.
	Inventory *domain.Inventory

	// Configs contains the jsTestDriver.conf scopes that were loaded, sorted
	// by config path.
	Configs []*framework.ConfigScope

	// Errors contains non-fatal errors encountered during scanning.
	Errors []ScanError

	// Stats provides scan statistics.
	Stats ScanStats
}

// ScanError represents an error that occurred during a specific phase of scanning.
type ScanError struct {
	// Err is the underlying error.
	Err error

	// Path is the file path where the error occurred (may be empty for non-file errors).
	Path string

	// Phase is one of the Phase constants.
	Phase string
}

// Error implements the error interface.
func (e ScanError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("[%s] %v", e.Phase, e.Err)
	}
	return fmt.Sprintf("[%s] %s: %v", e.Phase, e.Path, e.Err)
}

func (e ScanError) Unwrap() error {
	return e.Err
}

// ScanStats provides statistics about the scan operation.
type ScanStats struct {
	// FilesScanned is the number of candidates discovered: files whose
	// extension maps to a language some registered strategy reads.
	FilesScanned int

	// FilesMatched is the number of files that produced at least one test case.
	FilesMatched int

	// FilesFailed is the number of files that could not be read or parsed.
	FilesFailed int

	// FilesSkipped is the number of candidates outside their config scope,
	// rejected by every strategy, or without test cases.
	FilesSkipped int

	// ConfigsFound is the number of jsTestDriver.conf files loaded.
	ConfigsFound int

	// Duration is the total scan duration.
	Duration time.Duration
}

// NewScanner creates a new scanner with the given options.
func NewScanner(opts ...ScanOption) *Scanner {
	options := &ScanOptions{}
	for _, opt := range opts {
		opt(options)
	}
	applyDefaults(options)

	return &Scanner{
		registry: options.Registry,
		options:  options,
		logger:   options.Logger,
	}
}

// Scan performs the complete scanning process:
//  1. Discover candidate files and jsTestDriver.conf files
//  2. Load config scopes
//  3. Drop candidates outside the scope of their nearest config
//  4. Parse the remaining files in parallel
//
// Paths in the result are slash-separated and relative to fsys.
func (s *Scanner) Scan(ctx context.Context, fsys fs.FS) (result *ScanResult, err error) {
	startTime := time.Now()

	ctx, cancel := context.WithTimeout(ctx, s.options.Timeout)
	defer cancel()

	result = newScanResult(".", 0)

	found, errs := s.discover(ctx, fsys)
	for _, e := range errs {
		result.Errors = append(result.Errors, ScanError{Err: e, Phase: PhaseDiscovery})
	}
	result.Stats.FilesScanned = len(found.candidates)

	ctx, span := startScanSpan(ctx, len(found.candidates))
	defer func() {
		result.Stats.Duration = time.Since(startTime)
		setScanSpanResult(span, result.Stats, err)
		span.End()
		recordScanMetrics(ctx, result.Stats.Duration, err == nil)
	}()

	selector, err := s.loadScopes(fsys, found.configs, result)
	if err != nil {
		return result, err
	}

	var files []string
	for _, file := range found.candidates {
		if scope := selector(file); scope != nil && !scope.IsTestFile(file) {
			msg := "skipping file outside config scope"
			if scope.Contains(file) {
				msg = "skipping source file loaded by config"
			}
			s.logger.Debug(msg, "file", file, "config", scope.ConfigPath)
			continue
		}
		files = append(files, file)
	}

	s.parseInto(ctx, fsys, files, result)

	s.logger.Debug("scan complete",
		"scanned", result.Stats.FilesScanned,
		"matched", result.Stats.FilesMatched,
		"failed", result.Stats.FilesFailed,
		"configs", result.Stats.ConfigsFound,
	)

	return result, scanContextError(ctx)
}

// ScanDir scans the directory tree rooted at dir.
func (s *Scanner) ScanDir(ctx context.Context, dir string) (*ScanResult, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("scan %s: not a directory", dir)
	}

	result, err := s.Scan(ctx, os.DirFS(dir))
	if result != nil {
		result.Inventory.RootPath = dir
	}
	return result, err
}

// ScanFiles parses specific files, bypassing discovery and config scopes.
func (s *Scanner) ScanFiles(ctx context.Context, fsys fs.FS, files []string) (*ScanResult, error) {
	startTime := time.Now()

	ctx, cancel := context.WithTimeout(ctx, s.options.Timeout)
	defer cancel()

	result := newScanResult(".", len(files))
	s.parseInto(ctx, fsys, files, result)
	result.Stats.Duration = time.Since(startTime)

	return result, scanContextError(ctx)
}

func newScanResult(rootPath string, scanned int) *ScanResult {
	return &ScanResult{
		Inventory: &domain.Inventory{
			RootPath: rootPath,
			Files:    []domain.TestFile{},
		},
		Configs: []*framework.ConfigScope{},
		Errors:  []ScanError{},
		Stats:   ScanStats{FilesScanned: scanned},
	}
}

func (s *Scanner) parseInto(ctx context.Context, fsys fs.FS, files []string, result *ScanResult) {
	if len(files) == 0 {
		result.Stats.FilesSkipped = result.Stats.FilesScanned
		return
	}

	parsed, scanErrors := s.parseFilesParallel(ctx, fsys, files)
	result.Inventory.Files = parsed
	result.Errors = append(result.Errors, scanErrors...)

	result.Stats.FilesMatched = len(parsed)
	result.Stats.FilesFailed = len(scanErrors)
	result.Stats.FilesSkipped = result.Stats.FilesScanned - result.Stats.FilesMatched - result.Stats.FilesFailed
}

func scanContextError(ctx context.Context) error {
	err := ctx.Err()
	switch {
	case err == nil:
		return nil
	case errors.Is(err, context.DeadlineExceeded):
		return ErrScanTimeout
	default:
		return ErrScanCancelled
	}
}

type discovery struct {
	candidates []string
	configs    []string
}

// discover walks fsys once, collecting candidates and config files.
func (s *Scanner) discover(ctx context.Context, fsys fs.FS) (discovery, []error) {
	skipSet := buildSkipSet(append(DefaultSkipPatterns, s.options.ExcludePatterns...))
	languages := s.registry.Languages()

	var (
		found discovery
		errs  []error
	)

	err := fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, walkErr error) error {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		if walkErr != nil {
			errs = append(errs, fmt.Errorf("access error at %s: %w", p, walkErr))
			return nil
		}

		if d.IsDir() {
			if shouldSkipDir(p, skipSet) {
				return fs.SkipDir
			}
			return nil
		}

		if d.Name() == framework.ConfigFileName {
			found.configs = append(found.configs, p)
			return nil
		}

		if !isCandidate(p, languages) {
			return nil
		}

		if len(s.options.Patterns) > 0 && !matchesAnyPattern(p, s.options.Patterns) {
			return nil
		}

		if s.options.MaxFileSize > 0 {
			info, err := d.Info()
			if err != nil {
				errs = append(errs, fmt.Errorf("failed to get file info for %s: %w", p, err))
				return nil
			}
			if info.Size() > s.options.MaxFileSize {
				s.logger.Debug("skipping oversized file", "file", p, "size", info.Size())
				return nil
			}
		}

		found.candidates = append(found.candidates, p)
		return nil
	})

	if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
		errs = append(errs, err)
	}

	return found, errs
}

// scopeSelector returns the config scope governing a file, or nil.
type scopeSelector func(file string) *framework.ConfigScope

// loadScopes loads the forced config, or every discovered one. Only a broken
// forced config is fatal.
func (s *Scanner) loadScopes(fsys fs.FS, configs []string, result *ScanResult) (scopeSelector, error) {
	if s.options.ConfigPath != "" {
		scope, err := framework.LoadConfig(fsys, s.options.ConfigPath)
		if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
		s.addScope(scope, result)
		return func(string) *framework.ConfigScope { return scope }, nil
	}

	scopes := make(map[string]*framework.ConfigScope, len(configs))
	for _, configPath := range configs {
		scope, err := framework.LoadConfig(fsys, configPath)
		if err != nil {
			s.logger.Warn("ignoring unreadable config", "config", configPath, "error", err)
			result.Errors = append(result.Errors, ScanError{Err: err, Path: configPath, Phase: PhaseConfig})
			continue
		}
		scopes[configPath] = scope
		s.addScope(scope, result)
	}
	slices.SortFunc(result.Configs, func(a, b *framework.ConfigScope) int {
		return strings.Compare(a.ConfigPath, b.ConfigPath)
	})

	if len(scopes) == 0 {
		return func(string) *framework.ConfigScope { return nil }, nil
	}

	resolver := framework.NewResolver(fsys, framework.NewCache(), 0)
	return func(file string) *framework.ConfigScope {
		configPath, ok := resolver.Resolve(file)
		if !ok {
			return nil
		}
		return scopes[configPath]
	}, nil
}

// addScope records a loaded scope. A scope whose base directory lies above
// the root still governs its files and is reported as a config error.
func (s *Scanner) addScope(scope *framework.ConfigScope, result *ScanResult) {
	result.Configs = append(result.Configs, scope)
	result.Stats.ConfigsFound = len(result.Configs)

	s.logger.Debug("loaded config",
		"config", scope.ConfigPath,
		"baseDir", scope.BaseDir,
		"server", scope.Server,
		"timeout", scope.Timeout,
	)

	if scope.OutsideRoot() {
		s.logger.Warn("config basepath points outside the scanned root; its files cannot match",
			"config", scope.ConfigPath,
			"baseDir", scope.BaseDir,
		)
		result.Errors = append(result.Errors, ScanError{
			Err:   fmt.Errorf("%w: %s", framework.ErrBasePathOutsideRoot, scope.BaseDir),
			Path:  scope.ConfigPath,
			Phase: PhaseConfig,
		})
	}
}

func (s *Scanner) parseFilesParallel(ctx context.Context, fsys fs.FS, files []string) ([]domain.TestFile, []ScanError) {
	workers := s.options.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > MaxWorkers {
		workers = MaxWorkers
	}

	sem := semaphore.NewWeighted(int64(workers))
	g, gCtx := errgroup.WithContext(ctx)

	var (
		mu         sync.Mutex
		testFiles  = make([]domain.TestFile, 0, len(files))
		scanErrors = make([]ScanError, 0)
	)

	for _, file := range files {
		g.Go(func() error {
			if err := sem.Acquire(gCtx, 1); err != nil {
				return nil
			}
			defer sem.Release(1)

			testFile, scanErr := s.parseFile(gCtx, fsys, file)

			mu.Lock()
			defer mu.Unlock()

			if scanErr != nil {
				scanErrors = append(scanErrors, *scanErr)
				return nil
			}
			if testFile != nil {
				testFiles = append(testFiles, *testFile)
			}
			return nil
		})
	}

	_ = g.Wait()

	// Sort by path for deterministic output order.
	sort.Slice(testFiles, func(i, j int) bool {
		return testFiles[i].Path < testFiles[j].Path
	})
	sort.Slice(scanErrors, func(i, j int) bool {
		return scanErrors[i].Path < scanErrors[j].Path
	})

	return testFiles, scanErrors
}

// parseFile returns (nil, nil) when no strategy accepts the file or it holds
// no test case.
func (s *Scanner) parseFile(ctx context.Context, fsys fs.FS, p string) (*domain.TestFile, *ScanError) {
	ctx, span := startParseSpan(ctx, p)
	defer span.End()

	if err := ctx.Err(); err != nil {
		return nil, &ScanError{Err: err, Path: p, Phase: PhaseParsing}
	}

	content, err := fs.ReadFile(fsys, p)
	if err != nil {
		return nil, &ScanError{Err: err, Path: p, Phase: PhaseRead}
	}

	strategy := s.registry.FindStrategy(p, content)
	if strategy == nil {
		return nil, nil
	}
	span.SetAttributes(attribute.String("file.framework", strategy.Name()))

	testFile, err := strategy.Parse(ctx, content, p)
	if err != nil {
		recordParseMetrics(ctx, strategy.Name(), "failed", 0)
		return nil, &ScanError{
			Err:   fmt.Errorf("parse: %w", err),
			Path:  p,
			Phase: PhaseParsing,
		}
	}

	tests := testFile.CountTests()
	span.SetAttributes(
		attribute.Int("file.suites", len(testFile.Suites)),
		attribute.Int("file.tests", tests),
	)

	if len(testFile.Suites) == 0 {
		recordParseMetrics(ctx, strategy.Name(), "empty", 0)
		s.logger.Debug("no test case recognized", "file", p, "framework", strategy.Name())
		return nil, nil
	}

	recordParseMetrics(ctx, strategy.Name(), "matched", tests)
	return testFile, nil
}

func buildSkipSet(patterns []string) map[string]bool {
	skipSet := make(map[string]bool, len(patterns))
	for _, p := range patterns {
		skipSet[p] = true
	}
	return skipSet
}

func shouldSkipDir(p string, skipSet map[string]bool) bool {
	if p == "." {
		return false
	}
	return skipSet[path.Base(p)]
}

// isCandidate reports whether p is written in a language some registered
// strategy reads.
func isCandidate(p string, languages []domain.Language) bool {
	lang, ok := domain.LanguageFromPath(p)
	return ok && slices.Contains(languages, lang)
}

func matchesAnyPattern(p string, patterns []string) bool {
	for _, pattern := range patterns {
		matched, err := doublestar.Match(pattern, p)
		if err != nil {
			continue
		}
		if matched {
			return true
		}
	}
	return false
}

// Scan is a convenience wrapper around NewScanner(opts...).Scan.
func Scan(ctx context.Context, fsys fs.FS, opts ...ScanOption) (*ScanResult, error) {
	return NewScanner(opts...).Scan(ctx, fsys)
}

// ScanDir is a convenience wrapper around NewScanner(opts...).ScanDir.
func ScanDir(ctx context.Context, dir string, opts ...ScanOption) (*ScanResult, error) {
	return NewScanner(opts...).ScanDir(ctx, dir)
}
