package parser

import (
	"log/slog"
	"time"

	"github.com/specvital/jstd/pkg/parser/strategies"
)

// ScanOptions configures scanner behavior.
type ScanOptions struct {
	// ConfigPath names a jsTestDriver.conf, relative to the scanned file
	// system, that applies to every file. When empty, each file uses the
	// nearest config above it, if any.
	ConfigPath string

	// ExcludePatterns specifies directory names to skip during file discovery.
	// These are combined with DefaultSkipPatterns.
	ExcludePatterns []string

	// Logger receives scan progress at debug level.
	// If nil, logging is discarded.
	Logger *slog.Logger

	// MaxFileSize is the maximum file size in bytes to process.
	// Files larger than this are skipped.
	MaxFileSize int64

	// Patterns specifies glob patterns to filter candidate files.
	// Empty means all .js and .jsx files are candidates.
	Patterns []string

	// Registry is the strategy registry asked for each candidate.
	// If nil, uses strategies.DefaultRegistry().
	Registry *strategies.Registry

	// Timeout is the maximum duration for the entire scan operation.
	// Zero or negative values use DefaultTimeout.
	Timeout time.Duration

	// Workers specifies the number of concurrent file parsers.
	// Zero or negative values use runtime.GOMAXPROCS(0).
	Workers int
}

// ScanOption is a functional option for configuring Scanner.
type ScanOption func(*ScanOptions)

// WithWorkers sets the number of concurrent file parsers.
// Negative values are ignored.
func WithWorkers(n int) ScanOption {
	return func(o *ScanOptions) {
		if n >= 0 {
			o.Workers = n
		}
	}
}

// WithTimeout sets the scan timeout duration.
// Negative values are ignored.
func WithTimeout(d time.Duration) ScanOption {
	return func(o *ScanOptions) {
		if d >= 0 {
			o.Timeout = d
		}
	}
}

// WithExcludePatterns adds directory names to skip during file discovery.
func WithExcludePatterns(patterns []string) ScanOption {
	return func(o *ScanOptions) {
		o.ExcludePatterns = patterns
	}
}

// WithMaxFileSize sets the maximum file size to process.
func WithMaxFileSize(size int64) ScanOption {
	return func(o *ScanOptions) {
		o.MaxFileSize = size
	}
}

// WithPatterns sets glob patterns to filter candidate files.
func WithPatterns(patterns []string) ScanOption {
	return func(o *ScanOptions) {
		o.Patterns = patterns
	}
}

// WithRegistry sets the strategy registry to use.
func WithRegistry(registry *strategies.Registry) ScanOption {
	return func(o *ScanOptions) {
		o.Registry = registry
	}
}

// WithConfigPath forces one jsTestDriver.conf for the whole scan.
func WithConfigPath(path string) ScanOption {
	return func(o *ScanOptions) {
		o.ConfigPath = path
	}
}

// WithLogger sets the logger for scan progress.
func WithLogger(logger *slog.Logger) ScanOption {
	return func(o *ScanOptions) {
		o.Logger = logger
	}
}

func applyDefaults(opts *ScanOptions) {
	if opts.MaxFileSize <= 0 {
		opts.MaxFileSize = DefaultMaxFileSize
	}
	if opts.Registry == nil {
		opts.Registry = strategies.DefaultRegistry()
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
}
