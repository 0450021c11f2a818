package framework

import (
	"path"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// ConfigScope is the set of files a jsTestDriver.conf applies to.
// All paths are slash-separated and relative to the scanned file system.
type ConfigScope struct {
	ConfigPath string
	// BaseDir is the directory load, test and exclude patterns are relative to:
	// the config directory, joined with basepath when set.
	BaseDir string
	Server  string
	Load    []string
	Test    []string
	Exclude []string
	Serve   []string
	Timeout int
}

// NewConfigScope resolves cfg against the directory of configPath.
func NewConfigScope(configPath string, cfg *Config) *ConfigScope {
	configDir := path.Dir(configPath)

	baseDir := configDir
	if cfg.BasePath != "" && !path.IsAbs(cfg.BasePath) {
		baseDir = path.Clean(path.Join(configDir, cfg.BasePath))
	}

	return &ConfigScope{
		ConfigPath: configPath,
		BaseDir:    baseDir,
		Server:     cfg.Server,
		Load:       cfg.Load,
		Test:       cfg.Test,
		Exclude:    cfg.Exclude,
		Serve:      cfg.Serve,
		Timeout:    cfg.Timeout,
	}
}

// TestPatterns returns the patterns naming test files: test, falling back to
// load for old configs that list tests together with sources.
func (s *ConfigScope) TestPatterns() []string {
	if len(s.Test) > 0 {
		return s.Test
	}
	return s.Load
}

// Contains reports whether filePath is loaded or tested by this config and
// not excluded.
func (s *ConfigScope) Contains(filePath string) bool {
	if s == nil {
		return false
	}
	rel, ok := s.relative(filePath)
	if !ok {
		return false
	}
	if !matchAny(s.Load, rel) && !matchAny(s.Test, rel) {
		return false
	}
	return !matchAny(s.Exclude, rel)
}

// IsTestFile reports whether filePath matches the test patterns and is not
// excluded. A config without any patterns accepts every file below BaseDir.
func (s *ConfigScope) IsTestFile(filePath string) bool {
	if s == nil {
		return false
	}
	rel, ok := s.relative(filePath)
	if !ok {
		return false
	}
	if patterns := s.TestPatterns(); len(patterns) > 0 && !matchAny(patterns, rel) {
		return false
	}
	return !matchAny(s.Exclude, rel)
}

// OutsideRoot reports whether BaseDir lies above the scanned root. No
// scanned file can then match the config's patterns.
func (s *ConfigScope) OutsideRoot() bool {
	if s == nil {
		return false
	}
	base := path.Clean(s.BaseDir)
	return base == ".." || strings.HasPrefix(base, "../")
}

func (s *ConfigScope) relative(filePath string) (string, bool) {
	filePath = path.Clean(filePath)
	base := path.Clean(s.BaseDir)
	if base == "." {
		return filePath, !strings.HasPrefix(filePath, "../")
	}
	rel, found := strings.CutPrefix(filePath, base+"/")
	return rel, found
}

func matchAny(patterns []string, rel string) bool {
	for _, pattern := range patterns {
		if match, err := doublestar.Match(strings.TrimPrefix(pattern, "./"), rel); err == nil && match {
			return true
		}
	}
	return false
}
