// Package jstestdriver registers the JsTestDriver strategy.
//
// Usage: _ "github.com/specvital/jstd/pkg/parser/strategies/jstestdriver"
package jstestdriver

import (
	"context"
	"regexp"
	"slices"

	"github.com/specvital/jstd/pkg/domain"
	"github.com/specvital/jstd/pkg/parser/framework"
	"github.com/specvital/jstd/pkg/parser/strategies"
	"github.com/specvital/jstd/pkg/parser/strategies/shared/jstd"
)

const frameworkName = framework.FrameworkJsTestDriver

func init() {
	strategies.Register(NewStrategy())
}

// factoryPattern finds a TestCase or AsyncTestCase call anywhere in a file.
var factoryPattern = regexp.MustCompile(`\b(?:Async)?TestCase\s*\(`)

// Strategy parses JsTestDriver test files.
type Strategy struct {
	opts []jstd.Option
}

// NewStrategy creates the strategy. opts are passed to every build.
func NewStrategy(opts ...jstd.Option) *Strategy {
	return &Strategy{opts: opts}
}

func (s *Strategy) Name() string {
	return frameworkName
}

func (s *Strategy) Priority() int {
	return framework.PrioritySpecialized
}

func (s *Strategy) Languages() []domain.Language {
	return []domain.Language{domain.LanguageJavaScript, domain.LanguageJSX}
}

// CanHandle accepts .js and .jsx files, in any case, that call a test case
// factory.
func (s *Strategy) CanHandle(filename string, content []byte) bool {
	lang, ok := domain.LanguageFromPath(filename)
	if !ok || !slices.Contains(s.Languages(), lang) {
		return false
	}
	return factoryPattern.Match(content)
}

func (s *Strategy) Parse(ctx context.Context, source []byte, filename string) (*domain.TestFile, error) {
	structure, err := jstd.Parse(ctx, source, filename, s.opts...)
	if err != nil {
		return nil, err
	}
	return structure.ToTestFile(frameworkName, jstd.DetectLanguage(filename)), nil
}
