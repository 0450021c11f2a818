// Package tspool provides tree-sitter parsers for concurrent parsing.
//
// Parsers are created fresh for every parse. Reusing a parser after a
// cancelled ParseCtx leaves its cancel flag set and makes subsequent parses
// fail with "operation limit was hit".
//
// Thread-safety: Parsers returned by Get are NOT safe for concurrent use.
// Each goroutine must Get its own parser or use the Parse helper.
package tspool

import (
	"context"
	"fmt"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"

	"github.com/specvital/jstd/pkg/domain"
)

var (
	jsLang   *sitter.Language
	langOnce sync.Once
)

func initLanguages() {
	langOnce.Do(func() {
		jsLang = javascript.GetLanguage()
	})
}

// GetLanguage returns the tree-sitter language for the given domain language.
// JSX shares the JavaScript grammar. Returns nil for anything else.
func GetLanguage(lang domain.Language) *sitter.Language {
	initLanguages()
	switch lang {
	case domain.LanguageJavaScript, domain.LanguageJSX:
		return jsLang
	default:
		return nil
	}
}

// Get returns a parser for the given language, or nil if it is unsupported.
// The returned parser is NOT safe for concurrent use.
// Caller MUST call parser.Close() when done to free resources.
func Get(lang domain.Language) *sitter.Parser {
	sitterLang := GetLanguage(lang)
	if sitterLang == nil {
		return nil
	}
	parser := sitter.NewParser()
	parser.SetLanguage(sitterLang)
	return parser
}

// Parse parses source using a fresh parser.
// Caller MUST call tree.Close() to free resources.
func Parse(ctx context.Context, lang domain.Language, source []byte) (*sitter.Tree, error) {
	parser := Get(lang)
	if parser == nil {
		return nil, fmt.Errorf("parse %s failed: unsupported language", lang)
	}
	defer parser.Close()

	tree, err := parser.ParseCtx(ctx, nil, source)
	if err != nil {
		return nil, fmt.Errorf("parse %s failed: %w", lang, err)
	}

	return tree, nil
}
