// Package domain defines the inventory types produced from JsTestDriver test files.
package domain

import (
	"path/filepath"
	"strings"
)

// Language represents a programming language.
type Language string

// Languages a JsTestDriver test file may be written in.
const (
	LanguageJavaScript Language = "javascript"
	LanguageJSX        Language = "jsx"
)

// LanguageFromPath maps a file extension to its language. The comparison
// ignores case, so "Foo.JS" is JavaScript.
func LanguageFromPath(p string) (Language, bool) {
	switch strings.ToLower(filepath.Ext(p)) {
	case ".js":
		return LanguageJavaScript, true
	case ".jsx":
		return LanguageJSX, true
	default:
		return "", false
	}
}
