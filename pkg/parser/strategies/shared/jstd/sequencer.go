package jstd

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/specvital/jstd/pkg/parser"
)

// Statements returns the top-level statements of a program in source order.
// Only the file scope is considered; JsTestDriver test cases are written there.
func Statements(root *sitter.Node) []*sitter.Node {
	if root == nil {
		return nil
	}
	return parser.NamedChildren(root)
}

// StatementsAfter returns the statements that follow stmt within the same
// block, in source order.
func StatementsAfter(stmt *sitter.Node) []*sitter.Node {
	if stmt == nil {
		return nil
	}

	var following []*sitter.Node
	for next := stmt.NextNamedSibling(); next != nil; next = next.NextNamedSibling() {
		if parser.IsExtra(next) {
			continue
		}
		following = append(following, next)
	}
	return following
}
