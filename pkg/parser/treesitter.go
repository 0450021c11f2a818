package parser

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/specvital/jstd/pkg/domain"
)

// GetNodeText returns the source text for the given AST node.
// Returns empty string for a nil node or when the node's byte range exceeds
// the source length.
func GetNodeText(node *sitter.Node, source []byte) (result string) {
	if node == nil {
		return ""
	}

	start := node.StartByte()
	end := node.EndByte()
	sourceLen := uint32(len(source))

	// Validate bounds before calling tree-sitter C code
	if start > sourceLen || end > sourceLen || start > end {
		return ""
	}

	// Content() slices source; a tree built from different bytes can still
	// trip the runtime bounds check.
	defer func() {
		if r := recover(); r != nil {
			result = ""
		}
	}()

	return node.Content(source)
}

// GetLocation converts a tree-sitter node position to a [domain.Location].
// Line numbers are converted to 1-based indexing.
func GetLocation(node *sitter.Node, filename string) domain.Location {
	start := node.StartPoint()
	end := node.EndPoint()

	return domain.Location{
		File:      filename,
		StartLine: int(start.Row) + 1, // Convert to 1-based
		EndLine:   int(end.Row) + 1,
		StartCol:  int(start.Column),
		EndCol:    int(end.Column),
		StartByte: int(node.StartByte()),
		EndByte:   int(node.EndByte()),
	}
}

// FindChildByType returns the first direct child with the given node type.
func FindChildByType(node *sitter.Node, nodeType string) *sitter.Node {
	if node == nil {
		return nil
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child.Type() == nodeType {
			return child
		}
	}
	return nil
}

// IsExtra reports whether the node is trivia that may appear between any two
// tokens (comments, the #! line).
func IsExtra(node *sitter.Node) bool {
	switch node.Type() {
	case "comment", "hash_bang_line", "html_comment":
		return true
	}
	return false
}

// NamedChildren returns the named children of node in source order,
// skipping comments.
func NamedChildren(node *sitter.Node) []*sitter.Node {
	if node == nil {
		return nil
	}

	count := int(node.NamedChildCount())
	children := make([]*sitter.Node, 0, count)
	for i := 0; i < count; i++ {
		child := node.NamedChild(i)
		if child == nil || IsExtra(child) {
			continue
		}
		children = append(children, child)
	}
	return children
}

// FirstNamedChild returns the first named child of node that is not a comment.
func FirstNamedChild(node *sitter.Node) *sitter.Node {
	if node == nil {
		return nil
	}
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		if child != nil && !IsExtra(child) {
			return child
		}
	}
	return nil
}
