// Package jstd recognizes JsTestDriver test cases in JavaScript syntax trees.
//
// Three statement shapes declare a test case at file scope:
//
//	TestCase("Name", { testFoo: function() {} });
//	tc = TestCase("Name");
//	var tc = AsyncTestCase("Name");
//
// The last two also collect later `tc.prototype.testBar = function() {}`
// assignments as test methods. Anything else is skipped without error.
package jstd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/specvital/jstd/pkg/domain"
	"github.com/specvital/jstd/pkg/parser"
	"github.com/specvital/jstd/pkg/parser/tspool"
)

// ErrInvalidArgument is returned when Build is called without a program tree.
var ErrInvalidArgument = errors.New("jstd: invalid argument")

// Option configures a Builder.
type Option func(*Builder)

// WithLogger sets the logger used to report recognition decisions at debug level.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Builder) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// WithFilename sets the file name recorded in every anchor.
func WithFilename(filename string) Option {
	return func(b *Builder) {
		b.filename = filename
	}
}

// Builder turns a syntax tree into a TestFileStructure. It holds no state
// between builds and may be shared across goroutines.
type Builder struct {
	filename string
	logger   *slog.Logger
}

// NewBuilder creates a Builder with the given options.
func NewBuilder(opts ...Option) *Builder {
	b := &Builder{logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build extracts the test structure of a program. source must be the bytes
// the tree was parsed from.
func Build(root *sitter.Node, source []byte, opts ...Option) (*TestFileStructure, error) {
	return NewBuilder(opts...).Build(root, source)
}

// Build extracts the test structure of a program.
func (b *Builder) Build(root *sitter.Node, source []byte) (*TestFileStructure, error) {
	if root == nil {
		return nil, fmt.Errorf("%w: nil syntax tree", ErrInvalidArgument)
	}
	if root.Type() != "program" {
		return nil, fmt.Errorf("%w: expected program node, got %s", ErrInvalidArgument, root.Type())
	}

	state := &buildState{
		source:    source,
		filename:  b.filename,
		logger:    b.logger,
		structure: newTestFileStructure(b.filename),
	}

	for _, stmt := range Statements(root) {
		state.recognize(stmt)
	}
	state.finalize()

	return state.structure, nil
}

// buildState accumulates one file's structure. It never escapes Build.
type buildState struct {
	source    []byte
	filename  string
	logger    *slog.Logger
	structure *TestFileStructure
}

func (s *buildState) recognize(stmt *sitter.Node) {
	switch stmt.Type() {
	case "expression_statement":
		expr := Unparenthesize(parser.FirstNamedChild(stmt))
		if expr == nil {
			return
		}
		switch expr.Type() {
		case "call_expression":
			// TestCase("Name", { testFoo: function() {} });
			s.createTestCase(expr)
		case "assignment_expression":
			// tc = TestCase("Name");
			s.recognizeAssignment(stmt, expr)
		}
	case "variable_declaration", "lexical_declaration":
		// var tc = TestCase("Name");
		s.recognizeDeclaration(stmt)
	}
}

func (s *buildState) recognizeAssignment(stmt, assignment *sitter.Node) {
	tc, ok := s.createTestCase(assignment.ChildByFieldName("right"))
	if !ok {
		return
	}

	left := assignment.ChildByFieldName("left")
	if left == nil || left.Type() != "identifier" {
		return
	}
	s.collectPrototypeTests(tc, parser.GetNodeText(left, s.source), stmt)
}

func (s *buildState) recognizeDeclaration(stmt *sitter.Node) {
	for _, declarator := range parser.NamedChildren(stmt) {
		if declarator.Type() != "variable_declarator" {
			continue
		}

		tc, ok := s.createTestCase(declarator.ChildByFieldName("value"))
		if !ok {
			continue
		}

		name := declarator.ChildByFieldName("name")
		if name == nil || name.Type() != "identifier" {
			continue
		}
		s.collectPrototypeTests(tc, parser.GetNodeText(name, s.source), stmt)
	}
}

func (s *buildState) createTestCase(node *sitter.Node) (*TestCaseStructure, bool) {
	node = Unparenthesize(node)
	if node == nil || node.Type() != "call_expression" {
		return nil, false
	}

	call, ok := MatchFactoryCall(node, s.source)
	if !ok {
		if factory, named := ReferencedName(node.ChildByFieldName("function"), s.source); named && IsFactoryName(factory) {
			s.logger.Debug("skipping test case without literal name",
				"file", s.filename,
				"factory", factory,
				"line", node.StartPoint().Row+1,
			)
		}
		return nil, false
	}

	tc := newTestCaseStructure(call, s.filename)
	s.structure.addTestCase(tc)

	if call.Methods != nil {
		for _, prop := range ObjectProperties(call.Methods, s.source) {
			tc.addTest(s.newPropertyTest(prop))
		}
	}

	s.logger.Debug("recognized test case",
		"file", s.filename,
		"name", tc.Name,
		"factory", tc.Factory,
		"inlineTests", tc.TestCount(),
	)
	return tc, true
}

func (s *buildState) newPropertyTest(prop ObjectProperty) *TestStructure {
	t := &TestStructure{
		Name:       prop.Name,
		NameAnchor: newAnchor(prop.Key, s.filename),
		Origin:     OriginProperty,
	}
	if prop.Function != nil {
		body := newAnchor(prop.Function, s.filename)
		t.Body = &body
	}
	return t
}

// collectPrototypeTests attaches every later `<reference>.prototype.<name> = ...`
// assignment to tc. The scan runs to the end of the enclosing block.
func (s *buildState) collectPrototypeTests(tc *TestCaseStructure, reference string, start *sitter.Node) {
	for _, stmt := range StatementsAfter(start) {
		assignment, ok := MatchAssignment(stmt)
		if !ok {
			continue
		}

		proto, ok := MatchPrototypeAssignment(assignment, s.source)
		if !ok || proto.Reference != reference {
			continue
		}

		definition := newAnchor(proto.Target, s.filename)
		t := &TestStructure{
			Name:       parser.GetNodeText(proto.MethodName, s.source),
			NameAnchor: newAnchor(proto.MethodName, s.filename),
			Origin:     OriginPrototype,
			Definition: &definition,
		}
		if fn, ok := FunctionLiteral(proto.Value); ok {
			body := newAnchor(fn, s.filename)
			t.Body = &body
		}
		tc.addTest(t)
	}
}

// finalize records display names and prototype markers in the side table.
func (s *buildState) finalize() {
	f := s.structure
	for _, tc := range f.testCases {
		for _, t := range tc.tests {
			name := t.Name
			f.annotate(t.NameAnchor.Range(), func(a *Annotation) { a.ElementName = name })
			if t.Definition != nil {
				f.annotate(t.Definition.Range(), func(a *Annotation) { a.PrototypeDefinition = true })
			}
		}
		caseName := tc.Name
		f.annotate(tc.Callee.Range(), func(a *Annotation) { a.ElementName = caseName })
	}
}

// DetectLanguage determines the language variant from the file extension.
// Unknown extensions are read as plain JavaScript.
func DetectLanguage(filename string) domain.Language {
	if lang, ok := domain.LanguageFromPath(filename); ok {
		return lang
	}
	return domain.LanguageJavaScript
}

// Parse parses JavaScript source and builds its test structure.
func Parse(ctx context.Context, source []byte, filename string, opts ...Option) (*TestFileStructure, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	lang := DetectLanguage(filename)
	tree, err := tspool.Parse(ctx, lang, source)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", filename, err)
	}
	defer tree.Close()

	opts = append([]Option{WithFilename(filename)}, opts...)
	return Build(tree.RootNode(), source, opts...)
}
