package jstd

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf16"
	"unicode/utf8"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/specvital/jstd/pkg/parser"
)

const (
	FactoryTestCase      = "TestCase"
	FactoryAsyncTestCase = "AsyncTestCase"

	prototypeProperty = "prototype"
)

// FactoryCall is a recognized TestCase(...) / AsyncTestCase(...) call.
type FactoryCall struct {
	// Call is the call_expression node.
	Call *sitter.Node
	// Callee is the function part of the call (identifier or member_expression).
	Callee *sitter.Node
	// Factory is the referenced factory name.
	Factory string
	// Name is the resolved test case name.
	Name string
	// Methods is the object literal passed as second argument, if any.
	Methods *sitter.Node
}

// Async reports whether the call declares an AsyncTestCase.
func (c FactoryCall) Async() bool {
	return c.Factory == FactoryAsyncTestCase
}

// PrototypeAssignment is a `<ref>.prototype.<method> = <value>` assignment.
type PrototypeAssignment struct {
	// Target is the whole left-hand side member_expression.
	Target *sitter.Node
	// Reference is the bare identifier the prototype belongs to.
	Reference string
	// MethodName is the property_identifier token naming the method.
	MethodName *sitter.Node
	// Value is the right-hand side.
	Value *sitter.Node
}

// Unparenthesize strips any number of enclosing parentheses.
func Unparenthesize(node *sitter.Node) *sitter.Node {
	for node != nil && node.Type() == "parenthesized_expression" {
		node = parser.FirstNamedChild(node)
	}
	return node
}

// ReferencedName returns the name a callee refers to: the identifier itself,
// or the final property of a member expression.
func ReferencedName(node *sitter.Node, source []byte) (string, bool) {
	node = Unparenthesize(node)
	if node == nil {
		return "", false
	}

	switch node.Type() {
	case "identifier":
		return parser.GetNodeText(node, source), true
	case "member_expression":
		prop := node.ChildByFieldName("property")
		if prop == nil || prop.Type() != "property_identifier" {
			return "", false
		}
		return parser.GetNodeText(prop, source), true
	default:
		return "", false
	}
}

// IsFactoryName reports whether name is one of the recognized test case factories.
func IsFactoryName(name string) bool {
	return name == FactoryTestCase || name == FactoryAsyncTestCase
}

// CallArguments returns the argument expressions of a call, skipping
// punctuation and comments.
func CallArguments(call *sitter.Node) []*sitter.Node {
	if call == nil || call.Type() != "call_expression" {
		return nil
	}
	return parser.NamedChildren(call.ChildByFieldName("arguments"))
}

// MatchFactoryCall checks that node is a call to TestCase or AsyncTestCase
// whose first argument is a string literal.
func MatchFactoryCall(node *sitter.Node, source []byte) (FactoryCall, bool) {
	node = Unparenthesize(node)
	if node == nil || node.Type() != "call_expression" {
		return FactoryCall{}, false
	}

	callee := node.ChildByFieldName("function")
	factory, ok := ReferencedName(callee, source)
	if !ok || !IsFactoryName(factory) {
		return FactoryCall{}, false
	}

	args := CallArguments(node)
	if len(args) == 0 {
		return FactoryCall{}, false
	}

	name, ok := StringLiteral(args[0], source)
	if !ok {
		return FactoryCall{}, false
	}

	call := FactoryCall{
		Call:    node,
		Callee:  callee,
		Factory: factory,
		Name:    name,
	}
	if len(args) >= 2 {
		if obj, ok := ObjectLiteral(args[1]); ok {
			call.Methods = obj
		}
	}
	return call, true
}

// StringLiteral extracts the value of a string literal. Template strings
// qualify only when they contain no substitutions.
func StringLiteral(node *sitter.Node, source []byte) (string, bool) {
	node = Unparenthesize(node)
	if node == nil {
		return "", false
	}

	switch node.Type() {
	case "string":
		return UnquoteString(parser.GetNodeText(node, source)), true
	case "template_string":
		if parser.FindChildByType(node, "template_substitution") != nil {
			return "", false
		}
		return UnquoteString(parser.GetNodeText(node, source)), true
	default:
		return "", false
	}
}

// ObjectLiteral returns node as an object literal.
func ObjectLiteral(node *sitter.Node) (*sitter.Node, bool) {
	node = Unparenthesize(node)
	if node == nil || node.Type() != "object" {
		return nil, false
	}
	return node, true
}

// FunctionLiteral returns node as a function literal.
func FunctionLiteral(node *sitter.Node) (*sitter.Node, bool) {
	node = Unparenthesize(node)
	if node == nil {
		return nil, false
	}

	switch node.Type() {
	case "function", "function_expression", "arrow_function", "generator_function":
		return node, true
	default:
		return nil, false
	}
}

// PropertyKey resolves the name of an object literal key.
// Computed keys are not resolvable.
func PropertyKey(key *sitter.Node, source []byte) (string, bool) {
	if key == nil {
		return "", false
	}

	switch key.Type() {
	case "property_identifier", "identifier", "number", "private_property_identifier":
		return parser.GetNodeText(key, source), true
	case "string":
		return StringLiteral(key, source)
	default:
		return "", false
	}
}

// ObjectProperty is one key/value entry of an object literal.
type ObjectProperty struct {
	Key   *sitter.Node
	Name  string
	Value *sitter.Node
	// Function is the function literal of the entry, nil if the value is
	// some other expression.
	Function *sitter.Node
}

// ObjectProperties lists the key/value entries of an object literal in
// source order. Method shorthand (`testFoo() {}`) counts as an entry whose
// value is the method itself. Spreads, shorthand properties and computed
// keys are skipped.
func ObjectProperties(obj *sitter.Node, source []byte) []ObjectProperty {
	var props []ObjectProperty

	for _, child := range parser.NamedChildren(obj) {
		switch child.Type() {
		case "pair":
			key := child.ChildByFieldName("key")
			name, ok := PropertyKey(key, source)
			if !ok {
				continue
			}
			value := child.ChildByFieldName("value")
			fn, _ := FunctionLiteral(value)
			props = append(props, ObjectProperty{Key: key, Name: name, Value: value, Function: fn})
		case "method_definition":
			key := child.ChildByFieldName("name")
			name, ok := PropertyKey(key, source)
			if !ok {
				continue
			}
			props = append(props, ObjectProperty{Key: key, Name: name, Value: child, Function: child})
		}
	}

	return props
}

// MatchAssignment returns the assignment expression of an expression statement.
func MatchAssignment(stmt *sitter.Node) (*sitter.Node, bool) {
	if stmt == nil || stmt.Type() != "expression_statement" {
		return nil, false
	}
	expr := Unparenthesize(parser.FirstNamedChild(stmt))
	if expr == nil || expr.Type() != "assignment_expression" {
		return nil, false
	}
	return expr, true
}

// MatchPrototypeAssignment checks that assignment has the exact qualifier
// chain `<ref>.prototype.<method>` on its left side, where <ref> is a bare
// identifier.
func MatchPrototypeAssignment(assignment *sitter.Node, source []byte) (PrototypeAssignment, bool) {
	if assignment == nil || assignment.Type() != "assignment_expression" {
		return PrototypeAssignment{}, false
	}

	target := assignment.ChildByFieldName("left")
	if target == nil || target.Type() != "member_expression" {
		return PrototypeAssignment{}, false
	}

	method := target.ChildByFieldName("property")
	if method == nil || method.Type() != "property_identifier" {
		return PrototypeAssignment{}, false
	}

	proto := target.ChildByFieldName("object")
	if proto == nil || proto.Type() != "member_expression" {
		return PrototypeAssignment{}, false
	}
	if parser.GetNodeText(proto.ChildByFieldName("property"), source) != prototypeProperty {
		return PrototypeAssignment{}, false
	}

	ref := proto.ChildByFieldName("object")
	if ref == nil || ref.Type() != "identifier" {
		return PrototypeAssignment{}, false
	}

	return PrototypeAssignment{
		Target:     target,
		Reference:  parser.GetNodeText(ref, source),
		MethodName: method,
		Value:      assignment.ChildByFieldName("right"),
	}, true
}

// UnquoteString removes JavaScript string quotes and resolves escapes to the
// literal's value. Template literals have their line terminators normalized
// to "\n". Text that is not a quoted literal is returned unchanged.
func UnquoteString(text string) string {
	if len(text) < 2 || text[0] != text[len(text)-1] {
		return text
	}

	switch text[0] {
	case '"', '\'':
		return unescape(text[1:len(text)-1], false)
	case '`':
		return unescape(text[1:len(text)-1], true)
	default:
		return text
	}
}

func unescape(s string, template bool) string {
	if !strings.ContainsAny(s, "\\\r") {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))

	for i := 0; i < len(s); {
		c := s[i]
		if c == '\r' && template {
			b.WriteByte('\n')
			i = skipLineFeed(s, i+1)
			continue
		}
		if c != '\\' || i+1 == len(s) {
			b.WriteByte(c)
			i++
			continue
		}

		i++
		switch e := s[i]; {
		case e == 'n':
			b.WriteByte('\n')
			i++
		case e == 't':
			b.WriteByte('\t')
			i++
		case e == 'r':
			b.WriteByte('\r')
			i++
		case e == 'b':
			b.WriteByte('\b')
			i++
		case e == 'f':
			b.WriteByte('\f')
			i++
		case e == 'v':
			b.WriteByte('\v')
			i++
		case e == '\r':
			// Line continuation.
			i = skipLineFeed(s, i+1)
		case e == '\n':
			i++
		case e == 'x':
			r, n, ok := hexEscape(s[i+1:])
			if !ok {
				b.WriteByte(e)
				i++
				continue
			}
			b.WriteRune(r)
			i += 1 + n
		case e == 'u':
			r, n, ok := unicodeEscape(s[i+1:])
			if !ok {
				b.WriteByte(e)
				i++
				continue
			}
			i += 1 + n
			if utf16.IsSurrogate(r) && strings.HasPrefix(s[i:], `\u`) {
				if low, m, ok := unicodeEscape(s[i+2:]); ok {
					if pair := utf16.DecodeRune(r, low); pair != utf8.RuneError {
						r = pair
						i += 2 + m
					}
				}
			}
			b.WriteRune(r)
		case e >= '0' && e <= '7':
			r, n := octalEscape(s[i:])
			b.WriteRune(r)
			i += n
		default:
			r, size := utf8.DecodeRuneInString(s[i:])
			i += size
			if r == '\u2028' || r == '\u2029' {
				continue
			}
			// Identity escape: \' \" \\ \/ \$ \d and so on.
			b.WriteRune(r)
		}
	}

	return b.String()
}

func skipLineFeed(s string, i int) int {
	if i < len(s) && s[i] == '\n' {
		return i + 1
	}
	return i
}

// hexEscape reads the two digits of a \x escape.
func hexEscape(s string) (rune, int, bool) {
	if len(s) < 2 {
		return 0, 0, false
	}
	v, err := strconv.ParseUint(s[:2], 16, 8)
	if err != nil {
		return 0, 0, false
	}
	return rune(v), 2, true
}

// unicodeEscape reads the digits of a \u escape: four hex digits or a
// braced code point up to U+10FFFF.
func unicodeEscape(s string) (rune, int, bool) {
	if strings.HasPrefix(s, "{") {
		end := strings.IndexByte(s, '}')
		if end < 2 {
			return 0, 0, false
		}
		v, err := strconv.ParseUint(s[1:end], 16, 32)
		if err != nil || v > unicode.MaxRune {
			return 0, 0, false
		}
		return rune(v), end + 1, true
	}

	if len(s) < 4 {
		return 0, 0, false
	}
	v, err := strconv.ParseUint(s[:4], 16, 16)
	if err != nil {
		return 0, 0, false
	}
	return rune(v), 4, true
}

// octalEscape reads a legacy octal escape. s starts at the first digit.
// A lone \0 is NUL.
func octalEscape(s string) (rune, int) {
	limit := 2
	if s[0] <= '3' {
		limit = 3
	}

	n := 0
	var v rune
	for n < len(s) && n < limit && s[n] >= '0' && s[n] <= '7' {
		v = v*8 + rune(s[n]-'0')
		n++
	}
	return v, n
}
