package jstd

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/specvital/jstd/pkg/domain"
	"github.com/specvital/jstd/pkg/parser"
)

// Range is a half-open byte range [Start, End) in the source file.
type Range struct {
	Start int
	End   int
}

// Contains reports whether offset lies strictly inside the range.
// Offsets on either boundary are outside.
func (r Range) Contains(offset int) bool {
	return r.Start < offset && offset < r.End
}

// Anchor is an opaque source location of a syntax node.
type Anchor struct {
	Location domain.Location
}

func newAnchor(node *sitter.Node, filename string) Anchor {
	return Anchor{Location: parser.GetLocation(node, filename)}
}

// Range returns the byte range covered by the anchor.
func (a Anchor) Range() Range {
	return Range{Start: a.Location.StartByte, End: a.Location.EndByte}
}

// Origin tells which syntax declared a test method.
type Origin int

const (
	// OriginProperty is a key of the object literal passed to the factory.
	OriginProperty Origin = iota
	// OriginPrototype is a `Case.prototype.name = ...` assignment.
	OriginPrototype
)

func (o Origin) String() string {
	if o == OriginPrototype {
		return "prototype"
	}
	return "property"
}

// TestStructure is one test method of a test case.
type TestStructure struct {
	// Name is the property key or the assigned prototype member.
	Name string
	// NameAnchor is the location of the name token; navigation targets it.
	NameAnchor Anchor
	// Origin distinguishes inline and prototype declarations.
	Origin Origin
	// Definition covers the whole `Case.prototype.name` target. Nil for
	// inline methods.
	Definition *Anchor
	// Body is the function literal implementing the method. Nil when the
	// value is not a function literal.
	Body *Anchor
}

// IsPrototypeForm reports whether the method was assigned through a prototype.
func (t *TestStructure) IsPrototypeForm() bool {
	return t.Origin == OriginPrototype
}

// HasBody reports whether the method has an explorable function body.
func (t *TestStructure) HasBody() bool {
	return t.Body != nil
}

// TestCaseStructure is one TestCase / AsyncTestCase declaration.
type TestCaseStructure struct {
	// Name is the first, string literal, argument of the factory call.
	Name string
	// Factory is the factory that declared the case.
	Factory string
	// CallSite covers the whole factory call expression.
	CallSite Anchor
	// Callee covers the factory reference of the call.
	Callee Anchor

	tests       []*TestStructure
	testsByName map[string]*TestStructure
}

func newTestCaseStructure(call FactoryCall, filename string) *TestCaseStructure {
	return &TestCaseStructure{
		Name:        call.Name,
		Factory:     call.Factory,
		CallSite:    newAnchor(call.Call, filename),
		Callee:      newAnchor(call.Callee, filename),
		testsByName: make(map[string]*TestStructure),
	}
}

// Async reports whether the case was declared with AsyncTestCase.
func (c *TestCaseStructure) Async() bool {
	return c.Factory == FactoryAsyncTestCase
}

func (c *TestCaseStructure) addTest(t *TestStructure) {
	c.tests = append(c.tests, t)
	c.testsByName[t.Name] = t
}

// Tests returns the test methods in recognition order.
func (c *TestCaseStructure) Tests() []*TestStructure {
	return c.tests
}

// TestCount returns the number of recorded test methods.
func (c *TestCaseStructure) TestCount() int {
	return len(c.tests)
}

// Test returns the method with the given name. When names collide, the one
// recorded last wins.
func (c *TestCaseStructure) Test(name string) (*TestStructure, bool) {
	t, ok := c.testsByName[name]
	return t, ok
}

func (c *TestCaseStructure) findElement(r Range) (RunElement, bool) {
	if c.Callee.Range() == r || c.CallSite.Range() == r {
		return RunElement{TestCase: c}, true
	}
	for _, t := range c.tests {
		if t.NameAnchor.Range() == r {
			return RunElement{TestCase: c, Test: t}, true
		}
	}
	return RunElement{}, false
}

// RunElement identifies a runnable target: a whole test case, or one of its
// methods when Test is set.
type RunElement struct {
	TestCase *TestCaseStructure
	Test     *TestStructure
}

// Annotation is metadata attached to a syntax node range after a build.
type Annotation struct {
	// ElementName is the display name of the test case or method the range
	// names.
	ElementName string
	// PrototypeDefinition marks the left side of a prototype test assignment.
	PrototypeDefinition bool
}

// TestFileStructure is the test inventory of one JavaScript file.
// It is read-only once returned by Build and safe for concurrent readers.
type TestFileStructure struct {
	// Path is the file name the anchors refer to.
	Path string

	testCases       []*TestCaseStructure
	testCasesByName map[string]*TestCaseStructure
	annotations     map[Range]Annotation
}

func newTestFileStructure(path string) *TestFileStructure {
	return &TestFileStructure{
		Path:            path,
		testCasesByName: make(map[string]*TestCaseStructure),
		annotations:     make(map[Range]Annotation),
	}
}

func (f *TestFileStructure) addTestCase(c *TestCaseStructure) {
	f.testCases = append(f.testCases, c)
	f.testCasesByName[c.Name] = c
}

func (f *TestFileStructure) annotate(r Range, apply func(*Annotation)) {
	a := f.annotations[r]
	apply(&a)
	f.annotations[r] = a
}

// TestCases returns the test cases in source order.
func (f *TestFileStructure) TestCases() []*TestCaseStructure {
	return f.testCases
}

// TestCaseCount returns the number of recognized test cases.
func (f *TestFileStructure) TestCaseCount() int {
	return len(f.testCases)
}

// TestCaseByName returns the test case with the given name. When names
// collide, the one recognized last wins.
func (f *TestFileStructure) TestCaseByName(name string) (*TestCaseStructure, bool) {
	c, ok := f.testCasesByName[name]
	return c, ok
}

// IsEmpty reports whether no test case has any test method.
func (f *TestFileStructure) IsEmpty() bool {
	for _, c := range f.testCases {
		if c.TestCount() > 0 {
			return false
		}
	}
	return true
}

// FindEnclosingTestCase returns the first test case whose call expression
// strictly contains offset.
func (f *TestFileStructure) FindEnclosingTestCase(offset int) (*TestCaseStructure, bool) {
	for _, c := range f.testCases {
		if c.CallSite.Range().Contains(offset) {
			return c, true
		}
	}
	return nil, false
}

// FindElement returns the first test case or method whose own anchor covers
// exactly r.
func (f *TestFileStructure) FindElement(r Range) (RunElement, bool) {
	for _, c := range f.testCases {
		if el, ok := c.findElement(r); ok {
			return el, true
		}
	}
	return RunElement{}, false
}

// Lookup returns the navigation target for a test case, or for one of its
// methods when methodName is not empty.
func (f *TestFileStructure) Lookup(testCaseName, methodName string) (Anchor, bool) {
	c, ok := f.testCasesByName[testCaseName]
	if !ok {
		return Anchor{}, false
	}
	if methodName == "" {
		return c.CallSite, true
	}
	t, ok := c.Test(methodName)
	if !ok {
		return Anchor{}, false
	}
	return t.NameAnchor, true
}

// Contains reports whether Lookup resolves the given pair.
func (f *TestFileStructure) Contains(testCaseName, methodName string) bool {
	_, ok := f.Lookup(testCaseName, methodName)
	return ok
}

// TopLevelNames returns the test case names in source order.
func (f *TestFileStructure) TopLevelNames() []string {
	names := make([]string, 0, len(f.testCases))
	for _, c := range f.testCases {
		names = append(names, c.Name)
	}
	return names
}

// ChildNames returns the method names of the named test case, or an empty
// slice when it is unknown.
func (f *TestFileStructure) ChildNames(testCaseName string) []string {
	c, ok := f.testCasesByName[testCaseName]
	if !ok {
		return []string{}
	}
	names := make([]string, 0, c.TestCount())
	for _, t := range c.tests {
		names = append(names, t.Name)
	}
	return names
}

// AnnotationAt returns the annotation recorded for the exact range r.
func (f *TestFileStructure) AnnotationAt(r Range) (Annotation, bool) {
	a, ok := f.annotations[r]
	return a, ok
}

// ElementNameAt returns the test case or method name attached to r.
func (f *TestFileStructure) ElementNameAt(r Range) (string, bool) {
	a, ok := f.annotations[r]
	if !ok || a.ElementName == "" {
		return "", false
	}
	return a.ElementName, true
}

// IsPrototypeDefinitionAt reports whether r is the left side of a prototype
// test assignment.
func (f *TestFileStructure) IsPrototypeDefinitionAt(r Range) bool {
	return f.annotations[r].PrototypeDefinition
}

// ToTestFile projects the structure into the inventory domain.
func (f *TestFileStructure) ToTestFile(framework string, lang domain.Language) *domain.TestFile {
	file := &domain.TestFile{
		Framework: framework,
		Language:  lang,
		Path:      f.Path,
	}

	for _, c := range f.testCases {
		suite := domain.TestSuite{
			Async:    c.Async(),
			Location: c.CallSite.Location,
			Name:     c.Name,
		}
		for _, t := range c.tests {
			kind := domain.TestKindInline
			if t.IsPrototypeForm() {
				kind = domain.TestKindPrototype
			}
			suite.Tests = append(suite.Tests, domain.Test{
				Kind:     kind,
				Location: t.NameAnchor.Location,
				Name:     t.Name,
				HasBody:  t.HasBody(),
			})
		}
		file.Suites = append(file.Suites, suite)
	}

	return file
}
