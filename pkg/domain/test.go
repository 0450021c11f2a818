package domain

// TestKind tells how a test method was declared.
type TestKind string

const (
	// TestKindInline is a method declared as a property of the object literal
	// passed to the test case factory.
	TestKindInline TestKind = "inline"
	// TestKindPrototype is a method assigned through Case.prototype.name = ...
	TestKindPrototype TestKind = "prototype"
)

// Test is a single test method of a test case.
type Test struct {
	Kind     TestKind `json:"kind"`
	Location Location `json:"location"`
	Name     string   `json:"name"`
	// HasBody is false when the assigned value is not a function literal.
	HasBody bool `json:"hasBody"`
}

// TestSuite is a TestCase or AsyncTestCase declaration.
type TestSuite struct {
	Async    bool     `json:"async,omitempty"`
	Location Location `json:"location"`
	Name     string   `json:"name"`
	Tests    []Test   `json:"tests,omitempty"`
}

// CountTests returns the number of test methods in the suite.
func (s *TestSuite) CountTests() int {
	return len(s.Tests)
}
