package domain

// TestFile represents a parsed test file.
type TestFile struct {
	// Framework is the strategy that produced this file (e.g., "jstestdriver").
	Framework string `json:"framework"`
	// Language is the programming language of this file.
	Language Language `json:"language"`
	// Path is the file path relative to the scan root.
	Path string `json:"path"`
	// Suites contains the test cases in source order.
	Suites []TestSuite `json:"suites,omitempty"`
}

// CountTests returns the total number of test methods in this file.
func (f *TestFile) CountTests() int {
	count := 0
	for _, s := range f.Suites {
		count += s.CountTests()
	}
	return count
}

// Inventory represents a collection of test files in a project.
type Inventory struct {
	// Files contains all parsed test files.
	Files []TestFile `json:"files"`
	// RootPath is the root directory path of the scanned project.
	RootPath string `json:"rootPath"`
}

// CountTests returns the total number of tests across all files.
func (inv Inventory) CountTests() int {
	count := 0
	for _, f := range inv.Files {
		count += f.CountTests()
	}
	return count
}

// CountSuites returns the total number of test cases across all files.
func (inv Inventory) CountSuites() int {
	count := 0
	for _, f := range inv.Files {
		count += len(f.Suites)
	}
	return count
}
