package framework

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfigScope_IsTestFile(t *testing.T) {
	t.Parallel()

	scope := NewConfigScope("project/jsTestDriver.conf", &Config{
		Load:    []string{"src/*.js"},
		Test:    []string{"test/**/*.js"},
		Exclude: []string{"test/fixtures/**"},
	})

	tests := []struct {
		name string
		path string
		want bool
	}{
		{name: "should match test pattern", path: "project/test/unit/fooTest.js", want: true},
		{name: "should reject load-only file", path: "project/src/foo.js", want: false},
		{name: "should reject excluded file", path: "project/test/fixtures/data.js", want: false},
		{name: "should reject file outside base dir", path: "other/test/fooTest.js", want: false},
		{name: "should reject sibling with common prefix", path: "project2/test/fooTest.js", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, scope.IsTestFile(tt.path))
		})
	}
}

func TestConfigScope_TestPatterns(t *testing.T) {
	t.Parallel()

	t.Run("should fall back to load patterns", func(t *testing.T) {
		t.Parallel()

		scope := NewConfigScope("jsTestDriver.conf", &Config{Load: []string{"./all/*.js"}})

		assert.Equal(t, []string{"./all/*.js"}, scope.TestPatterns())
		assert.True(t, scope.IsTestFile("all/fooTest.js"))
		assert.False(t, scope.IsTestFile("other/fooTest.js"))
	})

	t.Run("should accept everything without patterns", func(t *testing.T) {
		t.Parallel()

		scope := NewConfigScope("jsTestDriver.conf", &Config{})

		assert.True(t, scope.IsTestFile("deep/dir/fooTest.js"))
	})
}

func TestConfigScope_Contains(t *testing.T) {
	t.Parallel()

	scope := NewConfigScope("conf/jsTestDriver.conf", &Config{
		BasePath: "..",
		Load:     []string{"lib/**/*.js"},
		Test:     []string{"spec/*.js"},
		Exclude:  []string{"lib/vendor/**"},
	})

	assert.Equal(t, ".", scope.BaseDir)
	assert.True(t, scope.Contains("lib/a/b.js"))
	assert.True(t, scope.Contains("spec/aTest.js"))
	assert.False(t, scope.Contains("lib/vendor/jquery.js"))
	assert.False(t, scope.Contains("docs/index.js"))

	var nilScope *ConfigScope
	assert.False(t, nilScope.Contains("lib/a.js"))
	assert.False(t, nilScope.IsTestFile("lib/a.js"))
}

func TestConfigScope_OutsideRoot(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		configPath string
		basePath   string
		want       bool
	}{
		{name: "should stay inside without basepath", configPath: "jsTestDriver.conf", want: false},
		{name: "should stay inside when basepath climbs to root", configPath: "conf/jsTestDriver.conf", basePath: "..", want: false},
		{name: "should leave root when basepath climbs past it", configPath: "jsTestDriver.conf", basePath: "..", want: true},
		{name: "should leave root through nested parents", configPath: "a/jsTestDriver.conf", basePath: "../../shared", want: true},
		{name: "should stay inside for sibling named like a parent", configPath: "jsTestDriver.conf", basePath: "..lib", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			scope := NewConfigScope(tt.configPath, &Config{BasePath: tt.basePath})
			assert.Equal(t, tt.want, scope.OutsideRoot())
		})
	}

	var nilScope *ConfigScope
	assert.False(t, nilScope.OutsideRoot())
}
