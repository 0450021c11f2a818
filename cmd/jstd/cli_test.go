package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `TestCase("Calculator", {
  testAdd: function() {
    add(1, 2);
  },
  testPending: pending
});

var tc = AsyncTestCase("Remote");
tc.prototype.testFetch = function(queue) {};
`

func TestMain(m *testing.M) {
	color.NoColor = true
	os.Exit(m.Run())
}

func writeSample(t *testing.T) (dir, file string) {
	t.Helper()

	dir = t.TempDir()
	file = filepath.Join(dir, "calculatorTest.js")
	require.NoError(t, os.WriteFile(file, []byte(sample), 0o644))
	return dir, file
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	cmd := newRootCmd(&stdout, &stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), err
}

func TestOutline(t *testing.T) {
	t.Parallel()

	_, file := writeSample(t)

	out, err := run(t, "outline", file)

	require.NoError(t, err)
	assert.Equal(t, file+`
  Calculator TestCase :1
    testAdd :2
    testPending (no body) :5
  Remote AsyncTestCase :8
    testFetch [prototype] :9
2 test cases, 3 tests
`, out)
}

func TestOutline_Verbose(t *testing.T) {
	t.Parallel()

	_, file := writeSample(t)

	var stdout, stderr bytes.Buffer
	cmd := newRootCmd(&stdout, &stderr)
	cmd.SetArgs([]string{"outline", "--verbose", file})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, stderr.String(), "recognized test case")
	assert.Contains(t, stderr.String(), "name=Calculator")
}

func TestOutline_MissingFile(t *testing.T) {
	t.Parallel()

	_, err := run(t, "outline", filepath.Join(t.TempDir(), "missing.js"))

	require.Error(t, err)
}

func TestLookup(t *testing.T) {
	t.Parallel()

	_, file := writeSample(t)

	tests := []struct {
		name    string
		args    []string
		want    string
		wantErr bool
	}{
		{name: "should print test case call site", args: []string{"Calculator"}, want: file + ":1:1\n"},
		{name: "should print inline method name", args: []string{"Calculator", "testAdd"}, want: file + ":2:3\n"},
		{name: "should print prototype method name", args: []string{"Remote", "testFetch"}, want: file + ":9:14\n"},
		{name: "should fail for unknown method", args: []string{"Calculator", "testMissing"}, wantErr: true},
		{name: "should fail for unknown test case", args: []string{"Missing"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			out, err := run(t, append([]string{"lookup", file}, tt.args...)...)

			if tt.wantErr {
				require.ErrorIs(t, err, errNotFound)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
		})
	}
}

func TestLocate(t *testing.T) {
	t.Parallel()

	_, file := writeSample(t)
	insideAdd := bytes.Index([]byte(sample), []byte("add(1, 2)"))
	insideCallee := bytes.Index([]byte(sample), []byte("estCase(\"Calc"))
	afterFirstCase := bytes.Index([]byte(sample), []byte("var tc"))

	tests := []struct {
		name    string
		offset  int
		want    string
		wantErr bool
	}{
		{name: "should name the enclosing method", offset: insideAdd, want: "Calculator.testAdd\n"},
		{name: "should name the test case outside any method", offset: insideCallee, want: "Calculator\n"},
		{name: "should fail outside every test case", offset: afterFirstCase, wantErr: true},
		{name: "should fail at the call start boundary", offset: 0, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			out, err := run(t, "locate", file, "--offset", strconv.Itoa(tt.offset))

			if tt.wantErr {
				require.ErrorIs(t, err, errNotFound)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
		})
	}
}

func TestScan(t *testing.T) {
	t.Parallel()

	dir, _ := writeSample(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "helper.js"), []byte("function helper() {}\n"), 0o644))

	out, err := run(t, "scan", dir, "--workers", "2")
	require.NoError(t, err)

	var got scanOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))

	assert.Equal(t, dir, got.RootPath)
	require.Len(t, got.Files, 1)
	assert.Equal(t, "calculatorTest.js", got.Files[0].Path)
	assert.Equal(t, "jstestdriver", got.Files[0].Framework)
	assert.Equal(t, 2, got.Stats.FilesScanned)
	assert.Equal(t, 1, got.Stats.FilesMatched)
	assert.Equal(t, 2, got.Stats.TestCases)
	assert.Equal(t, 3, got.Stats.Tests)
	assert.Empty(t, got.Errors)
}

func TestScan_Configs(t *testing.T) {
	t.Parallel()

	dir, _ := writeSample(t)
	conf := "server: http://localhost:4224\ntimeout: 30\ntest:\n  - \"*Test.js\"\nserve:\n  - fixtures/*.html\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "jsTestDriver.conf"), []byte(conf), 0o644))

	out, err := run(t, "scan", dir)
	require.NoError(t, err)

	var got scanOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))

	require.Len(t, got.Configs, 1)
	assert.Equal(t, configOutput{
		Path:    "jsTestDriver.conf",
		BaseDir: ".",
		Server:  "http://localhost:4224",
		Test:    []string{"*Test.js"},
		Serve:   []string{"fixtures/*.html"},
		Timeout: 30,
	}, got.Configs[0])
	require.Len(t, got.Files, 1)
	assert.Equal(t, 1, got.Stats.ConfigsFound)
}

func TestScan_RequiresDirectory(t *testing.T) {
	t.Parallel()

	_, err := run(t, "scan")

	require.Error(t, err)
}
