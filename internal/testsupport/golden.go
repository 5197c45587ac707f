// Package testsupport collects the fixtures and golden-file helpers
// shared across this module's _test.go files, the way the teacher's
// internal/test package centralizes the same for its own suite rather
// than letting every package hand-roll its own copy.
package testsupport

import (
	"bytes"
	"flag"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

var updateGolden = flag.Bool("update", false, "update golden files")

// TestingT is the subset of *testing.T golden-file assertions need.
type TestingT interface {
	Helper()
	Fatalf(format string, args ...any)
}

// AssertGoldenString asserts that actual matches the contents of
// testdata/filename (or filename itself, if absolute), rewriting the
// golden file instead of failing when -update is passed.
func AssertGoldenString(t TestingT, actual, filename string) {
	t.Helper()
	if err := compare([]byte(actual), goldenPath(filename)); err != nil {
		t.Fatalf("%v", err)
	}
}

// AssertGoldenBytes is AssertGoldenString for already-encoded output
// (e.g. a serialized plan).
func AssertGoldenBytes(t TestingT, actual []byte, filename string) {
	t.Helper()
	if err := compare(actual, goldenPath(filename)); err != nil {
		t.Fatalf("%v", err)
	}
}

func goldenPath(filename string) string {
	if filepath.IsAbs(filename) {
		return filename
	}
	return filepath.Join("testdata", filename)
}

func compare(actual []byte, filename string) error {
	actual = normalize(actual)
	if *updateGolden {
		if err := os.WriteFile(filename, actual, 0o644); err != nil {
			return err
		}
	}
	expected, err := os.ReadFile(filename)
	if err != nil {
		return errors.Wrapf(err, "unable to read golden file %s", filename)
	}
	expected = normalize(expected)
	if !bytes.Equal(expected, actual) {
		return errors.Errorf("does not match golden file %s\n\nWANT:\n%s\n\nGOT:\n%s\n", filename, expected, actual)
	}
	return nil
}

func normalize(in []byte) []byte {
	return bytes.ReplaceAll(in, []byte("\r\n"), []byte("\n"))
}

// Lines splits a byte slice into normalized lines, trimming one trailing
// newline — useful when a custom per-line comparison is needed for
// output containing non-deterministic fields such as timestamps.
func Lines(raw []byte) []string {
	return strings.Split(strings.TrimSuffix(string(normalize(raw)), "\n"), "\n")
}
