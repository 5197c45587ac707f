// Package span implements half-open source-position intervals and the
// small amount of path canonicalization the pipeline needs to use them as
// map keys across documents.
package span

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/aurelia-tools/aurelia-ls/internal/ids"
)

// Span is a half-open integer interval [Start, End) of offsets into a
// single file, identified by File, in the units the host parsers report:
// the default parsers report byte offsets into the source string, and
// nothing in the pipeline converts them to UTF-16 code units. A zero-value Span
// (Start == End == 0, File == 0) is distinguished from "no span" by
// callers checking Valid(); invariant 8's "non-zero spans" requirement
// applies to referential-index sites, not to every Span in the system.
type Span struct {
	File  ids.SourceFileID
	Start int
	End   int
}

// Len returns the span's length in code units.
func (s Span) Len() int { return s.End - s.Start }

// Valid reports whether the span is well-formed and non-empty.
func (s Span) Valid() bool { return s.End > s.Start }

// Contains reports whether offset falls within [Start, End).
func (s Span) Contains(offset int) bool { return offset >= s.Start && offset < s.End }

// Overlaps reports whether s and o share at least one code unit and
// belong to the same file.
func (s Span) Overlaps(o Span) bool {
	return s.File == o.File && s.Start < o.End && o.Start < s.End
}

// Intersect returns the overlapping sub-span of s and o. ok is false if
// they do not overlap or belong to different files.
func (s Span) Intersect(o Span) (result Span, ok bool) {
	if !s.Overlaps(o) {
		return Span{}, false
	}
	start := max(s.Start, o.Start)
	end := min(s.End, o.End)
	return Span{File: s.File, Start: start, End: end}, true
}

func (s Span) String() string {
	return fmt.Sprintf("%d[%d:%d)", s.File, s.Start, s.End)
}

// Canonicalize normalizes a file-system or document path for use as a
// stable map key: forward slashes, cleaned, and (on platforms where it
// matters) without a trailing slash. Project-relative paths are left
// relative; absolute paths are cleaned but not resolved through symlinks
// since the workspace never touches the real filesystem for that.
func Canonicalize(p string) string {
	p = filepath.ToSlash(filepath.Clean(p))
	if p != "/" {
		p = strings.TrimSuffix(p, "/")
	}
	return p
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
