package discovery

import (
	"path"
	"strings"

	securejoin "github.com/cyphar/filepath-securejoin"
)

// secureRelative clamps rel (a project-relative path computed from a
// convention sibling-file guess or an `<import from>` specifier) to stay
// inside root, the same way a chroot jail treats excess `../` segments:
// they resolve to root itself rather than escaping it. The clamped path
// is returned relative to root so callers can still key off it with
// Project.FileByPath. Mirrors the teacher's use of filepath-securejoin to
// keep chart-relative paths from reading outside the chart directory.
func secureRelative(root, rel string) string {
	if root == "" {
		return path.Clean(rel) // no project root configured (e.g. unit tests); nothing to clamp against
	}
	full, err := securejoin.SecureJoin(root, rel)
	if err != nil {
		return path.Clean(rel)
	}
	trimmed := strings.TrimPrefix(full, root)
	return strings.TrimPrefix(trimmed, "/")
}
