package discovery

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSecureRelativePassesThroughOrdinaryPaths(t *testing.T) {
	assert.Equal(t, "src/foo.html", secureRelative("/proj", "src/foo.html"))
}

func TestSecureRelativeClampsTraversal(t *testing.T) {
	got := secureRelative("/proj", "../../etc/passwd")
	assert.NotContains(t, got, "..", "a clamped path must never retain a `..` segment that could escape root")
}

func TestSecureRelativeSkipsClampWithNoRoot(t *testing.T) {
	assert.Equal(t, "../../etc/passwd", secureRelative("", "../../etc/passwd"))
}
