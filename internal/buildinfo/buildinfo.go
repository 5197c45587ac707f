// Package buildinfo reports the tool's own version and the command
// envelope's wire-format version, the way the teacher's internal/version
// reports Helm's version and chart-API compatibility. Adapted rather
// than copied: there is no Kubernetes client-go version to report here,
// and the envelope's schemaVersion (spec.md §4.K, §6) takes its place.
package buildinfo

import (
	"runtime"
	"strings"
	"testing"
)

// version is the current release of aurelia-ls. Update on release.
var (
	version      = "v0.1"
	metadata     = ""
	gitCommit    = ""
	gitTreeState = ""
)

// EnvelopeSchemaVersion is the command envelope's schemaVersion
// (internal/workspace/envelope.go), surfaced here so `version` can
// report it alongside the tool version without
// internal/workspace needing to be imported by buildinfo's own callers.
const EnvelopeSchemaVersion = 1

// Info describes the compile-time build.
type Info struct {
	Version       string `json:"version,omitempty"`
	GitCommit     string `json:"gitCommit,omitempty"`
	GitTreeState  string `json:"gitTreeState,omitempty"`
	GoVersion     string `json:"goVersion,omitempty"`
	SchemaVersion int    `json:"schemaVersion"`
}

// GetVersion returns the semver string of the version, with any build
// metadata suffix.
func GetVersion() string {
	if metadata == "" {
		return version
	}
	return version + "+" + metadata
}

// GetUserAgent returns a user agent string suitable for any HTTP client
// the module resolver or cache layer issues requests with.
func GetUserAgent() string {
	return "aurelia-ls/" + strings.TrimPrefix(GetVersion(), "v")
}

// Get returns the full build info, stripping GoVersion during a test
// run for deterministic golden output (mirrors the teacher's equivalent
// stripping of its own non-deterministic fields under `go test`).
func Get() Info {
	goVersion := runtime.Version()
	if testing.Testing() {
		goVersion = ""
	}
	return Info{
		Version:       GetVersion(),
		GitCommit:     gitCommit,
		GitTreeState:  gitTreeState,
		GoVersion:     goVersion,
		SchemaVersion: EnvelopeSchemaVersion,
	}
}
