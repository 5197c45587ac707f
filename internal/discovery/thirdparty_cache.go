package discovery

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"github.com/aurelia-tools/aurelia-ls/internal/semantics"
)

// ThirdPartyCacheEntry is the on-disk shape of one analyzed package's
// cached resource defs, content-addressed by lockfile+config hash
// (spec.md §6 "Cache layout").
type ThirdPartyCacheEntry struct {
	SchemaVersion string                    `json:"schemaVersion"`
	Package       string                    `json:"package"`
	Resources     []serializedResourceDef   `json:"resources"`
}

type serializedResourceDef struct {
	Kind    string `json:"kind"`
	Name    string `json:"name"`
	Package string `json:"package"`
}

func toSerialized(defs []semantics.ResourceDef) []serializedResourceDef {
	out := make([]serializedResourceDef, 0, len(defs))
	for _, d := range defs {
		out = append(out, serializedResourceDef{Kind: string(d.Kind), Name: d.Name.Value, Package: d.Package})
	}
	return out
}

func fromSerialized(entries []serializedResourceDef) []semantics.ResourceDef {
	out := make([]semantics.ResourceDef, 0, len(entries))
	for _, e := range entries {
		out = append(out, semantics.ResourceDef{
			Kind:    semantics.ResourceKind(e.Kind),
			Name:    semantics.NewSourced(e.Name, semantics.OriginSource, nil),
			Package: e.Package,
		})
	}
	return out
}

// ThirdPartyCache is the port the third-party-package recognizer reads
// and writes through. FileCache is the production implementation
// (`.aurelia-cache/npm-analysis/...`, spec.md §6); tests use an
// in-memory fake.
type ThirdPartyCache interface {
	Get(schemaVersion, fingerprint, pkg string) (ThirdPartyCacheEntry, bool, error)
	Put(schemaVersion, fingerprint, pkg string, entry ThirdPartyCacheEntry) error
}

// FileCache implements ThirdPartyCache against the layout
// `<projectRoot>/.aurelia-cache/npm-analysis/<schemaVersion>/<fingerprint>/<package>.json`.
// Entries are never written atomically (spec.md §6): a write that is
// interrupted mid-flight is detected on the next read as invalid JSON
// and reported as `aurelia/gap/cache-corrupt`, then re-analyzed. A
// per-entry file lock (github.com/gofrs/flock) guards concurrent writers
// from the same process tree without requiring atomic rename.
type FileCache struct {
	ProjectRoot string
}

func (c FileCache) path(schemaVersion, fingerprint, pkg string) string {
	safePkg := filepath.Clean(pkg)
	return filepath.Join(c.ProjectRoot, ".aurelia-cache", "npm-analysis", schemaVersion, fingerprint, safePkg+".json")
}

func (c FileCache) Get(schemaVersion, fingerprint, pkg string) (ThirdPartyCacheEntry, bool, error) {
	p := c.path(schemaVersion, fingerprint, pkg)
	data, err := os.ReadFile(p)
	if err != nil {
		if os.IsNotExist(err) {
			return ThirdPartyCacheEntry{}, false, nil
		}
		return ThirdPartyCacheEntry{}, false, err
	}
	var entry ThirdPartyCacheEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return ThirdPartyCacheEntry{}, false, &CacheCorruptError{Path: p, Cause: err}
	}
	return entry, true, nil
}

func (c FileCache) Put(schemaVersion, fingerprint, pkg string, entry ThirdPartyCacheEntry) error {
	p := c.path(schemaVersion, fingerprint, pkg)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	lock := flock.New(p + ".lock")
	if err := lock.Lock(); err != nil {
		return err
	}
	defer lock.Unlock()

	data, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(p, data, 0o644)
}

// CacheCorruptError marks a cache read that failed to unmarshal: callers
// must translate this into an `aurelia/gap/cache-corrupt` diagnostic and
// fall back to fresh analysis (spec.md §7).
type CacheCorruptError struct {
	Path  string
	Cause error
}

func (e *CacheCorruptError) Error() string {
	return "corrupt cache entry at " + e.Path + ": " + e.Cause.Error()
}

func (e *CacheCorruptError) Unwrap() error { return e.Cause }

// Fingerprint computes the cache key for a project's current
// lockfile+config state (spec.md §4.D.6 "A content-hash of the project's
// lockfile plus configuration is the cache fingerprint").
func Fingerprint(lockfileHash, configHash string) string {
	sum := sha256.Sum256([]byte(lockfileHash + "|" + configHash))
	return hex.EncodeToString(sum[:])[:16]
}
