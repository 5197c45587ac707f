package workspace

// compileCache is the in-memory, content-addressed compilation cache
// spec.md §4.K/§5 describe ("compilation cache keyed by content hash").
// Distinct from discovery.FileCache (the on-disk npm-analysis cache,
// which already persists across process restarts): this cache only
// needs to survive one workspace's lifetime, so a plain map suffices —
// grounded on the same "index by content hash, never partially update an
// entry" shape, without the disk/flock machinery that cache doesn't need.
type compileCache struct {
	entries map[cacheKey]*compiledDoc
}

type cacheKey struct {
	hash         string
	graphVersion int
}

func newCompileCache() *compileCache {
	return &compileCache{entries: map[cacheKey]*compiledDoc{}}
}

func (c *compileCache) get(hash string, graphVersion int) (*compiledDoc, bool) {
	cd, ok := c.entries[cacheKey{hash, graphVersion}]
	return cd, ok
}

func (c *compileCache) put(hash string, graphVersion int, cd *compiledDoc) {
	c.entries[cacheKey{hash, graphVersion}] = cd
}
