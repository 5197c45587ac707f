package hostiface

import (
	"os"
	"path/filepath"

	"github.com/aurelia-tools/aurelia-ls/internal/ids"
)

// defaultModuleResolver resolves specifiers against a static path->id
// table handed to it up front (e.g. by the workspace engine after it has
// assigned SourceFileIDs), rather than walking a real module-resolution
// algorithm — real resolution is always a host concern (spec.md §6).
type defaultModuleResolver struct {
	byPath map[string]ids.SourceFileID
}

// NewDefaultModuleResolver builds a ModuleResolver over a fixed
// path→SourceFileID table.
func NewDefaultModuleResolver(byPath map[string]ids.SourceFileID) ModuleResolver {
	return defaultModuleResolver{byPath: byPath}
}

func (r defaultModuleResolver) Resolve(_ ids.SourceFileID, specifier string) (ids.SourceFileID, bool) {
	id, ok := r.byPath[specifier]
	return id, ok
}

// defaultVmReflection answers both VmReflection facts with fixed values;
// a real host supplies these from its own language service.
type defaultVmReflection struct {
	prefix string
}

// NewDefaultVmReflection returns a VmReflection using "any" as every
// view-model's root type expression and the given synthetic prefix.
func NewDefaultVmReflection(syntheticPrefix string) VmReflection {
	if syntheticPrefix == "" {
		syntheticPrefix = "__au_"
	}
	return defaultVmReflection{prefix: syntheticPrefix}
}

func (v defaultVmReflection) RootVmTypeExpr(ids.SourceFileID) string { return "any" }
func (v defaultVmReflection) SyntheticPrefix() string                { return v.prefix }

// defaultFileSystem is a thin os.ReadFile/filepath.Glob-backed
// FileSystem, the only implementation that touches real disk.
type defaultFileSystem struct{}

// NewDefaultFileSystem returns the built-in disk-backed FileSystem.
func NewDefaultFileSystem() FileSystem { return defaultFileSystem{} }

func (defaultFileSystem) ReadFile(path string) ([]byte, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return data, true, nil
}

func (defaultFileSystem) Glob(root, pattern string) ([]string, error) {
	return filepath.Glob(filepath.Join(root, pattern))
}
