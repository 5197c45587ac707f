// Package discovery implements component D of spec.md §2: six recognizer
// families that scan project source and configuration to produce
// candidate ResourceDefs plus Gap records for the convergence assembler.
package discovery

import "github.com/aurelia-tools/aurelia-ls/internal/ids"

// SourceFile is the minimal view discovery needs of a project file: its
// identity, path, and text. View-model ASTs are not modeled here — per
// spec.md §6 the compiler interacts with view-model source only through
// a ModuleResolver + VmReflection + the AST transform, so recognizers
// that need to inspect class/decorator shape work over lightweight
// pattern recognition of the source text, which is sufficient for
// recognizing the closed set of authoring shapes spec.md §4.D names
// (decorators, `.define()`, static members, conventions).
type SourceFile struct {
	ID         ids.SourceFileID
	URI        ids.DocumentURI
	Path       string // project-relative path, forward-slashed
	Text       string
	IsTemplate bool // true for .html, false for view-model source
}

// PackageJSON is the minimal shape of a project's package.json the
// third-party-package recognizer needs.
type PackageJSON struct {
	Dependencies    map[string]string
	DevDependencies map[string]string
	LockfileHash    string // content hash of the resolved lockfile
}

// Project is the discovery pass's full input: every source file plus
// project configuration (spec.md §4.D "Input").
type Project struct {
	Root    string
	Files   []SourceFile
	Package *PackageJSON // nil if the project has no package.json
}

// FileByPath returns the project file at the given project-relative
// path, if any.
func (p Project) FileByPath(path string) (SourceFile, bool) {
	for _, f := range p.Files {
		if f.Path == path {
			return f, true
		}
	}
	return SourceFile{}, false
}
