package main

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aurelia-tools/aurelia-ls/internal/discovery"
	"github.com/aurelia-tools/aurelia-ls/internal/ids"
)

var sourceExtensions = map[string]bool{
	".html": true,
	".ts":   true,
	".js":   true,
}

// loadProject walks root, building a discovery.Project from every
// recognized source file plus package.json, if present. Deterministic
// (spec.md §9): files are visited in a fixed sorted order and assigned
// SourceFileIDs in that order.
func loadProject(root string) (discovery.Project, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return discovery.Project{}, err
	}

	var paths []string
	err = filepath.WalkDir(abs, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			switch d.Name() {
			case "node_modules", ".git", ".aurelia-cache":
				return filepath.SkipDir
			}
			return nil
		}
		if sourceExtensions[filepath.Ext(path)] {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return discovery.Project{}, err
	}
	sort.Strings(paths)

	files := make([]discovery.SourceFile, 0, len(paths))
	for i, p := range paths {
		text, err := os.ReadFile(p)
		if err != nil {
			return discovery.Project{}, err
		}
		rel, err := filepath.Rel(abs, p)
		if err != nil {
			rel = p
		}
		rel = filepath.ToSlash(rel)
		files = append(files, discovery.SourceFile{
			ID:         ids.SourceFileID(i + 1),
			URI:        ids.DocumentURI("file://" + filepath.ToSlash(p)),
			Path:       rel,
			Text:       string(text),
			IsTemplate: strings.HasSuffix(p, ".html"),
		})
	}

	project := discovery.Project{Root: abs, Files: files}
	if pkg, ok := loadPackageJSON(abs); ok {
		project.Package = pkg
	}
	return project, nil
}

func loadPackageJSON(root string) (*discovery.PackageJSON, bool) {
	raw, err := os.ReadFile(filepath.Join(root, "package.json"))
	if err != nil {
		return nil, false
	}
	var doc struct {
		Dependencies    map[string]string `json:"dependencies"`
		DevDependencies map[string]string `json:"devDependencies"`
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, false
	}
	return &discovery.PackageJSON{
		Dependencies:    doc.Dependencies,
		DevDependencies: doc.DevDependencies,
		LockfileHash:    lockfileHash(root),
	}, true
}

func lockfileHash(root string) string {
	for _, name := range []string{"package-lock.json", "pnpm-lock.yaml", "yarn.lock"} {
		if raw, err := os.ReadFile(filepath.Join(root, name)); err == nil {
			sum := sha256.Sum256(raw)
			return hex.EncodeToString(sum[:])
		}
	}
	return ""
}

// templateFiles returns every template SourceFile in project, in file
// order.
func templateFiles(project discovery.Project) []discovery.SourceFile {
	out := make([]discovery.SourceFile, 0, len(project.Files))
	for _, f := range project.Files {
		if f.IsTemplate {
			out = append(out, f)
		}
	}
	return out
}
