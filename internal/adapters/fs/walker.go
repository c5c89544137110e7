package fs

import (
	iofs "io/fs"
	"iter"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/gobwas/glob"
	"go.trai.ch/cargonode/internal/core/domain"
	"go.trai.ch/zerr"
)

// DefaultIgnores are directory names never descended into when expanding inputs.
var DefaultIgnores = []string{"node_modules", domain.StateDirName}

// Walker expands input patterns into the files they name.
type Walker struct {
	ignores []string
}

// NewWalker creates a Walker that skips DefaultIgnores.
func NewWalker() *Walker {
	return &Walker{ignores: DefaultIgnores}
}

// WalkFiles yields every file below root, skipping VCS metadata and ignored directories.
// Unreadable entries are skipped.
func (w *Walker) WalkFiles(root string) iter.Seq[string] {
	return func(yield func(string) bool) {
		_ = filepath.WalkDir(root, func(path string, d iofs.DirEntry, err error) error {
			if err != nil {
				if d != nil && d.IsDir() && path != root {
					return filepath.SkipDir
				}
				return nil
			}

			if d.IsDir() {
				if path != root && w.shouldSkipDir(d.Name()) {
					return filepath.SkipDir
				}
				return nil
			}

			if !yield(path) {
				return filepath.SkipAll
			}
			return nil
		})
	}
}

func (w *Walker) shouldSkipDir(name string) bool {
	if name == ".git" || name == ".jj" {
		return true
	}
	return slices.Contains(w.ignores, name)
}

// Match returns the sorted, de-duplicated files named by patterns.
// Literal paths may point anywhere and must exist; directories contribute every
// file below them. Glob patterns are matched against slash separated paths
// relative to root, where "**" spans directories.
func (w *Walker) Match(root string, patterns []string) ([]string, error) {
	seen := make(map[string]struct{})
	var globs []glob.Glob

	for _, pattern := range patterns {
		if !isGlob(pattern) {
			if err := w.addLiteral(root, pattern, seen); err != nil {
				return nil, err
			}
			continue
		}

		compiled, err := compilePattern(pattern)
		if err != nil {
			return nil, err
		}
		globs = append(globs, compiled...)
	}

	if len(globs) > 0 {
		for path := range w.WalkFiles(root) {
			rel, err := filepath.Rel(root, path)
			if err != nil {
				continue
			}
			rel = filepath.ToSlash(rel)
			if slices.ContainsFunc(globs, func(g glob.Glob) bool { return g.Match(rel) }) {
				seen[path] = struct{}{}
			}
		}
	}

	files := make([]string, 0, len(seen))
	for path := range seen {
		files = append(files, path)
	}
	slices.Sort(files)
	return files, nil
}

func (w *Walker) addLiteral(root, pattern string, seen map[string]struct{}) error {
	path := pattern
	if !filepath.IsAbs(path) {
		path = filepath.Join(root, path)
	}

	info, err := os.Stat(path)
	if err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrInputNotFound.Error()), "path", path)
	}
	if !info.IsDir() {
		seen[path] = struct{}{}
		return nil
	}
	for file := range w.WalkFiles(path) {
		seen[file] = struct{}{}
	}
	return nil
}

func isGlob(pattern string) bool {
	return strings.ContainsAny(pattern, "*?[{")
}

// compilePattern compiles pattern with '/' as the separator. A "**/" segment
// also matches zero directories, so "src/**/*.ts" covers "src/main.ts".
func compilePattern(pattern string) ([]glob.Glob, error) {
	if filepath.IsAbs(pattern) {
		return nil, zerr.With(zerr.Wrap(zerr.New("glob must be relative to the working directory"),
			domain.ErrInvalidInputPattern.Error()), "pattern", pattern)
	}

	pattern = strings.TrimPrefix(filepath.ToSlash(pattern), "./")
	variants := []string{pattern}
	if strings.Contains(pattern, "**/") {
		variants = append(variants, strings.ReplaceAll(pattern, "**/", ""))
	}

	compiled := make([]glob.Glob, 0, len(variants))
	for _, v := range variants {
		g, err := glob.Compile(v, '/')
		if err != nil {
			return nil, zerr.With(zerr.Wrap(err, domain.ErrInvalidInputPattern.Error()), "pattern", pattern)
		}
		compiled = append(compiled, g)
	}
	return compiled, nil
}
