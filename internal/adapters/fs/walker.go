// Package fs provides file system adapters for walking and checksumming files.
package fs

import (
	"io/fs"
	"iter"
	"path/filepath"
	"slices"
	"strings"
)

// DefaultIgnores are directory names never descended into.
var DefaultIgnores = []string{".git", ".jj", "node_modules", "__pycache__", ".venv", ".gradle"}

// Walker provides file walking functionality.
type Walker struct {
	ignores []string
}

// NewWalker creates a new Walker that skips DefaultIgnores plus the given names.
func NewWalker(extra ...string) *Walker {
	return &Walker{ignores: append(slices.Clone(DefaultIgnores), extra...)}
}

// WalkFiles yields every regular file under root in lexical order.
// Entries whose base name matches one of ignores are skipped. An absolute
// entry in ignores skips exactly that path.
func (w *Walker) WalkFiles(root string, ignores []string) iter.Seq[string] {
	return func(yield func(string) bool) {
		_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				// Unreadable entries are skipped rather than aborting the walk.
				if d != nil && d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}

			if path != root && w.ignored(path, d.Name(), ignores) {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}

			if d.IsDir() || !d.Type().IsRegular() {
				return nil
			}

			if !yield(path) {
				return filepath.SkipAll
			}
			return nil
		})
	}
}

// FilesWithExtension collects the files under root whose extension matches ext,
// compared case-insensitively.
func (w *Walker) FilesWithExtension(root, ext string) []string {
	var out []string
	for path := range w.WalkFiles(root, nil) {
		if strings.EqualFold(filepath.Ext(path), ext) {
			out = append(out, path)
		}
	}
	return out
}

func (w *Walker) ignored(path, name string, extra []string) bool {
	return slices.ContainsFunc(w.ignores, func(p string) bool { return matches(p, path, name) }) ||
		slices.ContainsFunc(extra, func(p string) bool { return matches(p, path, name) })
}

func matches(pattern, path, name string) bool {
	if filepath.IsAbs(pattern) {
		return filepath.Clean(pattern) == path
	}
	matched, _ := filepath.Match(pattern, name)
	return matched
}
