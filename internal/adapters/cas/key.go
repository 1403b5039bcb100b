package cas

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"hash"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"go.trai.ch/polybuild/internal/adapters/fs"
	"go.trai.ch/polybuild/internal/core/domain"
	"go.trai.ch/zerr"
)

// Keyer derives content-addressed cache keys.
//
// A key covers the target name, its commands and every input: files by
// content, directories by the relative path and mtime of each contained
// file, and missing inputs by path. Directory entries use mtime instead of
// content so large trees stay cheap to key. Excluded paths never contribute.
type Keyer struct {
	walker  *fs.Walker
	exclude []string
}

// NewKeyer creates a Keyer that walks directories with walker.
func NewKeyer(walker *fs.Walker) *Keyer {
	return &Keyer{walker: walker}
}

// Excluding returns a copy of k that also leaves out the given directories.
// Relative paths are ignored; they cannot be told apart from base names.
func (k *Keyer) Excluding(paths ...string) *Keyer {
	out := &Keyer{walker: k.walker, exclude: slices.Clone(k.exclude)}
	for _, p := range paths {
		if !filepath.IsAbs(p) {
			continue
		}
		if p = filepath.Clean(p); !slices.Contains(out.exclude, p) {
			out.exclude = append(out.exclude, p)
		}
	}
	return out
}

func (k *Keyer) excluded(path string) bool {
	for _, e := range k.exclude {
		if path == e || strings.HasPrefix(path, e+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

// Key returns the hex sha256 of target relative to root.
func (k *Keyer) Key(target *domain.BuildTarget, root string) (string, error) {
	h := sha256.New()

	writeField(h, target.Name)
	for _, cmd := range target.Commands {
		writeField(h, cmd)
	}
	writeField(h, "")

	for _, input := range target.Inputs {
		if err := k.hashInput(h, root, input); err != nil {
			return "", zerr.With(zerr.Wrap(err, domain.ErrCacheKeyFailed.Error()), "target", target.Name)
		}
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}

func (k *Keyer) hashInput(h hash.Hash, root, input string) error {
	path := input
	if !filepath.IsAbs(path) {
		path = filepath.Join(root, input)
	}

	if isGlob(input) {
		matches, err := filepath.Glob(path)
		if err != nil {
			return zerr.With(zerr.Wrap(err, "invalid glob"), "input", input)
		}
		if len(matches) == 0 {
			writeMissing(h, input)
			return nil
		}
		slices.Sort(matches)
		for _, m := range matches {
			if err := k.hashPath(h, root, m); err != nil {
				return err
			}
		}
		return nil
	}

	return k.hashPath(h, root, path)
}

func (k *Keyer) hashPath(h hash.Hash, root, path string) error {
	path = filepath.Clean(path)
	if k.excluded(path) {
		return nil
	}

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			writeMissing(h, rel(root, path))
			return nil
		}
		return zerr.With(zerr.Wrap(err, "failed to stat input"), "path", path)
	}

	if info.IsDir() {
		return k.hashDir(h, path)
	}
	return hashFile(h, rel(root, path), path)
}

func (k *Keyer) hashDir(h hash.Hash, dir string) error {
	type stamp struct {
		rel   string
		mtime int64
	}
	var stamps []stamp
	for file := range k.walker.WalkFiles(dir, k.exclude) {
		info, err := os.Stat(file)
		if err != nil {
			continue
		}
		stamps = append(stamps, stamp{rel: rel(dir, file), mtime: info.ModTime().UnixNano()})
	}
	slices.SortFunc(stamps, func(a, b stamp) int { return strings.Compare(a.rel, b.rel) })

	writeField(h, "dir:"+filepath.Base(dir))
	var buf [8]byte
	for _, s := range stamps {
		writeField(h, s.rel)
		binary.LittleEndian.PutUint64(buf[:], uint64(s.mtime)) //nolint:gosec // Sign is irrelevant for hashing
		_, _ = h.Write(buf[:])
	}
	return nil
}

func hashFile(h hash.Hash, name, path string) error {
	f, err := os.Open(path) //nolint:gosec // Path is controlled by caller
	if err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrFileHashFailed.Error()), "path", path)
	}
	defer f.Close() //nolint:errcheck // Best effort close in defer

	writeField(h, "file:"+name)
	if _, err := io.Copy(h, f); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrFileHashFailed.Error()), "path", path)
	}
	writeField(h, "")
	return nil
}

func writeMissing(h hash.Hash, name string) {
	writeField(h, "missing:"+name)
}

func writeField(h hash.Hash, s string) {
	_, _ = io.WriteString(h, s)
	_, _ = h.Write([]byte{0})
}

func isGlob(p string) bool {
	return strings.ContainsAny(p, "*?[")
}

func rel(base, path string) string {
	r, err := filepath.Rel(base, path)
	if err != nil {
		return path
	}
	return filepath.ToSlash(r)
}
