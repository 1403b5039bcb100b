package fs

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"

	"github.com/cespare/xxhash/v2"
	"go.trai.ch/polybuild/internal/core/domain"
	"go.trai.ch/zerr"
)

// Hasher computes fast content checksums for plugins and artifacts.
// These are not cache keys; the build cache derives its keys separately.
type Hasher struct{}

// NewHasher creates a new Hasher.
func NewHasher() *Hasher {
	return &Hasher{}
}

// FileHash computes the XXHash of a file's content.
func (h *Hasher) FileHash(path string) (uint64, error) {
	f, err := os.Open(path) //nolint:gosec // Path is controlled by caller
	if err != nil {
		return 0, zerr.With(zerr.Wrap(err, domain.ErrFileHashFailed.Error()), "path", path)
	}
	defer f.Close() //nolint:errcheck // Best effort close in defer

	digest := xxhash.New()
	if _, err := io.Copy(digest, f); err != nil {
		return 0, zerr.With(zerr.Wrap(err, domain.ErrFileHashFailed.Error()), "path", path)
	}

	return digest.Sum64(), nil
}

// Checksum combines the content hashes of files into one hex string.
// The order of files does not matter.
func (h *Hasher) Checksum(files []string) (string, error) {
	sorted := slices.Clone(files)
	slices.Sort(sorted)

	digest := xxhash.New()
	for _, path := range sorted {
		sum, err := h.FileHash(path)
		if err != nil {
			return "", err
		}
		_, _ = digest.WriteString(path)
		_, _ = digest.Write([]byte{0})
		if err := binary.Write(digest, binary.LittleEndian, sum); err != nil {
			return "", zerr.Wrap(err, "failed to write hash to digest")
		}
	}

	return fmt.Sprintf("%016x", digest.Sum64()), nil
}

// Artifact describes a produced file. A missing file yields an error.
func (h *Hasher) Artifact(path, kind string) (domain.BuildArtifact, error) {
	info, err := os.Stat(path)
	if err != nil {
		return domain.BuildArtifact{}, zerr.With(zerr.Wrap(err, "artifact missing"), "path", path)
	}

	artifact := domain.BuildArtifact{Path: path, Kind: kind, Size: info.Size()}
	if info.IsDir() {
		return artifact, nil
	}

	sum, err := h.FileHash(path)
	if err != nil {
		return domain.BuildArtifact{}, err
	}
	artifact.Checksum = fmt.Sprintf("%016x", sum)
	return artifact, nil
}

// Artifacts describes every path that exists, relative paths resolved against root.
// Missing paths are skipped.
func (h *Hasher) Artifacts(root, kind string, paths ...string) []domain.BuildArtifact {
	out := make([]domain.BuildArtifact, 0, len(paths))
	for _, p := range paths {
		if !filepath.IsAbs(p) {
			p = filepath.Join(root, p)
		}
		a, err := h.Artifact(p, kind)
		if err != nil {
			continue
		}
		out = append(out, a)
	}
	return out
}
