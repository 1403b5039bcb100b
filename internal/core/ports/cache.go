package ports

import "go.trai.ch/polybuild/internal/core/domain"

// BuildCache maps content-derived keys to stored build results.
//
//go:generate mockgen -source=cache.go -destination=mocks/mock_cache.go -package=mocks
type BuildCache interface {
	// Key computes the content hash of a target relative to root.
	Key(target *domain.BuildTarget, root string) (string, error)

	// IsCached reports whether both the index entry and the marker file exist.
	IsCached(key string) bool

	// Get returns the stored result for key. A hit reports CacheHit and a
	// near-zero duration.
	Get(key string) (*domain.BuildResult, bool)

	// Store records a successful result. Unsuccessful results are ignored.
	Store(key string, result *domain.BuildResult) error

	// Stats reports the number of entries and their size on disk.
	Stats() (domain.CacheStats, error)

	// Clear removes every entry.
	Clear() error
}

// CacheOpener opens a build cache rooted at a directory.
type CacheOpener interface {
	// Open opens the cache at dir. Keys computed by the cache never cover
	// dir itself or the exclude directories.
	Open(dir string, exclude ...string) (BuildCache, error)
}
