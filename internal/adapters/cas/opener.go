package cas

import (
	"go.trai.ch/polybuild/internal/core/ports"
)

var _ ports.CacheOpener = (*Opener)(nil)

// Opener opens caches that share one key derivation and logger.
type Opener struct {
	keys   *Keyer
	logger ports.Logger
}

// NewOpener creates an Opener.
func NewOpener(keys *Keyer, logger ports.Logger) *Opener {
	return &Opener{keys: keys, logger: logger}
}

// Open opens the cache rooted at dir. Keys leave out dir and exclude.
func (o *Opener) Open(dir string, exclude ...string) (ports.BuildCache, error) {
	return NewCache(dir, o.keys.Excluding(append([]string{dir}, exclude...)...), o.logger)
}
