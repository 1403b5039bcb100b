package metrics

import "go.trai.ch/polybuild/internal/core/ports"

var _ ports.MetricsOpener = Opener{}

// Opener opens metrics stores.
type Opener struct{}

// Open opens the store at path.
func (Opener) Open(path string) (ports.MetricsStore, error) {
	return Open(path)
}
