package watcher

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/polybuild/internal/adapters/logger"
	"go.trai.ch/polybuild/internal/core/ports"
)

// NodeID is the unique identifier for the watcher factory Graft node.
const NodeID graft.ID = "adapter.watcher"

// Factory implements ports.WatcherFactory.
type Factory struct {
	Logger ports.Logger
}

// NewWatcher creates a fresh fsnotify-backed Watcher.
func (f Factory) NewWatcher() (ports.Watcher, error) {
	w, err := NewWatcher(f.Logger)
	if err != nil {
		return nil, err
	}
	return w, nil
}

func init() {
	graft.Register(graft.Node[ports.WatcherFactory]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{logger.NodeID},
		Run: func(ctx context.Context) (ports.WatcherFactory, error) {
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return Factory{Logger: log}, nil
		},
	})
}
