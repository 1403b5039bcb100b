package cas

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/polybuild/internal/adapters/fs"
	"go.trai.ch/polybuild/internal/adapters/logger"
	"go.trai.ch/polybuild/internal/core/ports"
)

// NodeID is the unique identifier for the build cache opener Graft node.
const NodeID graft.ID = "adapter.build_cache"

func init() {
	graft.Register(graft.Node[ports.CacheOpener]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{fs.WalkerNodeID, logger.NodeID},
		Run: func(ctx context.Context) (ports.CacheOpener, error) {
			walker, err := graft.Dep[*fs.Walker](ctx)
			if err != nil {
				return nil, err
			}
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return NewOpener(NewKeyer(walker), log), nil
		},
	})
}
