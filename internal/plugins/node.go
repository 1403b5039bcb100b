package plugins

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/polybuild/internal/adapters/fs"
	"go.trai.ch/polybuild/internal/adapters/shell"
	"go.trai.ch/polybuild/internal/adapters/system"
	"go.trai.ch/polybuild/internal/core/ports"
)

// NodeID is the unique identifier for the built-in plugin set Graft node.
const NodeID graft.ID = "plugins.builtin"

func init() {
	graft.Register(graft.Node[*Builtins]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{shell.NodeID, system.NodeID, fs.WalkerNodeID, fs.HasherNodeID},
		Run: func(ctx context.Context) (*Builtins, error) {
			runner, err := graft.Dep[ports.CommandRunner](ctx)
			if err != nil {
				return nil, err
			}
			probe, err := graft.Dep[ports.SystemProbe](ctx)
			if err != nil {
				return nil, err
			}
			walker, err := graft.Dep[*fs.Walker](ctx)
			if err != nil {
				return nil, err
			}
			hasher, err := graft.Dep[*fs.Hasher](ctx)
			if err != nil {
				return nil, err
			}
			return NewBuiltins(runner, probe, walker, hasher), nil
		},
	})
}
