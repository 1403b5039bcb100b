package shell

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/polybuild/internal/adapters/detector"
	"go.trai.ch/polybuild/internal/core/ports"
)

// NodeID is the unique identifier for the command runner Graft node.
const NodeID graft.ID = "adapter.command_runner"

func init() {
	graft.Register(graft.Node[ports.CommandRunner]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{detector.NodeID},
		Run: func(ctx context.Context) (ports.CommandRunner, error) {
			mode, err := graft.Dep[detector.Mode](ctx)
			if err != nil {
				return nil, err
			}
			return NewRunner().WithPTY(mode == detector.ModeInteractive), nil
		},
	})
}
