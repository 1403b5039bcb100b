package linear

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/polybuild/internal/adapters/detector"
	"go.trai.ch/polybuild/internal/core/ports"
	"go.trai.ch/polybuild/internal/ui/output"
)

// NodeID is the unique identifier for the renderer Graft node.
const NodeID graft.ID = "adapter.renderer"

func init() {
	graft.Register(graft.Node[ports.Renderer]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{detector.NodeID},
		Run: func(ctx context.Context) (ports.Renderer, error) {
			mode, err := graft.Dep[detector.Mode](ctx)
			if err != nil {
				return nil, err
			}
			if mode == detector.ModeInteractive {
				return NewRendererWithProfile(nil, nil, output.ColorProfile), nil
			}
			return NewRenderer(nil, nil), nil
		},
	})
}
