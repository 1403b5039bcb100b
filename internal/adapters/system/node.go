package system

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/polybuild/internal/core/ports"
)

// NodeID is the unique identifier for the system probe Graft node.
const NodeID graft.ID = "adapter.system_probe"

func init() {
	graft.Register(graft.Node[ports.SystemProbe]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.SystemProbe, error) {
			return NewProbe(), nil
		},
	})
}
