package metrics

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/polybuild/internal/core/ports"
)

// NodeID is the unique identifier for the metrics opener Graft node.
const NodeID graft.ID = "adapter.metrics"

func init() {
	graft.Register(graft.Node[ports.MetricsOpener]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.MetricsOpener, error) {
			return Opener{}, nil
		},
	})
}
