package detector

import (
	"context"
	"os"

	"github.com/grindlemire/graft"
)

// NodeID is the unique identifier for the output mode Graft node.
const NodeID graft.ID = "adapter.detector"

// EnvMode names the variable that overrides detection, using ResolveMode spellings.
const EnvMode = "POLYBUILD_OUTPUT"

func init() {
	graft.Register(graft.Node[Mode]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (Mode, error) {
			return ResolveMode(DetectEnvironment(), os.Getenv(EnvMode)), nil
		},
	})
}
