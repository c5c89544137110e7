package cas

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/cargonode/internal/core/ports"
)

// NodeID is the unique identifier for the result cache Graft node.
const NodeID graft.ID = "adapter.cas"

func init() {
	graft.Register(graft.Node[ports.ResultCacheFactory]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.ResultCacheFactory, error) {
			return func(projectDir string) ports.ResultCache {
				return Open(projectDir)
			}, nil
		},
	})
}
