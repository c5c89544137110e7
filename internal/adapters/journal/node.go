package journal

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/cargonode/internal/core/ports"
)

// NodeID is the unique identifier for the journal Graft node.
const NodeID graft.ID = "adapter.journal"

func init() {
	graft.Register(graft.Node[ports.JournalFactory]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.JournalFactory, error) {
			return func(projectDir string) ports.Journal {
				return Open(projectDir)
			}, nil
		},
	})
}
