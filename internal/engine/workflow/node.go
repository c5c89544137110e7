package workflow

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/cargonode/internal/adapters/fs"                 //nolint:depguard // Wired in engine wiring
	"go.trai.ch/cargonode/internal/adapters/logger"             //nolint:depguard // Wired in engine wiring
	"go.trai.ch/cargonode/internal/adapters/report"             //nolint:depguard // Wired in engine wiring
	"go.trai.ch/cargonode/internal/adapters/shell"              //nolint:depguard // Wired in engine wiring
	"go.trai.ch/cargonode/internal/adapters/telemetry/progrock" //nolint:depguard // Wired in engine wiring
	"go.trai.ch/cargonode/internal/core/ports"
)

// NodeID is the unique identifier for the workflow executor Graft node.
const NodeID graft.ID = "engine.workflow"

func init() {
	graft.Register(graft.Node[*Executor]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			shell.NodeID,
			fs.HasherNodeID,
			report.NodeID,
			progrock.NodeID,
			logger.NodeID,
		},
		Run: func(ctx context.Context) (*Executor, error) {
			runner, err := graft.Dep[ports.ProcessRunner](ctx)
			if err != nil {
				return nil, err
			}

			hasher, err := graft.Dep[ports.Fingerprinter](ctx)
			if err != nil {
				return nil, err
			}

			reporter, err := graft.Dep[ports.Reporter](ctx)
			if err != nil {
				return nil, err
			}

			telemetry, err := graft.Dep[ports.Telemetry](ctx)
			if err != nil {
				return nil, err
			}

			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}

			return NewExecutor(runner, hasher, reporter, telemetry, log), nil
		},
	})
}
