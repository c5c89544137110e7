package app

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/cargonode/internal/adapters/cas"                //nolint:depguard // Wired in app layer
	"go.trai.ch/cargonode/internal/adapters/config"             //nolint:depguard // Wired in app layer
	"go.trai.ch/cargonode/internal/adapters/journal"            //nolint:depguard // Wired in app layer
	"go.trai.ch/cargonode/internal/adapters/logger"             //nolint:depguard // Wired in app layer
	"go.trai.ch/cargonode/internal/adapters/report"             //nolint:depguard // Wired in app layer
	"go.trai.ch/cargonode/internal/adapters/telemetry/progrock" //nolint:depguard // Wired in app layer
	"go.trai.ch/cargonode/internal/core/ports"
	"go.trai.ch/cargonode/internal/engine/workflow"
)

const (
	// AppNodeID is the unique identifier for the main App Graft node.
	AppNodeID graft.ID = "app.main"
	// ComponentsNodeID is the unique identifier for the App components Graft node.
	ComponentsNodeID graft.ID = "app.components"
)

func init() {
	// App Node
	graft.Register(graft.Node[*App]{
		ID:        AppNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			config.NodeID,
			workflow.NodeID,
			journal.NodeID,
			cas.NodeID,
			report.NodeID,
			logger.NodeID,
		},
		Run: runAppNode,
	})

	// Components Node
	graft.Register(graft.Node[*Components]{
		ID:        ComponentsNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			AppNodeID,
			logger.NodeID,
			progrock.NodeID,
		},
		Run: runComponentsNode,
	})
}

func runAppNode(ctx context.Context) (*App, error) {
	loader, err := graft.Dep[ports.ConfigLoader](ctx)
	if err != nil {
		return nil, err
	}

	executor, err := graft.Dep[*workflow.Executor](ctx)
	if err != nil {
		return nil, err
	}

	journals, err := graft.Dep[ports.JournalFactory](ctx)
	if err != nil {
		return nil, err
	}

	caches, err := graft.Dep[ports.ResultCacheFactory](ctx)
	if err != nil {
		return nil, err
	}

	reporter, err := graft.Dep[ports.Reporter](ctx)
	if err != nil {
		return nil, err
	}

	log, err := graft.Dep[ports.Logger](ctx)
	if err != nil {
		return nil, err
	}

	return New(loader, executor, journals, caches, reporter, log), nil
}

func runComponentsNode(ctx context.Context) (*Components, error) {
	app, err := graft.Dep[*App](ctx)
	if err != nil {
		return nil, err
	}

	log, err := graft.Dep[ports.Logger](ctx)
	if err != nil {
		return nil, err
	}

	telemetry, err := graft.Dep[ports.Telemetry](ctx)
	if err != nil {
		return nil, err
	}

	return &Components{
		App:       app,
		Logger:    log,
		Telemetry: telemetry,
	}, nil
}
