// Package wiring registers all Graft nodes for the application.
package wiring

import (
	// Register adapter nodes.
	_ "go.trai.ch/cargonode/internal/adapters/cas"
	_ "go.trai.ch/cargonode/internal/adapters/config"
	_ "go.trai.ch/cargonode/internal/adapters/fs"
	_ "go.trai.ch/cargonode/internal/adapters/journal"
	_ "go.trai.ch/cargonode/internal/adapters/logger"
	_ "go.trai.ch/cargonode/internal/adapters/report"
	_ "go.trai.ch/cargonode/internal/adapters/shell"
	_ "go.trai.ch/cargonode/internal/adapters/telemetry/progrock"
	// Register app and engine nodes.
	_ "go.trai.ch/cargonode/internal/app"
	_ "go.trai.ch/cargonode/internal/engine/workflow"
)
