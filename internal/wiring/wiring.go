// Package wiring registers all Graft nodes for the application.
package wiring

import (
	// Register adapter nodes.
	_ "go.trai.ch/polybuild/internal/adapters/cas"
	_ "go.trai.ch/polybuild/internal/adapters/config"
	_ "go.trai.ch/polybuild/internal/adapters/detector"
	_ "go.trai.ch/polybuild/internal/adapters/fs"
	_ "go.trai.ch/polybuild/internal/adapters/linear"
	_ "go.trai.ch/polybuild/internal/adapters/logger"
	_ "go.trai.ch/polybuild/internal/adapters/metrics"
	_ "go.trai.ch/polybuild/internal/adapters/shell"
	_ "go.trai.ch/polybuild/internal/adapters/system"
	_ "go.trai.ch/polybuild/internal/adapters/telemetry"
	_ "go.trai.ch/polybuild/internal/adapters/watcher"
	// Register app and plugin nodes.
	_ "go.trai.ch/polybuild/internal/app"
	_ "go.trai.ch/polybuild/internal/plugins"
)
