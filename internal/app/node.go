package app

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/polybuild/internal/adapters/cas"       //nolint:depguard // wired in app layer
	"go.trai.ch/polybuild/internal/adapters/config"    //nolint:depguard // wired in app layer
	"go.trai.ch/polybuild/internal/adapters/fs"        //nolint:depguard // wired in app layer
	"go.trai.ch/polybuild/internal/adapters/linear"    //nolint:depguard // wired in app layer
	"go.trai.ch/polybuild/internal/adapters/logger"    //nolint:depguard // wired in app layer
	"go.trai.ch/polybuild/internal/adapters/metrics"   //nolint:depguard // wired in app layer
	"go.trai.ch/polybuild/internal/adapters/shell"     //nolint:depguard // wired in app layer
	"go.trai.ch/polybuild/internal/adapters/system"    //nolint:depguard // wired in app layer
	"go.trai.ch/polybuild/internal/adapters/telemetry" //nolint:depguard // wired in app layer
	"go.trai.ch/polybuild/internal/adapters/watcher"   //nolint:depguard // wired in app layer
	"go.trai.ch/polybuild/internal/core/ports"
	"go.trai.ch/polybuild/internal/plugins"
)

const (
	// AppNodeID is the unique identifier for the main App Graft node.
	AppNodeID graft.ID = "app.main"
	// ComponentsNodeID is the unique identifier for the App components Graft node.
	ComponentsNodeID graft.ID = "app.components"
)

// Components contains the initialized application components the CLI needs.
type Components struct {
	App    *App
	Logger ports.Logger
}

func init() {
	graft.Register(graft.Node[*App]{
		ID:        AppNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			config.NodeID,
			logger.NodeID,
			shell.NodeID,
			fs.ResolverNodeID,
			system.NodeID,
			telemetry.TracerNodeID,
			linear.NodeID,
			cas.NodeID,
			metrics.NodeID,
			watcher.NodeID,
			plugins.NodeID,
		},
		Run: runAppNode,
	})

	graft.Register(graft.Node[*Components]{
		ID:        ComponentsNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{AppNodeID, logger.NodeID},
		Run: func(ctx context.Context) (*Components, error) {
			app, err := graft.Dep[*App](ctx)
			if err != nil {
				return nil, err
			}
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return &Components{App: app, Logger: log}, nil
		},
	})
}

func runAppNode(ctx context.Context) (*App, error) {
	var (
		d   Deps
		err error
	)
	if d.Loader, err = graft.Dep[ports.ConfigLoader](ctx); err != nil {
		return nil, err
	}
	if d.Logger, err = graft.Dep[ports.Logger](ctx); err != nil {
		return nil, err
	}
	if d.Runner, err = graft.Dep[ports.CommandRunner](ctx); err != nil {
		return nil, err
	}
	if d.Resolver, err = graft.Dep[ports.InputResolver](ctx); err != nil {
		return nil, err
	}
	if d.Probe, err = graft.Dep[ports.SystemProbe](ctx); err != nil {
		return nil, err
	}
	if d.Tracer, err = graft.Dep[ports.Tracer](ctx); err != nil {
		return nil, err
	}
	if d.Renderer, err = graft.Dep[ports.Renderer](ctx); err != nil {
		return nil, err
	}
	if d.Caches, err = graft.Dep[ports.CacheOpener](ctx); err != nil {
		return nil, err
	}
	if d.Metrics, err = graft.Dep[ports.MetricsOpener](ctx); err != nil {
		return nil, err
	}
	if d.Watchers, err = graft.Dep[ports.WatcherFactory](ctx); err != nil {
		return nil, err
	}
	builtins, err := graft.Dep[*plugins.Builtins](ctx)
	if err != nil {
		return nil, err
	}
	d.Plugins = builtins
	return New(d), nil
}
