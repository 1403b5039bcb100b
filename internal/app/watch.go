package app

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/pflag"
	"go.trai.ch/polybuild/internal/adapters/watcher" //nolint:depguard // the debouncer is shared with the adapter
	"go.trai.ch/polybuild/internal/core/domain"
	"go.trai.ch/zerr"
)

// WatchOptions configures Watch.
type WatchOptions struct {
	Flags *pflag.FlagSet
	// OnReport, when set, receives the report of every rebuild.
	OnReport func(domain.Report, error)
}

// Watch builds targets, then rebuilds them whenever a file under one of
// their inputs, or the config file, changes. It returns when ctx ends.
func (a *App) Watch(ctx context.Context, targets []string, opts WatchOptions) error {
	if len(targets) == 0 {
		return domain.ErrNoTargetsSpecified
	}

	s, err := a.open(opts.Flags)
	if err != nil {
		return err
	}
	root := s.ws.Root
	skip := []string{s.settings.CacheDir, s.settings.MetricsDir, domain.StateDirName}

	rebuild := func() {
		s, err := a.open(opts.Flags)
		if err != nil {
			a.logger.Error(err)
			return
		}
		defer s.close()

		report, err := a.build(ctx, s, s.ws.Graph, targets, false)
		if err != nil && !errors.Is(err, domain.ErrBuildFailed) {
			a.logger.Error(err)
		}
		if opts.OnReport != nil {
			opts.OnReport(report, err)
		}
	}
	s.close()

	w, err := a.watchers.NewWatcher()
	if err != nil {
		return err
	}
	defer func() { _ = w.Stop() }()

	watchCtx, stop := context.WithCancel(ctx)
	defer stop()
	if err := w.Start(watchCtx, root, skip); err != nil {
		return zerr.Wrap(err, domain.ErrWatchFailed.Error())
	}

	var (
		mu      sync.Mutex
		changed []string
	)
	trigger := make(chan struct{}, 1)
	deb := watcher.NewDebouncer(a.debounce, func(paths []string) {
		mu.Lock()
		changed = append(changed, paths...)
		mu.Unlock()
		select {
		case trigger <- struct{}{}:
		default:
		}
	})
	defer deb.Stop()

	go func() {
		for ev := range w.Events() {
			deb.Add(ev.Path)
		}
	}()

	rebuild()
	a.logger.Info(fmt.Sprintf("watching %s for changes", root))

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-trigger:
		}

		mu.Lock()
		paths := changed
		changed = nil
		mu.Unlock()
		if len(paths) == 0 {
			continue
		}

		if hit, ok := a.relevant(paths, targets); ok {
			a.logger.Info(fmt.Sprintf("%s changed, rebuilding", hit))
			rebuild()
		}
	}
}

// relevant reports the first path that lies under an input of the requested
// targets or their dependencies, or is the config file itself.
func (a *App) relevant(paths, targets []string) (string, bool) {
	ws, err := a.loader.Load(a.workDir)
	if err != nil {
		// The rebuild reports the broken config.
		return paths[0], true
	}

	watched := inputPaths(ws, targets)
	for _, p := range paths {
		if filepath.Clean(p) == filepath.Clean(ws.ConfigPath) {
			return p, true
		}
		for _, in := range watched {
			if covers(in, p) {
				return p, true
			}
		}
	}
	return "", false
}

// inputPaths lists the absolute inputs of targets and their dependencies.
func inputPaths(ws *domain.Workspace, targets []string) []string {
	groups, err := ws.Graph.ExecutionOrder(targets)
	if err != nil {
		return nil
	}

	var out []string
	for _, group := range groups {
		for _, name := range group {
			t, _ := ws.Graph.Target(name)
			for _, in := range t.Inputs {
				if !filepath.IsAbs(in) {
					in = filepath.Join(ws.Root, in)
				}
				out = append(out, filepath.Clean(in))
			}
		}
	}
	return out
}

// covers reports whether path is input, lies below it, or matches it as a glob.
func covers(input, path string) bool {
	path = filepath.Clean(path)
	if path == input || strings.HasPrefix(path, input+string(filepath.Separator)) {
		return true
	}
	if strings.ContainsAny(input, "*?[") {
		ok, _ := filepath.Match(input, path)
		return ok
	}
	return false
}
