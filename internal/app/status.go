package app

import (
	"context"
	"time"

	"github.com/spf13/pflag"
	"go.trai.ch/polybuild/internal/core/domain"
)

const (
	recentWindow = 24 * time.Hour
	recentLimit  = 10
)

// List returns the configured targets in lexical order.
func (a *App) List(_ context.Context, flags *pflag.FlagSet) ([]domain.BuildTarget, error) {
	s, err := a.open(flags)
	if err != nil {
		return nil, err
	}
	defer s.close()

	names := s.ws.Graph.Names()
	targets := make([]domain.BuildTarget, 0, len(names))
	for _, name := range names {
		t, _ := s.ws.Graph.Target(name)
		targets = append(targets, t)
	}
	return targets, nil
}

// TargetStatus is the cache state of one target.
type TargetStatus struct {
	Name   string `json:"name"`
	Key    string `json:"cache_key,omitempty"`
	Cached bool   `json:"cached"`
}

// Status describes the project cache, its recent builds and the host.
type Status struct {
	Root         string                `json:"root"`
	CacheDir     string                `json:"cache_dir"`
	Cache        domain.CacheStats     `json:"cache"`
	Targets      []TargetStatus        `json:"targets"`
	RecentBuilds []domain.BuildMetrics `json:"recent_builds,omitempty"`
	System       domain.SystemMetrics  `json:"system"`
}

// Status reports whether each target is cached. The metrics store is
// optional; without it no recent builds are listed.
func (a *App) Status(ctx context.Context, flags *pflag.FlagSet) (Status, error) {
	s, err := a.open(flags)
	if err != nil {
		return Status{}, err
	}
	defer s.close()

	a.openCache(s)
	_ = a.openMetrics(s, false)

	out := Status{Root: s.ws.Root, CacheDir: s.settings.CacheDir}
	if s.cache != nil {
		if out.Cache, err = s.cache.Stats(); err != nil {
			a.logger.Error(err)
		}
	}
	for _, name := range s.ws.Graph.Names() {
		key, cached := a.cacheState(s, name)
		out.Targets = append(out.Targets, TargetStatus{Name: name, Key: key, Cached: cached})
	}

	if s.store != nil {
		now := a.now()
		records, err := s.store.Range(ctx, now.Add(-recentWindow), now)
		if err != nil {
			a.logger.Error(err)
		}
		out.RecentBuilds = records[max(0, len(records)-recentLimit):]
	}
	out.System = a.monitor(s).System(ctx)
	return out, nil
}

// cacheState returns the key a build of the target would look up and
// whether it is cached. A key that cannot be computed is logged and
// reported empty.
func (a *App) cacheState(s *session, name string) (string, bool) {
	if s.cache == nil {
		return "", false
	}
	t, _ := s.ws.Graph.Target(name)
	if t.CacheKey != "" {
		return t.CacheKey, s.cache.IsCached(t.CacheKey)
	}
	key, err := s.cache.Key(&t, s.ws.Root)
	if err != nil {
		a.logger.Warn("cannot compute cache key of " + name + ": " + err.Error())
		return "", false
	}
	return key, s.cache.IsCached(key)
}

// Explanation describes one target and what building it involves.
type Explanation struct {
	Target       domain.BuildTarget
	Dependencies []string
	Dependents   []string
	Order        [][]string
	Key          string
	Cached       bool
}

// Explain describes the named target, its direct neighbours and the groups
// building it would run.
func (a *App) Explain(_ context.Context, name string, flags *pflag.FlagSet) (Explanation, error) {
	s, err := a.open(flags)
	if err != nil {
		return Explanation{}, err
	}
	defer s.close()

	order, err := s.ws.Graph.ExecutionOrder([]string{name})
	if err != nil {
		return Explanation{}, err
	}
	t, _ := s.ws.Graph.Target(name)

	a.openCache(s)
	key, cached := a.cacheState(s, name)
	return Explanation{
		Target:       t,
		Dependencies: s.ws.Graph.DependenciesOf(name),
		Dependents:   s.ws.Graph.Dependents(name),
		Order:        order,
		Key:          key,
		Cached:       cached,
	}, nil
}
