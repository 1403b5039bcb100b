// Package registry holds the plugins available to a run and selects them for files.
package registry

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"go.trai.ch/polybuild/internal/core/domain"
	"go.trai.ch/polybuild/internal/core/ports"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// Factory constructs a plugin.
type Factory func() (ports.Plugin, error)

type patternEntry struct {
	index   int
	pattern domain.FilePattern
}

// Registry maintains the plugins of one run. Indexes are built while
// registering and are read-only once discovery is done, so lookups take no lock.
type Registry struct {
	logger  ports.Logger
	plugins []ports.Plugin
	meta    []domain.PluginMetadata
	byName  map[string]int
	byExt   map[string][]patternEntry
	byCap   map[domain.Capability][]int
}

// New returns an empty registry.
func New(logger ports.Logger) *Registry {
	r := &Registry{logger: logger}
	r.Clear()
	return r
}

// Clear removes every plugin.
func (r *Registry) Clear() {
	r.plugins = nil
	r.meta = nil
	r.byName = make(map[string]int)
	r.byExt = make(map[string][]patternEntry)
	r.byCap = make(map[domain.Capability][]int)
}

// Register adds p. Names must be unique.
func (r *Registry) Register(p ports.Plugin) error {
	meta := p.Metadata()
	if meta.Name == "" {
		return zerr.New("plugin name is required")
	}
	if _, exists := r.byName[meta.Name]; exists {
		return zerr.With(zerr.Wrap(domain.ErrPluginAlreadyRegistered, domain.ErrPluginAlreadyRegistered.Error()), "plugin", meta.Name)
	}

	idx := len(r.plugins)
	r.plugins = append(r.plugins, p)
	r.meta = append(r.meta, meta)
	r.byName[meta.Name] = idx

	for _, pattern := range p.FilePatterns() {
		ext := strings.ToLower(pattern.Extension)
		r.byExt[ext] = append(r.byExt[ext], patternEntry{index: idx, pattern: pattern})
	}
	for _, c := range meta.Capabilities {
		r.byCap[c] = append(r.byCap[c], idx)
	}
	return nil
}

// Discover instantiates and registers each factory in order. Failing
// factories are logged and skipped. It returns the number registered.
func (r *Registry) Discover(factories ...Factory) int {
	count := 0
	for _, factory := range factories {
		p, err := factory()
		if err != nil {
			r.logger.Error(zerr.Wrap(err, "failed to create plugin"))
			continue
		}
		if err := r.Register(p); err != nil {
			r.logger.Error(err)
			continue
		}
		count++
	}
	return count
}

// Get returns the plugin with the given name.
func (r *Registry) Get(name string) (ports.Plugin, bool) {
	idx, ok := r.byName[name]
	if !ok {
		return nil, false
	}
	return r.plugins[idx], true
}

// Len returns the number of registered plugins.
func (r *Registry) Len() int {
	return len(r.plugins)
}

// Plugins returns every plugin in registration order.
func (r *Registry) Plugins() []ports.Plugin {
	return slices.Clone(r.plugins)
}

// List returns the metadata of every plugin in registration order.
func (r *Registry) List() []domain.PluginMetadata {
	return slices.Clone(r.meta)
}

// Info returns the detailed view of a plugin, including its missing requirements.
func (r *Registry) Info(ctx context.Context, name string) (domain.PluginInfo, error) {
	p, ok := r.Get(name)
	if !ok {
		return domain.PluginInfo{}, zerr.With(zerr.Wrap(domain.ErrPluginNotFound, domain.ErrPluginNotFound.Error()), "plugin", name)
	}
	return domain.PluginInfo{
		Metadata:            r.meta[r.byName[name]],
		Patterns:            p.FilePatterns(),
		MissingRequirements: r.validateOne(ctx, p),
	}, nil
}

// PluginsForFile returns the plugins able to handle path, ordered by
// descending rule priority and then by registration order.
func (r *Registry) PluginsForFile(path string) []ports.Plugin {
	ext := strings.ToLower(filepath.Ext(path))
	dir := filepath.Dir(path)

	best := make(map[int]int)
	for _, e := range r.byExt[ext] {
		if !hasSiblings(dir, e.pattern.RequiredFiles) {
			continue
		}
		if prio, seen := best[e.index]; !seen || e.pattern.EffectivePriority() > prio {
			best[e.index] = e.pattern.EffectivePriority()
		}
	}

	indexes := make([]int, 0, len(best))
	for idx := range best {
		indexes = append(indexes, idx)
	}
	slices.SortFunc(indexes, func(a, b int) int {
		if best[a] != best[b] {
			return best[b] - best[a]
		}
		return a - b
	})

	out := make([]ports.Plugin, len(indexes))
	for i, idx := range indexes {
		out[i] = r.plugins[idx]
	}
	return out
}

func hasSiblings(dir string, required []string) bool {
	for _, name := range required {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			return false
		}
	}
	return true
}

// PluginsWithCapability returns the plugins declaring c in registration order.
func (r *Registry) PluginsWithCapability(c domain.Capability) []ports.Plugin {
	indexes := r.byCap[c]
	out := make([]ports.Plugin, len(indexes))
	for i, idx := range indexes {
		out[i] = r.plugins[idx]
	}
	return out
}

// BestPluginForFiles returns the plugin that can handle the most of paths.
// Ties go to the plugin registered first.
func (r *Registry) BestPluginForFiles(paths []string) (ports.Plugin, bool) {
	scores := make(map[int]int)
	for _, path := range paths {
		for _, p := range r.PluginsForFile(path) {
			scores[r.byName[p.Metadata().Name]]++
		}
	}
	if len(scores) == 0 {
		return nil, false
	}

	bestIdx, bestScore := -1, 0
	for idx := range r.plugins {
		if s := scores[idx]; s > bestScore {
			bestIdx, bestScore = idx, s
		}
	}
	return r.plugins[bestIdx], true
}

// ValidateAll checks every plugin's environment concurrently. Only plugins
// with missing requirements appear in the result.
func (r *Registry) ValidateAll(ctx context.Context) map[string][]string {
	var mu sync.Mutex
	out := make(map[string][]string)

	g, ctx := errgroup.WithContext(ctx)
	for i, p := range r.plugins {
		g.Go(func() error {
			missing := r.validateOne(ctx, p)
			if len(missing) == 0 {
				return nil
			}
			mu.Lock()
			out[r.meta[i].Name] = missing
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return out
}

// validateOne converts a panicking check into a single missing requirement.
func (r *Registry) validateOne(ctx context.Context, p ports.Plugin) (missing []string) {
	defer func() {
		if rec := recover(); rec != nil {
			missing = []string{fmt.Sprintf("validation failed: %v", rec)}
		}
	}()
	return p.ValidateEnvironment(ctx)
}
