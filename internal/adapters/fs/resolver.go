package fs

import (
	"os"
	"path/filepath"
	"slices"
	"strings"

	"go.trai.ch/polybuild/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.InputResolver = (*Resolver)(nil)

// Resolver implements the InputResolver interface using filepath.Glob and the Walker.
type Resolver struct {
	walker *Walker
}

// NewResolver creates a new Resolver that walks directories with walker.
func NewResolver(walker *Walker) *Resolver {
	return &Resolver{walker: walker}
}

// ResolveInputs resolves the given input patterns to a list of concrete file paths.
func (r *Resolver) ResolveInputs(inputs []string, root string) ([]string, error) {
	unique := make(map[string]struct{})

	for _, input := range inputs {
		path := input
		if !filepath.IsAbs(path) {
			path = filepath.Join(root, input)
		}

		candidates := []string{path}
		if strings.ContainsAny(input, "*?[") {
			matches, err := filepath.Glob(path)
			if err != nil {
				return nil, zerr.With(zerr.Wrap(err, "failed to glob path"), "path", path)
			}
			candidates = matches
		}

		for _, c := range candidates {
			info, err := os.Stat(c)
			if err != nil {
				continue
			}
			if !info.IsDir() {
				unique[c] = struct{}{}
				continue
			}
			for file := range r.walker.WalkFiles(c, nil) {
				unique[file] = struct{}{}
			}
		}
	}

	result := make([]string, 0, len(unique))
	for p := range unique {
		result = append(result, p)
	}
	slices.Sort(result)
	return result, nil
}
