package registry

import (
	"context"
	"fmt"

	"go.trai.ch/polybuild/internal/core/domain"
	"go.trai.ch/polybuild/internal/core/ports"
)

// Test runs the plugin's test operation, or reports it as unsupported.
func Test(ctx context.Context, p ports.Plugin, files []string, opts domain.BuildOptions) domain.PluginResult {
	t, ok := p.(ports.Tester)
	if !ok || !supports(p, domain.CapTesting) {
		return Unsupported(p, "test")
	}
	return t.Test(ctx, files, opts)
}

// Lint runs the plugin's lint operation, or reports it as unsupported.
func Lint(ctx context.Context, p ports.Plugin, files []string, opts domain.BuildOptions) domain.PluginResult {
	l, ok := p.(ports.Linter)
	if !ok || !supports(p, domain.CapLinting) {
		return Unsupported(p, "lint")
	}
	return l.Lint(ctx, files, opts)
}

// Package runs the plugin's packaging operation, or reports it as unsupported.
func Package(ctx context.Context, p ports.Plugin, files []string, opts domain.BuildOptions) domain.PluginResult {
	pk, ok := p.(ports.Packager)
	if !ok || !supports(p, domain.CapPackaging) {
		return Unsupported(p, "package")
	}
	return pk.Package(ctx, files, opts)
}

// Unsupported is the result of an optional operation a plugin does not provide.
func Unsupported(p ports.Plugin, op string) domain.PluginResult {
	return domain.PluginResult{
		Success:     false,
		Unsupported: true,
		Error:       fmt.Sprintf("plugin %s does not support %s", p.Metadata().Name, op),
	}
}

func supports(p ports.Plugin, c domain.Capability) bool {
	meta := p.Metadata()
	return meta.Has(c)
}
