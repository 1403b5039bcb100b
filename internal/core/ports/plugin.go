package ports

import (
	"context"
	"time"

	"go.trai.ch/polybuild/internal/core/domain"
)

// Plugin is the contract every language or tool builder satisfies.
//
//go:generate mockgen -source=plugin.go -destination=mocks/mock_plugin.go -package=mocks
type Plugin interface {
	// Metadata describes the plugin and its capability set.
	Metadata() domain.PluginMetadata

	// FilePatterns lists the rules used to match files to this plugin.
	FilePatterns() []domain.FilePattern

	// DetectFiles returns the files under root this plugin can build.
	DetectFiles(ctx context.Context, root string) ([]string, error)

	// CalculateChecksum returns a combined checksum over the given files.
	CalculateChecksum(files []string) (string, error)

	// Dependencies returns additional files the given files depend on.
	Dependencies(files []string) ([]string, error)

	// ValidateEnvironment returns the requirements missing from the host.
	ValidateEnvironment(ctx context.Context) []string

	// Build builds the given files.
	Build(ctx context.Context, files []string, opts domain.BuildOptions) domain.PluginResult

	// Clean removes artifacts produced for the given files.
	Clean(ctx context.Context, files []string, opts domain.BuildOptions) domain.PluginResult

	// EstimatedDuration is used for planning only.
	EstimatedDuration(files []string) time.Duration
}

// Tester is implemented by plugins declaring the testing capability.
type Tester interface {
	Test(ctx context.Context, files []string, opts domain.BuildOptions) domain.PluginResult
}

// Linter is implemented by plugins declaring the linting capability.
type Linter interface {
	Lint(ctx context.Context, files []string, opts domain.BuildOptions) domain.PluginResult
}

// Packager is implemented by plugins declaring the packaging capability.
type Packager interface {
	Package(ctx context.Context, files []string, opts domain.BuildOptions) domain.PluginResult
}
