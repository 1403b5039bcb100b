// Package ports defines the core interfaces for the application.
package ports

import (
	"context"
	"io"

	"go.trai.ch/polybuild/internal/core/domain"
)

// CommandRunner executes shell lines on behalf of targets and plugins.
//
//go:generate mockgen -source=runner.go -destination=mocks/mock_runner.go -package=mocks
type CommandRunner interface {
	// Run executes cmd and waits for it to finish. Output is streamed to
	// stdout and stderr as it arrives and is also captured in the result.
	//
	// Cancellation and deadlines are taken from ctx.
	Run(ctx context.Context, cmd domain.Command, stdout, stderr io.Writer) (domain.CommandOutput, error)
}
