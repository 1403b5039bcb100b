package ports

import (
	"context"
	"time"
)

// Renderer is the abstraction for output rendering.
// It decouples telemetry collection from presentation logic.
//
//go:generate mockgen -source=renderer.go -destination=mocks/mock_renderer.go -package=mocks
type Renderer interface {
	// Start initializes the renderer and begins its lifecycle.
	Start(ctx context.Context) error

	// Stop signals the renderer to stop accepting new events and flush buffered output.
	Stop() error

	// Wait blocks until the renderer has fully terminated.
	Wait() error

	// OnPlanEmit is called when the orchestrator has leveled the targets.
	// groups: targets per execution group, in execution order
	// targets: the user-requested targets
	OnPlanEmit(groups [][]string, targets []string)

	// OnTaskStart is called when a target or group begins.
	// spanID: unique identifier for this execution
	// parentID: spanID of the parent (empty if root)
	// name: human-readable name
	// startTime: when it started
	OnTaskStart(spanID, parentID, name string, startTime time.Time)

	// OnTaskLog is called when a target emits output.
	// data: raw log bytes (may contain partial lines or ANSI sequences)
	OnTaskLog(spanID string, data []byte)

	// OnTaskComplete is called when a target or group finishes.
	// err: nil if successful, error otherwise
	// cached: the result was restored from the build cache
	OnTaskComplete(spanID string, endTime time.Time, err error, cached bool)
}
