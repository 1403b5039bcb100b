// Package linear provides a line-buffered renderer that prints target output
// in chronological order with a name prefix.
package linear

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/muesli/termenv"
	"go.trai.ch/polybuild/internal/core/ports"
	"go.trai.ch/polybuild/internal/ui/output"
	"go.trai.ch/polybuild/internal/ui/style"
)

var _ ports.Renderer = (*Renderer)(nil)

// Renderer implements ports.Renderer. Status lines go to stderr and command
// output to stdout.
type Renderer struct {
	stdout io.Writer
	stderr io.Writer
	out    *termenv.Output

	mu    sync.Mutex
	tasks map[string]*task
}

type task struct {
	name    string
	started time.Time
	partial bytes.Buffer
}

// NewRenderer creates a Renderer with the CI color profile.
func NewRenderer(stdout, stderr io.Writer) *Renderer {
	return NewRendererWithProfile(stdout, stderr, output.ColorProfileANSI)
}

// NewRendererWithProfile creates a Renderer whose colors follow profileFn.
// Nil writers default to the process streams.
func NewRendererWithProfile(stdout, stderr io.Writer, profileFn func() termenv.Profile) *Renderer {
	if stdout == nil {
		stdout = os.Stdout
	}
	if stderr == nil {
		stderr = os.Stderr
	}
	return &Renderer{
		stdout: stdout,
		stderr: stderr,
		out:    output.NewWithProfile(stderr, profileFn),
		tasks:  make(map[string]*task),
	}
}

// Start is a no-op; the renderer writes synchronously.
func (r *Renderer) Start(context.Context) error {
	return nil
}

// Stop flushes partial lines of targets that never completed.
func (r *Renderer) Stop() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, t := range r.tasks {
		r.flushLocked(t)
		delete(r.tasks, id)
	}
	return nil
}

// Wait is a no-op.
func (r *Renderer) Wait() error {
	return nil
}

// OnPlanEmit prints the execution groups.
func (r *Renderer) OnPlanEmit(groups [][]string, targets []string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	total := 0
	for _, g := range groups {
		total += len(g)
	}
	_, _ = fmt.Fprintf(r.stderr, "Planning to build %d target(s) in %d group(s) for: %s\n",
		total, len(groups), strings.Join(targets, ", "))
	for i, g := range groups {
		line := fmt.Sprintf("  %d. %s", i+1, strings.Join(g, ", "))
		_, _ = fmt.Fprintln(r.stderr, r.out.String(line).Faint())
	}
}

// OnTaskStart prints the start line of a target.
func (r *Renderer) OnTaskStart(spanID, _, name string, started time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.tasks[spanID] = &task{name: name, started: started}
	_, _ = fmt.Fprintf(r.stderr, "%s Starting...\n", r.prefix(name))
}

// OnTaskLog prints every complete line of data and keeps the remainder.
func (r *Renderer) OnTaskLog(spanID string, data []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.tasks[spanID]
	if !ok {
		return
	}

	t.partial.Write(data)
	for {
		line, err := t.partial.ReadBytes('\n')
		if err != nil {
			// ReadBytes consumed the fragment; keep it for the next chunk.
			t.partial.Write(line)
			return
		}
		r.printLocked(t.name, line)
	}
}

// OnTaskComplete prints the outcome line of a target.
func (r *Renderer) OnTaskComplete(spanID string, ended time.Time, err error, cached bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.tasks[spanID]
	if !ok {
		return
	}
	delete(r.tasks, spanID)
	r.flushLocked(t)

	elapsed := ended.Sub(t.started).Round(time.Millisecond)
	prefix := r.prefix(t.name)
	switch {
	case err != nil:
		mark := r.out.String(style.Cross).Foreground(r.out.Color("1"))
		_, _ = fmt.Fprintf(r.stderr, "%s %s Failed after %v: %v\n", prefix, mark, elapsed, err)
	case cached:
		mark := r.out.String(style.Check).Foreground(r.out.Color("6"))
		_, _ = fmt.Fprintf(r.stderr, "%s %s Restored from cache\n", prefix, mark)
	default:
		mark := r.out.String(style.Check).Foreground(r.out.Color("2"))
		_, _ = fmt.Fprintf(r.stderr, "%s %s Completed in %v\n", prefix, mark, elapsed)
	}
}

func (r *Renderer) prefix(name string) string {
	return r.out.String("[" + name + "]").Faint().String()
}

// flushLocked must be called with mu held.
func (r *Renderer) flushLocked(t *task) {
	if t.partial.Len() > 0 {
		r.printLocked(t.name, t.partial.Bytes())
		t.partial.Reset()
	}
}

// printLocked must be called with mu held. Blank lines are dropped.
func (r *Renderer) printLocked(name string, line []byte) {
	line = bytes.TrimRight(line, "\r\n")
	if len(line) == 0 {
		return
	}
	_, _ = fmt.Fprintf(r.stdout, "[%s] %s\n", name, line)
}
