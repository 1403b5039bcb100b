// Package shell runs target commands through the system shell.
package shell

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/creack/pty"
	"go.trai.ch/polybuild/internal/core/domain"
	"go.trai.ch/polybuild/internal/core/ports"
	"go.trai.ch/zerr"
)

const (
	// captureLimit bounds how much of each stream is kept in CommandOutput.
	captureLimit = 64 << 10
	// tailLines is how many trailing output lines a failure message carries.
	tailLines = 20
	// waitDelay bounds how long Wait blocks on inherited pipes after a kill.
	waitDelay = 2 * time.Second
)

var _ ports.CommandRunner = (*Runner)(nil)

// Runner implements ports.CommandRunner with "sh -c".
type Runner struct {
	shell  string
	usePTY bool
}

// NewRunner creates a Runner that uses pipes.
func NewRunner() *Runner {
	return &Runner{shell: "sh"}
}

// WithPTY runs commands in a pseudo-terminal so tools keep their colors.
// stdout and stderr are merged in this mode.
func (r *Runner) WithPTY(enable bool) *Runner {
	c := *r
	c.usePTY = enable
	return &c
}

// Run executes cmd.Line and waits for it.
func (r *Runner) Run(ctx context.Context, cmd domain.Command, stdout, stderr io.Writer) (domain.CommandOutput, error) {
	if strings.TrimSpace(cmd.Line) == "" {
		return domain.CommandOutput{}, nil
	}
	if stdout == nil {
		stdout = io.Discard
	}
	if stderr == nil {
		stderr = io.Discard
	}

	c := exec.CommandContext(ctx, r.shell, "-c", cmd.Line) //nolint:gosec // commands come from the project config
	c.Dir = cmd.Dir
	c.Env = resolveEnvironment(os.Environ(), cmd.Env)
	c.WaitDelay = waitDelay

	outBuf := &captureBuffer{limit: captureLimit}
	errBuf := &captureBuffer{limit: captureLimit}

	started := time.Now()
	var err error
	if r.usePTY {
		err = runPTY(c, io.MultiWriter(outBuf, stdout))
	} else {
		c.Stdout = io.MultiWriter(outBuf, stdout)
		c.Stderr = io.MultiWriter(errBuf, stderr)
		err = c.Run()
	}

	out := domain.CommandOutput{
		Stdout:   outBuf.String(),
		Stderr:   errBuf.String(),
		ExitCode: exitCode(err),
		Duration: time.Since(started),
	}

	if err == nil {
		return out, nil
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		if errors.Is(ctxErr, context.DeadlineExceeded) {
			return out, zerr.With(zerr.Wrap(domain.ErrCommandTimeout, domain.ErrCommandTimeout.Error()), "command", cmd.Line)
		}
		return out, zerr.With(zerr.Wrap(ctxErr, "command canceled"), "command", cmd.Line)
	}

	msg := "command failed: " + cmd.Line
	if tail := outputTail(out); tail != "" {
		msg += "\n" + tail
	}
	failed := zerr.With(zerr.Wrap(domain.ErrCommandFailed, msg), "command", cmd.Line)
	return out, zerr.With(failed, "exit_code", out.ExitCode)
}

func runPTY(c *exec.Cmd, w io.Writer) error {
	ptmx, err := pty.Start(c)
	if err != nil {
		return zerr.Wrap(err, "failed to start pty")
	}

	ioDone := make(chan struct{})
	go func() {
		defer close(ioDone)
		// Reading the master returns EIO once the child side closes.
		_, _ = io.Copy(w, ptmx)
	}()

	err = c.Wait()
	_ = ptmx.Close()
	<-ioDone
	return err
}

func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}

// outputTail prefers stderr and falls back to stdout.
func outputTail(out domain.CommandOutput) string {
	text := out.Stderr
	if strings.TrimSpace(text) == "" {
		text = out.Stdout
	}
	lines := strings.Split(strings.TrimRight(text, "\r\n"), "\n")
	if len(lines) > tailLines {
		lines = lines[len(lines)-tailLines:]
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// resolveEnvironment layers overrides on the inherited environment.
func resolveEnvironment(sysEnv []string, overrides map[string]string) []string {
	if len(overrides) == 0 {
		return sysEnv
	}

	env := make([]string, 0, len(sysEnv)+len(overrides))
	for _, entry := range sysEnv {
		k, _, ok := strings.Cut(entry, "=")
		if !ok {
			continue
		}
		if _, overridden := overrides[k]; overridden {
			continue
		}
		env = append(env, entry)
	}
	for k, v := range overrides {
		env = append(env, k+"="+v)
	}
	return env
}

// captureBuffer keeps the last limit bytes written to it.
type captureBuffer struct {
	mu    sync.Mutex
	limit int
	buf   bytes.Buffer
}

func (b *captureBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.buf.Write(p)
	if over := b.buf.Len() - b.limit; over > 0 {
		b.buf.Next(over)
	}
	return len(p), nil
}

func (b *captureBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// Describe renders a short form of a command for logs.
func Describe(cmd domain.Command) string {
	if cmd.Dir == "" {
		return cmd.Line
	}
	return fmt.Sprintf("%s (in %s)", cmd.Line, cmd.Dir)
}
