package ffmpeg

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"strings"
	"syscall"
)

// stderrTailLimit bounds how much child stderr is kept for error reporting.
const stderrTailLimit = 4096

// Runner executes tool binaries and spawns long-running children.
type Runner struct {
	log *slog.Logger
}

// NewRunner creates a runner logging through the given logger.
func NewRunner(log *slog.Logger) *Runner {
	return &Runner{log: log}
}

// Run executes a binary to completion and returns its stdout. On a
// non-zero exit the error carries the tail of stderr.
func (r *Runner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	r.log.Debug("running command", "binary", name, "args", strings.Join(args, " "))

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("%s failed: %w: %s", name, err, tail(stderr.Bytes()))
	}
	return stdout.Bytes(), nil
}

// Proc is a spawned child whose stderr is streamed by the caller.
type Proc struct {
	cmd    *exec.Cmd
	stderr io.ReadCloser
}

// Spawn starts a binary with a stderr pipe and returns without waiting.
func (r *Runner) Spawn(ctx context.Context, name string, args ...string) (*Proc, error) {
	r.log.Debug("spawning command", "binary", name, "args", strings.Join(args, " "))

	cmd := exec.CommandContext(ctx, name, args...)
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, fmt.Errorf("stderr pipe for %s: %w", name, err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("starting %s: %w", name, err)
	}
	return &Proc{cmd: cmd, stderr: stderr}, nil
}

// Stderr returns the child's stderr stream.
func (p *Proc) Stderr() io.Reader {
	return p.stderr
}

// PID returns the child process id.
func (p *Proc) PID() int {
	return p.cmd.Process.Pid
}

// Wait reaps the child and returns its exit error, if any. The stderr
// pipe must be drained or closed first.
func (p *Proc) Wait() error {
	return p.cmd.Wait()
}

// ExitCode extracts the child exit code from a Wait error. Returns -1 for
// a killed or otherwise abnormally terminated child.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}

// Kill terminates the child. SIGKILL matches how a cancelled encode must
// stop writing its half-finished output immediately.
func (p *Proc) Kill() {
	if p.cmd.Process != nil {
		_ = p.cmd.Process.Signal(syscall.SIGKILL)
	}
}

func tail(b []byte) string {
	if len(b) > stderrTailLimit {
		b = b[len(b)-stderrTailLimit:]
	}
	return strings.TrimSpace(string(b))
}
