package contract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"syscall"
	"time"
)

// killGracePeriod is how long a tool gets between SIGTERM and SIGKILL.
const killGracePeriod = 5 * time.Second

// LocalToolRunner implements the ToolRunner interface by executing tools
// installed on the machine (pdflatex, bibtex, pdfinfo, montage, ffmpeg).
type LocalToolRunner struct{}

var _ ToolRunner = &LocalToolRunner{} // Compile-time check

// NewLocalToolRunner creates a new instance of the local tool runner.
func NewLocalToolRunner() *LocalToolRunner {
	return &LocalToolRunner{}
}

// Run executes the tool and waits for it to complete. When the spec carries a
// timeout, the deadline applies to this single invocation; an exceeded
// deadline is reported via ToolResult.TimedOut rather than a fatal error.
// The whole process group receives SIGTERM first, then SIGKILL after a grace
// period, so compiler children do not outlive their parent.
func (r *LocalToolRunner) Run(ctx context.Context, spec ToolSpec) (*ToolResult, error) {
	if spec.Binary == "" {
		return nil, errors.New("tool binary is required")
	}

	runCtx := ctx
	if spec.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, spec.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(runCtx, spec.Binary, spec.Args...)
	cmd.Dir = spec.Dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		if cmd.Process == nil {
			return nil
		}
		return syscall.Kill(-cmd.Process.Pid, syscall.SIGTERM)
	}
	cmd.WaitDelay = killGracePeriod

	start := time.Now()
	err := cmd.Run()
	duration := time.Since(start)

	result := &ToolResult{
		Stdout:   stdout.Bytes(),
		Stderr:   stderr.Bytes(),
		ExitCode: -1,
		Duration: duration,
		TimedOut: errors.Is(runCtx.Err(), context.DeadlineExceeded),
	}
	if cmd.ProcessState != nil {
		result.ExitCode = cmd.ProcessState.ExitCode()
	}

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) || result.TimedOut || runCtx.Err() != nil {
			// Non-zero exits and kills are outcomes, not runner failures.
			return result, nil
		}
		return nil, fmt.Errorf("failed to start %s: %w. Ensure it is installed and available on your PATH", spec.Binary, err)
	}

	return result, nil
}
