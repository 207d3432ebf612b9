// Package gateway runs the window manager's command-line tool as a
// subprocess and returns its standard output.
package gateway

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

const (
	DefaultTimeout = 3 * time.Second

	// waitDelay bounds how long Wait blocks on output pipes after the
	// process was killed.
	waitDelay = 500 * time.Millisecond
)

var (
	// ErrSpawn means the executable could not be started at all.
	ErrSpawn = errors.New("cannot spawn executable")
	// ErrTimeout means the process did not exit before the deadline.
	ErrTimeout = errors.New("process timed out")
)

// Runner invokes the external tool with arguments and returns stdout.
type Runner interface {
	Run(ctx context.Context, args ...string) ([]byte, error)
}

// ExecRunner runs a fixed executable with os/exec.
type ExecRunner struct {
	path    string
	timeout time.Duration
	log     zerolog.Logger
}

// NewExecRunner creates a runner for the executable at path. A zero timeout
// uses DefaultTimeout; a negative timeout disables the deadline.
func NewExecRunner(path string, timeout time.Duration, log zerolog.Logger) *ExecRunner {
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	return &ExecRunner{
		path:    path,
		timeout: timeout,
		log:     log.With().Str("component", "gateway").Logger(),
	}
}

// Path returns the executable path
func (r *ExecRunner) Path() string {
	return r.path
}

// Run spawns the executable, waits for it to exit and returns everything it
// wrote to stdout. A non-zero exit status still returns the captured output
// together with the error.
func (r *ExecRunner) Run(ctx context.Context, args ...string) ([]byte, error) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, r.path, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = waitDelay

	start := time.Now()
	if err := cmd.Start(); err != nil {
		r.log.Warn().Err(err).Str("path", r.path).Strs("args", args).Msg("spawn failed")
		return nil, fmt.Errorf("%w: %s: %w", ErrSpawn, r.path, err)
	}

	err := cmd.Wait()
	elapsed := time.Since(start)

	if ctx.Err() == context.DeadlineExceeded {
		r.log.Warn().Strs("args", args).Dur("elapsed", elapsed).Msg("process timed out")
		return nil, errors.Wrapf(ErrTimeout, "%s %s", r.path, strings.Join(args, " "))
	}
	if ctx.Err() != nil {
		return nil, errors.Wrap(ctx.Err(), "run cancelled")
	}

	r.log.Debug().Strs("args", args).Dur("elapsed", elapsed).Int("bytes", stdout.Len()).Msg("process exited")

	if err != nil {
		r.log.Warn().Err(err).Strs("args", args).Str("stderr", strings.TrimSpace(stderr.String())).Msg("process failed")
		return stdout.Bytes(), errors.Wrapf(err, "%s %s", r.path, strings.Join(args, " "))
	}
	return stdout.Bytes(), nil
}
