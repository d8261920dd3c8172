package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"
)

var errGitNotInstalled = errors.New("git not installed; install git and make sure it is reachable on PATH")
var errNotInGitRepository = errors.New("not in a git repository")
var errMainRepositoryProtected = errors.New("the main repository cannot be removed")
var errCommandTimeout = errors.New("git command timed out")

const defaultCommandTimeout = 30 * time.Second

// Failure messages that mean a call may legitimately fail and will be
// retried or suppressed by the caller.
var staleRegistrationMarkers = []string{
	"already used by worktree",
	"missing but already registered",
}

const mainWorktreeRefusalMarker = "is a main working tree"

// CommandError carries the raw stderr of a failed git invocation alongside
// the exec error, so callers can classify and users can see git's own words.
type CommandError struct {
	Args   []string
	Stderr string
	Err    error
}

func (e *CommandError) Error() string {
	msg := strings.TrimSpace(e.Stderr)
	if msg != "" {
		return msg
	}
	return e.Err.Error()
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

func commandErrorWithOutput(fallback error, stderr []byte) error {
	msg := strings.TrimSpace(string(stderr))
	if msg == "" {
		return fallback
	}
	return &CommandError{Stderr: msg, Err: fallback}
}

func isStaleRegistrationError(err error) bool {
	var cmdErr *CommandError
	if !errors.As(err, &cmdErr) {
		return false
	}
	for _, marker := range staleRegistrationMarkers {
		if strings.Contains(cmdErr.Stderr, marker) {
			return true
		}
	}
	return false
}

func isMainWorktreeRefusal(err error) bool {
	var cmdErr *CommandError
	if !errors.As(err, &cmdErr) {
		return false
	}
	return strings.Contains(cmdErr.Stderr, mainWorktreeRefusalMarker)
}

func isCancelled(err error) bool {
	return errors.Is(err, context.Canceled)
}

func isTimeout(err error) bool {
	return errors.Is(err, errCommandTimeout)
}

func isGitMissing(err error) bool {
	return errors.Is(err, errGitNotInstalled) || errors.Is(err, exec.ErrNotFound)
}

// GitRunner executes git commands. Test doubles implement this to script
// outputs and record call order.
type GitRunner interface {
	Run(ctx context.Context, dir string, args ...string) (string, error)
}

// ExecGitRunner shells out to the real git binary. The executable path is
// resolved once per runner: PATH lookup first, then a short list of
// well-known install locations, then the bare name so a later invocation
// still produces a clear "git not installed" error.
type ExecGitRunner struct {
	timeout     time.Duration
	resolveOnce sync.Once
	gitPath     string
}

var wellKnownGitPaths = []string{
	"/usr/bin/git",
	"/usr/local/bin/git",
	"/opt/homebrew/bin/git",
}

func NewExecGitRunner(timeout time.Duration) *ExecGitRunner {
	if timeout <= 0 {
		timeout = defaultCommandTimeout
	}
	return &ExecGitRunner{timeout: timeout}
}

func (r *ExecGitRunner) resolve() string {
	r.resolveOnce.Do(func() {
		if path, err := exec.LookPath("git"); err == nil {
			r.gitPath = path
			return
		}
		for _, candidate := range wellKnownGitPaths {
			if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
				r.gitPath = candidate
				return
			}
		}
		r.gitPath = "git"
	})
	return r.gitPath
}

func (r *ExecGitRunner) Run(ctx context.Context, dir string, args ...string) (string, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	runCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, r.resolve(), args...)
	if dir != "" {
		cmd.Dir = dir
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err == nil {
		return stdout.String(), nil
	}
	if ctx.Err() != nil {
		return "", context.Canceled
	}
	if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		return "", fmt.Errorf("%w: git %s", errCommandTimeout, strings.Join(args, " "))
	}
	if errors.Is(err, exec.ErrNotFound) {
		return "", errGitNotInstalled
	}
	return "", &CommandError{Args: args, Stderr: stderr.String(), Err: err}
}
