package gitexec

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/raphi011/wt/internal/log"
)

const defaultMaxConcurrent = 32

var (
	semOnce sync.Once
	sem     chan struct{}
)

// maxConcurrent reads WORKTRUNK_MAX_CONCURRENT_COMMANDS once per process.
func maxConcurrent() int {
	if v := os.Getenv("WORKTRUNK_MAX_CONCURRENT_COMMANDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return defaultMaxConcurrent
}

func acquire() func() {
	semOnce.Do(func() {
		sem = make(chan struct{}, maxConcurrent())
	})
	sem <- struct{}{}
	return func() { <-sem }
}

// RunContext runs name with args in dir (or the current directory if dir is
// empty), bounded by the process-wide command semaphore and cancellable via
// ctx. Stderr is captured and surfaced as the error message on failure.
func RunContext(ctx context.Context, dir, name string, args ...string) error {
	_, err := run(ctx, dir, name, args, false)
	return err
}

// OutputContext is RunContext but returns trimmed stdout on success.
func OutputContext(ctx context.Context, dir, name string, args ...string) ([]byte, error) {
	return run(ctx, dir, name, args, true)
}

func run(ctx context.Context, dir, name string, args []string, wantOutput bool) ([]byte, error) {
	release := acquire()
	defer release()

	l := log.FromContext(ctx)
	done := l.Command(dir, name, args...)
	start := time.Now()
	defer func() { done(time.Since(start)) }()

	c := exec.CommandContext(ctx, name, args...)
	if dir != "" {
		c.Dir = dir
	}
	var stdout, stderr bytes.Buffer
	c.Stderr = &stderr
	if wantOutput {
		c.Stdout = &stdout
	}

	err := c.Run()
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%s %s: %w", name, strings.Join(args, " "), ctx.Err())
		}
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("%s", msg)
		}
		return nil, err
	}
	if !wantOutput {
		return nil, nil
	}
	return bytes.TrimRight(stdout.Bytes(), "\n"), nil
}

// Git runs `git <args...>` in dir and returns trimmed stdout.
func Git(ctx context.Context, dir string, args ...string) ([]byte, error) {
	return OutputContext(ctx, dir, "git", args...)
}

// GitRun runs `git <args...>` in dir discarding stdout.
func GitRun(ctx context.Context, dir string, args ...string) error {
	return RunContext(ctx, dir, "git", args...)
}

// GitLines runs a git command and splits stdout on newlines, dropping empty
// trailing lines. Returns nil (not an empty non-nil slice) when there is no
// output, so callers can range over the result without a length check.
func GitLines(ctx context.Context, dir string, args ...string) ([]string, error) {
	out, err := Git(ctx, dir, args...)
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return strings.Split(string(out), "\n"), nil
}
