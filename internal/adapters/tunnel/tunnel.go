// Package tunnel exposes the local dashboard through a tunneling subprocess
// (localtunnel by default) and recovers the public URL from its stdout.
package tunnel

import (
	"bufio"
	"context"
	"fmt"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/nurtas/bloomcast/pkg/logger"
	"github.com/nurtas/bloomcast/pkg/metrics"
)

const (
	defaultURLPattern   = `https://[a-z0-9-]+\.loca\.lt`
	defaultStartTimeout = 45 * time.Second
)

// Option applies a configuration option to the runner.
type Option func(*Runner)

// WithURLPattern overrides the regexp that recovers the public URL from the
// subprocess stdout.
func WithURLPattern(pattern string) Option {
	return func(r *Runner) {
		if pattern != "" {
			r.pattern = regexp.MustCompile(pattern)
		}
	}
}

// WithStartTimeout bounds the wait for the public URL.
func WithStartTimeout(d time.Duration) Option {
	return func(r *Runner) {
		if d > 0 {
			r.startTimeout = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(log logger.Logger) Option {
	return func(r *Runner) {
		if log != nil {
			r.log = log
		}
	}
}

// Runner manages one tunneling subprocess.
type Runner struct {
	command      []string
	pattern      *regexp.Regexp
	startTimeout time.Duration
	log          logger.Logger

	mu   sync.Mutex
	cmd  *exec.Cmd
	url  string
	done chan struct{}
}

// New creates a runner for the given command line; the listen port is
// appended as "--port N" on start.
func New(command string, port int, opts ...Option) (*Runner, error) {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return nil, ErrNoCommand
	}

	r := &Runner{
		command:      append(fields, "--port", strconv.Itoa(port)),
		pattern:      regexp.MustCompile(defaultURLPattern),
		startTimeout: defaultStartTimeout,
		log:          logger.Named("tunnel"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Start launches the subprocess and blocks until its stdout produces a line
// matching the URL pattern, the process exits, or the start timeout passes.
// The process keeps running after a successful return; ctx cancellation
// kills it.
func (r *Runner) Start(ctx context.Context) (string, error) {
	r.mu.Lock()
	if r.cmd != nil {
		r.mu.Unlock()
		return "", ErrAlreadyStarted
	}

	cmd := exec.CommandContext(ctx, r.command[0], r.command[1:]...) //nolint:gosec // operator-configured command
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		r.mu.Unlock()
		return "", fmt.Errorf("stdout pipe: %w", err)
	}
	cmd.Stderr = cmd.Stdout

	if err := cmd.Start(); err != nil {
		r.mu.Unlock()
		metrics.RecordTunnelFailure()
		return "", fmt.Errorf("start %s: %w", r.command[0], err)
	}
	r.cmd = cmd
	r.done = make(chan struct{})
	r.mu.Unlock()

	urlCh := make(chan string, 1)
	go func() {
		scanner := bufio.NewScanner(stdout)
		for scanner.Scan() {
			line := scanner.Text()
			if m := r.pattern.FindString(line); m != "" {
				select {
				case urlCh <- m:
				default:
				}
			}
		}
		// EOF: the process closed its side. Reap it, then signal.
		_ = cmd.Wait()
		close(r.done)
	}()

	select {
	case url := <-urlCh:
		return r.started(ctx, url), nil
	case <-r.done:
		// The process may have printed the URL just before exiting.
		select {
		case url := <-urlCh:
			return r.started(ctx, url), nil
		default:
		}
		metrics.RecordTunnelFailure()
		return "", ErrTunnelExited
	case <-time.After(r.startTimeout):
		r.Stop()
		metrics.RecordTunnelFailure()
		return "", ErrNoURL
	case <-ctx.Done():
		r.Stop()
		return "", ctx.Err()
	}
}

func (r *Runner) started(ctx context.Context, url string) string {
	r.mu.Lock()
	r.url = url
	r.mu.Unlock()
	metrics.RecordTunnelStart()
	r.log.Info(ctx, "tunnel up", logger.String("url", url))
	return url
}

// URL returns the public URL, empty until Start succeeds.
func (r *Runner) URL() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.url
}

// Stop kills the subprocess and waits for it to be reaped. Safe to call
// multiple times and before Start.
func (r *Runner) Stop() {
	r.mu.Lock()
	cmd, done := r.cmd, r.done
	r.mu.Unlock()
	if cmd == nil {
		return
	}
	if cmd.Process != nil {
		_ = cmd.Process.Kill()
	}
	if done != nil {
		<-done
	}
}
