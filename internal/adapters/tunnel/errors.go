package tunnel

import "errors"

var (
	// ErrNoCommand marks an empty tunnel command line.
	ErrNoCommand = errors.New("empty tunnel command")
	// ErrAlreadyStarted is returned by a second Start on the same runner.
	ErrAlreadyStarted = errors.New("tunnel already started")
	// ErrNoURL means the process produced no public URL within the timeout.
	ErrNoURL = errors.New("no public url within timeout")
	// ErrTunnelExited means the process exited before printing a URL.
	ErrTunnelExited = errors.New("tunnel process exited")
)
