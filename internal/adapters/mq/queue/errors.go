package queue

import "errors"

// ErrClosed reports an operation against a closed queue.
var ErrClosed = errors.New("queue closed")
