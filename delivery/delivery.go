// Package delivery provides the per-destination background worker that
// drains a delivery queue and hands tasks to a transport, applying backlog
// trimming, rate capping, and terminal-failure semantics.
package delivery

import (
	"context"

	"github.com/google/uuid"
)

// Transport delivers one formatted payload to a remote endpoint. The
// transport owns its retry policy; the error it returns is the final
// outcome for the task. A fatal error (rejected credentials) permanently
// stops the destination's worker.
type Transport[T any] interface {
	Deliver(ctx context.Context, payload T) error
}

// Task is one queued delivery: the record's timestamp plus the formatted
// protocol payload. The ID correlates log lines across the producer and
// worker sides.
type Task[T any] struct {
	ID        uuid.UUID
	Timestamp int64
	Payload   T
}

// NewTask stamps a payload with a fresh task ID
func NewTask[T any](timestamp int64, payload T) Task[T] {
	return Task[T]{
		ID:        uuid.New(),
		Timestamp: timestamp,
		Payload:   payload,
	}
}

// State is the worker's lifecycle state
type State int32

const (
	// Running means the worker is draining its queue
	Running State = iota
	// StoppedShutdown means the worker exited after the close signal
	StoppedShutdown
	// StoppedFatal means the worker stopped permanently after a
	// credential rejection; no further tasks are ever processed
	StoppedFatal
)

// String returns a short label for the state
func (s State) String() string {
	switch s {
	case Running:
		return "running"
	case StoppedShutdown:
		return "stopped_shutdown"
	case StoppedFatal:
		return "stopped_fatal"
	default:
		return "unknown"
	}
}

// Terminal reports whether the state is one the worker never leaves
func (s State) Terminal() bool {
	return s == StoppedShutdown || s == StoppedFatal
}
