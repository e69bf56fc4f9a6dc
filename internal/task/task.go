package task

import (
	"context"
	"errors"
)

// Errors returned by Runner.Submit.
var (
	ErrQueueFull      = errors.New("task queue is full")
	ErrRunnerStopped  = errors.New("task runner is stopped")
	ErrRunnerNotReady = errors.New("task runner has not been started")
)

// Task is a unit of background work.
type Task interface {
	// ID identifies the task in logs.
	ID() string

	// Type names the kind of work, for example "send_verification".
	Type() string

	// Execute runs the task. The context is canceled when the task exceeds
	// the runner's timeout.
	Execute(ctx context.Context) error
}

// Submitter accepts tasks for background execution.
type Submitter interface {
	Submit(task Task) error
}
