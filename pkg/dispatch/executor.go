package dispatch

import "context"

// Executor runs dispatch jobs off the caller's goroutine. Submit either
// accepts the job, which must then run exactly once, or returns an error.
type Executor interface {
	Submit(ctx context.Context, job func(context.Context)) error
}

// GoExecutor runs every job on its own goroutine.
type GoExecutor struct{}

// Submit starts job and never rejects.
func (GoExecutor) Submit(ctx context.Context, job func(context.Context)) error {
	go job(ctx)
	return nil
}

// ExecutorFunc adapts a function to Executor.
type ExecutorFunc func(ctx context.Context, job func(context.Context)) error

// Submit calls f.
func (f ExecutorFunc) Submit(ctx context.Context, job func(context.Context)) error {
	return f(ctx, job)
}
