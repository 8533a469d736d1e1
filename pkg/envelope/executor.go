// Package envelope implements RequestEnvelope (C7): a serial execution
// context for blocking metadata-store and node-RPC calls, plus the
// Outcome absence type (I6) and the bounded retry helper health gating
// needs. The shard-success rule (I5) is applied in pkg/metastore.Execute.
package envelope

import (
	"context"
	"fmt"
)

// Executor is a single-threaded cooperative execution context ("event
// loop"): every work item submitted to it runs serially, in submission
// order, on one goroutine. Blocking work dispatched via Submit runs on its
// own goroutine and trampolines its result back onto the Executor's loop
// before the caller's continuation observes it, so two submissions from the
// same Executor never interleave their completions.
type Executor struct {
	work   chan func()
	done   chan struct{}
}

// NewExecutor starts the Executor's loop goroutine. Callers must call Close
// when finished to release it.
func NewExecutor() *Executor {
	e := &Executor{
		work: make(chan func(), 64),
		done: make(chan struct{}),
	}
	go e.loop()
	return e
}

func (e *Executor) loop() {
	for {
		select {
		case fn := <-e.work:
			fn()
		case <-e.done:
			return
		}
	}
}

// Close stops the loop. Pending work already queued is dropped.
func (e *Executor) Close() {
	close(e.done)
}

// Run submits fn to the executor's loop and blocks until it has run,
// returning its error. Use this for short, non-blocking continuations.
func (e *Executor) Run(ctx context.Context, fn func() error) error {
	result := make(chan error, 1)
	select {
	case e.work <- func() { result <- fn() }:
	case <-ctx.Done():
		return ctx.Err()
	case <-e.done:
		return fmt.Errorf("envelope: executor closed")
	}

	select {
	case err := <-result:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Submit runs blocking (the external document-store round trip, a node
// RPC) on a dedicated background goroutine, then trampolines its result
// back onto the Executor's loop so the continuation runs serially with
// every other completion on this Executor, never concurrently with them.
func Submit[T any](ctx context.Context, e *Executor, blocking func(ctx context.Context) (T, error), continuation func(T, error)) {
	go func() {
		value, err := blocking(ctx)
		select {
		case e.work <- func() { continuation(value, err) }:
		case <-e.done:
		case <-ctx.Done():
		}
	}()
}
