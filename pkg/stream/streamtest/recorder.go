package streamtest

import (
	"context"
	"sync"
)

// Recorder is an Observer that records every signal it receives.
//
// Recorder is safe under concurrent OnNext calls.
type Recorder[T any] struct {
	mu        sync.Mutex
	values    []T
	err       error
	completed bool
	// notify is closed and replaced on every signal.
	notify chan struct{}
}

// NewRecorder constructs an empty Recorder.
func NewRecorder[T any]() *Recorder[T] {
	return &Recorder[T]{notify: make(chan struct{})}
}

func (r *Recorder[T]) OnNext(value T) {
	r.signal(func() { r.values = append(r.values, value) })
}

func (r *Recorder[T]) OnError(err error) {
	r.signal(func() { r.err = err })
}

func (r *Recorder[T]) OnComplete() {
	r.signal(func() { r.completed = true })
}

func (r *Recorder[T]) signal(update func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	update()
	close(r.notify)
	r.notify = make(chan struct{})
}

// Values returns a snapshot copy of the recorded values.
func (r *Recorder[T]) Values() []T {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := make([]T, len(r.values))
	copy(cp, r.values)
	return cp
}

// Err returns the recorded failure, if any.
func (r *Recorder[T]) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}

// Completed reports whether a completion signal was recorded.
func (r *Recorder[T]) Completed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.completed
}

// Terminated reports whether a completion or failure signal was recorded.
func (r *Recorder[T]) Terminated() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.terminated()
}

func (r *Recorder[T]) terminated() bool {
	return r.completed || r.err != nil
}

// WaitFor blocks until at least n values were recorded, the stream
// terminated, or ctx ends. It reports whether n values are available.
func (r *Recorder[T]) WaitFor(ctx context.Context, n int) (bool, error) {
	err := r.await(ctx, func() bool {
		return len(r.values) >= n || r.terminated()
	})
	if err != nil {
		return false, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.values) >= n, nil
}

// WaitTerminated blocks until a terminal signal was recorded or ctx ends.
func (r *Recorder[T]) WaitTerminated(ctx context.Context) error {
	return r.await(ctx, r.terminated)
}

// await blocks until cond, evaluated under the lock, holds.
func (r *Recorder[T]) await(ctx context.Context, cond func() bool) error {
	for {
		r.mu.Lock()
		if cond() {
			r.mu.Unlock()
			return nil
		}
		ch := r.notify
		r.mu.Unlock()

		select {
		case <-ch:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
