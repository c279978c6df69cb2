package client

import (
	"context"
	"sync"
)

// FetchState is the observable state of a Fetcher.
type FetchState int

const (
	StateIdle FetchState = iota
	StateLoading
	StateSuccess
	StateError
)

func (s FetchState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateSuccess:
		return "success"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// Fetcher wraps an asynchronous data-producing operation with loading,
// success, and failure state, and a cancel operation. Starting a new fetch
// cancels the in-flight one first, so at most one request is live per
// Fetcher. Cancellation is cooperative: the operation's context is
// canceled, and even if the operation ignores it, its result is discarded
// because the fetcher no longer recognizes it as current.
type Fetcher[T any] struct {
	mu     sync.Mutex
	state  FetchState
	data   T
	err    error
	cancel context.CancelFunc
	gen    uint64
}

// Fetch starts fn, canceling any prior in-flight operation. The returned
// channel closes when fn finishes, whether or not its result was kept.
func (f *Fetcher[T]) Fetch(ctx context.Context, fn func(context.Context) (T, error)) <-chan struct{} {
	f.mu.Lock()
	if f.cancel != nil {
		f.cancel()
		f.cancel = nil
	}
	f.gen++
	gen := f.gen
	fetchCtx, cancel := context.WithCancel(ctx)
	f.cancel = cancel
	f.state = StateLoading
	f.err = nil
	f.mu.Unlock()

	done := make(chan struct{})
	go func() {
		defer close(done)
		value, err := fn(fetchCtx)
		cancel()

		f.mu.Lock()
		defer f.mu.Unlock()
		if gen != f.gen {
			// Superseded by a newer fetch or an explicit cancel; this
			// result is stale and must not clobber fresher state.
			return
		}
		f.cancel = nil
		if err != nil {
			f.state = StateError
			f.err = err
			return
		}
		f.state = StateSuccess
		f.data = value
	}()
	return done
}

// Cancel aborts the in-flight operation, if any. Previously loaded data is
// kept.
func (f *Fetcher[T]) Cancel() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.cancel != nil {
		f.cancel()
		f.cancel = nil
	}
	f.gen++
	if f.state == StateLoading {
		f.state = StateIdle
	}
}

// Reset cancels any in-flight operation and clears data and error.
func (f *Fetcher[T]) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.cancel != nil {
		f.cancel()
		f.cancel = nil
	}
	f.gen++
	var zero T
	f.state = StateIdle
	f.data = zero
	f.err = nil
}

func (f *Fetcher[T]) State() FetchState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Data returns the last successful result.
func (f *Fetcher[T]) Data() T {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.data
}

// Err returns the failure reason of the last fetch, or nil.
func (f *Fetcher[T]) Err() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err
}
