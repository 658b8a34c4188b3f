package assets

import (
	"context"
	"sync"

	"github.com/spaghettifunk/extrudo/engine/core"
)

type FutureState uint8

const (
	FuturePending FutureState = iota
	FutureLoaded
	FutureFailed
)

func (s FutureState) String() string {
	switch s {
	case FuturePending:
		return "pending"
	case FutureLoaded:
		return "loaded"
	default:
		return "failed"
	}
}

// Future is the handle of one asynchronous geometry load. It resolves
// exactly once, to either a Geometry or an error.
type Future struct {
	id     core.Identifier
	url    string
	cancel context.CancelFunc

	mu       sync.Mutex
	state    FutureState
	geometry *Geometry
	err      error
	done     chan struct{}
}

func newFuture(url string, cancel context.CancelFunc) *Future {
	return &Future{
		id:     core.NewIdentifier(),
		url:    url,
		cancel: cancel,
		done:   make(chan struct{}),
	}
}

// NewResolvedFuture returns a future that already failed or loaded, for
// callers that need to report synchronously.
func NewResolvedFuture(url string, g *Geometry, err error) *Future {
	f := newFuture(url, func() {})
	f.resolve(g, err)
	return f
}

func (f *Future) ID() core.Identifier {
	return f.id
}

func (f *Future) URL() string {
	return f.url
}

func (f *Future) State() FutureState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Done is closed once the future leaves the pending state.
func (f *Future) Done() <-chan struct{} {
	return f.done
}

// Result returns the outcome; both values are nil while pending.
func (f *Future) Result() (*Geometry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.geometry, f.err
}

// Wait blocks until the load resolves or ctx is done.
func (f *Future) Wait(ctx context.Context) (*Geometry, error) {
	select {
	case <-f.done:
		return f.Result()
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Cancel aborts a pending load. The future resolves as failed with
// context.Canceled unless the load already finished.
func (f *Future) Cancel() {
	f.cancel()
	f.resolve(nil, context.Canceled)
}

func (f *Future) resolve(g *Geometry, err error) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state != FuturePending {
		return false
	}
	if err != nil {
		f.state = FutureFailed
		f.err = err
	} else {
		f.state = FutureLoaded
		f.geometry = g
	}
	close(f.done)
	return true
}
