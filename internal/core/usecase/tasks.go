package usecase

import (
	"context"
	"sync"
)

// taskGroup runs remote calls in the background and lets the owner cancel
// them on teardown or supersession. Completions are expected to re-check
// ownership before touching state; cancellation alone does not guarantee a
// late callback never runs.
type taskGroup struct {
	mu      sync.Mutex
	wg      sync.WaitGroup
	ctx     context.Context
	cancel  context.CancelFunc
	closed  bool
	pending map[uint64]context.CancelFunc
	nextID  uint64
}

func newTaskGroup() *taskGroup {
	ctx, cancel := context.WithCancel(context.Background())
	return &taskGroup{
		ctx:     ctx,
		cancel:  cancel,
		pending: make(map[uint64]context.CancelFunc),
	}
}

// Go starts fn unless the group is closed.
func (g *taskGroup) Go(fn func(ctx context.Context)) bool {
	g.mu.Lock()
	if g.closed {
		g.mu.Unlock()
		return false
	}
	ctx, cancel := context.WithCancel(g.ctx)
	g.nextID++
	id := g.nextID
	g.pending[id] = cancel
	g.wg.Add(1)
	g.mu.Unlock()

	go func() {
		defer g.wg.Done()
		defer func() {
			g.mu.Lock()
			delete(g.pending, id)
			g.mu.Unlock()
			cancel()
		}()
		fn(ctx)
	}()
	return true
}

// CancelPending cancels every running task but keeps the group usable.
func (g *taskGroup) CancelPending() {
	g.mu.Lock()
	defer g.mu.Unlock()
	for id, cancel := range g.pending {
		cancel()
		delete(g.pending, id)
	}
}

// Wait blocks until every started task has returned.
func (g *taskGroup) Wait() {
	g.wg.Wait()
}

func (g *taskGroup) Close() {
	g.mu.Lock()
	g.closed = true
	g.mu.Unlock()
	g.cancel()
}
