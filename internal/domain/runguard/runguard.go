// Package runguard keeps at most one analysis run in flight per client.
package runguard

import (
	"context"
	"sync"
	"sync/atomic"
)

// Guard is the server-side form of the disabled analyze button.
type Guard interface {
	// Acquire marks id busy. It returns false when id is already busy or
	// the guard is full.
	Acquire(ctx context.Context, id string) bool

	// Release frees id. Releasing a free id is a no-op.
	Release(ctx context.Context, id string)

	// Held reports whether id is busy.
	Held(id string) bool

	Size() int64
}

// inMemoryGuard implements Guard with a map. In bounded mode (maxSize > 0)
// Acquire fails once maxSize ids are held. Held ids are never evicted.
type inMemoryGuard struct {
	mu      sync.Mutex
	held    map[string]struct{}
	maxSize int
	size    atomic.Int64
}

// NewInMemoryGuard creates a guard with configuration options.
func NewInMemoryGuard(opts ...Option) Guard {
	g := &inMemoryGuard{
		maxSize: 10_000,
	}
	for _, opt := range opts {
		opt(g)
	}
	g.held = make(map[string]struct{})
	return g
}

func (g *inMemoryGuard) Acquire(_ context.Context, id string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, busy := g.held[id]; busy {
		return false
	}
	if g.maxSize > 0 && len(g.held) >= g.maxSize {
		return false
	}
	g.held[id] = struct{}{}
	g.size.Add(1)
	return true
}

func (g *inMemoryGuard) Release(_ context.Context, id string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, busy := g.held[id]; busy {
		delete(g.held, id)
		g.size.Add(-1)
	}
}

func (g *inMemoryGuard) Held(id string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, busy := g.held[id]
	return busy
}

// Size returns the number of held ids.
func (g *inMemoryGuard) Size() int64 {
	return g.size.Load()
}
