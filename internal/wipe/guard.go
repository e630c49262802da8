package wipe

import "sync"

// guard tracks device paths with a wipe in flight.
type guard struct {
	mu     sync.Mutex
	active map[string]struct{}
}

func newGuard() *guard {
	return &guard{active: make(map[string]struct{})}
}

// acquire marks path busy. It returns false if path is already busy.
func (g *guard) acquire(path string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, busy := g.active[path]; busy {
		return false
	}
	g.active[path] = struct{}{}
	return true
}

func (g *guard) release(path string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.active, path)
}

// busy reports whether path has a wipe in flight.
func (g *guard) busy(path string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, ok := g.active[path]
	return ok
}
