// Package inflight stops a repeated user action from submitting the same
// request twice while the first is outstanding.
package inflight

import (
	"sync"

	"golang.org/x/sync/singleflight"
)

// Guard collapses concurrent calls that share a key into one execution.
type Guard struct {
	group singleflight.Group

	mu   sync.Mutex
	busy map[string]int
}

func New() *Guard {
	return &Guard{busy: make(map[string]int)}
}

// Do runs fn unless a call with the same key is already running, in which
// case it waits and returns that call's result with shared set.
func (g *Guard) Do(key string, fn func() (interface{}, error)) (v interface{}, shared bool, err error) {
	g.mu.Lock()
	g.busy[key]++
	g.mu.Unlock()
	defer func() {
		g.mu.Lock()
		if g.busy[key]--; g.busy[key] <= 0 {
			delete(g.busy, key)
		}
		g.mu.Unlock()
	}()
	v, err, shared = g.group.Do(key, fn)
	return v, shared, err
}

// Busy reports whether a call for key is outstanding.
func (g *Guard) Busy(key string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.busy[key] > 0
}

// Run is Do for typed results.
func Run[T any](g *Guard, key string, fn func() (T, error)) (T, bool, error) {
	v, shared, err := g.Do(key, func() (interface{}, error) { return fn() })
	if err != nil {
		var zero T
		return zero, shared, err
	}
	return v.(T), shared, nil
}
