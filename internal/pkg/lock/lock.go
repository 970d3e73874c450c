// Package lock keeps two ingestion passes from running at the same time.
package lock

import (
	"context"
	"sync/atomic"
)

// Guard hands out exclusive permission to run a pass.
// When ok is false the caller must skip its work; release is nil in that case.
type Guard interface {
	TryAcquire(ctx context.Context) (release func(), ok bool, err error)
}

// Local serialises passes inside one process.
type Local struct {
	running atomic.Bool
}

func NewLocal() *Local {
	return &Local{}
}

func (l *Local) TryAcquire(context.Context) (func(), bool, error) {
	if !l.running.CompareAndSwap(false, true) {
		return nil, false, nil
	}
	var once atomic.Bool
	return func() {
		if once.CompareAndSwap(false, true) {
			l.running.Store(false)
		}
	}, true, nil
}

// Running reports whether a pass currently holds the guard.
func (l *Local) Running() bool {
	return l.running.Load()
}

// Chain acquires every guard in order and releases them in reverse.
// A guard that refuses or fails releases the ones already held.
func Chain(guards ...Guard) Guard {
	return chain(guards)
}

type chain []Guard

func (c chain) TryAcquire(ctx context.Context) (func(), bool, error) {
	held := make([]func(), 0, len(c))
	releaseAll := func() {
		for i := len(held) - 1; i >= 0; i-- {
			held[i]()
		}
	}
	for _, g := range c {
		if g == nil {
			continue
		}
		release, ok, err := g.TryAcquire(ctx)
		if err != nil || !ok {
			releaseAll()
			return nil, false, err
		}
		held = append(held, release)
	}
	return releaseAll, true, nil
}
