package service

import (
	"sync"

	"github.com/google/uuid"
)

// drawLocks hands out one mutex per draw so operations on the same draw run
// one at a time while different draws proceed in parallel.
type drawLocks struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*drawLock
}

type drawLock struct {
	mu      sync.Mutex
	holders int
}

func newDrawLocks() *drawLocks {
	return &drawLocks{locks: make(map[uuid.UUID]*drawLock)}
}

// lock blocks until the draw is free and returns the matching unlock.
func (l *drawLocks) lock(id uuid.UUID) func() {
	l.mu.Lock()
	dl, ok := l.locks[id]
	if !ok {
		dl = &drawLock{}
		l.locks[id] = dl
	}
	dl.holders++
	l.mu.Unlock()

	dl.mu.Lock()
	return func() {
		dl.mu.Unlock()

		l.mu.Lock()
		dl.holders--
		if dl.holders == 0 {
			delete(l.locks, id)
		}
		l.mu.Unlock()
	}
}
