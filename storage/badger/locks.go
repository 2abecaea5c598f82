package badger

import (
	"context"
	"sync"

	"github.com/poiesic/pitwall/core"
)

// keyedLocker hands out one mutual-exclusion lock per topic key.
// Locks are created on demand and dropped once nobody holds or waits on them.
type keyedLocker struct {
	mu    sync.Mutex
	locks map[core.TopicKey]*keyLock
}

type keyLock struct {
	sem  chan struct{}
	refs int // holders plus waiters
}

func newKeyedLocker() *keyedLocker {
	return &keyedLocker{locks: make(map[core.TopicKey]*keyLock)}
}

// lock blocks until the lock for key is held or ctx is done.
// The returned function releases the lock and must be called exactly once.
func (l *keyedLocker) lock(ctx context.Context, key core.TopicKey) (func(), error) {
	l.mu.Lock()
	kl, ok := l.locks[key]
	if !ok {
		kl = &keyLock{sem: make(chan struct{}, 1)}
		l.locks[key] = kl
	}
	kl.refs++
	l.mu.Unlock()

	select {
	case kl.sem <- struct{}{}:
		return func() {
			<-kl.sem
			l.release(key, kl)
		}, nil
	case <-ctx.Done():
		l.release(key, kl)
		return nil, ctx.Err()
	}
}

func (l *keyedLocker) release(key core.TopicKey, kl *keyLock) {
	l.mu.Lock()
	defer l.mu.Unlock()
	kl.refs--
	if kl.refs == 0 {
		delete(l.locks, key)
	}
}

// size returns the number of live locks.
func (l *keyedLocker) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
