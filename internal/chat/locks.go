package chat

import (
	"context"
	"sync"
)

// keyedLock serializes work per chat. Each chat gets a one-slot semaphore;
// a second request on the same chat parks on the channel until the in-flight
// one releases, so turns never interleave. Different chats never contend.
type keyedLock struct {
	mu   sync.Mutex
	sems map[string]chan struct{}
}

func newKeyedLock() *keyedLock {
	return &keyedLock{
		sems: make(map[string]chan struct{}),
	}
}

// acquire blocks until the chat is free or ctx expires. A ctx error means
// the caller never held the lock and must not release it. The returned
// channel is the exact semaphore the caller holds; release takes it back
// rather than re-resolving the key, so a forget plus re-create between
// acquire and release can never drain a successor's token.
func (l *keyedLock) acquire(ctx context.Context, key string) (chan struct{}, error) {
	l.mu.Lock()
	sem, ok := l.sems[key]
	if !ok {
		sem = make(chan struct{}, 1)
		l.sems[key] = sem
	}
	l.mu.Unlock()

	select {
	case sem <- struct{}{}:
		return sem, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (l *keyedLock) release(sem chan struct{}) {
	<-sem
}

// forget drops the semaphore of a deleted chat. Safe only when no request
// holds or waits on it, which chat deletion guarantees by acquiring first.
func (l *keyedLock) forget(key string) {
	l.mu.Lock()
	delete(l.sems, key)
	l.mu.Unlock()
}
