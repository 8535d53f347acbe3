package chat

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestKeyedLock_SerializesSameKey(t *testing.T) {
	l := newKeyedLock()
	ctx := context.Background()

	var mu sync.Mutex
	active := 0
	maxActive := 0

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sem, err := l.acquire(ctx, "chat-1")
			if err != nil {
				t.Errorf("acquire failed: %v", err)
				return
			}
			mu.Lock()
			active++
			if active > maxActive {
				maxActive = active
			}
			mu.Unlock()

			time.Sleep(time.Millisecond)

			mu.Lock()
			active--
			mu.Unlock()
			l.release(sem)
		}()
	}
	wg.Wait()

	if maxActive != 1 {
		t.Errorf("lock admitted %d holders at once", maxActive)
	}
}

func TestKeyedLock_DifferentKeysDoNotContend(t *testing.T) {
	l := newKeyedLock()
	ctx := context.Background()

	sem1, err := l.acquire(ctx, "chat-1")
	if err != nil {
		t.Fatal(err)
	}
	defer l.release(sem1)

	done := make(chan struct{})
	go func() {
		if sem2, err := l.acquire(ctx, "chat-2"); err == nil {
			l.release(sem2)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("independent chats blocked each other")
	}
}

func TestKeyedLock_AcquireHonorsContext(t *testing.T) {
	l := newKeyedLock()

	sem, err := l.acquire(context.Background(), "chat-1")
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if _, err := l.acquire(ctx, "chat-1"); err == nil {
		t.Fatal("acquire on a held lock returned without waiting for release")
	}

	// the holder can still release and a fresh acquire succeeds
	l.release(sem)
	if _, err := l.acquire(context.Background(), "chat-1"); err != nil {
		t.Fatalf("lock unusable after a cancelled waiter: %v", err)
	}
}

func TestKeyedLock_ReleaseTargetsAcquiredSemaphore(t *testing.T) {
	l := newKeyedLock()
	ctx := context.Background()

	// a stale holder releases after the key was forgotten and re-created
	stale, err := l.acquire(ctx, "chat-1")
	if err != nil {
		t.Fatal(err)
	}
	l.forget("chat-1")

	fresh, err := l.acquire(ctx, "chat-1")
	if err != nil {
		t.Fatal(err)
	}

	l.release(stale)

	// the fresh holder's token must be untouched, so the key stays busy
	busyCtx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := l.acquire(busyCtx, "chat-1"); err == nil {
		t.Fatal("stale release drained the successor's token")
	}

	l.release(fresh)
	if _, err := l.acquire(ctx, "chat-1"); err != nil {
		t.Fatalf("lock unusable after the real holder released: %v", err)
	}
}
