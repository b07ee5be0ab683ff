// Package locks provides per-wallet mutual exclusion for the transfer
// engine. Handles are created lazily and live for the life of the registry;
// multi-wallet acquisition always happens in ascending wallet-id order so
// two transfers moving money in opposite directions between the same pair
// of wallets cannot deadlock.
package locks

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"
)

// ErrLockContention is returned when a wallet lock cannot be acquired
// within the registry timeout. The operation is safe to retry.
var ErrLockContention = errors.New("wallet lock contention: acquisition timed out")

// DefaultTimeout bounds how long Acquire waits per registry, so a stuck
// holder surfaces as a retryable error instead of a hang.
const DefaultTimeout = 5 * time.Second

// Registry maps wallet ids to lock handles. Lookup-or-create is atomic.
// One registry is scoped to one engine instance and injected where needed.
type Registry struct {
	mu      sync.Mutex
	handles map[uint]chan struct{}
	timeout time.Duration
}

// NewRegistry creates a registry. A non-positive timeout falls back to
// DefaultTimeout.
func NewRegistry(timeout time.Duration) *Registry {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Registry{
		handles: make(map[uint]chan struct{}),
		timeout: timeout,
	}
}

// handle returns the lock channel for a wallet, creating it on first use.
// A buffered channel of size one acts as a mutex that supports timed and
// context-aware acquisition.
func (r *Registry) handle(walletID uint) chan struct{} {
	r.mu.Lock()
	defer r.mu.Unlock()
	ch, ok := r.handles[walletID]
	if !ok {
		ch = make(chan struct{}, 1)
		r.handles[walletID] = ch
	}
	return ch
}

// Acquire takes the locks for the given wallets in ascending id order,
// deduplicating repeated ids. It returns an idempotent release closure
// that must be called (typically deferred) on every path. On timeout or
// context cancellation every lock already held is released and
// ErrLockContention (or the context error) is returned.
func (r *Registry) Acquire(ctx context.Context, walletIDs ...uint) (func(), error) {
	ids := dedupeSorted(walletIDs)

	deadline := time.NewTimer(r.timeout)
	defer deadline.Stop()

	held := make([]chan struct{}, 0, len(ids))
	releaseHeld := func() {
		// Release in reverse acquisition order.
		for i := len(held) - 1; i >= 0; i-- {
			<-held[i]
		}
	}

	for _, id := range ids {
		ch := r.handle(id)
		select {
		case ch <- struct{}{}:
			held = append(held, ch)
		case <-deadline.C:
			releaseHeld()
			return nil, ErrLockContention
		case <-ctx.Done():
			releaseHeld()
			return nil, ctx.Err()
		}
	}

	var once sync.Once
	return func() { once.Do(releaseHeld) }, nil
}

func dedupeSorted(ids []uint) []uint {
	sorted := make([]uint, len(ids))
	copy(sorted, ids)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	out := sorted[:0]
	for i, id := range sorted {
		if i == 0 || id != sorted[i-1] {
			out = append(out, id)
		}
	}
	return out
}
