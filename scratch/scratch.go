// Package scratch provides a shared marshaling buffer for arguments passed to native calls.
//
// One caller at a time owns the shared buffer. A caller that cannot get it within the wait bound
// gets a private allocation instead, so a call never blocks on another one for long.
package scratch

import (
	"context"
	"errors"
	"math/bits"
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"
)

const (
	// DefaultWait bounds how long Acquire waits for the shared buffer.
	DefaultWait = 10 * time.Millisecond
	minShift    = 4  // 16 bytes
	maxShift    = 22 // 4 MiB
)

var ErrReleased = errors.New("lease already released")

type (
	// Buffer is a shared scratch buffer. The zero value is not usable, see New.
	Buffer struct {
		Wait  time.Duration //wait bound, DefaultWait when zero
		Limit int           //requests above are always private, no limit when zero
		sem   *semaphore.Weighted
		buf   []byte
		users atomic.Int32
	}
	// Lease is one use of a buffer, either the shared one or a private allocation.
	Lease struct {
		owner    *Buffer
		b        []byte
		shared   bool
		released atomic.Bool
	}
)

// New creates a buffer. limit caps the shared capacity, zero for none.
func New(limit int) *Buffer {
	return &Buffer{Limit: limit, sem: semaphore.NewWeighted(1)}
}

// Size is the capacity allocated for a request of n bytes: at least 16, the next power of two
// up to 4 MiB, then the next multiple of 4 MiB.
func Size(n int) int {
	switch {
	case n <= 1<<minShift:
		return 1 << minShift
	case n <= 1<<maxShift:
		return 1 << bits.Len(uint(n-1))
	default:
		return (n + 1<<maxShift - 1) >> maxShift << maxShift
	}
}

// Acquire returns a lease of at least n bytes, the bytes are zeroed.
// The shared buffer is used when it becomes free within the wait bound, else a private one is allocated.
func (b *Buffer) Acquire(ctx context.Context, n int) (*Lease, error) {
	if n < 0 {
		return nil, errors.New("negative scratch size")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if b.Limit > 0 && n > b.Limit {
		return b.private(n), nil
	}
	wait := b.Wait
	if wait <= 0 {
		wait = DefaultWait
	}
	tctx, cancel := context.WithTimeout(ctx, wait)
	defer cancel()
	if err := b.sem.Acquire(tctx, 1); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return b.private(n), nil
	}
	if cap(b.buf) < n {
		b.buf = make([]byte, Size(n))
	}
	s := b.buf[:n]
	clear(s)
	return &Lease{owner: b, b: s, shared: true}, nil
}

// TryAcquire is Acquire without waiting.
func (b *Buffer) TryAcquire(n int) *Lease {
	if n < 0 || (b.Limit > 0 && n > b.Limit) || !b.sem.TryAcquire(1) {
		return b.private(max(n, 0))
	}
	if cap(b.buf) < n {
		b.buf = make([]byte, Size(n))
	}
	s := b.buf[:n]
	clear(s)
	return &Lease{owner: b, b: s, shared: true}
}

func (b *Buffer) private(n int) *Lease {
	return &Lease{owner: b, b: make([]byte, n, Size(n))}
}

// Retain registers a user of the buffer.
func (b *Buffer) Retain() { b.users.Add(1) }

// Drop unregisters a user; the last one frees the shared memory once it is no longer leased.
func (b *Buffer) Drop() {
	if b.users.Add(-1) > 0 {
		return
	}
	if err := b.sem.Acquire(context.Background(), 1); err != nil {
		return
	}
	if b.users.Load() <= 0 {
		b.buf = nil
	}
	b.sem.Release(1)
}

// Cap is the capacity of the shared memory, zero once freed and -1 while leased.
func (b *Buffer) Cap() int {
	if !b.sem.TryAcquire(1) {
		return -1
	}
	defer b.sem.Release(1)
	return cap(b.buf)
}

// Bytes of the lease, invalid after Release.
func (l *Lease) Bytes() []byte { return l.b }

// Shared reports whether the lease holds the shared buffer.
func (l *Lease) Shared() bool { return l.shared }

// Release gives the shared buffer back, a private lease is simply dropped.
func (l *Lease) Release() error {
	if !l.released.CompareAndSwap(false, true) {
		return ErrReleased
	}
	if l.shared {
		l.owner.sem.Release(1)
	}
	l.b = nil
	return nil
}

// CString copies s into a NUL terminated lease.
func (b *Buffer) CString(ctx context.Context, s string) (*Lease, error) {
	l, err := b.Acquire(ctx, len(s)+1)
	if err != nil {
		return nil, err
	}
	copy(l.b, s)
	return l, nil
}
