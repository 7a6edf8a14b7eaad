// Package spin provides a busy-wait mutual exclusion lock for code paths
// that must not sleep. Critical sections protected by it are required to be
// short and free of blocking calls.
package spin

import (
	"runtime"
	"sync/atomic"
)

// Lock is a spin lock. The zero value is unlocked. It must not be copied
// after first use.
type Lock struct {
	v atomic.Uint32
}

// Lock acquires the lock, spinning until it is free. The goroutine yields
// its processor between attempts so contending holders can run.
func (l *Lock) Lock() {
	for !l.v.CompareAndSwap(0, 1) {
		runtime.Gosched()
	}
}

// TryLock acquires the lock without spinning and reports whether it succeeded.
func (l *Lock) TryLock() bool {
	return l.v.CompareAndSwap(0, 1)
}

// Unlock releases the lock. Calling Unlock on an unlocked Lock is a caller
// error and corrupts the exclusion guarantee.
func (l *Lock) Unlock() {
	l.v.Store(0)
}
