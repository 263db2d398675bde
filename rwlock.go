package bucketmap

import (
	"runtime"
	"sync/atomic"
	"time"
)

// rwLock is a spin-based reader/writer lock guarding a SyncMap.
//
// It is writer-preferred: a writer first sets the write bit, which blocks
// new readers, then waits for the readers already inside to drain.
// Critical sections are expected to be short (a bucket scan or a resize).
type rwLock struct {
	_     noCopy
	state atomic.Uint32
}

const (
	rwWriteMask = 1
	rwReadShift = 1
	rwReadUnit  = 1 << rwReadShift

	// spinLimit is the number of yields before falling back to sleeping.
	spinLimit = 16
)

// Lock acquires the write lock.
func (l *rwLock) Lock() {
	var spins int
	for {
		s := l.state.Load()
		if s&rwWriteMask == 0 && l.state.CompareAndSwap(s, s|rwWriteMask) {
			for l.state.Load()>>rwReadShift != 0 {
				delay(&spins)
			}
			return
		}
		delay(&spins)
	}
}

// Unlock releases the write lock.
func (l *rwLock) Unlock() {
	l.state.Store(0)
}

// RLock acquires a read lock.
func (l *rwLock) RLock() {
	var spins int
	for {
		s := l.state.Load()
		if s&rwWriteMask == 0 && l.state.CompareAndSwap(s, s+rwReadUnit) {
			return
		}
		delay(&spins)
	}
}

// RUnlock releases a read lock.
func (l *rwLock) RUnlock() {
	l.state.Add(^uint32(rwReadUnit - 1))
}

// delay yields a few times, then sleeps.
// The 500µs sleep follows folly's Sleeper:
// https://github.com/facebook/folly/blob/main/folly/synchronization/detail/Sleeper.h
func delay(spins *int) {
	if *spins < spinLimit {
		*spins++
		runtime.Gosched()
		return
	}
	*spins = 0
	time.Sleep(500 * time.Microsecond)
}
