package common

import "errors"

var ErrReentrantCall = errors.New("reentrant call rejected")

// ReentrancyLatch rejects nested entry into guarded operations. Ledger calls
// are serialized, so the latch is a plain flag rather than a mutex: a nested
// call observed while the latch is held is a synchronous callback re-entering
// the ledger and must fail immediately instead of waiting.
type ReentrancyLatch struct {
	entered bool
}

// Enter acquires the latch, failing if it is already held.
func (l *ReentrancyLatch) Enter() error {
	if l == nil {
		return nil
	}
	if l.entered {
		return ErrReentrantCall
	}
	l.entered = true
	return nil
}

// Exit releases the latch. Safe to call on all return paths.
func (l *ReentrancyLatch) Exit() {
	if l == nil {
		return
	}
	l.entered = false
}
