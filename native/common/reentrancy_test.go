package common

import (
	"errors"
	"testing"
)

func TestReentrancyLatchRejectsNestedEntry(t *testing.T) {
	latch := &ReentrancyLatch{}
	if err := latch.Enter(); err != nil {
		t.Fatalf("first enter: %v", err)
	}
	if err := latch.Enter(); !errors.Is(err, ErrReentrantCall) {
		t.Fatalf("expected ErrReentrantCall, got %v", err)
	}
	latch.Exit()
	if err := latch.Enter(); err != nil {
		t.Fatalf("enter after exit: %v", err)
	}
}

func TestGuardPaused(t *testing.T) {
	view := pauseMap{"transfer": true}
	if err := Guard(view, "transfer"); !errors.Is(err, ErrModulePaused) {
		t.Fatalf("expected ErrModulePaused, got %v", err)
	}
	if err := Guard(view, "drop"); err != nil {
		t.Fatalf("unpaused module: %v", err)
	}
	if err := Guard(nil, "transfer"); err != nil {
		t.Fatalf("nil view: %v", err)
	}
}

type pauseMap map[string]bool

func (p pauseMap) IsPaused(module string) bool { return p[module] }
