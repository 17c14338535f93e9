package opt

import (
	"testing"
)

func TestCacheLineSize(t *testing.T) {
	if CacheLineSize_ < 8 {
		t.Fatalf("CacheLineSize_ = %d, too small", CacheLineSize_)
	}
	if CacheLineSize_&(CacheLineSize_-1) != 0 {
		t.Fatalf("CacheLineSize_ = %d, not a power of 2", CacheLineSize_)
	}
}

func TestPause(t *testing.T) {
	// Smoke test: the hint must be callable in a tight loop on every
	// target, including the no-op stub.
	for range 1000 {
		Pause()
	}
}

func TestYieldPoint(t *testing.T) {
	for range 10 {
		YieldPoint()
	}
	if Race_ {
		t.Log("race build: YieldPoint reschedules")
	}
}
