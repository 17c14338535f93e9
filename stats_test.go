package ticketrw

import (
	"testing"
)

func TestStats_CountsCalls(t *testing.T) {
	var s Stats
	rw := New(WithStats(&s))

	rw.RLock()
	if !rw.TryRLock() {
		t.Fatal("TryRLock rejected alongside a reader")
	}
	if rw.TryLock() {
		t.Fatal("TryLock admitted alongside readers")
	}
	rw.RUnlock()
	rw.RUnlock()

	rw.Lock()
	if rw.TryRLock() {
		t.Fatal("TryRLock admitted alongside a writer")
	}
	if rw.TryLock() {
		t.Fatal("TryLock admitted alongside a writer")
	}
	rw.Unlock()

	// Denied attempts count the same as granted ones.
	want := StatsSnapshot{ReadCalls: 3, WriteCalls: 3}
	if got := s.Snapshot(); got != want {
		t.Fatalf("snapshot = %+v, want %+v", got, want)
	}
}

func TestStats_CountsWaits(t *testing.T) {
	var s Stats
	rw := New(WithStats(&s))

	rw.RLock()
	writerDone := make(chan struct{})
	go func() {
		rw.Lock()
		rw.Unlock()
		close(writerDone)
	}()
	waitUntil(t, func() bool { return s.Snapshot().WriteWaits >= 1 }, "blocked writer never counted a wait")
	rw.RUnlock()
	<-writerDone

	rw.Lock()
	readerDone := make(chan struct{})
	go func() {
		rw.RLock()
		rw.RUnlock()
		close(readerDone)
	}()
	waitUntil(t, func() bool { return s.Snapshot().ReadWaits >= 1 }, "blocked reader never counted a wait")
	rw.Unlock()
	<-readerDone

	got := s.Snapshot()
	if got.ReadCalls < 1 || got.WriteCalls < 2 {
		t.Fatalf("call counters lost traffic: %+v", got)
	}
}

func TestStats_Reset(t *testing.T) {
	var s Stats
	rw := New(WithStats(&s))
	rw.Lock()
	rw.Unlock()
	rw.RLock()
	rw.RUnlock()

	s.Reset()
	if got := s.Snapshot(); got != (StatsSnapshot{}) {
		t.Fatalf("snapshot after Reset = %+v, want all zero", got)
	}
}

func TestStats_SharedAcrossLocks(t *testing.T) {
	var s Stats
	a := New(WithStats(&s))
	b := New(WithStats(&s))

	a.Lock()
	a.Unlock()
	b.Lock()
	b.Unlock()

	if got := s.Snapshot().WriteCalls; got != 2 {
		t.Fatalf("shared WriteCalls = %d, want 2", got)
	}
}
