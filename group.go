package ticketrw

import (
	"sync/atomic"

	"github.com/llxisdsh/pb"
)

// RWLockGroup provides ticket-ordered reader-writer locking on
// arbitrary keys (string, int, struct, ...). It dynamically manages
// one RWLock per active key.
//
// Features:
//   - RLock/RUnlock for shared access, Lock/Unlock for exclusive.
//   - TryLock/TryRLock single-attempt variants.
//   - Infinite keys, no pre-allocation: a key's lock exists only
//     while it is held or waited on, then is removed from memory.
//
// Usage:
//
//	var group RWLockGroup[string]
//
//	// Readers
//	group.RLock("config")
//	read(config)
//	group.RUnlock("config")
//
//	// Writer
//	group.Lock("config")
//	write(config)
//	group.Unlock("config")
//
// Implementation Note:
// Entries are reference counted. The count covers holders and queued
// waiters, and the entry is deleted when it drops to zero.
type RWLockGroup[K comparable] struct {
	_ noCopy
	m pb.MapOf[K, *rwGroupEntry]
}

type rwGroupEntry struct {
	mu  RWLock
	ref int32
}

// enter pins the entry for k, creating it on first use.
func (g *RWLockGroup[K]) enter(k K) *rwGroupEntry {
	var e *rwGroupEntry
	g.m.ProcessEntry(
		k,
		func(l *pb.EntryOf[K, *rwGroupEntry]) (*pb.EntryOf[K, *rwGroupEntry], *rwGroupEntry, bool) {
			if l != nil {
				e = l.Value
				atomic.AddInt32(&e.ref, 1)
				return l, e, true
			}
			e = &rwGroupEntry{ref: 1}
			return &pb.EntryOf[K, *rwGroupEntry]{Value: e}, e, false
		},
	)
	return e
}

// leave drops one pin and deletes the entry when none remain.
func (g *RWLockGroup[K]) leave(k K) {
	g.m.ProcessEntry(
		k,
		func(l *pb.EntryOf[K, *rwGroupEntry]) (*pb.EntryOf[K, *rwGroupEntry], *rwGroupEntry, bool) {
			if l == nil {
				return nil, nil, false
			}
			if atomic.AddInt32(&l.Value.ref, -1) <= 0 {
				return nil, nil, true
			}
			return l, nil, false
		},
	)
}

// Lock acquires the write lock for k, blocking until granted.
func (g *RWLockGroup[K]) Lock(k K) {
	g.enter(k).mu.Lock()
}

// TryLock attempts the write lock for k without blocking. Like
// [RWLock.TryLock], a single attempt that races another acquisition
// may report false.
func (g *RWLockGroup[K]) TryLock(k K) bool {
	e := g.enter(k)
	if e.mu.TryLock() {
		return true
	}
	g.leave(k)
	return false
}

// Unlock releases the write lock for k.
func (g *RWLockGroup[K]) Unlock(k K) {
	e, ok := g.m.Load(k)
	if !ok {
		return
	}
	// Release before dropping the pin: the entry must stay reachable
	// while anyone can still route to its lock, otherwise a racing
	// Lock on a fresh entry would overlap this holder.
	e.mu.Unlock()
	g.leave(k)
}

// RLock acquires a read lock for k, blocking until granted.
func (g *RWLockGroup[K]) RLock(k K) {
	g.enter(k).mu.RLock()
}

// TryRLock attempts a read lock for k without blocking.
func (g *RWLockGroup[K]) TryRLock(k K) bool {
	e := g.enter(k)
	if e.mu.TryRLock() {
		return true
	}
	g.leave(k)
	return false
}

// RUnlock releases a read lock for k.
func (g *RWLockGroup[K]) RUnlock(k K) {
	e, ok := g.m.Load(k)
	if !ok {
		return
	}
	e.mu.RUnlock()
	g.leave(k)
}
