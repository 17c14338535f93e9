package ticketrw

import (
	"sync"
	"testing"
)

func BenchmarkRWLock_Read(b *testing.B) {
	var rw RWLock
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			rw.RLock()
			rw.RUnlock()
		}
	})
}

func BenchmarkRWLock_ReadSpin(b *testing.B) {
	var rw RWLock
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			rw.RLockSpin()
			rw.RUnlock()
		}
	})
}

func BenchmarkRWLock_Write(b *testing.B) {
	var rw RWLock
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			rw.Lock()
			rw.Unlock()
		}
	})
}

func BenchmarkRWLock_Mixed(b *testing.B) {
	var rw RWLock
	b.RunParallel(func(pb *testing.PB) {
		i := 0
		for pb.Next() {
			i++
			if i%10 == 0 {
				rw.Lock()
				rw.Unlock()
			} else {
				rw.RLock()
				rw.RUnlock()
			}
		}
	})
}

func BenchmarkSyncRWMutex_Read(b *testing.B) {
	var mu sync.RWMutex
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			mu.RLock()
			mu.RUnlock()
		}
	})
}

func BenchmarkSyncRWMutex_Write(b *testing.B) {
	var mu sync.RWMutex
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			mu.Lock()
			mu.Unlock()
		}
	})
}
