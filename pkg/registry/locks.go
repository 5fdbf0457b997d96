package registry

import (
	"sync"

	"github.com/cespare/xxhash/v2"
)

const lockShards = 64

// LockTable provides one mutex per key. Entries exist only while a key is
// locked or waited on; the map holding them is sharded by key hash.
type LockTable struct {
	shards [lockShards]lockShard
}

type lockShard struct {
	mu    sync.Mutex
	locks map[string]*keyLock
}

type keyLock struct {
	mu   sync.Mutex
	refs int
}

// NewLockTable returns an empty lock table.
func NewLockTable() *LockTable {
	t := &LockTable{}
	for i := range t.shards {
		t.shards[i].locks = make(map[string]*keyLock)
	}
	return t
}

// Lock blocks until key is free and returns the function that releases it.
func (t *LockTable) Lock(key string) (unlock func()) {
	s := &t.shards[xxhash.Sum64String(key)%lockShards]

	s.mu.Lock()
	kl, ok := s.locks[key]
	if !ok {
		kl = &keyLock{}
		s.locks[key] = kl
	}
	kl.refs++
	s.mu.Unlock()

	kl.mu.Lock()

	var once sync.Once
	return func() {
		once.Do(func() {
			kl.mu.Unlock()
			s.mu.Lock()
			if kl.refs--; kl.refs == 0 {
				delete(s.locks, key)
			}
			s.mu.Unlock()
		})
	}
}

// Len returns the number of keys currently locked or waited on.
func (t *LockTable) Len() int {
	n := 0
	for i := range t.shards {
		s := &t.shards[i]
		s.mu.Lock()
		n += len(s.locks)
		s.mu.Unlock()
	}
	return n
}
