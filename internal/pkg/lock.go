package pkg

import "sync"

// KeyedMutex serializes callers per key. The engine locks the game id
// for game operations and the account for ledger-only operations, so
// two calls against the same aggregate never interleave while unrelated
// games run in parallel.
type KeyedMutex struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewKeyedMutex() *KeyedMutex {
	return &KeyedMutex{
		locks: make(map[string]*sync.Mutex),
	}
}

// Lock acquires the mutex for key and returns its unlock function.
// Entries are kept for the life of the process; the key space (game ids
// and accounts) is small and bounded by actual usage.
func (that *KeyedMutex) Lock(key string) func() {
	that.mu.Lock()
	lock, ok := that.locks[key]
	if !ok {
		lock = &sync.Mutex{}
		that.locks[key] = lock
	}
	that.mu.Unlock()

	lock.Lock()

	return lock.Unlock
}
