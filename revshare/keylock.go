package revshare

import "sync"

// keyLocks hands out one mutex per PeriodKey. Entries are reference counted
// and dropped once no goroutine holds or waits on them.
type keyLocks struct {
	mu    sync.Mutex
	locks map[PeriodKey]*keyLock
}

type keyLock struct {
	mu   sync.Mutex
	refs int
}

// lock blocks until key is held and returns the matching unlock func.
func (k *keyLocks) lock(key PeriodKey) func() {
	k.mu.Lock()
	if k.locks == nil {
		k.locks = make(map[PeriodKey]*keyLock)
	}
	l, ok := k.locks[key]
	if !ok {
		l = &keyLock{}
		k.locks[key] = l
	}
	l.refs++
	k.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		k.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}
