package memory

import "sync"

// keyLocks hands out one mutex per vote slot and drops it once nobody
// waits on it.
type keyLocks struct {
	mu    sync.Mutex
	slots map[voteKey]*slot
}

type slot struct {
	mu      sync.Mutex
	waiters int
}

func newKeyLocks() *keyLocks { return &keyLocks{slots: make(map[voteKey]*slot)} }

func (l *keyLocks) lock(k voteKey) (unlock func()) {
	l.mu.Lock()
	s, ok := l.slots[k]
	if !ok {
		s = &slot{}
		l.slots[k] = s
	}
	s.waiters++
	l.mu.Unlock()

	s.mu.Lock()
	return func() {
		s.mu.Unlock()
		l.mu.Lock()
		s.waiters--
		if s.waiters == 0 {
			delete(l.slots, k)
		}
		l.mu.Unlock()
	}
}
