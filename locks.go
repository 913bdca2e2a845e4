package branchlink

import "sync"

// ticketLocks serializes mutating operations per ticket id so a manual
// associate and a concurrent auto-detect confirmation cannot interleave
// into a lost update. Read-only operations do not take these locks.
type ticketLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newTicketLocks() *ticketLocks {
	return &ticketLocks{locks: make(map[string]*sync.Mutex)}
}

// lock acquires the mutex for a ticket and returns the unlock func.
func (l *ticketLocks) lock(ticketID string) func() {
	l.mu.Lock()
	m, ok := l.locks[ticketID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[ticketID] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}
