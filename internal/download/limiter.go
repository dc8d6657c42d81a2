// Package download bounds and runs media fetches.
package download

import "sync"

// Limiter caps simultaneous download jobs per user. One instance lives
// per process and is passed by reference into whoever arbitrates jobs;
// it is the only mutable state shared across sessions.
//
// This is a soft fairness control: it bounds per-user parallelism, not
// total concurrency or disk usage.
type Limiter struct {
	mu     sync.Mutex
	limit  int
	active map[int64]int
}

// NewLimiter creates a limiter with the given per-user ceiling.
func NewLimiter(limit int) *Limiter {
	return &Limiter{
		limit:  limit,
		active: make(map[int64]int),
	}
}

// TryAcquire reserves a job slot for the user. It reports false, without
// changing the count, when the user is already at the ceiling.
func (l *Limiter) TryAcquire(userID int64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.active[userID] >= l.limit {
		return false
	}
	l.active[userID]++
	return true
}

// Release frees a job slot. The count never goes below zero, so an
// unpaired release is harmless.
func (l *Limiter) Release(userID int64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.active[userID] > 0 {
		l.active[userID]--
	}
	if l.active[userID] == 0 {
		delete(l.active, userID)
	}
}

// Active returns the user's current in-flight job count.
func (l *Limiter) Active(userID int64) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.active[userID]
}
