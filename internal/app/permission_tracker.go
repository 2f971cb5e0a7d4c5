// internal/app/permission_tracker.go
package app

import "sync"

// PermissionTracker counts consecutive PermissionDenied results from the
// alert surface. Once the count reaches the threshold the condition is
// reported to foreground contexts instead of being retried silently.
type PermissionTracker struct {
	mu        sync.Mutex
	threshold int
	denied    int
}

func NewPermissionTracker(threshold int) *PermissionTracker {
	if threshold < 1 {
		threshold = 1
	}
	return &PermissionTracker{threshold: threshold}
}

// RecordDenied increments the streak and reports whether this call crossed the threshold.
func (p *PermissionTracker) RecordDenied() (crossed bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.denied++
	return p.denied == p.threshold
}

// RecordAllowed clears the streak.
func (p *PermissionTracker) RecordAllowed() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.denied = 0
}

// Warning reports whether the user needs to be told, and the current streak.
func (p *PermissionTracker) Warning() (bool, int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.denied >= p.threshold, p.denied
}
