package lockout

import (
	"errors"
	"time"
)

var ErrNotFound = errors.New("attempt record not found")

// AttemptRecord holds the failed login state for a single identifier.
// A zero LockedUntil means the identifier is not locked.
type AttemptRecord struct {
	FailureCount int       `json:"failure_count"`
	LastFailure  time.Time `json:"last_failure"`
	LockedUntil  time.Time `json:"locked_until"`
}

func (r *AttemptRecord) lockedAt(now time.Time) bool {
	return !r.LockedUntil.IsZero() && r.LockedUntil.After(now)
}

func (r *AttemptRecord) lockExpiredAt(now time.Time) bool {
	return !r.LockedUntil.IsZero() && !r.LockedUntil.After(now)
}

type LockStatus struct {
	Locked           bool `json:"locked"`
	RemainingSeconds int  `json:"remaining_seconds"`
}
