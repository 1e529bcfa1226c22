package video

import "time"

// Lease is a time-boxed exclusive assignment of a video to one operator.
// A nil expiry means the lease never lapses on its own.
type Lease struct {
	ClaimedBy string
	ClaimedAt time.Time
	ExpiresAt *time.Time
}

// IsActive reports whether the lease still excludes other operators at now.
// An expired lease behaves exactly like no lease everywhere.
func (l Lease) IsActive(now time.Time) bool {
	if l.ClaimedBy == "" {
		return false
	}
	return l.ExpiresAt == nil || l.ExpiresAt.After(now)
}

// HeldBy reports whether actor holds an active lease at now.
func (l Lease) HeldBy(actor string, now time.Time) bool {
	return l.IsActive(now) && l.ClaimedBy == actor
}
