package video

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrStatusRequired = errors.New("recording status is required")
	ErrInvalidStatus  = errors.New("invalid recording status")

	ErrInvalidTransition    = errors.New("invalid status transition")
	ErrMissingRequiredField = errors.New("missing required field")

	ErrAlreadyClaimed = errors.New("video already claimed")
	ErrClaimedByOther = errors.New("claim held by another operator")
	ErrNotClaimed     = errors.New("video has no active claim")
	ErrLockedByOther  = errors.New("video locked by another operator")
)

// TransitionDeniedError carries the detail a caller needs to render a
// precise rejection: the current status, the requested status, and any
// required fields that were missing.
type TransitionDeniedError struct {
	Reason    error
	Current   RecordingStatus
	Requested RecordingStatus
	Missing   []string
}

func (e *TransitionDeniedError) Error() string {
	if len(e.Missing) > 0 {
		return fmt.Sprintf("%v: %s -> %s (missing %s)", e.Reason, e.Current, e.Requested, strings.Join(e.Missing, ", "))
	}
	return fmt.Sprintf("%v: %s -> %s", e.Reason, e.Current, e.Requested)
}

func (e *TransitionDeniedError) Unwrap() error { return e.Reason }

// ClaimConflictError reports who holds the competing lease and when it lapses.
type ClaimConflictError struct {
	Reason    error
	HeldBy    string
	ExpiresAt *time.Time
}

func (e *ClaimConflictError) Error() string {
	if e.ExpiresAt != nil {
		return fmt.Sprintf("%v: held by %s until %s", e.Reason, e.HeldBy, e.ExpiresAt.UTC().Format(time.RFC3339))
	}
	return fmt.Sprintf("%v: held by %s", e.Reason, e.HeldBy)
}

func (e *ClaimConflictError) Unwrap() error { return e.Reason }
