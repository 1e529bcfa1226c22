package video

import (
	"fmt"
	"strings"
)

// RecordingStatus is the pipeline stage a video currently sits in.
type RecordingStatus string

const (
	StatusNeedsScript        RecordingStatus = "NEEDS_SCRIPT"
	StatusGeneratingScript   RecordingStatus = "GENERATING_SCRIPT"
	StatusNotRecorded        RecordingStatus = "NOT_RECORDED"
	StatusRecorded           RecordingStatus = "RECORDED"
	StatusEdited             RecordingStatus = "EDITED"
	StatusReadyForReview     RecordingStatus = "READY_FOR_REVIEW"
	StatusApprovedNeedsEdits RecordingStatus = "APPROVED_NEEDS_EDITS"
	StatusReadyToPost        RecordingStatus = "READY_TO_POST"
	StatusPosted             RecordingStatus = "POSTED"
	StatusRejected           RecordingStatus = "REJECTED"
)

var allStatuses = []RecordingStatus{
	StatusNeedsScript,
	StatusGeneratingScript,
	StatusNotRecorded,
	StatusRecorded,
	StatusEdited,
	StatusReadyForReview,
	StatusApprovedNeedsEdits,
	StatusReadyToPost,
	StatusPosted,
	StatusRejected,
}

// AllStatuses returns every recording status in pipeline order.
func AllStatuses() []RecordingStatus {
	out := make([]RecordingStatus, len(allStatuses))
	copy(out, allStatuses)
	return out
}

// ParseStatus normalizes and validates a raw status string.
func ParseStatus(raw string) (RecordingStatus, error) {
	trimmed := strings.ToUpper(strings.TrimSpace(raw))
	if trimmed == "" {
		return "", ErrStatusRequired
	}

	candidate := RecordingStatus(trimmed)
	for _, status := range allStatuses {
		if status == candidate {
			return status, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidStatus, raw)
}

// IsTerminal reports whether the status permits no forward progress at all.
// REJECTED keeps its redo edges, so only POSTED qualifies.
func (s RecordingStatus) IsTerminal() bool {
	return s == StatusPosted
}

func (s RecordingStatus) String() string {
	return string(s)
}
