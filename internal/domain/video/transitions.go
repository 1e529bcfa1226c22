package video

// transitions is the authoritative status graph: forward edges plus the
// defined reject/redo edges. The admin UI keeps a best-effort copy for
// disabling controls; only this table authorizes a change.
var transitions = map[RecordingStatus][]RecordingStatus{
	StatusNeedsScript:        {StatusGeneratingScript, StatusNotRecorded, StatusRejected},
	StatusGeneratingScript:   {StatusNeedsScript, StatusNotRecorded, StatusRejected},
	StatusNotRecorded:        {StatusRecorded, StatusRejected},
	StatusRecorded:           {StatusEdited, StatusReadyForReview, StatusRejected, StatusNotRecorded},
	StatusEdited:             {StatusReadyToPost, StatusRejected, StatusRecorded},
	StatusReadyForReview:     {StatusApprovedNeedsEdits, StatusReadyToPost, StatusRejected, StatusRecorded},
	StatusApprovedNeedsEdits: {StatusReadyToPost, StatusRejected, StatusReadyForReview},
	StatusReadyToPost:        {StatusPosted, StatusRejected, StatusEdited},
	StatusPosted:             {},
	StatusRejected:           {StatusNeedsScript, StatusNotRecorded, StatusRecorded},
}

// CanTransition reports whether from -> to is a legal edge.
func CanTransition(from, to RecordingStatus) bool {
	for _, target := range transitions[from] {
		if target == to {
			return true
		}
	}
	return false
}

// AllowedTargets returns the legal targets from the given status.
func AllowedTargets(from RecordingStatus) []RecordingStatus {
	targets := transitions[from]
	out := make([]RecordingStatus, len(targets))
	copy(out, targets)
	return out
}
