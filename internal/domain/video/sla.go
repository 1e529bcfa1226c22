package video

import "time"

// SlaStatus classifies a video against its stage deadline.
type SlaStatus string

const (
	SlaOnTrack   SlaStatus = "on_track"
	SlaDueSoon   SlaStatus = "due_soon"
	SlaOverdue   SlaStatus = "overdue"
	SlaNoDueDate SlaStatus = "no_due_date"
)

// EvaluateSLA classifies now against the stage deadline. warn is the window
// before the deadline during which an item counts as due_soon.
func EvaluateSLA(deadline *time.Time, now time.Time, warn time.Duration) SlaStatus {
	if deadline == nil {
		return SlaNoDueDate
	}

	switch {
	case !now.Before(*deadline):
		return SlaOverdue
	case !now.Before(deadline.Add(-warn)):
		return SlaDueSoon
	default:
		return SlaOnTrack
	}
}

const (
	priorityBucketSpan = int64(10_000_000)
	maxAgeMinutes      = priorityBucketSpan - 1
)

// PriorityScore orders videos for board display: overdue first, then
// due_soon, then on_track, then undated, ties broken by longer time in the
// current stage. Higher score sorts first. Display-only, never authorization.
func PriorityScore(sla SlaStatus, ageInStage time.Duration) int64 {
	var bucket int64
	switch sla {
	case SlaOverdue:
		bucket = 3
	case SlaDueSoon:
		bucket = 2
	case SlaOnTrack:
		bucket = 1
	default:
		bucket = 0
	}

	age := int64(ageInStage / time.Minute)
	if age < 0 {
		age = 0
	}
	if age > maxAgeMinutes {
		age = maxAgeMinutes
	}

	return bucket*priorityBucketSpan + age
}
