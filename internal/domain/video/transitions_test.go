package video

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestCanTransitionEdges(t *testing.T) {
	cases := []struct {
		from, to RecordingStatus
		want     bool
	}{
		{StatusNeedsScript, StatusGeneratingScript, true},
		{StatusNeedsScript, StatusNotRecorded, true},
		{StatusNeedsScript, StatusRecorded, false},
		{StatusGeneratingScript, StatusNeedsScript, true},
		{StatusNotRecorded, StatusRecorded, true},
		{StatusNotRecorded, StatusEdited, false},
		{StatusRecorded, StatusEdited, true},
		{StatusRecorded, StatusReadyForReview, true},
		{StatusRecorded, StatusNotRecorded, true},
		{StatusRecorded, StatusPosted, false},
		{StatusEdited, StatusReadyToPost, true},
		{StatusEdited, StatusRecorded, true},
		{StatusReadyForReview, StatusApprovedNeedsEdits, true},
		{StatusReadyForReview, StatusReadyToPost, true},
		{StatusApprovedNeedsEdits, StatusReadyToPost, true},
		{StatusApprovedNeedsEdits, StatusReadyForReview, true},
		{StatusReadyToPost, StatusPosted, true},
		{StatusReadyToPost, StatusEdited, true},
		{StatusPosted, StatusReadyToPost, false},
		{StatusPosted, StatusRejected, false},
		{StatusRejected, StatusNeedsScript, true},
		{StatusRejected, StatusNotRecorded, true},
		{StatusRejected, StatusRecorded, true},
		{StatusRejected, StatusPosted, false},
	}

	for _, tc := range cases {
		if got := CanTransition(tc.from, tc.to); got != tc.want {
			t.Fatalf("CanTransition(%s, %s) = %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
}

// TestCanTransitionExhaustive enumerates every (from, to) pair against an
// edge set written out independently of the production adjacency table, so a
// wrong edge in either copy fails here.
func TestCanTransitionExhaustive(t *testing.T) {
	edges := map[RecordingStatus]map[RecordingStatus]bool{
		StatusNeedsScript: {
			StatusGeneratingScript: true,
			StatusNotRecorded:      true,
			StatusRejected:         true,
		},
		StatusGeneratingScript: {
			StatusNeedsScript: true,
			StatusNotRecorded: true,
			StatusRejected:    true,
		},
		StatusNotRecorded: {
			StatusRecorded: true,
			StatusRejected: true,
		},
		StatusRecorded: {
			StatusEdited:         true,
			StatusReadyForReview: true,
			StatusRejected:       true,
			StatusNotRecorded:    true,
		},
		StatusEdited: {
			StatusReadyToPost: true,
			StatusRejected:    true,
			StatusRecorded:    true,
		},
		StatusReadyForReview: {
			StatusApprovedNeedsEdits: true,
			StatusReadyToPost:        true,
			StatusRejected:           true,
			StatusRecorded:           true,
		},
		StatusApprovedNeedsEdits: {
			StatusReadyToPost:    true,
			StatusRejected:       true,
			StatusReadyForReview: true,
		},
		StatusReadyToPost: {
			StatusPosted:   true,
			StatusRejected: true,
			StatusEdited:   true,
		},
		StatusPosted: {},
		StatusRejected: {
			StatusNeedsScript: true,
			StatusNotRecorded: true,
			StatusRecorded:    true,
		},
	}

	for _, from := range AllStatuses() {
		for _, to := range AllStatuses() {
			want := edges[from][to]
			if got := CanTransition(from, to); got != want {
				t.Errorf("CanTransition(%s, %s) = %v, want %v", from, to, got, want)
			}
		}
	}
}

func TestRejectedFromEveryNonTerminalStatus(t *testing.T) {
	for _, status := range AllStatuses() {
		if status == StatusPosted || status == StatusRejected {
			continue
		}
		if !CanTransition(status, StatusRejected) {
			t.Fatalf("CanTransition(%s, REJECTED) = false, want true", status)
		}
	}
}

func TestAllowedTargetsCopyIsIndependent(t *testing.T) {
	targets := AllowedTargets(StatusNotRecorded)
	if len(targets) == 0 {
		t.Fatal("AllowedTargets(NOT_RECORDED) is empty")
	}
	targets[0] = StatusPosted
	if CanTransition(StatusNotRecorded, StatusPosted) {
		t.Fatal("mutating AllowedTargets result changed the graph")
	}
}

func TestTransitionGraphProperties(t *testing.T) {
	statuses := AllStatuses()
	anyStatus := gen.OneConstOf(
		statuses[0], statuses[1], statuses[2], statuses[3], statuses[4],
		statuses[5], statuses[6], statuses[7], statuses[8], statuses[9],
	)

	properties := gopter.NewProperties(gopter.DefaultTestParameters())

	properties.Property("CanTransition agrees with AllowedTargets", prop.ForAll(
		func(from, to RecordingStatus) bool {
			inTargets := false
			for _, target := range AllowedTargets(from) {
				if target == to {
					inTargets = true
				}
			}
			return CanTransition(from, to) == inTargets
		},
		anyStatus, anyStatus,
	))

	properties.Property("no edge leaves a terminal status", prop.ForAll(
		func(from, to RecordingStatus) bool {
			if !from.IsTerminal() {
				return true
			}
			return !CanTransition(from, to)
		},
		anyStatus, anyStatus,
	))

	properties.Property("no self loops", prop.ForAll(
		func(status RecordingStatus) bool {
			return !CanTransition(status, status)
		},
		anyStatus,
	))

	properties.TestingRun(t)
}
