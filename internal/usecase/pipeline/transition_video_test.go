package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"flashflow/internal/domain/video"
)

func TestTransitionVideoHappyPathToPosted(t *testing.T) {
	h := setupHarness(t)
	ctx := context.Background()
	id := mustCreate(t, h, CreateVideoInput{Title: "full run"})
	mustAttach(t, h, id)

	mustTransition(t, h, id, "NOT_RECORDED", "alice")
	mustTransition(t, h, id, "RECORDED", "alice")
	mustTransition(t, h, id, "EDITED", "alice")
	mustTransition(t, h, id, "READY_TO_POST", "alice")

	result, err := h.svc.TransitionVideo(ctx, TransitionVideoInput{
		VideoID:        id,
		TargetStatus:   "POSTED",
		Actor:          "alice",
		PostedURL:      "https://clips.example/v/1",
		PostedPlatform: "tiktok",
	})
	if err != nil {
		t.Fatalf("TransitionVideo(POSTED) error = %v", err)
	}
	if result.FromStatus != "READY_TO_POST" || result.ToStatus != "POSTED" {
		t.Fatalf("result = %+v", result)
	}
	if result.SlaDeadlineAt != nil {
		t.Fatalf("POSTED deadline = %v, want nil", result.SlaDeadlineAt)
	}

	detail, err := h.svc.GetVideo(ctx, id)
	if err != nil {
		t.Fatalf("GetVideo() error = %v", err)
	}
	if detail.RecordingStatus != "POSTED" {
		t.Fatalf("status = %s, want POSTED", detail.RecordingStatus)
	}
	if detail.PostedURL != "https://clips.example/v/1" || detail.PostedPlatform != "tiktok" {
		t.Fatalf("posted artifacts = %q / %q", detail.PostedURL, detail.PostedPlatform)
	}
	if len(detail.AllowedTransitions) != 0 {
		t.Fatalf("POSTED allows %v, want nothing", detail.AllowedTransitions)
	}
}

func TestTransitionVideoRejectsIllegalEdge(t *testing.T) {
	h := setupHarness(t)
	ctx := context.Background()
	id := mustCreate(t, h, CreateVideoInput{Title: "no shortcuts"})

	_, err := h.svc.TransitionVideo(ctx, TransitionVideoInput{
		VideoID:      id,
		TargetStatus: "POSTED",
		Actor:        "alice",
	})
	if !errors.Is(err, video.ErrInvalidTransition) {
		t.Fatalf("NEEDS_SCRIPT -> POSTED error = %v, want ErrInvalidTransition", err)
	}

	var denied *video.TransitionDeniedError
	if !errors.As(err, &denied) {
		t.Fatalf("error %T does not carry transition detail", err)
	}
	if denied.Current != video.StatusNeedsScript || denied.Requested != video.StatusPosted {
		t.Fatalf("denied = %+v", denied)
	}
}

func TestTransitionVideoRecordedNeedsLockedScript(t *testing.T) {
	h := setupHarness(t)
	ctx := context.Background()
	id := mustCreate(t, h, CreateVideoInput{Title: "gated"})
	mustTransition(t, h, id, "NOT_RECORDED", "alice")

	_, err := h.svc.TransitionVideo(ctx, TransitionVideoInput{
		VideoID:      id,
		TargetStatus: "RECORDED",
		Actor:        "alice",
	})
	if !errors.Is(err, video.ErrMissingRequiredField) {
		t.Fatalf("RECORDED without script error = %v, want ErrMissingRequiredField", err)
	}
	var denied *video.TransitionDeniedError
	if !errors.As(err, &denied) || len(denied.Missing) != 1 || denied.Missing[0] != "script_locked_text" {
		t.Fatalf("denied detail = %+v, want missing script_locked_text", denied)
	}

	// Force overrides the gate but not edge legality.
	if _, err := h.svc.TransitionVideo(ctx, TransitionVideoInput{
		VideoID:      id,
		TargetStatus: "RECORDED",
		Actor:        "alice",
		Force:        true,
	}); err != nil {
		t.Fatalf("forced RECORDED error = %v", err)
	}
}

func TestTransitionVideoScriptWaiverSkipsGate(t *testing.T) {
	h := setupHarness(t)
	id := mustCreate(t, h, CreateVideoInput{Title: "no script needed", ScriptNotRequired: true})

	mustTransition(t, h, id, "RECORDED", "alice")
}

func TestTransitionVideoPostedNeedsArtifacts(t *testing.T) {
	h := setupHarness(t)
	ctx := context.Background()
	id := mustCreate(t, h, CreateVideoInput{Title: "artifact gate", ScriptNotRequired: true})
	mustTransition(t, h, id, "RECORDED", "alice")
	mustTransition(t, h, id, "EDITED", "alice")
	mustTransition(t, h, id, "READY_TO_POST", "alice")

	_, err := h.svc.TransitionVideo(ctx, TransitionVideoInput{
		VideoID:      id,
		TargetStatus: "POSTED",
		Actor:        "alice",
	})
	var denied *video.TransitionDeniedError
	if !errors.As(err, &denied) {
		t.Fatalf("POSTED without artifacts error = %v, want TransitionDeniedError", err)
	}
	if len(denied.Missing) != 2 {
		t.Fatalf("missing = %v, want posted_url and posted_platform", denied.Missing)
	}
}

func TestTransitionVideoBlockedByForeignLease(t *testing.T) {
	h := setupHarness(t)
	ctx := context.Background()
	id := mustCreate(t, h, CreateVideoInput{Title: "locked", ScriptNotRequired: true})

	if _, err := h.svc.ClaimVideo(ctx, ClaimVideoInput{VideoID: id, Actor: "alice"}); err != nil {
		t.Fatalf("ClaimVideo() error = %v", err)
	}

	_, err := h.svc.TransitionVideo(ctx, TransitionVideoInput{
		VideoID:      id,
		TargetStatus: "RECORDED",
		Actor:        "bob",
	})
	if !errors.Is(err, video.ErrLockedByOther) {
		t.Fatalf("TransitionVideo(bob) error = %v, want ErrLockedByOther", err)
	}

	// The holder can move it, and so can anyone once the lease lapses.
	mustTransition(t, h, id, "RECORDED", "alice")
	h.advance(DefaultPolicy().LeaseDuration + time.Minute)
	mustTransition(t, h, id, "EDITED", "bob")
}

func TestTransitionVideoSetsStageDeadlineAndEvent(t *testing.T) {
	h := setupHarness(t)
	ctx := context.Background()
	id := mustCreate(t, h, CreateVideoInput{Title: "deadline check", ScriptNotRequired: true})

	result, err := h.svc.TransitionVideo(ctx, TransitionVideoInput{
		VideoID:      id,
		TargetStatus: "RECORDED",
		Actor:        "alice",
	})
	if err != nil {
		t.Fatalf("TransitionVideo() error = %v", err)
	}
	want := h.now.Add(DefaultPolicy().StageDeadlines[video.StatusRecorded])
	if result.SlaDeadlineAt == nil || !result.SlaDeadlineAt.Equal(want) {
		t.Fatalf("deadline = %v, want %v", result.SlaDeadlineAt, want)
	}

	events, err := h.svc.ListEvents(ctx, ListEventsInput{VideoID: id, EventType: EventStatusChange})
	if err != nil {
		t.Fatalf("ListEvents() error = %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("status_change events = %d, want 1", len(events))
	}
	if events[0].FromStatus != "NOT_RECORDED" || events[0].ToStatus != "RECORDED" {
		t.Fatalf("event edge = %s -> %s", events[0].FromStatus, events[0].ToStatus)
	}
	if events[0].Actor != "alice" {
		t.Fatalf("event actor = %q", events[0].Actor)
	}
}

func TestTransitionVideoReviewPath(t *testing.T) {
	h := setupHarness(t)
	ctx := context.Background()
	id := mustCreate(t, h, CreateVideoInput{Title: "reviewed", ScriptNotRequired: true})
	mustTransition(t, h, id, "RECORDED", "alice")
	mustTransition(t, h, id, "READY_FOR_REVIEW", "alice")
	mustTransition(t, h, id, "APPROVED_NEEDS_EDITS", "reviewer")
	mustTransition(t, h, id, "READY_TO_POST", "editor")

	detail, err := h.svc.GetVideo(ctx, id)
	if err != nil {
		t.Fatalf("GetVideo() error = %v", err)
	}
	if detail.NextAction.Type != string(video.ActionPost) {
		t.Fatalf("next action = %s, want post", detail.NextAction.Type)
	}
	if !detail.CanPost {
		t.Fatal("can_post = false in READY_TO_POST")
	}
}

func TestTransitionVideoRejectedKeepsRedoEdges(t *testing.T) {
	h := setupHarness(t)
	ctx := context.Background()
	id := mustCreate(t, h, CreateVideoInput{Title: "redo", ScriptNotRequired: true})
	mustTransition(t, h, id, "RECORDED", "alice")
	mustTransition(t, h, id, "REJECTED", "reviewer")

	detail, err := h.svc.GetVideo(ctx, id)
	if err != nil {
		t.Fatalf("GetVideo() error = %v", err)
	}
	if detail.NextAction.Type != string(video.ActionRegenerate) {
		t.Fatalf("next action = %s, want re_generate", detail.NextAction.Type)
	}

	mustTransition(t, h, id, "NOT_RECORDED", "alice")
	mustTransition(t, h, id, "RECORDED", "alice")
}
