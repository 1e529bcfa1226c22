package pipeline

import (
	"context"
	"errors"
	"testing"

	"flashflow/internal/domain/video"
)

func TestCreateVideoStartsInNeedsScript(t *testing.T) {
	h := setupHarness(t)
	ctx := context.Background()

	detail, err := h.svc.CreateVideo(ctx, CreateVideoInput{
		Title:     "  launch teaser  ",
		ConceptID: "concept-1",
		Actor:     "planner",
	})
	if err != nil {
		t.Fatalf("CreateVideo() error = %v", err)
	}

	if detail.Title != "launch teaser" {
		t.Fatalf("title = %q, want trimmed", detail.Title)
	}
	if detail.RecordingStatus != string(video.StatusNeedsScript) {
		t.Fatalf("status = %s, want NEEDS_SCRIPT", detail.RecordingStatus)
	}
	if detail.SlaDeadlineAt == nil {
		t.Fatal("sla_deadline_at is nil, want stage deadline")
	}
	want := h.now.Add(DefaultPolicy().StageDeadlines[video.StatusNeedsScript])
	if !detail.SlaDeadlineAt.Equal(want) {
		t.Fatalf("sla_deadline_at = %v, want %v", detail.SlaDeadlineAt, want)
	}
	if detail.NextAction.Type != string(video.ActionAddScript) {
		t.Fatalf("next action = %s, want add_script", detail.NextAction.Type)
	}

	if h.cache.get(cacheVideoStatusKey(detail.VideoID)) != string(video.StatusNeedsScript) {
		t.Fatalf("cache status = %q", h.cache.get(cacheVideoStatusKey(detail.VideoID)))
	}

	published := h.publisher.recorded()
	if len(published) != 1 {
		t.Fatalf("published events = %d, want 1", len(published))
	}
	if published[0].EventType != EventCreated {
		t.Fatalf("published type = %s, want created", published[0].EventType)
	}

	events, err := h.svc.ListEvents(ctx, ListEventsInput{VideoID: detail.VideoID})
	if err != nil {
		t.Fatalf("ListEvents() error = %v", err)
	}
	if len(events) != 1 || events[0].EventType != EventCreated {
		t.Fatalf("audit log = %+v, want one created event", events)
	}
	if events[0].CorrelationID == "" {
		t.Fatal("created event has empty correlation id, want generated uuid")
	}
}

func TestCreateVideoWithScriptWaiverStartsInNotRecorded(t *testing.T) {
	h := setupHarness(t)

	detail, err := h.svc.CreateVideo(context.Background(), CreateVideoInput{
		Title:             "bts clip",
		ScriptNotRequired: true,
		Actor:             "planner",
	})
	if err != nil {
		t.Fatalf("CreateVideo() error = %v", err)
	}

	if detail.RecordingStatus != string(video.StatusNotRecorded) {
		t.Fatalf("status = %s, want NOT_RECORDED", detail.RecordingStatus)
	}
	if detail.NextAction.Type != string(video.ActionRecord) {
		t.Fatalf("next action = %s, want record", detail.NextAction.Type)
	}
	if !detail.Readiness.HasScript {
		t.Fatal("readiness.has_script = false, want true under waiver")
	}
}

func TestCreateVideoValidation(t *testing.T) {
	h := setupHarness(t)
	ctx := context.Background()

	if _, err := h.svc.CreateVideo(ctx, CreateVideoInput{Title: "   ", Actor: "planner"}); !errors.Is(err, ErrTitleRequired) {
		t.Fatalf("blank title error = %v, want ErrTitleRequired", err)
	}
	if _, err := h.svc.CreateVideo(ctx, CreateVideoInput{Title: "x"}); !errors.Is(err, ErrActorRequired) {
		t.Fatalf("missing actor error = %v, want ErrActorRequired", err)
	}
}
