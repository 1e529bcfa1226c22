package pipeline

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"flashflow/internal/domain/video"
	"flashflow/internal/ports"
)

var ErrTitleRequired = errors.New("title is required")

// CreateVideo is the intake hook: upstream planning accepts a production
// request and registers the video here. Videos start in NEEDS_SCRIPT, or
// NOT_RECORDED when script-gating is waived.
func (s *Service) CreateVideo(ctx context.Context, input CreateVideoInput) (VideoDetail, error) {
	if err := s.checkDeps(ctx); err != nil {
		return VideoDetail{}, err
	}

	title := strings.TrimSpace(input.Title)
	if title == "" {
		return VideoDetail{}, ErrTitleRequired
	}
	actor := strings.TrimSpace(input.Actor)
	if actor == "" {
		return VideoDetail{}, ErrActorRequired
	}
	correlationID := normalizeCorrelationID(input.CorrelationID)

	now := s.now()
	policy := s.policy.Current()

	initial := video.StatusNeedsScript
	if input.ScriptNotRequired {
		initial = video.StatusNotRecorded
	}
	deadline := stageDeadlineAt(policy, initial, now)

	record := ports.VideoRecord{
		VideoID:             uuid.NewString(),
		Title:               title,
		RecordingStatus:     string(initial),
		ScriptNotRequired:   input.ScriptNotRequired,
		SlaDeadlineAt:       deadline,
		LastStatusChangedAt: &now,
		ConceptID:           optionalString(input.ConceptID),
		ProductID:           optionalString(input.ProductID),
		PostingAccountID:    optionalString(input.PostingAccountID),
		CreatedAt:           now,
		UpdatedAt:           now,
	}

	var created ports.VideoRecord
	var appended ports.EventRecord

	if err := s.uow.WithTx(ctx, func(txCtx context.Context) error {
		row, err := s.repo.CreateVideo(txCtx, record)
		if err != nil {
			return err
		}
		created = row

		toStatus := row.RecordingStatus
		create := ports.EventCreate{
			VideoID:       row.VideoID,
			EventType:     EventCreated,
			ToStatus:      &toStatus,
			Actor:         actor,
			CorrelationID: correlationID,
			CreatedAt:     now,
		}
		if err := s.repo.AppendEvent(txCtx, create); err != nil {
			return err
		}
		appended = eventRecordFromCreate(create)
		return nil
	}); err != nil {
		return VideoDetail{}, err
	}

	s.setCacheBestEffort(ctx, cacheVideoStatusKey(created.VideoID), created.RecordingStatus)
	s.publishBestEffort(ctx, appended)
	return s.buildDetail(created, now, policy), nil
}

func optionalString(raw string) *string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
