package pipeline

import (
	"context"
	"errors"
	"strings"

	"flashflow/internal/domain/video"
	"flashflow/internal/ports"
)

var ErrScriptTextRequired = errors.New("script text is required")

// AttachScript locks a script snapshot onto the video. The snapshot never
// changes as a side effect of edits to the source script; calling this
// operation again is the only way to replace it.
func (s *Service) AttachScript(ctx context.Context, input AttachScriptInput) error {
	if err := s.checkDeps(ctx); err != nil {
		return err
	}

	actor := strings.TrimSpace(input.Actor)
	if actor == "" {
		return ErrActorRequired
	}
	text := input.Text
	if strings.TrimSpace(text) == "" {
		return ErrScriptTextRequired
	}
	version := input.Version
	if version <= 0 {
		version = 1
	}
	correlationID := normalizeCorrelationID(input.CorrelationID)

	now := s.now()
	var appended ports.EventRecord

	if err := s.uow.WithTx(ctx, func(txCtx context.Context) error {
		record, err := s.repo.GetVideo(txCtx, input.VideoID)
		if err != nil {
			return err
		}

		lease := leaseFromRecord(record)
		if lease.IsActive(now) && lease.ClaimedBy != actor {
			return &video.ClaimConflictError{
				Reason:    video.ErrLockedByOther,
				HeldBy:    lease.ClaimedBy,
				ExpiresAt: lease.ExpiresAt,
			}
		}

		if err := s.repo.SetLockedScript(txCtx, input.VideoID, text, version, now); err != nil {
			return err
		}

		create := ports.EventCreate{
			VideoID:       input.VideoID,
			EventType:     EventScriptAttached,
			Actor:         actor,
			CorrelationID: correlationID,
			Details: marshalDetails(map[string]any{
				"version":  version,
				"reattach": record.ScriptLockedText != nil,
			}),
			CreatedAt: now,
		}
		if err := s.repo.AppendEvent(txCtx, create); err != nil {
			return err
		}

		appended = eventRecordFromCreate(create)
		return nil
	}); err != nil {
		return err
	}

	s.publishBestEffort(ctx, appended)
	return nil
}
