package pipeline

import (
	"context"
	"errors"
	"strings"

	"flashflow/internal/domain/video"
	"flashflow/internal/ports"
)

// ReleaseVideo clears an active lease. Only the holder may release, unless
// force is set (administrative override, recorded in the event details).
func (s *Service) ReleaseVideo(ctx context.Context, input ReleaseVideoInput) error {
	if err := s.checkDeps(ctx); err != nil {
		return err
	}

	actor := strings.TrimSpace(input.Actor)
	if actor == "" {
		return ErrActorRequired
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
		if !lease.IsActive(now) {
			return video.ErrNotClaimed
		}
		if lease.ClaimedBy != actor && !input.Force {
			return &video.ClaimConflictError{
				Reason:    video.ErrClaimedByOther,
				HeldBy:    lease.ClaimedBy,
				ExpiresAt: lease.ExpiresAt,
			}
		}

		next := ports.ClaimState{}
		expected := ports.ClaimState{ClaimedBy: record.ClaimedBy}
		if err := s.repo.CompareAndSwapClaim(txCtx, input.VideoID, expected, next, now); err != nil {
			if errors.Is(err, ports.ErrClaimConflict) {
				return &video.ClaimConflictError{Reason: video.ErrClaimedByOther}
			}
			return err
		}

		details := map[string]any{"previous_holder": lease.ClaimedBy}
		if input.Force {
			details["force"] = true
		}
		create := ports.EventCreate{
			VideoID:       input.VideoID,
			EventType:     EventReleased,
			Actor:         actor,
			CorrelationID: correlationID,
			Details:       marshalDetails(details),
			CreatedAt:     now,
		}
		if err := s.repo.AppendEvent(txCtx, create); err != nil {
			return err
		}

		appended = eventRecordFromCreate(create)
		return nil
	}); err != nil {
		return err
	}

	s.setCacheBestEffort(ctx, cacheVideoClaimKey(input.VideoID), "")
	s.publishBestEffort(ctx, appended)
	return nil
}
