package pipeline

import (
	"context"
	"errors"
	"strings"
	"time"

	"flashflow/internal/domain/video"
	"flashflow/internal/ports"
)

// ClaimVideo grants or renews a time-boxed exclusive lease on a video.
// A second claim by the holder renews the expiry instead of failing; a claim
// while another operator holds an unexpired lease fails with
// ErrAlreadyClaimed.
func (s *Service) ClaimVideo(ctx context.Context, input ClaimVideoInput) (LeaseView, error) {
	if err := s.checkDeps(ctx); err != nil {
		return LeaseView{}, err
	}

	actor := strings.TrimSpace(input.Actor)
	if actor == "" {
		return LeaseView{}, ErrActorRequired
	}
	correlationID := normalizeCorrelationID(input.CorrelationID)

	now := s.now()
	policy := s.policy.Current()
	expiresAt := now.Add(policy.LeaseDuration)

	var result LeaseView
	var appended ports.EventRecord

	if err := s.uow.WithTx(ctx, func(txCtx context.Context) error {
		record, err := s.repo.GetVideo(txCtx, input.VideoID)
		if err != nil {
			return err
		}

		lease := leaseFromRecord(record)
		if lease.IsActive(now) && lease.ClaimedBy != actor {
			return &video.ClaimConflictError{
				Reason:    video.ErrAlreadyClaimed,
				HeldBy:    lease.ClaimedBy,
				ExpiresAt: lease.ExpiresAt,
			}
		}
		renewed := lease.HeldBy(actor, now)

		next := ports.ClaimState{ClaimedBy: &actor, ClaimedAt: &now, ClaimExpiresAt: &expiresAt}
		expected := ports.ClaimState{ClaimedBy: record.ClaimedBy}
		if err := s.repo.CompareAndSwapClaim(txCtx, input.VideoID, expected, next, now); err != nil {
			if errors.Is(err, ports.ErrClaimConflict) {
				return &video.ClaimConflictError{Reason: video.ErrAlreadyClaimed}
			}
			return err
		}

		create := ports.EventCreate{
			VideoID:       input.VideoID,
			EventType:     EventClaimed,
			Actor:         actor,
			CorrelationID: correlationID,
			Details: marshalDetails(map[string]any{
				"renewed":          renewed,
				"claim_expires_at": expiresAt.Format(time.RFC3339Nano),
			}),
			CreatedAt: now,
		}
		if err := s.repo.AppendEvent(txCtx, create); err != nil {
			return err
		}

		appended = eventRecordFromCreate(create)
		result = LeaseView{
			VideoID:   input.VideoID,
			ClaimedBy: actor,
			ClaimedAt: now,
			ExpiresAt: &expiresAt,
			Renewed:   renewed,
		}
		return nil
	}); err != nil {
		return LeaseView{}, err
	}

	s.setCacheBestEffort(ctx, cacheVideoClaimKey(input.VideoID), actor)
	s.publishBestEffort(ctx, appended)
	return result, nil
}

func eventRecordFromCreate(create ports.EventCreate) ports.EventRecord {
	return ports.EventRecord{
		VideoID:       create.VideoID,
		EventType:     create.EventType,
		FromStatus:    create.FromStatus,
		ToStatus:      create.ToStatus,
		Actor:         create.Actor,
		CorrelationID: create.CorrelationID,
		Details:       create.Details,
		CreatedAt:     create.CreatedAt,
	}
}
