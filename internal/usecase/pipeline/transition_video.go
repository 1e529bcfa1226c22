package pipeline

import (
	"context"
	"strings"
	"time"

	"flashflow/internal/domain/video"
	"flashflow/internal/ports"
)

// TransitionVideo moves a video along the status graph. It is the single
// authority on legality: edge membership, required-field gates, and the
// claim check all happen here, inside one transaction.
func (s *Service) TransitionVideo(ctx context.Context, input TransitionVideoInput) (TransitionResult, error) {
	if err := s.checkDeps(ctx); err != nil {
		return TransitionResult{}, err
	}

	actor := strings.TrimSpace(input.Actor)
	if actor == "" {
		return TransitionResult{}, ErrActorRequired
	}
	correlationID := normalizeCorrelationID(input.CorrelationID)

	target, err := video.ParseStatus(input.TargetStatus)
	if err != nil {
		return TransitionResult{}, err
	}

	now := s.now()
	policy := s.policy.Current()

	var result TransitionResult
	var appended ports.EventRecord

	if err := s.uow.WithTx(ctx, func(txCtx context.Context) error {
		record, err := s.repo.GetVideo(txCtx, input.VideoID)
		if err != nil {
			return err
		}
		current := video.RecordingStatus(record.RecordingStatus)

		lease := leaseFromRecord(record)
		if lease.IsActive(now) && lease.ClaimedBy != actor {
			return &video.ClaimConflictError{
				Reason:    video.ErrLockedByOther,
				HeldBy:    lease.ClaimedBy,
				ExpiresAt: lease.ExpiresAt,
			}
		}

		if !video.CanTransition(current, target) {
			return &video.TransitionDeniedError{
				Reason:    video.ErrInvalidTransition,
				Current:   current,
				Requested: target,
			}
		}

		if missing := missingRequiredFields(record, target, input); len(missing) > 0 && !input.Force {
			return &video.TransitionDeniedError{
				Reason:    video.ErrMissingRequiredField,
				Current:   current,
				Requested: target,
				Missing:   missing,
			}
		}

		if url := strings.TrimSpace(input.FinalVideoURL); url != "" {
			if err := s.repo.SetFinalVideoURL(txCtx, input.VideoID, url, now); err != nil {
				return err
			}
		}
		if target == video.StatusPosted {
			postedURL := strings.TrimSpace(input.PostedURL)
			postedPlatform := strings.TrimSpace(input.PostedPlatform)
			if postedURL != "" || postedPlatform != "" {
				if err := s.repo.SetPostedArtifacts(txCtx, input.VideoID, postedURL, postedPlatform, now); err != nil {
					return err
				}
			}
		}

		deadline := stageDeadlineAt(policy, target, now)
		if err := s.repo.UpdateStatus(txCtx, input.VideoID, string(target), deadline, now); err != nil {
			return err
		}

		fromStatus := string(current)
		toStatus := string(target)
		details := map[string]any{}
		if input.Force {
			details["force"] = true
		}
		create := ports.EventCreate{
			VideoID:       input.VideoID,
			EventType:     EventStatusChange,
			FromStatus:    &fromStatus,
			ToStatus:      &toStatus,
			Actor:         actor,
			CorrelationID: correlationID,
			Details:       marshalDetails(details),
			CreatedAt:     now,
		}
		if err := s.repo.AppendEvent(txCtx, create); err != nil {
			return err
		}

		appended = eventRecordFromCreate(create)
		result = TransitionResult{
			VideoID:       input.VideoID,
			FromStatus:    fromStatus,
			ToStatus:      toStatus,
			SlaDeadlineAt: deadline,
		}
		return nil
	}); err != nil {
		return TransitionResult{}, err
	}

	s.setCacheBestEffort(ctx, cacheVideoStatusKey(input.VideoID), result.ToStatus)
	s.publishBestEffort(ctx, appended)
	return result, nil
}

// missingRequiredFields gates the two transitions with data requirements:
// RECORDED needs a locked script (unless waived), POSTED needs the posting
// artifacts either on the record already or in the request.
func missingRequiredFields(record ports.VideoRecord, target video.RecordingStatus, input TransitionVideoInput) []string {
	var missing []string

	switch target {
	case video.StatusRecorded:
		hasScript := record.ScriptLockedText != nil && strings.TrimSpace(*record.ScriptLockedText) != ""
		if !record.ScriptNotRequired && !hasScript {
			missing = append(missing, "script_locked_text")
		}
	case video.StatusPosted:
		if strings.TrimSpace(input.PostedURL) == "" && derefString(record.PostedURL) == "" {
			missing = append(missing, "posted_url")
		}
		if strings.TrimSpace(input.PostedPlatform) == "" && derefString(record.PostedPlatform) == "" {
			missing = append(missing, "posted_platform")
		}
	}

	return missing
}

func stageDeadlineAt(policy Policy, stage video.RecordingStatus, now time.Time) *time.Time {
	window, ok := policy.StageDeadline(stage)
	if !ok {
		return nil
	}
	deadline := now.Add(window)
	return &deadline
}
