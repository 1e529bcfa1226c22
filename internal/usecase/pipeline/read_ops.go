package pipeline

import (
	"context"
	"sort"
	"strings"
	"time"

	"flashflow/internal/domain/video"
	"flashflow/internal/ports"
)

// GetVideo returns the full snapshot with the derived read model embedded:
// next action, readiness flags, capability booleans, SLA classification, and
// the active lease (expired leases are dropped here, not persisted away).
func (s *Service) GetVideo(ctx context.Context, videoID string) (VideoDetail, error) {
	if err := s.checkDeps(ctx); err != nil {
		return VideoDetail{}, err
	}

	record, err := s.repo.GetVideo(ctx, videoID)
	if err != nil {
		return VideoDetail{}, err
	}

	return s.buildDetail(record, s.now(), s.policy.Current()), nil
}

// ListVideos returns the board read model ordered by priority: overdue
// first, then due soon, then on track, ties broken by longer time in stage.
func (s *Service) ListVideos(ctx context.Context, input ListVideosInput) ([]VideoListItem, error) {
	if err := s.checkDeps(ctx); err != nil {
		return nil, err
	}

	statuses := make([]string, 0, len(input.Statuses))
	for _, raw := range input.Statuses {
		status, err := video.ParseStatus(raw)
		if err != nil {
			return nil, err
		}
		statuses = append(statuses, string(status))
	}

	records, err := s.repo.ListVideos(ctx, ports.VideoFilter{
		Statuses:        statuses,
		ClaimedBy:       input.ClaimedBy,
		IncludeTerminal: input.IncludeTerminal,
	})
	if err != nil {
		return nil, err
	}

	now := s.now()
	policy := s.policy.Current()

	items := make([]VideoListItem, 0, len(records))
	for _, record := range records {
		age := ageInStage(record, now)
		sla := video.EvaluateSLA(record.SlaDeadlineAt, now, policy.WarnThreshold)
		lease := leaseFromRecord(record)

		item := VideoListItem{
			VideoID:           record.VideoID,
			Title:             record.Title,
			RecordingStatus:   record.RecordingStatus,
			NextActionType:    string(video.NextAction(snapshotFromRecord(record)).Type),
			SlaStatus:         string(sla),
			SlaDeadlineAt:     record.SlaDeadlineAt,
			PriorityScore:     video.PriorityScore(sla, age),
			AgeMinutesInStage: int64(age / time.Minute),
		}
		if lease.IsActive(now) {
			item.ClaimedBy = lease.ClaimedBy
		}
		items = append(items, item)
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].PriorityScore > items[j].PriorityScore
	})
	return items, nil
}

// ListEvents returns audit events, newest first.
func (s *Service) ListEvents(ctx context.Context, input ListEventsInput) ([]EventItem, error) {
	if err := s.checkDeps(ctx); err != nil {
		return nil, err
	}

	limit := input.Limit
	if limit <= 0 {
		limit = 50
	}

	records, err := s.repo.ListEvents(ctx, ports.EventFilter{
		VideoID:   input.VideoID,
		EventType: input.EventType,
		Since:     input.Since,
		Until:     input.Until,
		Limit:     limit,
	})
	if err != nil {
		return nil, err
	}

	items := make([]EventItem, 0, len(records))
	for _, record := range records {
		items = append(items, EventItem{
			EventID:       record.EventID,
			VideoID:       record.VideoID,
			EventType:     record.EventType,
			FromStatus:    derefString(record.FromStatus),
			ToStatus:      derefString(record.ToStatus),
			Actor:         record.Actor,
			CorrelationID: record.CorrelationID,
			Details:       record.Details,
			CreatedAt:     record.CreatedAt,
		})
	}
	return items, nil
}

func (s *Service) buildDetail(record ports.VideoRecord, now time.Time, policy Policy) VideoDetail {
	snapshot := snapshotFromRecord(record)
	action := video.NextAction(snapshot)
	readiness := video.DeriveReadiness(snapshot)
	current := video.RecordingStatus(record.RecordingStatus)

	age := ageInStage(record, now)
	sla := video.EvaluateSLA(record.SlaDeadlineAt, now, policy.WarnThreshold)

	targets := video.AllowedTargets(current)
	allowed := make([]string, 0, len(targets))
	for _, target := range targets {
		allowed = append(allowed, string(target))
	}

	detail := VideoDetail{
		VideoID:             record.VideoID,
		Title:               record.Title,
		RecordingStatus:     record.RecordingStatus,
		ScriptLockedText:    derefString(record.ScriptLockedText),
		ScriptLockedVersion: derefInt(record.ScriptLockedVersion),
		ScriptNotRequired:   record.ScriptNotRequired,
		SlaDeadlineAt:       record.SlaDeadlineAt,
		LastStatusChangedAt: record.LastStatusChangedAt,
		FinalVideoURL:       derefString(record.FinalVideoURL),
		PostedURL:           derefString(record.PostedURL),
		PostedPlatform:      derefString(record.PostedPlatform),
		ConceptID:           derefString(record.ConceptID),
		ProductID:           derefString(record.ProductID),
		PostingAccountID:    derefString(record.PostingAccountID),

		NextAction: NextActionView{
			Type:               string(action.Type),
			Label:              action.Label,
			RequiredCapability: action.RequiredCapability,
		},
		Readiness: ReadinessView{
			HasScript: readiness.HasScript,
			HasRaw:    readiness.HasRaw,
			HasFinal:  readiness.HasFinal,
		},
		CanRecord:          video.CanTransition(current, video.StatusRecorded) && readiness.HasScript,
		CanMarkEdited:      video.CanTransition(current, video.StatusEdited),
		CanMarkReadyToPost: video.CanTransition(current, video.StatusReadyToPost),
		CanPost:            video.CanTransition(current, video.StatusPosted),
		AllowedTransitions: allowed,

		SlaStatus:         string(sla),
		PriorityScore:     video.PriorityScore(sla, age),
		AgeMinutesInStage: int64(age / time.Minute),

		CreatedAt: record.CreatedAt,
		UpdatedAt: record.UpdatedAt,
	}

	lease := leaseFromRecord(record)
	if lease.IsActive(now) {
		detail.Lease = &LeaseView{
			VideoID:   record.VideoID,
			ClaimedBy: lease.ClaimedBy,
			ClaimedAt: lease.ClaimedAt,
			ExpiresAt: lease.ExpiresAt,
		}
	}

	return detail
}

func ageInStage(record ports.VideoRecord, now time.Time) time.Duration {
	entered := record.CreatedAt
	if record.LastStatusChangedAt != nil {
		entered = *record.LastStatusChangedAt
	}
	age := now.Sub(entered)
	if age < 0 {
		age = 0
	}
	return age
}

// StatusHint reads the denormalized status from the cache when present,
// falling back to the record. Used by the board console to avoid a full
// read per row.
func (s *Service) StatusHint(ctx context.Context, videoID string) (string, bool) {
	if s.cache == nil {
		return "", false
	}
	value, found, err := s.cache.Get(ctx, cacheVideoStatusKey(videoID))
	if err != nil || !found || strings.TrimSpace(value) == "" {
		return "", false
	}
	return value, true
}
