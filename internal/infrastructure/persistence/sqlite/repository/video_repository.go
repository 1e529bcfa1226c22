package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"flashflow/internal/errs"
	"flashflow/internal/infrastructure/persistence/sqlite/model"
	"flashflow/internal/ports"
)

type VideoRepository struct {
	db *gorm.DB
}

var _ ports.VideoRepository = (*VideoRepository)(nil)

func NewVideoRepository(db *gorm.DB) *VideoRepository {
	return &VideoRepository{db: db}
}

func (r *VideoRepository) dbFromContext(ctx context.Context) (*gorm.DB, error) {
	if ctx == nil {
		return nil, errors.New("context is required")
	}

	tx := ports.TxFromContext(ctx)
	if tx == nil {
		return r.db.WithContext(ctx), nil
	}

	gormTx, ok := tx.(*gorm.DB)
	if !ok || gormTx == nil {
		return nil, fmt.Errorf("invalid tx in context: %T", tx)
	}
	return gormTx.WithContext(ctx), nil
}

func (r *VideoRepository) ListVideos(ctx context.Context, filter ports.VideoFilter) ([]ports.VideoRecord, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	query := db.Model(&model.Video{})
	if len(filter.Statuses) > 0 {
		query = query.Where("recording_status IN ?", filter.Statuses)
	} else if !filter.IncludeTerminal {
		query = query.Where("recording_status <> ?", "POSTED")
	}
	if claimedBy := strings.TrimSpace(filter.ClaimedBy); claimedBy != "" {
		query = query.Where("claimed_by = ?", claimedBy)
	}

	var rows []model.Video
	if err := query.Order("created_at asc").Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query videos")
	}

	items := make([]ports.VideoRecord, 0, len(rows))
	for _, row := range rows {
		items = append(items, mapVideo(row))
	}
	return items, nil
}

func (r *VideoRepository) GetVideo(ctx context.Context, videoID string) (ports.VideoRecord, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return ports.VideoRecord{}, err
	}

	var row model.Video
	if err := db.Where("video_id = ?", videoID).Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.VideoRecord{}, ports.ErrVideoNotFound
		}
		return ports.VideoRecord{}, errs.Wrap(err, "query video by id")
	}
	return mapVideo(row), nil
}

func (r *VideoRepository) ListEvents(ctx context.Context, filter ports.EventFilter) ([]ports.EventRecord, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	query := db.Model(&model.Event{}).Order("event_id desc")
	if videoID := strings.TrimSpace(filter.VideoID); videoID != "" {
		query = query.Where("video_id = ?", videoID)
	}
	if eventType := strings.TrimSpace(filter.EventType); eventType != "" {
		query = query.Where("event_type = ?", eventType)
	}
	if filter.Since != nil {
		query = query.Where("created_at >= ?", *filter.Since)
	}
	if filter.Until != nil {
		query = query.Where("created_at < ?", *filter.Until)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}

	var rows []model.Event
	if err := query.Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query events")
	}

	items := make([]ports.EventRecord, 0, len(rows))
	for _, row := range rows {
		items = append(items, ports.EventRecord{
			EventID:       row.EventID,
			VideoID:       row.VideoID,
			EventType:     row.EventType,
			FromStatus:    row.FromStatus,
			ToStatus:      row.ToStatus,
			Actor:         row.Actor,
			CorrelationID: row.CorrelationID,
			Details:       row.Details,
			CreatedAt:     row.CreatedAt,
		})
	}
	return items, nil
}

func (r *VideoRepository) CreateVideo(ctx context.Context, record ports.VideoRecord) (ports.VideoRecord, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return ports.VideoRecord{}, err
	}

	row := model.Video{
		VideoID:             record.VideoID,
		Title:               record.Title,
		RecordingStatus:     record.RecordingStatus,
		ScriptLockedText:    record.ScriptLockedText,
		ScriptLockedVersion: record.ScriptLockedVersion,
		ScriptNotRequired:   record.ScriptNotRequired,
		ClaimedBy:           record.ClaimedBy,
		ClaimedAt:           record.ClaimedAt,
		ClaimExpiresAt:      record.ClaimExpiresAt,
		SlaDeadlineAt:       record.SlaDeadlineAt,
		LastStatusChangedAt: record.LastStatusChangedAt,
		FinalVideoURL:       record.FinalVideoURL,
		PostedURL:           record.PostedURL,
		PostedPlatform:      record.PostedPlatform,
		ConceptID:           record.ConceptID,
		ProductID:           record.ProductID,
		PostingAccountID:    record.PostingAccountID,
		CreatedAt:           record.CreatedAt,
		UpdatedAt:           record.UpdatedAt,
	}
	if err := db.Create(&row).Error; err != nil {
		return ports.VideoRecord{}, errs.Wrap(err, "insert video")
	}
	return mapVideo(row), nil
}

func (r *VideoRepository) UpdateStatus(ctx context.Context, videoID string, status string, slaDeadlineAt *time.Time, changedAt time.Time) error {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}

	res := db.Model(&model.Video{}).
		Where("video_id = ?", videoID).
		Updates(map[string]any{
			"recording_status":       status,
			"sla_deadline_at":        slaDeadlineAt,
			"last_status_changed_at": changedAt,
			"updated_at":             changedAt,
		})
	if res.Error != nil {
		return errs.Wrap(res.Error, "update video status")
	}
	if res.RowsAffected == 0 {
		return ports.ErrVideoNotFound
	}
	return nil
}

func (r *VideoRepository) SetLockedScript(ctx context.Context, videoID string, text string, version int, updatedAt time.Time) error {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}

	res := db.Model(&model.Video{}).
		Where("video_id = ?", videoID).
		Updates(map[string]any{
			"script_locked_text":    text,
			"script_locked_version": version,
			"updated_at":            updatedAt,
		})
	if res.Error != nil {
		return errs.Wrap(res.Error, "update locked script")
	}
	if res.RowsAffected == 0 {
		return ports.ErrVideoNotFound
	}
	return nil
}

func (r *VideoRepository) SetFinalVideoURL(ctx context.Context, videoID string, url string, updatedAt time.Time) error {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}

	res := db.Model(&model.Video{}).
		Where("video_id = ?", videoID).
		Updates(map[string]any{
			"final_video_url": url,
			"updated_at":      updatedAt,
		})
	if res.Error != nil {
		return errs.Wrap(res.Error, "update final video url")
	}
	if res.RowsAffected == 0 {
		return ports.ErrVideoNotFound
	}
	return nil
}

func (r *VideoRepository) SetPostedArtifacts(ctx context.Context, videoID string, postedURL string, postedPlatform string, updatedAt time.Time) error {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}

	res := db.Model(&model.Video{}).
		Where("video_id = ?", videoID).
		Updates(map[string]any{
			"posted_url":      postedURL,
			"posted_platform": postedPlatform,
			"updated_at":      updatedAt,
		})
	if res.Error != nil {
		return errs.Wrap(res.Error, "update posted artifacts")
	}
	if res.RowsAffected == 0 {
		return ports.ErrVideoNotFound
	}
	return nil
}

// CompareAndSwapClaim guards the write with the claim holder observed at read
// time. Two racing claims both pass the in-memory lease check, but only one
// update matches; the loser sees ErrClaimConflict.
func (r *VideoRepository) CompareAndSwapClaim(ctx context.Context, videoID string, expected ports.ClaimState, next ports.ClaimState, updatedAt time.Time) error {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}

	query := db.Model(&model.Video{}).Where("video_id = ?", videoID)
	if expected.ClaimedBy == nil {
		query = query.Where("claimed_by IS NULL")
	} else {
		query = query.Where("claimed_by = ?", *expected.ClaimedBy)
	}

	res := query.Updates(map[string]any{
		"claimed_by":       next.ClaimedBy,
		"claimed_at":       next.ClaimedAt,
		"claim_expires_at": next.ClaimExpiresAt,
		"updated_at":       updatedAt,
	})
	if res.Error != nil {
		return errs.Wrap(res.Error, "update claim fields")
	}
	if res.RowsAffected == 0 {
		if _, err := r.GetVideo(ctx, videoID); err != nil {
			return err
		}
		return ports.ErrClaimConflict
	}
	return nil
}

func (r *VideoRepository) AppendEvent(ctx context.Context, input ports.EventCreate) error {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}

	row := model.Event{
		VideoID:       input.VideoID,
		EventType:     input.EventType,
		FromStatus:    input.FromStatus,
		ToStatus:      input.ToStatus,
		Actor:         input.Actor,
		CorrelationID: input.CorrelationID,
		Details:       input.Details,
		CreatedAt:     input.CreatedAt,
	}
	if err := db.Create(&row).Error; err != nil {
		return errs.Wrap(err, "insert event")
	}
	return nil
}

func mapVideo(row model.Video) ports.VideoRecord {
	return ports.VideoRecord{
		VideoID:             row.VideoID,
		Title:               row.Title,
		RecordingStatus:     row.RecordingStatus,
		ScriptLockedText:    row.ScriptLockedText,
		ScriptLockedVersion: row.ScriptLockedVersion,
		ScriptNotRequired:   row.ScriptNotRequired,
		ClaimedBy:           row.ClaimedBy,
		ClaimedAt:           row.ClaimedAt,
		ClaimExpiresAt:      row.ClaimExpiresAt,
		SlaDeadlineAt:       row.SlaDeadlineAt,
		LastStatusChangedAt: row.LastStatusChangedAt,
		FinalVideoURL:       row.FinalVideoURL,
		PostedURL:           row.PostedURL,
		PostedPlatform:      row.PostedPlatform,
		ConceptID:           row.ConceptID,
		ProductID:           row.ProductID,
		PostingAccountID:    row.PostingAccountID,
		CreatedAt:           row.CreatedAt,
		UpdatedAt:           row.UpdatedAt,
	}
}
