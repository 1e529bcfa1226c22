package model

import "time"

type Video struct {
	VideoID             string     `gorm:"column:video_id;type:text;primaryKey"`
	Title               string     `gorm:"column:title;type:text;not null"`
	RecordingStatus     string     `gorm:"column:recording_status;type:text;not null;index"`
	ScriptLockedText    *string    `gorm:"column:script_locked_text;type:text"`
	ScriptLockedVersion *int       `gorm:"column:script_locked_version"`
	ScriptNotRequired   bool       `gorm:"column:script_not_required;not null;default:0"`
	ClaimedBy           *string    `gorm:"column:claimed_by;type:text;index"`
	ClaimedAt           *time.Time `gorm:"column:claimed_at"`
	ClaimExpiresAt      *time.Time `gorm:"column:claim_expires_at"`
	SlaDeadlineAt       *time.Time `gorm:"column:sla_deadline_at"`
	LastStatusChangedAt *time.Time `gorm:"column:last_status_changed_at"`
	FinalVideoURL       *string    `gorm:"column:final_video_url;type:text"`
	PostedURL           *string    `gorm:"column:posted_url;type:text"`
	PostedPlatform      *string    `gorm:"column:posted_platform;type:text"`
	ConceptID           *string    `gorm:"column:concept_id;type:text"`
	ProductID           *string    `gorm:"column:product_id;type:text"`
	PostingAccountID    *string    `gorm:"column:posting_account_id;type:text"`
	CreatedAt           time.Time  `gorm:"column:created_at;not null"`
	UpdatedAt           time.Time  `gorm:"column:updated_at;not null"`
}

func (Video) TableName() string {
	return "videos"
}
