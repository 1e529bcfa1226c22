package model

import "time"

// Event rows are append-only; nothing updates or deletes them.
type Event struct {
	EventID       uint64    `gorm:"column:event_id;primaryKey;autoIncrement"`
	VideoID       string    `gorm:"column:video_id;type:text;not null;index"`
	EventType     string    `gorm:"column:event_type;type:text;not null;index"`
	FromStatus    *string   `gorm:"column:from_status;type:text"`
	ToStatus      *string   `gorm:"column:to_status;type:text"`
	Actor         string    `gorm:"column:actor;type:text;not null"`
	CorrelationID string    `gorm:"column:correlation_id;type:text;not null"`
	Details       string    `gorm:"column:details;type:text;not null"`
	CreatedAt     time.Time `gorm:"column:created_at;not null;index"`
}

func (Event) TableName() string {
	return "events"
}
