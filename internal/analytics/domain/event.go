package domain

import (
	"time"

	"gorm.io/datatypes"
)

// AnalyticsEvent is one usage event reported by the extension or the CLI
type AnalyticsEvent struct {
	ID          string         `json:"id" gorm:"primaryKey"`
	EventType   string         `json:"event_type" gorm:"index;not null"`
	UserID      string         `json:"user_id,omitempty" gorm:"index"`
	UserEmail   string         `json:"user_email,omitempty"`
	ExtensionID string         `json:"extension_id,omitempty"`
	Metadata    datatypes.JSON `json:"metadata,omitempty"`
	CreatedAt   time.Time      `json:"created_at" gorm:"index"`
}

// TableName specifies the table name for GORM
func (AnalyticsEvent) TableName() string {
	return "analytics_events"
}
