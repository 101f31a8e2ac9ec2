package models

import (
	"time"

	"gorm.io/gorm"
)

// Error sources recorded in the diagnostics journal.
const (
	SourceProbe  = "probe"
	SourceReport = "report"
)

// ErrorLog is a diagnostics journal row. Activity samples themselves are
// never persisted.
type ErrorLog struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Timestamp time.Time      `gorm:"not null;index" json:"timestamp"`
	Source    string         `gorm:"not null;index" json:"source"`
	SessionID string         `gorm:"index" json:"session_id,omitempty"`
	ErrorMsg  string         `gorm:"not null" json:"error_msg"`
	CreatedAt time.Time      `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
