package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// UserAnalytics is an append-only client event log.
type UserAnalytics struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    *uuid.UUID     `gorm:"type:uuid;index" json:"user_id"`
	SessionID string         `gorm:"size:100" json:"session_id"`
	Action    string         `gorm:"size:100;not null;index" json:"action"`
	Data      datatypes.JSON `gorm:"type:jsonb" json:"data"`
	IPAddress string         `gorm:"size:45" json:"ip_address"`
	UserAgent string         `gorm:"type:text" json:"user_agent"`
	Timestamp time.Time      `gorm:"not null;index" json:"timestamp"`
}

func (UserAnalytics) TableName() string {
	return "user_analytics"
}

func (a *UserAnalytics) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	if a.Timestamp.IsZero() {
		a.Timestamp = time.Now().UTC()
	}
	return nil
}
