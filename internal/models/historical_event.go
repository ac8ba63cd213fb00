package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// HistoricalEvent is read-only reference data seeded from the catalog.
type HistoricalEvent struct {
	ID              uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Title           string         `gorm:"size:200;not null;uniqueIndex" json:"title"`
	Description     string         `gorm:"type:text" json:"description"`
	Date            *time.Time     `gorm:"type:date;index" json:"-"`
	Era             string         `gorm:"size:100;index" json:"era"`
	ImportanceLevel int            `gorm:"default:1" json:"importance"`
	Tags            datatypes.JSON `gorm:"type:jsonb" json:"-"`
}

func (e *HistoricalEvent) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

// DateString renders the event date as YYYY-MM-DD, or nil when unknown.
func (e *HistoricalEvent) DateString() *string {
	if e.Date == nil {
		return nil
	}
	s := e.Date.UTC().Format("2006-01-02")
	return &s
}

func (e *HistoricalEvent) TagList() []string {
	return decodeStrings(e.Tags)
}
