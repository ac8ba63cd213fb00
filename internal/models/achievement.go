package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Condition types understood by the achievement catalog.
const (
	ConditionStoryCount    = "story_count"
	ConditionEraCount      = "era_count"
	ConditionRatingCount   = "rating_count"
	ConditionBookmarkCount = "bookmark_count"
)

type Achievement struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name           string    `gorm:"size:100;not null;uniqueIndex" json:"name"`
	Description    string    `gorm:"type:text" json:"description"`
	Icon           string    `gorm:"size:50" json:"icon"`
	Category       string    `gorm:"size:50" json:"category"`
	Points         int       `gorm:"default:0" json:"points"`
	ConditionType  string    `gorm:"size:50;not null" json:"condition_type"`
	ConditionValue int       `gorm:"not null" json:"condition_value"`
}

func (a *Achievement) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// UserAchievement is granted once and never revoked.
type UserAchievement struct {
	ID            uuid.UUID   `gorm:"type:uuid;primaryKey" json:"id"`
	UserID        uuid.UUID   `gorm:"type:uuid;not null;uniqueIndex:idx_user_achievements_user_achievement" json:"user_id"`
	AchievementID uuid.UUID   `gorm:"type:uuid;not null;uniqueIndex:idx_user_achievements_user_achievement" json:"achievement_id"`
	EarnedAt      time.Time   `gorm:"not null" json:"earned_at"`
	Achievement   Achievement `gorm:"foreignKey:AchievementID" json:"achievement"`
}

func (ua *UserAchievement) BeforeCreate(tx *gorm.DB) error {
	if ua.ID == uuid.Nil {
		ua.ID = uuid.New()
	}
	if ua.EarnedAt.IsZero() {
		ua.EarnedAt = time.Now().UTC()
	}
	return nil
}
