package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// User owns stories, bookmarks, ratings, comments and achievements. Child rows are
// removed by AuthService.DeleteAccount, not by database cascades.
type User struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Username    string         `gorm:"size:80;not null;uniqueIndex" json:"username"`
	Email       string         `gorm:"size:120;not null;uniqueIndex" json:"email"`
	Password    string         `gorm:"not null" json:"-"`
	Preferences datatypes.JSON `gorm:"type:jsonb" json:"preferences,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
