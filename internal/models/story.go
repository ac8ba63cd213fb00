package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Story is a persisted diary entry. RatingSum and RatingCount mirror the story's
// StoryRating rows and are rewritten in the same transaction as every rating write.
type Story struct {
	ID                uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID            *uuid.UUID     `gorm:"type:uuid;index" json:"user_id"`
	Title             string         `gorm:"size:200;not null" json:"title"`
	Content           string         `gorm:"type:text;not null" json:"content"`
	Era               string         `gorm:"size:100;not null;index" json:"era"`
	CharacterName     string         `gorm:"size:100" json:"character_name"`
	CharacterProfile  string         `gorm:"type:text" json:"character_profile"`
	HistoricalContext string         `gorm:"type:text" json:"historical_context"`
	ImageURL          string         `gorm:"size:500" json:"image_url"`
	Tags              datatypes.JSON `gorm:"type:jsonb" json:"tags"`
	IsPublic          bool           `gorm:"default:false;index" json:"is_public"`
	RatingSum         int            `gorm:"default:0" json:"rating_sum"`
	RatingCount       int            `gorm:"default:0" json:"rating_count"`
	ViewCount         int            `gorm:"default:0" json:"view_count"`
	ParentStoryID     *uuid.UUID     `gorm:"type:uuid;index" json:"parent_story_id"`
	SequenceNumber    int            `gorm:"default:1" json:"sequence_number"`
	CreatedAt         time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
}

func (s *Story) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	if s.SequenceNumber == 0 {
		s.SequenceNumber = 1
	}
	return nil
}

// AverageRating is RatingSum/RatingCount, or 0 for an unrated story.
func (s *Story) AverageRating() float64 {
	if s.RatingCount == 0 {
		return 0
	}
	return float64(s.RatingSum) / float64(s.RatingCount)
}

// OwnedBy reports whether userID authored the story. Anonymous stories have no owner.
func (s *Story) OwnedBy(userID *uuid.UUID) bool {
	return userID != nil && s.UserID != nil && *s.UserID == *userID
}

// TagList decodes Tags, tolerating empty or malformed values.
func (s *Story) TagList() []string {
	return decodeStrings(s.Tags)
}

type Bookmark struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_bookmarks_user_story" json:"user_id"`
	StoryID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_bookmarks_user_story;index" json:"story_id"`
	Notes     string    `gorm:"type:text" json:"notes"`
	CreatedAt time.Time `json:"created_at"`
}

func (b *Bookmark) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

type StoryRating struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_story_ratings_user_story" json:"user_id"`
	StoryID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_story_ratings_user_story;index" json:"story_id"`
	Rating    int       `gorm:"not null;check:rating >= 1 AND rating <= 5" json:"rating"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (r *StoryRating) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

type StoryComment struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	StoryID   uuid.UUID `gorm:"type:uuid;not null;index" json:"story_id"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	User      User      `gorm:"foreignKey:UserID" json:"-"`
}

func (c *StoryComment) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
