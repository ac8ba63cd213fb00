package testutil

import (
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/chronicles-backend/internal/models"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const Password = "chronicle42"

func SeedUser(tb testing.TB, db *gorm.DB, username string) *models.User {
	tb.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(Password), bcrypt.MinCost)
	if err != nil {
		tb.Fatalf("hash password: %v", err)
	}
	u := &models.User{
		Username: username,
		Email:    username + "@example.com",
		Password: string(hash),
	}
	if err := db.Create(u).Error; err != nil {
		tb.Fatalf("seed user: %v", err)
	}
	return u
}

// StoryOpts overrides SeedStory defaults. Zero values keep the defaults.
type StoryOpts struct {
	Era         string
	Private     bool
	RatingSum   int
	RatingCount int
	CreatedAt   time.Time
	Title       string
	Content     string
}

func SeedStory(tb testing.TB, db *gorm.DB, owner *uuid.UUID, opts StoryOpts) *models.Story {
	tb.Helper()
	s := &models.Story{
		UserID:         owner,
		Title:          opts.Title,
		Content:        opts.Content,
		Era:            opts.Era,
		CharacterName:  "Ruby",
		IsPublic:       !opts.Private,
		RatingSum:      opts.RatingSum,
		RatingCount:    opts.RatingCount,
		SequenceNumber: 1,
		CreatedAt:      opts.CreatedAt,
	}
	if s.Era == "" {
		s.Era = "The Roaring Twenties"
	}
	if s.Title == "" {
		s.Title = "Diary Entry from " + s.Era
	}
	if s.Content == "" {
		s.Content = "Dear diary, the music never stops."
	}
	if err := db.Create(s).Error; err != nil {
		tb.Fatalf("seed story: %v", err)
	}
	return s
}

func SeedRating(tb testing.TB, db *gorm.DB, userID, storyID uuid.UUID, value int) {
	tb.Helper()
	r := &models.StoryRating{UserID: userID, StoryID: storyID, Rating: value}
	if err := db.Create(r).Error; err != nil {
		tb.Fatalf("seed rating: %v", err)
	}
}

func SeedBookmark(tb testing.TB, db *gorm.DB, userID, storyID uuid.UUID) {
	tb.Helper()
	b := &models.Bookmark{UserID: userID, StoryID: storyID}
	if err := db.Create(b).Error; err != nil {
		tb.Fatalf("seed bookmark: %v", err)
	}
}

func SeedEvent(tb testing.TB, db *gorm.DB, title, era, date string, importance int) *models.HistoricalEvent {
	tb.Helper()
	e := &models.HistoricalEvent{
		Title:           title,
		Description:     "About " + title,
		Era:             era,
		ImportanceLevel: importance,
	}
	if date != "" {
		d, err := time.Parse("2006-01-02", date)
		if err != nil {
			tb.Fatalf("parse date: %v", err)
		}
		e.Date = &d
	}
	if err := db.Create(e).Error; err != nil {
		tb.Fatalf("seed event: %v", err)
	}
	return e
}

func SeedAchievement(tb testing.TB, db *gorm.DB, name, condition string, value int) *models.Achievement {
	tb.Helper()
	a := &models.Achievement{
		Name:           name,
		Description:    name,
		Points:         10,
		ConditionType:  condition,
		ConditionValue: value,
	}
	if err := db.Create(a).Error; err != nil {
		tb.Fatalf("seed achievement: %v", err)
	}
	return a
}
