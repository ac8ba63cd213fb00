package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/ahmetcoskunkizilkaya/chronicles-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/chronicles-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	dashboardEraLimit    = 10
	dashboardRecentLimit = 5
)

// TrackInput is one analytics event with the request metadata the handler collected.
type TrackInput struct {
	UserID    *uuid.UUID
	SessionID string
	EventType string
	EventData map[string]interface{}
	IPAddress string
	UserAgent string
}

type AnalyticsService struct {
	db           *gorm.DB
	achievements *AchievementService
}

func NewAnalyticsService(db *gorm.DB, achievements *AchievementService) *AnalyticsService {
	return &AnalyticsService{db: db, achievements: achievements}
}

func (s *AnalyticsService) Track(ctx context.Context, in TrackInput) error {
	eventType := strings.TrimSpace(in.EventType)
	if eventType == "" {
		return ErrMissingEventType
	}

	data := datatypes.JSON("{}")
	if len(in.EventData) > 0 {
		raw, err := json.Marshal(in.EventData)
		if err != nil {
			return newValidationError("event_data must be a JSON object")
		}
		data = raw
	}

	row := models.UserAnalytics{
		UserID:    in.UserID,
		SessionID: in.SessionID,
		Action:    eventType,
		Data:      data,
		IPAddress: in.IPAddress,
		UserAgent: in.UserAgent,
		Timestamp: time.Now().UTC(),
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if in.UserID != nil {
			if err := requireUser(tx, *in.UserID); err != nil {
				return err
			}
		}
		if err := tx.Create(&row).Error; err != nil {
			return fmt.Errorf("failed to track event: %w", err)
		}
		return nil
	})
}

// Dashboard summarises the user's writing activity.
func (s *AnalyticsService) Dashboard(ctx context.Context, userID uuid.UUID) (*dto.DashboardResponse, error) {
	db := s.db.WithContext(ctx)
	var stats dto.DashboardStats

	if err := db.Model(&models.Story{}).Where("user_id = ?", userID).Count(&stats.TotalStories).Error; err != nil {
		return nil, fmt.Errorf("failed to count stories: %w", err)
	}
	if err := db.Model(&models.Bookmark{}).Where("user_id = ?", userID).Count(&stats.TotalBookmarks).Error; err != nil {
		return nil, fmt.Errorf("failed to count bookmarks: %w", err)
	}
	if err := db.Model(&models.StoryRating{}).Where("user_id = ?", userID).Count(&stats.TotalRatings).Error; err != nil {
		return nil, fmt.Errorf("failed to count ratings: %w", err)
	}

	var eras []eraCount
	if err := db.Model(&models.Story{}).
		Select("era, COUNT(*) AS total").
		Where("user_id = ?", userID).
		Group("era").
		Order("total DESC").Order("era ASC").
		Limit(dashboardEraLimit).
		Scan(&eras).Error; err != nil {
		return nil, fmt.Errorf("failed to load era preferences: %w", err)
	}
	prefs := make([]dto.EraPreference, len(eras))
	for i, e := range eras {
		prefs[i] = dto.EraPreference{Era: e.Era, Count: e.Total}
	}

	var recent []models.Story
	if err := db.Select("id, title, era, created_at").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(dashboardRecentLimit).
		Find(&recent).Error; err != nil {
		return nil, fmt.Errorf("failed to load recent stories: %w", err)
	}
	recentItems := make([]dto.RecentStory, len(recent))
	for i, r := range recent {
		recentItems[i] = dto.RecentStory{ID: r.ID, Title: r.Title, Era: r.Era, CreatedAt: r.CreatedAt}
	}

	earned, err := s.achievements.Earned(ctx, userID)
	if err != nil {
		return nil, err
	}
	stats.AchievementsCount = len(earned)

	return &dto.DashboardResponse{
		Stats:          stats,
		EraPreferences: prefs,
		RecentStories:  recentItems,
		Achievements:   earned,
	}, nil
}
