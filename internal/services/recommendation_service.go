package services

import (
	"context"
	"fmt"

	"github.com/ahmetcoskunkizilkaya/chronicles-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/chronicles-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	recommendationLimit = 10
	topEraLimit         = 3
)

type RecommendationService struct {
	db *gorm.DB
}

func NewRecommendationService(db *gorm.DB) *RecommendationService {
	return &RecommendationService{db: db}
}

type eraCount struct {
	Era   string
	Total int64
}

// TopEras returns the user's most written-about eras, most frequent first.
// Ties are broken by era name.
func (s *RecommendationService) TopEras(ctx context.Context, userID uuid.UUID, limit int) ([]string, error) {
	var rows []eraCount
	if err := s.db.WithContext(ctx).Model(&models.Story{}).
		Select("era, COUNT(*) AS total").
		Where("user_id = ?", userID).
		Group("era").
		Order("total DESC").
		Order("era ASC").
		Limit(limit).
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to compute era counts: %w", err)
	}
	eras := make([]string, len(rows))
	for i, r := range rows {
		eras[i] = r.Era
	}
	return eras, nil
}

// Recommend ranks public stories by average rating. Users with stories get stories from
// their top eras written by someone else; everyone else gets the global top list.
func (s *RecommendationService) Recommend(ctx context.Context, userID uuid.UUID) (*dto.RecommendationResponse, error) {
	eras, err := s.TopEras(ctx, userID, topEraLimit)
	if err != nil {
		return nil, err
	}

	db := s.db.WithContext(ctx)
	query := db.Model(&models.Story{}).Scopes(publicStories)
	if len(eras) > 0 {
		query = query.
			Where("stories.era IN ?", eras).
			Where("(stories.user_id IS NULL OR stories.user_id <> ?)", userID)
	}

	var stories []models.Story
	if err := query.Scopes(byAverageRating).Limit(recommendationLimit).Find(&stories).Error; err != nil {
		return nil, fmt.Errorf("failed to load recommendations: %w", err)
	}

	counts, err := loadStoryCounts(db, stories)
	if err != nil {
		return nil, err
	}

	items := make([]dto.RecommendationItem, len(stories))
	for i := range stories {
		items[i] = dto.RecommendationItem{
			ID:            stories[i].ID,
			Title:         stories[i].Title,
			Era:           stories[i].Era,
			CharacterName: stories[i].CharacterName,
			AvgRating:     stories[i].AverageRating(),
			BookmarkCount: counts.bookmarks[stories[i].ID],
		}
	}
	return &dto.RecommendationResponse{RecommendedStories: items}, nil
}
