package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ahmetcoskunkizilkaya/chronicles-backend/internal/catalog"
	"github.com/ahmetcoskunkizilkaya/chronicles-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/chronicles-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AchievementService struct {
	db *gorm.DB
}

func NewAchievementService(db *gorm.DB) *AchievementService {
	return &AchievementService{db: db}
}

// SeedCatalog inserts catalog achievements that are not stored yet (matched by name).
func (s *AchievementService) SeedCatalog(ctx context.Context, achievements []catalog.Achievement) error {
	if len(achievements) == 0 {
		return nil
	}
	rows := make([]models.Achievement, len(achievements))
	for i, a := range achievements {
		rows[i] = models.Achievement{
			Name:           a.Name,
			Description:    a.Description,
			Icon:           a.Icon,
			Category:       a.Category,
			Points:         a.Points,
			ConditionType:  a.ConditionType,
			ConditionValue: a.ConditionValue,
		}
	}
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "name"}}, DoNothing: true}).
		Create(&rows).Error
}

type userMetrics struct {
	stories int64
	eras    int64
}

func (m userMetrics) value(conditionType string) (int64, bool) {
	switch conditionType {
	case models.ConditionStoryCount:
		return m.stories, true
	case models.ConditionEraCount:
		return m.eras, true
	default:
		return 0, false
	}
}

// Evaluate grants every achievement whose threshold the user now meets and returns
// only the ones granted by this call. Running it twice grants nothing the second time.
func (s *AchievementService) Evaluate(ctx context.Context, userID uuid.UUID) ([]dto.AchievementItem, error) {
	var granted []dto.AchievementItem

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.Select("id").First(&user, "id = ?", userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return err
		}

		var m userMetrics
		if err := tx.Model(&models.Story{}).Where("user_id = ?", userID).Count(&m.stories).Error; err != nil {
			return fmt.Errorf("failed to count stories: %w", err)
		}
		if err := tx.Model(&models.Story{}).Where("user_id = ?", userID).
			Distinct("era").Count(&m.eras).Error; err != nil {
			return fmt.Errorf("failed to count eras: %w", err)
		}

		earned := tx.Model(&models.UserAchievement{}).Select("achievement_id").Where("user_id = ?", userID)
		var candidates []models.Achievement
		if err := tx.Where("id NOT IN (?)", earned).Order("condition_value ASC").Order("name ASC").
			Find(&candidates).Error; err != nil {
			return fmt.Errorf("failed to load achievements: %w", err)
		}

		now := time.Now().UTC()
		for i := range candidates {
			a := &candidates[i]
			current, known := m.value(a.ConditionType)
			if !known {
				slog.Debug("achievement condition has no metric", "achievement", a.Name, "condition_type", a.ConditionType)
				continue
			}
			if current < int64(a.ConditionValue) {
				continue
			}

			ua := models.UserAchievement{UserID: userID, AchievementID: a.ID, EarnedAt: now}
			res := tx.Omit(clause.Associations).
				Clauses(clause.OnConflict{DoNothing: true}).
				Create(&ua)
			if res.Error != nil {
				return fmt.Errorf("failed to grant achievement: %w", res.Error)
			}
			if res.RowsAffected == 0 {
				continue
			}
			item := toAchievementItem(a, &now)
			granted = append(granted, item)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to evaluate achievements: %w", err)
	}

	if len(granted) > 0 {
		slog.Info("achievements granted", "user_id", userID, "count", len(granted))
	}
	return granted, nil
}

// ListForUser returns the whole catalog with the user's earned flags.
func (s *AchievementService) ListForUser(ctx context.Context, userID uuid.UUID) ([]dto.AchievementItem, error) {
	db := s.db.WithContext(ctx)

	var all []models.Achievement
	if err := db.Order("category ASC").Order("condition_value ASC").Order("name ASC").Find(&all).Error; err != nil {
		return nil, fmt.Errorf("failed to load achievements: %w", err)
	}

	var earned []models.UserAchievement
	if err := db.Where("user_id = ?", userID).Find(&earned).Error; err != nil {
		return nil, fmt.Errorf("failed to load earned achievements: %w", err)
	}
	earnedAt := make(map[uuid.UUID]time.Time, len(earned))
	for _, ua := range earned {
		earnedAt[ua.AchievementID] = ua.EarnedAt
	}

	items := make([]dto.AchievementItem, len(all))
	for i := range all {
		var at *time.Time
		if t, ok := earnedAt[all[i].ID]; ok {
			at = &t
		}
		items[i] = toAchievementItem(&all[i], at)
	}
	return items, nil
}

// Earned returns the user's achievements, most recent first.
func (s *AchievementService) Earned(ctx context.Context, userID uuid.UUID) ([]dto.AchievementItem, error) {
	var rows []models.UserAchievement
	err := s.db.WithContext(ctx).
		Preload("Achievement").
		Where("user_id = ?", userID).
		Order("earned_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load earned achievements: %w", err)
	}

	items := make([]dto.AchievementItem, len(rows))
	for i := range rows {
		at := rows[i].EarnedAt
		items[i] = toAchievementItem(&rows[i].Achievement, &at)
	}
	return items, nil
}

func toAchievementItem(a *models.Achievement, earnedAt *time.Time) dto.AchievementItem {
	return dto.AchievementItem{
		ID:          a.ID,
		Name:        a.Name,
		Description: a.Description,
		Icon:        a.Icon,
		Category:    a.Category,
		Points:      a.Points,
		Earned:      earnedAt != nil,
		EarnedAt:    earnedAt,
	}
}
