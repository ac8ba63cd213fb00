package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ahmetcoskunkizilkaya/chronicles-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/chronicles-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	BookmarkAdded   = "added"
	BookmarkRemoved = "removed"
)

// InteractionService owns ratings, bookmarks and comments.
type InteractionService struct {
	db     *gorm.DB
	filter *ContentFilter
}

func NewInteractionService(db *gorm.DB, filter *ContentFilter) *InteractionService {
	return &InteractionService{db: db, filter: filter}
}

// Rate upserts the caller's rating and rewrites the story aggregate from the rating rows,
// all in one transaction.
func (s *InteractionService) Rate(ctx context.Context, userID, storyID uuid.UUID, value int) (*dto.RateResponse, error) {
	if value < 1 || value > 5 {
		return nil, ErrInvalidRating
	}

	var story *models.Story
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := requireUser(tx, userID); err != nil {
			return err
		}
		if _, err := findVisibleStory(tx, storyID, &userID); err != nil {
			return err
		}

		rating := models.StoryRating{UserID: userID, StoryID: storyID, Rating: value}
		if err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}, {Name: "story_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"rating":     value,
				"updated_at": time.Now().UTC(),
			}),
		}).Create(&rating).Error; err != nil {
			return fmt.Errorf("failed to save rating: %w", err)
		}

		var err error
		story, err = recomputeRatingAggregate(tx, storyID)
		return err
	})
	if err != nil {
		return nil, err
	}

	return &dto.RateResponse{
		Success:     true,
		Message:     "Rating saved successfully",
		UserRating:  value,
		AvgRating:   story.AverageRating(),
		RatingCount: story.RatingCount,
	}, nil
}

type ratingAggregate struct {
	RatingSum   int
	RatingCount int
}

// recomputeRatingAggregate sets rating_sum/rating_count from the story's StoryRating rows.
func recomputeRatingAggregate(tx *gorm.DB, storyID uuid.UUID) (*models.Story, error) {
	var agg ratingAggregate
	if err := tx.Model(&models.StoryRating{}).
		Select("COALESCE(SUM(rating), 0) AS rating_sum, COUNT(*) AS rating_count").
		Where("story_id = ?", storyID).
		Scan(&agg).Error; err != nil {
		return nil, fmt.Errorf("failed to aggregate ratings: %w", err)
	}

	if err := tx.Model(&models.Story{}).Where("id = ?", storyID).
		UpdateColumns(map[string]interface{}{
			"rating_sum":   agg.RatingSum,
			"rating_count": agg.RatingCount,
		}).Error; err != nil {
		return nil, fmt.Errorf("failed to update rating aggregate: %w", err)
	}

	var story models.Story
	if err := tx.First(&story, "id = ?", storyID).Error; err != nil {
		return nil, fmt.Errorf("failed to reload story: %w", err)
	}
	return &story, nil
}

// ToggleBookmark adds the bookmark when absent and removes it when present.
func (s *InteractionService) ToggleBookmark(ctx context.Context, userID, storyID uuid.UUID) (string, error) {
	action := ""
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := requireUser(tx, userID); err != nil {
			return err
		}
		if _, err := findVisibleStory(tx, storyID, &userID); err != nil {
			return err
		}

		var existing models.Bookmark
		err := tx.Where("user_id = ? AND story_id = ?", userID, storyID).First(&existing).Error
		switch {
		case err == nil:
			if err := tx.Delete(&existing).Error; err != nil {
				return fmt.Errorf("failed to remove bookmark: %w", err)
			}
			action = BookmarkRemoved
		case errors.Is(err, gorm.ErrRecordNotFound):
			if err := tx.Create(&models.Bookmark{UserID: userID, StoryID: storyID}).Error; err != nil {
				return fmt.Errorf("failed to add bookmark: %w", err)
			}
			action = BookmarkAdded
		default:
			return fmt.Errorf("failed to load bookmark: %w", err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return action, nil
}

// AddComment appends a comment. Content is trimmed and must not be empty.
func (s *InteractionService) AddComment(ctx context.Context, userID, storyID uuid.UUID, content string) (*dto.CommentItem, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrEmptyComment
	}
	if err := s.filter.Check(content); err != nil {
		return nil, err
	}

	var comment models.StoryComment
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := requireUser(tx, userID); err != nil {
			return err
		}
		if _, err := findVisibleStory(tx, storyID, &userID); err != nil {
			return err
		}
		comment = models.StoryComment{UserID: userID, StoryID: storyID, Content: content}
		if err := tx.Omit(clause.Associations).Create(&comment).Error; err != nil {
			return fmt.Errorf("failed to add comment: %w", err)
		}
		if err := tx.First(&comment.User, "id = ?", userID).Error; err != nil {
			return fmt.Errorf("failed to load comment author: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	item := toCommentItem(&comment)
	return &item, nil
}

// ListComments pages through a visible story's comments, newest first.
func (s *InteractionService) ListComments(ctx context.Context, storyID uuid.UUID, viewer *uuid.UUID, p PageRequest) (*dto.CommentListResponse, error) {
	page := p.normalize(DefaultCommentPerPage)
	db := s.db.WithContext(ctx)

	if _, err := findVisibleStory(db, storyID, viewer); err != nil {
		return nil, err
	}

	var total int64
	if err := db.Model(&models.StoryComment{}).Where("story_id = ?", storyID).Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count comments: %w", err)
	}

	var comments []models.StoryComment
	if err := db.Preload("User").
		Where("story_id = ?", storyID).
		Order("created_at DESC").
		Scopes(paginate(page)).
		Find(&comments).Error; err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}

	items := make([]dto.CommentItem, len(comments))
	for i := range comments {
		items[i] = toCommentItem(&comments[i])
	}
	return &dto.CommentListResponse{Comments: items, Pagination: page.pagination(total)}, nil
}

func toCommentItem(c *models.StoryComment) dto.CommentItem {
	return dto.CommentItem{
		ID:        c.ID,
		Content:   c.Content,
		Username:  c.User.Username,
		CreatedAt: c.CreatedAt,
	}
}
