package services

import (
	"errors"
	"fmt"

	"github.com/ahmetcoskunkizilkaya/chronicles-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/chronicles-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	DefaultPerPage        = 10
	DefaultCommentPerPage = 20
	MaxPerPage            = 50
)

// averageRatingExpr ranks stories by rating_sum/rating_count, treating unrated stories as 0.
const averageRatingExpr = "CASE WHEN stories.rating_count > 0 THEN stories.rating_sum * 1.0 / stories.rating_count ELSE 0 END"

const bookmarkCountExpr = "(SELECT COUNT(*) FROM bookmarks WHERE bookmarks.story_id = stories.id)"

type PageRequest struct {
	Page    int
	PerPage int
}

// normalize clamps the request: page >= 1, 1 <= per_page <= MaxPerPage.
func (p PageRequest) normalize(defaultPerPage int) PageRequest {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PerPage < 1 {
		p.PerPage = defaultPerPage
	}
	if p.PerPage > MaxPerPage {
		p.PerPage = MaxPerPage
	}
	return p
}

func (p PageRequest) offset() int {
	return (p.Page - 1) * p.PerPage
}

func (p PageRequest) pagination(total int64) dto.Pagination {
	return dto.NewPagination(p.Page, p.PerPage, total)
}

func paginate(p PageRequest) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Offset(p.offset()).Limit(p.PerPage)
	}
}

// visibleTo limits stories to public ones plus those owned by viewer.
func visibleTo(viewer *uuid.UUID) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if viewer == nil {
			return db.Where("stories.is_public = ?", true)
		}
		return db.Where("(stories.is_public = ? OR stories.user_id = ?)", true, *viewer)
	}
}

func publicStories(db *gorm.DB) *gorm.DB {
	return db.Where("stories.is_public = ?", true)
}

func byAverageRating(db *gorm.DB) *gorm.DB {
	return db.Order(averageRatingExpr + " DESC").Order("stories.created_at DESC")
}

// requireUser fails with ErrAuthRequired when the account behind a still-valid token
// has been deleted.
func requireUser(db *gorm.DB, userID uuid.UUID) error {
	var n int64
	if err := db.Model(&models.User{}).Where("id = ?", userID).Count(&n).Error; err != nil {
		return fmt.Errorf("failed to load user: %w", err)
	}
	if n == 0 {
		return ErrAuthRequired
	}
	return nil
}

// findVisibleStory loads a story the viewer may see. Private stories of other users
// yield ErrNotFound, exactly like missing ids.
func findVisibleStory(db *gorm.DB, id uuid.UUID, viewer *uuid.UUID) (*models.Story, error) {
	var story models.Story
	if err := db.First(&story, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load story: %w", err)
	}
	if !story.IsPublic && !story.OwnedBy(viewer) {
		return nil, ErrNotFound
	}
	return &story, nil
}

type storyCount struct {
	StoryID uuid.UUID
	Total   int64
}

// countByStory returns COUNT(*) of model rows grouped by story_id for the given stories.
func countByStory(db *gorm.DB, model interface{}, ids []uuid.UUID) (map[uuid.UUID]int64, error) {
	counts := make(map[uuid.UUID]int64, len(ids))
	if len(ids) == 0 {
		return counts, nil
	}
	var rows []storyCount
	err := db.Model(model).
		Select("story_id, COUNT(*) AS total").
		Where("story_id IN ?", ids).
		Group("story_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, r := range rows {
		counts[r.StoryID] = r.Total
	}
	return counts, nil
}

type storyCounts struct {
	bookmarks map[uuid.UUID]int64
	comments  map[uuid.UUID]int64
}

func loadStoryCounts(db *gorm.DB, stories []models.Story) (*storyCounts, error) {
	ids := make([]uuid.UUID, len(stories))
	for i, s := range stories {
		ids[i] = s.ID
	}
	bookmarks, err := countByStory(db, &models.Bookmark{}, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to count bookmarks: %w", err)
	}
	comments, err := countByStory(db, &models.StoryComment{}, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to count comments: %w", err)
	}
	return &storyCounts{bookmarks: bookmarks, comments: comments}, nil
}

func toStoryItem(s *models.Story, counts *storyCounts) dto.StoryItem {
	item := dto.StoryItem{
		ID:            s.ID,
		Title:         s.Title,
		Content:       s.Content,
		Era:           s.Era,
		CharacterName: s.CharacterName,
		UserID:        s.UserID,
		CreatedAt:     s.CreatedAt,
		IsPublic:      s.IsPublic,
		Tags:          s.TagList(),
		AvgRating:     s.AverageRating(),
		RatingCount:   s.RatingCount,
		ViewCount:     s.ViewCount,
	}
	if counts != nil {
		item.BookmarkCount = counts.bookmarks[s.ID]
		item.CommentCount = counts.comments[s.ID]
	}
	return item
}

func toEventItem(e *models.HistoricalEvent) dto.EventItem {
	return dto.EventItem{
		ID:          e.ID,
		Title:       e.Title,
		Description: e.Description,
		Date:        e.DateString(),
		Era:         e.Era,
		Importance:  e.ImportanceLevel,
		Tags:        e.TagList(),
	}
}
