package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ahmetcoskunkizilkaya/chronicles-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/chronicles-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Sort orders accepted by ListStories.
const (
	SortCreatedAt  = "created_at"
	SortRating     = "rating"
	SortPopularity = "popularity"
)

type StoryFilter struct {
	Era    string
	UserID *uuid.UUID
	SortBy string
	Page   PageRequest
}

type CreateStoryInput struct {
	UserID            *uuid.UUID
	Title             string
	Content           string
	Era               string
	CharacterName     string
	CharacterProfile  string
	HistoricalContext string
	ImageURL          string
	Tags              []string
	IsPublic          bool
	ParentStoryID     *uuid.UUID
}

type StoryService struct {
	db *gorm.DB
}

func NewStoryService(db *gorm.DB) *StoryService {
	return &StoryService{db: db}
}

// ListStories returns one page of the stories visible to viewer.
func (s *StoryService) ListStories(ctx context.Context, viewer *uuid.UUID, f StoryFilter) (*dto.StoryListResponse, error) {
	page := f.Page.normalize(DefaultPerPage)
	db := s.db.WithContext(ctx)

	base := db.Model(&models.Story{}).Scopes(visibleTo(viewer))
	if f.Era != "" {
		base = base.Where("stories.era = ?", f.Era)
	}
	if f.UserID != nil {
		base = base.Where("stories.user_id = ?", *f.UserID)
	}
	base = base.Session(&gorm.Session{})

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count stories: %w", err)
	}

	query := base
	switch f.SortBy {
	case SortRating:
		query = query.Scopes(byAverageRating)
	case SortPopularity:
		query = query.Order(bookmarkCountExpr + " DESC").Order("stories.created_at DESC")
	default:
		query = query.Order("stories.created_at DESC")
	}

	var stories []models.Story
	if err := query.Scopes(paginate(page)).Find(&stories).Error; err != nil {
		return nil, fmt.Errorf("failed to list stories: %w", err)
	}

	counts, err := loadStoryCounts(db, stories)
	if err != nil {
		return nil, err
	}

	items := make([]dto.StoryItem, len(stories))
	for i := range stories {
		items[i] = toStoryItem(&stories[i], counts)
	}
	return &dto.StoryListResponse{Stories: items, Pagination: page.pagination(total)}, nil
}

// GetStory returns the full story when it is public or owned by viewer. Reads by anyone
// but the owner bump view_count.
func (s *StoryService) GetStory(ctx context.Context, id uuid.UUID, viewer *uuid.UUID) (*dto.StoryDetail, error) {
	db := s.db.WithContext(ctx)

	story, err := findVisibleStory(db, id, viewer)
	if err != nil {
		return nil, err
	}

	if !story.OwnedBy(viewer) {
		if err := db.Model(&models.Story{}).Where("id = ?", story.ID).
			UpdateColumn("view_count", gorm.Expr("view_count + 1")).Error; err != nil {
			return nil, fmt.Errorf("failed to record view: %w", err)
		}
		story.ViewCount++
	}

	counts, err := loadStoryCounts(db, []models.Story{*story})
	if err != nil {
		return nil, err
	}

	detail := &dto.StoryDetail{
		StoryItem:         toStoryItem(story, counts),
		CharacterProfile:  story.CharacterProfile,
		HistoricalContext: story.HistoricalContext,
		ImageURL:          story.ImageURL,
		ParentStoryID:     story.ParentStoryID,
		SequenceNumber:    story.SequenceNumber,
	}

	if viewer != nil {
		var rating models.StoryRating
		err := db.Where("user_id = ? AND story_id = ?", *viewer, story.ID).First(&rating).Error
		switch {
		case err == nil:
			value := rating.Rating
			detail.UserRating = &value
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return nil, fmt.Errorf("failed to load user rating: %w", err)
		}

		var bookmarks int64
		if err := db.Model(&models.Bookmark{}).
			Where("user_id = ? AND story_id = ?", *viewer, story.ID).
			Count(&bookmarks).Error; err != nil {
			return nil, fmt.Errorf("failed to load bookmark state: %w", err)
		}
		detail.IsBookmarked = bookmarks > 0
	}

	return detail, nil
}

// CreateStory persists a story. A continuation takes the next sequence number after its
// parent, which must be visible to the author.
func (s *StoryService) CreateStory(ctx context.Context, in CreateStoryInput) (*models.Story, error) {
	if strings.TrimSpace(in.Era) == "" {
		return nil, ErrMissingEra
	}
	if strings.TrimSpace(in.Content) == "" {
		return nil, newValidationError("Story content is required")
	}

	story := models.Story{
		UserID:            in.UserID,
		Title:             in.Title,
		Content:           in.Content,
		Era:               in.Era,
		CharacterName:     in.CharacterName,
		CharacterProfile:  in.CharacterProfile,
		HistoricalContext: in.HistoricalContext,
		ImageURL:          in.ImageURL,
		Tags:              models.StringList(in.Tags...),
		IsPublic:          in.IsPublic,
		SequenceNumber:    1,
	}
	if story.Title == "" {
		story.Title = "Diary Entry from " + in.Era
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if in.UserID != nil {
			if err := requireUser(tx, *in.UserID); err != nil {
				return err
			}
		}
		if in.ParentStoryID != nil {
			parent, err := findVisibleStory(tx, *in.ParentStoryID, in.UserID)
			if err != nil {
				return err
			}
			story.ParentStoryID = &parent.ID
			story.SequenceNumber = parent.SequenceNumber + 1
		}
		return tx.Create(&story).Error
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) || errors.Is(err, ErrAuthRequired) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create story: %w", err)
	}
	return &story, nil
}
