package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/ahmetcoskunkizilkaya/chronicles-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/chronicles-backend/internal/models"
	"gorm.io/gorm"
)

// Search kinds.
const (
	SearchAll     = "all"
	SearchStories = "stories"
	SearchEvents  = "events"
)

// searchPreviewLimit caps each result kind when both are requested.
const searchPreviewLimit = 5

type SearchQuery struct {
	Query string
	Type  string
	Page  PageRequest
}

type SearchService struct {
	db *gorm.DB
}

func NewSearchService(db *gorm.DB) *SearchService {
	return &SearchService{db: db}
}

// Search matches public stories and historical events by substring. Case sensitivity
// follows the database's LIKE semantics.
func (s *SearchService) Search(ctx context.Context, q SearchQuery) (*dto.SearchResponse, error) {
	term := strings.TrimSpace(q.Query)
	if term == "" {
		return nil, ErrEmptyQuery
	}
	kind := q.Type
	if kind == "" {
		kind = SearchAll
	}
	if kind != SearchAll && kind != SearchStories && kind != SearchEvents {
		return nil, ErrInvalidSearchKey
	}

	page := q.Page.normalize(DefaultPerPage)
	pattern := "%" + term + "%"
	db := s.db.WithContext(ctx)

	resp := &dto.SearchResponse{
		Stories: []dto.SearchStoryItem{},
		Events:  []dto.EventItem{},
	}

	if kind == SearchAll || kind == SearchStories {
		query := db.Model(&models.Story{}).
			Scopes(publicStories).
			Where("(stories.title LIKE ? OR stories.content LIKE ? OR stories.character_name LIKE ? OR stories.era LIKE ?)",
				pattern, pattern, pattern, pattern).
			Session(&gorm.Session{})

		var stories []models.Story
		if kind == SearchStories {
			var total int64
			if err := query.Count(&total).Error; err != nil {
				return nil, fmt.Errorf("failed to count story matches: %w", err)
			}
			if err := query.Order("stories.created_at DESC").Scopes(paginate(page)).Find(&stories).Error; err != nil {
				return nil, fmt.Errorf("failed to search stories: %w", err)
			}
			pagination := page.pagination(total)
			resp.Pagination = &pagination
		} else if err := query.Order("stories.created_at DESC").Limit(searchPreviewLimit).Find(&stories).Error; err != nil {
			return nil, fmt.Errorf("failed to search stories: %w", err)
		}

		for i := range stories {
			resp.Stories = append(resp.Stories, dto.SearchStoryItem{
				ID:            stories[i].ID,
				Title:         stories[i].Title,
				Era:           stories[i].Era,
				CharacterName: stories[i].CharacterName,
				CreatedAt:     stories[i].CreatedAt,
				AvgRating:     stories[i].AverageRating(),
			})
		}
	}

	if kind == SearchAll || kind == SearchEvents {
		query := db.Model(&models.HistoricalEvent{}).
			Where("(title LIKE ? OR description LIKE ? OR era LIKE ?)", pattern, pattern, pattern).
			Session(&gorm.Session{})

		var events []models.HistoricalEvent
		if kind == SearchEvents {
			var total int64
			if err := query.Count(&total).Error; err != nil {
				return nil, fmt.Errorf("failed to count event matches: %w", err)
			}
			if err := query.Order("importance_level DESC").Scopes(paginate(page)).Find(&events).Error; err != nil {
				return nil, fmt.Errorf("failed to search events: %w", err)
			}
			pagination := page.pagination(total)
			resp.Pagination = &pagination
		} else if err := query.Order("importance_level DESC").Limit(searchPreviewLimit).Find(&events).Error; err != nil {
			return nil, fmt.Errorf("failed to search events: %w", err)
		}

		for i := range events {
			resp.Events = append(resp.Events, toEventItem(&events[i]))
		}
	}

	return resp, nil
}
