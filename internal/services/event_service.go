package services

import (
	"context"
	"fmt"
	"time"

	"github.com/ahmetcoskunkizilkaya/chronicles-backend/internal/catalog"
	"github.com/ahmetcoskunkizilkaya/chronicles-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/chronicles-backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	eventDateLayout = "2006-01-02"
	maxEvents       = 50
)

type EventService struct {
	db *gorm.DB
}

func NewEventService(db *gorm.DB) *EventService {
	return &EventService{db: db}
}

// ListHistoricalEvents filters by era and exact day. date must be YYYY-MM-DD.
func (s *EventService) ListHistoricalEvents(ctx context.Context, era, date string) ([]dto.EventItem, error) {
	query := s.db.WithContext(ctx).Model(&models.HistoricalEvent{})
	if era != "" {
		query = query.Where("era = ?", era)
	}
	if date != "" {
		day, err := time.Parse(eventDateLayout, date)
		if err != nil {
			return nil, ErrInvalidDate
		}
		query = query.Where("date >= ? AND date < ?", day, day.AddDate(0, 0, 1))
	}

	var events []models.HistoricalEvent
	if err := query.Order("date ASC").Limit(maxEvents).Find(&events).Error; err != nil {
		return nil, fmt.Errorf("failed to list historical events: %w", err)
	}

	items := make([]dto.EventItem, len(events))
	for i := range events {
		items[i] = toEventItem(&events[i])
	}
	return items, nil
}

// Seed inserts catalog events that are not stored yet (matched by title).
func (s *EventService) Seed(ctx context.Context, events []catalog.Event) error {
	if len(events) == 0 {
		return nil
	}
	rows := make([]models.HistoricalEvent, 0, len(events))
	for _, e := range events {
		row := models.HistoricalEvent{
			Title:           e.Title,
			Description:     e.Description,
			Era:             e.Era,
			ImportanceLevel: e.Importance,
			Tags:            models.StringList(e.Tags...),
		}
		if e.Date != "" {
			day, err := time.Parse(eventDateLayout, e.Date)
			if err != nil {
				return fmt.Errorf("invalid date %q for event %q: %w", e.Date, e.Title, err)
			}
			row.Date = &day
		}
		rows = append(rows, row)
	}
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "title"}}, DoNothing: true}).
		Create(&rows).Error
}
