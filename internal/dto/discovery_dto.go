package dto

import (
	"time"

	"github.com/google/uuid"
)

type EventItem struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Date        *string   `json:"date"`
	Era         string    `json:"era"`
	Importance  int       `json:"importance"`
	Tags        []string  `json:"tags"`
}

type EventListResponse struct {
	Events []EventItem `json:"events"`
}

type SearchStoryItem struct {
	ID            uuid.UUID `json:"id"`
	Title         string    `json:"title"`
	Era           string    `json:"era"`
	CharacterName string    `json:"character_name"`
	CreatedAt     time.Time `json:"created_at"`
	AvgRating     float64   `json:"avg_rating"`
}

// SearchResponse carries pagination only when a single result kind was requested.
type SearchResponse struct {
	Stories    []SearchStoryItem `json:"stories"`
	Events     []EventItem       `json:"events"`
	Pagination *Pagination       `json:"pagination,omitempty"`
}
