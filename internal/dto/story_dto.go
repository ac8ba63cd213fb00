package dto

import (
	"time"

	"github.com/google/uuid"
)

type StoryItem struct {
	ID            uuid.UUID  `json:"id"`
	Title         string     `json:"title"`
	Content       string     `json:"content"`
	Era           string     `json:"era"`
	CharacterName string     `json:"character_name"`
	UserID        *uuid.UUID `json:"user_id"`
	CreatedAt     time.Time  `json:"created_at"`
	IsPublic      bool       `json:"is_public"`
	Tags          []string   `json:"tags"`
	AvgRating     float64    `json:"avg_rating"`
	RatingCount   int        `json:"rating_count"`
	BookmarkCount int64      `json:"bookmark_count"`
	CommentCount  int64      `json:"comment_count"`
	ViewCount     int        `json:"view_count"`
}

type StoryListResponse struct {
	Stories    []StoryItem `json:"stories"`
	Pagination Pagination  `json:"pagination"`
}

type StoryDetail struct {
	StoryItem
	CharacterProfile  string     `json:"character_profile"`
	HistoricalContext string     `json:"historical_context"`
	ImageURL          string     `json:"image_url"`
	ParentStoryID     *uuid.UUID `json:"parent_story_id"`
	SequenceNumber    int        `json:"sequence_number"`
	UserRating        *int       `json:"user_rating"`
	IsBookmarked      bool       `json:"is_bookmarked"`
}

type RateRequest struct {
	Rating int `json:"rating"`
}

type RateResponse struct {
	Success     bool    `json:"success"`
	Message     string  `json:"message"`
	UserRating  int     `json:"user_rating"`
	AvgRating   float64 `json:"avg_rating"`
	RatingCount int     `json:"rating_count"`
}

type BookmarkResponse struct {
	Success bool   `json:"success"`
	Action  string `json:"action"`
}

type CommentRequest struct {
	Content string `json:"content"`
}

type CommentItem struct {
	ID        uuid.UUID `json:"id"`
	Content   string    `json:"content"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
}

type CommentListResponse struct {
	Comments   []CommentItem `json:"comments"`
	Pagination Pagination    `json:"pagination"`
}

type CommentResponse struct {
	Success bool        `json:"success"`
	Comment CommentItem `json:"comment"`
}

type RecommendationItem struct {
	ID            uuid.UUID `json:"id"`
	Title         string    `json:"title"`
	Era           string    `json:"era"`
	CharacterName string    `json:"character_name"`
	AvgRating     float64   `json:"avg_rating"`
	BookmarkCount int64     `json:"bookmark_count"`
}

type RecommendationResponse struct {
	RecommendedStories []RecommendationItem `json:"recommended_stories"`
}
