package dto

import "github.com/google/uuid"

type GenerateRequest struct {
	Era           string     `json:"era"`
	Event         string     `json:"event"`
	SaveStory     bool       `json:"save_story"`
	IsPublic      *bool      `json:"is_public"`
	ParentStoryID *uuid.UUID `json:"parent_story_id"`
}

type GenerateResponse struct {
	Success           bool              `json:"success"`
	DiaryEntry        string            `json:"diary_entry"`
	CharacterName     string            `json:"character_name"`
	CharacterProfile  string            `json:"character_profile"`
	HistoricalContext string            `json:"historical_context"`
	Era               string            `json:"era"`
	Mood              string            `json:"mood"`
	Setting           string            `json:"setting"`
	ImageURL          string            `json:"image_url"`
	Timestamp         string            `json:"timestamp"`
	StoryID           *uuid.UUID        `json:"story_id,omitempty"`
	Saved             bool              `json:"saved,omitempty"`
	SaveError         string            `json:"save_error,omitempty"`
	NewAchievements   []AchievementItem `json:"new_achievements,omitempty"`
}
