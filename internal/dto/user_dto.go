package dto

import (
	"time"

	"github.com/google/uuid"
)

type ProfileRequest struct {
	Theme           string   `json:"theme"`
	AutoPlayAudio   bool     `json:"auto_play_audio"`
	TypewriterSpeed string   `json:"typewriter_speed"`
	PreferredEras   []string `json:"preferred_eras"`
	HighContrast    bool     `json:"high_contrast"`
	LargeText       bool     `json:"large_text"`
	ReduceMotion    bool     `json:"reduce_motion"`
}

type AccessibilityPreferences struct {
	HighContrast bool `json:"high_contrast"`
	LargeText    bool `json:"large_text"`
	ReduceMotion bool `json:"reduce_motion"`
}

// Preferences is the normalised document written by the profile form.
type Preferences struct {
	Theme           string                   `json:"theme"`
	AutoPlayAudio   bool                     `json:"auto_play_audio"`
	TypewriterSpeed string                   `json:"typewriter_speed"`
	PreferredEras   []string                 `json:"preferred_eras"`
	Accessibility   AccessibilityPreferences `json:"accessibility"`
}

type AchievementItem struct {
	ID          uuid.UUID  `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Icon        string     `json:"icon"`
	Category    string     `json:"category,omitempty"`
	Points      int        `json:"points"`
	Earned      bool       `json:"earned"`
	EarnedAt    *time.Time `json:"earned_at,omitempty"`
}

type AchievementListResponse struct {
	Achievements []AchievementItem `json:"achievements"`
}

type TrackRequest struct {
	EventType string                 `json:"event_type"`
	EventData map[string]interface{} `json:"event_data"`
	SessionID string                 `json:"session_id"`
}

type DashboardStats struct {
	TotalStories      int64 `json:"total_stories"`
	TotalBookmarks    int64 `json:"total_bookmarks"`
	TotalRatings      int64 `json:"total_ratings"`
	AchievementsCount int   `json:"achievements_count"`
}

type EraPreference struct {
	Era   string `json:"era"`
	Count int64  `json:"count"`
}

type RecentStory struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	Era       string    `json:"era"`
	CreatedAt time.Time `json:"created_at"`
}

type DashboardResponse struct {
	Stats          DashboardStats    `json:"stats"`
	EraPreferences []EraPreference   `json:"era_preferences"`
	RecentStories  []RecentStory     `json:"recent_stories"`
	Achievements   []AchievementItem `json:"achievements"`
}
