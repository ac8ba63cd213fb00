package services

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"log/slog"
	"strings"
	"time"

	"github.com/ahmetcoskunkizilkaya/chronicles-backend/internal/ai"
	"github.com/ahmetcoskunkizilkaya/chronicles-backend/internal/catalog"
	"github.com/ahmetcoskunkizilkaya/chronicles-backend/internal/dto"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const diaryDateLayout = "January 02, 2006"

const (
	placeholderDiary   = "The pages of this diary are blank for now. Please try again in a moment."
	placeholderProfile = "Character details are unavailable right now."
	placeholderContext = "Historical context is unavailable right now."
)

// GenerateInput carries the request and the optional caller identity.
type GenerateInput struct {
	UserID        *uuid.UUID
	Era           string
	SaveStory     bool
	IsPublic      bool
	ParentStoryID *uuid.UUID
}

type GenerationService struct {
	completer    ai.Completer
	catalog      *catalog.Catalog
	stories      *StoryService
	achievements *AchievementService
}

func NewGenerationService(completer ai.Completer, cat *catalog.Catalog, stories *StoryService, achievements *AchievementService) *GenerationService {
	return &GenerationService{
		completer:    completer,
		catalog:      cat,
		stories:      stories,
		achievements: achievements,
	}
}

// Generate writes a diary entry for era. The three completions are independent and a
// failed one degrades to placeholder text. Persistence failures are reported in
// SaveError without failing the call.
func (s *GenerationService) Generate(ctx context.Context, in GenerateInput) (*dto.GenerateResponse, error) {
	era := strings.TrimSpace(in.Era)
	if era == "" {
		return nil, ErrMissingEra
	}

	persona, _ := s.catalog.Persona(era)

	var diary, profile, history string
	var g errgroup.Group
	g.Go(func() error {
		diary = s.complete(ctx, "diary", diaryPrompt(persona, era), placeholderDiary)
		return nil
	})
	g.Go(func() error {
		profile = s.complete(ctx, "character_profile", profilePrompt(persona, era), placeholderProfile)
		return nil
	})
	g.Go(func() error {
		history = s.complete(ctx, "historical_context", contextPrompt(era), placeholderContext)
		return nil
	})
	// Every branch degrades to its placeholder, so the group never reports an error.
	g.Wait()

	resp := &dto.GenerateResponse{
		Success:           true,
		DiaryEntry:        diary,
		CharacterName:     characterName(persona),
		CharacterProfile:  profile,
		HistoricalContext: history,
		Era:               era,
		Mood:              persona.Mood,
		Setting:           persona.Setting,
		ImageURL:          imageURL(persona, era),
		Timestamp:         time.Now().Format(diaryDateLayout),
	}

	if in.UserID == nil || !in.SaveStory {
		return resp, nil
	}

	story, err := s.stories.CreateStory(ctx, CreateStoryInput{
		UserID:            in.UserID,
		Content:           diary,
		Era:               era,
		CharacterName:     resp.CharacterName,
		CharacterProfile:  profile,
		HistoricalContext: history,
		ImageURL:          resp.ImageURL,
		Tags:              []string{eraTag(era), persona.Mood},
		IsPublic:          in.IsPublic,
		ParentStoryID:     in.ParentStoryID,
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			resp.SaveError = "Parent story not found"
		case errors.Is(err, ErrAuthRequired):
			resp.SaveError = "Authentication required"
		default:
			slog.Error("failed to save generated story", "error", err, "user_id", *in.UserID, "era", era)
			resp.SaveError = "Failed to save story"
		}
		return resp, nil
	}
	resp.StoryID = &story.ID
	resp.Saved = true

	granted, err := s.achievements.Evaluate(ctx, *in.UserID)
	if err != nil {
		slog.Error("failed to evaluate achievements", "error", err, "user_id", *in.UserID)
		return resp, nil
	}
	resp.NewAchievements = granted
	return resp, nil
}

func (s *GenerationService) complete(ctx context.Context, kind, prompt, fallback string) string {
	if s.completer == nil {
		return fallback
	}
	text, err := s.completer.Complete(ctx, prompt)
	if err != nil {
		if errors.Is(err, ai.ErrNotConfigured) {
			slog.Debug("ai completion skipped", "kind", kind)
		} else {
			slog.Warn("ai completion failed", "kind", kind, "error", err)
		}
		return fallback
	}
	return text
}

func diaryPrompt(p catalog.Persona, era string) string {
	return fmt.Sprintf("You are %s. Write a deeply personal first-person diary entry (150-200 words) about your life during %s. "+
		"Include your daily struggles and hopes, details about the people around you, and your feelings about the historical moment. "+
		"Do not break character.", p.Character, era)
}

func profilePrompt(p catalog.Persona, era string) string {
	return fmt.Sprintf("Create a brief character profile (50-75 words) for %s during %s. "+
		"Include full name, age, occupation, family situation, personality traits and current life circumstances.", p.Character, era)
}

func contextPrompt(era string) string {
	return fmt.Sprintf("Write the historical context of %s in 200-250 words: daily life, the economic and political climate, "+
		"cultural and technological change, a few lesser-known facts, and how different social groups experienced the period.", era)
}

// characterName prefers the catalog name and otherwise takes the word after " named ".
func characterName(p catalog.Persona) string {
	if p.Name != "" {
		return p.Name
	}
	if _, rest, ok := strings.Cut(p.Character, " named "); ok {
		if name, _, _ := strings.Cut(rest, " "); name != "" {
			return strings.TrimRight(name, ",.")
		}
	}
	return "Anonymous"
}

func imageURL(p catalog.Persona, era string) string {
	if p.ImageURL != "" {
		return p.ImageURL
	}
	h := fnv.New32a()
	h.Write([]byte(era))
	return fmt.Sprintf("https://picsum.photos/800/600?random=%d&sepia", h.Sum32())
}

func eraTag(era string) string {
	return strings.ReplaceAll(strings.ToLower(era), " ", "_")
}
