package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ahmetcoskunkizilkaya/chronicles-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/chronicles-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	defaultTheme           = "dark"
	defaultTypewriterSpeed = "medium"
)

type UserService struct {
	db *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

func (s *UserService) Get(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return &user, nil
}

// Status describes the caller. A token whose user has since been deleted reads as anonymous.
func (s *UserService) Status(ctx context.Context, viewer *uuid.UUID) (*dto.UserStatusResponse, error) {
	if viewer == nil {
		return &dto.UserStatusResponse{Authenticated: false}, nil
	}
	user, err := s.Get(ctx, *viewer)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return &dto.UserStatusResponse{Authenticated: false}, nil
		}
		return nil, err
	}
	resp := toUserResponse(user)
	return &dto.UserStatusResponse{Authenticated: true, User: &resp}, nil
}

// GetPreferences returns the stored preference document, or an empty object.
func (s *UserService) GetPreferences(ctx context.Context, userID uuid.UUID) (map[string]interface{}, error) {
	user, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	prefs := map[string]interface{}{}
	if len(user.Preferences) == 0 {
		return prefs, nil
	}
	if err := json.Unmarshal(user.Preferences, &prefs); err != nil {
		return nil, fmt.Errorf("failed to decode preferences: %w", err)
	}
	return prefs, nil
}

// SetPreferences replaces the preference document with an arbitrary JSON object.
func (s *UserService) SetPreferences(ctx context.Context, userID uuid.UUID, prefs map[string]interface{}) error {
	if prefs == nil {
		prefs = map[string]interface{}{}
	}
	return s.savePreferences(ctx, userID, prefs)
}

// UpdateProfile stores the profile form as a normalised preference document.
func (s *UserService) UpdateProfile(ctx context.Context, userID uuid.UUID, req *dto.ProfileRequest) (*dto.Preferences, error) {
	prefs := dto.Preferences{
		Theme:           req.Theme,
		AutoPlayAudio:   req.AutoPlayAudio,
		TypewriterSpeed: req.TypewriterSpeed,
		PreferredEras:   req.PreferredEras,
		Accessibility: dto.AccessibilityPreferences{
			HighContrast: req.HighContrast,
			LargeText:    req.LargeText,
			ReduceMotion: req.ReduceMotion,
		},
	}
	if prefs.Theme == "" {
		prefs.Theme = defaultTheme
	}
	if prefs.TypewriterSpeed == "" {
		prefs.TypewriterSpeed = defaultTypewriterSpeed
	}
	if prefs.PreferredEras == nil {
		prefs.PreferredEras = []string{}
	}

	if err := s.savePreferences(ctx, userID, prefs); err != nil {
		return nil, err
	}
	return &prefs, nil
}

func (s *UserService) savePreferences(ctx context.Context, userID uuid.UUID, prefs interface{}) error {
	raw, err := json.Marshal(prefs)
	if err != nil {
		return fmt.Errorf("failed to encode preferences: %w", err)
	}
	res := s.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).
		Update("preferences", datatypes.JSON(raw))
	if res.Error != nil {
		return fmt.Errorf("failed to save preferences: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}
