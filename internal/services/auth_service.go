package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/ahmetcoskunkizilkaya/chronicles-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/chronicles-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/chronicles-backend/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

const (
	msgUsernameTooShort = "Username must be at least 3 characters long"
	msgInvalidEmail     = "Invalid email format"
	msgWeakPassword     = "Password must be at least 8 characters with letters and numbers"
)

type AuthService struct {
	db  *gorm.DB
	cfg *config.Config
}

func NewAuthService(db *gorm.DB, cfg *config.Config) *AuthService {
	return &AuthService{db: db, cfg: cfg}
}

func validPassword(password string) bool {
	if len(password) < 8 {
		return false
	}
	var letter, digit bool
	for _, r := range password {
		switch {
		case unicode.IsLetter(r):
			letter = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	return letter && digit
}

func (s *AuthService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error) {
	username := strings.TrimSpace(req.Username)
	email := strings.ToLower(strings.TrimSpace(req.Email))

	var problems []string
	if len(username) < 3 {
		problems = append(problems, msgUsernameTooShort)
	}
	if !emailPattern.MatchString(email) {
		problems = append(problems, msgInvalidEmail)
	}
	if !validPassword(req.Password) {
		problems = append(problems, msgWeakPassword)
	}
	if len(problems) > 0 {
		return nil, &ValidationError{Message: problems[0], Errors: problems}
	}

	db := s.db.WithContext(ctx)

	var taken int64
	if err := db.Model(&models.User{}).Where("username = ?", username).Count(&taken).Error; err != nil {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}
	if taken > 0 {
		return nil, ErrUsernameTaken
	}
	if err := db.Model(&models.User{}).Where("email = ?", email).Count(&taken).Error; err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if taken > 0 {
		return nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := models.User{
		Username: username,
		Email:    email,
		Password: string(hash),
	}
	if err := db.Create(&user).Error; err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	slog.Info("user registered", "user_id", user.ID)
	return s.generateTokenPair(db, &user)
}

// Login accepts either the username or the email address.
func (s *AuthService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	ident := strings.TrimSpace(req.UsernameOrEmail)
	if ident == "" || req.Password == "" {
		return nil, ErrInvalidCredentials
	}

	db := s.db.WithContext(ctx)

	var user models.User
	err := db.Where("username = ? OR email = ?", ident, strings.ToLower(ident)).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return s.generateTokenPair(db, &user)
}

// Refresh rotates a refresh token: the presented token is revoked and a new pair issued.
func (s *AuthService) Refresh(ctx context.Context, req *dto.RefreshRequest) (*dto.AuthResponse, error) {
	if req.RefreshToken == "" {
		return nil, ErrInvalidToken
	}
	tokenHash := hashToken(req.RefreshToken)

	var resp *dto.AuthResponse
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var stored models.RefreshToken
		if err := tx.Where("token_hash = ? AND revoked = ?", tokenHash, false).First(&stored).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrInvalidToken
			}
			return err
		}

		if err := tx.Model(&stored).Update("revoked", true).Error; err != nil {
			return err
		}
		if time.Now().After(stored.ExpiresAt) {
			return ErrInvalidToken
		}

		var user models.User
		if err := tx.First(&user, "id = ?", stored.UserID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrInvalidToken
			}
			return err
		}

		var err error
		resp, err = s.generateTokenPair(tx, &user)
		return err
	})
	if err != nil {
		if errors.Is(err, ErrInvalidToken) {
			// An expired token is revoked even though the refresh fails.
			s.revoke(ctx, tokenHash)
			return nil, err
		}
		return nil, fmt.Errorf("failed to refresh token: %w", err)
	}
	return resp, nil
}

func (s *AuthService) Logout(ctx context.Context, userID uuid.UUID, req *dto.LogoutRequest) error {
	if req.RefreshToken == "" {
		return nil
	}
	return s.db.WithContext(ctx).Model(&models.RefreshToken{}).
		Where("token_hash = ? AND user_id = ?", hashToken(req.RefreshToken), userID).
		Update("revoked", true).Error
}

func (s *AuthService) revoke(ctx context.Context, tokenHash string) {
	err := s.db.WithContext(ctx).Model(&models.RefreshToken{}).
		Where("token_hash = ?", tokenHash).
		Update("revoked", true).Error
	if err != nil {
		slog.Error("failed to revoke refresh token", "error", err)
	}
}

// ChangePassword reports every failed check at once. All refresh tokens of the user are
// revoked on success.
func (s *AuthService) ChangePassword(ctx context.Context, userID uuid.UUID, req *dto.ChangePasswordRequest) error {
	db := s.db.WithContext(ctx)

	var user models.User
	if err := db.First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to load user: %w", err)
	}

	var problems []string
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.CurrentPassword)) != nil {
		problems = append(problems, "Current password is incorrect")
	}
	if !validPassword(req.NewPassword) {
		problems = append(problems, "New password must be at least 8 characters with letters and numbers")
	}
	if req.NewPassword != req.ConfirmPassword {
		problems = append(problems, "New passwords do not match")
	}
	if len(problems) > 0 {
		return &ValidationError{Message: problems[0], Errors: problems}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&user).Update("password", string(hash)).Error; err != nil {
			return fmt.Errorf("failed to update password: %w", err)
		}
		return tx.Model(&models.RefreshToken{}).
			Where("user_id = ? AND revoked = ?", userID, false).
			Update("revoked", true).Error
	})
}

// DeleteAccount removes the user and everything they own in one transaction. Other
// users' ratings, bookmarks and comments on the deleted stories go with them;
// continuations written by others are detached.
func (s *AuthService) DeleteAccount(ctx context.Context, userID uuid.UUID, password string) error {
	db := s.db.WithContext(ctx)

	var user models.User
	if err := db.First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to load user: %w", err)
	}

	if password == "" {
		return newValidationError("Password is required")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return ErrInvalidCredentials
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		owned := tx.Model(&models.Story{}).Select("id").Where("user_id = ?", userID)

		// Stories outside the user's own set whose aggregates change once the user's ratings go.
		var rated []uuid.UUID
		if err := tx.Model(&models.StoryRating{}).
			Where("user_id = ? AND story_id NOT IN (?)", userID, owned).
			Distinct().Pluck("story_id", &rated).Error; err != nil {
			return err
		}

		steps := []struct {
			model interface{}
			query string
			args  []interface{}
		}{
			{&models.UserAnalytics{}, "user_id = ?", []interface{}{userID}},
			{&models.UserAchievement{}, "user_id = ?", []interface{}{userID}},
			{&models.StoryComment{}, "user_id = ? OR story_id IN (?)", []interface{}{userID, owned}},
			{&models.StoryRating{}, "user_id = ? OR story_id IN (?)", []interface{}{userID, owned}},
			{&models.Bookmark{}, "user_id = ? OR story_id IN (?)", []interface{}{userID, owned}},
			{&models.RefreshToken{}, "user_id = ?", []interface{}{userID}},
		}
		for _, step := range steps {
			if err := tx.Where(step.query, step.args...).Delete(step.model).Error; err != nil {
				return err
			}
		}

		if err := tx.Model(&models.Story{}).
			Where("parent_story_id IN (?)", owned).
			Update("parent_story_id", nil).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", userID).Delete(&models.Story{}).Error; err != nil {
			return err
		}

		for _, storyID := range rated {
			if _, err := recomputeRatingAggregate(tx, storyID); err != nil {
				return err
			}
		}

		return tx.Delete(&user).Error
	})
	if err != nil {
		return fmt.Errorf("failed to delete account: %w", err)
	}

	slog.Info("account deleted", "user_id", userID)
	return nil
}

func (s *AuthService) generateTokenPair(db *gorm.DB, user *models.User) (*dto.AuthResponse, error) {
	accessToken, err := s.generateAccessToken(user)
	if err != nil {
		return nil, err
	}

	refreshToken, err := s.generateRefreshToken(db, user)
	if err != nil {
		return nil, err
	}

	return &dto.AuthResponse{
		Success:      true,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         toUserResponse(user),
	}, nil
}

func (s *AuthService) generateAccessToken(user *models.User) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":      user.ID.String(),
		"username": user.Username,
		"email":    user.Email,
		"iat":      now.Unix(),
		"exp":      now.Add(s.cfg.JWTAccessExpiry).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}

func (s *AuthService) generateRefreshToken(db *gorm.DB, user *models.User) (string, error) {
	rawBytes := make([]byte, 32)
	if _, err := rand.Read(rawBytes); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}

	rawToken := base64.URLEncoding.EncodeToString(rawBytes)

	record := models.RefreshToken{
		UserID:    user.ID,
		TokenHash: hashToken(rawToken),
		ExpiresAt: time.Now().Add(s.cfg.JWTRefreshExpiry),
	}
	if err := db.Omit("User").Create(&record).Error; err != nil {
		return "", fmt.Errorf("failed to store refresh token: %w", err)
	}

	return rawToken, nil
}

func hashToken(token string) string {
	h := sha256.Sum256([]byte(token))
	return fmt.Sprintf("%x", h)
}

func toUserResponse(u *models.User) dto.UserResponse {
	return dto.UserResponse{ID: u.ID, Username: u.Username, Email: u.Email}
}
