package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/chronicles-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/chronicles-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/chronicles-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/chronicles-backend/internal/testutil"
	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"
)

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret:        "test-secret",
		JWTAccessExpiry:  15 * time.Minute,
		JWTRefreshExpiry: time.Hour,
	}
}

func newAuthService(t *testing.T) (*AuthService, *gorm.DB) {
	t.Helper()
	db := testutil.DB(t)
	return NewAuthService(db, testConfig()), db
}

func TestRegisterValidatesEveryField(t *testing.T) {
	svc, _ := newAuthService(t)
	_, err := svc.Register(context.Background(), &dto.RegisterRequest{Username: "ab", Email: "nope", Password: "short"})

	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if len(ve.Errors) != 3 {
		t.Fatalf("errors = %v, want 3 entries", ve.Errors)
	}

	if _, err := svc.Register(context.Background(), &dto.RegisterRequest{Username: "abc", Email: "a@b.io", Password: "lettersonly"}); !IsValidation(err) {
		t.Fatalf("password without digits: expected validation error, got %v", err)
	}
}

func TestRegisterAndLogin(t *testing.T) {
	svc, _ := newAuthService(t)
	ctx := context.Background()

	resp, err := svc.Register(ctx, &dto.RegisterRequest{Username: "ruby", Email: "  Ruby@Example.COM ", Password: "flapper1920"})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if resp.User.Email != "ruby@example.com" || resp.AccessToken == "" || resp.RefreshToken == "" {
		t.Fatalf("unexpected register response %+v", resp)
	}

	token, err := jwt.Parse(resp.AccessToken, func(*jwt.Token) (interface{}, error) { return []byte("test-secret"), nil })
	if err != nil || !token.Valid {
		t.Fatalf("access token invalid: %v", err)
	}
	claims := token.Claims.(jwt.MapClaims)
	if claims["sub"] != resp.User.ID.String() || claims["username"] != "ruby" {
		t.Fatalf("unexpected claims %v", claims)
	}

	if _, err := svc.Register(ctx, &dto.RegisterRequest{Username: "ruby", Email: "other@example.com", Password: "flapper1920"}); !errors.Is(err, ErrUsernameTaken) {
		t.Fatalf("expected ErrUsernameTaken, got %v", err)
	}
	if _, err := svc.Register(ctx, &dto.RegisterRequest{Username: "ruby2", Email: "RUBY@example.com", Password: "flapper1920"}); !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}

	for _, ident := range []string{"ruby", "RUBY@EXAMPLE.COM"} {
		if _, err := svc.Login(ctx, &dto.LoginRequest{UsernameOrEmail: ident, Password: "flapper1920"}); err != nil {
			t.Fatalf("Login(%q): %v", ident, err)
		}
	}
	if _, err := svc.Login(ctx, &dto.LoginRequest{UsernameOrEmail: "ruby", Password: "wrong1234"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := svc.Login(ctx, &dto.LoginRequest{UsernameOrEmail: "ghost", Password: "flapper1920"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("unknown user: expected ErrInvalidCredentials, got %v", err)
	}
}

func TestRefreshRotatesTokens(t *testing.T) {
	svc, db := newAuthService(t)
	ctx := context.Background()

	reg, err := svc.Register(ctx, &dto.RegisterRequest{Username: "thomas", Email: "thomas@example.com", Password: "detroit1930"})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	next, err := svc.Refresh(ctx, &dto.RefreshRequest{RefreshToken: reg.RefreshToken})
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if next.RefreshToken == reg.RefreshToken {
		t.Fatal("refresh token was not rotated")
	}
	if _, err := svc.Refresh(ctx, &dto.RefreshRequest{RefreshToken: reg.RefreshToken}); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("reusing a rotated token: expected ErrInvalidToken, got %v", err)
	}

	// Expired tokens are refused and revoked.
	db.Model(&models.RefreshToken{}).Where("token_hash = ?", hashToken(next.RefreshToken)).
		Update("expires_at", time.Now().Add(-time.Minute))
	if _, err := svc.Refresh(ctx, &dto.RefreshRequest{RefreshToken: next.RefreshToken}); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expired token: expected ErrInvalidToken, got %v", err)
	}
	var stored models.RefreshToken
	db.Where("token_hash = ?", hashToken(next.RefreshToken)).First(&stored)
	if !stored.Revoked {
		t.Fatal("expired token should be revoked")
	}
}

func TestChangePassword(t *testing.T) {
	svc, _ := newAuthService(t)
	ctx := context.Background()
	reg, err := svc.Register(ctx, &dto.RegisterRequest{Username: "sarah", Email: "sarah@nasa.gov", Password: "apollo1969"})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	userID := reg.User.ID

	err = svc.ChangePassword(ctx, userID, &dto.ChangePasswordRequest{CurrentPassword: "wrong", NewPassword: "short", ConfirmPassword: "other"})
	var ve *ValidationError
	if !errors.As(err, &ve) || len(ve.Errors) != 3 {
		t.Fatalf("expected three validation errors, got %v", err)
	}

	if err := svc.ChangePassword(ctx, userID, &dto.ChangePasswordRequest{CurrentPassword: "apollo1969", NewPassword: "gemini1965", ConfirmPassword: "gemini1965"}); err != nil {
		t.Fatalf("ChangePassword: %v", err)
	}
	if _, err := svc.Login(ctx, &dto.LoginRequest{UsernameOrEmail: "sarah", Password: "gemini1965"}); err != nil {
		t.Fatalf("login with new password: %v", err)
	}
	if _, err := svc.Refresh(ctx, &dto.RefreshRequest{RefreshToken: reg.RefreshToken}); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("old refresh token should be revoked, got %v", err)
	}
}

func TestDeleteAccountCascades(t *testing.T) {
	svc, db := newAuthService(t)
	ctx := context.Background()
	interactions := NewInteractionService(db, nil)

	leaving := testutil.SeedUser(t, db, "leaving")
	staying := testutil.SeedUser(t, db, "staying")

	ownStory := testutil.SeedStory(t, db, &leaving.ID, testutil.StoryOpts{})
	otherStory := testutil.SeedStory(t, db, &staying.ID, testutil.StoryOpts{})
	continuation := testutil.SeedStory(t, db, &staying.ID, testutil.StoryOpts{})
	db.Model(continuation).Update("parent_story_id", ownStory.ID)

	if _, err := interactions.Rate(ctx, leaving.ID, otherStory.ID, 1); err != nil {
		t.Fatalf("Rate: %v", err)
	}
	if _, err := interactions.Rate(ctx, staying.ID, otherStory.ID, 5); err != nil {
		t.Fatalf("Rate: %v", err)
	}
	if _, err := interactions.Rate(ctx, staying.ID, ownStory.ID, 4); err != nil {
		t.Fatalf("Rate: %v", err)
	}
	if _, err := interactions.ToggleBookmark(ctx, staying.ID, ownStory.ID); err != nil {
		t.Fatalf("ToggleBookmark: %v", err)
	}
	if _, err := interactions.AddComment(ctx, leaving.ID, otherStory.ID, "farewell"); err != nil {
		t.Fatalf("AddComment: %v", err)
	}

	if err := svc.DeleteAccount(ctx, leaving.ID, "wrong-password"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if err := svc.DeleteAccount(ctx, leaving.ID, testutil.Password); err != nil {
		t.Fatalf("DeleteAccount: %v", err)
	}

	count := func(model interface{}, query string, args ...interface{}) int64 {
		var n int64
		db.Model(model).Where(query, args...).Count(&n)
		return n
	}
	if n := count(&models.User{}, "id = ?", leaving.ID); n != 0 {
		t.Fatal("user row survived")
	}
	if n := count(&models.Story{}, "id = ?", ownStory.ID); n != 0 {
		t.Fatal("authored story survived")
	}
	if n := count(&models.StoryRating{}, "story_id = ?", ownStory.ID); n != 0 {
		t.Fatal("ratings on deleted story survived")
	}
	if n := count(&models.Bookmark{}, "story_id = ?", ownStory.ID); n != 0 {
		t.Fatal("bookmarks on deleted story survived")
	}
	if n := count(&models.StoryComment{}, "user_id = ?", leaving.ID); n != 0 {
		t.Fatal("comments by deleted user survived")
	}

	s := loadStory(t, db, otherStory.ID)
	if s.RatingCount != 1 || s.RatingSum != 5 {
		t.Fatalf("aggregate not recomputed: sum=%d count=%d", s.RatingSum, s.RatingCount)
	}
	c := loadStory(t, db, continuation.ID)
	if c.ParentStoryID != nil {
		t.Fatal("continuation should be detached from deleted parent")
	}
}

func TestDeletedAccountCannotWrite(t *testing.T) {
	svc, db := newAuthService(t)
	ctx := context.Background()
	interactions := NewInteractionService(db, nil)

	gone := testutil.SeedUser(t, db, "gone")
	author := testutil.SeedUser(t, db, "author")
	story := testutil.SeedStory(t, db, &author.ID, testutil.StoryOpts{})

	if err := svc.DeleteAccount(ctx, gone.ID, testutil.Password); err != nil {
		t.Fatalf("DeleteAccount: %v", err)
	}

	if _, err := interactions.Rate(ctx, gone.ID, story.ID, 5); !errors.Is(err, ErrAuthRequired) {
		t.Fatalf("Rate: expected ErrAuthRequired, got %v", err)
	}
	if _, err := interactions.ToggleBookmark(ctx, gone.ID, story.ID); !errors.Is(err, ErrAuthRequired) {
		t.Fatalf("ToggleBookmark: expected ErrAuthRequired, got %v", err)
	}
	if _, err := interactions.AddComment(ctx, gone.ID, story.ID, "still here?"); !errors.Is(err, ErrAuthRequired) {
		t.Fatalf("AddComment: expected ErrAuthRequired, got %v", err)
	}
	if _, err := NewStoryService(db).CreateStory(ctx, CreateStoryInput{UserID: &gone.ID, Era: "The Space Race", Content: "orbit"}); !errors.Is(err, ErrAuthRequired) {
		t.Fatalf("CreateStory: expected ErrAuthRequired, got %v", err)
	}
	analytics := NewAnalyticsService(db, NewAchievementService(db))
	if err := analytics.Track(ctx, TrackInput{UserID: &gone.ID, EventType: "story_view"}); !errors.Is(err, ErrAuthRequired) {
		t.Fatalf("Track: expected ErrAuthRequired, got %v", err)
	}

	for _, model := range []interface{}{&models.StoryRating{}, &models.Bookmark{}, &models.StoryComment{}, &models.UserAnalytics{}} {
		var n int64
		db.Model(model).Where("user_id = ?", gone.ID).Count(&n)
		if n != 0 {
			t.Fatalf("%T: %d rows written for a deleted user", model, n)
		}
	}
	if s := loadStory(t, db, story.ID); s.RatingCount != 0 || s.RatingSum != 0 {
		t.Fatalf("aggregate changed: sum=%d count=%d", s.RatingSum, s.RatingCount)
	}
}
