package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/ahmetcoskunkizilkaya/chronicles-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/chronicles-backend/internal/testutil"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

func loadStory(t *testing.T, db *gorm.DB, id uuid.UUID) models.Story {
	t.Helper()
	var s models.Story
	if err := db.First(&s, "id = ?", id).Error; err != nil {
		t.Fatalf("load story: %v", err)
	}
	return s
}

func TestRateKeepsAggregateInSyncWithRows(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	svc := NewInteractionService(db, nil)

	story := testutil.SeedStory(t, db, nil, testutil.StoryOpts{})
	unrated := loadStory(t, db, story.ID)
	if got := unrated.AverageRating(); got != 0 {
		t.Fatalf("unrated average = %v, want 0", got)
	}

	values := []int{5, 2, 4}
	for i, v := range values {
		u := testutil.SeedUser(t, db, "rater"+string(rune('a'+i)))
		if _, err := svc.Rate(ctx, u.ID, story.ID, v); err != nil {
			t.Fatalf("Rate: %v", err)
		}
	}

	s := loadStory(t, db, story.ID)
	var rowSum, rowCount int64
	db.Model(&models.StoryRating{}).Where("story_id = ?", story.ID).Count(&rowCount)
	db.Model(&models.StoryRating{}).Where("story_id = ?", story.ID).Select("COALESCE(SUM(rating), 0)").Scan(&rowSum)

	if int64(s.RatingSum) != rowSum || int64(s.RatingCount) != rowCount {
		t.Fatalf("aggregate (%d/%d) differs from rows (%d/%d)", s.RatingSum, s.RatingCount, rowSum, rowCount)
	}
	if s.AverageRating() != 11.0/3.0 {
		t.Fatalf("average = %v, want %v", s.AverageRating(), 11.0/3.0)
	}
}

func TestRateUpsertsPerUser(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	svc := NewInteractionService(db, nil)

	user := testutil.SeedUser(t, db, "rater")
	story := testutil.SeedStory(t, db, nil, testutil.StoryOpts{})

	if _, err := svc.Rate(ctx, user.ID, story.ID, 2); err != nil {
		t.Fatalf("first Rate: %v", err)
	}
	resp, err := svc.Rate(ctx, user.ID, story.ID, 5)
	if err != nil {
		t.Fatalf("second Rate: %v", err)
	}
	if resp.RatingCount != 1 || resp.AvgRating != 5 || resp.UserRating != 5 {
		t.Fatalf("unexpected response %+v", resp)
	}

	var rows []models.StoryRating
	db.Where("user_id = ? AND story_id = ?", user.ID, story.ID).Find(&rows)
	if len(rows) != 1 || rows[0].Rating != 5 {
		t.Fatalf("rows = %+v, want one row with rating 5", rows)
	}
}

func TestRateRejectsOutOfRangeAndHiddenStories(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	svc := NewInteractionService(db, nil)

	owner := testutil.SeedUser(t, db, "owner")
	user := testutil.SeedUser(t, db, "user")
	public := testutil.SeedStory(t, db, nil, testutil.StoryOpts{})
	private := testutil.SeedStory(t, db, &owner.ID, testutil.StoryOpts{Private: true})

	for _, v := range []int{0, 6, -1} {
		if _, err := svc.Rate(ctx, user.ID, public.ID, v); !errors.Is(err, ErrInvalidRating) {
			t.Fatalf("Rate(%d): expected ErrInvalidRating, got %v", v, err)
		}
	}
	if _, err := svc.Rate(ctx, user.ID, private.ID, 3); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for private story, got %v", err)
	}
	if _, err := svc.Rate(ctx, owner.ID, private.ID, 3); err != nil {
		t.Fatalf("owner should rate own private story: %v", err)
	}

	s := loadStory(t, db, public.ID)
	if s.RatingCount != 0 {
		t.Fatalf("rejected ratings changed aggregate: %d", s.RatingCount)
	}
}

func TestToggleBookmarkTwiceRestoresState(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	svc := NewInteractionService(db, nil)

	user := testutil.SeedUser(t, db, "reader")
	story := testutil.SeedStory(t, db, nil, testutil.StoryOpts{})

	first, err := svc.ToggleBookmark(ctx, user.ID, story.ID)
	if err != nil || first != BookmarkAdded {
		t.Fatalf("first toggle = %q, %v", first, err)
	}
	second, err := svc.ToggleBookmark(ctx, user.ID, story.ID)
	if err != nil || second != BookmarkRemoved {
		t.Fatalf("second toggle = %q, %v", second, err)
	}

	var count int64
	db.Model(&models.Bookmark{}).Where("user_id = ? AND story_id = ?", user.ID, story.ID).Count(&count)
	if count != 0 {
		t.Fatalf("bookmark rows = %d, want 0", count)
	}

	if _, err := svc.ToggleBookmark(ctx, user.ID, uuid.New()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestAddCommentValidation(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	svc := NewInteractionService(db, NewContentFilter())

	user := testutil.SeedUser(t, db, "writer")
	story := testutil.SeedStory(t, db, nil, testutil.StoryOpts{})

	for _, content := range []string{"", "   \n\t "} {
		if _, err := svc.AddComment(ctx, user.ID, story.ID, content); !errors.Is(err, ErrEmptyComment) {
			t.Fatalf("AddComment(%q): expected ErrEmptyComment, got %v", content, err)
		}
	}
	if _, err := svc.AddComment(ctx, user.ID, story.ID, "see www.example.com/spam now"); !IsValidation(err) {
		t.Fatalf("expected validation error for link, got %v", err)
	}

	comment, err := svc.AddComment(ctx, user.ID, story.ID, "  Beautifully written.  ")
	if err != nil {
		t.Fatalf("AddComment: %v", err)
	}
	if comment.Content != "Beautifully written." || comment.Username != "writer" {
		t.Fatalf("unexpected comment %+v", comment)
	}
}

func TestListCommentsNewestFirstWithPagination(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	svc := NewInteractionService(db, nil)

	user := testutil.SeedUser(t, db, "writer")
	story := testutil.SeedStory(t, db, nil, testutil.StoryOpts{})
	for i := 0; i < 3; i++ {
		c := models.StoryComment{UserID: user.ID, StoryID: story.ID, Content: strings.Repeat("x", i+1), CreatedAt: day(i)}
		if err := db.Omit("User").Create(&c).Error; err != nil {
			t.Fatalf("seed comment: %v", err)
		}
	}

	resp, err := svc.ListComments(ctx, story.ID, nil, PageRequest{Page: 1, PerPage: 2})
	if err != nil {
		t.Fatalf("ListComments: %v", err)
	}
	if len(resp.Comments) != 2 || resp.Comments[0].Content != "xxx" || resp.Comments[0].Username != "writer" {
		t.Fatalf("unexpected first page %+v", resp.Comments)
	}
	p := resp.Pagination
	if p.Total != 3 || p.Pages != 2 || !p.HasNext || p.HasPrev {
		t.Fatalf("unexpected pagination %+v", p)
	}

	defaults, err := svc.ListComments(ctx, story.ID, nil, PageRequest{})
	if err != nil {
		t.Fatalf("ListComments: %v", err)
	}
	if defaults.Pagination.PerPage != DefaultCommentPerPage {
		t.Fatalf("per_page = %d, want %d", defaults.Pagination.PerPage, DefaultCommentPerPage)
	}
}
