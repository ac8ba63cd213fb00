package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/chronicles-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/chronicles-backend/internal/testutil"
	"github.com/google/uuid"
)

func day(n int) time.Time {
	return time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC).AddDate(0, 0, n)
}

func TestListStoriesVisibilityAndFilters(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	svc := NewStoryService(db)

	alice := testutil.SeedUser(t, db, "alice")
	bob := testutil.SeedUser(t, db, "bob")

	testutil.SeedStory(t, db, &alice.ID, testutil.StoryOpts{Era: "The Renaissance", CreatedAt: day(1)})
	testutil.SeedStory(t, db, &alice.ID, testutil.StoryOpts{Era: "The Space Race", CreatedAt: day(2), Private: true})
	testutil.SeedStory(t, db, &bob.ID, testutil.StoryOpts{Era: "The Renaissance", CreatedAt: day(3)})
	testutil.SeedStory(t, db, &bob.ID, testutil.StoryOpts{Era: "The Space Race", CreatedAt: day(4), Private: true})
	testutil.SeedStory(t, db, nil, testutil.StoryOpts{Era: "The Space Race", CreatedAt: day(5)})

	anon, err := svc.ListStories(ctx, nil, StoryFilter{})
	if err != nil {
		t.Fatalf("ListStories: %v", err)
	}
	if anon.Pagination.Total != 3 {
		t.Fatalf("anonymous total = %d, want 3", anon.Pagination.Total)
	}
	for _, s := range anon.Stories {
		if !s.IsPublic {
			t.Fatalf("anonymous listing contains private story %s", s.ID)
		}
	}
	if !anon.Stories[0].CreatedAt.After(anon.Stories[1].CreatedAt) {
		t.Fatal("default sort should be newest first")
	}

	own, err := svc.ListStories(ctx, &alice.ID, StoryFilter{})
	if err != nil {
		t.Fatalf("ListStories: %v", err)
	}
	if own.Pagination.Total != 4 {
		t.Fatalf("alice total = %d, want 4 (3 public + her private)", own.Pagination.Total)
	}

	filtered, err := svc.ListStories(ctx, &alice.ID, StoryFilter{Era: "The Space Race", UserID: &alice.ID})
	if err != nil {
		t.Fatalf("ListStories: %v", err)
	}
	if filtered.Pagination.Total != 1 || filtered.Stories[0].Era != "The Space Race" {
		t.Fatalf("conjunctive filter returned %+v", filtered.Stories)
	}
}

func TestListStoriesPaginationClamps(t *testing.T) {
	db := testutil.DB(t)
	svc := NewStoryService(db)
	for i := 0; i < 12; i++ {
		testutil.SeedStory(t, db, nil, testutil.StoryOpts{CreatedAt: day(i)})
	}

	cases := []struct {
		name        string
		page        PageRequest
		wantPage    int
		wantPerPage int
		wantLen     int
	}{
		{"defaults", PageRequest{}, 1, DefaultPerPage, 10},
		{"second page", PageRequest{Page: 2}, 2, DefaultPerPage, 2},
		{"negative page", PageRequest{Page: -3, PerPage: 5}, 1, 5, 5},
		{"per page clamped", PageRequest{PerPage: 500}, 1, MaxPerPage, 12},
		{"past the end", PageRequest{Page: 9}, 9, DefaultPerPage, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp, err := svc.ListStories(context.Background(), nil, StoryFilter{Page: tc.page})
			if err != nil {
				t.Fatalf("ListStories: %v", err)
			}
			p := resp.Pagination
			if p.Page != tc.wantPage || p.PerPage != tc.wantPerPage || len(resp.Stories) != tc.wantLen {
				t.Fatalf("got page=%d per_page=%d len=%d", p.Page, p.PerPage, len(resp.Stories))
			}
			if p.Total != 12 || p.Pages != (12+p.PerPage-1)/p.PerPage {
				t.Fatalf("total=%d pages=%d", p.Total, p.Pages)
			}
		})
	}
}

func TestListStoriesSortOrders(t *testing.T) {
	db := testutil.DB(t)
	svc := NewStoryService(db)
	reader := testutil.SeedUser(t, db, "reader")
	other := testutil.SeedUser(t, db, "other")

	low := testutil.SeedStory(t, db, nil, testutil.StoryOpts{Title: "low", RatingSum: 4, RatingCount: 2, CreatedAt: day(3)})
	high := testutil.SeedStory(t, db, nil, testutil.StoryOpts{Title: "high", RatingSum: 9, RatingCount: 2, CreatedAt: day(1)})
	unrated := testutil.SeedStory(t, db, nil, testutil.StoryOpts{Title: "unrated", CreatedAt: day(2)})

	testutil.SeedBookmark(t, db, reader.ID, unrated.ID)
	testutil.SeedBookmark(t, db, other.ID, unrated.ID)
	testutil.SeedBookmark(t, db, reader.ID, low.ID)

	order := func(sortBy string) []uuid.UUID {
		t.Helper()
		resp, err := svc.ListStories(context.Background(), nil, StoryFilter{SortBy: sortBy})
		if err != nil {
			t.Fatalf("ListStories(%s): %v", sortBy, err)
		}
		ids := make([]uuid.UUID, len(resp.Stories))
		for i, s := range resp.Stories {
			ids[i] = s.ID
		}
		return ids
	}
	assertOrder := func(sortBy string, want ...uuid.UUID) {
		t.Helper()
		got := order(sortBy)
		for i := range want {
			if got[i] != want[i] {
				t.Fatalf("sort %q position %d: got %s, want %s", sortBy, i, got[i], want[i])
			}
		}
	}

	assertOrder(SortRating, high.ID, low.ID, unrated.ID)
	assertOrder(SortPopularity, unrated.ID, low.ID, high.ID)
	assertOrder(SortCreatedAt, low.ID, unrated.ID, high.ID)
	assertOrder("bogus", low.ID, unrated.ID, high.ID)

	resp, err := svc.ListStories(context.Background(), nil, StoryFilter{SortBy: SortPopularity})
	if err != nil {
		t.Fatalf("ListStories: %v", err)
	}
	if resp.Stories[0].BookmarkCount != 2 {
		t.Fatalf("bookmark_count = %d, want 2", resp.Stories[0].BookmarkCount)
	}
	if resp.Stories[1].AvgRating != 2 {
		t.Fatalf("avg_rating = %v, want 2", resp.Stories[1].AvgRating)
	}
}

func TestGetStoryPrivateIsIndistinguishableFromMissing(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	svc := NewStoryService(db)

	owner := testutil.SeedUser(t, db, "owner")
	stranger := testutil.SeedUser(t, db, "stranger")
	private := testutil.SeedStory(t, db, &owner.ID, testutil.StoryOpts{Private: true})

	_, errPrivate := svc.GetStory(ctx, private.ID, &stranger.ID)
	_, errAnon := svc.GetStory(ctx, private.ID, nil)
	_, errMissing := svc.GetStory(ctx, uuid.New(), &stranger.ID)
	for _, err := range []error{errPrivate, errAnon, errMissing} {
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	}
	if errPrivate.Error() != errMissing.Error() {
		t.Fatalf("private and missing errors differ: %q vs %q", errPrivate, errMissing)
	}

	detail, err := svc.GetStory(ctx, private.ID, &owner.ID)
	if err != nil {
		t.Fatalf("owner GetStory: %v", err)
	}
	if detail.ViewCount != 0 {
		t.Fatalf("owner read changed view_count to %d", detail.ViewCount)
	}
}

func TestGetStoryViewerState(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	svc := NewStoryService(db)

	author := testutil.SeedUser(t, db, "author")
	reader := testutil.SeedUser(t, db, "reader")
	story := testutil.SeedStory(t, db, &author.ID, testutil.StoryOpts{RatingSum: 4, RatingCount: 1})
	testutil.SeedRating(t, db, reader.ID, story.ID, 4)
	testutil.SeedBookmark(t, db, reader.ID, story.ID)

	detail, err := svc.GetStory(ctx, story.ID, &reader.ID)
	if err != nil {
		t.Fatalf("GetStory: %v", err)
	}
	if detail.UserRating == nil || *detail.UserRating != 4 {
		t.Fatalf("user_rating = %v, want 4", detail.UserRating)
	}
	if !detail.IsBookmarked || detail.BookmarkCount != 1 {
		t.Fatalf("is_bookmarked=%v bookmark_count=%d", detail.IsBookmarked, detail.BookmarkCount)
	}
	if detail.ViewCount != 1 {
		t.Fatalf("view_count = %d, want 1", detail.ViewCount)
	}

	anon, err := svc.GetStory(ctx, story.ID, nil)
	if err != nil {
		t.Fatalf("anonymous GetStory: %v", err)
	}
	if anon.UserRating != nil || anon.IsBookmarked {
		t.Fatal("anonymous read should carry no viewer state")
	}
	if anon.ViewCount != 2 {
		t.Fatalf("view_count = %d, want 2", anon.ViewCount)
	}
}

func TestCreateStoryContinuation(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	svc := NewStoryService(db)
	author := testutil.SeedUser(t, db, "author")
	other := testutil.SeedUser(t, db, "other")

	first, err := svc.CreateStory(ctx, CreateStoryInput{UserID: &author.ID, Era: "The Great Depression", Content: "Day one."})
	if err != nil {
		t.Fatalf("CreateStory: %v", err)
	}
	if first.SequenceNumber != 1 || first.Title != "Diary Entry from The Great Depression" {
		t.Fatalf("unexpected first story %+v", first)
	}

	second, err := svc.CreateStory(ctx, CreateStoryInput{UserID: &author.ID, Era: "The Great Depression", Content: "Day two.", ParentStoryID: &first.ID})
	if err != nil {
		t.Fatalf("CreateStory continuation: %v", err)
	}
	if second.SequenceNumber != 2 || second.ParentStoryID == nil || *second.ParentStoryID != first.ID {
		t.Fatalf("unexpected continuation %+v", second)
	}

	// first is private (IsPublic false), so another user cannot continue it.
	if _, err := svc.CreateStory(ctx, CreateStoryInput{UserID: &other.ID, Era: "x", Content: "y", ParentStoryID: &first.ID}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for hidden parent, got %v", err)
	}

	if _, err := svc.CreateStory(ctx, CreateStoryInput{UserID: &author.ID, Content: "no era"}); !IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}

	var count int64
	db.Model(&models.Story{}).Count(&count)
	if count != 2 {
		t.Fatalf("stories = %d, want 2", count)
	}
}
