package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/ahmetcoskunkizilkaya/chronicles-backend/internal/testutil"
)

func TestSearchRejectsBlankQuery(t *testing.T) {
	svc := NewSearchService(testutil.DB(t))
	for _, q := range []string{"", "   ", "\t"} {
		_, err := svc.Search(context.Background(), SearchQuery{Query: q, Type: SearchAll})
		if !errors.Is(err, ErrEmptyQuery) || !IsValidation(err) {
			t.Fatalf("Search(%q): expected ErrEmptyQuery, got %v", q, err)
		}
	}
}

func TestSearchRejectsUnknownType(t *testing.T) {
	svc := NewSearchService(testutil.DB(t))
	_, err := svc.Search(context.Background(), SearchQuery{Query: "jazz", Type: "people"})
	if !errors.Is(err, ErrInvalidSearchKey) {
		t.Fatalf("expected ErrInvalidSearchKey, got %v", err)
	}
}

func TestSearchAllCapsEachKind(t *testing.T) {
	db := testutil.DB(t)
	svc := NewSearchService(db)
	owner := testutil.SeedUser(t, db, "owner")

	for i := 0; i < 7; i++ {
		testutil.SeedStory(t, db, nil, testutil.StoryOpts{Title: fmt.Sprintf("Jazz night %d", i), CreatedAt: day(i)})
		testutil.SeedEvent(t, db, fmt.Sprintf("Jazz festival %d", i), "The Roaring Twenties", "", i%5+1)
	}
	testutil.SeedStory(t, db, &owner.ID, testutil.StoryOpts{Title: "Secret jazz", Private: true})

	resp, err := svc.Search(context.Background(), SearchQuery{Query: "Jazz", Type: SearchAll})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(resp.Stories) != searchPreviewLimit || len(resp.Events) != searchPreviewLimit {
		t.Fatalf("stories=%d events=%d, want %d each", len(resp.Stories), len(resp.Events), searchPreviewLimit)
	}
	if resp.Pagination != nil {
		t.Fatal("type=all should not paginate")
	}
	for _, s := range resp.Stories {
		if s.Title == "Secret jazz" {
			t.Fatal("private story leaked into search")
		}
	}
	for i := 1; i < len(resp.Events); i++ {
		if resp.Events[i-1].Importance < resp.Events[i].Importance {
			t.Fatal("events should be ordered by importance desc")
		}
	}
}

func TestSearchSingleKindPaginates(t *testing.T) {
	db := testutil.DB(t)
	svc := NewSearchService(db)
	for i := 0; i < 3; i++ {
		testutil.SeedStory(t, db, nil, testutil.StoryOpts{Era: "The Space Race", CreatedAt: day(i)})
	}
	testutil.SeedEvent(t, db, "Apollo 11", "The Space Race", "1969-07-20", 5)

	resp, err := svc.Search(context.Background(), SearchQuery{Query: "space", Type: SearchStories, Page: PageRequest{Page: 2, PerPage: 2}})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(resp.Stories) != 1 || len(resp.Events) != 0 {
		t.Fatalf("stories=%d events=%d", len(resp.Stories), len(resp.Events))
	}
	if resp.Pagination == nil || resp.Pagination.Total != 3 || resp.Pagination.Pages != 2 {
		t.Fatalf("unexpected pagination %+v", resp.Pagination)
	}

	events, err := svc.Search(context.Background(), SearchQuery{Query: "apollo", Type: SearchEvents})
	if err != nil {
		t.Fatalf("Search events: %v", err)
	}
	if len(events.Events) != 1 || len(events.Stories) != 0 {
		t.Fatalf("unexpected event search %+v", events)
	}
	if events.Events[0].Date == nil || *events.Events[0].Date != "1969-07-20" {
		t.Fatalf("date = %v", events.Events[0].Date)
	}
}
