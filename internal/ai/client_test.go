package ai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestCompleteReturnsFirstChoice(t *testing.T) {
	var got chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if auth := r.Header.Get("Authorization"); auth != "Bearer secret" {
			t.Errorf("Authorization = %q", auth)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Write([]byte(`{"choices":[{"message":{"content":"  Dear diary  "}}]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "secret", "test-model", time.Second)
	text, err := c.Complete(context.Background(), "write")
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if text != "Dear diary" {
		t.Fatalf("text = %q", text)
	}
	if got.Model != "test-model" || len(got.Messages) != 1 || got.Messages[0].Content != "write" {
		t.Fatalf("unexpected request %+v", got)
	}
}

func TestCompleteErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/fail":
			w.WriteHeader(http.StatusBadGateway)
		default:
			w.Write([]byte(`{"choices":[]}`))
		}
	}))
	defer srv.Close()

	if _, err := NewClient(srv.URL, "", "m", time.Second).Complete(context.Background(), "x"); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
	if _, err := NewClient(srv.URL+"/fail", "k", "m", time.Second).Complete(context.Background(), "x"); err == nil {
		t.Fatal("expected error for non-200 status")
	}
	if _, err := NewClient(srv.URL, "k", "m", time.Second).Complete(context.Background(), "x"); !errors.Is(err, ErrEmptyResponse) {
		t.Fatalf("expected ErrEmptyResponse, got %v", err)
	}
}
