package logging

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/chronicles-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/chronicles-backend/internal/testutil"
)

func TestDBHandlerPersistsErrors(t *testing.T) {
	db := testutil.DB(t)
	h := NewDBHandler(db)
	t.Cleanup(h.Stop)

	logger := slog.New(h).With("request_id", "req-1")
	logger.Info("ignored")
	logger.Error("rating failed", "error", "boom", "user_id", "u-1", "latency_ms", int64(42), "story_id", "s-9")
	h.Flush()

	var rows []models.SystemLog
	if err := db.Find(&rows).Error; err != nil {
		t.Fatalf("load logs: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(rows))
	}
	got := rows[0]
	if got.Level != "ERROR" || got.Message != "rating failed" || got.RequestID != "req-1" {
		t.Fatalf("unexpected row %+v", got)
	}
	if got.Error != "boom" || got.UserID == nil || *got.UserID != "u-1" || got.LatencyMs != 42 {
		t.Fatalf("unexpected mapped fields %+v", got)
	}
	if string(got.Extra) != `{"story_id":"s-9"}` {
		t.Fatalf("extra = %s", got.Extra)
	}
}

func TestDBHandlerEnabled(t *testing.T) {
	h := NewDBHandler(testutil.DB(t))
	t.Cleanup(h.Stop)
	if h.Enabled(context.Background(), slog.LevelWarn) {
		t.Fatal("WARN should not reach the database")
	}
	if !h.Enabled(context.Background(), slog.LevelError) {
		t.Fatal("ERROR should reach the database")
	}
}

func TestPurge(t *testing.T) {
	db := testutil.DB(t)
	now := time.Now().UTC()
	for _, ts := range []time.Time{now.AddDate(0, 0, -45), now.AddDate(0, 0, -31), now.AddDate(0, 0, -1)} {
		if err := db.Create(&models.SystemLog{Timestamp: ts, Level: "ERROR", Message: "old"}).Error; err != nil {
			t.Fatalf("seed log: %v", err)
		}
	}

	if n := Purge(db, now.AddDate(0, 0, -retentionDays)); n != 2 {
		t.Fatalf("purged = %d, want 2", n)
	}
	var left int64
	db.Model(&models.SystemLog{}).Count(&left)
	if left != 1 {
		t.Fatalf("remaining = %d, want 1", left)
	}
}

func TestLevel(t *testing.T) {
	if Level("development") != slog.LevelDebug || Level("production") != slog.LevelInfo {
		t.Fatal("unexpected level mapping")
	}
}
