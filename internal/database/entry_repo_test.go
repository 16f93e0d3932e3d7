package database

import (
	"context"
	"errors"
	"testing"

	"github.com/vidshelf/vidshelf/internal/models"
)

func setupTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open()
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestEntryRepo_InsertAndGet(t *testing.T) {
	db := setupTestDB(t)
	repo := NewEntryRepo(db)
	ctx := context.Background()

	entry := models.NewVideoEntry("trip.mp4", "abc.mp4", "video/mp4", 1024)
	if err := repo.Insert(ctx, entry); err != nil {
		t.Fatalf("Failed to insert entry: %v", err)
	}

	retrieved, err := repo.Get(ctx, entry.ID)
	if err != nil {
		t.Fatalf("Failed to get entry: %v", err)
	}
	if retrieved.Name != "trip" {
		t.Errorf("Expected name %q, got %q", "trip", retrieved.Name)
	}
	if retrieved.MediaHandle != "abc.mp4" {
		t.Errorf("Expected media handle abc.mp4, got %s", retrieved.MediaHandle)
	}
	if retrieved.DurationSeconds != 0 {
		t.Errorf("Expected pending duration 0, got %f", retrieved.DurationSeconds)
	}
}

func TestEntryRepo_Get_NotFound(t *testing.T) {
	db := setupTestDB(t)
	repo := NewEntryRepo(db)

	_, err := repo.Get(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestEntryRepo_ListPreservesInsertionOrder(t *testing.T) {
	db := setupTestDB(t)
	repo := NewEntryRepo(db)
	ctx := context.Background()

	names := []string{"c.mp4", "a.mp4", "b.mp4"}
	for _, n := range names {
		if err := repo.Insert(ctx, models.NewVideoEntry(n, n, "video/mp4", 1)); err != nil {
			t.Fatalf("Failed to insert %s: %v", n, err)
		}
	}

	entries, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("Failed to list: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("Expected 3 entries, got %d", len(entries))
	}
	for i, want := range []string{"c", "a", "b"} {
		if entries[i].Name != want {
			t.Errorf("Position %d: expected %q, got %q", i, want, entries[i].Name)
		}
	}
}

func TestEntryRepo_SetDurationOnDeletedEntry(t *testing.T) {
	db := setupTestDB(t)
	repo := NewEntryRepo(db)
	ctx := context.Background()

	entry := models.NewVideoEntry("v.mp4", "h.mp4", "video/mp4", 1)
	if err := repo.Insert(ctx, entry); err != nil {
		t.Fatalf("Failed to insert: %v", err)
	}
	if _, err := repo.Delete(ctx, entry.ID); err != nil {
		t.Fatalf("Failed to delete: %v", err)
	}

	err := repo.SetDuration(ctx, entry.ID, 42.5)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound for deleted entry, got %v", err)
	}
}

func TestEntryRepo_SwapThumbnail(t *testing.T) {
	db := setupTestDB(t)
	repo := NewEntryRepo(db)
	ctx := context.Background()

	entry := models.NewVideoEntry("v.mp4", "h.mp4", "video/mp4", 1)
	if err := repo.Insert(ctx, entry); err != nil {
		t.Fatalf("Failed to insert: %v", err)
	}

	old, err := repo.SwapThumbnail(ctx, entry.ID, "thumb1.jpg")
	if err != nil {
		t.Fatalf("Failed first swap: %v", err)
	}
	if old != "" {
		t.Errorf("Expected empty previous handle, got %q", old)
	}

	old, err = repo.SwapThumbnail(ctx, entry.ID, "thumb2.jpg")
	if err != nil {
		t.Fatalf("Failed second swap: %v", err)
	}
	if old != "thumb1.jpg" {
		t.Errorf("Expected previous handle thumb1.jpg, got %q", old)
	}

	retrieved, err := repo.Get(ctx, entry.ID)
	if err != nil {
		t.Fatalf("Failed to get: %v", err)
	}
	if retrieved.ThumbnailHandle != "thumb2.jpg" {
		t.Errorf("Expected thumb2.jpg, got %s", retrieved.ThumbnailHandle)
	}

	if _, err := repo.SwapThumbnail(ctx, "missing", "x.jpg"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestEntryRepo_SubtitleTracksOrderedAndDuplicatable(t *testing.T) {
	db := setupTestDB(t)
	repo := NewEntryRepo(db)
	ctx := context.Background()

	entry := models.NewVideoEntry("v.mp4", "h.mp4", "video/mp4", 1)
	if err := repo.Insert(ctx, entry); err != nil {
		t.Fatalf("Failed to insert: %v", err)
	}

	for _, label := range []string{"en.srt", "fr.srt", "en.srt"} {
		if err := repo.AddSubtitle(ctx, entry.ID, label, label+".handle"); err != nil {
			t.Fatalf("Failed to add subtitle %s: %v", label, err)
		}
	}

	retrieved, err := repo.Get(ctx, entry.ID)
	if err != nil {
		t.Fatalf("Failed to get: %v", err)
	}
	if len(retrieved.SubtitleTracks) != 3 {
		t.Fatalf("Expected 3 tracks (duplicates permitted), got %d", len(retrieved.SubtitleTracks))
	}
	if retrieved.SubtitleTracks[0].Label != "en.srt" || retrieved.SubtitleTracks[1].Label != "fr.srt" {
		t.Errorf("Tracks out of order: %+v", retrieved.SubtitleTracks)
	}

	if err := repo.AddSubtitle(ctx, "missing", "x", "y"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestEntryRepo_DeleteReturnsOwnedHandles(t *testing.T) {
	db := setupTestDB(t)
	repo := NewEntryRepo(db)
	ctx := context.Background()

	entry := models.NewVideoEntry("v.mp4", "h.mp4", "video/mp4", 1)
	if err := repo.Insert(ctx, entry); err != nil {
		t.Fatalf("Failed to insert: %v", err)
	}
	if err := repo.AddSubtitle(ctx, entry.ID, "en.srt", "sub.handle"); err != nil {
		t.Fatalf("Failed to add subtitle: %v", err)
	}

	// A swap after the caller last read the entry must still be seen:
	// the delete reads handles inside its own transaction.
	if _, err := repo.SwapThumbnail(ctx, entry.ID, "late.jpg"); err != nil {
		t.Fatalf("Failed to swap thumbnail: %v", err)
	}

	handles, err := repo.Delete(ctx, entry.ID)
	if err != nil {
		t.Fatalf("Failed to delete: %v", err)
	}

	want := map[string]bool{"h.mp4": false, "late.jpg": false, "sub.handle": false}
	if len(handles) != len(want) {
		t.Fatalf("Expected %d handles, got %v", len(want), handles)
	}
	for _, h := range handles {
		seen, ok := want[h]
		if !ok {
			t.Errorf("Unexpected handle %q", h)
		}
		if seen {
			t.Errorf("Handle %q returned twice", h)
		}
		want[h] = true
	}

	if _, err := repo.Delete(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestEntryRepo_DeleteRemovesSubtitleRows(t *testing.T) {
	db := setupTestDB(t)
	repo := NewEntryRepo(db)
	ctx := context.Background()

	entry := models.NewVideoEntry("v.mp4", "h.mp4", "video/mp4", 1)
	if err := repo.Insert(ctx, entry); err != nil {
		t.Fatalf("Failed to insert: %v", err)
	}
	if err := repo.AddSubtitle(ctx, entry.ID, "en.srt", "sub.handle"); err != nil {
		t.Fatalf("Failed to add subtitle: %v", err)
	}
	if _, err := repo.Delete(ctx, entry.ID); err != nil {
		t.Fatalf("Failed to delete: %v", err)
	}

	var count int
	err := db.Conn().QueryRow(`SELECT COUNT(*) FROM subtitle_tracks WHERE video_id = ?`, entry.ID).Scan(&count)
	if err != nil {
		t.Fatalf("Failed to count: %v", err)
	}
	if count != 0 {
		t.Errorf("Expected no subtitle rows after delete, got %d", count)
	}
}
