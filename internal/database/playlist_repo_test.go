package database

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/vidshelf/vidshelf/internal/models"
)

func TestPlaylistRepo_SystemPlaylistsSeeded(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPlaylistRepo(db)
	ctx := context.Background()

	for _, id := range []string{models.PlaylistFavourites, models.PlaylistWatchLater, models.PlaylistHistory} {
		p, err := repo.Get(ctx, id)
		if err != nil {
			t.Fatalf("Expected seeded playlist %s: %v", id, err)
		}
		if !p.System {
			t.Errorf("Expected %s to be a system playlist", id)
		}
		if len(p.VideoIDs) != 0 {
			t.Errorf("Expected %s to start empty, got %v", id, p.VideoIDs)
		}
	}
}

func TestPlaylistRepo_CreateAndList(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPlaylistRepo(db)
	ctx := context.Background()

	p := &models.Playlist{ID: "road_trips", Name: "Road Trips"}
	if err := repo.Create(ctx, p); err != nil {
		t.Fatalf("Failed to create: %v", err)
	}

	playlists, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("Failed to list: %v", err)
	}
	// 3 system playlists plus the new one, system ones first.
	if len(playlists) != 4 {
		t.Fatalf("Expected 4 playlists, got %d", len(playlists))
	}
	if playlists[3].ID != "road_trips" {
		t.Errorf("Expected user playlist last, got %s", playlists[3].ID)
	}
}

func TestPlaylistRepo_AddRemoveVideo(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPlaylistRepo(db)
	ctx := context.Background()

	if err := repo.AddVideo(ctx, models.PlaylistFavourites, "v1"); err != nil {
		t.Fatalf("Failed to add: %v", err)
	}
	if err := repo.AddVideo(ctx, models.PlaylistFavourites, "v2"); err != nil {
		t.Fatalf("Failed to add: %v", err)
	}

	ok, err := repo.Contains(ctx, models.PlaylistFavourites, "v1")
	if err != nil || !ok {
		t.Fatalf("Expected v1 present, ok=%v err=%v", ok, err)
	}

	ids, err := repo.VideoIDs(ctx, models.PlaylistFavourites)
	if err != nil {
		t.Fatalf("Failed to read ids: %v", err)
	}
	if len(ids) != 2 || ids[0] != "v1" || ids[1] != "v2" {
		t.Errorf("Expected [v1 v2], got %v", ids)
	}

	if err := repo.RemoveVideo(ctx, models.PlaylistFavourites, "v1"); err != nil {
		t.Fatalf("Failed to remove: %v", err)
	}
	// Removing an absent id is a no-op.
	if err := repo.RemoveVideo(ctx, models.PlaylistFavourites, "v1"); err != nil {
		t.Fatalf("Expected no-op remove, got %v", err)
	}

	ids, _ = repo.VideoIDs(ctx, models.PlaylistFavourites)
	if len(ids) != 1 || ids[0] != "v2" {
		t.Errorf("Expected [v2], got %v", ids)
	}

	if err := repo.AddVideo(ctx, "missing", "v1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestPlaylistRepo_RecordHistoryMovesToFront(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPlaylistRepo(db)
	ctx := context.Background()

	for _, id := range []string{"v1", "v2", "v1"} {
		if err := repo.RecordHistory(ctx, id); err != nil {
			t.Fatalf("Failed to record %s: %v", id, err)
		}
	}

	ids, err := repo.VideoIDs(ctx, models.PlaylistHistory)
	if err != nil {
		t.Fatalf("Failed to read history: %v", err)
	}
	if len(ids) != 2 || ids[0] != "v1" || ids[1] != "v2" {
		t.Errorf("Expected [v1 v2], got %v", ids)
	}
}

func TestPlaylistRepo_RecordHistoryCapped(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPlaylistRepo(db)
	ctx := context.Background()

	total := models.HistoryLimit + 20
	for i := 0; i < total; i++ {
		if err := repo.RecordHistory(ctx, fmt.Sprintf("v%03d", i)); err != nil {
			t.Fatalf("Failed to record entry %d: %v", i, err)
		}
	}

	ids, err := repo.VideoIDs(ctx, models.PlaylistHistory)
	if err != nil {
		t.Fatalf("Failed to read history: %v", err)
	}
	if len(ids) != models.HistoryLimit {
		t.Fatalf("Expected history capped at %d, got %d", models.HistoryLimit, len(ids))
	}
	if ids[0] != fmt.Sprintf("v%03d", total-1) {
		t.Errorf("Expected most recent first, got %s", ids[0])
	}
	seen := make(map[string]bool)
	for _, id := range ids {
		if seen[id] {
			t.Errorf("Duplicate id in history: %s", id)
		}
		seen[id] = true
	}
}

func TestPlaylistRepo_ClearKeepsPlaylist(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPlaylistRepo(db)
	ctx := context.Background()

	if err := repo.AddVideo(ctx, models.PlaylistWatchLater, "v1"); err != nil {
		t.Fatalf("Failed to add: %v", err)
	}
	if err := repo.Clear(ctx, models.PlaylistWatchLater); err != nil {
		t.Fatalf("Failed to clear: %v", err)
	}

	p, err := repo.Get(ctx, models.PlaylistWatchLater)
	if err != nil {
		t.Fatalf("Playlist gone after clear: %v", err)
	}
	if len(p.VideoIDs) != 0 {
		t.Errorf("Expected empty playlist, got %v", p.VideoIDs)
	}
}

func TestPlaylistRepo_Delete(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPlaylistRepo(db)
	ctx := context.Background()

	p := &models.Playlist{ID: "temp", Name: "Temp"}
	if err := repo.Create(ctx, p); err != nil {
		t.Fatalf("Failed to create: %v", err)
	}
	if err := repo.AddVideo(ctx, "temp", "v1"); err != nil {
		t.Fatalf("Failed to add: %v", err)
	}
	if err := repo.Delete(ctx, "temp"); err != nil {
		t.Fatalf("Failed to delete: %v", err)
	}
	if _, err := repo.Get(ctx, "temp"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
	if err := repo.Delete(ctx, "temp"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound on second delete, got %v", err)
	}
}
