// Package playlist manages named ordered collections of video ids,
// including the protected system playlists. Guard failures are sentinel
// errors the caller turns into no-op messages, never hard faults.
package playlist

import (
	"context"
	"errors"
	"strings"

	"github.com/vidshelf/vidshelf/internal/database"
	"github.com/vidshelf/vidshelf/internal/models"
)

var (
	ErrNotFound       = errors.New("playlist not found")
	ErrNameTaken      = errors.New("a playlist with this name already exists")
	ErrProtected      = errors.New("system playlists cannot be deleted")
	ErrAlreadyPresent = errors.New("video is already in this playlist")
	ErrEmptyName      = errors.New("playlist name is empty")
)

// Service wraps the playlist repo with the membership and protection
// rules. It is the sole mutator of playlist membership.
type Service struct {
	repo *database.PlaylistRepo
}

func NewService(repo *database.PlaylistRepo) *Service {
	return &Service{repo: repo}
}

// Slugify derives a playlist id from its display name: lowercased, each
// whitespace run collapsed to a single underscore.
func Slugify(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), "_")
}

// Create makes a user playlist whose id is the slug of its name. A slug
// collision with any existing playlist rejects the creation.
func (s *Service) Create(ctx context.Context, name string) (*models.Playlist, error) {
	id := Slugify(name)
	if id == "" {
		return nil, ErrEmptyName
	}

	exists, err := s.repo.Exists(ctx, id)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrNameTaken
	}

	p := &models.Playlist{ID: id, Name: name, VideoIDs: []string{}}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Remove deletes a user playlist. System playlists are protected; removing
// one is rejected without touching it.
func (s *Service) Remove(ctx context.Context, id string) error {
	if models.IsSystemPlaylist(id) {
		return ErrProtected
	}
	err := s.repo.Delete(ctx, id)
	if errors.Is(err, database.ErrNotFound) {
		return ErrNotFound
	}
	return err
}

// AddVideo appends the video to the end of the playlist; membership is
// unique per playlist.
func (s *Service) AddVideo(ctx context.Context, playlistID, videoID string) error {
	present, err := s.repo.Contains(ctx, playlistID, videoID)
	if err != nil {
		return err
	}
	if present {
		return ErrAlreadyPresent
	}
	err = s.repo.AddVideo(ctx, playlistID, videoID)
	if errors.Is(err, database.ErrNotFound) {
		return ErrNotFound
	}
	return err
}

// RemoveVideo takes the video out of the playlist; an absent id is a
// no-op. Dangling ids are removed the same way as live ones.
func (s *Service) RemoveVideo(ctx context.Context, playlistID, videoID string) error {
	exists, err := s.repo.Exists(ctx, playlistID)
	if err != nil {
		return err
	}
	if !exists {
		return ErrNotFound
	}
	return s.repo.RemoveVideo(ctx, playlistID, videoID)
}

// RecordHistory notes that the video was just watched: most recent first,
// no duplicates, capped.
func (s *Service) RecordHistory(ctx context.Context, videoID string) error {
	return s.repo.RecordHistory(ctx, videoID)
}

// Clear empties the playlist without deleting it. Allowed on system
// playlists; clearing history is how the user wipes it.
func (s *Service) Clear(ctx context.Context, id string) error {
	err := s.repo.Clear(ctx, id)
	if errors.Is(err, database.ErrNotFound) {
		return ErrNotFound
	}
	return err
}

func (s *Service) Get(ctx context.Context, id string) (*models.Playlist, error) {
	p, err := s.repo.Get(ctx, id)
	if errors.Is(err, database.ErrNotFound) {
		return nil, ErrNotFound
	}
	return p, err
}

func (s *Service) List(ctx context.Context) ([]models.Playlist, error) {
	return s.repo.List(ctx)
}
