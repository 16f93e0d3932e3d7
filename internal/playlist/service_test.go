package playlist

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vidshelf/vidshelf/internal/database"
	"github.com/vidshelf/vidshelf/internal/models"
)

func newService(t *testing.T) *Service {
	t.Helper()
	db, err := database.Open()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewService(database.NewPlaylistRepo(db))
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "road_trips", Slugify("Road Trips"))
	assert.Equal(t, "road_trips", Slugify("  Road   Trips  "))
	assert.Equal(t, "all_lowercase", Slugify("ALL LOWERCASE"))
	assert.Equal(t, "", Slugify("   "))
}

func TestCreate(t *testing.T) {
	s := newService(t)
	ctx := context.Background()

	p, err := s.Create(ctx, "Road Trips")
	require.NoError(t, err)
	assert.Equal(t, "road_trips", p.ID)
	assert.Equal(t, "Road Trips", p.Name)
	assert.False(t, p.System)

	// Same name slugs to the same id and is rejected.
	_, err = s.Create(ctx, "road TRIPS")
	assert.ErrorIs(t, err, ErrNameTaken)

	// A name slugging to a system playlist id is also taken.
	_, err = s.Create(ctx, "Watch Later")
	assert.ErrorIs(t, err, ErrNameTaken)

	_, err = s.Create(ctx, "   ")
	assert.ErrorIs(t, err, ErrEmptyName)
}

func TestRemoveProtectsSystemPlaylists(t *testing.T) {
	s := newService(t)
	ctx := context.Background()

	require.NoError(t, s.AddVideo(ctx, models.PlaylistFavourites, "v1"))

	for _, id := range []string{models.PlaylistFavourites, models.PlaylistWatchLater, models.PlaylistHistory} {
		assert.ErrorIs(t, s.Remove(ctx, id), ErrProtected)
	}

	// The rejected removal changed nothing.
	p, err := s.Get(ctx, models.PlaylistFavourites)
	require.NoError(t, err)
	assert.Equal(t, []string{"v1"}, p.VideoIDs)

	assert.ErrorIs(t, s.Remove(ctx, "nope"), ErrNotFound)
}

func TestRemoveUserPlaylist(t *testing.T) {
	s := newService(t)
	ctx := context.Background()

	p, err := s.Create(ctx, "Temp")
	require.NoError(t, err)
	require.NoError(t, s.Remove(ctx, p.ID))
	_, err = s.Get(ctx, p.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAddVideoRejectsDuplicates(t *testing.T) {
	s := newService(t)
	ctx := context.Background()

	require.NoError(t, s.AddVideo(ctx, models.PlaylistWatchLater, "v1"))
	assert.ErrorIs(t, s.AddVideo(ctx, models.PlaylistWatchLater, "v1"), ErrAlreadyPresent)
	require.NoError(t, s.AddVideo(ctx, models.PlaylistWatchLater, "v2"))

	p, err := s.Get(ctx, models.PlaylistWatchLater)
	require.NoError(t, err)
	assert.Equal(t, []string{"v1", "v2"}, p.VideoIDs)

	assert.ErrorIs(t, s.AddVideo(ctx, "missing", "v1"), ErrNotFound)
}

func TestRemoveVideoAbsentIsNoop(t *testing.T) {
	s := newService(t)
	ctx := context.Background()

	assert.NoError(t, s.RemoveVideo(ctx, models.PlaylistFavourites, "never-added"))
	assert.ErrorIs(t, s.RemoveVideo(ctx, "missing", "v1"), ErrNotFound)
}

func TestRecordHistoryScenario(t *testing.T) {
	s := newService(t)
	ctx := context.Background()

	require.NoError(t, s.RecordHistory(ctx, "v1"))
	require.NoError(t, s.RecordHistory(ctx, "v2"))
	require.NoError(t, s.RecordHistory(ctx, "v1"))

	p, err := s.Get(ctx, models.PlaylistHistory)
	require.NoError(t, err)
	assert.Equal(t, []string{"v1", "v2"}, p.VideoIDs)
}

func TestClear(t *testing.T) {
	s := newService(t)
	ctx := context.Background()

	require.NoError(t, s.AddVideo(ctx, models.PlaylistFavourites, "v1"))
	require.NoError(t, s.Clear(ctx, models.PlaylistFavourites))

	p, err := s.Get(ctx, models.PlaylistFavourites)
	require.NoError(t, err)
	assert.Empty(t, p.VideoIDs)

	assert.ErrorIs(t, s.Clear(ctx, "missing"), ErrNotFound)
}

type fakeEntries map[string]*models.VideoEntry

func (f fakeEntries) Get(ctx context.Context, id string) (*models.VideoEntry, error) {
	if e, ok := f[id]; ok {
		return e, nil
	}
	return nil, database.ErrNotFound
}

func TestResolveMarksDanglingReferences(t *testing.T) {
	source := fakeEntries{"v1": {ID: "v1", Name: "trip"}}

	resolved := Resolve(context.Background(), []string{"v1", "deleted"}, source)
	require.Len(t, resolved, 2)

	assert.True(t, resolved[0].Available)
	assert.Equal(t, "trip", resolved[0].Entry.Name)

	assert.False(t, resolved[1].Available)
	assert.Nil(t, resolved[1].Entry)
	assert.Equal(t, "deleted", resolved[1].ID)
}
