package models

// Well-known ids of the pre-seeded system playlists. They exist from
// startup and cannot be removed.
const (
	PlaylistFavourites = "favourites"
	PlaylistWatchLater = "watch_later"
	PlaylistHistory    = "history"
)

// HistoryLimit caps the history playlist at the most recent entries.
const HistoryLimit = 100

// Playlist is a named ordered collection of video ids. Membership holds
// ids only; a referenced video may have been deleted from the catalog, in
// which case the id stays until explicitly removed.
type Playlist struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	System   bool     `json:"system"`
	VideoIDs []string `json:"videoIds"`
}

// IsSystemPlaylist reports whether id names one of the protected playlists.
func IsSystemPlaylist(id string) bool {
	switch id {
	case PlaylistFavourites, PlaylistWatchLater, PlaylistHistory:
		return true
	}
	return false
}
