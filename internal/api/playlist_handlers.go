package api

import (
	"fmt"
	"net/http"
	"slices"

	"github.com/go-chi/chi/v5"

	"github.com/vidshelf/vidshelf/internal/models"
	"github.com/vidshelf/vidshelf/internal/playlist"
	"github.com/vidshelf/vidshelf/internal/ui"
)

func (app *App) ListPlaylistsHandler(w http.ResponseWriter, r *http.Request) {
	playlists, err := app.Playlists.List(r.Context())
	if err != nil {
		app.respondServiceError(w, err)
		return
	}
	if playlists == nil {
		playlists = []models.Playlist{}
	}
	app.respondJSON(w, http.StatusOK, playlists)
}

func (app *App) CreatePlaylistHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := decodeBody(r, &req); err != nil {
		app.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	pl, err := app.Playlists.Create(r.Context(), req.Name)
	if err != nil {
		app.respondServiceError(w, err)
		return
	}
	app.respondJSON(w, http.StatusCreated, pl)
}

// NewPlaylistPromptHandler describes the name prompt shown before creating
// a playlist.
func (app *App) NewPlaylistPromptHandler(w http.ResponseWriter, r *http.Request) {
	app.respondJSON(w, http.StatusOK, ui.Describe(ui.TextPrompt{
		Title:       "New playlist",
		Placeholder: "Playlist name",
		ActionText:  "Create",
	}))
}

// PlaylistPickerHandler describes the save-to-playlist dialog for one
// video: every playlist except history, with current memberships
// pre-selected.
func (app *App) PlaylistPickerHandler(w http.ResponseWriter, r *http.Request) {
	videoID := chi.URLParam(r, "id")
	ok, err := app.Catalog.Exists(r.Context(), videoID)
	if err != nil {
		app.respondServiceError(w, err)
		return
	}
	if !ok {
		app.respondError(w, http.StatusNotFound, "video not found")
		return
	}

	playlists, err := app.Playlists.List(r.Context())
	if err != nil {
		app.respondServiceError(w, err)
		return
	}

	options := make([]ui.SelectOption, 0, len(playlists))
	for _, pl := range playlists {
		if pl.ID == models.PlaylistHistory {
			continue
		}
		options = append(options, ui.SelectOption{
			ID:       pl.ID,
			Label:    pl.Name,
			Selected: slices.Contains(pl.VideoIDs, videoID),
		})
	}
	app.respondJSON(w, http.StatusOK, ui.Describe(ui.SingleSelect{
		Title:   "Save to playlist",
		Options: options,
	}))
}

func (app *App) GetPlaylistHandler(w http.ResponseWriter, r *http.Request) {
	pl, err := app.Playlists.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		app.respondServiceError(w, err)
		return
	}
	app.respondJSON(w, http.StatusOK, pl)
}

func (app *App) DeletePlaylistHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	pl, err := app.Playlists.Get(r.Context(), id)
	if err != nil {
		app.respondServiceError(w, err)
		return
	}

	if r.URL.Query().Get("confirm") != "1" {
		app.respondJSON(w, http.StatusOK, ui.Describe(ui.DestructiveConfirm{
			Title:      fmt.Sprintf("Delete playlist %q?", pl.Name),
			ActionText: "Delete",
		}))
		return
	}

	if err := app.Playlists.Remove(r.Context(), id); err != nil {
		app.respondServiceError(w, err)
		return
	}
	app.Hub.Info(fmt.Sprintf("Playlist %q deleted", pl.Name))
	w.WriteHeader(http.StatusNoContent)
}

// PlaylistVideosHandler resolves membership against the catalog. Entries
// whose video has been deleted come back flagged unavailable rather than
// silently dropped.
func (app *App) PlaylistVideosHandler(w http.ResponseWriter, r *http.Request) {
	pl, err := app.Playlists.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		app.respondServiceError(w, err)
		return
	}
	app.respondJSON(w, http.StatusOK, playlist.Resolve(r.Context(), pl.VideoIDs, app.Catalog))
}

func (app *App) AddPlaylistVideoHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		VideoID string `json:"videoId"`
	}
	if err := decodeBody(r, &req); err != nil {
		app.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.VideoID == "" {
		app.respondError(w, http.StatusBadRequest, "missing parameter: videoId")
		return
	}

	ok, err := app.Catalog.Exists(r.Context(), req.VideoID)
	if err != nil {
		app.respondServiceError(w, err)
		return
	}
	if !ok {
		app.respondError(w, http.StatusNotFound, "video not found")
		return
	}

	if err := app.Playlists.AddVideo(r.Context(), chi.URLParam(r, "id"), req.VideoID); err != nil {
		app.respondServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (app *App) RemovePlaylistVideoHandler(w http.ResponseWriter, r *http.Request) {
	err := app.Playlists.RemoveVideo(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "videoId"))
	if err != nil {
		app.respondServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ClearPlaylistHandler empties a playlist, with the same confirm handshake
// as deletion. Clearing history is allowed; deleting it is not.
func (app *App) ClearPlaylistHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	pl, err := app.Playlists.Get(r.Context(), id)
	if err != nil {
		app.respondServiceError(w, err)
		return
	}

	if r.URL.Query().Get("confirm") != "1" {
		app.respondJSON(w, http.StatusOK, ui.Describe(ui.Confirm{
			Title:      fmt.Sprintf("Clear %q?", pl.Name),
			ActionText: "Clear",
		}))
		return
	}

	if err := app.Playlists.Clear(r.Context(), id); err != nil {
		app.respondServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
