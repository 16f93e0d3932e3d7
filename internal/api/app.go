// Package api is the HTTP surface. Handlers translate requests into calls
// on the catalog, search engine, playlist service and player, and render
// their results as JSON.
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/vidshelf/vidshelf/internal/catalog"
	"github.com/vidshelf/vidshelf/internal/notify"
	"github.com/vidshelf/vidshelf/internal/player"
	"github.com/vidshelf/vidshelf/internal/playlist"
	"github.com/vidshelf/vidshelf/internal/search"
	"github.com/vidshelf/vidshelf/internal/storage"
)

type App struct {
	Catalog       *catalog.Catalog
	Search        *search.Engine
	Playlists     *playlist.Service
	Player        *player.Manager
	Storage       storage.Store
	Hub           *notify.Hub
	MaxUploadSize int64
	Logger        *slog.Logger
}

func PingHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("pong"))
}

func (app *App) respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		app.Logger.Error("failed to encode response", "error", err)
	}
}

func (app *App) respondError(w http.ResponseWriter, status int, message string) {
	app.respondJSON(w, status, map[string]string{"error": message})
}

// respondServiceError maps domain sentinel errors onto status codes.
// Unknown ids are 404, everything the caller got wrong is 400.
func (app *App) respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, catalog.ErrNotFound), errors.Is(err, playlist.ErrNotFound):
		app.respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, playlist.ErrNameTaken),
		errors.Is(err, playlist.ErrProtected),
		errors.Is(err, playlist.ErrAlreadyPresent),
		errors.Is(err, playlist.ErrEmptyName),
		errors.Is(err, search.ErrMissingQuery):
		app.respondError(w, http.StatusBadRequest, err.Error())
	default:
		app.Logger.Error("request failed", "error", err)
		app.respondError(w, http.StatusInternalServerError, "internal error")
	}
}

func decodeBody(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}
