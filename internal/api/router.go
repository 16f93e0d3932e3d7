package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func NewRouter(app *App, gateway *PlayerGateway) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/ping", PingHandler)

	r.Route("/api", func(r chi.Router) {
		r.Post("/videos", app.ImportHandler)
		r.Get("/videos", app.ListVideosHandler)
		r.Get("/videos/{id}", app.GetVideoHandler)
		r.Delete("/videos/{id}", app.DeleteVideoHandler)
		r.Post("/videos/{id}/subtitles", app.AddSubtitleHandler)
		r.Post("/videos/{id}/thumbnail", app.CaptureThumbnailHandler)
		r.Get("/videos/{id}/playlists", app.PlaylistPickerHandler)

		r.Get("/search", app.SearchHandler)

		r.Get("/playlists", app.ListPlaylistsHandler)
		r.Post("/playlists", app.CreatePlaylistHandler)
		r.Get("/playlists/prompt", app.NewPlaylistPromptHandler)
		r.Get("/playlists/{id}", app.GetPlaylistHandler)
		r.Delete("/playlists/{id}", app.DeletePlaylistHandler)
		r.Get("/playlists/{id}/videos", app.PlaylistVideosHandler)
		r.Post("/playlists/{id}/videos", app.AddPlaylistVideoHandler)
		r.Delete("/playlists/{id}/videos/{videoId}", app.RemovePlaylistVideoHandler)
		r.Post("/playlists/{id}/clear", app.ClearPlaylistHandler)

		r.Post("/player/open", app.OpenPlayerHandler)
		r.Get("/player/state", app.PlayerStateHandler)
		r.Get("/player/speeds", app.PlayerSpeedsHandler)
		r.Post("/player/command", app.PlayerCommandHandler)
		r.Post("/player/key", app.PlayerKeyHandler)
		r.Get("/player/ws", app.PlayerSocketHandler(gateway))

		r.Get("/events", app.EventsHandler)
	})

	r.Get("/media/{handle}", app.MediaHandler)

	return r
}
