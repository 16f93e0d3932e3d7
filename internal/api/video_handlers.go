package api

import (
	"fmt"
	"mime/multipart"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/vidshelf/vidshelf/internal/catalog"
	"github.com/vidshelf/vidshelf/internal/models"
	"github.com/vidshelf/vidshelf/internal/ui"
)

// ImportHandler accepts a multipart batch under the "files" field. Files
// that cannot be read are skipped; the response lists the ids that made it
// in.
func (app *App) ImportHandler(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, app.MaxUploadSize)

	if err := r.ParseMultipartForm(app.MaxUploadSize); err != nil {
		app.respondError(w, http.StatusBadRequest, "upload too large")
		return
	}
	headers := r.MultipartForm.File["files"]
	if len(headers) == 0 {
		app.respondError(w, http.StatusBadRequest, "missing parameter: files")
		return
	}

	var files []catalog.ImportFile
	var opened []multipart.File
	for _, h := range headers {
		f, err := h.Open()
		if err != nil {
			app.Logger.Warn("skipping unreadable upload", "filename", h.Filename, "error", err)
			continue
		}
		opened = append(opened, f)
		files = append(files, catalog.ImportFile{
			Filename:    h.Filename,
			ContentType: h.Header.Get("Content-Type"),
			Size:        h.Size,
			Reader:      f,
		})
	}
	defer func() {
		for _, f := range opened {
			f.Close()
		}
	}()

	ids, err := app.Catalog.ImportFiles(r.Context(), files)
	if err != nil {
		app.respondServiceError(w, err)
		return
	}
	app.respondJSON(w, http.StatusCreated, map[string]any{"ids": ids})
}

func (app *App) ListVideosHandler(w http.ResponseWriter, r *http.Request) {
	entries, err := app.Catalog.List(r.Context())
	if err != nil {
		app.respondServiceError(w, err)
		return
	}
	if entries == nil {
		entries = []models.VideoEntry{}
	}
	app.respondJSON(w, http.StatusOK, entries)
}

func (app *App) GetVideoHandler(w http.ResponseWriter, r *http.Request) {
	entry, err := app.Catalog.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		app.respondServiceError(w, err)
		return
	}
	app.respondJSON(w, http.StatusOK, entry)
}

// DeleteVideoHandler implements the two-step destructive flow: without
// confirm=1 it only describes the dialog the frontend must show; deletion
// happens on the confirmed request.
func (app *App) DeleteVideoHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	entry, err := app.Catalog.Get(r.Context(), id)
	if err != nil {
		app.respondServiceError(w, err)
		return
	}

	if r.URL.Query().Get("confirm") != "1" {
		app.respondJSON(w, http.StatusOK, ui.Describe(ui.DestructiveConfirm{
			Title:      fmt.Sprintf("Delete %q?", entry.Name),
			ActionText: "Delete",
		}))
		return
	}

	if err := app.Catalog.Delete(r.Context(), id); err != nil {
		app.respondServiceError(w, err)
		return
	}
	app.Hub.Info(fmt.Sprintf("%q deleted", entry.Name))
	w.WriteHeader(http.StatusNoContent)
}

func (app *App) AddSubtitleHandler(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, app.MaxUploadSize)

	if err := r.ParseMultipartForm(app.MaxUploadSize); err != nil {
		app.respondError(w, http.StatusBadRequest, "upload too large")
		return
	}
	file, header, err := r.FormFile("subtitle")
	if err != nil {
		app.respondError(w, http.StatusBadRequest, "missing parameter: subtitle")
		return
	}
	defer file.Close()

	id := chi.URLParam(r, "id")
	if err := app.Catalog.AddSubtitle(r.Context(), id, header.Filename, file); err != nil {
		app.respondServiceError(w, err)
		return
	}

	entry, err := app.Catalog.Get(r.Context(), id)
	if err != nil {
		app.respondServiceError(w, err)
		return
	}
	app.respondJSON(w, http.StatusCreated, entry)
}

// CaptureThumbnailHandler re-derives the thumbnail from a frame at the
// given offset.
func (app *App) CaptureThumbnailHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		AtSeconds float64 `json:"atSeconds"`
	}
	if err := decodeBody(r, &req); err != nil {
		app.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := app.Catalog.CaptureThumbnail(r.Context(), chi.URLParam(r, "id"), req.AtSeconds); err != nil {
		app.respondServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (app *App) SearchHandler(w http.ResponseWriter, r *http.Request) {
	if !r.URL.Query().Has("q") {
		app.respondError(w, http.StatusBadRequest, "missing parameter: q")
		return
	}

	results, err := app.Search.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		app.respondServiceError(w, err)
		return
	}
	if results == nil {
		results = []models.VideoEntry{}
	}
	app.respondJSON(w, http.StatusOK, results)
}

// MediaHandler streams a blob by handle. ServeContent handles Range
// requests, so the browser can seek without downloading the whole file.
func (app *App) MediaHandler(w http.ResponseWriter, r *http.Request) {
	handle := chi.URLParam(r, "handle")

	file, err := app.Storage.Open(handle)
	if err != nil {
		app.respondError(w, http.StatusNotFound, "media not found")
		return
	}
	defer file.Close()

	// A zero mod time just disables conditional requests; Range support
	// only needs the seeker.
	var modTime time.Time
	if f, ok := file.(interface{ Stat() (os.FileInfo, error) }); ok {
		if stat, err := f.Stat(); err == nil {
			modTime = stat.ModTime()
		}
	}

	http.ServeContent(w, r, handle, modTime, file)
}
