package api

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// EventsHandler streams notifications as server-sent events until the
// client disconnects.
func (app *App) EventsHandler(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		app.respondError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	flusher.Flush()

	messages, cancel := app.Hub.Subscribe(16)
	defer cancel()

	for {
		select {
		case <-r.Context().Done():
			return
		case msg, open := <-messages:
			if !open {
				return
			}
			data, err := json.Marshal(msg)
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", msg.Level, data)
			flusher.Flush()
		}
	}
}
