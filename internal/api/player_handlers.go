package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/vidshelf/vidshelf/internal/catalog"
	"github.com/vidshelf/vidshelf/internal/player"
	"github.com/vidshelf/vidshelf/internal/playlist"
	"github.com/vidshelf/vidshelf/internal/ui"
)

// PlayerGateway routes the player's outbound events: state snapshots to
// connected websockets, progress into the catalog, watch events into
// history, frame captures into the thumbnail flow. It is the single
// player.Sink for the whole process.
type PlayerGateway struct {
	catalog   *catalog.Catalog
	playlists *playlist.Service
	logger    *slog.Logger

	mu    sync.Mutex
	conns map[*websocket.Conn]struct{}
}

func NewPlayerGateway(cat *catalog.Catalog, pls *playlist.Service, logger *slog.Logger) *PlayerGateway {
	if logger == nil {
		logger = slog.Default()
	}
	return &PlayerGateway{
		catalog:   cat,
		playlists: pls,
		logger:    logger,
		conns:     make(map[*websocket.Conn]struct{}),
	}
}

func (g *PlayerGateway) StateChanged(state player.State) {
	g.broadcast(map[string]any{"type": "state", "state": state})
}

func (g *PlayerGateway) ProgressChanged(videoID string, seconds float64) {
	if err := g.catalog.UpdateProgress(context.Background(), videoID, seconds); err != nil {
		g.logger.Warn("failed to record progress", "video_id", videoID, "error", err)
	}
}

func (g *PlayerGateway) Watched(videoID string) {
	if err := g.playlists.RecordHistory(context.Background(), videoID); err != nil {
		g.logger.Warn("failed to record history", "video_id", videoID, "error", err)
	}
}

func (g *PlayerGateway) CaptureFrame(videoID string, atSeconds float64) error {
	return g.catalog.CaptureThumbnail(context.Background(), videoID, atSeconds)
}

func (g *PlayerGateway) register(conn *websocket.Conn) {
	g.mu.Lock()
	g.conns[conn] = struct{}{}
	g.mu.Unlock()
}

func (g *PlayerGateway) unregister(conn *websocket.Conn) {
	g.mu.Lock()
	delete(g.conns, conn)
	g.mu.Unlock()
}

func (g *PlayerGateway) broadcast(message any) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for conn := range g.conns {
		conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
		if err := conn.WriteJSON(message); err != nil {
			conn.Close()
			delete(g.conns, conn)
		}
	}
}

var playerUpgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// Same-host app, the browser talks to its own server.
		return true
	},
}

// OpenPlayerHandler opens (or replaces) the watch session for a video and
// returns the initial player state.
func (app *App) OpenPlayerHandler(w http.ResponseWriter, r *http.Request) {
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

	entry, err := app.Catalog.Get(r.Context(), req.VideoID)
	if err != nil {
		app.respondServiceError(w, err)
		return
	}

	session := app.Player.Open(entry)
	app.respondJSON(w, http.StatusOK, session.Snapshot())
}

func (app *App) PlayerStateHandler(w http.ResponseWriter, r *http.Request) {
	session := app.Player.Current()
	if session == nil {
		app.respondError(w, http.StatusNotFound, "no open video")
		return
	}
	app.respondJSON(w, http.StatusOK, session.Snapshot())
}

// PlayerSpeedsHandler describes the speed menu: the coarse rate presets
// with the session's current rate pre-selected.
func (app *App) PlayerSpeedsHandler(w http.ResponseWriter, r *http.Request) {
	session := app.Player.Current()
	if session == nil {
		app.respondError(w, http.StatusNotFound, "no open video")
		return
	}

	current := session.Snapshot().Speed
	options := make([]ui.SelectOption, 0, len(player.SpeedPresets))
	for _, preset := range player.SpeedPresets {
		options = append(options, ui.SelectOption{
			ID:       strconv.FormatFloat(preset, 'g', -1, 64),
			Label:    fmt.Sprintf("%gx", preset),
			Selected: preset == current,
		})
	}
	app.respondJSON(w, http.StatusOK, ui.Describe(ui.SingleSelect{
		Title:   "Playback speed",
		Options: options,
	}))
}

type playerCommand struct {
	Action string  `json:"action"`
	Value  float64 `json:"value"`
	On     bool    `json:"on"`
}

func applyCommand(s *player.Session, cmd playerCommand) error {
	switch cmd.Action {
	case "play":
		s.Play()
	case "pause":
		s.Pause()
	case "toggle":
		s.TogglePlay()
	case "replay":
		s.Replay()
	case "seekTo":
		s.SeekTo(cmd.Value)
	case "seekBy":
		s.SeekBy(cmd.Value)
	case "setVolume":
		s.SetVolume(cmd.Value)
	case "volumeBy":
		s.VolumeBy(cmd.Value)
	case "toggleMute":
		s.ToggleMute()
	case "setSpeed":
		s.SetSpeed(cmd.Value)
	case "speedMenu":
		s.SetSpeedMenu(cmd.On)
	case "toggleSubtitles":
		s.ToggleSubtitles()
	case "toggleFullscreen":
		s.ToggleFullscreen()
	case "syncFullscreen":
		s.SyncFullscreen(cmd.On)
	case "controls":
		s.SetControlsVisible(cmd.On)
	case "beginCapture":
		s.BeginCapture()
	case "endCapture":
		return s.EndCapture(cmd.On)
	default:
		return fmt.Errorf("unknown action %q", cmd.Action)
	}
	return nil
}

func (app *App) PlayerCommandHandler(w http.ResponseWriter, r *http.Request) {
	session := app.Player.Current()
	if session == nil {
		app.respondError(w, http.StatusNotFound, "no open video")
		return
	}

	var cmd playerCommand
	if err := decodeBody(r, &cmd); err != nil {
		app.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := applyCommand(session, cmd); err != nil {
		app.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	app.respondJSON(w, http.StatusOK, session.Snapshot())
}

// PlayerKeyHandler forwards a keyboard shortcut. The response tells the
// frontend whether to suppress the browser default for that key.
func (app *App) PlayerKeyHandler(w http.ResponseWriter, r *http.Request) {
	session := app.Player.Current()
	if session == nil {
		app.respondError(w, http.StatusNotFound, "no open video")
		return
	}

	var req struct {
		Key string `json:"key"`
	}
	if err := decodeBody(r, &req); err != nil {
		app.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	handled := session.HandleKey(req.Key)
	app.respondJSON(w, http.StatusOK, map[string]bool{"handled": handled})
}

// PlayerSocketHandler upgrades to a websocket that receives state pushes
// at tick rate and accepts the same commands as the POST endpoint.
func (app *App) PlayerSocketHandler(gateway *PlayerGateway) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := playerUpgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		gateway.register(conn)
		defer gateway.unregister(conn)

		if session := app.Player.Current(); session != nil {
			conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			conn.WriteJSON(map[string]any{"type": "state", "state": session.Snapshot()})
		}

		for {
			var cmd playerCommand
			if err := conn.ReadJSON(&cmd); err != nil {
				return
			}
			session := app.Player.Current()
			if session == nil {
				continue
			}
			if err := applyCommand(session, cmd); err != nil {
				app.Logger.Warn("ignoring bad player command", "error", err)
			}
		}
	}
}
