package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vidshelf/vidshelf/internal/api"
	"github.com/vidshelf/vidshelf/internal/catalog"
	"github.com/vidshelf/vidshelf/internal/config"
	"github.com/vidshelf/vidshelf/internal/database"
	"github.com/vidshelf/vidshelf/internal/notify"
	"github.com/vidshelf/vidshelf/internal/player"
	"github.com/vidshelf/vidshelf/internal/playlist"
	"github.com/vidshelf/vidshelf/internal/probe"
	"github.com/vidshelf/vidshelf/internal/search"
	"github.com/vidshelf/vidshelf/internal/storage"
)

func main() {
	configPath := flag.String("config", "vidshelf.toml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to load config:", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel(cfg.Server.LogLevel),
	}))
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	store, err := storage.NewSessionStorage(cfg.Library.ScratchDir)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}

	db, err := database.Open()
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	var prober probe.Prober
	ffmpeg, err := probe.NewFFmpeg(cfg.Probe.FFmpeg, cfg.Probe.FFprobe, logger)
	if err != nil {
		logger.Warn("ffmpeg not found, durations and thumbnails disabled", "error", err)
		prober = probe.Unavailable{}
	} else {
		prober = ffmpeg
		defer ffmpeg.Cleanup()
	}

	hub := notify.NewHub(logger)
	defer hub.Close()

	cat := catalog.New(store, database.NewEntryRepo(db), prober, hub, logger)
	playlists := playlist.NewService(database.NewPlaylistRepo(db))

	gateway := api.NewPlayerGateway(cat, playlists, logger)
	manager := player.NewManager(gateway, player.DefaultTickInterval)

	app := &api.App{
		Catalog:       cat,
		Search:        search.NewEngine(cat),
		Playlists:     playlists,
		Player:        manager,
		Storage:       store,
		Hub:           hub,
		MaxUploadSize: cfg.Library.MaxUploadBytes,
		Logger:        logger,
	}

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:    addr,
		Handler: api.NewRouter(app, gateway),
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", "addr", addr, "scratch_dir", store.BasePath())
		errCh <- server.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		logger.Info("shutting down", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Warn("shutdown incomplete", "error", err)
	}

	// End the watch session first so no more progress flows into the
	// catalog, then release every blob the session ever held.
	manager.Close()
	if err := cat.Close(); err != nil {
		logger.Warn("failed to tear down media store", "error", err)
	}

	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func logLevel(name string) slog.Level {
	switch name {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
