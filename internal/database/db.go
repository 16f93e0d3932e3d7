package database

import (
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/vidshelf/vidshelf/internal/models"
)

// ErrNotFound is returned when a row the caller referenced does not exist.
var ErrNotFound = errors.New("not found")

// DB is the session index: an in-memory SQLite database holding catalog
// entries and playlist membership. Nothing here survives the process; a
// restart starts from the seeded system playlists.
type DB struct {
	conn *sql.DB
}

// Open creates the in-memory database, its schema, and the system
// playlists. A single connection is enforced because every sqlite :memory:
// connection is a separate database.
func Open() (*DB, error) {
	conn, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	conn.SetMaxOpenConns(1)

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.createTables(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	if err := db.seedSystemPlaylists(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to seed system playlists: %w", err)
	}

	return db, nil
}

func (db *DB) createTables() error {
	query := `
	CREATE TABLE videos (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		media_handle TEXT NOT NULL,
		mime_type TEXT NOT NULL,
		size_bytes INTEGER NOT NULL,
		duration_seconds REAL NOT NULL DEFAULT 0,
		thumbnail_handle TEXT NOT NULL DEFAULT '',
		progress_seconds REAL NOT NULL DEFAULT 0
	);

	CREATE TABLE subtitle_tracks (
		video_id TEXT NOT NULL,
		label TEXT NOT NULL,
		handle TEXT NOT NULL,
		position INTEGER NOT NULL
	);

	CREATE TABLE playlists (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		system INTEGER NOT NULL DEFAULT 0
	);

	CREATE TABLE playlist_videos (
		playlist_id TEXT NOT NULL,
		video_id TEXT NOT NULL,
		position INTEGER NOT NULL,
		PRIMARY KEY (playlist_id, video_id)
	);
	`

	_, err := db.conn.Exec(query)
	return err
}

func (db *DB) seedSystemPlaylists() error {
	query := `INSERT INTO playlists (id, name, system) VALUES (?, ?, 1)`
	seeds := []struct{ id, name string }{
		{models.PlaylistFavourites, "Favourites"},
		{models.PlaylistWatchLater, "Watch Later"},
		{models.PlaylistHistory, "History"},
	}
	for _, s := range seeds {
		if _, err := db.conn.Exec(query, s.id, s.name); err != nil {
			return err
		}
	}
	return nil
}

func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) Conn() *sql.DB {
	return db.conn
}
