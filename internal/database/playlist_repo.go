package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/vidshelf/vidshelf/internal/models"
)

// PlaylistRepo persists playlists and their ordered membership. Membership
// rows hold video ids only; nothing checks the catalog, so dangling ids are
// kept until explicitly removed.
type PlaylistRepo struct {
	db *DB
}

func NewPlaylistRepo(db *DB) *PlaylistRepo {
	return &PlaylistRepo{db: db}
}

func (r *PlaylistRepo) Create(ctx context.Context, p *models.Playlist) error {
	system := 0
	if p.System {
		system = 1
	}
	_, err := r.db.conn.ExecContext(ctx,
		`INSERT INTO playlists (id, name, system) VALUES (?, ?, ?)`, p.ID, p.Name, system)
	if err != nil {
		return fmt.Errorf("failed to create playlist: %w", err)
	}
	return nil
}

func (r *PlaylistRepo) Get(ctx context.Context, id string) (*models.Playlist, error) {
	p := &models.Playlist{}
	var system int
	err := r.db.conn.QueryRowContext(ctx,
		`SELECT id, name, system FROM playlists WHERE id = ?`, id).Scan(&p.ID, &p.Name, &system)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get playlist: %w", err)
	}
	p.System = system == 1

	ids, err := r.VideoIDs(ctx, id)
	if err != nil {
		return nil, err
	}
	p.VideoIDs = ids
	return p, nil
}

// List returns playlists in creation order, system playlists first because
// they are seeded at open.
func (r *PlaylistRepo) List(ctx context.Context) ([]models.Playlist, error) {
	rows, err := r.db.conn.QueryContext(ctx, `SELECT id, name, system FROM playlists ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("failed to list playlists: %w", err)
	}
	defer rows.Close()

	var playlists []models.Playlist
	index := make(map[string]int)
	for rows.Next() {
		var p models.Playlist
		var system int
		if err := rows.Scan(&p.ID, &p.Name, &system); err != nil {
			return nil, fmt.Errorf("failed to scan playlist: %w", err)
		}
		p.System = system == 1
		p.VideoIDs = []string{}
		index[p.ID] = len(playlists)
		playlists = append(playlists, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	memberRows, err := r.db.conn.QueryContext(ctx,
		`SELECT playlist_id, video_id FROM playlist_videos ORDER BY playlist_id, position`)
	if err != nil {
		return nil, fmt.Errorf("failed to list playlist videos: %w", err)
	}
	defer memberRows.Close()

	for memberRows.Next() {
		var playlistID, videoID string
		if err := memberRows.Scan(&playlistID, &videoID); err != nil {
			return nil, fmt.Errorf("failed to scan playlist video: %w", err)
		}
		if i, ok := index[playlistID]; ok {
			playlists[i].VideoIDs = append(playlists[i].VideoIDs, videoID)
		}
	}
	if err := memberRows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating membership rows: %w", err)
	}

	return playlists, nil
}

func (r *PlaylistRepo) Delete(ctx context.Context, id string) error {
	tx, err := r.db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin delete: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM playlist_videos WHERE playlist_id = ?`, id); err != nil {
		return fmt.Errorf("failed to clear playlist: %w", err)
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM playlists WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete playlist: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}

	return tx.Commit()
}

func (r *PlaylistRepo) Exists(ctx context.Context, id string) (bool, error) {
	var one int
	err := r.db.conn.QueryRowContext(ctx, `SELECT 1 FROM playlists WHERE id = ?`, id).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check playlist existence: %w", err)
	}
	return true, nil
}

func (r *PlaylistRepo) Contains(ctx context.Context, playlistID, videoID string) (bool, error) {
	var one int
	err := r.db.conn.QueryRowContext(ctx,
		`SELECT 1 FROM playlist_videos WHERE playlist_id = ? AND video_id = ?`,
		playlistID, videoID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check membership: %w", err)
	}
	return true, nil
}

// AddVideo appends to the end of the playlist. Duplicate membership is the
// caller's guard; the primary key backstops it.
func (r *PlaylistRepo) AddVideo(ctx context.Context, playlistID, videoID string) error {
	ok, err := r.Exists(ctx, playlistID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}

	query := `
		INSERT INTO playlist_videos (playlist_id, video_id, position)
		VALUES (?, ?, (SELECT COALESCE(MAX(position) + 1, 0) FROM playlist_videos WHERE playlist_id = ?))`
	if _, err := r.db.conn.ExecContext(ctx, query, playlistID, videoID, playlistID); err != nil {
		return fmt.Errorf("failed to add video to playlist: %w", err)
	}
	return nil
}

// RemoveVideo removes a membership row if present; absence is a no-op.
func (r *PlaylistRepo) RemoveVideo(ctx context.Context, playlistID, videoID string) error {
	_, err := r.db.conn.ExecContext(ctx,
		`DELETE FROM playlist_videos WHERE playlist_id = ? AND video_id = ?`, playlistID, videoID)
	if err != nil {
		return fmt.Errorf("failed to remove video from playlist: %w", err)
	}
	return nil
}

func (r *PlaylistRepo) Clear(ctx context.Context, playlistID string) error {
	ok, err := r.Exists(ctx, playlistID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}

	_, err = r.db.conn.ExecContext(ctx,
		`DELETE FROM playlist_videos WHERE playlist_id = ?`, playlistID)
	if err != nil {
		return fmt.Errorf("failed to clear playlist: %w", err)
	}
	return nil
}

// RecordHistory moves videoID to the front of the history playlist and
// truncates it to the most recent entries, all in one transaction.
func (r *PlaylistRepo) RecordHistory(ctx context.Context, videoID string) error {
	tx, err := r.db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin history update: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM playlist_videos WHERE playlist_id = ? AND video_id = ?`,
		models.PlaylistHistory, videoID); err != nil {
		return fmt.Errorf("failed to remove prior history entry: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE playlist_videos SET position = position + 1 WHERE playlist_id = ?`,
		models.PlaylistHistory); err != nil {
		return fmt.Errorf("failed to shift history: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO playlist_videos (playlist_id, video_id, position) VALUES (?, ?, 0)`,
		models.PlaylistHistory, videoID); err != nil {
		return fmt.Errorf("failed to insert history entry: %w", err)
	}

	truncate := `
		DELETE FROM playlist_videos WHERE playlist_id = ? AND video_id IN (
			SELECT video_id FROM playlist_videos WHERE playlist_id = ?
			ORDER BY position LIMIT -1 OFFSET ?)`
	if _, err := tx.ExecContext(ctx, truncate,
		models.PlaylistHistory, models.PlaylistHistory, models.HistoryLimit); err != nil {
		return fmt.Errorf("failed to truncate history: %w", err)
	}

	return tx.Commit()
}

func (r *PlaylistRepo) VideoIDs(ctx context.Context, playlistID string) ([]string, error) {
	rows, err := r.db.conn.QueryContext(ctx,
		`SELECT video_id FROM playlist_videos WHERE playlist_id = ? ORDER BY position`, playlistID)
	if err != nil {
		return nil, fmt.Errorf("failed to query playlist videos: %w", err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan video id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
