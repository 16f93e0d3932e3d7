package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/vidshelf/vidshelf/internal/models"
)

// EntryRepo persists catalog entries in the session index. The catalog
// service is its only mutator.
type EntryRepo struct {
	db *DB
}

func NewEntryRepo(db *DB) *EntryRepo {
	return &EntryRepo{db: db}
}

func (r *EntryRepo) Insert(ctx context.Context, entry *models.VideoEntry) error {
	query := `
		INSERT INTO videos (id, name, media_handle, mime_type, size_bytes,
			duration_seconds, thumbnail_handle, progress_seconds)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.conn.ExecContext(ctx, query,
		entry.ID,
		entry.Name,
		entry.MediaHandle,
		entry.MimeType,
		entry.SizeBytes,
		entry.DurationSeconds,
		entry.ThumbnailHandle,
		entry.ProgressSeconds,
	)
	if err != nil {
		return fmt.Errorf("failed to insert video: %w", err)
	}
	return nil
}

func (r *EntryRepo) Get(ctx context.Context, id string) (*models.VideoEntry, error) {
	query := `
		SELECT id, name, media_handle, mime_type, size_bytes,
			duration_seconds, thumbnail_handle, progress_seconds
		FROM videos WHERE id = ?`

	entry := &models.VideoEntry{}
	err := r.db.conn.QueryRowContext(ctx, query, id).Scan(
		&entry.ID,
		&entry.Name,
		&entry.MediaHandle,
		&entry.MimeType,
		&entry.SizeBytes,
		&entry.DurationSeconds,
		&entry.ThumbnailHandle,
		&entry.ProgressSeconds,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get video: %w", err)
	}

	tracks, err := r.subtitles(ctx, id)
	if err != nil {
		return nil, err
	}
	entry.SubtitleTracks = tracks
	return entry, nil
}

// List returns every entry in import order, subtitle tracks attached.
func (r *EntryRepo) List(ctx context.Context) ([]models.VideoEntry, error) {
	query := `
		SELECT id, name, media_handle, mime_type, size_bytes,
			duration_seconds, thumbnail_handle, progress_seconds
		FROM videos ORDER BY rowid`

	rows, err := r.db.conn.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list videos: %w", err)
	}
	defer rows.Close()

	var entries []models.VideoEntry
	index := make(map[string]int)
	for rows.Next() {
		var e models.VideoEntry
		err := rows.Scan(&e.ID, &e.Name, &e.MediaHandle, &e.MimeType,
			&e.SizeBytes, &e.DurationSeconds, &e.ThumbnailHandle, &e.ProgressSeconds)
		if err != nil {
			return nil, fmt.Errorf("failed to scan video: %w", err)
		}
		index[e.ID] = len(entries)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	trackRows, err := r.db.conn.QueryContext(ctx,
		`SELECT video_id, label, handle FROM subtitle_tracks ORDER BY video_id, position`)
	if err != nil {
		return nil, fmt.Errorf("failed to list subtitle tracks: %w", err)
	}
	defer trackRows.Close()

	for trackRows.Next() {
		var videoID string
		var track models.SubtitleTrack
		if err := trackRows.Scan(&videoID, &track.Label, &track.Handle); err != nil {
			return nil, fmt.Errorf("failed to scan subtitle track: %w", err)
		}
		if i, ok := index[videoID]; ok {
			entries[i].SubtitleTracks = append(entries[i].SubtitleTracks, track)
		}
	}
	if err := trackRows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating subtitle rows: %w", err)
	}

	return entries, nil
}

func (r *EntryRepo) subtitles(ctx context.Context, videoID string) ([]models.SubtitleTrack, error) {
	rows, err := r.db.conn.QueryContext(ctx,
		`SELECT label, handle FROM subtitle_tracks WHERE video_id = ? ORDER BY position`, videoID)
	if err != nil {
		return nil, fmt.Errorf("failed to query subtitle tracks: %w", err)
	}
	defer rows.Close()

	var tracks []models.SubtitleTrack
	for rows.Next() {
		var t models.SubtitleTrack
		if err := rows.Scan(&t.Label, &t.Handle); err != nil {
			return nil, fmt.Errorf("failed to scan subtitle track: %w", err)
		}
		tracks = append(tracks, t)
	}
	return tracks, rows.Err()
}

// Delete removes the entry and its subtitle rows in one transaction and
// returns every handle the row owned at that instant. Collecting handles
// inside the transaction closes the window against a concurrent thumbnail
// swap: the swap either lands before the delete and its handle is returned
// here, or it hits the missing row and the caller of the swap revokes the
// fresh handle itself.
func (r *EntryRepo) Delete(ctx context.Context, id string) ([]string, error) {
	tx, err := r.db.conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin delete: %w", err)
	}
	defer tx.Rollback()

	var media, thumbnail string
	err = tx.QueryRowContext(ctx,
		`SELECT media_handle, thumbnail_handle FROM videos WHERE id = ?`, id).
		Scan(&media, &thumbnail)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read handles: %w", err)
	}

	handles := []string{media}
	if thumbnail != "" {
		handles = append(handles, thumbnail)
	}

	rows, err := tx.QueryContext(ctx,
		`SELECT handle FROM subtitle_tracks WHERE video_id = ? ORDER BY position`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to read subtitle handles: %w", err)
	}
	for rows.Next() {
		var handle string
		if err := rows.Scan(&handle); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan subtitle handle: %w", err)
		}
		handles = append(handles, handle)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("error iterating subtitle handles: %w", err)
	}
	rows.Close()

	if _, err := tx.ExecContext(ctx, `DELETE FROM subtitle_tracks WHERE video_id = ?`, id); err != nil {
		return nil, fmt.Errorf("failed to delete subtitle tracks: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM videos WHERE id = ?`, id); err != nil {
		return nil, fmt.Errorf("failed to delete video: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return handles, nil
}

// SetDuration applies a derivation result. ErrNotFound means the entry was
// deleted while derivation was in flight; the caller discards the result.
func (r *EntryRepo) SetDuration(ctx context.Context, id string, seconds float64) error {
	return r.update(ctx, `UPDATE videos SET duration_seconds = ? WHERE id = ?`, seconds, id)
}

func (r *EntryRepo) SetProgress(ctx context.Context, id string, seconds float64) error {
	return r.update(ctx, `UPDATE videos SET progress_seconds = ? WHERE id = ?`, seconds, id)
}

func (r *EntryRepo) update(ctx context.Context, query string, args ...any) error {
	res, err := r.db.conn.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update video: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// SwapThumbnail atomically replaces the thumbnail handle and returns the
// previous one ("" if the entry never had a thumbnail) so the caller can
// revoke it.
func (r *EntryRepo) SwapThumbnail(ctx context.Context, id, newHandle string) (string, error) {
	tx, err := r.db.conn.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to begin thumbnail swap: %w", err)
	}
	defer tx.Rollback()

	var old string
	err = tx.QueryRowContext(ctx, `SELECT thumbnail_handle FROM videos WHERE id = ?`, id).Scan(&old)
	if err == sql.ErrNoRows {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to read thumbnail: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `UPDATE videos SET thumbnail_handle = ? WHERE id = ?`, newHandle, id); err != nil {
		return "", fmt.Errorf("failed to update thumbnail: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return "", err
	}
	return old, nil
}

func (r *EntryRepo) AddSubtitle(ctx context.Context, videoID, label, handle string) error {
	ok, err := r.Exists(ctx, videoID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}

	query := `
		INSERT INTO subtitle_tracks (video_id, label, handle, position)
		VALUES (?, ?, ?, (SELECT COALESCE(MAX(position) + 1, 0) FROM subtitle_tracks WHERE video_id = ?))`
	if _, err := r.db.conn.ExecContext(ctx, query, videoID, label, handle, videoID); err != nil {
		return fmt.Errorf("failed to add subtitle track: %w", err)
	}
	return nil
}

func (r *EntryRepo) Exists(ctx context.Context, id string) (bool, error) {
	var one int
	err := r.db.conn.QueryRowContext(ctx, `SELECT 1 FROM videos WHERE id = ?`, id).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check video existence: %w", err)
	}
	return true, nil
}
