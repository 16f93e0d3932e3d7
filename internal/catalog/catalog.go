// Package catalog is the single source of truth for imported videos. It is
// the only mutator of entry records and the exclusive owner of every media,
// thumbnail, and subtitle handle.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/vidshelf/vidshelf/internal/database"
	"github.com/vidshelf/vidshelf/internal/models"
	"github.com/vidshelf/vidshelf/internal/probe"
	"github.com/vidshelf/vidshelf/internal/storage"
)

// ErrNotFound is returned for operations against an id the catalog does not
// hold.
var ErrNotFound = errors.New("video not found")

// Notifier receives transient user-facing messages.
type Notifier interface {
	Info(text string)
}

// ImportFile is one raw file in an import batch.
type ImportFile struct {
	Filename    string
	ContentType string
	Size        int64
	Reader      io.Reader
}

// Catalog owns entries and their handles. Derivation of duration and
// thumbnails runs on a background goroutine per import batch; results for
// entries deleted in the meantime are discarded.
type Catalog struct {
	store    storage.Store
	entries  *database.EntryRepo
	prober   probe.Prober
	notifier Notifier
	logger   *slog.Logger

	deriving sync.WaitGroup
}

func New(store storage.Store, entries *database.EntryRepo, prober probe.Prober, notifier Notifier, logger *slog.Logger) *Catalog {
	if logger == nil {
		logger = slog.Default()
	}
	return &Catalog{
		store:    store,
		entries:  entries,
		prober:   prober,
		notifier: notifier,
		logger:   logger,
	}
}

// ImportFiles creates one entry per file, in input order, and returns the
// new ids immediately. Duration and thumbnail derivation happens afterwards
// in the background, sequentially per file; failures there resolve to
// sentinel values and are never surfaced as errors.
func (c *Catalog) ImportFiles(ctx context.Context, files []ImportFile) ([]string, error) {
	var ids []string
	for _, f := range files {
		handle, err := c.store.Save(f.Reader, storage.FileInfo{
			Filename:    f.Filename,
			ContentType: f.ContentType,
			Size:        f.Size,
		})
		if err != nil {
			c.logger.Warn("skipping file, save failed", "filename", f.Filename, "error", err)
			continue
		}

		entry := models.NewVideoEntry(f.Filename, handle, f.ContentType, f.Size)
		if err := c.entries.Insert(ctx, entry); err != nil {
			c.store.Revoke(handle)
			c.logger.Warn("skipping file, insert failed", "filename", f.Filename, "error", err)
			continue
		}
		ids = append(ids, entry.ID)
	}

	if len(ids) > 0 {
		batch := make([]string, len(ids))
		copy(batch, ids)
		c.deriving.Add(1)
		go func() {
			defer c.deriving.Done()
			c.deriveBatch(context.Background(), batch)
		}()
	}

	if c.notifier != nil && len(ids) > 0 {
		c.notifier.Info(fmt.Sprintf("%d videos imported", len(ids)))
	}
	return ids, nil
}

// deriveBatch fills in duration and thumbnail for each entry, one file at a
// time. A slow file delays the rest of its batch; that matches the import
// latency character of the UI this serves.
func (c *Catalog) deriveBatch(ctx context.Context, ids []string) {
	for _, id := range ids {
		entry, err := c.entries.Get(ctx, id)
		if err != nil {
			continue // deleted before derivation started
		}

		mediaPath, err := c.store.Path(entry.MediaHandle)
		if err != nil {
			continue
		}

		duration := c.prober.Duration(ctx, mediaPath)
		if err := c.entries.SetDuration(ctx, id, duration); err != nil {
			if !errors.Is(err, database.ErrNotFound) {
				c.logger.Warn("failed to store duration", "id", id, "error", err)
			}
			continue
		}

		// The preview frame is taken one second in, clamped for clips
		// shorter than that.
		at := 1.0
		if duration > 0 && duration < 1 {
			at = duration / 2
		}
		frame, ok := c.prober.FrameAt(ctx, mediaPath, at)
		if !ok {
			continue
		}
		if err := c.applyThumbnail(ctx, id, frame); err != nil && !errors.Is(err, ErrNotFound) {
			c.logger.Warn("failed to store thumbnail", "id", id, "error", err)
		}
	}
}

// applyThumbnail saves the image, swaps the handle into the entry, and
// revokes the previous one. If the entry is gone the fresh handle is
// revoked right away so nothing leaks.
func (c *Catalog) applyThumbnail(ctx context.Context, id string, jpeg []byte) error {
	handle, err := c.store.SaveBytes(jpeg, ".jpg")
	if err != nil {
		return fmt.Errorf("failed to save thumbnail: %w", err)
	}

	old, err := c.entries.SwapThumbnail(ctx, id, handle)
	if err != nil {
		c.store.Revoke(handle)
		if errors.Is(err, database.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}

	if old != "" {
		if err := c.store.Revoke(old); err != nil {
			c.logger.Warn("failed to revoke previous thumbnail", "id", id, "error", err)
		}
	}
	return nil
}

// UpdateThumbnail replaces the entry's thumbnail with the given image. The
// swap is atomic from the caller's view: the old handle is live until the
// entry points at the new one, and revoked immediately after.
func (c *Catalog) UpdateThumbnail(ctx context.Context, id string, jpeg []byte) error {
	return c.applyThumbnail(ctx, id, jpeg)
}

// CaptureThumbnail grabs a frame from the entry's media at the given
// playhead and installs it as the new thumbnail.
func (c *Catalog) CaptureThumbnail(ctx context.Context, id string, atSeconds float64) error {
	entry, err := c.Get(ctx, id)
	if err != nil {
		return err
	}

	mediaPath, err := c.store.Path(entry.MediaHandle)
	if err != nil {
		return fmt.Errorf("media unavailable: %w", err)
	}

	frame, ok := c.prober.FrameAt(ctx, mediaPath, atSeconds)
	if !ok {
		return fmt.Errorf("frame capture failed")
	}
	return c.applyThumbnail(ctx, id, frame)
}

// AddSubtitle appends a subtitle track labelled with the filename.
// Duplicate labels are permitted.
func (c *Catalog) AddSubtitle(ctx context.Context, id, filename string, r io.Reader) error {
	handle, err := c.store.Save(r, storage.FileInfo{Filename: filename})
	if err != nil {
		return fmt.Errorf("failed to save subtitle: %w", err)
	}

	if err := c.entries.AddSubtitle(ctx, id, filename, handle); err != nil {
		c.store.Revoke(handle)
		if errors.Is(err, database.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

// UpdateProgress records the last known playhead position. No validation
// against duration happens here; that is the player's contract. Progress
// for a deleted entry is dropped silently.
func (c *Catalog) UpdateProgress(ctx context.Context, id string, seconds float64) error {
	err := c.entries.SetProgress(ctx, id, seconds)
	if errors.Is(err, database.ErrNotFound) {
		return nil
	}
	return err
}

// Delete removes the entry and revokes every handle it owns before
// returning. The handles come out of the delete transaction itself, so a
// thumbnail swapped in by an in-flight derivation is either revoked here
// or rejected at the swap. Playlist membership is untouched; dangling ids
// there are rendered as unavailable.
func (c *Catalog) Delete(ctx context.Context, id string) error {
	handles, err := c.entries.Delete(ctx, id)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}

	for _, handle := range handles {
		c.revoke(handle)
	}
	return nil
}

func (c *Catalog) revoke(handle string) {
	if handle == "" {
		return
	}
	if err := c.store.Revoke(handle); err != nil {
		c.logger.Warn("failed to revoke handle", "handle", handle, "error", err)
	}
}

func (c *Catalog) Get(ctx context.Context, id string) (*models.VideoEntry, error) {
	entry, err := c.entries.Get(ctx, id)
	if errors.Is(err, database.ErrNotFound) {
		return nil, ErrNotFound
	}
	return entry, err
}

func (c *Catalog) List(ctx context.Context) ([]models.VideoEntry, error) {
	return c.entries.List(ctx)
}

// Exists reports whether the catalog still holds the id. Playlist rendering
// uses it to mark dangling references.
func (c *Catalog) Exists(ctx context.Context, id string) (bool, error) {
	return c.entries.Exists(ctx, id)
}

// WaitDerivations blocks until all in-flight derivation batches finish.
func (c *Catalog) WaitDerivations() {
	c.deriving.Wait()
}

// Close waits out pending derivations and releases every live handle via
// the store's teardown, which tracks them independently of any entry
// snapshot.
func (c *Catalog) Close() error {
	c.deriving.Wait()
	return c.store.Close()
}
