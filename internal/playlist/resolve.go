package playlist

import (
	"context"

	"github.com/vidshelf/vidshelf/internal/models"
)

// EntrySource answers whether a video id is still in the catalog and
// yields its entry if so.
type EntrySource interface {
	Get(ctx context.Context, id string) (*models.VideoEntry, error)
}

// ResolvedVideo is one playlist member with its availability. A playlist
// may keep ids of deleted videos indefinitely; those resolve as
// unavailable rather than being pruned.
type ResolvedVideo struct {
	ID        string             `json:"id"`
	Available bool               `json:"available"`
	Entry     *models.VideoEntry `json:"entry,omitempty"`
}

// Resolve maps every membership id to its catalog entry, marking dangling
// references unavailable and keeping playlist order.
func Resolve(ctx context.Context, videoIDs []string, source EntrySource) []ResolvedVideo {
	resolved := make([]ResolvedVideo, 0, len(videoIDs))
	for _, id := range videoIDs {
		entry, err := source.Get(ctx, id)
		if err != nil {
			resolved = append(resolved, ResolvedVideo{ID: id})
			continue
		}
		resolved = append(resolved, ResolvedVideo{ID: id, Available: true, Entry: entry})
	}
	return resolved
}
