package search

import (
	"context"
	"errors"
	"strings"

	"github.com/vidshelf/vidshelf/internal/models"
)

// ErrMissingQuery is returned when the query normalizes to nothing. The
// caller surfaces this as a missing-parameter condition, distinct from a
// search with zero results.
var ErrMissingQuery = errors.New("missing search query")

// Lister supplies the candidate entries in catalog order.
type Lister interface {
	List(ctx context.Context) ([]models.VideoEntry, error)
}

// Engine matches free-text queries against entry names.
type Engine struct {
	entries Lister
}

func NewEngine(entries Lister) *Engine {
	return &Engine{entries: entries}
}

// Search returns the entries whose normalized name contains at least one
// normalized query token as a substring, preserving catalog insertion
// order. There is no relevance ranking.
func (e *Engine) Search(ctx context.Context, query string) ([]models.VideoEntry, error) {
	tokens := Tokens(query)
	if len(tokens) == 0 {
		return nil, ErrMissingQuery
	}

	entries, err := e.entries.List(ctx)
	if err != nil {
		return nil, err
	}

	results := []models.VideoEntry{}
	for _, entry := range entries {
		if Matches(tokens, entry.Name) {
			results = append(results, entry)
		}
	}
	return results, nil
}

// Matches reports whether any query token is a substring of the candidate
// name after both sides are normalized.
func Matches(queryTokens []string, name string) bool {
	candidate := strings.Join(Tokens(name), " ")
	for _, token := range queryTokens {
		if strings.Contains(candidate, token) {
			return true
		}
	}
	return false
}
