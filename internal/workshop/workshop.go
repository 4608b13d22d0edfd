// Package workshop wraps the third-party subscription service: searching
// published levels, managing subscriptions and listing subscribed content
// that the service has synced to disk.
package workshop

import (
	"context"
	"errors"

	"github.com/blackwell-systems/levelshelf/internal/catalog"
)

// ErrUnknownItem is returned when an ID is not published on the service.
var ErrUnknownItem = errors.New("unknown workshop item")

// SearchResult is one page of workshop search results.
type SearchResult struct {
	Items []catalog.Level
	Count int
}

// Service is the subscription SDK surface the browser depends on.
type Service interface {
	// Subscribed lists the levels the user is subscribed to.
	Subscribed(ctx context.Context) ([]catalog.Level, error)
	// Search returns one page of published levels matching query.
	Search(ctx context.Context, query string, page int) (SearchResult, error)
	Subscribe(ctx context.Context, id string) error
	Unsubscribe(ctx context.Context, id string) error
	// Preview returns the raw preview image for a level.
	Preview(ctx context.Context, id string) ([]byte, error)
}
