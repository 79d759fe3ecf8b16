package ports

import (
	"context"

	"github.com/mkrall/gymsync/internal/domain/entities"
)

// ListingSource delivers freshly scraped listings for one (gym, event type)
// unit. How the listings are collected and validated is out of scope; the
// source is an opaque feed.
type ListingSource interface {
	// FetchListings returns the current listings for a unit. An empty slice
	// with a nil error is a successful zero-result check, distinct from a
	// failed fetch.
	FetchListings(ctx context.Context, gymID string, eventType entities.EventType) ([]entities.RawListing, error)
}
