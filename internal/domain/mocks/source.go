package mocks

import (
	"context"

	"github.com/mkrall/gymsync/internal/domain/entities"
)

// ListingSource is a mock implementation of ports.ListingSource. Listings
// are keyed by "gymID/eventType". Err makes every call fail; FailErr with
// FailuresLeft makes only the next N calls fail, for retry tests. OnFetch,
// when set, runs at the start of every call.
type ListingSource struct {
	Listings     map[string][]entities.RawListing
	Err          error
	FailErr      error
	FailuresLeft int
	Calls        int
	OnFetch      func()
}

// NewListingSource creates a new mock ListingSource.
func NewListingSource() *ListingSource {
	return &ListingSource{
		Listings: make(map[string][]entities.RawListing),
	}
}

// SetListings sets the feed for one unit.
func (m *ListingSource) SetListings(gymID string, eventType entities.EventType, listings []entities.RawListing) {
	m.Listings[gymID+"/"+string(eventType)] = listings
}

// FetchListings returns the configured listings for a unit.
func (m *ListingSource) FetchListings(_ context.Context, gymID string, eventType entities.EventType) ([]entities.RawListing, error) {
	m.Calls++
	if m.OnFetch != nil {
		m.OnFetch()
	}
	if m.FailuresLeft > 0 {
		m.FailuresLeft--
		return nil, m.FailErr
	}
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Listings[gymID+"/"+string(eventType)], nil
}
