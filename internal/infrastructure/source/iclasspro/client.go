// Package iclasspro implements the ListingSource port against the collector
// API that scrapes the booking portal and runs the content checker.
package iclasspro

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mkrall/gymsync/internal/domain/entities"
	"github.com/mkrall/gymsync/internal/infrastructure/config"
)

// Client fetches scraped listings from the collector API. Authentication is
// a static API key header.
type Client struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// listingsResponse is the collector's fetch payload.
type listingsResponse struct {
	Events []entities.RawListing `json:"events"`
}

// NewClient creates a new collector API client.
func NewClient(cfg config.SourceConfig) *Client {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	tr := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   5 * time.Second,
			KeepAlive: 60 * time.Second,
		}).DialContext,
		MaxIdleConns:        100,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 5 * time.Second,
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  strings.TrimSpace(cfg.APIKey),
		client: &http.Client{
			Timeout:   timeout,
			Transport: tr,
		},
	}
}

// FetchListings returns the current listings for one (gym, event type)
// unit. A 200 with an empty events array is a successful zero-result check.
func (c *Client) FetchListings(ctx context.Context, gymID string, eventType entities.EventType) ([]entities.RawListing, error) {
	q := url.Values{}
	q.Set("gym_id", gymID)
	q.Set("event_type", string(eventType))

	u := fmt.Sprintf("%s/api/events?%s", c.baseURL, q.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("collector: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, fmt.Errorf("collector: rate limited (%d)", resp.StatusCode)
	}
	if resp.StatusCode/100 != 2 {
		return nil, fmt.Errorf("collector: http %d", resp.StatusCode)
	}

	var data listingsResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("collector: decoding response: %w", err)
	}
	return data.Events, nil
}
