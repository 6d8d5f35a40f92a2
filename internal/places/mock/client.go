// Package mock provides a scriptable places.Client for tests.
package mock

import (
	"context"
	"sync"

	"github.com/kpavlov42/placeradar/internal/catalog"
	"github.com/kpavlov42/placeradar/internal/places"
)

type Client struct {
	Suggestions []places.Suggestion
	Coordinates places.LatLng
	ResolveErr  error

	// Pages scripts pagination for every category; PagesByCategory overrides
	// it per category. NearbySearch serves page 0, NearbySearchPage the rest.
	Pages           []places.NearbyPage
	PagesByCategory map[catalog.Category][]places.NearbyPage
	NearbyErrs      map[catalog.Category]error
	NearbyErr       error

	// Loop keeps serving the last scripted page once the script is
	// exhausted, so its token never runs out.
	Loop bool

	Details    map[string]*places.Place
	DetailsErr error

	NearbyCalls  int
	PageCalls    int
	DetailsCalls int
	LastNearby   places.NearbyRequest

	mu      sync.Mutex
	script  []places.NearbyPage
	pageIdx int
}

func New() *Client {
	return &Client{}
}

func (c *Client) Autocomplete(ctx context.Context, input string) ([]places.Suggestion, error) {
	return c.Suggestions, nil
}

func (c *Client) ResolveCoordinates(ctx context.Context, placeID string) (places.LatLng, error) {
	if c.ResolveErr != nil {
		return places.LatLng{}, c.ResolveErr
	}
	return c.Coordinates, nil
}

func (c *Client) NearbySearch(ctx context.Context, req places.NearbyRequest) (*places.NearbyPage, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.NearbyCalls++
	c.LastNearby = req

	if err, ok := c.NearbyErrs[req.Category]; ok {
		return nil, err
	}
	if c.NearbyErr != nil {
		return nil, c.NearbyErr
	}

	c.script = c.Pages
	if pages, ok := c.PagesByCategory[req.Category]; ok {
		c.script = pages
	}
	c.pageIdx = 1

	if len(c.script) == 0 {
		return &places.NearbyPage{}, nil
	}
	page := c.script[0]
	return &page, nil
}

func (c *Client) NearbySearchPage(ctx context.Context, pageToken string) (*places.NearbyPage, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.PageCalls++

	if c.pageIdx >= len(c.script) {
		if c.Loop && len(c.script) > 0 {
			page := c.script[len(c.script)-1]
			return &page, nil
		}
		return &places.NearbyPage{}, nil
	}

	page := c.script[c.pageIdx]
	c.pageIdx++
	return &page, nil
}

func (c *Client) PlaceDetails(ctx context.Context, placeID string, fields []string) (*places.Place, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.DetailsCalls++

	if c.DetailsErr != nil {
		return nil, c.DetailsErr
	}
	if d, ok := c.Details[placeID]; ok {
		copied := *d
		return &copied, nil
	}
	return nil, places.ErrNotFound
}
