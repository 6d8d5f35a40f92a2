package google

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kpavlov42/placeradar/internal/places"
)

type Config struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
}

type Client struct {
	apiKey  string
	baseURL string
	client  *http.Client
	logger  *zap.Logger
}

func New(cfg Config, logger *zap.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://maps.googleapis.com"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}

	return &Client{
		apiKey:  cfg.APIKey,
		baseURL: cfg.BaseURL,
		client:  &http.Client{Timeout: cfg.Timeout},
		logger:  logger,
	}
}

type envelope struct {
	Status       string              `json:"status"`
	ErrorMessage string              `json:"error_message,omitempty"`
	Results      []places.Place      `json:"results,omitempty"`
	Result       *places.Place       `json:"result,omitempty"`
	Predictions  []places.Suggestion `json:"predictions,omitempty"`
	NextPage     string              `json:"next_page_token,omitempty"`
}

func (c *Client) Autocomplete(ctx context.Context, input string) ([]places.Suggestion, error) {
	params := url.Values{}
	params.Set("input", input)
	params.Set("types", "geocode")

	env, err := c.get(ctx, "/maps/api/place/autocomplete/json", params)
	if err != nil {
		return nil, err
	}
	return env.Predictions, nil
}

func (c *Client) ResolveCoordinates(ctx context.Context, placeID string) (places.LatLng, error) {
	place, err := c.PlaceDetails(ctx, placeID, []string{"geometry"})
	if err != nil {
		return places.LatLng{}, err
	}
	if place.Geometry.Location == (places.LatLng{}) {
		return places.LatLng{}, places.ErrNotFound
	}
	return place.Geometry.Location, nil
}

func (c *Client) NearbySearch(ctx context.Context, req places.NearbyRequest) (*places.NearbyPage, error) {
	params := url.Values{}
	params.Set("location", fmt.Sprintf("%f,%f", req.Location.Lat, req.Location.Lng))
	params.Set("radius", strconv.Itoa(req.RadiusMeters))
	if req.Category != "" {
		params.Set("type", string(req.Category))
	}

	env, err := c.get(ctx, "/maps/api/place/nearbysearch/json", params)
	if err != nil {
		return nil, err
	}
	return &places.NearbyPage{Results: env.Results, NextPageToken: env.NextPage}, nil
}

func (c *Client) NearbySearchPage(ctx context.Context, pageToken string) (*places.NearbyPage, error) {
	params := url.Values{}
	params.Set("pagetoken", pageToken)

	env, err := c.get(ctx, "/maps/api/place/nearbysearch/json", params)
	if err != nil {
		return nil, err
	}
	return &places.NearbyPage{Results: env.Results, NextPageToken: env.NextPage}, nil
}

func (c *Client) PlaceDetails(ctx context.Context, placeID string, fields []string) (*places.Place, error) {
	params := url.Values{}
	params.Set("place_id", placeID)
	if len(fields) > 0 {
		params.Set("fields", strings.Join(fields, ","))
	}

	env, err := c.get(ctx, "/maps/api/place/details/json", params)
	if err != nil {
		return nil, err
	}
	if env.Result == nil {
		return nil, places.ErrNotFound
	}
	return env.Result, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values) (*envelope, error) {
	params.Set("key", c.apiKey)
	fullURL := c.baseURL + path + "?" + params.Encode()

	var lastErr error
	backoff := []time.Duration{1 * time.Second, 2 * time.Second, 4 * time.Second}

	for attempt := 0; attempt <= len(backoff); attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff[attempt-1]):
			}
		}

		httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
		if err != nil {
			return nil, fmt.Errorf("create request: %w", err)
		}

		resp, err := c.client.Do(httpReq)
		if err != nil {
			lastErr = fmt.Errorf("do request: %w", err)
			continue
		}

		respBody, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("read response: %w", err)
			continue
		}

		if resp.StatusCode >= 500 {
			lastErr = fmt.Errorf("server error: %d", resp.StatusCode)
			continue
		}
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("%w: status %d", places.ErrRequestFailed, resp.StatusCode)
		}

		var env envelope
		if err := json.Unmarshal(respBody, &env); err != nil {
			return nil, fmt.Errorf("unmarshal response: %w", err)
		}

		if err := c.checkStatus(&env); err != nil {
			return nil, err
		}
		return &env, nil
	}

	if lastErr != nil {
		return nil, fmt.Errorf("%w: %v", places.ErrRequestFailed, lastErr)
	}
	return nil, places.ErrRequestFailed
}

// checkStatus maps the provider's body-level status onto sentinel errors.
// ZERO_RESULTS is not an error: the envelope simply carries no results.
func (c *Client) checkStatus(env *envelope) error {
	switch env.Status {
	case "OK", "ZERO_RESULTS":
		return nil
	case "REQUEST_DENIED":
		return places.ErrUnauthorized
	case "OVER_QUERY_LIMIT":
		return places.ErrQuotaExceeded
	case "INVALID_REQUEST":
		return places.ErrInvalidRequest
	case "NOT_FOUND":
		return places.ErrNotFound
	default:
		if env.ErrorMessage != "" {
			c.logger.Warn("places api error",
				zap.String("status", env.Status),
				zap.String("message", env.ErrorMessage),
			)
		}
		return fmt.Errorf("%w: status %s", places.ErrRequestFailed, env.Status)
	}
}
