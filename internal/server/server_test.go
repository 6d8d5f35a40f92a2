package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kpavlov42/placeradar/internal/cache/disk"
	"github.com/kpavlov42/placeradar/internal/catalog"
	"github.com/kpavlov42/placeradar/internal/costs"
	"github.com/kpavlov42/placeradar/internal/domain"
	"github.com/kpavlov42/placeradar/internal/places"
	"github.com/kpavlov42/placeradar/internal/places/mock"
	"github.com/kpavlov42/placeradar/internal/repository"
	"github.com/kpavlov42/placeradar/internal/service"
)

// fastClock advances instantly so search tests skip the pacing delays.
type fastClock struct{ now time.Time }

func (c *fastClock) Now() time.Time { return c.now }

func (c *fastClock) Sleep(ctx context.Context, d time.Duration) error {
	c.now = c.now.Add(d)
	return ctx.Err()
}

func newTestServer(t *testing.T, client *mock.Client, store *repository.MockBusinessStore) *Server {
	t.Helper()

	cache, err := disk.New(disk.Config{Dir: t.TempDir()}, zap.NewNop())
	if err != nil {
		t.Fatalf("disk.New() error = %v", err)
	}
	tally := costs.NewTally()

	agg := service.NewAggregator(service.AggregatorDeps{
		Places: client,
		Cache:  cache,
		Tally:  tally,
		Logger: zap.NewNop(),
		Clock:  &fastClock{now: time.Now()},
	})

	return New(Deps{
		Aggregator: agg,
		Merger:     service.NewMerger(store, zap.NewNop(), nil),
		Places:     client,
		Store:      store,
		Tally:      tally,
		Logger:     zap.NewNop(),
	})
}

func doRequest(t *testing.T, srv *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	return rec
}

func TestServer_Health(t *testing.T) {
	srv := newTestServer(t, mock.New(), &repository.MockBusinessStore{})

	rec := doRequest(t, srv, http.MethodGet, "/health", "")
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

func TestServer_ValidateAddress(t *testing.T) {
	tests := []struct {
		name        string
		suggestions []places.Suggestion
		body        string
		wantStatus  int
	}{
		{
			name: "matches found",
			suggestions: []places.Suggestion{
				{Description: "123 Main St, Springfield", PlaceID: "area-1"},
			},
			body:       `{"address":"123 Main St"}`,
			wantStatus: http.StatusOK,
		},
		{
			name:       "no matches",
			body:       `{"address":"nowhere at all"}`,
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "blank address",
			body:       `{"address":"  "}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "malformed body",
			body:       `{"address":`,
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := mock.New()
			client.Suggestions = tt.suggestions
			srv := newTestServer(t, client, &repository.MockBusinessStore{})

			rec := doRequest(t, srv, http.MethodPost, "/validate-address", tt.body)
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}

			if tt.wantStatus == http.StatusOK {
				var resp map[string][]suggestionResponse
				if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
					t.Fatalf("unmarshal response: %v", err)
				}
				if len(resp["suggestions"]) != len(tt.suggestions) {
					t.Errorf("got %d suggestions, want %d", len(resp["suggestions"]), len(tt.suggestions))
				}
			}
		})
	}
}

func TestServer_Search(t *testing.T) {
	client := mock.New()
	client.Coordinates = places.LatLng{Lat: -33.8, Lng: 151.2}
	client.PagesByCategory = map[catalog.Category][]places.NearbyPage{
		"cafe": {{Results: []places.Place{{
			PlaceID:              "p1",
			Name:                 "Corner Cafe",
			FormattedAddress:     "1 Main St",
			FormattedPhoneNumber: "(02) 9999 0000",
			Types:                []string{"cafe"},
		}}}},
	}
	store := &repository.MockBusinessStore{}
	srv := newTestServer(t, client, store)

	rec := doRequest(t, srv, http.MethodPost, "/search",
		`{"place_id":"area-1","query":"Springfield","categories":["cafe"]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body %s", rec.Code, rec.Body.String())
	}

	var resp searchResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if resp.Found != 1 || resp.Appended != 1 || resp.Total != 1 {
		t.Errorf("found/appended/total = %d/%d/%d, want 1/1/1", resp.Found, resp.Appended, resp.Total)
	}
	if resp.Cost.TotalCost <= 0 {
		t.Errorf("cost = %v, want a positive estimate", resp.Cost.TotalCost)
	}
	if store.SaveCalls != 1 {
		t.Errorf("SaveCalls = %d, want 1", store.SaveCalls)
	}
}

func TestServer_SearchErrors(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{
			name:       "missing place id",
			body:       `{"query":"Springfield","categories":["cafe"]}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "all categories unknown",
			body:       `{"place_id":"area-1","categories":["bogus"]}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "malformed body",
			body:       `{`,
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(t, mock.New(), &repository.MockBusinessStore{})

			rec := doRequest(t, srv, http.MethodPost, "/search", tt.body)
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}

func TestServer_SearchUnresolvableArea(t *testing.T) {
	client := mock.New()
	client.ResolveErr = places.ErrInvalidRequest
	srv := newTestServer(t, client, &repository.MockBusinessStore{})

	rec := doRequest(t, srv, http.MethodPost, "/search",
		`{"place_id":"area-1","categories":["cafe"]}`)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422", rec.Code)
	}
}

func TestServer_Businesses(t *testing.T) {
	store := &repository.MockBusinessStore{}
	store.Seed([]domain.Business{
		{Name: "Corner Cafe", Address: "1 Main St", ProviderID: "p1"},
		{Name: "Pure Bakery", Address: "2 Main St", ProviderID: "p2"},
	})
	srv := newTestServer(t, mock.New(), store)

	rec := doRequest(t, srv, http.MethodGet, "/businesses", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp struct {
		Count      int               `json:"count"`
		Businesses []domain.Business `json:"businesses"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if resp.Count != 2 || len(resp.Businesses) != 2 {
		t.Errorf("count = %d, businesses = %d, want 2 and 2", resp.Count, len(resp.Businesses))
	}
}

func TestServer_Cost(t *testing.T) {
	client := mock.New()
	srv := newTestServer(t, client, &repository.MockBusinessStore{})
	srv.tally.Record(costs.NearbySearch)
	srv.tally.Record(costs.NearbySearch)
	srv.tally.Record(costs.PlaceDetails)

	rec := doRequest(t, srv, http.MethodGet, "/cost", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var est costs.Estimate
	if err := json.Unmarshal(rec.Body.Bytes(), &est); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	want := 2*0.032 + 0.020
	if est.TotalCost != want {
		t.Errorf("TotalCost = %v, want %v", est.TotalCost, want)
	}
}
