package normalize

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/kpavlov42/placeradar/internal/costs"
	"github.com/kpavlov42/placeradar/internal/places"
	"github.com/kpavlov42/placeradar/internal/places/mock"
)

func detailedPlace() places.Place {
	return places.Place{
		PlaceID:              "p1",
		Name:                 "Corner Cafe",
		FormattedAddress:     "1 Main St, Springfield",
		FormattedPhoneNumber: "(02) 9999 0000",
		Website:              "https://cornercafe.example",
		Types:                []string{"cafe", "point_of_interest", "establishment"},
		Geometry:             places.Geometry{Location: places.LatLng{Lat: -33.86, Lng: 151.2}},
		SearchTypes:          []string{"cafe"},
	}
}

func TestNormalizer_Normalize(t *testing.T) {
	client := mock.New()
	tally := costs.NewTally()
	n := New(client, tally, zap.NewNop(), false)

	business, err := n.Normalize(context.Background(), detailedPlace(), "cafe")
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}

	if business.Name != "Corner Cafe" {
		t.Errorf("Name = %q", business.Name)
	}
	if business.Address != "1 Main St, Springfield" {
		t.Errorf("Address = %q", business.Address)
	}
	if business.PrimaryCategory != "cafe" {
		t.Errorf("PrimaryCategory = %q, want cafe", business.PrimaryCategory)
	}
	if business.Email != "" {
		t.Errorf("Email = %q, want empty (extraction is stubbed)", business.Email)
	}
	if business.ProviderID != "p1" {
		t.Errorf("ProviderID = %q", business.ProviderID)
	}
	if client.DetailsCalls != 0 {
		t.Errorf("DetailsCalls = %d, want 0 for a detailed record", client.DetailsCalls)
	}
	if got := tally.Count(costs.PlaceDetails); got != 0 {
		t.Errorf("place_details tally = %d, want 0", got)
	}
}

func TestNormalizer_DetailsLookupWhenSparse(t *testing.T) {
	client := mock.New()
	client.Details = map[string]*places.Place{
		"p1": {
			PlaceID:              "p1",
			Name:                 "Corner Cafe",
			FormattedAddress:     "1 Main St, Springfield",
			FormattedPhoneNumber: "(02) 9999 0000",
			Website:              "https://cornercafe.example",
		},
	}
	tally := costs.NewTally()
	n := New(client, tally, zap.NewNop(), false)

	sparse := places.Place{
		PlaceID:     "p1",
		Name:        "Corner Cafe",
		Vicinity:    "Main St",
		Types:       []string{"cafe"},
		SearchTypes: []string{"cafe"},
	}

	business, err := n.Normalize(context.Background(), sparse, "cafe")
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}

	if client.DetailsCalls != 1 {
		t.Errorf("DetailsCalls = %d, want 1", client.DetailsCalls)
	}
	if got := tally.Count(costs.PlaceDetails); got != 1 {
		t.Errorf("place_details tally = %d, want 1", got)
	}
	if business.Phone != "(02) 9999 0000" {
		t.Errorf("Phone = %q, want merged detail value", business.Phone)
	}
	if business.Address != "1 Main St, Springfield" {
		t.Errorf("Address = %q, want merged detail value", business.Address)
	}
}

func TestNormalizer_DetailsFailureDropsRecord(t *testing.T) {
	client := mock.New()
	client.DetailsErr = errors.New("boom")
	n := New(client, costs.NewTally(), zap.NewNop(), false)

	sparse := places.Place{PlaceID: "p1", Name: "Corner Cafe", SearchTypes: []string{"cafe"}}

	if _, err := n.Normalize(context.Background(), sparse, "cafe"); err == nil {
		t.Error("Normalize() error = nil, want details failure")
	}
}

func TestNormalizer_PrimaryCategory(t *testing.T) {
	tests := []struct {
		name        string
		wantAll     bool
		searchTypes []string
		types       []string
		want        string
	}{
		{
			name:        "food preference beats generic",
			wantAll:     true,
			searchTypes: []string{"cafe"},
			types:       []string{"point_of_interest", "cafe", "establishment"},
			want:        "cafe",
		},
		{
			name:        "restaurant beats cafe in preference order",
			wantAll:     true,
			searchTypes: []string{"cafe"},
			types:       []string{"cafe", "restaurant"},
			want:        "restaurant",
		},
		{
			name:        "first non generic wins",
			wantAll:     true,
			searchTypes: []string{"bakery"},
			types:       []string{"point_of_interest", "bakery", "store"},
			want:        "bakery",
		},
		{
			name:        "all generic falls back to first candidate",
			wantAll:     false,
			searchTypes: []string{"point_of_interest", "establishment"},
			types:       []string{"point_of_interest", "establishment"},
			want:        "point_of_interest",
		},
		{
			name:        "no candidates falls back to search type",
			wantAll:     true,
			searchTypes: []string{"tanning_studio"},
			types:       []string{"some_unknown_type"},
			want:        "tanning_studio",
		},
		{
			name:        "scoped session ignores provider-only types",
			wantAll:     false,
			searchTypes: []string{"bakery"},
			types:       []string{"restaurant", "bakery"},
			want:        "bakery",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := New(mock.New(), costs.NewTally(), zap.NewNop(), tt.wantAll)

			raw := detailedPlace()
			raw.SearchTypes = tt.searchTypes
			raw.Types = tt.types

			business, err := n.Normalize(context.Background(), raw, "")
			if err != nil {
				t.Fatalf("Normalize() error = %v", err)
			}
			if business.PrimaryCategory != tt.want {
				t.Errorf("PrimaryCategory = %q, want %q", business.PrimaryCategory, tt.want)
			}
		})
	}
}

func TestFormatOpeningHours(t *testing.T) {
	tests := []struct {
		name  string
		hours *places.OpeningHours
		want  string
	}{
		{
			name: "open and close",
			hours: &places.OpeningHours{Periods: []places.Period{
				{Open: &places.TimePoint{Time: "0900"}, Close: &places.TimePoint{Time: "1700"}},
			}},
			want: "09:00 AM - 05:00 PM",
		},
		{
			name: "no close time",
			hours: &places.OpeningHours{Periods: []places.Period{
				{Open: &places.TimePoint{Time: "0800"}},
			}},
			want: "Opens at 08:00 AM",
		},
		{
			name: "multiple periods in provider order",
			hours: &places.OpeningHours{Periods: []places.Period{
				{Open: &places.TimePoint{Time: "1700"}, Close: &places.TimePoint{Time: "2200"}},
				{Open: &places.TimePoint{Time: "0900"}, Close: &places.TimePoint{Time: "1200"}},
			}},
			want: "05:00 PM - 10:00 PM\n09:00 AM - 12:00 PM",
		},
		{
			name: "malformed period skipped",
			hours: &places.OpeningHours{Periods: []places.Period{
				{Open: &places.TimePoint{Time: "0900"}, Close: &places.TimePoint{Time: "1700"}},
				{Open: &places.TimePoint{Time: "9999"}, Close: &places.TimePoint{Time: "1800"}},
				{Open: &places.TimePoint{Time: "1900"}, Close: &places.TimePoint{Time: "2300"}},
			}},
			want: "09:00 AM - 05:00 PM\n07:00 PM - 11:00 PM",
		},
		{
			name:  "no periods",
			hours: &places.OpeningHours{},
			want:  "Not Available",
		},
		{
			name:  "nil hours",
			hours: nil,
			want:  "Not Available",
		},
		{
			name: "all periods malformed",
			hours: &places.OpeningHours{Periods: []places.Period{
				{Open: &places.TimePoint{Time: "nope"}},
			}},
			want: "Not Available",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatOpeningHours(tt.hours); got != tt.want {
				t.Errorf("FormatOpeningHours() = %q, want %q", got, tt.want)
			}
		})
	}
}
