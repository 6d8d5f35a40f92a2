package places

import (
	"context"
	"errors"

	"github.com/kpavlov42/placeradar/internal/catalog"
)

var (
	ErrUnauthorized   = errors.New("invalid API key")
	ErrQuotaExceeded  = errors.New("query quota exceeded")
	ErrInvalidRequest = errors.New("invalid request parameters")
	ErrRequestFailed  = errors.New("places request failed")
	ErrNotFound       = errors.New("place not found")
)

// Client is the remote places provider. Each method maps onto one billable
// provider operation.
type Client interface {
	Autocomplete(ctx context.Context, input string) ([]Suggestion, error)
	ResolveCoordinates(ctx context.Context, placeID string) (LatLng, error)
	NearbySearch(ctx context.Context, req NearbyRequest) (*NearbyPage, error)
	NearbySearchPage(ctx context.Context, pageToken string) (*NearbyPage, error)
	PlaceDetails(ctx context.Context, placeID string, fields []string) (*Place, error)
}

type Suggestion struct {
	Description string `json:"description"`
	PlaceID     string `json:"place_id"`
}

type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type NearbyRequest struct {
	Location     LatLng
	RadiusMeters int
	Category     catalog.Category
}

// NearbyPage is one page of nearby-search results. A non-empty NextPageToken
// means more pages exist.
type NearbyPage struct {
	Results       []Place
	NextPageToken string
}

// Place is the provider-native representation of one place. SearchTypes
// records the categories under which the record was discovered; it is filled
// by the fetch loop, not by the provider.
type Place struct {
	PlaceID                      string        `json:"place_id"`
	Name                         string        `json:"name"`
	Vicinity                     string        `json:"vicinity,omitempty"`
	FormattedAddress             string        `json:"formatted_address,omitempty"`
	FormattedPhoneNumber         string        `json:"formatted_phone_number,omitempty"`
	Website                      string        `json:"website,omitempty"`
	BusinessStatus               string        `json:"business_status,omitempty"`
	Types                        []string      `json:"types,omitempty"`
	Geometry                     Geometry      `json:"geometry"`
	OpeningHours                 *OpeningHours `json:"opening_hours,omitempty"`
	WheelchairAccessibleEntrance bool          `json:"wheelchair_accessible_entrance,omitempty"`

	SearchTypes []string `json:"search_types,omitempty"`
}

type Geometry struct {
	Location LatLng `json:"location"`
}

type OpeningHours struct {
	Periods []Period `json:"periods,omitempty"`
}

// Period is one open interval. Close may be absent for places that never
// close.
type Period struct {
	Open  *TimePoint `json:"open,omitempty"`
	Close *TimePoint `json:"close,omitempty"`
}

// TimePoint carries the provider's HHMM 24-hour clock string.
type TimePoint struct {
	Day  int    `json:"day"`
	Time string `json:"time"`
}

// Address returns the best available address for the place.
func (p *Place) Address() string {
	if p.FormattedAddress != "" {
		return p.FormattedAddress
	}
	return p.Vicinity
}

// HasDetails reports whether the record already carries the detail fields a
// nearby-search response omits.
func (p *Place) HasDetails() bool {
	return p.FormattedAddress != "" && p.FormattedPhoneNumber != ""
}

// MergeDetails copies fields from a details lookup into the receiver without
// overwriting values already present.
func (p *Place) MergeDetails(d *Place) {
	if d == nil {
		return
	}
	if p.Name == "" {
		p.Name = d.Name
	}
	if p.FormattedAddress == "" {
		p.FormattedAddress = d.FormattedAddress
	}
	if p.FormattedPhoneNumber == "" {
		p.FormattedPhoneNumber = d.FormattedPhoneNumber
	}
	if p.Website == "" {
		p.Website = d.Website
	}
	if p.BusinessStatus == "" {
		p.BusinessStatus = d.BusinessStatus
	}
	if p.OpeningHours == nil {
		p.OpeningHours = d.OpeningHours
	}
	if len(p.Types) == 0 {
		p.Types = d.Types
	}
	if p.Geometry.Location == (LatLng{}) {
		p.Geometry = d.Geometry
	}
	if d.WheelchairAccessibleEntrance {
		p.WheelchairAccessibleEntrance = true
	}
}

// DetailFields is the field mask requested on details lookups. The advanced
// fields here put details calls in the provider's higher billing tier.
var DetailFields = []string{
	"name",
	"formatted_address",
	"formatted_phone_number",
	"website",
	"opening_hours",
	"business_status",
	"geometry",
	"types",
	"wheelchair_accessible_entrance",
}
