package domain

import (
	"strings"
	"time"
)

// AreaReference is a resolved search location: the provider's place
// identifier plus the query text the caller originally typed.
type AreaReference struct {
	PlaceID string
	Query   string
}

func (a AreaReference) Validate() error {
	if strings.TrimSpace(a.PlaceID) == "" {
		return ErrEmptyPlaceID
	}
	return nil
}

// Key returns the cache key prefix for this area.
func (a AreaReference) Key() string {
	return a.PlaceID
}

// Business is the canonical output record. PrimaryCategory is always a
// single non-empty value. Persisted identity is (Name, Address), not
// ProviderID.
type Business struct {
	Name            string    `json:"name"`
	Address         string    `json:"address"`
	Phone           string    `json:"phone"`
	Website         string    `json:"website"`
	Email           string    `json:"email"`
	OpeningHours    string    `json:"opening_hours"`
	PrimaryCategory string    `json:"primary_category"`
	Accessible      bool      `json:"accessible"`
	ProviderID      string    `json:"provider_id"`
	Latitude        float64   `json:"latitude"`
	Longitude       float64   `json:"longitude"`
	SearchLocation  string    `json:"search_location"`
	SearchRadiusKM  float64   `json:"search_radius_km"`
	SearchTimestamp time.Time `json:"search_timestamp"`
}

// IdentityKey identifies a business for persisted deduplication.
type IdentityKey struct {
	Name    string
	Address string
}

func (b Business) Identity() IdentityKey {
	return IdentityKey{Name: b.Name, Address: b.Address}
}
