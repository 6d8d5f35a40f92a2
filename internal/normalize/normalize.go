// Package normalize converts raw provider records into canonical Business
// records, resolving a single primary category per record.
package normalize

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kpavlov42/placeradar/internal/catalog"
	"github.com/kpavlov42/placeradar/internal/costs"
	"github.com/kpavlov42/placeradar/internal/domain"
	"github.com/kpavlov42/placeradar/internal/places"
)

const hoursNotAvailable = "Not Available"

// foodPreference is the fixed preference order used when a record matches a
// food-service category.
var foodPreference = []string{"restaurant", "food", "cafe", "meal_takeaway", "meal_delivery"}

// genericTypes never win the primary-category tie-break on their own.
var genericTypes = map[string]struct{}{
	"point_of_interest": {},
	"establishment":     {},
}

type Normalizer struct {
	client  places.Client
	tally   *costs.Tally
	logger  *zap.Logger
	wantAll bool
}

// New builds a normalizer for one search session. wantAll marks sessions
// that requested the full catalog; it widens the candidate set for the
// primary-category choice.
func New(client places.Client, tally *costs.Tally, logger *zap.Logger, wantAll bool) *Normalizer {
	return &Normalizer{
		client:  client,
		tally:   tally,
		logger:  logger,
		wantAll: wantAll,
	}
}

// Normalize converts one raw record. An error means the record must be
// dropped; the caller logs it and continues with the batch.
func (n *Normalizer) Normalize(ctx context.Context, raw places.Place, category catalog.Category) (*domain.Business, error) {
	if raw.PlaceID == "" {
		return nil, domain.ErrMissingProviderID
	}

	if !raw.HasDetails() {
		details, err := n.client.PlaceDetails(ctx, raw.PlaceID, places.DetailFields)
		n.tally.Record(costs.PlaceDetails)
		if err != nil {
			return nil, fmt.Errorf("details lookup: %w", err)
		}
		raw.MergeDetails(details)
	}

	primary, err := n.primaryCategory(&raw, category)
	if err != nil {
		return nil, err
	}

	return &domain.Business{
		Name:            raw.Name,
		Address:         raw.Address(),
		Phone:           raw.FormattedPhoneNumber,
		Website:         raw.Website,
		Email:           extractEmail(raw.Website),
		OpeningHours:    FormatOpeningHours(raw.OpeningHours),
		PrimaryCategory: primary,
		Accessible:      raw.WheelchairAccessibleEntrance,
		ProviderID:      raw.PlaceID,
		Latitude:        raw.Geometry.Location.Lat,
		Longitude:       raw.Geometry.Location.Lng,
	}, nil
}

func (n *Normalizer) primaryCategory(raw *places.Place, category catalog.Category) (string, error) {
	searchTypes := raw.SearchTypes
	if len(searchTypes) == 0 && category != "" {
		searchTypes = []string{string(category)}
	}

	all := union(searchTypes, raw.Types)

	var candidates []string
	if n.wantAll {
		for _, t := range all {
			if catalog.Contains(catalog.Category(t)) {
				candidates = append(candidates, t)
			}
		}
	} else {
		inSearch := make(map[string]struct{}, len(searchTypes))
		for _, t := range searchTypes {
			inSearch[t] = struct{}{}
		}
		for _, t := range all {
			if _, ok := inSearch[t]; ok {
				candidates = append(candidates, t)
			}
		}
	}

	if len(candidates) == 0 {
		if len(searchTypes) == 0 {
			return "", domain.ErrNoPrimaryCategory
		}
		return searchTypes[0], nil
	}

	has := make(map[string]struct{}, len(candidates))
	for _, c := range candidates {
		has[c] = struct{}{}
	}
	for _, pref := range foodPreference {
		if _, ok := has[pref]; ok {
			return pref, nil
		}
	}

	for _, c := range candidates {
		if _, generic := genericTypes[c]; !generic {
			return c, nil
		}
	}

	return candidates[0], nil
}

func union(a, b []string) []string {
	seen := make(map[string]struct{}, len(a)+len(b))
	out := make([]string, 0, len(a)+len(b))
	for _, s := range append(append([]string{}, a...), b...) {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

// extractEmail is a reserved extension point; pulling contact addresses out
// of business websites is out of scope.
func extractEmail(website string) string {
	return ""
}

// FormatOpeningHours renders provider periods as newline-separated 12-hour
// ranges in provider order. Periods that fail to parse are skipped; if none
// parse the result is "Not Available".
func FormatOpeningHours(hours *places.OpeningHours) string {
	if hours == nil || len(hours.Periods) == 0 {
		return hoursNotAvailable
	}

	var lines []string
	for _, period := range hours.Periods {
		if period.Open == nil {
			continue
		}
		open, err := formatClock(period.Open.Time)
		if err != nil {
			continue
		}

		if period.Close == nil {
			lines = append(lines, fmt.Sprintf("Opens at %s", open))
			continue
		}
		closeAt, err := formatClock(period.Close.Time)
		if err != nil {
			continue
		}
		lines = append(lines, fmt.Sprintf("%s - %s", open, closeAt))
	}

	if len(lines) == 0 {
		return hoursNotAvailable
	}
	return strings.Join(lines, "\n")
}

func formatClock(hhmm string) (string, error) {
	t, err := time.Parse("1504", hhmm)
	if err != nil {
		return "", err
	}
	return t.Format("03:04 PM"), nil
}
