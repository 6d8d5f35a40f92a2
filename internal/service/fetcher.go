package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/kpavlov42/placeradar/internal/catalog"
	"github.com/kpavlov42/placeradar/internal/costs"
	"github.com/kpavlov42/placeradar/internal/metrics"
	"github.com/kpavlov42/placeradar/internal/places"
	"github.com/kpavlov42/placeradar/internal/ratelimit"
)

// maxRecordsPerCategory is a hard pagination stop: the fetch loop never
// requests another page once this many records have accumulated, and
// truncates any overflow the final page brought in.
const maxRecordsPerCategory = 60

const (
	DefaultPageInterval     = 2 * time.Second
	DefaultCategoryInterval = 1 * time.Second
)

// fetcher pulls one category's full result set across continuation pages,
// spacing page calls through the pacer and pausing after each category to
// bound the outbound request rate.
type fetcher struct {
	client           places.Client
	tally            *costs.Tally
	pacer            *ratelimit.Pacer
	clock            ratelimit.Clock
	categoryInterval time.Duration
	metrics          *metrics.Metrics
	logger           *zap.Logger
}

func (f *fetcher) fetchCategory(ctx context.Context, loc places.LatLng, radiusMeters int, category catalog.Category) ([]places.Place, error) {
	page, err := f.nearby(ctx, func() (*places.NearbyPage, error) {
		return f.client.NearbySearch(ctx, places.NearbyRequest{
			Location:     loc,
			RadiusMeters: radiusMeters,
			Category:     category,
		})
	})
	if err != nil {
		return nil, err
	}

	records := tagRecords(page.Results, category)

	for page.NextPageToken != "" && len(records) < maxRecordsPerCategory {
		if err := f.pacer.Wait(ctx); err != nil {
			return nil, err
		}

		token := page.NextPageToken
		page, err = f.nearby(ctx, func() (*places.NearbyPage, error) {
			return f.client.NearbySearchPage(ctx, token)
		})
		if err != nil {
			return nil, err
		}

		records = append(records, tagRecords(page.Results, category)...)
	}

	if len(records) > maxRecordsPerCategory {
		records = records[:maxRecordsPerCategory]
	}

	f.logger.Debug("category fetched",
		zap.String("category", string(category)),
		zap.Int("records", len(records)),
	)

	if err := f.clock.Sleep(ctx, f.categoryInterval); err != nil {
		return nil, err
	}

	return records, nil
}

// nearby wraps one billable nearby-search call: every page is a separate
// operation on the bill, so the tally moves on each call. Each call is
// marked on the pacer, so the next page request waits the full interval
// regardless of whether this one went through Wait. The provider needs that
// long before a freshly issued continuation token becomes valid.
func (f *fetcher) nearby(ctx context.Context, call func() (*places.NearbyPage, error)) (*places.NearbyPage, error) {
	start := time.Now()
	page, err := call()
	f.pacer.Mark()
	f.tally.Record(costs.NearbySearch)

	if f.metrics != nil {
		status := "success"
		if err != nil {
			status = "error"
		}
		f.metrics.RecordProviderRequest(string(costs.NearbySearch), status, time.Since(start))
	}

	return page, err
}

func tagRecords(results []places.Place, category catalog.Category) []places.Place {
	out := make([]places.Place, 0, len(results))
	for _, r := range results {
		r.SearchTypes = []string{string(category)}
		out = append(out, r)
	}
	return out
}
