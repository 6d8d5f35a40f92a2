package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kpavlov42/placeradar/internal/cache/disk"
	"github.com/kpavlov42/placeradar/internal/catalog"
	"github.com/kpavlov42/placeradar/internal/costs"
	"github.com/kpavlov42/placeradar/internal/domain"
	"github.com/kpavlov42/placeradar/internal/metrics"
	"github.com/kpavlov42/placeradar/internal/normalize"
	"github.com/kpavlov42/placeradar/internal/places"
	"github.com/kpavlov42/placeradar/internal/ratelimit"
)

// SearchRequest describes one aggregation session.
type SearchRequest struct {
	Area         domain.AreaReference
	RadiusMeters int
	Categories   []string

	// Location is the human-readable label stamped onto results; defaults
	// to the area's original query text.
	Location string
}

type Aggregator interface {
	Search(ctx context.Context, req SearchRequest) ([]domain.Business, error)
}

type AggregatorConfig struct {
	RadiusMeters     int
	PageInterval     time.Duration
	CategoryInterval time.Duration
}

type AggregatorDeps struct {
	Places places.Client
	Cache  *disk.Cache
	Tally  *costs.Tally
	Logger *zap.Logger
	Config AggregatorConfig

	// optional
	Metrics *metrics.Metrics
	Clock   ratelimit.Clock
}

type aggregator struct {
	places  places.Client
	cache   *disk.Cache
	tally   *costs.Tally
	logger  *zap.Logger
	metrics *metrics.Metrics
	clock   ratelimit.Clock
	config  AggregatorConfig
}

func NewAggregator(deps AggregatorDeps) Aggregator {
	if deps.Config.RadiusMeters == 0 {
		deps.Config.RadiusMeters = 2500
	}
	if deps.Config.PageInterval == 0 {
		deps.Config.PageInterval = DefaultPageInterval
	}
	if deps.Config.CategoryInterval == 0 {
		deps.Config.CategoryInterval = DefaultCategoryInterval
	}
	if deps.Clock == nil {
		deps.Clock = ratelimit.SystemClock()
	}

	return &aggregator{
		places:  deps.Places,
		cache:   deps.Cache,
		tally:   deps.Tally,
		logger:  deps.Logger,
		metrics: deps.Metrics,
		clock:   deps.Clock,
		config:  deps.Config,
	}
}

// Search fans the area query out across the requested categories, reusing
// fresh cached result sets and fetching the rest, then merges everything
// into one provider-id-deduplicated list. Categories fail independently;
// only an unresolvable area or an entirely invalid category list aborts the
// session.
func (s *aggregator) Search(ctx context.Context, req SearchRequest) ([]domain.Business, error) {
	if err := req.Area.Validate(); err != nil {
		return nil, err
	}

	radius := req.RadiusMeters
	if radius <= 0 {
		radius = s.config.RadiusMeters
	}

	wantAll, cats, err := s.resolveCategories(req.Categories)
	if err != nil {
		return nil, err
	}
	if len(cats) == 0 {
		return nil, nil
	}

	loc, err := s.places.ResolveCoordinates(ctx, req.Area.PlaceID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrAreaNotResolved, err)
	}

	s.logger.Info("search session started",
		zap.String("place_id", req.Area.PlaceID),
		zap.Int("radius_m", radius),
		zap.Int("categories", len(cats)),
		zap.Bool("all_categories", wantAll),
	)

	f := &fetcher{
		client:           s.places,
		tally:            s.tally,
		pacer:            ratelimit.New(ratelimit.Config{Interval: s.config.PageInterval, Clock: s.clock}),
		clock:            s.clock,
		categoryInterval: s.config.CategoryInterval,
		metrics:          s.metrics,
		logger:           s.logger,
	}
	normalizer := normalize.New(s.places, s.tally, s.logger, wantAll)

	label := req.Location
	if label == "" {
		label = req.Area.Query
	}
	radiusKM := float64(radius) / 1000

	var merged []domain.Business
	seen := make(map[string]struct{})

	for _, category := range cats {
		businesses := s.categoryResults(ctx, f, normalizer, req.Area, loc, radius, category, label, radiusKM)

		for _, b := range businesses {
			if _, dup := seen[b.ProviderID]; dup {
				continue
			}
			seen[b.ProviderID] = struct{}{}
			merged = append(merged, b)
		}

		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
	}

	s.logger.Info("search session finished",
		zap.Int("businesses", len(merged)),
		zap.Int("nearby_calls", s.tally.Count(costs.NearbySearch)),
		zap.Int("details_calls", s.tally.Count(costs.PlaceDetails)),
	)

	return merged, nil
}

// categoryResults produces one category's contribution: a fresh cache entry
// as-is, or a fetch+normalize+cache round. Failures are absorbed here and
// yield an empty contribution.
func (s *aggregator) categoryResults(
	ctx context.Context,
	f *fetcher,
	normalizer *normalize.Normalizer,
	area domain.AreaReference,
	loc places.LatLng,
	radius int,
	category catalog.Category,
	label string,
	radiusKM float64,
) []domain.Business {
	if entry, ok := s.cache.Get(area.Key(), category); ok && s.cache.Fresh(entry) {
		if s.metrics != nil {
			s.metrics.RecordCacheHit()
		}
		s.logger.Debug("cache hit",
			zap.String("category", string(category)),
			zap.Int("records", len(entry.Businesses)),
		)
		return entry.Businesses
	}
	if s.metrics != nil {
		s.metrics.RecordCacheMiss()
	}

	raws, err := f.fetchCategory(ctx, loc, radius, category)
	if err != nil {
		s.logger.Warn("category fetch failed, contributing zero results",
			zap.Error(err),
			zap.String("category", string(category)),
		)
		return nil
	}

	stamp := s.clock.Now()
	businesses := make([]domain.Business, 0, len(raws))
	for _, raw := range raws {
		b, err := normalizer.Normalize(ctx, raw, category)
		if err != nil {
			s.logger.Warn("record dropped",
				zap.Error(err),
				zap.String("place_id", raw.PlaceID),
				zap.String("category", string(category)),
			)
			continue
		}
		b.SearchLocation = label
		b.SearchRadiusKM = radiusKM
		b.SearchTimestamp = stamp
		businesses = append(businesses, *b)
	}

	if err := s.cache.Put(area.Key(), category, businesses); err != nil {
		s.logger.Warn("cache write failed",
			zap.Error(err),
			zap.String("category", string(category)),
		)
	}

	return businesses
}

// resolveCategories expands the wildcard, filters unknown tags with a
// warning and deduplicates while preserving request order. Unknown tags are
// reported even when the wildcard makes them redundant.
func (s *aggregator) resolveCategories(requested []string) (wantAll bool, cats []catalog.Category, err error) {
	rest := make([]string, 0, len(requested))
	for _, r := range requested {
		if r == catalog.Wildcard {
			wantAll = true
			continue
		}
		rest = append(rest, r)
	}

	valid, rejected := catalog.Validate(rest)
	for _, r := range rejected {
		s.logger.Warn("unknown category ignored", zap.String("category", r))
	}

	if wantAll {
		return true, catalog.All(), nil
	}
	if len(requested) > 0 && len(valid) == 0 {
		return false, nil, domain.ErrNoValidCategories
	}

	seen := make(map[catalog.Category]struct{}, len(valid))
	for _, c := range valid {
		if _, dup := seen[c]; dup {
			continue
		}
		seen[c] = struct{}{}
		cats = append(cats, c)
	}
	return false, cats, nil
}
