// Command placeradar discovers businesses around an address and appends the
// new ones to the output collection.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/kpavlov42/placeradar/internal/cache/disk"
	"github.com/kpavlov42/placeradar/internal/config"
	"github.com/kpavlov42/placeradar/internal/costs"
	"github.com/kpavlov42/placeradar/internal/domain"
	"github.com/kpavlov42/placeradar/internal/places/google"
	"github.com/kpavlov42/placeradar/internal/repository/jsonfile"
	"github.com/kpavlov42/placeradar/internal/service"
)

func main() {
	address := flag.String("address", "", "address or suburb to search around")
	categories := flag.String("categories", "all", "comma-separated category list, or \"all\"")
	location := flag.String("location", "", "label stamped onto results, defaults to the matched address")
	radiusKM := flag.Float64("radius-km", 0, "search radius in kilometers (2.5, 5 or 10)")
	output := flag.String("output", "", "output JSON path, overrides OUTPUT_PATH")
	flag.Parse()

	if *address == "" {
		fmt.Fprintln(os.Stderr, "usage: placeradar -address <address> [-categories cafe,bakery] [-radius-km 2.5]")
		os.Exit(2)
	}

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	if *radiusKM != 0 {
		cfg.Search.RadiusMeters = int(*radiusKM * 1000)
		if err := cfg.Validate(); err != nil {
			fmt.Fprintln(os.Stderr, "config:", err)
			os.Exit(1)
		}
	}
	if *output != "" {
		cfg.Store.OutputPath = *output
	}

	logger, err := config.NewLogger(cfg.Log.Level)
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(context.Background(), cfg, logger, *address, *location, splitCategories(*categories)); err != nil {
		logger.Error("search failed", zap.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *zap.Logger, address, location string, categories []string) error {
	client := google.New(google.Config{
		APIKey:  cfg.Google.APIKey,
		BaseURL: cfg.Google.BaseURL,
		Timeout: cfg.Google.Timeout,
	}, logger)

	suggestions, err := client.Autocomplete(ctx, address)
	if err != nil {
		return fmt.Errorf("validate address: %w", err)
	}
	if len(suggestions) == 0 {
		return fmt.Errorf("%w: %q", domain.ErrAddressNotFound, address)
	}
	matched := suggestions[0]
	fmt.Printf("Searching around: %s\n", matched.Description)

	cache, err := disk.New(disk.Config{Dir: cfg.Cache.Dir, TTL: cfg.Cache.TTL}, logger)
	if err != nil {
		return err
	}
	tally := costs.NewTally()

	aggregator := service.NewAggregator(service.AggregatorDeps{
		Places: client,
		Cache:  cache,
		Tally:  tally,
		Logger: logger,
		Config: service.AggregatorConfig{
			RadiusMeters:     cfg.Search.RadiusMeters,
			PageInterval:     cfg.Intervals.Page,
			CategoryInterval: cfg.Intervals.Category,
		},
	})

	if location == "" {
		location = matched.Description
	}

	found, err := aggregator.Search(ctx, service.SearchRequest{
		Area:       domain.AreaReference{PlaceID: matched.PlaceID, Query: matched.Description},
		Categories: categories,
		Location:   location,
	})
	if err != nil {
		return err
	}

	store := jsonfile.New(cfg.Store.OutputPath)
	merger := service.NewMerger(store, logger, nil)

	appended, total, err := merger.Merge(ctx, found)
	if err != nil {
		return err
	}

	fmt.Printf("Found %d businesses, %d new, %d in %s\n", len(found), len(appended), total, cfg.Store.OutputPath)
	printEstimate(costs.EstimateCost(tally, costs.DefaultRates))

	return nil
}

func printEstimate(est costs.Estimate) {
	fmt.Println("Estimated API cost:")
	for op, oc := range est.Operations {
		fmt.Printf("  %-15s %4d calls  $%.3f\n", op, oc.Count, oc.Cost)
	}
	fmt.Printf("  total: $%.3f\n", est.TotalCost)
}

func splitCategories(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
