package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/kpavlov42/placeradar/internal/domain"
	"github.com/kpavlov42/placeradar/internal/metrics"
	"github.com/kpavlov42/placeradar/internal/repository"
)

// Merger appends newly discovered businesses to the persisted collection,
// skipping any whose (name, address) identity is already present. The merge
// is idempotent: re-running it with the same input appends nothing.
type Merger struct {
	store   repository.BusinessStore
	logger  *zap.Logger
	metrics *metrics.Metrics
}

func NewMerger(store repository.BusinessStore, logger *zap.Logger, m *metrics.Metrics) *Merger {
	return &Merger{
		store:   store,
		logger:  logger,
		metrics: m,
	}
}

// Merge returns the subset actually appended and the store's new total. A
// malformed existing collection is logged and treated as empty; when
// nothing new arrives the store is left untouched.
func (m *Merger) Merge(ctx context.Context, incoming []domain.Business) ([]domain.Business, int, error) {
	existing, err := m.store.Load(ctx)
	if err != nil {
		m.logger.Warn("output store unreadable, treating as empty", zap.Error(err))
		existing = nil
	}

	seen := make(map[domain.IdentityKey]struct{}, len(existing))
	for _, b := range existing {
		seen[b.Identity()] = struct{}{}
	}

	var appended []domain.Business
	for _, b := range incoming {
		key := b.Identity()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		appended = append(appended, b)
	}

	if len(appended) == 0 {
		m.logger.Info("no new businesses to append", zap.Int("total", len(existing)))
		return nil, len(existing), nil
	}

	combined := append(existing, appended...)
	if err := m.store.Save(ctx, combined); err != nil {
		return nil, 0, fmt.Errorf("save output store: %w", err)
	}

	if m.metrics != nil {
		m.metrics.AddBusinessesPersisted(len(appended))
	}
	m.logger.Info("businesses appended",
		zap.Int("appended", len(appended)),
		zap.Int("total", len(combined)),
	)

	return appended, len(combined), nil
}
