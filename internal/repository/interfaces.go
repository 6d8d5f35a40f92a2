package repository

import (
	"context"

	"github.com/kpavlov42/placeradar/internal/domain"
)

// BusinessStore is the persistent output collection. Semantics are
// read-whole/write-whole: Load returns the full collection, Save replaces
// it entirely.
type BusinessStore interface {
	Load(ctx context.Context) ([]domain.Business, error)
	Save(ctx context.Context, businesses []domain.Business) error
}
