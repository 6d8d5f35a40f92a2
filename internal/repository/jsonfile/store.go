// Package jsonfile stores the output collection as a single JSON array at a
// well-known path.
package jsonfile

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/kpavlov42/placeradar/internal/domain"
)

type Store struct {
	path string
}

func New(path string) *Store {
	return &Store{path: path}
}

// Load reads the whole collection. A missing file is an empty collection;
// invalid JSON is reported so the caller can warn and fall back to empty.
func (s *Store) Load(ctx context.Context) ([]domain.Business, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read output store: %w", err)
	}

	var businesses []domain.Business
	if err := json.Unmarshal(data, &businesses); err != nil {
		return nil, fmt.Errorf("parse output store: %w", err)
	}

	return businesses, nil
}

// Save rewrites the whole collection through a temp file and rename.
func (s *Store) Save(ctx context.Context, businesses []domain.Business) error {
	data, err := json.MarshalIndent(businesses, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal output store: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write output store: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("rename output store: %w", err)
	}

	return nil
}
