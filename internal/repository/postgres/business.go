package postgres

import (
	"context"
	"fmt"

	"github.com/kpavlov42/placeradar/internal/domain"
)

// BusinessRepo keeps the output collection in a single table while
// preserving the store's read-whole/write-whole contract: Save replaces the
// table contents in one transaction.
type BusinessRepo struct {
	db *DB
}

func NewBusinessRepo(db *DB) *BusinessRepo {
	return &BusinessRepo{db: db}
}

func (r *BusinessRepo) Load(ctx context.Context) ([]domain.Business, error) {
	query := `
        SELECT name, address, phone, website, email, opening_hours,
               primary_category, accessible, provider_id, latitude, longitude,
               search_location, search_radius_km, search_timestamp
        FROM businesses
        ORDER BY id
    `

	rows, err := r.db.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("load businesses: %w", err)
	}
	defer rows.Close()

	var businesses []domain.Business
	for rows.Next() {
		var b domain.Business
		err := rows.Scan(
			&b.Name,
			&b.Address,
			&b.Phone,
			&b.Website,
			&b.Email,
			&b.OpeningHours,
			&b.PrimaryCategory,
			&b.Accessible,
			&b.ProviderID,
			&b.Latitude,
			&b.Longitude,
			&b.SearchLocation,
			&b.SearchRadiusKM,
			&b.SearchTimestamp,
		)
		if err != nil {
			return nil, fmt.Errorf("scan business: %w", err)
		}
		businesses = append(businesses, b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return businesses, nil
}

func (r *BusinessRepo) Save(ctx context.Context, businesses []domain.Business) error {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin save: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM businesses`); err != nil {
		return fmt.Errorf("clear businesses: %w", err)
	}

	insert := `
        INSERT INTO businesses (
            name, address, phone, website, email, opening_hours,
            primary_category, accessible, provider_id, latitude, longitude,
            search_location, search_radius_km, search_timestamp
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
    `

	for _, b := range businesses {
		_, err := tx.Exec(ctx, insert,
			b.Name,
			b.Address,
			b.Phone,
			b.Website,
			b.Email,
			b.OpeningHours,
			b.PrimaryCategory,
			b.Accessible,
			b.ProviderID,
			b.Latitude,
			b.Longitude,
			b.SearchLocation,
			b.SearchRadiusKM,
			b.SearchTimestamp,
		)
		if err != nil {
			return fmt.Errorf("insert business: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit save: %w", err)
	}

	return nil
}
