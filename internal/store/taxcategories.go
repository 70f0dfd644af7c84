package store

import (
	"context"

	"github.com/pkg/errors"

	"github.com/plateful/tax-reporter/internal/domain"
)

// ListTaxCategories returns the active tax categories for the given ids.
// Unknown or inactive ids are silently absent from the result.
func (s *Store) ListTaxCategories(ctx context.Context, ids []string) ([]domain.TaxCategory, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	const query = `
		SELECT id, tax_category, COALESCE(tax_sub_category, ''), tax_driver_code, is_active
		FROM tax_categories
		WHERE id = ANY($1) AND is_active = TRUE`

	rows, err := s.pool.Query(ctx, query, ids)
	if err != nil {
		return nil, errors.Wrap(err, "querying tax categories")
	}
	defer rows.Close()

	var categories []domain.TaxCategory
	for rows.Next() {
		var tc domain.TaxCategory
		if err := rows.Scan(&tc.ID, &tc.Category, &tc.SubCategory, &tc.DriverCode, &tc.Active); err != nil {
			return nil, errors.Wrap(err, "scanning tax category")
		}
		categories = append(categories, tc)
	}
	return categories, rows.Err()
}
