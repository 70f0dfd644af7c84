package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pkg/errors"

	"github.com/plateful/tax-reporter/internal/domain"
)

// GetOrderAddress loads the customer delivery address. Returns nil when the
// order carries no address; pickup orders often do not.
func (s *Store) GetOrderAddress(ctx context.Context, orderID uuid.UUID) (*domain.OrderAddress, error) {
	const query = `
		SELECT COALESCE(state, ''), COALESCE(zip_code, ''), COALESCE(county, ''),
		       COALESCE(city, ''), COALESCE(address_line, '')
		FROM order_addresses
		WHERE order_id = $1`

	var a domain.OrderAddress
	err := s.pool.QueryRow(ctx, query, orderID).Scan(&a.State, &a.ZipCode, &a.County, &a.City, &a.AddressLine)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "querying address of order %s", orderID)
	}
	return &a, nil
}

// GetOrderLocation loads the pickup location record. Returns nil when absent.
func (s *Store) GetOrderLocation(ctx context.Context, orderID uuid.UUID) (*domain.OrderLocation, error) {
	const query = `
		SELECT COALESCE(state_code, ''), COALESCE(zip_code, ''), COALESCE(county, ''),
		       COALESCE(city, ''), COALESCE(address_line1, '')
		FROM order_locations
		WHERE order_id = $1`

	var l domain.OrderLocation
	err := s.pool.QueryRow(ctx, query, orderID).Scan(&l.StateCode, &l.ZipCode, &l.County, &l.City, &l.AddressLine1)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "querying location of order %s", orderID)
	}
	return &l, nil
}

// GetOrderHQAddress loads the headquarters the order ships from. Returns nil
// when absent; only HQ-brand orders carry one.
func (s *Store) GetOrderHQAddress(ctx context.Context, orderID uuid.UUID) (*domain.OrderHQAddress, error) {
	const query = `
		SELECT order_id, COALESCE(hq_name, '')
		FROM order_hq_addresses
		WHERE order_id = $1`

	var h domain.OrderHQAddress
	err := s.pool.QueryRow(ctx, query, orderID).Scan(&h.OrderID, &h.Name)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "querying HQ address of order %s", orderID)
	}
	return &h, nil
}
