package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/plateful/tax-reporter/internal/domain"
)

// GetOrder loads the order header. A missing order is ErrNotFound.
func (s *Store) GetOrder(ctx context.Context, orderID uuid.UUID) (*domain.Order, error) {
	const query = `
		SELECT id, user_id, order_number, brand_category, order_channel,
		       schedule_type, dining_option, order_logic_type, status,
		       need_utensils, service_date, order_date
		FROM orders
		WHERE id = $1`

	var o domain.Order
	err := s.pool.QueryRow(ctx, query, orderID).Scan(
		&o.ID, &o.UserID, &o.OrderNumber, &o.BrandCategory, &o.OrderChannel,
		&o.ScheduleType, &o.DiningOption, &o.LogicType, &o.Status,
		&o.NeedUtensils, &o.ServiceDate, &o.OrderDate,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, errors.Wrapf(ErrNotFound, "order %s", orderID)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "querying order %s", orderID)
	}
	return &o, nil
}

// ListOrderItems returns the order's items, excluding soft-deleted rows.
func (s *Store) ListOrderItems(ctx context.Context, orderID uuid.UUID) ([]domain.OrderItem, error) {
	const query = `
		SELECT id, order_id, COALESCE(order_bundle_item_id, ''), COALESCE(restaurant_id, ''),
		       menu_item_name, COALESCE(menu_item_tax_category_id, '')
		FROM order_items
		WHERE order_id = $1 AND COALESCE(deleted, FALSE) = FALSE
		ORDER BY id`

	rows, err := s.pool.Query(ctx, query, orderID)
	if err != nil {
		return nil, errors.Wrapf(err, "querying items of order %s", orderID)
	}
	defer rows.Close()

	var items []domain.OrderItem
	for rows.Next() {
		var it domain.OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.BundleItemID, &it.RestaurantID, &it.Name, &it.TaxCategoryID); err != nil {
			return nil, errors.Wrapf(err, "scanning item of order %s", orderID)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// GetOrderCharge loads the order-level financial aggregate. A missing charge
// is ErrNotFound; an order cannot be reported without one.
func (s *Store) GetOrderCharge(ctx context.Context, orderID uuid.UUID) (*domain.OrderCharge, error) {
	const query = `
		SELECT order_id,
		       COALESCE(subtotal, 0)::float8,
		       COALESCE(adjust_subtotal, 0)::float8,
		       COALESCE(discount, 0)::float8,
		       COALESCE(promotion, 0)::float8,
		       COALESCE(membership_subtotal, 0)::float8,
		       COALESCE(subscription_save_discount, 0)::float8,
		       COALESCE(small_order_fee, 0)::float8,
		       COALESCE(service_fee, 0)::float8,
		       COALESCE(fast_pass_fee, 0)::float8,
		       COALESCE(delivery_fee, 0)::float8
		FROM order_charges
		WHERE order_id = $1`

	var c domain.OrderCharge
	var subtotal, adjustSubtotal, discount, promotion, membership, subscription float64
	var smallOrder, service, fastPass, delivery float64

	err := s.pool.QueryRow(ctx, query, orderID).Scan(
		&c.OrderID, &subtotal, &adjustSubtotal, &discount, &promotion,
		&membership, &subscription, &smallOrder, &service, &fastPass, &delivery,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, errors.Wrapf(ErrNotFound, "charge of order %s", orderID)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "querying charge of order %s", orderID)
	}

	c.Subtotal = decimal.NewFromFloat(subtotal)
	c.AdjustSubtotal = decimal.NewFromFloat(adjustSubtotal)
	c.Discount = decimal.NewFromFloat(discount)
	c.Promotion = decimal.NewFromFloat(promotion)
	c.MembershipSubtotal = decimal.NewFromFloat(membership)
	c.SubscriptionSaveDiscount = decimal.NewFromFloat(subscription)
	c.SmallOrderFee = decimal.NewFromFloat(smallOrder)
	c.ServiceFee = decimal.NewFromFloat(service)
	c.FastPassFee = decimal.NewFromFloat(fastPass)
	c.DeliveryFee = decimal.NewFromFloat(delivery)
	return &c, nil
}

// ListOrderChargeItems returns the per-item charge breakdown.
func (s *Store) ListOrderChargeItems(ctx context.Context, orderID uuid.UUID) ([]domain.OrderChargeItem, error) {
	const query = `
		SELECT order_id, order_item_id,
		       COALESCE(subtotal, 0)::float8,
		       COALESCE(adjust_subtotal, 0)::float8,
		       COALESCE(discount, 0)::float8,
		       COALESCE(promotion, 0)::float8,
		       COALESCE(membership_subtotal, 0)::float8,
		       COALESCE(subscription_save_discount, 0)::float8,
		       COALESCE(small_order_fee, 0)::float8,
		       COALESCE(adjust_small_order_fee, 0)::float8,
		       COALESCE(service_fee, 0)::float8,
		       COALESCE(adjust_service_fee, 0)::float8,
		       COALESCE(fast_pass_fee, 0)::float8,
		       COALESCE(adjust_fast_pass_fee, 0)::float8,
		       COALESCE(delivery_fee, 0)::float8,
		       COALESCE(adjust_delivery_fee, 0)::float8
		FROM order_charge_items
		WHERE order_id = $1
		ORDER BY order_item_id`

	rows, err := s.pool.Query(ctx, query, orderID)
	if err != nil {
		return nil, errors.Wrapf(err, "querying charge items of order %s", orderID)
	}
	defer rows.Close()

	var items []domain.OrderChargeItem
	for rows.Next() {
		var ci domain.OrderChargeItem
		var amounts [14]float64
		if err := rows.Scan(
			&ci.OrderID, &ci.OrderItemID,
			&amounts[0], &amounts[1], &amounts[2], &amounts[3], &amounts[4], &amounts[5],
			&amounts[6], &amounts[7], &amounts[8], &amounts[9], &amounts[10], &amounts[11],
			&amounts[12], &amounts[13],
		); err != nil {
			return nil, errors.Wrapf(err, "scanning charge item of order %s", orderID)
		}
		ci.Subtotal = decimal.NewFromFloat(amounts[0])
		ci.AdjustSubtotal = decimal.NewFromFloat(amounts[1])
		ci.Discount = decimal.NewFromFloat(amounts[2])
		ci.Promotion = decimal.NewFromFloat(amounts[3])
		ci.MembershipSubtotal = decimal.NewFromFloat(amounts[4])
		ci.SubscriptionSaveDiscount = decimal.NewFromFloat(amounts[5])
		ci.SmallOrderFee = decimal.NewFromFloat(amounts[6])
		ci.AdjustSmallOrderFee = decimal.NewFromFloat(amounts[7])
		ci.ServiceFee = decimal.NewFromFloat(amounts[8])
		ci.AdjustServiceFee = decimal.NewFromFloat(amounts[9])
		ci.FastPassFee = decimal.NewFromFloat(amounts[10])
		ci.AdjustFastPassFee = decimal.NewFromFloat(amounts[11])
		ci.DeliveryFee = decimal.NewFromFloat(amounts[12])
		ci.AdjustDeliveryFee = decimal.NewFromFloat(amounts[13])
		items = append(items, ci)
	}
	return items, rows.Err()
}

// ListOrderRestaurants returns the order's restaurant links, carrying the
// fulfillment facility code for meal-kit orders.
func (s *Store) ListOrderRestaurants(ctx context.Context, orderID uuid.UUID) ([]domain.OrderRestaurant, error) {
	const query = `
		SELECT order_id, COALESCE(facility_code, '')
		FROM order_restaurants
		WHERE order_id = $1`

	rows, err := s.pool.Query(ctx, query, orderID)
	if err != nil {
		return nil, errors.Wrapf(err, "querying restaurants of order %s", orderID)
	}
	defer rows.Close()

	var restaurants []domain.OrderRestaurant
	for rows.Next() {
		var r domain.OrderRestaurant
		if err := rows.Scan(&r.OrderID, &r.FacilityCode); err != nil {
			return nil, errors.Wrapf(err, "scanning restaurant of order %s", orderID)
		}
		restaurants = append(restaurants, r)
	}
	return restaurants, rows.Err()
}
