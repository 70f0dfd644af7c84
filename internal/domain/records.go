package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Order is the order header as read from the order store.
type Order struct {
	ID            uuid.UUID
	UserID        string
	OrderNumber   string
	BrandCategory BrandCategory
	OrderChannel  OrderChannel
	ScheduleType  ScheduleType
	DiningOption  DiningOption
	LogicType     OrderLogicType
	Status        OrderStatus
	NeedUtensils  bool
	ServiceDate   time.Time
	OrderDate     time.Time
}

// OrderItem is a single line of the order, trimmed to the fields the tax
// pipeline reads.
type OrderItem struct {
	ID            uuid.UUID
	OrderID       uuid.UUID
	BundleItemID  string
	RestaurantID  string
	Name          string
	TaxCategoryID string
}

// OrderCharge is the order-level financial aggregate. All amounts are raw
// (not yet net of adjustments); absent fees come back as zero.
type OrderCharge struct {
	OrderID                  uuid.UUID
	Subtotal                 decimal.Decimal
	AdjustSubtotal           decimal.Decimal
	Discount                 decimal.Decimal
	Promotion                decimal.Decimal
	MembershipSubtotal       decimal.Decimal
	SubscriptionSaveDiscount decimal.Decimal
	SmallOrderFee            decimal.Decimal
	ServiceFee               decimal.Decimal
	FastPassFee              decimal.Decimal
	DeliveryFee              decimal.Decimal
}

// OrderChargeItem is the per-item charge breakdown. Amounts are raw; the
// normalizer derives the taxable bases from them.
type OrderChargeItem struct {
	OrderID                  uuid.UUID
	OrderItemID              uuid.UUID
	Subtotal                 decimal.Decimal
	AdjustSubtotal           decimal.Decimal
	Discount                 decimal.Decimal
	Promotion                decimal.Decimal
	MembershipSubtotal       decimal.Decimal
	SubscriptionSaveDiscount decimal.Decimal
	SmallOrderFee            decimal.Decimal
	AdjustSmallOrderFee      decimal.Decimal
	ServiceFee               decimal.Decimal
	AdjustServiceFee         decimal.Decimal
	FastPassFee              decimal.Decimal
	AdjustFastPassFee        decimal.Decimal
	DeliveryFee              decimal.Decimal
	AdjustDeliveryFee        decimal.Decimal
}

// OrderAddress is the customer's delivery address.
type OrderAddress struct {
	State       string
	ZipCode     string
	County      string
	City        string
	AddressLine string
}

// OrderLocation is the pickup location / restaurant location record.
type OrderLocation struct {
	StateCode    string
	ZipCode      string
	County       string
	City         string
	AddressLine1 string
}

// OrderHQAddress names the restaurant headquarters an HQ-brand order ships
// from.
type OrderHQAddress struct {
	OrderID uuid.UUID
	Name    string
}

// OrderRestaurant links an order to a preparing restaurant; meal-kit orders
// carry the fulfillment facility code here.
type OrderRestaurant struct {
	OrderID      uuid.UUID
	FacilityCode string
}

// TaxCategory maps an internal tax-category id to the external service's
// product driver code.
type TaxCategory struct {
	ID          string
	Category    string
	SubCategory string
	DriverCode  string
	Active      bool
}
