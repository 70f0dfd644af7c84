package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ShipFrom is the seller origin used for tax jurisdiction. Exactly one of
// the two forms is populated: the facility form (FacilityCode set) for the
// meal-kit brand, or the HQ form (HQName plus address fields) for
// headquarters brands.
type ShipFrom struct {
	FacilityCode string
	HQName       string
	StateCode    string
	ZipCode      string
	County       string
	City         string
	AddressLine  string
}

// TaxableOrder is the canonical, brand-agnostic representation of an order's
// financial facts needed to request tax computation. It is built once per
// report attempt and is immutable after construction.
type TaxableOrder struct {
	OrderID       uuid.UUID
	OrderNumber   string
	UserID        string
	BrandCategory BrandCategory
	OrderChannel  OrderChannel
	ScheduleType  ScheduleType
	ServiceDate   time.Time
	NeedUtensils  bool
	PostComplete  bool
	ShipFrom      *ShipFrom

	// Destination address, already resolved for pickup vs delivery.
	StateCode   string
	ZipCode     string
	County      string
	City        string
	AddressLine string

	Items []TaxableChargeItem
}

// TaxableChargeItem carries the five taxable bases for one order item. Every
// base is already net of adjustments, refunds and discounts; downstream code
// never recomputes them.
type TaxableChargeItem struct {
	ItemID        uuid.UUID
	TaxCategoryID string
	BundleID      string

	Subtotal      decimal.Decimal
	SmallOrderFee decimal.Decimal
	ServiceFee    decimal.Decimal
	FastPassFee   decimal.Decimal
	DeliveryFee   decimal.Decimal
}

// FeeBase returns the item's taxable base for the given fee type.
func (i TaxableChargeItem) FeeBase(fee FeeType) decimal.Decimal {
	switch fee {
	case FeeService:
		return i.ServiceFee
	case FeeDelivery:
		return i.DeliveryFee
	case FeeFastPass:
		return i.FastPassFee
	case FeeSmallOrder:
		return i.SmallOrderFee
	default:
		return decimal.Zero
	}
}

// TotalFee sums one fee type across all items of the order.
func (o *TaxableOrder) TotalFee(fee FeeType) decimal.Decimal {
	total := decimal.Zero
	for _, item := range o.Items {
		base := item.FeeBase(fee)
		if base.IsPositive() {
			total = total.Add(base)
		}
	}
	return total
}
