package tax

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/plateful/tax-reporter/internal/domain"
	"github.com/plateful/tax-reporter/internal/logger"
)

// ErrOrderSkipped marks orders that are not tax-reported: legacy meal-kit
// migrations, third-party marketplace orders, and brands handled upstream.
var ErrOrderSkipped = errors.New("order is not tax-reportable")

// OrderRecords bundles everything the normalizer reads for one order.
type OrderRecords struct {
	Order       *domain.Order
	Items       []domain.OrderItem
	Address     *domain.OrderAddress
	HQAddress   *domain.OrderHQAddress
	Location    *domain.OrderLocation
	Charge      *domain.OrderCharge
	ChargeItems []domain.OrderChargeItem
	Restaurants []domain.OrderRestaurant
}

// ShouldSkip reports whether the order is excluded from tax reporting.
func ShouldSkip(order *domain.Order) bool {
	if order.LogicType == domain.LogicMKLegacy {
		return true
	}
	return order.OrderChannel.IsThirdParty() || !order.BrandCategory.RequiresTaxReport()
}

// Normalize converts raw order records into the canonical taxable view.
// Returns ErrOrderSkipped for orders outside the reportable population.
func Normalize(rec OrderRecords) (*domain.TaxableOrder, error) {
	order := rec.Order
	if ShouldSkip(order) {
		return nil, errors.Wrapf(ErrOrderSkipped, "order %s", order.ID)
	}

	taxable := &domain.TaxableOrder{
		OrderID:       order.ID,
		OrderNumber:   order.OrderNumber,
		UserID:        order.UserID,
		BrandCategory: order.BrandCategory,
		OrderChannel:  order.OrderChannel,
		ScheduleType:  order.ScheduleType,
		ServiceDate:   serviceDate(order),
		NeedUtensils:  order.NeedUtensils,
		PostComplete:  postComplete(order),
		ShipFrom:      shipFrom(rec),
	}

	// Pickup orders are taxed at the pickup location, delivery orders at the
	// customer address. Either record may be absent; the fields stay empty.
	if order.DiningOption == domain.DiningPickup {
		if rec.Location != nil {
			taxable.StateCode = rec.Location.StateCode
			taxable.ZipCode = rec.Location.ZipCode
			taxable.County = rec.Location.County
			taxable.City = rec.Location.City
			taxable.AddressLine = rec.Location.AddressLine1
		}
	} else if rec.Address != nil {
		taxable.StateCode = rec.Address.State
		taxable.ZipCode = rec.Address.ZipCode
		taxable.County = rec.Address.County
		taxable.City = rec.Address.City
		taxable.AddressLine = rec.Address.AddressLine
	}

	taxable.Items = chargeItemBases(order.ID, rec.Items, rec.ChargeItems)
	return taxable, nil
}

func serviceDate(order *domain.Order) time.Time {
	if order.BrandCategory.IsHeadquarters() {
		return order.ServiceDate
	}
	return order.OrderDate
}

func postComplete(order *domain.Order) bool {
	if order.BrandCategory.IsHeadquarters() {
		return order.Status.IsCompleted()
	}
	return true
}

func shipFrom(rec OrderRecords) *domain.ShipFrom {
	if rec.Order.BrandCategory.IsMealKit() {
		code := facilityCode(rec.Restaurants)
		if code == "" {
			return nil
		}
		return &domain.ShipFrom{FacilityCode: code}
	}

	if rec.HQAddress == nil || rec.Location == nil {
		return nil
	}
	return &domain.ShipFrom{
		HQName:      rec.HQAddress.Name,
		StateCode:   rec.Location.StateCode,
		ZipCode:     rec.Location.ZipCode,
		County:      rec.Location.County,
		City:        rec.Location.City,
		AddressLine: rec.Location.AddressLine1,
	}
}

func facilityCode(restaurants []domain.OrderRestaurant) string {
	for _, r := range restaurants {
		if strings.TrimSpace(r.FacilityCode) != "" {
			return r.FacilityCode
		}
	}
	return ""
}

func chargeItemBases(orderID uuid.UUID, items []domain.OrderItem, chargeItems []domain.OrderChargeItem) []domain.TaxableChargeItem {
	itemsByID := lo.KeyBy(items, func(it domain.OrderItem) uuid.UUID { return it.ID })

	result := make([]domain.TaxableChargeItem, 0, len(chargeItems))
	for _, ci := range chargeItems {
		item, ok := itemsByID[ci.OrderItemID]
		if !ok {
			logger.Warn("charge item has no matching order item",
				zap.String("orderId", orderID.String()),
				zap.String("orderItemId", ci.OrderItemID.String()))
			continue
		}

		result = append(result, domain.TaxableChargeItem{
			ItemID:        ci.OrderItemID,
			TaxCategoryID: item.TaxCategoryID,
			BundleID:      item.BundleItemID,
			Subtotal: ci.Subtotal.
				Sub(ci.AdjustSubtotal).
				Sub(ci.Discount).
				Sub(ci.Promotion).
				Sub(ci.MembershipSubtotal).
				Sub(ci.SubscriptionSaveDiscount).
				Round(2),
			SmallOrderFee: remainingFee(ci.SmallOrderFee, ci.AdjustSmallOrderFee),
			ServiceFee:    remainingFee(ci.ServiceFee, ci.AdjustServiceFee),
			FastPassFee:   remainingFee(ci.FastPassFee, ci.AdjustFastPassFee),
			DeliveryFee:   remainingFee(ci.DeliveryFee, ci.AdjustDeliveryFee),
		})
	}
	return result
}

func remainingFee(fee, adjust decimal.Decimal) decimal.Decimal {
	remaining := fee.Sub(adjust).Round(2)
	if remaining.IsNegative() {
		return decimal.Zero
	}
	return remaining
}
