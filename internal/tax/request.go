package tax

import (
	"strings"

	"github.com/plateful/tax-reporter/internal/client/taxcalc"
	"github.com/plateful/tax-reporter/internal/domain"
)

const (
	companyMealKit = "MK1"
	companyHQ      = "HDR1"

	// MealKitDeliveryFeeCategoryID overrides the generic delivery-fee driver
	// code for meal-kit orders, which are taxed under shipping rules.
	MealKitDeliveryFeeCategoryID = "TC-MK_DELIVERY_FEE"

	maxLocationCodeLength = 20
	dateLayout            = "2006-01-02"
)

// FeeCategoryIDs are the tax-category ids of the pooled and per-item fees.
// They are loaded alongside the item categories on every report.
var FeeCategoryIDs = []string{"service_fee", "delivery_fee", "fast_pass_fee", MealKitDeliveryFeeCategoryID}

var orderSourceByChannel = map[domain.OrderChannel]string{
	domain.ChannelUberEats:  "1P on 3P",
	domain.ChannelSeamless:  "1P on 3P",
	domain.ChannelGrubHub:   "1P on 3P",
	domain.ChannelDoorDash:  "1P on 3P",
	domain.ChannelCaviar:    "1P on 3P",
	domain.ChannelPostmates: "1P on 3P",
	domain.ChannelMKApp:     "MK - App",
	domain.ChannelMKWeb:     "MK - Web",
	domain.ChannelApp:       "1P - App",
	domain.ChannelWeb:       "1P - Web",
	domain.ChannelInPerson:  "1P - POP",
}

// DocumentNumber derives the external document identifier. Headquarters
// orders report under the human-facing order number. Meal-kit subscription
// orders recur under the same order number, so they report under the order id
// to stay unique.
func DocumentNumber(order *domain.TaxableOrder) string {
	if order.BrandCategory.IsHeadquarters() {
		return order.OrderNumber
	}
	if order.ScheduleType == domain.ScheduleOneTimePurchase {
		return order.OrderNumber
	}
	return order.OrderID.String()
}

// BuildRequest assembles the supply document for a taxable order. Items whose
// tax category is unknown or inactive are left out; the caller decides
// whether an empty document is worth sending.
func BuildRequest(order *domain.TaxableOrder, documentNumber string, itemCategories map[string]domain.TaxCategory, feeCategories []domain.TaxCategory) *taxcalc.Request {
	req := &taxcalc.Request{
		SaleMessageType: "INVOICE",
		TransactionType: "SALE",
		Currency:        taxcalc.USD(),
		Customer: taxcalc.Customer{
			CustomerCode: taxcalc.CustomerCode{Value: order.UserID},
			Destination: taxcalc.Destination{
				MainDivision:   order.StateCode,
				City:           order.City,
				SubDivision:    order.County,
				PostalCode:     order.ZipCode,
				StreetAddress1: order.AddressLine,
			},
		},
		DocumentDate:   order.ServiceDate.Format(dateLayout),
		DocumentNumber: documentNumber,
		LocationCode:   locationCode(order),
		Seller:         seller(order),
	}

	req.LineItems = append(req.LineItems, subtotalLines(order, itemCategories)...)
	req.LineItems = append(req.LineItems, serviceFeeLines(order, itemCategories, feeCategories)...)
	req.LineItems = append(req.LineItems, pooledFeeLines(order, feeCategories)...)
	return req
}

// locationCode is the seller-side location reference, capped at the service's
// 20-character field limit.
func locationCode(order *domain.TaxableOrder) string {
	if order.ShipFrom == nil {
		return ""
	}

	var code string
	switch {
	case order.BrandCategory.IsMealKit():
		code = order.ShipFrom.FacilityCode
	case order.BrandCategory.IsHeadquarters():
		code = order.ShipFrom.HQName
	}
	if len(code) > maxLocationCodeLength {
		code = code[:maxLocationCodeLength]
	}
	return code
}

func seller(order *domain.TaxableOrder) taxcalc.Seller {
	if order.BrandCategory.IsMealKit() {
		return taxcalc.Seller{
			Company:        companyMealKit,
			PhysicalOrigin: mealKitOrigin(order.ShipFrom),
		}
	}

	s := taxcalc.Seller{Company: companyHQ}
	if order.ShipFrom != nil {
		s.PhysicalOrigin = taxcalc.PhysicalOrigin{
			MainDivision:   order.ShipFrom.StateCode,
			City:           order.ShipFrom.City,
			PostalCode:     order.ShipFrom.ZipCode,
			SubDivision:    order.ShipFrom.County,
			StreetAddress1: order.ShipFrom.AddressLine,
		}
	}
	return s
}

// mealKitOrigin resolves the fulfillment facility address. Facility address
// lookup is not wired up yet, so every facility maps to the primary Linden
// fulfillment center, which is also the fallback when the order carries no
// facility at all.
func mealKitOrigin(_ *domain.ShipFrom) taxcalc.PhysicalOrigin {
	return taxcalc.PhysicalOrigin{
		MainDivision:   "NJ",
		City:           "Linden",
		PostalCode:     "07036",
		StreetAddress1: "901 W Linden Ave",
	}
}

func flexibleFields(order *domain.TaxableOrder, bundleID string) taxcalc.FlexibleFields {
	var fields []taxcalc.FlexibleCodeField

	if source, ok := orderSourceByChannel[order.OrderChannel]; ok {
		fields = append(fields, taxcalc.FlexibleCodeField{FieldID: 1, Value: source})
	}
	if strings.TrimSpace(bundleID) != "" {
		fields = append(fields, taxcalc.FlexibleCodeField{FieldID: 2, Value: "B"})
	}
	if order.NeedUtensils {
		fields = append(fields, taxcalc.FlexibleCodeField{FieldID: 4, Value: "Utensils"})
	}
	fields = append(fields, taxcalc.FlexibleCodeField{FieldID: 3, Value: "TBC Off Premise"})

	return taxcalc.FlexibleFields{FlexibleCodeFields: fields}
}

func subtotalLines(order *domain.TaxableOrder, itemCategories map[string]domain.TaxCategory) []taxcalc.LineItem {
	var lines []taxcalc.LineItem
	for _, item := range order.Items {
		category, ok := itemCategories[item.TaxCategoryID]
		if !ok || category.DriverCode == "" {
			continue
		}
		lines = append(lines, taxcalc.LineItem{
			LineItemID:     item.ItemID.String(),
			ExtendedPrice:  item.Subtotal.InexactFloat64(),
			Product:        taxcalc.Product{ProductClass: category.DriverCode},
			FlexibleFields: flexibleFields(order, item.BundleID),
		})
	}
	return lines
}

// serviceFeeLines emits one fee line per item that carries a positive service
// fee. The line keeps the item id so the response maps back per item, and the
// fee driver code rides in the product value.
func serviceFeeLines(order *domain.TaxableOrder, itemCategories map[string]domain.TaxCategory, feeCategories []domain.TaxCategory) []taxcalc.LineItem {
	feeDriverCode := FeeDriverCode(domain.FeeService, order.BrandCategory, feeCategories)
	if feeDriverCode == "" {
		return nil
	}

	var lines []taxcalc.LineItem
	for _, item := range order.Items {
		category, ok := itemCategories[item.TaxCategoryID]
		if !ok {
			continue
		}
		if !item.ServiceFee.IsPositive() {
			continue
		}
		lines = append(lines, taxcalc.LineItem{
			LineItemID:    item.ItemID.String(),
			ExtendedPrice: item.ServiceFee.InexactFloat64(),
			Product: taxcalc.Product{
				ProductClass: category.DriverCode,
				Value:        feeDriverCode,
			},
			FlexibleFields: flexibleFields(order, ""),
		})
	}
	return lines
}

// pooledFeeLines emits a single synthetic line per order-wide fee, keyed by
// the fee's driver code. The computed tax gets allocated back to the items
// afterwards.
func pooledFeeLines(order *domain.TaxableOrder, feeCategories []domain.TaxCategory) []taxcalc.LineItem {
	var lines []taxcalc.LineItem
	for _, fee := range []domain.FeeType{domain.FeeDelivery, domain.FeeFastPass} {
		total := order.TotalFee(fee)
		if !total.IsPositive() {
			continue
		}
		driverCode := FeeDriverCode(fee, order.BrandCategory, feeCategories)
		lines = append(lines, taxcalc.LineItem{
			LineItemID:     driverCode,
			ExtendedPrice:  total.InexactFloat64(),
			Product:        taxcalc.Product{ProductClass: driverCode},
			FlexibleFields: flexibleFields(order, ""),
		})
	}
	return lines
}

// FeeDriverCode resolves the driver code for a fee type. Meal-kit delivery
// fees use their dedicated shipping category; otherwise the fee's sub-category
// match wins, falling back to the fee-type name when no category is
// configured.
func FeeDriverCode(fee domain.FeeType, brand domain.BrandCategory, feeCategories []domain.TaxCategory) string {
	if fee == domain.FeeDelivery && brand.IsMealKit() {
		for _, category := range feeCategories {
			if category.ID == MealKitDeliveryFeeCategoryID {
				return category.DriverCode
			}
		}
	}

	for _, category := range feeCategories {
		if category.SubCategory == string(fee) {
			return category.DriverCode
		}
	}
	return string(fee)
}
