package tax

import (
	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/plateful/tax-reporter/internal/client/taxcalc"
	"github.com/plateful/tax-reporter/internal/domain"
)

// TaxAmount is one computed tax figure: the tax itself, the base it was
// computed on, and the aggregate rate across jurisdictions.
type TaxAmount struct {
	Tax     decimal.Decimal
	Taxable decimal.Decimal
	Rate    decimal.Decimal
}

// ItemTaxes gathers everything computed for one order item. RuleIDs covers
// the item's own lines; rule ids of pooled fee lines only appear in the
// order-level union.
type ItemTaxes struct {
	ItemID   uuid.UUID
	Subtotal TaxAmount
	Fees     map[domain.FeeType]TaxAmount
	RuleIDs  []int64
	TotalTax decimal.Decimal
}

// OrderTaxes is the mapped result of one tax computation.
type OrderTaxes struct {
	DocumentNumber string
	DocumentDate   string
	TotalTax       decimal.Decimal
	RuleIDs        []int64
	Items          []ItemTaxes
}

// MapResponse folds the computed supply document back onto the order's items.
// Per-item lines (subtotal, service fee) map directly by item id; pooled fee
// lines (delivery, fast pass) are split across contributing items by the
// shared-fee allocator. Fees the order never carried come back as zero.
func MapResponse(order *domain.TaxableOrder, documentNumber string, feeCategories []domain.TaxCategory, result *taxcalc.Result) *OrderTaxes {
	serviceDriverCode := FeeDriverCode(domain.FeeService, order.BrandCategory, feeCategories)

	deliveryAllocations := allocatePooledFee(order, domain.FeeDelivery, feeCategories, result)
	fastPassAllocations := allocatePooledFee(order, domain.FeeFastPass, feeCategories, result)

	taxes := &OrderTaxes{
		DocumentNumber: documentNumber,
		DocumentDate:   result.DocumentDate,
		TotalTax:       result.TotalTax,
		RuleIDs:        collectRuleIDs(result),
	}

	for _, item := range order.Items {
		itemTaxes := ItemTaxes{
			ItemID:   item.ItemID,
			Subtotal: mapLine(findLine(result, item.ItemID.String(), "")),
			Fees: map[domain.FeeType]TaxAmount{
				domain.FeeService:     mapLine(findLine(result, item.ItemID.String(), serviceDriverCode)),
				domain.FeeDelivery:    allocationFor(deliveryAllocations, item.ItemID),
				domain.FeeFastPass:    allocationFor(fastPassAllocations, item.ItemID),
				domain.FeeSmallOrder:  {},
				domain.FeeHospitality: {},
			},
			RuleIDs: itemRuleIDs(result, item.ItemID.String()),
		}

		total := itemTaxes.Subtotal.Tax
		for _, fee := range itemTaxes.Fees {
			total = total.Add(fee.Tax)
		}
		itemTaxes.TotalTax = total

		taxes.Items = append(taxes.Items, itemTaxes)
	}

	return taxes
}

// findLine locates a response line by item id and product value. Subtotal
// lines carry an empty product value; fee lines carry the fee's driver code.
func findLine(result *taxcalc.Result, lineItemID, productValue string) *taxcalc.ResultLineItem {
	for i := range result.LineItems {
		li := &result.LineItems[i]
		if li.LineItemID == lineItemID && li.Product.Value == productValue {
			return li
		}
	}
	return nil
}

func mapLine(li *taxcalc.ResultLineItem) TaxAmount {
	if li == nil {
		return TaxAmount{}
	}
	return TaxAmount{
		Tax:     li.TotalTax,
		Taxable: li.Taxable(),
		Rate:    li.TotalRate(),
	}
}

func allocatePooledFee(order *domain.TaxableOrder, fee domain.FeeType, feeCategories []domain.TaxCategory, result *taxcalc.Result) []FeeAllocation {
	driverCode := FeeDriverCode(fee, order.BrandCategory, feeCategories)
	line := findLine(result, driverCode, "")
	if line == nil {
		return nil
	}
	return AllocateSharedFee(order, fee, line.TotalTax, line.Taxable(), line.TotalRate())
}

func allocationFor(allocations []FeeAllocation, itemID uuid.UUID) TaxAmount {
	for _, a := range allocations {
		if a.ItemID == itemID {
			return TaxAmount{Tax: a.Tax, Taxable: a.Taxable, Rate: a.Rate}
		}
	}
	return TaxAmount{}
}

func collectRuleIDs(result *taxcalc.Result) []int64 {
	var ids []int64
	for _, li := range result.LineItems {
		ids = append(ids, lineRuleIDs(li)...)
	}
	return lo.Uniq(ids)
}

func itemRuleIDs(result *taxcalc.Result, lineItemID string) []int64 {
	var ids []int64
	for _, li := range result.LineItems {
		if li.LineItemID == lineItemID {
			ids = append(ids, lineRuleIDs(li)...)
		}
	}
	return lo.Uniq(ids)
}

func lineRuleIDs(li taxcalc.ResultLineItem) []int64 {
	var ids []int64
	for _, tax := range li.Taxes {
		if tax.InclusionRuleID != nil {
			ids = append(ids, tax.InclusionRuleID.Value)
		}
		if tax.CalculationRuleID != nil {
			ids = append(ids, tax.CalculationRuleID.Value)
		}
	}
	return ids
}
