package tax_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plateful/tax-reporter/internal/client/taxcalc"
	"github.com/plateful/tax-reporter/internal/domain"
	"github.com/plateful/tax-reporter/internal/tax"
)

func ruleID(v int64) *taxcalc.RuleID { return &taxcalc.RuleID{Value: v} }

func TestMapResponse(t *testing.T) {
	order := taxableHQOrder()
	itemA := uuid.New()
	itemB := uuid.New()
	order.Items = []domain.TaxableChargeItem{
		{
			ItemID:        itemA,
			TaxCategoryID: "tc-prepared-food",
			Subtotal:      decimal.NewFromFloat(19.75),
			ServiceFee:    decimal.NewFromFloat(2.25),
			DeliveryFee:   decimal.NewFromFloat(3.00),
		},
		{
			ItemID:        itemB,
			TaxCategoryID: "tc-prepared-food",
			Subtotal:      decimal.NewFromFloat(5.00),
			DeliveryFee:   decimal.NewFromFloat(2.00),
		},
	}

	result := &taxcalc.Result{
		DocumentDate: "2026-04-02",
		TotalTax:     decimal.NewFromFloat(2.62),
		LineItems: []taxcalc.ResultLineItem{
			{
				LineItemID:    itemA.String(),
				ExtendedPrice: decimal.NewFromFloat(19.75),
				TotalTax:      decimal.NewFromFloat(1.74),
				Product:       taxcalc.Product{ProductClass: "FOOD"},
				Taxes: []taxcalc.Tax{
					{
						CalculatedTax:     decimal.NewFromFloat(1.74),
						EffectiveRate:     decimal.NewFromFloat(0.088),
						Taxable:           decimal.NewFromFloat(19.75),
						InclusionRuleID:   ruleID(101),
						CalculationRuleID: ruleID(202),
					},
				},
			},
			{
				LineItemID:    itemA.String(),
				ExtendedPrice: decimal.NewFromFloat(2.25),
				TotalTax:      decimal.NewFromFloat(0.20),
				Product:       taxcalc.Product{ProductClass: "FOOD", Value: "SVC"},
				Taxes: []taxcalc.Tax{
					{
						CalculatedTax: decimal.NewFromFloat(0.20),
						EffectiveRate: decimal.NewFromFloat(0.088),
						Taxable:       decimal.NewFromFloat(2.25),
					},
				},
			},
			{
				LineItemID:    "DLV",
				ExtendedPrice: decimal.NewFromFloat(5.00),
				TotalTax:      decimal.NewFromFloat(0.44),
				Product:       taxcalc.Product{ProductClass: "DLV"},
				Taxes: []taxcalc.Tax{
					{
						CalculatedTax:   decimal.NewFromFloat(0.44),
						EffectiveRate:   decimal.NewFromFloat(0.088),
						Taxable:         decimal.NewFromFloat(5.00),
						InclusionRuleID: ruleID(303),
					},
				},
			},
		},
	}

	taxes := tax.MapResponse(order, "ORD-2001", testFeeCategories, result)

	assert.Equal(t, "ORD-2001", taxes.DocumentNumber)
	assert.Equal(t, "2026-04-02", taxes.DocumentDate)
	assert.True(t, taxes.TotalTax.Equal(decimal.NewFromFloat(2.62)))
	assert.ElementsMatch(t, []int64{101, 202, 303}, taxes.RuleIDs)
	require.Len(t, taxes.Items, 2)

	first := taxes.Items[0]
	assert.Equal(t, itemA, first.ItemID)
	assert.True(t, first.Subtotal.Tax.Equal(decimal.NewFromFloat(1.74)))
	assert.True(t, first.Subtotal.Taxable.Equal(decimal.NewFromFloat(19.75)))
	assert.True(t, first.Subtotal.Rate.Equal(decimal.NewFromFloat(0.088)))
	assert.ElementsMatch(t, []int64{101, 202}, first.RuleIDs)

	assert.True(t, first.Fees[domain.FeeService].Tax.Equal(decimal.NewFromFloat(0.20)))
	// The pooled delivery tax of $0.44 splits 3:2 across the items.
	assert.True(t, first.Fees[domain.FeeDelivery].Tax.Equal(decimal.NewFromFloat(0.26)),
		"got %s", first.Fees[domain.FeeDelivery].Tax)
	assert.True(t, first.Fees[domain.FeeFastPass].Tax.IsZero())
	assert.True(t, first.Fees[domain.FeeSmallOrder].Tax.IsZero())
	// 1.74 + 0.20 + 0.26
	assert.True(t, first.TotalTax.Equal(decimal.NewFromFloat(2.20)), "got %s", first.TotalTax)

	second := taxes.Items[1]
	assert.Equal(t, itemB, second.ItemID)
	// No subtotal line came back for this item.
	assert.True(t, second.Subtotal.Tax.IsZero())
	assert.True(t, second.Fees[domain.FeeDelivery].Tax.Equal(decimal.NewFromFloat(0.18)),
		"got %s", second.Fees[domain.FeeDelivery].Tax)
	assert.True(t, second.TotalTax.Equal(decimal.NewFromFloat(0.18)), "got %s", second.TotalTax)
	assert.Empty(t, second.RuleIDs)

	// Delivery shares reassemble the pooled line exactly.
	deliverySum := first.Fees[domain.FeeDelivery].Tax.Add(second.Fees[domain.FeeDelivery].Tax)
	assert.True(t, deliverySum.Equal(decimal.NewFromFloat(0.44)))
}

func TestMapResponseWithoutPooledLines(t *testing.T) {
	order := taxableHQOrder()
	itemA := uuid.New()
	order.Items = []domain.TaxableChargeItem{
		{ItemID: itemA, TaxCategoryID: "tc-prepared-food", Subtotal: decimal.NewFromFloat(10.00)},
	}

	result := &taxcalc.Result{
		TotalTax: decimal.NewFromFloat(0.88),
		LineItems: []taxcalc.ResultLineItem{
			{
				LineItemID: itemA.String(),
				TotalTax:   decimal.NewFromFloat(0.88),
				Product:    taxcalc.Product{ProductClass: "FOOD"},
				Taxes: []taxcalc.Tax{
					{CalculatedTax: decimal.NewFromFloat(0.88), EffectiveRate: decimal.NewFromFloat(0.088), Taxable: decimal.NewFromFloat(10.00)},
				},
			},
		},
	}

	taxes := tax.MapResponse(order, "ORD-2001", testFeeCategories, result)
	require.Len(t, taxes.Items, 1)
	assert.True(t, taxes.Items[0].Fees[domain.FeeDelivery].Tax.IsZero())
	assert.True(t, taxes.Items[0].Fees[domain.FeeFastPass].Tax.IsZero())
	assert.True(t, taxes.Items[0].TotalTax.Equal(decimal.NewFromFloat(0.88)))
}

func TestResultLineItemTaxable(t *testing.T) {
	t.Run("largest positive base wins", func(t *testing.T) {
		li := taxcalc.ResultLineItem{Taxes: []taxcalc.Tax{
			{Taxable: decimal.NewFromFloat(3.00)},
			{Taxable: decimal.NewFromFloat(5.00)},
			{Taxable: decimal.NewFromFloat(-9.00)},
		}}
		assert.True(t, li.Taxable().Equal(decimal.NewFromFloat(5.00)))
	})

	t.Run("all-negative bases fall back to largest magnitude", func(t *testing.T) {
		li := taxcalc.ResultLineItem{Taxes: []taxcalc.Tax{
			{Taxable: decimal.NewFromFloat(-3.00)},
			{Taxable: decimal.NewFromFloat(-5.00)},
		}}
		assert.True(t, li.Taxable().Equal(decimal.NewFromFloat(5.00)))
	})

	t.Run("rate sums across jurisdictions", func(t *testing.T) {
		li := taxcalc.ResultLineItem{Taxes: []taxcalc.Tax{
			{EffectiveRate: decimal.NewFromFloat(0.04)},
			{EffectiveRate: decimal.NewFromFloat(0.048)},
		}}
		assert.True(t, li.TotalRate().Equal(decimal.NewFromFloat(0.088)))
	})
}
