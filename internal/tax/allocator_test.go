package tax_test

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plateful/tax-reporter/internal/domain"
	"github.com/plateful/tax-reporter/internal/tax"
)

func orderWithDeliveryFees(fees ...float64) *domain.TaxableOrder {
	order := &domain.TaxableOrder{}
	for _, fee := range fees {
		order.Items = append(order.Items, domain.TaxableChargeItem{
			ItemID:      uuid.New(),
			DeliveryFee: decimal.NewFromFloat(fee),
		})
	}
	return order
}

func sumAllocations(allocations []tax.FeeAllocation) (taxSum, taxableSum decimal.Decimal) {
	taxSum, taxableSum = decimal.Zero, decimal.Zero
	for _, a := range allocations {
		taxSum = taxSum.Add(a.Tax)
		taxableSum = taxableSum.Add(a.Taxable)
	}
	return taxSum, taxableSum
}

func TestAllocateSharedFee(t *testing.T) {
	t.Run("splits proportionally with the remainder on the last item", func(t *testing.T) {
		order := orderWithDeliveryFees(3, 2)
		totalTax := decimal.NewFromFloat(0.44)
		totalTaxable := decimal.NewFromInt(5)
		rate := decimal.NewFromFloat(0.088)

		allocations := tax.AllocateSharedFee(order, domain.FeeDelivery, totalTax, totalTaxable, rate)
		require.Len(t, allocations, 2)

		assert.True(t, allocations[0].Tax.Equal(decimal.NewFromFloat(0.26)), "got %s", allocations[0].Tax)
		assert.True(t, allocations[1].Tax.Equal(decimal.NewFromFloat(0.18)), "got %s", allocations[1].Tax)
		assert.True(t, allocations[0].Taxable.Equal(decimal.NewFromInt(3)), "got %s", allocations[0].Taxable)
		assert.True(t, allocations[1].Taxable.Equal(decimal.NewFromInt(2)), "got %s", allocations[1].Taxable)

		for _, a := range allocations {
			assert.True(t, a.Rate.Equal(rate))
		}
	})

	t.Run("shares always sum to the input totals", func(t *testing.T) {
		for _, n := range []int{1, 2, 5, 23} {
			t.Run(fmt.Sprintf("%d items", n), func(t *testing.T) {
				// Uneven bases so the proportional shares hit repeating
				// decimals and every share needs rounding.
				fees := make([]float64, n)
				for i := range fees {
					fees[i] = 0.37 + 1.13*float64(i)
				}
				order := orderWithDeliveryFees(fees...)
				totalTax := decimal.NewFromFloat(3.33)
				totalTaxable := decimal.NewFromFloat(41.87)

				allocations := tax.AllocateSharedFee(order, domain.FeeDelivery, totalTax, totalTaxable, decimal.Zero)
				require.Len(t, allocations, n)

				taxSum, taxableSum := sumAllocations(allocations)
				assert.True(t, taxSum.Equal(totalTax), "tax sum %s", taxSum)
				assert.True(t, taxableSum.Equal(totalTaxable), "taxable sum %s", taxableSum)
			})
		}
	})

	t.Run("seven cents across three equal items", func(t *testing.T) {
		order := orderWithDeliveryFees(1, 1, 1)
		totalTax := decimal.NewFromFloat(0.07)

		allocations := tax.AllocateSharedFee(order, domain.FeeDelivery, totalTax, decimal.NewFromInt(3), decimal.Zero)
		require.Len(t, allocations, 3)

		assert.True(t, allocations[0].Tax.Equal(decimal.NewFromFloat(0.02)))
		assert.True(t, allocations[1].Tax.Equal(decimal.NewFromFloat(0.02)))
		assert.True(t, allocations[2].Tax.Equal(decimal.NewFromFloat(0.03)))
	})

	t.Run("negative totals stay exact", func(t *testing.T) {
		order := orderWithDeliveryFees(3, 2)
		totalTax := decimal.NewFromFloat(-0.44)

		allocations := tax.AllocateSharedFee(order, domain.FeeDelivery, totalTax, decimal.NewFromInt(-5), decimal.Zero)
		require.Len(t, allocations, 2)

		taxSum, taxableSum := sumAllocations(allocations)
		assert.True(t, taxSum.Equal(totalTax), "tax sum %s", taxSum)
		assert.True(t, taxableSum.Equal(decimal.NewFromInt(-5)), "taxable sum %s", taxableSum)
	})

	t.Run("returns nil when no item carries the fee", func(t *testing.T) {
		order := orderWithDeliveryFees(0, 0)
		allocations := tax.AllocateSharedFee(order, domain.FeeDelivery, decimal.NewFromFloat(0.44), decimal.NewFromInt(5), decimal.Zero)
		assert.Nil(t, allocations)
	})

	t.Run("items without the fee are excluded", func(t *testing.T) {
		order := orderWithDeliveryFees(5, 0)
		allocations := tax.AllocateSharedFee(order, domain.FeeDelivery, decimal.NewFromFloat(0.44), decimal.NewFromInt(5), decimal.Zero)
		require.Len(t, allocations, 1)
		assert.Equal(t, order.Items[0].ItemID, allocations[0].ItemID)
		assert.True(t, allocations[0].Tax.Equal(decimal.NewFromFloat(0.44)))
	})
}
