package tax

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/plateful/tax-reporter/internal/domain"
)

// FeeAllocation is one item's share of a pooled fee's tax.
type FeeAllocation struct {
	ItemID  uuid.UUID
	Tax     decimal.Decimal
	Taxable decimal.Decimal
	Rate    decimal.Decimal
}

// AllocateSharedFee distributes the tax computed on a pooled fee line back to
// the items that contributed to the fee, proportionally to each item's fee
// base. Shares are rounded to cents; the last contributing item absorbs the
// rounding remainder so the shares always sum exactly to the input totals.
// Items allocate in their order on the taxable order, so the split is
// deterministic. Returns nil when no item carries a positive base.
func AllocateSharedFee(order *domain.TaxableOrder, fee domain.FeeType, totalTax, totalTaxable, rate decimal.Decimal) []FeeAllocation {
	type contributor struct {
		itemID uuid.UUID
		base   decimal.Decimal
	}

	var contributors []contributor
	totalFee := decimal.Zero
	for _, item := range order.Items {
		base := item.FeeBase(fee)
		if base.IsPositive() {
			contributors = append(contributors, contributor{itemID: item.ItemID, base: base})
			totalFee = totalFee.Add(base)
		}
	}
	if len(contributors) == 0 || totalFee.IsZero() {
		return nil
	}

	allocations := make([]FeeAllocation, 0, len(contributors))
	remainingTax := totalTax
	remainingTaxable := totalTaxable

	for i, c := range contributors {
		var tax, taxable decimal.Decimal
		if i == len(contributors)-1 {
			tax = remainingTax
			taxable = remainingTaxable
		} else {
			tax = clampShare(totalTax.Mul(c.base).Div(totalFee).Round(2), remainingTax)
			taxable = clampShare(totalTaxable.Mul(c.base).Div(totalFee).Round(2), remainingTaxable)
		}

		allocations = append(allocations, FeeAllocation{
			ItemID:  c.itemID,
			Tax:     tax,
			Taxable: taxable,
			Rate:    rate,
		})
		remainingTax = remainingTax.Sub(tax)
		remainingTaxable = remainingTaxable.Sub(taxable)
	}

	return allocations
}

// clampShare caps a rounded share at what is still unallocated so the running
// remainder never flips sign.
func clampShare(share, remaining decimal.Decimal) decimal.Decimal {
	if share.Abs().GreaterThan(remaining.Abs()) {
		return remaining
	}
	return share
}
