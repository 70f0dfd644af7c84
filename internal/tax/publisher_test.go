package tax_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plateful/tax-reporter/internal/domain"
	"github.com/plateful/tax-reporter/internal/tax"
)

type capturedMessage struct {
	topic   string
	key     string
	payload interface{}
}

type fakeBus struct {
	published []capturedMessage
	err       error
}

func (f *fakeBus) Publish(_ context.Context, topic, key string, payload interface{}) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, capturedMessage{topic: topic, key: key, payload: payload})
	return nil
}

func TestBuildReportMessage(t *testing.T) {
	order := taxableHQOrder()
	itemA := uuid.New()
	order.Items = []domain.TaxableChargeItem{
		{
			ItemID:      itemA,
			Subtotal:    decimal.NewFromFloat(19.75),
			ServiceFee:  decimal.NewFromFloat(2.25),
			DeliveryFee: decimal.NewFromFloat(3.00),
		},
	}

	taxes := &tax.OrderTaxes{
		DocumentNumber: "ORD-2001",
		Items: []tax.ItemTaxes{
			{
				ItemID: itemA,
				Subtotal: tax.TaxAmount{
					Tax:     decimal.NewFromFloat(1.74),
					Taxable: decimal.NewFromFloat(19.75),
					Rate:    decimal.NewFromFloat(0.088),
				},
				Fees: map[domain.FeeType]tax.TaxAmount{
					domain.FeeService:  {Tax: decimal.NewFromFloat(0.20), Taxable: decimal.NewFromFloat(2.25), Rate: decimal.NewFromFloat(0.088)},
					domain.FeeDelivery: {Tax: decimal.NewFromFloat(0.26), Taxable: decimal.NewFromFloat(3.00), Rate: decimal.NewFromFloat(0.088)},
				},
				RuleIDs:  []int64{101},
				TotalTax: decimal.NewFromFloat(2.20),
			},
		},
	}

	msg := tax.BuildReportMessage(order, taxes)

	assert.Equal(t, "ORD-2001", msg.DocumentNumber)
	assert.Equal(t, "INVOICE", msg.Action)
	assert.Equal(t, "ORD-2001", msg.OrderNumber)
	assert.Empty(t, msg.OrderID)
	require.Len(t, msg.ItemTaxes, 1)

	item := msg.ItemTaxes[0]
	assert.Equal(t, itemA.String(), item.ItemID)
	assert.Equal(t, 19.75, item.ItemPrice)
	assert.Equal(t, 1.74, item.ItemTax)
	assert.Equal(t, 2.2, item.TotalTax)
	assert.Equal(t, []int64{101}, item.TaxRuleIDs)

	// Only the fees the item actually carried show up.
	require.Len(t, item.FeeTaxes, 2)
	assert.Equal(t, "SERVICE_FEE", item.FeeTaxes[0].FeeType)
	assert.Equal(t, 2.25, item.FeeTaxes[0].Fee)
	assert.Equal(t, 0.2, item.FeeTaxes[0].FeeTax)
	assert.Equal(t, "DELIVERY_FEE", item.FeeTaxes[1].FeeType)
	assert.Equal(t, 0.26, item.FeeTaxes[1].FeeTax)
}

func TestBuildReportMessageMealKitSubscriptionKeying(t *testing.T) {
	order := taxableHQOrder()
	order.BrandCategory = domain.BrandMealKit
	order.ScheduleType = domain.ScheduleSubscription
	docNumber := order.OrderID.String()

	msg := tax.BuildReportMessage(order, &tax.OrderTaxes{DocumentNumber: docNumber})

	assert.Equal(t, docNumber, msg.OrderID)
	assert.Empty(t, msg.OrderNumber)
}

func TestPublishReport(t *testing.T) {
	bus := &fakeBus{}
	msg := &tax.ReportMessage{DocumentNumber: "ORD-2001", Action: "INVOICE"}

	err := tax.PublishReport(context.Background(), bus, "tax-report-event", msg)
	require.NoError(t, err)
	require.Len(t, bus.published, 1)
	assert.Equal(t, "tax-report-event", bus.published[0].topic)
	assert.Equal(t, "ORD-2001", bus.published[0].key)
}
