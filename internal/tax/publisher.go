package tax

import (
	"context"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/plateful/tax-reporter/internal/domain"
	"github.com/plateful/tax-reporter/internal/logger"
)

// ReportFeeTax is the fee-level slice of a report message.
type ReportFeeTax struct {
	FeeType    string  `json:"fee_type"`
	Fee        float64 `json:"fee"`
	FeeTax     float64 `json:"fee_tax"`
	Taxable    float64 `json:"taxable"`
	FeeTaxRate float64 `json:"fee_tax_rate"`
}

// ReportItemTax is the item-level slice of a report message.
type ReportItemTax struct {
	ItemID      string         `json:"item_id"`
	ItemPrice   float64        `json:"item_price"`
	ItemTax     float64        `json:"item_tax"`
	ItemTaxRate float64        `json:"item_tax_rate"`
	Taxable     float64        `json:"taxable"`
	TotalTax    float64        `json:"total_tax"`
	TaxRuleIDs  []int64        `json:"tax_rule_ids"`
	FeeTaxes    []ReportFeeTax `json:"fee_taxes"`
}

// ReportMessage is the invoice-report event consumed by the order service.
// Exactly one of OrderNumber and OrderID is set, matching the document
// identity the order was reported under.
type ReportMessage struct {
	DocumentNumber string          `json:"document_number"`
	OrderNumber    string          `json:"order_number,omitempty"`
	OrderID        string          `json:"order_id,omitempty"`
	Action         string          `json:"action"`
	ItemTaxes      []ReportItemTax `json:"item_taxes"`
}

// reportedFees lists the fee types carried per item in report messages, in
// emission order.
var reportedFees = []domain.FeeType{
	domain.FeeService,
	domain.FeeFastPass,
	domain.FeeDelivery,
	domain.FeeSmallOrder,
}

// BuildReportMessage folds the mapped taxes into the bus message. Fee slices
// only cover fees the item actually carried.
func BuildReportMessage(order *domain.TaxableOrder, taxes *OrderTaxes) *ReportMessage {
	msg := &ReportMessage{
		DocumentNumber: taxes.DocumentNumber,
		Action:         "INVOICE",
	}

	// Meal-kit subscription orders are keyed by order id downstream; every
	// other order is keyed by its order number.
	if order.BrandCategory.IsMealKit() && order.ScheduleType == domain.ScheduleSubscription {
		msg.OrderID = taxes.DocumentNumber
	} else {
		msg.OrderNumber = taxes.DocumentNumber
	}

	itemTaxesByID := make(map[string]ItemTaxes, len(taxes.Items))
	for _, it := range taxes.Items {
		itemTaxesByID[it.ItemID.String()] = it
	}

	for _, item := range order.Items {
		it, ok := itemTaxesByID[item.ItemID.String()]
		if !ok {
			it = ItemTaxes{ItemID: item.ItemID}
		}

		reportItem := ReportItemTax{
			ItemID:      item.ItemID.String(),
			ItemPrice:   item.Subtotal.InexactFloat64(),
			ItemTax:     it.Subtotal.Tax.InexactFloat64(),
			ItemTaxRate: it.Subtotal.Rate.InexactFloat64(),
			Taxable:     it.Subtotal.Taxable.InexactFloat64(),
			TotalTax:    it.TotalTax.InexactFloat64(),
			TaxRuleIDs:  it.RuleIDs,
			FeeTaxes:    []ReportFeeTax{},
		}
		if reportItem.TaxRuleIDs == nil {
			reportItem.TaxRuleIDs = []int64{}
		}

		for _, fee := range reportedFees {
			base := item.FeeBase(fee)
			if !base.IsPositive() {
				continue
			}
			feeTax := it.Fees[fee]
			reportItem.FeeTaxes = append(reportItem.FeeTaxes, ReportFeeTax{
				FeeType:    string(fee),
				Fee:        base.InexactFloat64(),
				FeeTax:     feeTax.Tax.InexactFloat64(),
				Taxable:    feeTax.Taxable.InexactFloat64(),
				FeeTaxRate: feeTax.Rate.InexactFloat64(),
			})
		}

		msg.ItemTaxes = append(msg.ItemTaxes, reportItem)
	}

	return msg
}

// Publisher hands report messages to the message bus.
type Publisher interface {
	Publish(ctx context.Context, topic, key string, payload interface{}) error
}

// PublishReport sends the report message keyed by its document number.
func PublishReport(ctx context.Context, bus Publisher, topic string, msg *ReportMessage) error {
	if err := bus.Publish(ctx, topic, msg.DocumentNumber, msg); err != nil {
		return errors.Wrapf(err, "publishing report for document %s", msg.DocumentNumber)
	}
	logger.Info("published invoice report",
		zap.String("documentNumber", msg.DocumentNumber),
		zap.String("topic", topic),
		zap.Int("items", len(msg.ItemTaxes)))
	return nil
}
