package tax

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/plateful/tax-reporter/internal/client/taxcalc"
	"github.com/plateful/tax-reporter/internal/domain"
	"github.com/plateful/tax-reporter/internal/logger"
)

// OrderStore is the slice of the order database the reporter reads.
type OrderStore interface {
	GetOrder(ctx context.Context, orderID uuid.UUID) (*domain.Order, error)
	ListOrderItems(ctx context.Context, orderID uuid.UUID) ([]domain.OrderItem, error)
	GetOrderAddress(ctx context.Context, orderID uuid.UUID) (*domain.OrderAddress, error)
	GetOrderLocation(ctx context.Context, orderID uuid.UUID) (*domain.OrderLocation, error)
	GetOrderHQAddress(ctx context.Context, orderID uuid.UUID) (*domain.OrderHQAddress, error)
	GetOrderCharge(ctx context.Context, orderID uuid.UUID) (*domain.OrderCharge, error)
	ListOrderChargeItems(ctx context.Context, orderID uuid.UUID) ([]domain.OrderChargeItem, error)
	ListOrderRestaurants(ctx context.Context, orderID uuid.UUID) ([]domain.OrderRestaurant, error)
	ListTaxCategories(ctx context.Context, ids []string) ([]domain.TaxCategory, error)
}

// TaxCalculator computes taxes for a supply document.
type TaxCalculator interface {
	CalculateTax(ctx context.Context, req *taxcalc.Request) (*taxcalc.Result, error)
}

// Service runs the full report pipeline for single orders: load, normalize,
// compute, map, publish.
type Service struct {
	store       OrderStore
	calculator  TaxCalculator
	bus         Publisher
	reportTopic string
}

// NewService wires the report pipeline.
func NewService(store OrderStore, calculator TaxCalculator, bus Publisher, reportTopic string) *Service {
	return &Service{
		store:       store,
		calculator:  calculator,
		bus:         bus,
		reportTopic: reportTopic,
	}
}

// Report runs the pipeline for one order. Returns ErrOrderSkipped for orders
// outside the reportable population and nil with no message when the order
// has nothing to report.
func (s *Service) Report(ctx context.Context, orderID uuid.UUID) (*ReportMessage, error) {
	order, err := s.store.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if ShouldSkip(order) {
		return nil, errors.Wrapf(ErrOrderSkipped, "order %s", orderID)
	}

	rec, err := s.loadRecords(ctx, order)
	if err != nil {
		return nil, err
	}

	taxable, err := Normalize(rec)
	if err != nil {
		return nil, err
	}

	itemCategories, feeCategories, err := s.loadCategories(ctx, taxable)
	if err != nil {
		return nil, err
	}

	documentNumber := DocumentNumber(taxable)
	req := BuildRequest(taxable, documentNumber, itemCategories, feeCategories)
	if len(req.LineItems) == 0 {
		logger.Info("no taxable lines, nothing to report",
			zap.String("orderId", orderID.String()),
			zap.String("documentNumber", documentNumber))
		return nil, nil
	}

	result, err := s.calculator.CalculateTax(ctx, req)
	if err != nil {
		return nil, errors.Wrapf(err, "computing tax for order %s", orderID)
	}

	taxes := MapResponse(taxable, documentNumber, feeCategories, result)
	msg := BuildReportMessage(taxable, taxes)

	if err := PublishReport(ctx, s.bus, s.reportTopic, msg); err != nil {
		return nil, err
	}
	return msg, nil
}

func (s *Service) loadRecords(ctx context.Context, order *domain.Order) (OrderRecords, error) {
	rec := OrderRecords{Order: order}
	orderID := order.ID

	var err error
	if rec.Items, err = s.store.ListOrderItems(ctx, orderID); err != nil {
		return rec, err
	}
	if rec.Address, err = s.store.GetOrderAddress(ctx, orderID); err != nil {
		return rec, err
	}
	if rec.HQAddress, err = s.store.GetOrderHQAddress(ctx, orderID); err != nil {
		return rec, err
	}
	if rec.Location, err = s.store.GetOrderLocation(ctx, orderID); err != nil {
		return rec, err
	}
	if rec.Charge, err = s.store.GetOrderCharge(ctx, orderID); err != nil {
		return rec, err
	}
	if rec.ChargeItems, err = s.store.ListOrderChargeItems(ctx, orderID); err != nil {
		return rec, err
	}
	if rec.Restaurants, err = s.store.ListOrderRestaurants(ctx, orderID); err != nil {
		return rec, err
	}
	return rec, nil
}

func (s *Service) loadCategories(ctx context.Context, taxable *domain.TaxableOrder) (map[string]domain.TaxCategory, []domain.TaxCategory, error) {
	itemCategoryIDs := lo.Uniq(lo.FilterMap(taxable.Items, func(it domain.TaxableChargeItem, _ int) (string, bool) {
		return it.TaxCategoryID, it.TaxCategoryID != ""
	}))

	itemCategoryList, err := s.store.ListTaxCategories(ctx, itemCategoryIDs)
	if err != nil {
		return nil, nil, errors.Wrap(err, "loading item tax categories")
	}
	itemCategories := lo.KeyBy(itemCategoryList, func(tc domain.TaxCategory) string { return tc.ID })

	feeCategories, err := s.store.ListTaxCategories(ctx, FeeCategoryIDs)
	if err != nil {
		return nil, nil, errors.Wrap(err, "loading fee tax categories")
	}
	return itemCategories, feeCategories, nil
}
