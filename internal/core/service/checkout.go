package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/MikeRez0/ypstorefront/internal/core/domain"
	"github.com/MikeRez0/ypstorefront/internal/core/port"
	"github.com/MikeRez0/ypstorefront/internal/core/utils"
	"github.com/govalues/decimal"
	"go.uber.org/zap"
)

// PlaceOrder turns a cart snapshot into a Pending order priced from the catalog.
func (s *Service) PlaceOrder(ctx context.Context, req port.PlaceOrderRequest) (*domain.Order, error) {
	if len(req.Lines) == 0 {
		return nil, fmt.Errorf("%w: cart is empty", domain.ErrValidation)
	}
	if req.Currency == "" {
		req.Currency = s.currency
	}

	snapshots := make([]domain.ProductSnapshot, len(req.Lines))
	for i, line := range req.Lines {
		snapshot, err := s.catalog.ProductSnapshot(ctx, line.Key())
		if err != nil {
			s.logError("place order", err)
			return nil, err
		}
		snapshots[i] = snapshot
	}

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		order, err := buildOrder(req, snapshots, utils.NewOrderNumber())
		if err != nil {
			return nil, err
		}

		created, err := s.orders.CreateOrder(ctx, order)
		if errors.Is(err, domain.ErrConflictingData) {
			s.logger.Debug("Order number taken, generating another",
				zap.String("order", string(order.Number())))
			continue
		}
		if err != nil {
			s.logError("place order", err)
			return nil, err
		}

		s.logger.Info("Order placed",
			zap.String("order", string(created.Number())),
			zap.String("total", created.TotalAmount().String()))
		return created, nil
	}
	return nil, fmt.Errorf("%w: could not allocate an order number", domain.ErrInternal)
}

func buildOrder(req port.PlaceOrderRequest, snapshots []domain.ProductSnapshot,
	number domain.OrderNumber) (*domain.Order, error) {
	order, err := domain.NewOrder(domain.NewOrderParams{
		Number:          number,
		UserID:          req.UserID,
		Currency:        req.Currency,
		ShippingAddress: req.ShippingAddress,
		BillingAddress:  req.BillingAddress,
		CustomerEmail:   req.CustomerEmail,
		CustomerPhone:   req.CustomerPhone,
		Notes:           req.Notes,
	})
	if err != nil {
		return nil, err
	}

	for i, line := range req.Lines {
		if err := order.AddItem(snapshots[i], line.Quantity); err != nil {
			return nil, err
		}
	}

	adjustments := []struct {
		amount decimal.Decimal
		apply  func(domain.Money) error
	}{
		{req.Tax, order.UpdateTax},
		{req.Shipping, order.UpdateShipping},
		{req.Discount, order.ApplyDiscount},
	}
	for _, adj := range adjustments {
		if adj.amount.IsZero() {
			continue
		}
		m, err := domain.NewMoney(adj.amount, order.Currency())
		if err != nil {
			return nil, err
		}
		if err := adj.apply(m); err != nil {
			return nil, err
		}
	}
	return order, nil
}
