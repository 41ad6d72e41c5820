package service

import (
	"context"
	"fmt"

	"github.com/MikeRez0/ypstorefront/internal/core/domain"
	"github.com/MikeRez0/ypstorefront/internal/core/port"
	"github.com/MikeRez0/ypstorefront/internal/core/utils"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	defaultListLimit = 50
	maxListLimit     = 500
)

func (s *Service) GetOrder(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	order, err := s.orders.ReadOrder(ctx, id)
	if err != nil {
		s.logError("get order", err)
		return nil, err
	}
	return order, nil
}

func (s *Service) GetOrderByNumber(ctx context.Context, number domain.OrderNumber) (*domain.Order, error) {
	if err := utils.ValidateLuhn(string(number)); err != nil {
		return nil, fmt.Errorf("%w: order number %q: %w", domain.ErrValidation, number, err)
	}
	order, err := s.orders.ReadOrderByNumber(ctx, number)
	if err != nil {
		s.logError("get order by number", err)
		return nil, err
	}
	return order, nil
}

func (s *Service) ListOrdersByStatus(ctx context.Context, status domain.OrderStatus,
	limit uint64) ([]*domain.Order, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: unknown order status %q", domain.ErrValidation, status)
	}
	if limit == 0 {
		limit = defaultListLimit
	}
	limit = min(limit, maxListLimit)

	list, err := s.orders.ListOrdersByStatus(ctx, status, limit)
	if err != nil {
		s.logError("list orders", err)
		return nil, err
	}
	return list, nil
}

// * Lines and adjustments.

func (s *Service) AddOrderItem(ctx context.Context, id uuid.UUID, line port.OrderLine) (*domain.Order, error) {
	snapshot, err := s.catalog.ProductSnapshot(ctx, line.Key())
	if err != nil {
		s.logError("add order item", err)
		return nil, err
	}
	return s.updateOrder(ctx, "add order item", id, func(o *domain.Order) error {
		return o.AddItem(snapshot, line.Quantity)
	})
}

func (s *Service) RemoveOrderItem(ctx context.Context, id uuid.UUID, key domain.StockKey) (*domain.Order, error) {
	return s.updateOrder(ctx, "remove order item", id, func(o *domain.Order) error {
		return o.RemoveItem(key)
	})
}

func (s *Service) UpdateOrderItemQuantity(ctx context.Context, id uuid.UUID, key domain.StockKey,
	qty int) (*domain.Order, error) {
	return s.updateOrder(ctx, "update order item", id, func(o *domain.Order) error {
		return o.UpdateItemQuantity(key, qty)
	})
}

func (s *Service) ApplyDiscount(ctx context.Context, id uuid.UUID, amount domain.Money) (*domain.Order, error) {
	return s.updateOrder(ctx, "apply discount", id, func(o *domain.Order) error {
		return o.ApplyDiscount(amount)
	})
}

func (s *Service) UpdateTax(ctx context.Context, id uuid.UUID, amount domain.Money) (*domain.Order, error) {
	return s.updateOrder(ctx, "update tax", id, func(o *domain.Order) error {
		return o.UpdateTax(amount)
	})
}

func (s *Service) UpdateShipping(ctx context.Context, id uuid.UUID, amount domain.Money) (*domain.Order, error) {
	return s.updateOrder(ctx, "update shipping", id, func(o *domain.Order) error {
		return o.UpdateShipping(amount)
	})
}

// * Fulfilment.

// ConfirmOrder reserves stock for every line and then confirms the order. Reservations
// are released again when any line is short or the order changed in the meantime.
func (s *Service) ConfirmOrder(ctx context.Context, id uuid.UUID, by domain.Actor) (*domain.Order, error) {
	var confirmed *domain.Order
	err := s.retry(ctx, "confirm order", func() error {
		order, err := s.orders.ReadOrder(ctx, id)
		if err != nil {
			return err
		}
		if _, err := domain.NextOrderStatus(order.Status(), domain.OrderActionConfirm); err != nil {
			return err
		}
		items := order.Items()
		if len(items) == 0 {
			return fmt.Errorf("%w: order %s has no items", domain.ErrValidation, order.Number())
		}

		reserved, err := s.reserve(ctx, items)
		if err != nil {
			return err
		}

		confirmed, err = s.orders.UpdateOrder(ctx, id, func(o *domain.Order) error {
			// Lines may have changed since they were reserved.
			if o.Version() != order.Version() {
				return domain.ErrConcurrencyConflict
			}
			return o.Confirm(by)
		})
		if err != nil {
			s.release(ctx, reserved)
			return err
		}
		return nil
	})
	if err != nil {
		s.logError("confirm order", err)
		return nil, err
	}

	s.logger.Info("Order confirmed",
		zap.String("order", string(confirmed.Number())), zap.String("by", string(by)))
	return confirmed, nil
}

func (s *Service) StartProcessing(ctx context.Context, id uuid.UUID, by domain.Actor) (*domain.Order, error) {
	return s.updateOrder(ctx, "start processing", id, func(o *domain.Order) error {
		return o.StartProcessing(by)
	})
}

func (s *Service) ShipOrder(ctx context.Context, id uuid.UUID, by domain.Actor,
	trackingNumber, carrier string) (*domain.Order, error) {
	return s.updateOrder(ctx, "ship order", id, func(o *domain.Order) error {
		return o.Ship(by, trackingNumber, carrier)
	})
}

func (s *Service) MarkOutForDelivery(ctx context.Context, id uuid.UUID, by domain.Actor) (*domain.Order, error) {
	return s.updateOrder(ctx, "mark out for delivery", id, func(o *domain.Order) error {
		return o.MarkOutForDelivery(by)
	})
}

func (s *Service) DeliverOrder(ctx context.Context, id uuid.UUID, by domain.Actor) (*domain.Order, error) {
	return s.updateOrder(ctx, "deliver order", id, func(o *domain.Order) error {
		return o.Deliver(by)
	})
}

// CancelOrder cancels the order and gives back the stock it was holding.
func (s *Service) CancelOrder(ctx context.Context, id uuid.UUID, by domain.Actor,
	reason string) (*domain.Order, error) {
	var held []domain.OrderItem
	order, err := s.updateOrder(ctx, "cancel order", id, func(o *domain.Order) error {
		held = nil
		if o.HoldsStock() {
			held = o.Items()
		}
		return o.Cancel(by, reason)
	})
	if err != nil {
		return nil, err
	}

	s.release(ctx, held)
	s.logger.Info("Order cancelled",
		zap.String("order", string(order.Number())),
		zap.String("by", string(by)),
		zap.Int("released_lines", len(held)))
	return order, nil
}

// * Stock.

func (s *Service) reserve(ctx context.Context, items []domain.OrderItem) ([]domain.OrderItem, error) {
	reserved := make([]domain.OrderItem, 0, len(items))
	for _, it := range items {
		if err := s.stock.TryReserve(ctx, it.Key(), it.Quantity); err != nil {
			s.release(ctx, reserved)
			return nil, err
		}
		reserved = append(reserved, it)
	}
	return reserved, nil
}

// release returns reserved quantities. It runs even when ctx is already cancelled.
func (s *Service) release(ctx context.Context, items []domain.OrderItem) {
	ctx = context.WithoutCancel(ctx)
	for _, it := range items {
		if err := s.stock.Release(ctx, it.Key(), it.Quantity); err != nil {
			s.logger.Error("Stock release failed",
				zap.String("key", it.Key().String()),
				zap.Int("qty", it.Quantity),
				zap.Error(err))
		}
	}
}
