package service

import (
	"context"
	"errors"

	"github.com/MikeRez0/ypstorefront/internal/core/domain"
	"github.com/MikeRez0/ypstorefront/internal/core/port"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// maxAttempts bounds how often a command is replayed after losing a concurrent update.
const maxAttempts = 3

type Service struct {
	orders   port.OrderRepository
	payments port.PaymentRepository
	catalog  port.Catalog
	stock    port.StockLedger
	currency domain.Currency
	logger   *zap.Logger
}

var _ port.Service = (*Service)(nil)

func NewService(orders port.OrderRepository, payments port.PaymentRepository,
	catalog port.Catalog, stock port.StockLedger,
	currency domain.Currency, logger *zap.Logger) (*Service, error) {
	cur, err := domain.ParseCurrency(string(currency))
	if err != nil {
		return nil, err
	}
	return &Service{
		orders:   orders,
		payments: payments,
		catalog:  catalog,
		stock:    stock,
		currency: cur,
		logger:   logger.Named("service"),
	}, nil
}

// retry runs fn again while it reports a concurrency conflict.
func (s *Service) retry(ctx context.Context, op string, fn func() error) error {
	var err error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err = fn(); !errors.Is(err, domain.ErrConcurrencyConflict) {
			return err
		}
		s.logger.Debug("Concurrent update, retrying",
			zap.String("op", op), zap.Int("attempt", attempt))
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
	return err
}

// updateOrder applies fn to the order in one unit of work, retrying on conflicts.
func (s *Service) updateOrder(ctx context.Context, op string, id uuid.UUID, fn port.UpdateOrderFn) (*domain.Order, error) {
	var order *domain.Order
	err := s.retry(ctx, op, func() error {
		var err error
		order, err = s.orders.UpdateOrder(ctx, id, fn)
		return err
	})
	if err != nil {
		s.logError(op, err)
		return nil, err
	}
	return order, nil
}

func (s *Service) updatePayment(ctx context.Context, op string, id uuid.UUID, fn port.UpdatePaymentFn) (*domain.Payment, error) {
	var payment *domain.Payment
	err := s.retry(ctx, op, func() error {
		var err error
		payment, err = s.payments.UpdatePayment(ctx, id, fn)
		return err
	})
	if err != nil {
		s.logError(op, err)
		return nil, err
	}
	return payment, nil
}

// businessErrors are expected outcomes of a command and are not logged as failures.
var businessErrors = []error{
	domain.ErrValidation,
	domain.ErrInvalidStateTransition,
	domain.ErrOrderLocked,
	domain.ErrInsufficientStock,
	domain.ErrCurrencyMismatch,
	domain.ErrRefundExceedsPayment,
	domain.ErrOrderAlreadyPaid,
	domain.ErrDataNotFound,
	domain.ErrConflictingData,
}

func (s *Service) logError(op string, err error) {
	for _, be := range businessErrors {
		if errors.Is(err, be) {
			s.logger.Debug("Command rejected", zap.String("op", op), zap.Error(err))
			return
		}
	}
	s.logger.Error("Command failed", zap.String("op", op), zap.Error(err))
}
