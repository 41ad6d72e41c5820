package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/MikeRez0/ypstorefront/internal/core/domain"
	"github.com/MikeRez0/ypstorefront/internal/core/port"
	"github.com/MikeRez0/ypstorefront/internal/core/utils"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// OpenPayment starts a payment attempt for the current order total.
func (s *Service) OpenPayment(ctx context.Context, orderID uuid.UUID,
	method domain.PaymentMethod) (*domain.Payment, error) {
	order, err := s.orders.ReadOrder(ctx, orderID)
	if err != nil {
		s.logError("open payment", err)
		return nil, err
	}
	if order.Status() == domain.OrderStatusCancelled {
		return nil, &domain.TransitionError{Entity: "order", Action: "pay", From: string(order.Status())}
	}
	if !order.TotalAmount().IsPos() {
		return nil, fmt.Errorf("%w: order %s has nothing to pay", domain.ErrValidation, order.Number())
	}

	siblings, err := s.payments.ListPaymentsByOrder(ctx, orderID)
	if err != nil {
		s.logError("open payment", err)
		return nil, err
	}
	for _, p := range siblings {
		if p.IsSettled() {
			return nil, fmt.Errorf("%w: payment %s", domain.ErrOrderAlreadyPaid, p.Reference())
		}
	}

	payment, err := domain.NewPayment(orderID, utils.NewPaymentReference(), order.TotalAmount(), method)
	if err != nil {
		return nil, err
	}
	created, err := s.payments.CreatePayment(ctx, payment)
	if err != nil {
		s.logError("open payment", err)
		return nil, err
	}

	s.logger.Info("Payment opened",
		zap.String("order", string(order.Number())),
		zap.String("payment", created.Reference()),
		zap.String("amount", created.Amount().String()))
	return created, nil
}

func (s *Service) GetPayment(ctx context.Context, id uuid.UUID) (*domain.Payment, error) {
	payment, err := s.payments.ReadPayment(ctx, id)
	if err != nil {
		s.logError("get payment", err)
		return nil, err
	}
	return payment, nil
}

func (s *Service) ListPaymentsByOrder(ctx context.Context, orderID uuid.UUID) ([]*domain.Payment, error) {
	if _, err := s.orders.ReadOrder(ctx, orderID); err != nil {
		s.logError("list payments", err)
		return nil, err
	}
	list, err := s.payments.ListPaymentsByOrder(ctx, orderID)
	if err != nil {
		s.logError("list payments", err)
		return nil, err
	}
	return list, nil
}

func (s *Service) MarkPaymentProcessing(ctx context.Context, id uuid.UUID) (*domain.Payment, error) {
	return s.updatePayment(ctx, "mark payment processing", id,
		func(p *domain.Payment, _ []*domain.Payment) error {
			return p.MarkAsProcessing()
		})
}

// HandleGatewayCallback applies a gateway outcome. A callback that was already applied
// returns the stored payment unchanged.
func (s *Service) HandleGatewayCallback(ctx context.Context, cb port.GatewayCallback) (*domain.Payment, error) {
	if cb.Outcome != domain.PaymentStatusCompleted && cb.Outcome != domain.PaymentStatusFailed {
		return nil, fmt.Errorf("%w: unsupported gateway outcome %q", domain.ErrValidation, cb.Outcome)
	}
	cb.TransactionID = strings.TrimSpace(cb.TransactionID)
	if cb.TransactionID == "" {
		return nil, fmt.Errorf("%w: gateway transaction id is required", domain.ErrValidation)
	}

	payment, err := s.payments.ReadPaymentByReference(ctx, cb.PaymentReference)
	if err != nil {
		s.logError("gateway callback", err)
		return nil, err
	}
	if payment.IsReplayOf(cb.TransactionID, cb.Outcome) {
		s.logger.Debug("Gateway callback replayed",
			zap.String("payment", payment.Reference()), zap.String("txn", cb.TransactionID))
		return payment, nil
	}

	return s.updatePayment(ctx, "gateway callback", payment.ID(),
		func(p *domain.Payment, siblings []*domain.Payment) error {
			if p.IsReplayOf(cb.TransactionID, cb.Outcome) {
				return nil
			}
			// The gateway may report an outcome without a prior processing notice.
			if p.Status() == domain.PaymentStatusPending {
				if err := p.MarkAsProcessing(); err != nil {
					return err
				}
			}
			if cb.Outcome == domain.PaymentStatusFailed {
				return p.MarkAsFailed(cb.Reason, cb.TransactionID, cb.Response)
			}
			if err := domain.EnsureSingleSettlement(p, siblings); err != nil {
				return err
			}
			return p.MarkAsCompleted(cb.TransactionID, cb.Response)
		})
}

func (s *Service) CancelPayment(ctx context.Context, id uuid.UUID) (*domain.Payment, error) {
	return s.updatePayment(ctx, "cancel payment", id,
		func(p *domain.Payment, _ []*domain.Payment) error {
			return p.Cancel()
		})
}

func (s *Service) RefundPayment(ctx context.Context, id uuid.UUID, amount domain.Money,
	reference string) (*domain.Payment, error) {
	payment, err := s.updatePayment(ctx, "refund payment", id,
		func(p *domain.Payment, _ []*domain.Payment) error {
			return p.ProcessRefund(amount, reference)
		})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Payment refunded",
		zap.String("payment", payment.Reference()),
		zap.String("refund", reference),
		zap.String("refunded", payment.RefundedAmount().String()))
	return payment, nil
}
