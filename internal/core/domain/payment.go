package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Refund records one processed refund of a payment.
type Refund struct {
	Reference string
	Amount    Money
	At        time.Time
}

// Payment is one payment attempt against an order. It references the order by id only.
type Payment struct {
	id        uuid.UUID
	orderID   uuid.UUID
	reference string
	amount    Money
	method    PaymentMethod
	status    PaymentStatus

	gatewayTransactionID string
	gatewayResponse      string
	processedAt          *time.Time
	failedAt             *time.Time
	failureReason        string

	refundReference string
	refundedAmount  Money
	refundedAt      *time.Time
	refunds         []Refund

	createdAt time.Time
	updatedAt time.Time
	version   int64
}

func NewPayment(orderID uuid.UUID, reference string, amount Money, method PaymentMethod) (*Payment, error) {
	if orderID == uuid.Nil {
		return nil, validationf("order id is required")
	}
	reference = strings.TrimSpace(reference)
	if reference == "" {
		return nil, validationf("payment reference is required")
	}
	if !amount.IsPos() {
		return nil, validationf("payment amount must be positive, got %s", amount)
	}
	if _, err := ParsePaymentMethod(string(method)); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	return &Payment{
		id:             uuid.New(),
		orderID:        orderID,
		reference:      reference,
		amount:         amount,
		method:         method,
		status:         PaymentStatusPending,
		refundedAmount: ZeroMoney(amount.Currency()),
		createdAt:      now,
		updatedAt:      now,
	}, nil
}

func (p *Payment) ID() uuid.UUID                { return p.id }
func (p *Payment) OrderID() uuid.UUID           { return p.orderID }
func (p *Payment) Reference() string            { return p.reference }
func (p *Payment) Amount() Money                { return p.amount }
func (p *Payment) Method() PaymentMethod        { return p.method }
func (p *Payment) Status() PaymentStatus        { return p.status }
func (p *Payment) GatewayTransactionID() string { return p.gatewayTransactionID }
func (p *Payment) GatewayResponse() string      { return p.gatewayResponse }
func (p *Payment) ProcessedAt() *time.Time      { return copyTime(p.processedAt) }
func (p *Payment) FailedAt() *time.Time         { return copyTime(p.failedAt) }
func (p *Payment) FailureReason() string        { return p.failureReason }
func (p *Payment) RefundReference() string      { return p.refundReference }
func (p *Payment) RefundedAmount() Money        { return p.refundedAmount }
func (p *Payment) RefundedAt() *time.Time       { return copyTime(p.refundedAt) }
func (p *Payment) Refunds() []Refund            { return append([]Refund(nil), p.refunds...) }
func (p *Payment) CreatedAt() time.Time         { return p.createdAt }
func (p *Payment) UpdatedAt() time.Time         { return p.updatedAt }
func (p *Payment) Version() int64               { return p.version }
func (p *Payment) IsSettled() bool              { return p.status.settled() }

func (p *Payment) IsFullyRefunded() bool {
	c, err := p.refundedAmount.Cmp(p.amount)
	return err == nil && c >= 0
}

// RemainingRefundable is the part of the payment that has not been refunded yet.
func (p *Payment) RemainingRefundable() Money {
	rest, err := p.amount.Sub(p.refundedAmount)
	if err != nil {
		return ZeroMoney(p.amount.Currency())
	}
	return rest
}

// IsReplayOf reports whether a gateway callback with this transaction id and outcome
// has already been applied.
func (p *Payment) IsReplayOf(gatewayTxID string, outcome PaymentStatus) bool {
	if gatewayTxID == "" || p.gatewayTransactionID != gatewayTxID {
		return false
	}
	switch outcome {
	case PaymentStatusCompleted:
		return p.processedAt != nil
	case PaymentStatusFailed:
		return p.status == PaymentStatusFailed
	}
	return false
}

func (p *Payment) MarkAsProcessing() error {
	_, err := p.transition(PaymentActionMarkProcessing)
	return err
}

func (p *Payment) MarkAsCompleted(gatewayTxID, gatewayResponse string) error {
	now, err := p.transition(PaymentActionMarkCompleted)
	if err != nil {
		return err
	}
	p.gatewayTransactionID = strings.TrimSpace(gatewayTxID)
	p.gatewayResponse = gatewayResponse
	p.processedAt = &now
	return nil
}

func (p *Payment) MarkAsFailed(reason, gatewayTxID, gatewayResponse string) error {
	now, err := p.transition(PaymentActionMarkFailed)
	if err != nil {
		return err
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		reason = "unspecified"
	}
	if gatewayTxID = strings.TrimSpace(gatewayTxID); gatewayTxID != "" {
		p.gatewayTransactionID = gatewayTxID
	}
	p.gatewayResponse = gatewayResponse
	p.failureReason = reason
	p.failedAt = &now
	return nil
}

func (p *Payment) Cancel() error {
	_, err := p.transition(PaymentActionCancel)
	return err
}

// ProcessRefund refunds amount under reference. Refunds only ever add up; a reference
// that was already applied with the same amount is accepted without changes.
func (p *Payment) ProcessRefund(amount Money, reference string) error {
	reference = strings.TrimSpace(reference)
	if reference == "" {
		return validationf("refund reference is required")
	}
	// Known references are answered before the status guard, so replays work once Refunded.
	for _, r := range p.refunds {
		if r.Reference != reference {
			continue
		}
		if r.Amount.Equal(amount) {
			return nil
		}
		return validationf("refund %s was already processed for %s", reference, r.Amount)
	}
	if _, err := NextPaymentStatus(p.status, PaymentActionRefund); err != nil {
		return err
	}
	if !amount.IsPos() {
		return validationf("refund amount must be positive, got %s", amount)
	}

	refunded, err := p.refundedAmount.Add(amount)
	if err != nil {
		return err
	}
	if c, _ := refunded.Cmp(p.amount); c > 0 {
		return fmt.Errorf("%w: %s already refunded, %s requested, payment is %s",
			ErrRefundExceedsPayment, p.refundedAmount, amount, p.amount)
	}

	now, err := p.transition(PaymentActionRefund)
	if err != nil {
		return err
	}
	p.refundedAmount = refunded
	p.refundReference = reference
	p.refundedAt = &now
	p.refunds = append(p.refunds, Refund{Reference: reference, Amount: amount, At: now})
	if p.IsFullyRefunded() {
		p.status = PaymentStatusRefunded
	}
	return nil
}

func (p *Payment) transition(action PaymentAction) (time.Time, error) {
	to, err := NextPaymentStatus(p.status, action)
	if err != nil {
		return time.Time{}, err
	}
	now := time.Now().UTC()
	p.status = to
	p.updatedAt = now
	return now, nil
}

// EnsureSingleSettlement rejects settling p while another payment of the same order is settled.
func EnsureSingleSettlement(p *Payment, siblings []*Payment) error {
	for _, s := range siblings {
		if s.id == p.id || s.orderID != p.orderID {
			continue
		}
		if s.IsSettled() {
			return fmt.Errorf("%w: payment %s of order %s", ErrOrderAlreadyPaid, s.reference, p.orderID)
		}
	}
	return nil
}
