package domain

import (
	"time"

	"github.com/google/uuid"
)

// OrderSnapshot is the flat, persistable state of an Order.
type OrderSnapshot struct {
	ID              uuid.UUID
	Number          OrderNumber
	UserID          uuid.NullUUID
	Status          OrderStatus
	Currency        Currency
	Subtotal        Money
	Tax             Money
	Shipping        Money
	Discount        Money
	Total           Money
	ShippingAddress Address
	BillingAddress  Address
	CustomerEmail   string
	CustomerPhone   string
	Notes           string
	TrackingNumber  string
	ShippingCarrier string
	ShippedAt       *time.Time
	DeliveredAt     *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
	Version         int64
	Items           []OrderItem
	History         []AuditEntry
}

func (o *Order) Snapshot() OrderSnapshot {
	return OrderSnapshot{
		ID:              o.id,
		Number:          o.number,
		UserID:          o.userID,
		Status:          o.status,
		Currency:        o.currency,
		Subtotal:        o.subtotal,
		Tax:             o.tax,
		Shipping:        o.shipping,
		Discount:        o.discount,
		Total:           o.total,
		ShippingAddress: o.shippingAddress,
		BillingAddress:  o.billingAddress,
		CustomerEmail:   o.customerEmail,
		CustomerPhone:   o.customerPhone,
		Notes:           o.notes,
		TrackingNumber:  o.trackingNumber,
		ShippingCarrier: o.shippingCarrier,
		ShippedAt:       copyTime(o.shippedAt),
		DeliveredAt:     copyTime(o.deliveredAt),
		CreatedAt:       o.createdAt,
		UpdatedAt:       o.updatedAt,
		Version:         o.version,
		Items:           o.Items(),
		History:         o.History(),
	}
}

// RestoreOrder rebuilds an Order from persisted state.
func RestoreOrder(s OrderSnapshot) *Order {
	return &Order{
		id:              s.ID,
		number:          s.Number,
		userID:          s.UserID,
		status:          s.Status,
		currency:        s.Currency,
		items:           append([]OrderItem(nil), s.Items...),
		subtotal:        s.Subtotal,
		tax:             s.Tax,
		shipping:        s.Shipping,
		discount:        s.Discount,
		total:           s.Total,
		shippingAddress: s.ShippingAddress,
		billingAddress:  s.BillingAddress,
		customerEmail:   s.CustomerEmail,
		customerPhone:   s.CustomerPhone,
		notes:           s.Notes,
		trackingNumber:  s.TrackingNumber,
		shippingCarrier: s.ShippingCarrier,
		shippedAt:       copyTime(s.ShippedAt),
		deliveredAt:     copyTime(s.DeliveredAt),
		history:         append([]AuditEntry(nil), s.History...),
		createdAt:       s.CreatedAt,
		updatedAt:       s.UpdatedAt,
		version:         s.Version,
	}
}

// PaymentSnapshot is the flat, persistable state of a Payment.
type PaymentSnapshot struct {
	ID                   uuid.UUID
	OrderID              uuid.UUID
	Reference            string
	Amount               Money
	Method               PaymentMethod
	Status               PaymentStatus
	GatewayTransactionID string
	GatewayResponse      string
	ProcessedAt          *time.Time
	FailedAt             *time.Time
	FailureReason        string
	RefundReference      string
	RefundedAmount       Money
	RefundedAt           *time.Time
	Refunds              []Refund
	CreatedAt            time.Time
	UpdatedAt            time.Time
	Version              int64
}

func (p *Payment) Snapshot() PaymentSnapshot {
	return PaymentSnapshot{
		ID:                   p.id,
		OrderID:              p.orderID,
		Reference:            p.reference,
		Amount:               p.amount,
		Method:               p.method,
		Status:               p.status,
		GatewayTransactionID: p.gatewayTransactionID,
		GatewayResponse:      p.gatewayResponse,
		ProcessedAt:          copyTime(p.processedAt),
		FailedAt:             copyTime(p.failedAt),
		FailureReason:        p.failureReason,
		RefundReference:      p.refundReference,
		RefundedAmount:       p.refundedAmount,
		RefundedAt:           copyTime(p.refundedAt),
		Refunds:              p.Refunds(),
		CreatedAt:            p.createdAt,
		UpdatedAt:            p.updatedAt,
		Version:              p.version,
	}
}

// RestorePayment rebuilds a Payment from persisted state.
func RestorePayment(s PaymentSnapshot) *Payment {
	refunded := s.RefundedAmount
	if refunded.Currency() == "" {
		refunded = ZeroMoney(s.Amount.Currency())
	}
	return &Payment{
		id:                   s.ID,
		orderID:              s.OrderID,
		reference:            s.Reference,
		amount:               s.Amount,
		method:               s.Method,
		status:               s.Status,
		gatewayTransactionID: s.GatewayTransactionID,
		gatewayResponse:      s.GatewayResponse,
		processedAt:          copyTime(s.ProcessedAt),
		failedAt:             copyTime(s.FailedAt),
		failureReason:        s.FailureReason,
		refundReference:      s.RefundReference,
		refundedAmount:       refunded,
		refundedAt:           copyTime(s.RefundedAt),
		refunds:              append([]Refund(nil), s.Refunds...),
		createdAt:            s.CreatedAt,
		updatedAt:            s.UpdatedAt,
		version:              s.Version,
	}
}
