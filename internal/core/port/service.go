package port

import (
	"context"

	"github.com/MikeRez0/ypstorefront/internal/core/domain"
	"github.com/google/uuid"
	"github.com/govalues/decimal"
)

type OrderLine struct {
	ProductID uuid.UUID
	VariantID uuid.NullUUID
	Quantity  int
}

func (l OrderLine) Key() domain.StockKey {
	return domain.StockKey{ProductID: l.ProductID, VariantID: l.VariantID}
}

// PlaceOrderRequest is a cart snapshot handed over by checkout. Zero adjustments are skipped.
type PlaceOrderRequest struct {
	UserID          uuid.NullUUID
	Currency        domain.Currency
	Lines           []OrderLine
	ShippingAddress domain.Address
	BillingAddress  domain.Address
	CustomerEmail   string
	CustomerPhone   string
	Notes           string
	Tax             decimal.Decimal
	Shipping        decimal.Decimal
	Discount        decimal.Decimal
}

// GatewayCallback is a payment gateway notification. Outcome is PaymentStatusCompleted
// or PaymentStatusFailed.
type GatewayCallback struct {
	PaymentReference string
	TransactionID    string
	Outcome          domain.PaymentStatus
	Reason           string
	Response         string
}

//go:generate mockgen -source=service.go -destination=mock/service.go -package=mock
type OrderService interface {
	PlaceOrder(ctx context.Context, req PlaceOrderRequest) (*domain.Order, error)
	GetOrder(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	GetOrderByNumber(ctx context.Context, number domain.OrderNumber) (*domain.Order, error)
	ListOrdersByStatus(ctx context.Context, status domain.OrderStatus, limit uint64) ([]*domain.Order, error)

	AddOrderItem(ctx context.Context, id uuid.UUID, line OrderLine) (*domain.Order, error)
	RemoveOrderItem(ctx context.Context, id uuid.UUID, key domain.StockKey) (*domain.Order, error)
	UpdateOrderItemQuantity(ctx context.Context, id uuid.UUID, key domain.StockKey, qty int) (*domain.Order, error)

	ApplyDiscount(ctx context.Context, id uuid.UUID, amount domain.Money) (*domain.Order, error)
	UpdateTax(ctx context.Context, id uuid.UUID, amount domain.Money) (*domain.Order, error)
	UpdateShipping(ctx context.Context, id uuid.UUID, amount domain.Money) (*domain.Order, error)

	ConfirmOrder(ctx context.Context, id uuid.UUID, by domain.Actor) (*domain.Order, error)
	StartProcessing(ctx context.Context, id uuid.UUID, by domain.Actor) (*domain.Order, error)
	ShipOrder(ctx context.Context, id uuid.UUID, by domain.Actor, trackingNumber, carrier string) (*domain.Order, error)
	MarkOutForDelivery(ctx context.Context, id uuid.UUID, by domain.Actor) (*domain.Order, error)
	DeliverOrder(ctx context.Context, id uuid.UUID, by domain.Actor) (*domain.Order, error)
	CancelOrder(ctx context.Context, id uuid.UUID, by domain.Actor, reason string) (*domain.Order, error)
}

type PaymentService interface {
	OpenPayment(ctx context.Context, orderID uuid.UUID, method domain.PaymentMethod) (*domain.Payment, error)
	GetPayment(ctx context.Context, id uuid.UUID) (*domain.Payment, error)
	ListPaymentsByOrder(ctx context.Context, orderID uuid.UUID) ([]*domain.Payment, error)
	MarkPaymentProcessing(ctx context.Context, id uuid.UUID) (*domain.Payment, error)
	HandleGatewayCallback(ctx context.Context, cb GatewayCallback) (*domain.Payment, error)
	CancelPayment(ctx context.Context, id uuid.UUID) (*domain.Payment, error)
	RefundPayment(ctx context.Context, id uuid.UUID, amount domain.Money, reference string) (*domain.Payment, error)
}

type Service interface {
	OrderService
	PaymentService
}
