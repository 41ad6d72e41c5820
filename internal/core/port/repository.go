package port

import (
	"context"

	"github.com/MikeRez0/ypstorefront/internal/core/domain"
	"github.com/google/uuid"
)

// UpdateOrderFn mutates a freshly loaded and locked order. Returning an error rolls back.
type UpdateOrderFn func(o *domain.Order) error

// UpdatePaymentFn mutates a locked payment. siblings holds every payment of the same
// order, including the one being updated.
type UpdatePaymentFn func(p *domain.Payment, siblings []*domain.Payment) error

//go:generate mockgen -source=repository.go -destination=mock/repository.go -package=mock
type OrderRepository interface {
	CreateOrder(ctx context.Context, order *domain.Order) (*domain.Order, error)
	ReadOrder(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	ReadOrderByNumber(ctx context.Context, number domain.OrderNumber) (*domain.Order, error)
	ListOrdersByStatus(ctx context.Context, status domain.OrderStatus, limit uint64) ([]*domain.Order, error)
	UpdateOrder(ctx context.Context, id uuid.UUID, updateFn UpdateOrderFn) (*domain.Order, error)
}

type PaymentRepository interface {
	CreatePayment(ctx context.Context, payment *domain.Payment) (*domain.Payment, error)
	ReadPayment(ctx context.Context, id uuid.UUID) (*domain.Payment, error)
	ReadPaymentByReference(ctx context.Context, reference string) (*domain.Payment, error)
	ListPaymentsByOrder(ctx context.Context, orderID uuid.UUID) ([]*domain.Payment, error)
	UpdatePayment(ctx context.Context, id uuid.UUID, updateFn UpdatePaymentFn) (*domain.Payment, error)
}

// Outbox hands out undelivered events. Dispatch locks up to limit events, passes them to
// publish and marks them sent only if publish succeeds.
type Outbox interface {
	Dispatch(ctx context.Context, limit int, publish func(ctx context.Context, events []domain.Event) error) (int, error)
}
