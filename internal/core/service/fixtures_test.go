package service_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/MikeRez0/ypstorefront/internal/core/domain"
	"github.com/MikeRez0/ypstorefront/internal/core/port"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

var address = domain.Address{
	Name:       "Ann Smith",
	Line1:      "5 Market St",
	City:       "Portland",
	PostalCode: "97201",
	Country:    "US",
}

func snapshot(price string) domain.ProductSnapshot {
	return domain.ProductSnapshot{
		ProductID:   uuid.New(),
		ProductName: "Hoodie",
		SKU:         "HD-" + uuid.NewString()[:4],
		UnitPrice:   domain.MustMoney(price, "USD"),
	}
}

// pendingOrder builds a Pending order with one line of qty units per product.
func pendingOrder(t *testing.T, qty int, products ...domain.ProductSnapshot) *domain.Order {
	t.Helper()
	o, err := domain.NewOrder(domain.NewOrderParams{
		Number:          "100000000008",
		Currency:        "USD",
		ShippingAddress: address,
		CustomerEmail:   "ann@example.com",
	})
	require.NoError(t, err)
	for _, p := range products {
		require.NoError(t, o.AddItem(p, qty))
	}
	return o
}

func confirmedOrder(t *testing.T, qty int, products ...domain.ProductSnapshot) *domain.Order {
	t.Helper()
	o := pendingOrder(t, qty, products...)
	require.NoError(t, o.Confirm(domain.ActorSystem))
	return o
}

// withVersion returns a copy of o carrying version v, as a repository would load it.
func withVersion(o *domain.Order, v int64) *domain.Order {
	s := o.Snapshot()
	s.Version = v
	return domain.RestoreOrder(s)
}

func clone(o *domain.Order) *domain.Order {
	return domain.RestoreOrder(o.Snapshot())
}

func clonePayment(p *domain.Payment) *domain.Payment {
	return domain.RestorePayment(p.Snapshot())
}

// applyTo returns a repository UpdateOrder stand-in that runs the update on a copy of o.
func applyTo(o *domain.Order) func(context.Context, uuid.UUID, port.UpdateOrderFn) (*domain.Order, error) {
	return func(_ context.Context, _ uuid.UUID, fn port.UpdateOrderFn) (*domain.Order, error) {
		c := clone(o)
		if err := fn(c); err != nil {
			return nil, err
		}
		return c, nil
	}
}

func applyToPayment(p *domain.Payment, siblings ...*domain.Payment) func(context.Context, uuid.UUID,
	port.UpdatePaymentFn) (*domain.Payment, error) {
	return func(_ context.Context, _ uuid.UUID, fn port.UpdatePaymentFn) (*domain.Payment, error) {
		c := clonePayment(p)
		all := []*domain.Payment{c}
		for _, s := range siblings {
			all = append(all, clonePayment(s))
		}
		if err := fn(c, all); err != nil {
			return nil, err
		}
		return c, nil
	}
}

func newPayment(t *testing.T, orderID uuid.UUID, amount string) *domain.Payment {
	t.Helper()
	p, err := domain.NewPayment(orderID, "PAY-"+uuid.NewString(), domain.MustMoney(amount, "USD"),
		domain.PaymentMethodCard)
	require.NoError(t, err)
	return p
}

// memLedger is an in-memory StockLedger with a single lock, the way a row lock
// serializes one product.
type memLedger struct {
	mu     sync.Mutex
	levels map[domain.StockKey]*domain.StockLevel
}

func newMemLedger(levels ...domain.StockLevel) *memLedger {
	l := &memLedger{levels: make(map[domain.StockKey]*domain.StockLevel)}
	for i := range levels {
		lvl := levels[i]
		l.levels[lvl.Key] = &lvl
	}
	return l
}

func (l *memLedger) TryReserve(_ context.Context, key domain.StockKey, qty int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	lvl, ok := l.levels[key]
	if !ok {
		return fmt.Errorf("%w: stock %s", domain.ErrDataNotFound, key)
	}
	return lvl.Reduce(qty)
}

func (l *memLedger) Release(_ context.Context, key domain.StockKey, qty int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	lvl, ok := l.levels[key]
	if !ok {
		return fmt.Errorf("%w: stock %s", domain.ErrDataNotFound, key)
	}
	return lvl.Increase(qty)
}

func (l *memLedger) quantity(key domain.StockKey) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.levels[key].Quantity
}

// memOrders is an in-memory OrderRepository that serializes updates per store and bumps
// the version on every write.
type memOrders struct {
	mu     sync.Mutex
	orders map[uuid.UUID]domain.OrderSnapshot
}

func newMemOrders(orders ...*domain.Order) *memOrders {
	r := &memOrders{orders: make(map[uuid.UUID]domain.OrderSnapshot)}
	for _, o := range orders {
		r.orders[o.ID()] = o.Snapshot()
	}
	return r
}

func (r *memOrders) CreateOrder(_ context.Context, o *domain.Order) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.orders[o.ID()] = o.Snapshot()
	return o, nil
}

func (r *memOrders) ReadOrder(_ context.Context, id uuid.UUID) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.orders[id]
	if !ok {
		return nil, domain.ErrDataNotFound
	}
	return domain.RestoreOrder(s), nil
}

func (r *memOrders) ReadOrderByNumber(context.Context, domain.OrderNumber) (*domain.Order, error) {
	return nil, domain.ErrDataNotFound
}

func (r *memOrders) ListOrdersByStatus(context.Context, domain.OrderStatus, uint64) ([]*domain.Order, error) {
	return nil, nil
}

func (r *memOrders) UpdateOrder(_ context.Context, id uuid.UUID, fn port.UpdateOrderFn) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.orders[id]
	if !ok {
		return nil, domain.ErrDataNotFound
	}
	o := domain.RestoreOrder(s)
	if err := fn(o); err != nil {
		return nil, err
	}
	next := o.Snapshot()
	next.Version++
	r.orders[id] = next
	return domain.RestoreOrder(next), nil
}
