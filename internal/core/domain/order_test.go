package domain_test

import (
	"testing"

	"github.com/MikeRez0/ypstorefront/internal/core/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestOrder(t *testing.T) *domain.Order {
	t.Helper()
	o, err := domain.NewOrder(domain.NewOrderParams{
		Number:   "10000000001",
		Currency: "USD",
		ShippingAddress: domain.Address{
			Name:       "Jane Doe",
			Line1:      "1 Main St",
			City:       "Springfield",
			PostalCode: "12345",
			Country:    "US",
		},
		CustomerEmail: "jane@example.com",
	})
	require.NoError(t, err)
	return o
}

func product(price string) domain.ProductSnapshot {
	return domain.ProductSnapshot{
		ProductID:   uuid.New(),
		ProductName: "T-shirt",
		SKU:         "TS-01",
		UnitPrice:   domain.MustMoney(price, "USD"),
	}
}

func usd(amount string) domain.Money {
	return domain.MustMoney(amount, "USD")
}

// walk drives an order forward along the fulfilment path until it reaches status.
func walk(t *testing.T, o *domain.Order, status domain.OrderStatus) {
	t.Helper()
	if status == domain.OrderStatusCancelled {
		require.NoError(t, o.Cancel(domain.ActorSystem, "test"))
		return
	}
	next := map[domain.OrderStatus]func() error{
		domain.OrderStatusPending:        func() error { return o.Confirm(domain.ActorSystem) },
		domain.OrderStatusConfirmed:      func() error { return o.StartProcessing(domain.ActorSystem) },
		domain.OrderStatusProcessing:     func() error { return o.Ship(domain.ActorSystem, "TRK1", "UPS") },
		domain.OrderStatusShipped:        func() error { return o.MarkOutForDelivery(domain.ActorSystem) },
		domain.OrderStatusOutForDelivery: func() error { return o.Deliver(domain.ActorSystem) },
	}
	for o.Status() != status {
		step, ok := next[o.Status()]
		require.True(t, ok, "cannot reach %s from %s", status, o.Status())
		require.NoError(t, step())
	}
}

func TestNewOrder_Validation(t *testing.T) {
	_, err := domain.NewOrder(domain.NewOrderParams{Currency: "US", CustomerEmail: "nope"})
	require.ErrorIs(t, err, domain.ErrValidation)
	assert.GreaterOrEqual(t, len(domain.Messages(err)), 5)

	o := newTestOrder(t)
	assert.Equal(t, domain.OrderStatusPending, o.Status())
	assert.Equal(t, o.ShippingAddress(), o.BillingAddress())
	assert.True(t, o.TotalAmount().IsZero())
	assert.Equal(t, domain.Currency("USD"), o.TotalAmount().Currency())
}

func TestOrder_TotalsWithDiscount(t *testing.T) {
	o := newTestOrder(t)

	require.NoError(t, o.AddItem(product("10.00"), 2))
	require.NoError(t, o.AddItem(product("5.00"), 1))
	assert.True(t, o.Subtotal().Equal(usd("25.00")))

	require.NoError(t, o.ApplyDiscount(usd("5.00")))
	assert.True(t, o.TotalAmount().Equal(usd("20.00")))
	assert.Equal(t, 3, o.GetTotalItems())
}

func TestOrder_CannotCancelShipped(t *testing.T) {
	o := newTestOrder(t)
	require.NoError(t, o.AddItem(product("10.00"), 1))

	require.NoError(t, o.Confirm(domain.ActorSystem))
	require.NoError(t, o.StartProcessing(domain.ActorSystem))
	require.NoError(t, o.Ship(domain.ActorSystem, "1Z999", "UPS"))
	assert.NotNil(t, o.ShippedAt())
	assert.Equal(t, "1Z999", o.TrackingNumber())

	err := o.Cancel(domain.ActorSystem, "changed mind")
	assert.ErrorIs(t, err, domain.ErrInvalidStateTransition)
	assert.Equal(t, domain.OrderStatusShipped, o.Status())
}

func TestOrder_MergesSameProduct(t *testing.T) {
	o := newTestOrder(t)
	p := product("4.00")
	p.VariantID = uuid.NullUUID{UUID: uuid.New(), Valid: true}

	require.NoError(t, o.AddItem(p, 2))
	require.NoError(t, o.AddItem(p, 3))

	items := o.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 5, items[0].Quantity)
	assert.True(t, o.Subtotal().Equal(usd("20.00")))

	other := p
	other.VariantID = uuid.NullUUID{UUID: uuid.New(), Valid: true}
	require.NoError(t, o.AddItem(other, 1))
	assert.Len(t, o.Items(), 2)
}

func TestOrder_SubtotalFollowsItems(t *testing.T) {
	o := newTestOrder(t)
	a, b, c := product("1.10"), product("2.25"), product("0.99")

	mutations := []func() error{
		func() error { return o.AddItem(a, 3) },
		func() error { return o.AddItem(b, 1) },
		func() error { return o.UpdateTax(usd("0.70")) },
		func() error { return o.AddItem(c, 10) },
		func() error { return o.UpdateItemQuantity(a.StockKey(), 1) },
		func() error { return o.UpdateShipping(usd("4.95")) },
		func() error { return o.RemoveItem(b.StockKey()) },
		func() error { return o.AddItem(a, 2) },
		func() error { return o.ApplyDiscount(usd("1.00")) },
		func() error { return o.UpdateItemQuantity(c.StockKey(), 0) },
	}

	for i, mutate := range mutations {
		require.NoError(t, mutate(), "mutation %d", i)

		want := domain.ZeroMoney("USD")
		for _, it := range o.Items() {
			line, err := it.LineTotal()
			require.NoError(t, err)
			want, err = want.Add(line)
			require.NoError(t, err)
		}
		assert.True(t, o.Subtotal().Equal(want), "subtotal after mutation %d", i)

		total, _ := o.Subtotal().Add(o.TaxAmount())
		total, _ = total.Add(o.ShippingAmount())
		total, _ = total.Sub(o.DiscountAmount())
		assert.True(t, o.TotalAmount().Equal(total), "total after mutation %d", i)
	}

	_, ok := o.Item(c.StockKey())
	assert.False(t, ok)
	item, ok := o.Item(a.StockKey())
	require.True(t, ok)
	assert.Equal(t, 3, item.Quantity)
}

func TestOrder_ItemValidation(t *testing.T) {
	o := newTestOrder(t)
	p := product("3.00")

	assert.ErrorIs(t, o.AddItem(p, 0), domain.ErrValidation)
	assert.ErrorIs(t, o.AddItem(p, -2), domain.ErrValidation)
	assert.ErrorIs(t, o.RemoveItem(p.StockKey()), domain.ErrDataNotFound)
	assert.ErrorIs(t, o.UpdateItemQuantity(p.StockKey(), 2), domain.ErrDataNotFound)

	eur := p
	eur.UnitPrice = domain.MustMoney("3.00", "EUR")
	assert.ErrorIs(t, o.AddItem(eur, 1), domain.ErrCurrencyMismatch)
	assert.Empty(t, o.Items())
}

func TestOrder_ItemsLockedAfterPending(t *testing.T) {
	for _, status := range domain.OrderStatuses {
		if status == domain.OrderStatusPending {
			continue
		}
		t.Run(string(status), func(t *testing.T) {
			o := newTestOrder(t)
			p := product("2.00")
			require.NoError(t, o.AddItem(p, 1))
			walk(t, o, status)

			assert.ErrorIs(t, o.AddItem(p, 1), domain.ErrOrderLocked)
			assert.ErrorIs(t, o.RemoveItem(p.StockKey()), domain.ErrOrderLocked)
			assert.ErrorIs(t, o.UpdateItemQuantity(p.StockKey(), 4), domain.ErrOrderLocked)
			assert.Len(t, o.Items(), 1)
		})
	}
}

func TestOrder_ItemsViewIsACopy(t *testing.T) {
	o := newTestOrder(t)
	require.NoError(t, o.AddItem(product("2.00"), 1))

	items := o.Items()
	items[0].Quantity = 99
	assert.Equal(t, 1, o.Items()[0].Quantity)
	assert.True(t, o.Subtotal().Equal(usd("2.00")))
}

func TestOrder_Cancel(t *testing.T) {
	allowed := map[domain.OrderStatus]bool{
		domain.OrderStatusPending:        true,
		domain.OrderStatusConfirmed:      true,
		domain.OrderStatusProcessing:     true,
		domain.OrderStatusOutForDelivery: true,
	}

	for _, status := range domain.OrderStatuses {
		t.Run(string(status), func(t *testing.T) {
			o := newTestOrder(t)
			walk(t, o, status)

			err := o.Cancel("admin@shop", "customer request")
			if !allowed[status] {
				assert.ErrorIs(t, err, domain.ErrInvalidStateTransition)
				assert.Equal(t, status, o.Status())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, domain.OrderStatusCancelled, o.Status())
			assert.Contains(t, o.Notes(), "Cancelled: customer request")

			history := o.History()
			last := history[len(history)-1]
			assert.Equal(t, domain.Actor("admin@shop"), last.Actor)
			assert.Equal(t, status, last.From)
			assert.Equal(t, "customer request", last.Reason)
		})
	}
}

func TestOrder_CancelRequiresReason(t *testing.T) {
	o := newTestOrder(t)
	assert.ErrorIs(t, o.Cancel(domain.ActorSystem, "  "), domain.ErrValidation)
	assert.Equal(t, domain.OrderStatusPending, o.Status())
	assert.Empty(t, o.History())
}

func TestNextOrderStatus_Table(t *testing.T) {
	want := map[domain.OrderAction]map[domain.OrderStatus]domain.OrderStatus{
		domain.OrderActionConfirm:            {domain.OrderStatusPending: domain.OrderStatusConfirmed},
		domain.OrderActionStartProcessing:    {domain.OrderStatusConfirmed: domain.OrderStatusProcessing},
		domain.OrderActionShip:               {domain.OrderStatusProcessing: domain.OrderStatusShipped},
		domain.OrderActionMarkOutForDelivery: {domain.OrderStatusShipped: domain.OrderStatusOutForDelivery},
		domain.OrderActionDeliver:            {domain.OrderStatusOutForDelivery: domain.OrderStatusDelivered},
		domain.OrderActionCancel: {
			domain.OrderStatusPending:        domain.OrderStatusCancelled,
			domain.OrderStatusConfirmed:      domain.OrderStatusCancelled,
			domain.OrderStatusProcessing:     domain.OrderStatusCancelled,
			domain.OrderStatusOutForDelivery: domain.OrderStatusCancelled,
		},
	}

	for action, edges := range want {
		for _, from := range domain.OrderStatuses {
			to, err := domain.NextOrderStatus(from, action)
			if expected, ok := edges[from]; ok {
				assert.NoError(t, err, "%s from %s", action, from)
				assert.Equal(t, expected, to)
				continue
			}
			var te *domain.TransitionError
			assert.ErrorAs(t, err, &te, "%s from %s", action, from)
			assert.Equal(t, from, to)
		}
	}
}

func TestOrder_Adjustments(t *testing.T) {
	t.Run("discount above subtotal clamps total", func(t *testing.T) {
		o := newTestOrder(t)
		require.NoError(t, o.AddItem(product("10.00"), 1))
		require.NoError(t, o.ApplyDiscount(usd("15.00")))
		assert.True(t, o.DiscountAmount().Equal(usd("15.00")))
		assert.True(t, o.TotalAmount().IsZero())
		assert.False(t, o.TotalAmount().IsNeg())
	})

	t.Run("negative and foreign amounts", func(t *testing.T) {
		o := newTestOrder(t)
		assert.ErrorIs(t, o.ApplyDiscount(usd("-1")), domain.ErrValidation)
		assert.ErrorIs(t, o.UpdateTax(domain.MustMoney("1", "EUR")), domain.ErrCurrencyMismatch)
	})

	t.Run("locked once shipped", func(t *testing.T) {
		o := newTestOrder(t)
		walk(t, o, domain.OrderStatusProcessing)
		require.NoError(t, o.UpdateShipping(usd("5.00")))
		walk(t, o, domain.OrderStatusShipped)
		assert.ErrorIs(t, o.UpdateShipping(usd("6.00")), domain.ErrOrderLocked)
		assert.True(t, o.ShippingAmount().Equal(usd("5.00")))
	})
}

func TestOrder_HoldsStock(t *testing.T) {
	o := newTestOrder(t)
	assert.False(t, o.HoldsStock())
	walk(t, o, domain.OrderStatusConfirmed)
	assert.True(t, o.HoldsStock())
	walk(t, o, domain.OrderStatusDelivered)
	assert.True(t, o.HoldsStock())
	assert.NotNil(t, o.DeliveredAt())
}

func TestRestoreOrder_RoundTrip(t *testing.T) {
	o := newTestOrder(t)
	require.NoError(t, o.AddItem(product("7.50"), 2))
	require.NoError(t, o.Confirm("ops"))

	restored := domain.RestoreOrder(o.Snapshot())
	assert.Equal(t, o.Snapshot(), restored.Snapshot())
	assert.NoError(t, restored.StartProcessing(domain.ActorSystem))
}
