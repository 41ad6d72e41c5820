package domain_test

import (
	"testing"

	"github.com/MikeRez0/ypstorefront/internal/core/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPayment(t *testing.T, amount string) *domain.Payment {
	t.Helper()
	p, err := domain.NewPayment(uuid.New(), "PAY-"+uuid.NewString(), usd(amount), domain.PaymentMethodCard)
	require.NoError(t, err)
	return p
}

func completedPayment(t *testing.T, amount string) *domain.Payment {
	t.Helper()
	p := newTestPayment(t, amount)
	require.NoError(t, p.MarkAsProcessing())
	require.NoError(t, p.MarkAsCompleted("gw-1", `{"ok":true}`))
	return p
}

func TestNewPayment_Validation(t *testing.T) {
	orderID := uuid.New()
	tests := []struct {
		name      string
		orderID   uuid.UUID
		reference string
		amount    domain.Money
		method    domain.PaymentMethod
	}{
		{name: "no order", orderID: uuid.Nil, reference: "PAY-1", amount: usd("1"), method: domain.PaymentMethodCard},
		{name: "no reference", orderID: orderID, reference: " ", amount: usd("1"), method: domain.PaymentMethodCard},
		{name: "zero amount", orderID: orderID, reference: "PAY-1", amount: usd("0"), method: domain.PaymentMethodCard},
		{name: "unknown method", orderID: orderID, reference: "PAY-1", amount: usd("1"), method: "barter"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := domain.NewPayment(test.orderID, test.reference, test.amount, test.method)
			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}
}

func TestPayment_FullRefund(t *testing.T) {
	p := newTestPayment(t, "100.00")
	require.NoError(t, p.MarkAsProcessing())
	require.NoError(t, p.MarkAsCompleted("gw-100", ""))
	assert.NotNil(t, p.ProcessedAt())

	require.NoError(t, p.ProcessRefund(usd("100.00"), "REF-1"))
	assert.Equal(t, domain.PaymentStatusRefunded, p.Status())
	assert.True(t, p.RefundedAmount().Equal(p.Amount()))
	assert.True(t, p.IsFullyRefunded())
	assert.True(t, p.RemainingRefundable().IsZero())
	assert.Equal(t, "REF-1", p.RefundReference())
	assert.NotNil(t, p.RefundedAt())

	assert.ErrorIs(t, p.ProcessRefund(usd("1.00"), "REF-2"), domain.ErrInvalidStateTransition)
}

func TestPayment_PartialRefundThenOverflow(t *testing.T) {
	p := completedPayment(t, "100.00")

	require.NoError(t, p.ProcessRefund(usd("30.00"), "REF-1"))
	assert.Equal(t, domain.PaymentStatusPartialRefund, p.Status())
	assert.False(t, p.IsFullyRefunded())

	err := p.ProcessRefund(usd("80.00"), "REF-2")
	assert.ErrorIs(t, err, domain.ErrRefundExceedsPayment)
	assert.Equal(t, domain.PaymentStatusPartialRefund, p.Status())
	assert.True(t, p.RefundedAmount().Equal(usd("30.00")))
	assert.True(t, p.RemainingRefundable().Equal(usd("70.00")))

	require.NoError(t, p.ProcessRefund(usd("70.00"), "REF-3"))
	assert.Equal(t, domain.PaymentStatusRefunded, p.Status())
	assert.Len(t, p.Refunds(), 2)
}

func TestPayment_RefundReferenceIsIdempotent(t *testing.T) {
	p := completedPayment(t, "50.00")

	require.NoError(t, p.ProcessRefund(usd("10.00"), "REF-1"))
	require.NoError(t, p.ProcessRefund(usd("10.00"), "REF-1"))
	assert.True(t, p.RefundedAmount().Equal(usd("10.00")))
	assert.Len(t, p.Refunds(), 1)

	assert.ErrorIs(t, p.ProcessRefund(usd("12.00"), "REF-1"), domain.ErrValidation)
	assert.True(t, p.RefundedAmount().Equal(usd("10.00")))

	require.NoError(t, p.ProcessRefund(usd("40.00"), "REF-2"))
	require.Equal(t, domain.PaymentStatusRefunded, p.Status())

	require.NoError(t, p.ProcessRefund(usd("40.00"), "REF-2"))
	require.NoError(t, p.ProcessRefund(usd("10.00"), "REF-1"))
	assert.Equal(t, domain.PaymentStatusRefunded, p.Status())
	assert.Len(t, p.Refunds(), 2)

	assert.ErrorIs(t, p.ProcessRefund(usd("1.00"), "REF-3"), domain.ErrInvalidStateTransition)
}

func TestPayment_RefundGuards(t *testing.T) {
	p := completedPayment(t, "50.00")

	assert.ErrorIs(t, p.ProcessRefund(usd("0"), "REF-1"), domain.ErrValidation)
	assert.ErrorIs(t, p.ProcessRefund(usd("-5"), "REF-1"), domain.ErrValidation)
	assert.ErrorIs(t, p.ProcessRefund(usd("5"), ""), domain.ErrValidation)
	assert.ErrorIs(t, p.ProcessRefund(domain.MustMoney("5", "EUR"), "REF-1"), domain.ErrCurrencyMismatch)
	assert.Equal(t, domain.PaymentStatusCompleted, p.Status())

	pending := newTestPayment(t, "50.00")
	assert.ErrorIs(t, pending.ProcessRefund(usd("5"), "REF-1"), domain.ErrInvalidStateTransition)
}

func TestPayment_RefundedNeverExceedsAmount(t *testing.T) {
	p := completedPayment(t, "10.00")
	refunds := []string{"3.33", "3.33", "3.33", "0.02", "0.01", "5.00"}

	for i, amount := range refunds {
		_ = p.ProcessRefund(usd(amount), uuid.NewString())

		assert.False(t, p.RefundedAmount().IsNeg(), "refund %d", i)
		c, err := p.RefundedAmount().Cmp(p.Amount())
		require.NoError(t, err)
		assert.LessOrEqual(t, c, 0, "refund %d", i)
		assert.NotEqual(t, domain.PaymentStatusCompleted, p.Status())
	}
	assert.Equal(t, domain.PaymentStatusRefunded, p.Status())
}

func TestPayment_FailAndCancel(t *testing.T) {
	t.Run("fail from processing", func(t *testing.T) {
		p := newTestPayment(t, "5.00")
		require.NoError(t, p.MarkAsProcessing())
		require.NoError(t, p.MarkAsFailed("card declined", "gw-9", `{"code":51}`))
		assert.Equal(t, domain.PaymentStatusFailed, p.Status())
		assert.Equal(t, "card declined", p.FailureReason())
		assert.NotNil(t, p.FailedAt())
		assert.True(t, p.IsReplayOf("gw-9", domain.PaymentStatusFailed))
	})

	t.Run("settled payment cannot fail or cancel", func(t *testing.T) {
		p := completedPayment(t, "5.00")
		assert.ErrorIs(t, p.MarkAsFailed("late", "", ""), domain.ErrInvalidStateTransition)
		assert.ErrorIs(t, p.Cancel(), domain.ErrInvalidStateTransition)

		require.NoError(t, p.ProcessRefund(usd("1.00"), "REF-1"))
		assert.ErrorIs(t, p.MarkAsFailed("late", "", ""), domain.ErrInvalidStateTransition)
		assert.ErrorIs(t, p.Cancel(), domain.ErrInvalidStateTransition)
	})

	t.Run("cancel pending", func(t *testing.T) {
		p := newTestPayment(t, "5.00")
		require.NoError(t, p.Cancel())
		assert.ErrorIs(t, p.MarkAsProcessing(), domain.ErrInvalidStateTransition)
	})
}

func TestNextPaymentStatus_Table(t *testing.T) {
	want := map[domain.PaymentAction]map[domain.PaymentStatus]domain.PaymentStatus{
		domain.PaymentActionMarkProcessing: {domain.PaymentStatusPending: domain.PaymentStatusProcessing},
		domain.PaymentActionMarkCompleted:  {domain.PaymentStatusProcessing: domain.PaymentStatusCompleted},
		domain.PaymentActionMarkFailed: {
			domain.PaymentStatusPending:    domain.PaymentStatusFailed,
			domain.PaymentStatusProcessing: domain.PaymentStatusFailed,
		},
		domain.PaymentActionCancel: {
			domain.PaymentStatusPending:    domain.PaymentStatusCancelled,
			domain.PaymentStatusProcessing: domain.PaymentStatusCancelled,
		},
		domain.PaymentActionRefund: {
			domain.PaymentStatusCompleted:     domain.PaymentStatusPartialRefund,
			domain.PaymentStatusPartialRefund: domain.PaymentStatusPartialRefund,
		},
	}

	for action, edges := range want {
		for _, from := range domain.PaymentStatuses {
			to, err := domain.NextPaymentStatus(from, action)
			if expected, ok := edges[from]; ok {
				assert.NoError(t, err, "%s from %s", action, from)
				assert.Equal(t, expected, to)
				continue
			}
			assert.ErrorIs(t, err, domain.ErrInvalidStateTransition, "%s from %s", action, from)
		}
	}
}

func TestPayment_IsReplayOf(t *testing.T) {
	p := completedPayment(t, "20.00")

	assert.True(t, p.IsReplayOf("gw-1", domain.PaymentStatusCompleted))
	assert.False(t, p.IsReplayOf("gw-2", domain.PaymentStatusCompleted))
	assert.False(t, p.IsReplayOf("", domain.PaymentStatusCompleted))
	assert.False(t, p.IsReplayOf("gw-1", domain.PaymentStatusFailed))

	require.NoError(t, p.ProcessRefund(usd("5.00"), "REF-1"))
	assert.True(t, p.IsReplayOf("gw-1", domain.PaymentStatusCompleted))
}

func TestEnsureSingleSettlement(t *testing.T) {
	orderID := uuid.New()
	mk := func() *domain.Payment {
		p, err := domain.NewPayment(orderID, "PAY-"+uuid.NewString(), usd("10"), domain.PaymentMethodCard)
		require.NoError(t, err)
		require.NoError(t, p.MarkAsProcessing())
		return p
	}

	first, second := mk(), mk()
	assert.NoError(t, domain.EnsureSingleSettlement(second, []*domain.Payment{first, second}))

	require.NoError(t, first.MarkAsCompleted("gw-a", ""))
	assert.ErrorIs(t, domain.EnsureSingleSettlement(second, []*domain.Payment{first, second}),
		domain.ErrOrderAlreadyPaid)
	assert.NoError(t, domain.EnsureSingleSettlement(first, []*domain.Payment{first, second}))
}

func TestRestorePayment_RoundTrip(t *testing.T) {
	p := completedPayment(t, "40.00")
	require.NoError(t, p.ProcessRefund(usd("15.00"), "REF-1"))

	restored := domain.RestorePayment(p.Snapshot())
	assert.Equal(t, p.Snapshot(), restored.Snapshot())
	require.NoError(t, restored.ProcessRefund(usd("25.00"), "REF-2"))
	assert.Equal(t, domain.PaymentStatusRefunded, restored.Status())
}
