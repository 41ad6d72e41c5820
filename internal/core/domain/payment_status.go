package domain

type PaymentStatus string

const (
	PaymentStatusPending       PaymentStatus = "PENDING"
	PaymentStatusProcessing    PaymentStatus = "PROCESSING"
	PaymentStatusCompleted     PaymentStatus = "COMPLETED"
	PaymentStatusFailed        PaymentStatus = "FAILED"
	PaymentStatusCancelled     PaymentStatus = "CANCELLED"
	PaymentStatusRefunded      PaymentStatus = "REFUNDED"
	PaymentStatusPartialRefund PaymentStatus = "PARTIAL_REFUND"
)

// PaymentStatuses lists every payment status.
var PaymentStatuses = []PaymentStatus{
	PaymentStatusPending,
	PaymentStatusProcessing,
	PaymentStatusCompleted,
	PaymentStatusFailed,
	PaymentStatusCancelled,
	PaymentStatusRefunded,
	PaymentStatusPartialRefund,
}

type PaymentAction string

const (
	PaymentActionMarkProcessing PaymentAction = "mark_processing"
	PaymentActionMarkCompleted  PaymentAction = "mark_completed"
	PaymentActionMarkFailed     PaymentAction = "mark_failed"
	PaymentActionCancel         PaymentAction = "cancel"
	PaymentActionRefund         PaymentAction = "refund"
)

type paymentTransition struct {
	from []PaymentStatus
	to   PaymentStatus
}

// Refund lands in PartialRefund; ProcessRefund moves on to Refunded once nothing is left.
var paymentTransitions = map[PaymentAction]paymentTransition{
	PaymentActionMarkProcessing: {from: []PaymentStatus{PaymentStatusPending}, to: PaymentStatusProcessing},
	PaymentActionMarkCompleted:  {from: []PaymentStatus{PaymentStatusProcessing}, to: PaymentStatusCompleted},
	PaymentActionMarkFailed: {
		from: []PaymentStatus{PaymentStatusPending, PaymentStatusProcessing},
		to:   PaymentStatusFailed,
	},
	PaymentActionCancel: {
		from: []PaymentStatus{PaymentStatusPending, PaymentStatusProcessing},
		to:   PaymentStatusCancelled,
	},
	PaymentActionRefund: {
		from: []PaymentStatus{PaymentStatusCompleted, PaymentStatusPartialRefund},
		to:   PaymentStatusPartialRefund,
	},
}

// NextPaymentStatus returns the status reached by applying action in status from.
func NextPaymentStatus(from PaymentStatus, action PaymentAction) (PaymentStatus, error) {
	t, ok := paymentTransitions[action]
	if ok {
		for _, s := range t.from {
			if s == from {
				return t.to, nil
			}
		}
	}
	return from, &TransitionError{Entity: "payment", Action: string(action), From: string(from)}
}

// settled reports whether money has been captured for a payment in this status.
func (s PaymentStatus) settled() bool {
	switch s {
	case PaymentStatusCompleted, PaymentStatusPartialRefund, PaymentStatusRefunded:
		return true
	case PaymentStatusPending, PaymentStatusProcessing, PaymentStatusFailed, PaymentStatusCancelled:
		return false
	}
	return false
}

type PaymentMethod string

const (
	PaymentMethodCard           PaymentMethod = "card"
	PaymentMethodPayPal         PaymentMethod = "paypal"
	PaymentMethodBankTransfer   PaymentMethod = "bank_transfer"
	PaymentMethodCashOnDelivery PaymentMethod = "cash_on_delivery"
)

func ParsePaymentMethod(s string) (PaymentMethod, error) {
	switch m := PaymentMethod(s); m {
	case PaymentMethodCard, PaymentMethodPayPal, PaymentMethodBankTransfer, PaymentMethodCashOnDelivery:
		return m, nil
	}
	return "", validationf("unknown payment method %q", s)
}
