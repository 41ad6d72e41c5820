package domain

import (
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	EventOrderPlaced          EventType = "order.placed"
	EventOrderStatusChanged   EventType = "order.status_changed"
	EventPaymentOpened        EventType = "payment.opened"
	EventPaymentStatusChanged EventType = "payment.status_changed"
)

// Event is a lifecycle notification for downstream consumers (mailers, reporting).
type Event struct {
	ID          uuid.UUID   `json:"id"`
	Type        EventType   `json:"type"`
	OrderID     uuid.UUID   `json:"order_id"`
	OrderNumber OrderNumber `json:"order_number,omitempty"`
	PaymentID   uuid.UUID   `json:"payment_id,omitempty"`
	From        string      `json:"from,omitempty"`
	To          string      `json:"to"`
	Actor       Actor       `json:"actor,omitempty"`
	Reason      string      `json:"reason,omitempty"`
	OccurredAt  time.Time   `json:"occurred_at"`
}

// OrderEvents returns one event per audit entry recorded after the first seen entries.
func OrderEvents(o *Order, seen int) []Event {
	history := o.History()
	if seen >= len(history) {
		return nil
	}
	events := make([]Event, 0, len(history)-seen)
	for _, h := range history[seen:] {
		events = append(events, Event{
			ID:          uuid.New(),
			Type:        EventOrderStatusChanged,
			OrderID:     o.id,
			OrderNumber: o.number,
			From:        string(h.From),
			To:          string(h.To),
			Actor:       h.Actor,
			Reason:      h.Reason,
			OccurredAt:  h.At,
		})
	}
	return events
}

func OrderPlacedEvent(o *Order) Event {
	return Event{
		ID:          uuid.New(),
		Type:        EventOrderPlaced,
		OrderID:     o.id,
		OrderNumber: o.number,
		To:          string(o.status),
		OccurredAt:  o.createdAt,
	}
}

// PaymentEvent describes p after a change from status from. It returns false when the
// status did not change.
func PaymentEvent(p *Payment, from PaymentStatus) (Event, bool) {
	if p.status == from {
		return Event{}, false
	}
	e := Event{
		ID:         uuid.New(),
		Type:       EventPaymentStatusChanged,
		OrderID:    p.orderID,
		PaymentID:  p.id,
		From:       string(from),
		To:         string(p.status),
		Actor:      ActorSystem,
		OccurredAt: p.updatedAt,
	}
	if p.status == PaymentStatusFailed {
		e.Reason = p.failureReason
	}
	if from == "" {
		e.Type = EventPaymentOpened
		e.OccurredAt = p.createdAt
	}
	return e, true
}
