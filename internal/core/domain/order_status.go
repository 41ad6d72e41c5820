package domain

type OrderStatus string

const (
	OrderStatusPending        OrderStatus = "PENDING"
	OrderStatusConfirmed      OrderStatus = "CONFIRMED"
	OrderStatusProcessing     OrderStatus = "PROCESSING"
	OrderStatusShipped        OrderStatus = "SHIPPED"
	OrderStatusOutForDelivery OrderStatus = "OUT_FOR_DELIVERY"
	OrderStatusDelivered      OrderStatus = "DELIVERED"
	OrderStatusCancelled      OrderStatus = "CANCELLED"
)

// OrderStatuses lists every order status.
var OrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusConfirmed,
	OrderStatusProcessing,
	OrderStatusShipped,
	OrderStatusOutForDelivery,
	OrderStatusDelivered,
	OrderStatusCancelled,
}

func (s OrderStatus) Valid() bool {
	for _, st := range OrderStatuses {
		if st == s {
			return true
		}
	}
	return false
}

type OrderAction string

const (
	OrderActionConfirm            OrderAction = "confirm"
	OrderActionStartProcessing    OrderAction = "start_processing"
	OrderActionShip               OrderAction = "ship"
	OrderActionMarkOutForDelivery OrderAction = "mark_out_for_delivery"
	OrderActionDeliver            OrderAction = "deliver"
	OrderActionCancel             OrderAction = "cancel"
)

type orderTransition struct {
	from []OrderStatus
	to   OrderStatus
}

var orderTransitions = map[OrderAction]orderTransition{
	OrderActionConfirm:            {from: []OrderStatus{OrderStatusPending}, to: OrderStatusConfirmed},
	OrderActionStartProcessing:    {from: []OrderStatus{OrderStatusConfirmed}, to: OrderStatusProcessing},
	OrderActionShip:               {from: []OrderStatus{OrderStatusProcessing}, to: OrderStatusShipped},
	OrderActionMarkOutForDelivery: {from: []OrderStatus{OrderStatusShipped}, to: OrderStatusOutForDelivery},
	OrderActionDeliver:            {from: []OrderStatus{OrderStatusOutForDelivery}, to: OrderStatusDelivered},
	OrderActionCancel: {
		from: []OrderStatus{
			OrderStatusPending,
			OrderStatusConfirmed,
			OrderStatusProcessing,
			OrderStatusOutForDelivery,
		},
		to: OrderStatusCancelled,
	},
}

// NextOrderStatus returns the status reached by applying action in status from.
func NextOrderStatus(from OrderStatus, action OrderAction) (OrderStatus, error) {
	t, ok := orderTransitions[action]
	if ok {
		for _, s := range t.from {
			if s == from {
				return t.to, nil
			}
		}
	}
	return from, &TransitionError{Entity: "order", Action: string(action), From: string(from)}
}

// holdsStock reports whether stock has been reserved for an order in this status.
func (s OrderStatus) holdsStock() bool {
	switch s {
	case OrderStatusConfirmed, OrderStatusProcessing, OrderStatusShipped,
		OrderStatusOutForDelivery, OrderStatusDelivered:
		return true
	case OrderStatusPending, OrderStatusCancelled:
		return false
	}
	return false
}

// allowsAdjustments reports whether tax, shipping and discount may still change.
func (s OrderStatus) allowsAdjustments() bool {
	switch s {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusProcessing:
		return true
	case OrderStatusShipped, OrderStatusOutForDelivery, OrderStatusDelivered, OrderStatusCancelled:
		return false
	}
	return false
}
