package domain

import "time"

// Actor identifies who triggered a change: an operator login, a customer id or a subsystem.
type Actor string

const (
	ActorSystem   Actor = "system"
	ActorCustomer Actor = "customer"
	ActorGateway  Actor = "gateway"
)

// AuditEntry is one append-only record of an order lifecycle event.
type AuditEntry struct {
	At     time.Time
	Actor  Actor
	Event  string
	From   OrderStatus
	To     OrderStatus
	Reason string
}
