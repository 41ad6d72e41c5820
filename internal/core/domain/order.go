package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// OrderNumber is the customer facing, unique and immutable business key of an order.
type OrderNumber string

type Address struct {
	Name       string `json:"name"`
	Line1      string `json:"line1"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city"`
	Region     string `json:"region,omitempty"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

func (a Address) IsZero() bool {
	return a == Address{}
}

func (a Address) validate(field string) error {
	var errs []error
	if strings.TrimSpace(a.Line1) == "" {
		errs = append(errs, validationf("%s: line1 is required", field))
	}
	if strings.TrimSpace(a.City) == "" {
		errs = append(errs, validationf("%s: city is required", field))
	}
	if strings.TrimSpace(a.Country) == "" {
		errs = append(errs, validationf("%s: country is required", field))
	}
	return errors.Join(errs...)
}

type NewOrderParams struct {
	Number          OrderNumber
	UserID          uuid.NullUUID
	Currency        Currency
	ShippingAddress Address
	BillingAddress  Address
	CustomerEmail   string
	CustomerPhone   string
	Notes           string
}

// Order is the aggregate root of a customer purchase. State changes go through its
// methods only; every change to lines or adjustments recomputes the totals.
type Order struct {
	id     uuid.UUID
	number OrderNumber
	userID uuid.NullUUID

	status   OrderStatus
	currency Currency
	items    []OrderItem

	subtotal Money
	tax      Money
	shipping Money
	discount Money
	total    Money

	shippingAddress Address
	billingAddress  Address
	customerEmail   string
	customerPhone   string
	notes           string

	trackingNumber  string
	shippingCarrier string
	shippedAt       *time.Time
	deliveredAt     *time.Time

	history []AuditEntry

	createdAt time.Time
	updatedAt time.Time
	version   int64
}

func NewOrder(p NewOrderParams) (*Order, error) {
	var errs []error
	if strings.TrimSpace(string(p.Number)) == "" {
		errs = append(errs, validationf("order number is required"))
	}
	cur, err := ParseCurrency(string(p.Currency))
	if err != nil {
		errs = append(errs, err)
	}
	email := strings.TrimSpace(p.CustomerEmail)
	if email == "" || !strings.Contains(email, "@") {
		errs = append(errs, validationf("customer email %q is not valid", p.CustomerEmail))
	}
	if err := p.ShippingAddress.validate("shipping address"); err != nil {
		errs = append(errs, err)
	}
	billing := p.BillingAddress
	if billing.IsZero() {
		billing = p.ShippingAddress
	} else if err := billing.validate("billing address"); err != nil {
		errs = append(errs, err)
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	zero := ZeroMoney(cur)
	return &Order{
		id:              uuid.New(),
		number:          p.Number,
		userID:          p.UserID,
		status:          OrderStatusPending,
		currency:        cur,
		subtotal:        zero,
		tax:             zero,
		shipping:        zero,
		discount:        zero,
		total:           zero,
		shippingAddress: p.ShippingAddress,
		billingAddress:  billing,
		customerEmail:   email,
		customerPhone:   strings.TrimSpace(p.CustomerPhone),
		notes:           strings.TrimSpace(p.Notes),
		createdAt:       now,
		updatedAt:       now,
	}, nil
}

func (o *Order) ID() uuid.UUID            { return o.id }
func (o *Order) Number() OrderNumber      { return o.number }
func (o *Order) UserID() uuid.NullUUID    { return o.userID }
func (o *Order) Status() OrderStatus      { return o.status }
func (o *Order) Currency() Currency       { return o.currency }
func (o *Order) Subtotal() Money          { return o.subtotal }
func (o *Order) TaxAmount() Money         { return o.tax }
func (o *Order) ShippingAmount() Money    { return o.shipping }
func (o *Order) DiscountAmount() Money    { return o.discount }
func (o *Order) TotalAmount() Money       { return o.total }
func (o *Order) ShippingAddress() Address { return o.shippingAddress }
func (o *Order) BillingAddress() Address  { return o.billingAddress }
func (o *Order) CustomerEmail() string    { return o.customerEmail }
func (o *Order) CustomerPhone() string    { return o.customerPhone }
func (o *Order) Notes() string            { return o.notes }
func (o *Order) TrackingNumber() string   { return o.trackingNumber }
func (o *Order) ShippingCarrier() string  { return o.shippingCarrier }
func (o *Order) ShippedAt() *time.Time    { return copyTime(o.shippedAt) }
func (o *Order) DeliveredAt() *time.Time  { return copyTime(o.deliveredAt) }
func (o *Order) CreatedAt() time.Time     { return o.createdAt }
func (o *Order) UpdatedAt() time.Time     { return o.updatedAt }
func (o *Order) Version() int64           { return o.version }
func (o *Order) HoldsStock() bool         { return o.status.holdsStock() }
func (o *Order) History() []AuditEntry    { return append([]AuditEntry(nil), o.history...) }
func (o *Order) Items() []OrderItem       { return append([]OrderItem(nil), o.items...) }

// Item returns a copy of the line with the given key.
func (o *Order) Item(key StockKey) (OrderItem, bool) {
	if i := o.findItem(key); i >= 0 {
		return o.items[i], true
	}
	return OrderItem{}, false
}

// GetTotalItems returns the number of units across all lines.
func (o *Order) GetTotalItems() int {
	n := 0
	for _, it := range o.items {
		n += it.Quantity
	}
	return n
}

// * Status transitions.

func (o *Order) Confirm(by Actor) error {
	return o.transition(OrderActionConfirm, by, "")
}

func (o *Order) StartProcessing(by Actor) error {
	return o.transition(OrderActionStartProcessing, by, "")
}

func (o *Order) Ship(by Actor, trackingNumber, carrier string) error {
	if err := o.transition(OrderActionShip, by, ""); err != nil {
		return err
	}
	o.trackingNumber = strings.TrimSpace(trackingNumber)
	o.shippingCarrier = strings.TrimSpace(carrier)
	o.shippedAt = copyTime(&o.updatedAt)
	return nil
}

func (o *Order) MarkOutForDelivery(by Actor) error {
	return o.transition(OrderActionMarkOutForDelivery, by, "")
}

func (o *Order) Deliver(by Actor) error {
	if err := o.transition(OrderActionDeliver, by, ""); err != nil {
		return err
	}
	o.deliveredAt = copyTime(&o.updatedAt)
	return nil
}

// Cancel moves the order to Cancelled and keeps the reason in the history and the notes.
func (o *Order) Cancel(by Actor, reason string) error {
	if _, err := NextOrderStatus(o.status, OrderActionCancel); err != nil {
		return err
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return validationf("cancellation reason is required")
	}
	if err := o.transition(OrderActionCancel, by, reason); err != nil {
		return err
	}
	line := "Cancelled: " + reason
	if o.notes == "" {
		o.notes = line
	} else {
		o.notes += "\n" + line
	}
	return nil
}

func (o *Order) transition(action OrderAction, by Actor, reason string) error {
	to, err := NextOrderStatus(o.status, action)
	if err != nil {
		return err
	}
	if by == "" {
		by = ActorSystem
	}
	now := time.Now().UTC()
	o.history = append(o.history, AuditEntry{
		At:     now,
		Actor:  by,
		Event:  string(action),
		From:   o.status,
		To:     to,
		Reason: reason,
	})
	o.status = to
	o.updatedAt = now
	return nil
}

// * Lines.

func (o *Order) AddItem(p ProductSnapshot, qty int) error {
	if err := o.ensureItemsMutable(); err != nil {
		return err
	}
	if qty <= 0 {
		return validationf("quantity must be positive, got %d", qty)
	}
	if p.UnitPrice.Currency() != o.currency {
		return fmt.Errorf("%w: order is in %s, price is in %s",
			ErrCurrencyMismatch, o.currency, p.UnitPrice.Currency())
	}

	items := o.Items()
	if i := o.findItem(p.StockKey()); i >= 0 {
		items[i].Quantity += qty
	} else {
		item, err := newOrderItem(o.id, p, qty)
		if err != nil {
			return err
		}
		items = append(items, item)
	}
	return o.recalculate(items, o.tax, o.shipping, o.discount)
}

func (o *Order) RemoveItem(key StockKey) error {
	if err := o.ensureItemsMutable(); err != nil {
		return err
	}
	i := o.findItem(key)
	if i < 0 {
		return fmt.Errorf("%w: order line %s", ErrDataNotFound, key)
	}
	items := o.Items()
	items = append(items[:i], items[i+1:]...)
	return o.recalculate(items, o.tax, o.shipping, o.discount)
}

// UpdateItemQuantity sets the quantity of a line; a quantity of zero or less removes it.
func (o *Order) UpdateItemQuantity(key StockKey, qty int) error {
	if qty <= 0 {
		return o.RemoveItem(key)
	}
	if err := o.ensureItemsMutable(); err != nil {
		return err
	}
	i := o.findItem(key)
	if i < 0 {
		return fmt.Errorf("%w: order line %s", ErrDataNotFound, key)
	}
	items := o.Items()
	items[i].Quantity = qty
	return o.recalculate(items, o.tax, o.shipping, o.discount)
}

func (o *Order) ensureItemsMutable() error {
	if o.status != OrderStatusPending {
		return fmt.Errorf("%w: order %s is %s", ErrOrderLocked, o.number, o.status)
	}
	return nil
}

func (o *Order) findItem(key StockKey) int {
	for i, it := range o.items {
		if it.Key() == key {
			return i
		}
	}
	return -1
}

// * Adjustments.

func (o *Order) ApplyDiscount(amount Money) error {
	if err := o.checkAdjustment("discount", amount); err != nil {
		return err
	}
	return o.recalculate(o.items, o.tax, o.shipping, amount)
}

func (o *Order) UpdateTax(amount Money) error {
	if err := o.checkAdjustment("tax", amount); err != nil {
		return err
	}
	return o.recalculate(o.items, amount, o.shipping, o.discount)
}

func (o *Order) UpdateShipping(amount Money) error {
	if err := o.checkAdjustment("shipping", amount); err != nil {
		return err
	}
	return o.recalculate(o.items, o.tax, amount, o.discount)
}

func (o *Order) checkAdjustment(field string, amount Money) error {
	if !o.status.allowsAdjustments() {
		return fmt.Errorf("%w: %s of order %s cannot change in status %s",
			ErrOrderLocked, field, o.number, o.status)
	}
	if amount.Currency() != o.currency {
		return fmt.Errorf("%w: order is in %s, %s is in %s",
			ErrCurrencyMismatch, o.currency, field, amount.Currency())
	}
	if amount.IsNeg() {
		return validationf("%s must not be negative, got %s", field, amount)
	}
	return nil
}

// recalculate derives subtotal and total from scratch and commits them together with
// the given lines and adjustments. Nothing is changed when it fails.
// A discount larger than the rest of the order yields a zero total.
func (o *Order) recalculate(items []OrderItem, tax, shipping, discount Money) error {
	subtotal := ZeroMoney(o.currency)
	for _, it := range items {
		line, err := it.LineTotal()
		if err != nil {
			return err
		}
		if subtotal, err = subtotal.Add(line); err != nil {
			return err
		}
	}

	total, err := subtotal.Add(tax)
	if err != nil {
		return err
	}
	if total, err = total.Add(shipping); err != nil {
		return err
	}
	if total, err = total.Sub(discount); err != nil {
		return err
	}

	o.items = items
	o.subtotal = subtotal
	o.tax = tax
	o.shipping = shipping
	o.discount = discount
	o.total = total.clampZero()
	o.updatedAt = time.Now().UTC()
	return nil
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}
