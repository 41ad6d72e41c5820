package domain

import (
	"github.com/google/uuid"
)

// OrderItem is a priced order line. Name, SKU and price are snapshots taken when the
// line was added and do not follow later catalog changes.
type OrderItem struct {
	ID          uuid.UUID
	OrderID     uuid.UUID
	ProductID   uuid.UUID
	VariantID   uuid.NullUUID
	Quantity    int
	UnitPrice   Money
	ProductName string
	SKU         string
	VariantName string
}

func (i OrderItem) Key() StockKey {
	return StockKey{ProductID: i.ProductID, VariantID: i.VariantID}
}

func (i OrderItem) LineTotal() (Money, error) {
	return i.UnitPrice.Mul(i.Quantity)
}

func newOrderItem(orderID uuid.UUID, p ProductSnapshot, qty int) (OrderItem, error) {
	if p.ProductID == uuid.Nil {
		return OrderItem{}, validationf("product id is required")
	}
	if p.ProductName == "" {
		return OrderItem{}, validationf("product name is required")
	}
	if p.UnitPrice.IsNeg() {
		return OrderItem{}, validationf("unit price must not be negative, got %s", p.UnitPrice)
	}
	return OrderItem{
		ID:          uuid.New(),
		OrderID:     orderID,
		ProductID:   p.ProductID,
		VariantID:   p.VariantID,
		Quantity:    qty,
		UnitPrice:   p.UnitPrice,
		ProductName: p.ProductName,
		SKU:         p.SKU,
		VariantName: p.VariantName,
	}, nil
}
