package domain

import (
	"fmt"

	"github.com/google/uuid"
)

// StockKey addresses the stock of a product or of one of its variants.
type StockKey struct {
	ProductID uuid.UUID
	VariantID uuid.NullUUID
}

func (k StockKey) String() string {
	if k.VariantID.Valid {
		return k.ProductID.String() + "/" + k.VariantID.UUID.String()
	}
	return k.ProductID.String()
}

// StockLevel is the available quantity of one stock key as owned by the catalog.
type StockLevel struct {
	Key           StockKey
	Quantity      int
	TrackQuantity bool
}

// Reduce takes qty units out of stock. Untracked stock always succeeds.
func (s *StockLevel) Reduce(qty int) error {
	if qty <= 0 {
		return validationf("stock quantity must be positive, got %d", qty)
	}
	if !s.TrackQuantity {
		return nil
	}
	if s.Quantity < qty {
		return fmt.Errorf("%w: %s has %d, requested %d", ErrInsufficientStock, s.Key, s.Quantity, qty)
	}
	s.Quantity -= qty
	return nil
}

func (s *StockLevel) Increase(qty int) error {
	if qty <= 0 {
		return validationf("stock quantity must be positive, got %d", qty)
	}
	if !s.TrackQuantity {
		return nil
	}
	s.Quantity += qty
	return nil
}

// ProductSnapshot is the catalog data copied into an order line at add time.
type ProductSnapshot struct {
	ProductID   uuid.UUID
	VariantID   uuid.NullUUID
	ProductName string
	SKU         string
	VariantName string
	UnitPrice   Money
}

func (p ProductSnapshot) StockKey() StockKey {
	return StockKey{ProductID: p.ProductID, VariantID: p.VariantID}
}
