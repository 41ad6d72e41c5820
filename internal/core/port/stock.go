package port

import (
	"context"

	"github.com/MikeRez0/ypstorefront/internal/core/domain"
)

// StockLedger is the catalog capability that guards available quantities.
// TryReserve must check and decrement in one atomic step.
//
//go:generate mockgen -source=stock.go -destination=mock/stock.go -package=mock
type StockLedger interface {
	TryReserve(ctx context.Context, key domain.StockKey, qty int) error
	Release(ctx context.Context, key domain.StockKey, qty int) error
}

type Catalog interface {
	ProductSnapshot(ctx context.Context, key domain.StockKey) (domain.ProductSnapshot, error)
}
