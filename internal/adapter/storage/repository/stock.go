package repository

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/MikeRez0/ypstorefront/internal/adapter/storage"
	"github.com/MikeRez0/ypstorefront/internal/core/domain"
	"github.com/google/uuid"
	"github.com/govalues/decimal"
	"github.com/jackc/pgx/v5"
)

// StockRepository is the Postgres stock ledger and catalog reader. Stock rows are locked
// one at a time, so concurrent reservations of the same key queue on the row lock.
type StockRepository struct {
	db *storage.DB
}

func NewStockRepository(db *storage.DB) (*StockRepository, error) {
	return &StockRepository{db: db}, nil
}

func (sr *StockRepository) TryReserve(ctx context.Context, key domain.StockKey, qty int) error {
	return sr.adjust(ctx, key, func(level *domain.StockLevel) error {
		return level.Reduce(qty)
	})
}

func (sr *StockRepository) Release(ctx context.Context, key domain.StockKey, qty int) error {
	return sr.adjust(ctx, key, func(level *domain.StockLevel) error {
		return level.Increase(qty)
	})
}

func (sr *StockRepository) adjust(ctx context.Context, key domain.StockKey, fn func(*domain.StockLevel) error) error {
	table, where := stockRow(key)

	return pgx.BeginFunc(ctx, sr.db, func(tx pgx.Tx) error {
		sql, args, err := sr.db.QueryBuilder.
			Select("track_quantity", "stock_quantity").
			From(table).
			Where(where).
			Suffix("FOR UPDATE").
			ToSql()
		if err != nil {
			return err
		}

		level := domain.StockLevel{Key: key}
		if err := tx.QueryRow(ctx, sql, args...).Scan(&level.TrackQuantity, &level.Quantity); err != nil {
			if err = errNoRows(err); err == domain.ErrDataNotFound {
				return fmt.Errorf("%w: stock %s", domain.ErrDataNotFound, key)
			}
			return err
		}

		before := level.Quantity
		if err := fn(&level); err != nil {
			return err
		}
		if level.Quantity == before {
			return nil
		}

		sql, args, err = sr.db.QueryBuilder.
			Update(table).
			Set("stock_quantity", level.Quantity).
			Where(where).
			ToSql()
		if err != nil {
			return err
		}
		_, err = tx.Exec(ctx, sql, args...)
		return err
	})
}

func stockRow(key domain.StockKey) (string, sq.Sqlizer) {
	if key.VariantID.Valid {
		return "product_variants", sq.And{
			sq.Expr("id = ?", key.VariantID.UUID),
			sq.Expr("product_id = ?", key.ProductID),
		}
	}
	return "products", sq.Expr("id = ?", key.ProductID)
}

// ProductSnapshot reads the current name, SKU and price of an active product or variant.
// A variant without its own price inherits the product price.
func (sr *StockRepository) ProductSnapshot(ctx context.Context, key domain.StockKey) (domain.ProductSnapshot, error) {
	var statement sq.SelectBuilder
	if key.VariantID.Valid {
		statement = sr.db.QueryBuilder.
			Select("p.name", "v.sku", "v.name", "COALESCE(v.price_amount, p.price_amount)", "p.price_currency").
			From("product_variants v").
			Join("products p ON p.id = v.product_id").
			Where("v.id = ?", key.VariantID.UUID).
			Where("v.product_id = ?", key.ProductID).
			Where("v.is_active AND p.is_active")
	} else {
		statement = sr.db.QueryBuilder.
			Select("name", "sku", "''", "price_amount", "price_currency").
			From("products").
			Where("id = ?", key.ProductID).
			Where("is_active")
	}

	sql, args, err := statement.ToSql()
	if err != nil {
		return domain.ProductSnapshot{}, err
	}

	snapshot := domain.ProductSnapshot{ProductID: key.ProductID, VariantID: key.VariantID}
	var price decimal.Decimal
	var currency domain.Currency
	err = sr.db.QueryRow(ctx, sql, args...).Scan(
		&snapshot.ProductName, &snapshot.SKU, &snapshot.VariantName, &price, &currency)
	if err != nil {
		if err = errNoRows(err); err == domain.ErrDataNotFound {
			return domain.ProductSnapshot{}, fmt.Errorf("%w: product %s", domain.ErrDataNotFound, key)
		}
		return domain.ProductSnapshot{}, err
	}

	snapshot.UnitPrice, err = money(price, currency)
	if err != nil {
		return domain.ProductSnapshot{}, err
	}
	return snapshot, nil
}

// ListStockLevels returns the stock of every active product and variant.
func (sr *StockRepository) ListStockLevels(ctx context.Context) ([]domain.StockLevel, error) {
	products := sr.db.QueryBuilder.
		Select("id", "NULL::uuid", "track_quantity", "stock_quantity").
		From("products").
		Where("is_active")
	variants := sr.db.QueryBuilder.
		Select("product_id", "id", "track_quantity", "stock_quantity").
		From("product_variants").
		Where("is_active")

	psql, pargs, err := products.ToSql()
	if err != nil {
		return nil, err
	}
	vsql, vargs, err := variants.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := sr.db.Query(ctx, psql+" UNION ALL "+vsql, append(pargs, vargs...)...)
	if err != nil {
		return nil, err
	}

	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.StockLevel, error) {
		var level domain.StockLevel
		var variant uuid.NullUUID
		err := row.Scan(&level.Key.ProductID, &variant, &level.TrackQuantity, &level.Quantity)
		level.Key.VariantID = variant
		return level, err
	})
}
