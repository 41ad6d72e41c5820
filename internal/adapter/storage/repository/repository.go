package repository

import (
	"context"
	"errors"

	"github.com/MikeRez0/ypstorefront/internal/core/domain"
	"github.com/govalues/decimal"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// querier is satisfied by both the pool and a transaction.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func pgErrorCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

func isUniqueViolation(err error) bool {
	return pgErrorCode(err) == pgerrcode.UniqueViolation
}

func isForeignKeyViolation(err error) bool {
	return pgErrorCode(err) == pgerrcode.ForeignKeyViolation
}

// money converts a NUMERIC column back to Money. Columns carry four fractional
// digits, trailing zeros beyond the money scale are dropped.
func money(amount decimal.Decimal, currency domain.Currency) (domain.Money, error) {
	return domain.NewMoney(amount.Trim(domain.MoneyScale), currency)
}

// errNoRows maps the pgx sentinel to the domain one.
func errNoRows(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrDataNotFound
	}
	return err
}
