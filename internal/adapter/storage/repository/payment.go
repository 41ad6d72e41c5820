package repository

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/MikeRez0/ypstorefront/internal/adapter/storage"
	"github.com/MikeRez0/ypstorefront/internal/core/domain"
	"github.com/MikeRez0/ypstorefront/internal/core/port"
	"github.com/google/uuid"
	"github.com/govalues/decimal"
	"github.com/jackc/pgx/v5"
)

var paymentColumns = []string{
	"id", "order_id", "reference", "amount", "currency", "method", "status",
	"gateway_transaction_id", "gateway_response", "processed_at", "failed_at", "failure_reason",
	"refund_reference", "refunded_amount", "refunded_at", "created_at", "updated_at", "version",
}

type PaymentRepository struct {
	db *storage.DB
}

func NewPaymentRepository(db *storage.DB) (*PaymentRepository, error) {
	return &PaymentRepository{db: db}, nil
}

func (pr *PaymentRepository) CreatePayment(ctx context.Context, payment *domain.Payment) (*domain.Payment, error) {
	s := payment.Snapshot()

	err := pgx.BeginFunc(ctx, pr.db, func(tx pgx.Tx) error {
		statement := pr.db.QueryBuilder.Insert("payments").
			Columns(paymentColumns...).
			Values(
				s.ID, s.OrderID, s.Reference, s.Amount.Amount(), s.Amount.Currency(), s.Method, s.Status,
				s.GatewayTransactionID, s.GatewayResponse, s.ProcessedAt, s.FailedAt, s.FailureReason,
				s.RefundReference, s.RefundedAmount.Amount(), s.RefundedAt, s.CreatedAt, s.UpdatedAt, s.Version,
			)

		sql, args, err := statement.ToSql()
		if err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, sql, args...); err != nil {
			return err
		}

		if e, ok := domain.PaymentEvent(payment, ""); ok {
			return enqueue(ctx, tx, pr.db.QueryBuilder, e)
		}
		return nil
	})
	if err != nil {
		switch {
		case isUniqueViolation(err):
			return nil, fmt.Errorf("%w: payment reference %s", domain.ErrConflictingData, s.Reference)
		case isForeignKeyViolation(err):
			return nil, fmt.Errorf("%w: order %s", domain.ErrDataNotFound, s.OrderID)
		}
		return nil, err
	}

	return domain.RestorePayment(s), nil
}

func (pr *PaymentRepository) ReadPayment(ctx context.Context, id uuid.UUID) (*domain.Payment, error) {
	return pr.readOne(ctx, pr.db, pr.selectPayments().Where("id = ?", id))
}

func (pr *PaymentRepository) ReadPaymentByReference(ctx context.Context, reference string) (*domain.Payment, error) {
	return pr.readOne(ctx, pr.db, pr.selectPayments().Where(sq.Eq{"reference": reference}))
}

func (pr *PaymentRepository) ListPaymentsByOrder(ctx context.Context, orderID uuid.UUID) ([]*domain.Payment, error) {
	snapshots, err := pr.load(ctx, pr.db, pr.selectPayments().Where("order_id = ?", orderID).OrderBy("created_at"))
	if err != nil {
		return nil, err
	}

	list := make([]*domain.Payment, 0, len(snapshots))
	for _, s := range snapshots {
		list = append(list, domain.RestorePayment(s))
	}
	return list, nil
}

// UpdatePayment serializes all payments of one order on the order row, so settlement
// checks over siblings see a stable set.
func (pr *PaymentRepository) UpdatePayment(ctx context.Context, id uuid.UUID,
	updateFn port.UpdatePaymentFn) (*domain.Payment, error) {
	var updated *domain.Payment

	err := pgx.BeginFunc(ctx, pr.db, func(tx pgx.Tx) error {
		var orderID uuid.UUID
		sql, args, err := pr.db.QueryBuilder.Select("order_id").From("payments").Where("id = ?", id).ToSql()
		if err != nil {
			return err
		}
		if err := tx.QueryRow(ctx, sql, args...).Scan(&orderID); err != nil {
			return errNoRows(err)
		}

		sql, args, err = pr.db.QueryBuilder.Select("id").From("orders").
			Where("id = ?", orderID).Suffix("FOR UPDATE").ToSql()
		if err != nil {
			return err
		}
		if err := tx.QueryRow(ctx, sql, args...).Scan(&orderID); err != nil {
			return errNoRows(err)
		}

		snapshots, err := pr.load(ctx, tx,
			pr.selectPayments().Where("order_id = ?", orderID).OrderBy("created_at").Suffix("FOR UPDATE"))
		if err != nil {
			return err
		}

		var payment *domain.Payment
		siblings := make([]*domain.Payment, 0, len(snapshots))
		for _, s := range snapshots {
			p := domain.RestorePayment(s)
			if s.ID == id {
				payment = p
			}
			siblings = append(siblings, p)
		}
		if payment == nil {
			return domain.ErrDataNotFound
		}
		before := payment.Snapshot()

		if err := updateFn(payment, siblings); err != nil {
			return err
		}
		after := payment.Snapshot()

		statement := pr.db.QueryBuilder.Update("payments").
			SetMap(map[string]any{
				"status":                 after.Status,
				"gateway_transaction_id": after.GatewayTransactionID,
				"gateway_response":       after.GatewayResponse,
				"processed_at":           after.ProcessedAt,
				"failed_at":              after.FailedAt,
				"failure_reason":         after.FailureReason,
				"refund_reference":       after.RefundReference,
				"refunded_amount":        after.RefundedAmount.Amount(),
				"refunded_at":            after.RefundedAt,
				"updated_at":             after.UpdatedAt,
				"version":                before.Version + 1,
			}).
			Where("id = ?", id).
			Where("version = ?", before.Version)

		sql, args, err = statement.ToSql()
		if err != nil {
			return err
		}
		tag, err := tx.Exec(ctx, sql, args...)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("%w: payment %s", domain.ErrConcurrencyConflict, before.Reference)
		}

		if err := pr.insertRefunds(ctx, tx, id, after.Refunds[len(before.Refunds):]); err != nil {
			return err
		}
		if e, ok := domain.PaymentEvent(payment, before.Status); ok {
			if err := enqueue(ctx, tx, pr.db.QueryBuilder, e); err != nil {
				return err
			}
		}

		after.Version = before.Version + 1
		updated = domain.RestorePayment(after)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

func (pr *PaymentRepository) selectPayments() sq.SelectBuilder {
	return pr.db.QueryBuilder.Select(paymentColumns...).From("payments")
}

func (pr *PaymentRepository) readOne(ctx context.Context, q querier, statement sq.SelectBuilder) (*domain.Payment, error) {
	snapshots, err := pr.load(ctx, q, statement)
	if err != nil {
		return nil, err
	}
	if len(snapshots) == 0 {
		return nil, domain.ErrDataNotFound
	}
	return domain.RestorePayment(snapshots[0]), nil
}

func (pr *PaymentRepository) load(ctx context.Context, q querier, statement sq.SelectBuilder) ([]domain.PaymentSnapshot, error) {
	sql, args, err := statement.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	snapshots, err := pgx.CollectRows(rows, scanPayment)
	if err != nil {
		return nil, err
	}
	if len(snapshots) == 0 {
		return nil, nil
	}

	ids := make([]string, len(snapshots))
	index := make(map[uuid.UUID]int, len(snapshots))
	for i, s := range snapshots {
		ids[i] = s.ID.String()
		index[s.ID] = i
	}

	sql, args, err = pr.db.QueryBuilder.
		Select("payment_id", "reference", "amount", "at").
		From("payment_refunds").
		Where(sq.Eq{"payment_id": ids}).
		OrderBy("at").
		ToSql()
	if err != nil {
		return nil, err
	}

	refunds, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer refunds.Close()

	for refunds.Next() {
		var paymentID uuid.UUID
		var r domain.Refund
		var amount decimal.Decimal
		if err := refunds.Scan(&paymentID, &r.Reference, &amount, &r.At); err != nil {
			return nil, err
		}
		s := &snapshots[index[paymentID]]
		if r.Amount, err = money(amount, s.Amount.Currency()); err != nil {
			return nil, err
		}
		s.Refunds = append(s.Refunds, r)
	}

	return snapshots, refunds.Err()
}

func scanPayment(row pgx.CollectableRow) (domain.PaymentSnapshot, error) {
	var s domain.PaymentSnapshot
	var amount, refunded decimal.Decimal
	var currency domain.Currency

	err := row.Scan(
		&s.ID, &s.OrderID, &s.Reference, &amount, &currency, &s.Method, &s.Status,
		&s.GatewayTransactionID, &s.GatewayResponse, &s.ProcessedAt, &s.FailedAt, &s.FailureReason,
		&s.RefundReference, &refunded, &s.RefundedAt, &s.CreatedAt, &s.UpdatedAt, &s.Version,
	)
	if err != nil {
		return s, err
	}

	if s.Amount, err = money(amount, currency); err != nil {
		return s, fmt.Errorf("payment %s: %w", s.ID, err)
	}
	if s.RefundedAmount, err = money(refunded, currency); err != nil {
		return s, fmt.Errorf("payment %s: %w", s.ID, err)
	}
	return s, nil
}

func (pr *PaymentRepository) insertRefunds(ctx context.Context, tx pgx.Tx, paymentID uuid.UUID,
	refunds []domain.Refund) error {
	if len(refunds) == 0 {
		return nil
	}

	statement := pr.db.QueryBuilder.Insert("payment_refunds").Columns("payment_id", "reference", "amount", "at")
	for _, r := range refunds {
		statement = statement.Values(paymentID, r.Reference, r.Amount.Amount(), r.At)
	}

	sql, args, err := statement.ToSql()
	if err != nil {
		return err
	}
	_, err = tx.Exec(ctx, sql, args...)
	return err
}
