package repository

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/MikeRez0/ypstorefront/internal/adapter/storage"
	"github.com/MikeRez0/ypstorefront/internal/core/domain"
	"github.com/jackc/pgx/v5"
)

type OutboxRepository struct {
	db *storage.DB
}

func NewOutboxRepository(db *storage.DB) (*OutboxRepository, error) {
	return &OutboxRepository{db: db}, nil
}

// enqueue stores events in the caller's transaction so they commit with the state change.
func enqueue(ctx context.Context, tx pgx.Tx, qb *sq.StatementBuilderType, events ...domain.Event) error {
	if len(events) == 0 {
		return nil
	}

	statement := qb.Insert("outbox").Columns("id", "event_type", "aggregate_id", "payload", "created_at")
	for _, e := range events {
		statement = statement.Values(e.ID, string(e.Type), e.OrderID, e, e.OccurredAt)
	}

	sql, args, err := statement.ToSql()
	if err != nil {
		return err
	}
	_, err = tx.Exec(ctx, sql, args...)
	return err
}

// Dispatch locks the oldest pending events, skipping rows another relay already holds.
func (or *OutboxRepository) Dispatch(ctx context.Context, limit int,
	publish func(ctx context.Context, events []domain.Event) error) (int, error) {
	var sent int

	err := pgx.BeginFunc(ctx, or.db, func(tx pgx.Tx) error {
		sql, args, err := or.db.QueryBuilder.
			Select("payload").
			From("outbox").
			Where(sq.Eq{"sent_at": nil}).
			OrderBy("created_at").
			Limit(uint64(limit)).
			Suffix("FOR UPDATE SKIP LOCKED").
			ToSql()
		if err != nil {
			return err
		}

		rows, err := tx.Query(ctx, sql, args...)
		if err != nil {
			return err
		}
		events, err := pgx.CollectRows(rows, pgx.RowTo[domain.Event])
		if err != nil {
			return err
		}
		if len(events) == 0 {
			return nil
		}

		if err := publish(ctx, events); err != nil {
			return err
		}

		ids := make([]string, len(events))
		for i, e := range events {
			ids[i] = e.ID.String()
		}
		sql, args, err = or.db.QueryBuilder.
			Update("outbox").
			Set("sent_at", sq.Expr("now()")).
			Where(sq.Eq{"id": ids}).
			ToSql()
		if err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, sql, args...); err != nil {
			return err
		}

		sent = len(events)
		return nil
	})
	if err != nil {
		return 0, err
	}

	return sent, nil
}
