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

var orderColumns = []string{
	"id", "number", "user_id", "status", "currency",
	"subtotal_amount", "tax_amount", "shipping_amount", "discount_amount", "total_amount",
	"shipping_address", "billing_address", "customer_email", "customer_phone", "notes",
	"tracking_number", "shipping_carrier", "shipped_at", "delivered_at",
	"created_at", "updated_at", "version",
}

var itemColumns = []string{
	"id", "order_id", "product_id", "variant_id", "quantity", "unit_price",
	"product_name", "sku", "variant_name",
}

var eventColumns = []string{"order_id", "at", "actor", "event", "from_status", "to_status", "reason"}

type OrderRepository struct {
	db *storage.DB
}

func NewOrderRepository(db *storage.DB) (*OrderRepository, error) {
	return &OrderRepository{db: db}, nil
}

func (or *OrderRepository) CreateOrder(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	s := order.Snapshot()

	err := pgx.BeginFunc(ctx, or.db, func(tx pgx.Tx) error {
		statement := or.db.QueryBuilder.Insert("orders").
			Columns(orderColumns...).
			Values(
				s.ID, s.Number, s.UserID, s.Status, s.Currency,
				s.Subtotal.Amount(), s.Tax.Amount(), s.Shipping.Amount(), s.Discount.Amount(), s.Total.Amount(),
				s.ShippingAddress, s.BillingAddress, s.CustomerEmail, s.CustomerPhone, s.Notes,
				s.TrackingNumber, s.ShippingCarrier, s.ShippedAt, s.DeliveredAt,
				s.CreatedAt, s.UpdatedAt, s.Version,
			)

		sql, args, err := statement.ToSql()
		if err != nil {
			return err
		}
		if _, err = tx.Exec(ctx, sql, args...); err != nil {
			return err
		}

		if err := or.insertItems(ctx, tx, s.Items); err != nil {
			return err
		}
		if err := or.insertHistory(ctx, tx, s.ID, s.History, 0); err != nil {
			return err
		}
		return enqueue(ctx, tx, or.db.QueryBuilder, domain.OrderPlacedEvent(order))
	})
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%w: order number %s", domain.ErrConflictingData, s.Number)
		}
		return nil, err
	}

	return domain.RestoreOrder(s), nil
}

func (or *OrderRepository) ReadOrder(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	return or.readOne(ctx, or.db, or.selectOrders().Where("id = ?", id))
}

func (or *OrderRepository) ReadOrderByNumber(ctx context.Context, number domain.OrderNumber) (*domain.Order, error) {
	return or.readOne(ctx, or.db, or.selectOrders().Where(sq.Eq{"number": string(number)}))
}

func (or *OrderRepository) ListOrdersByStatus(ctx context.Context, status domain.OrderStatus,
	limit uint64) ([]*domain.Order, error) {
	statement := or.selectOrders().
		Where(sq.Eq{"status": string(status)}).
		OrderBy("created_at").
		Limit(limit)

	snapshots, err := or.load(ctx, or.db, statement)
	if err != nil {
		return nil, err
	}

	list := make([]*domain.Order, 0, len(snapshots))
	for _, s := range snapshots {
		list = append(list, domain.RestoreOrder(s))
	}
	return list, nil
}

// UpdateOrder locks the order row, applies updateFn and persists the result together with
// the new audit entries and their outbox events.
func (or *OrderRepository) UpdateOrder(ctx context.Context, id uuid.UUID,
	updateFn port.UpdateOrderFn) (*domain.Order, error) {
	var updated *domain.Order

	err := pgx.BeginFunc(ctx, or.db, func(tx pgx.Tx) error {
		order, err := or.readOne(ctx, tx, or.selectOrders().Where("id = ?", id).Suffix("FOR UPDATE"))
		if err != nil {
			return err
		}
		before := order.Snapshot()

		if err := updateFn(order); err != nil {
			return err
		}
		after := order.Snapshot()

		statement := or.db.QueryBuilder.Update("orders").
			SetMap(map[string]any{
				"status":           after.Status,
				"subtotal_amount":  after.Subtotal.Amount(),
				"tax_amount":       after.Tax.Amount(),
				"shipping_amount":  after.Shipping.Amount(),
				"discount_amount":  after.Discount.Amount(),
				"total_amount":     after.Total.Amount(),
				"notes":            after.Notes,
				"tracking_number":  after.TrackingNumber,
				"shipping_carrier": after.ShippingCarrier,
				"shipped_at":       after.ShippedAt,
				"delivered_at":     after.DeliveredAt,
				"updated_at":       after.UpdatedAt,
				"version":          before.Version + 1,
			}).
			Where("id = ?", id).
			Where("version = ?", before.Version)

		sql, args, err := statement.ToSql()
		if err != nil {
			return err
		}
		tag, err := tx.Exec(ctx, sql, args...)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("%w: order %s", domain.ErrConcurrencyConflict, before.Number)
		}

		if !sameItems(before.Items, after.Items) {
			sql, args, err := or.db.QueryBuilder.Delete("order_items").Where("order_id = ?", id).ToSql()
			if err != nil {
				return err
			}
			if _, err := tx.Exec(ctx, sql, args...); err != nil {
				return err
			}
			if err := or.insertItems(ctx, tx, after.Items); err != nil {
				return err
			}
		}

		seen := len(before.History)
		if err := or.insertHistory(ctx, tx, id, after.History, seen); err != nil {
			return err
		}
		if err := enqueue(ctx, tx, or.db.QueryBuilder, domain.OrderEvents(order, seen)...); err != nil {
			return err
		}

		after.Version = before.Version + 1
		updated = domain.RestoreOrder(after)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

func (or *OrderRepository) selectOrders() sq.SelectBuilder {
	return or.db.QueryBuilder.Select(orderColumns...).From("orders")
}

func (or *OrderRepository) readOne(ctx context.Context, q querier, statement sq.SelectBuilder) (*domain.Order, error) {
	snapshots, err := or.load(ctx, q, statement)
	if err != nil {
		return nil, err
	}
	if len(snapshots) == 0 {
		return nil, domain.ErrDataNotFound
	}
	return domain.RestoreOrder(snapshots[0]), nil
}

// load runs statement and attaches items and history to every order it returns.
func (or *OrderRepository) load(ctx context.Context, q querier, statement sq.SelectBuilder) ([]domain.OrderSnapshot, error) {
	sql, args, err := statement.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	snapshots, err := pgx.CollectRows(rows, scanOrder)
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

	items, err := or.loadItems(ctx, q, ids, snapshots, index)
	if err != nil {
		return nil, err
	}
	for orderID, list := range items {
		snapshots[index[orderID]].Items = list
	}

	history, err := or.loadHistory(ctx, q, ids)
	if err != nil {
		return nil, err
	}
	for orderID, list := range history {
		snapshots[index[orderID]].History = list
	}

	return snapshots, nil
}

func scanOrder(row pgx.CollectableRow) (domain.OrderSnapshot, error) {
	var s domain.OrderSnapshot
	var subtotal, tax, shipping, discount, total decimal.Decimal

	err := row.Scan(
		&s.ID, &s.Number, &s.UserID, &s.Status, &s.Currency,
		&subtotal, &tax, &shipping, &discount, &total,
		&s.ShippingAddress, &s.BillingAddress, &s.CustomerEmail, &s.CustomerPhone, &s.Notes,
		&s.TrackingNumber, &s.ShippingCarrier, &s.ShippedAt, &s.DeliveredAt,
		&s.CreatedAt, &s.UpdatedAt, &s.Version,
	)
	if err != nil {
		return s, err
	}

	amounts := []struct {
		value decimal.Decimal
		dest  *domain.Money
	}{
		{subtotal, &s.Subtotal},
		{tax, &s.Tax},
		{shipping, &s.Shipping},
		{discount, &s.Discount},
		{total, &s.Total},
	}
	for _, a := range amounts {
		m, err := money(a.value, s.Currency)
		if err != nil {
			return s, fmt.Errorf("order %s: %w", s.ID, err)
		}
		*a.dest = m
	}
	return s, nil
}

func (or *OrderRepository) loadItems(ctx context.Context, q querier, ids []string,
	snapshots []domain.OrderSnapshot, index map[uuid.UUID]int) (map[uuid.UUID][]domain.OrderItem, error) {
	sql, args, err := or.db.QueryBuilder.
		Select(itemColumns...).
		From("order_items").
		Where(sq.Eq{"order_id": ids}).
		OrderBy("order_id", "position").
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make(map[uuid.UUID][]domain.OrderItem)
	for rows.Next() {
		var item domain.OrderItem
		var price decimal.Decimal
		err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.VariantID, &item.Quantity, &price,
			&item.ProductName, &item.SKU, &item.VariantName)
		if err != nil {
			return nil, err
		}
		item.UnitPrice, err = money(price, snapshots[index[item.OrderID]].Currency)
		if err != nil {
			return nil, err
		}
		items[item.OrderID] = append(items[item.OrderID], item)
	}

	return items, rows.Err()
}

func (or *OrderRepository) loadHistory(ctx context.Context, q querier, ids []string) (map[uuid.UUID][]domain.AuditEntry, error) {
	sql, args, err := or.db.QueryBuilder.
		Select(eventColumns...).
		From("order_events").
		Where(sq.Eq{"order_id": ids}).
		OrderBy("order_id", "seq").
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	history := make(map[uuid.UUID][]domain.AuditEntry)
	for rows.Next() {
		var orderID uuid.UUID
		var e domain.AuditEntry
		if err := rows.Scan(&orderID, &e.At, &e.Actor, &e.Event, &e.From, &e.To, &e.Reason); err != nil {
			return nil, err
		}
		history[orderID] = append(history[orderID], e)
	}

	return history, rows.Err()
}

func (or *OrderRepository) insertItems(ctx context.Context, tx pgx.Tx, items []domain.OrderItem) error {
	if len(items) == 0 {
		return nil
	}

	statement := or.db.QueryBuilder.Insert("order_items").
		Columns("id", "order_id", "position", "product_id", "variant_id", "quantity", "unit_price",
			"product_name", "sku", "variant_name")
	for i, item := range items {
		statement = statement.Values(item.ID, item.OrderID, i, item.ProductID, item.VariantID, item.Quantity,
			item.UnitPrice.Amount(), item.ProductName, item.SKU, item.VariantName)
	}

	sql, args, err := statement.ToSql()
	if err != nil {
		return err
	}
	_, err = tx.Exec(ctx, sql, args...)
	return err
}

// insertHistory appends the audit entries past the first seen ones.
func (or *OrderRepository) insertHistory(ctx context.Context, tx pgx.Tx, orderID uuid.UUID,
	history []domain.AuditEntry, seen int) error {
	if seen >= len(history) {
		return nil
	}

	statement := or.db.QueryBuilder.Insert("order_events").
		Columns("order_id", "seq", "at", "actor", "event", "from_status", "to_status", "reason")
	for i := seen; i < len(history); i++ {
		e := history[i]
		statement = statement.Values(orderID, i, e.At, e.Actor, e.Event, e.From, e.To, e.Reason)
	}

	sql, args, err := statement.ToSql()
	if err != nil {
		return err
	}
	_, err = tx.Exec(ctx, sql, args...)
	return err
}

func sameItems(a, b []domain.OrderItem) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].ID != b[i].ID || a[i].Quantity != b[i].Quantity || !a[i].UnitPrice.Equal(b[i].UnitPrice) {
			return false
		}
	}
	return true
}
