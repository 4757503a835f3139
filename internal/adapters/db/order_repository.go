// internal/adapters/db/order_repository.go
package db

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/ammerola/resell-orders/internal/core/domain"
	"github.com/ammerola/resell-orders/internal/core/ports"
)

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

var orderColumns = []string{
	"id", "status", "customer_name", "customer_phone", "customer_location",
	"owner_id", "assignee_id", "payment_method", "delivery_date",
	"created_at", "updated_at",
}

// orderRepository implements ports.OrderRepository
type orderRepository struct {
	q      DBTX
	logger *slog.Logger
}

// Statically assert that *orderRepository implements the OrderRepository interface.
var _ ports.OrderRepository = (*orderRepository)(nil)

// NewOrderRepository creates an order repository over a pool or a transaction
func NewOrderRepository(q DBTX, logger *slog.Logger) ports.OrderRepository {
	return &orderRepository{
		q:      q,
		logger: logger.With(slog.String("repository", "orders")),
	}
}

// FindByID retrieves an order with its line items
func (r *orderRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	return r.findOne(ctx, id, false)
}

// FindForUpdate retrieves an order and locks its row until the transaction ends
func (r *orderRepository) FindForUpdate(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	return r.findOne(ctx, id, true)
}

func (r *orderRepository) findOne(ctx context.Context, id uuid.UUID, lock bool) (*domain.Order, error) {
	qb := psql.Select(orderColumns...).From("orders").Where(squirrel.Eq{"id": id})
	if lock {
		qb = qb.Suffix("FOR UPDATE")
	}

	query, args, err := qb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	order, err := ScanOne(r.q.QueryRow(ctx, query, args...), func(row pgx.Row) (*domain.Order, error) {
		return scanOrder(row)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to find order: %w", err)
	}
	if order == nil {
		return nil, nil
	}

	items, err := r.loadItems(ctx, []uuid.UUID{order.ID})
	if err != nil {
		return nil, err
	}
	order.LineItems = items[order.ID]

	return order, nil
}

// Insert stores a new order and its line items
func (r *orderRepository) Insert(ctx context.Context, order *domain.Order) error {
	query, args, err := psql.Insert("orders").
		Columns(orderColumns...).
		Values(orderValues(order)...).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build insert: %w", err)
	}

	if _, err := r.q.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to insert order: %w", err)
	}

	if err := r.insertItems(ctx, order.ID, order.LineItems); err != nil {
		return err
	}

	r.logger.DebugContext(ctx, "order inserted",
		slog.String("order_id", order.ID.String()),
		slog.Int("line_items", len(order.LineItems)))

	return nil
}

// UpdateByID replaces every stored field and the line items of an order
func (r *orderRepository) UpdateByID(ctx context.Context, order *domain.Order) error {
	query, args, err := psql.Update("orders").
		SetMap(map[string]interface{}{
			"status":            order.Status,
			"customer_name":     order.Customer.Name,
			"customer_phone":    order.Customer.Phone,
			"customer_location": order.Customer.Location,
			"assignee_id":       order.AssigneeID,
			"payment_method":    order.PaymentMethod,
			"delivery_date":     order.DeliveryDate,
			"updated_at":        order.UpdatedAt,
		}).
		Where(squirrel.Eq{"id": order.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update: %w", err)
	}

	tag, err := r.q.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update order: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", domain.ErrOrderNotFound, order.ID)
	}

	if _, err := r.q.Exec(ctx, `DELETE FROM order_items WHERE order_id = $1`, order.ID); err != nil {
		return fmt.Errorf("failed to clear line items: %w", err)
	}
	return r.insertItems(ctx, order.ID, order.LineItems)
}

// DeleteByID removes an order; line items go with it
func (r *orderRepository) DeleteByID(ctx context.Context, id uuid.UUID) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM orders WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete order: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", domain.ErrOrderNotFound, id)
	}
	return nil
}

// List retrieves a filtered, sorted page of orders
func (r *orderRepository) List(ctx context.Context, params ports.OrderListParams) ([]*domain.Order, int64, error) {
	params.Normalize()

	countSQL, countArgs, err := buildOrderCountQuery(params)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build count query: %w", err)
	}

	var total int64
	if err := r.q.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
	}
	if total == 0 {
		return []*domain.Order{}, 0, nil
	}

	query, args, err := buildOrderListQuery(params)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list orders: %w", err)
	}

	orders, err := ScanMany(rows, func(rows pgx.Rows) (*domain.Order, error) {
		return scanOrder(rows)
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to scan orders: %w", err)
	}

	ids := make([]uuid.UUID, len(orders))
	for i, o := range orders {
		ids[i] = o.ID
	}
	items, err := r.loadItems(ctx, ids)
	if err != nil {
		return nil, 0, err
	}
	for _, o := range orders {
		o.LineItems = items[o.ID]
	}

	if orders == nil {
		orders = []*domain.Order{}
	}
	return orders, total, nil
}

func applyOrderFilters(qb squirrel.SelectBuilder, params ports.OrderListParams) squirrel.SelectBuilder {
	if params.Status != "" {
		qb = qb.Where(squirrel.Eq{"status": params.Status})
	}
	if params.OwnerID != nil {
		qb = qb.Where(squirrel.Eq{"owner_id": *params.OwnerID})
	}
	if params.AssigneeID != nil {
		qb = qb.Where(squirrel.Eq{"assignee_id": *params.AssigneeID})
	}
	if search := strings.TrimSpace(params.Search); search != "" {
		pattern := "%" + escapeLike(search) + "%"
		qb = qb.Where(squirrel.Or{
			squirrel.ILike{"customer_name": pattern},
			squirrel.ILike{"customer_phone": pattern},
			squirrel.ILike{"customer_location": pattern},
		})
	}
	if params.CreatedAfter != nil {
		qb = qb.Where(squirrel.GtOrEq{"created_at": *params.CreatedAfter})
	}
	if params.CreatedBefore != nil {
		qb = qb.Where(squirrel.Lt{"created_at": *params.CreatedBefore})
	}
	return qb
}

func buildOrderCountQuery(params ports.OrderListParams) (string, []interface{}, error) {
	return applyOrderFilters(psql.Select("COUNT(*)").From("orders"), params).ToSql()
}

func buildOrderListQuery(params ports.OrderListParams) (string, []interface{}, error) {
	// SortBy is whitelisted by Normalize
	orderBy := fmt.Sprintf("%s %s NULLS LAST", params.SortBy, sqlDirection(params.SortOrder))

	return applyOrderFilters(psql.Select(orderColumns...).From("orders"), params).
		OrderBy(orderBy, "id ASC").
		Limit(uint64(params.PageSize)).
		Offset(uint64(params.Offset())).
		ToSql()
}

func (r *orderRepository) loadItems(ctx context.Context, orderIDs []uuid.UUID) (map[uuid.UUID][]domain.LineItem, error) {
	items := make(map[uuid.UUID][]domain.LineItem, len(orderIDs))
	if len(orderIDs) == 0 {
		return items, nil
	}

	query, args, err := psql.Select("order_id", "product_id", "qty").
		From("order_items").
		Where(squirrel.Eq{"order_id": orderIDs}).
		OrderBy("order_id", "position").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build line item query: %w", err)
	}

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to load line items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var orderID uuid.UUID
		var item domain.LineItem
		if err := rows.Scan(&orderID, &item.ProductID, &item.Qty); err != nil {
			return nil, fmt.Errorf("failed to scan line item: %w", err)
		}
		items[orderID] = append(items[orderID], item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating line items: %w", err)
	}

	return items, nil
}

func (r *orderRepository) insertItems(ctx context.Context, orderID uuid.UUID, items []domain.LineItem) error {
	if len(items) == 0 {
		return nil
	}

	qb := psql.Insert("order_items").Columns("order_id", "position", "product_id", "qty")
	for i, item := range items {
		qb = qb.Values(orderID, i, item.ProductID, item.Qty)
	}

	query, args, err := qb.ToSql()
	if err != nil {
		return fmt.Errorf("failed to build line item insert: %w", err)
	}
	if _, err := r.q.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to insert line items: %w", err)
	}
	return nil
}

func orderValues(o *domain.Order) []interface{} {
	return []interface{}{
		o.ID, o.Status, o.Customer.Name, o.Customer.Phone, o.Customer.Location,
		o.OwnerID, o.AssigneeID, o.PaymentMethod, o.DeliveryDate,
		o.CreatedAt, o.UpdatedAt,
	}
}

func scanOrder(row pgx.Row) (*domain.Order, error) {
	o := &domain.Order{}
	err := row.Scan(
		&o.ID, &o.Status, &o.Customer.Name, &o.Customer.Phone, &o.Customer.Location,
		&o.OwnerID, &o.AssigneeID, &o.PaymentMethod, &o.DeliveryDate,
		&o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	o.CreatedAt = o.CreatedAt.UTC()
	o.UpdatedAt = o.UpdatedAt.UTC()
	return o, nil
}

func sqlDirection(order string) string {
	if order == "asc" {
		return "ASC"
	}
	return "DESC"
}

// qualify prefixes columns with a table alias
func qualify(alias string, columns []string) []string {
	out := make([]string, len(columns))
	for i, c := range columns {
		out[i] = alias + "." + c
	}
	return out
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// isNoRows reports whether err means the row does not exist
func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
