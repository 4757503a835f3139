// internal/adapters/db/inventory_repository.go
package db

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/ammerola/resell-orders/internal/core/domain"
	"github.com/ammerola/resell-orders/internal/core/ports"
)

const pgForeignKeyViolation = "23503"

var inventoryColumns = []string{
	"product_id", "owner_id", "count", "sale_price", "created_at", "updated_at",
}

var purchaseColumns = []string{
	"id", "product_id", "owner_id", "count", "purchased_price", "sale_price", "created_at",
}

// stockItemColumns and purchaseItemColumns select a row joined with its
// catalog entry, aliased p
var (
	stockItemColumns    = append(qualify("i", inventoryColumns), qualify("p", productColumns)...)
	purchaseItemColumns = append(qualify("pu", purchaseColumns), qualify("p", productColumns)...)
)

// sort keys accepted by the list params, mapped to columns
var (
	stockSortColumns = map[string]string{
		"count":      "i.count",
		"sale_price": "i.sale_price",
		"updated_at": "i.updated_at",
		"name":       "p.name",
	}
	purchaseSortColumns = map[string]string{
		"created_at":      "pu.created_at",
		"count":           "pu.count",
		"purchased_price": "pu.purchased_price",
		"sale_price":      "pu.sale_price",
		"name":            "p.name",
	}
)

// incrementSQL adds $2 to a counter. With $3 false a decrement that would
// take the count below zero matches no row.
const incrementSQL = `
	UPDATE inventory
	SET count = count + $2, updated_at = NOW()
	WHERE product_id = $1
	  AND ($3::bool OR $2::int >= 0 OR count + $2::int >= 0)
	RETURNING count`

// inventoryRepository implements ports.InventoryRepository
type inventoryRepository struct {
	q      DBTX
	logger *slog.Logger
}

// Statically assert that *inventoryRepository implements the InventoryRepository interface.
var _ ports.InventoryRepository = (*inventoryRepository)(nil)

// NewInventoryRepository creates an inventory repository over a pool or a transaction
func NewInventoryRepository(q DBTX, logger *slog.Logger) ports.InventoryRepository {
	return &inventoryRepository{
		q:      q,
		logger: logger.With(slog.String("repository", "inventory")),
	}
}

// FindByProductID retrieves the stock record of a product
func (r *inventoryRepository) FindByProductID(ctx context.Context, productID uuid.UUID) (*domain.InventoryRecord, error) {
	query, args, err := psql.Select(inventoryColumns...).
		From("inventory").
		Where(squirrel.Eq{"product_id": productID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	record, err := ScanOne(r.q.QueryRow(ctx, query, args...), scanInventory)
	if err != nil {
		return nil, fmt.Errorf("failed to find inventory record: %w", err)
	}
	return record, nil
}

// FindByProductIDs retrieves the stock records of several products
func (r *inventoryRepository) FindByProductIDs(ctx context.Context, productIDs []uuid.UUID) (map[uuid.UUID]*domain.InventoryRecord, error) {
	records := make(map[uuid.UUID]*domain.InventoryRecord, len(productIDs))
	if len(productIDs) == 0 {
		return records, nil
	}

	query, args, err := psql.Select(inventoryColumns...).
		From("inventory").
		Where(squirrel.Eq{"product_id": productIDs}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query inventory: %w", err)
	}

	list, err := ScanMany(rows, func(rows pgx.Rows) (*domain.InventoryRecord, error) {
		return scanInventory(rows)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan inventory: %w", err)
	}
	for _, rec := range list {
		records[rec.ProductID] = rec
	}
	return records, nil
}

// FindStockItem retrieves a product's stock record with its catalog entry
func (r *inventoryRepository) FindStockItem(ctx context.Context, productID uuid.UUID) (*domain.StockItem, error) {
	query, args, err := stockFrom(stockItemColumns...).
		Where(squirrel.Eq{"i.product_id": productID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	item, err := ScanOne(r.q.QueryRow(ctx, query, args...), scanStockItem)
	if err != nil {
		return nil, fmt.Errorf("failed to find stock item: %w", err)
	}
	return item, nil
}

// ListStock retrieves a filtered, sorted page of stock records
func (r *inventoryRepository) ListStock(ctx context.Context, params ports.StockListParams) ([]*domain.StockItem, int64, error) {
	params.Normalize()

	countSQL, countArgs, err := buildStockCountQuery(params)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build count query: %w", err)
	}
	var total int64
	if err := r.q.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count stock: %w", err)
	}
	if total == 0 {
		return []*domain.StockItem{}, 0, nil
	}

	query, args, err := buildStockListQuery(params)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build query: %w", err)
	}
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list stock: %w", err)
	}

	items, err := ScanMany(rows, func(rows pgx.Rows) (*domain.StockItem, error) {
		return scanStockItem(rows)
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to scan stock: %w", err)
	}
	return items, total, nil
}

// FindPurchaseByID retrieves one purchase with its catalog entry
func (r *inventoryRepository) FindPurchaseByID(ctx context.Context, id uuid.UUID) (*domain.PurchaseItem, error) {
	query, args, err := purchaseFrom(purchaseItemColumns...).
		Where(squirrel.Eq{"pu.id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	item, err := ScanOne(r.q.QueryRow(ctx, query, args...), scanPurchaseItem)
	if err != nil {
		return nil, fmt.Errorf("failed to find purchase: %w", err)
	}
	return item, nil
}

// ListPurchases retrieves a filtered, sorted page of purchase history
func (r *inventoryRepository) ListPurchases(ctx context.Context, params ports.PurchaseListParams) ([]*domain.PurchaseItem, int64, error) {
	params.Normalize()

	countSQL, countArgs, err := buildPurchaseCountQuery(params)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build count query: %w", err)
	}
	var total int64
	if err := r.q.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count purchases: %w", err)
	}
	if total == 0 {
		return []*domain.PurchaseItem{}, 0, nil
	}

	query, args, err := buildPurchaseListQuery(params)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build query: %w", err)
	}
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list purchases: %w", err)
	}

	items, err := ScanMany(rows, func(rows pgx.Rows) (*domain.PurchaseItem, error) {
		return scanPurchaseItem(rows)
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to scan purchases: %w", err)
	}
	return items, total, nil
}

func stockFrom(columns ...string) squirrel.SelectBuilder {
	return psql.Select(columns...).From("inventory i").Join("products p ON p.id = i.product_id")
}

func purchaseFrom(columns ...string) squirrel.SelectBuilder {
	return psql.Select(columns...).From("purchases pu").Join("products p ON p.id = pu.product_id")
}

// searchCatalog matches field of the joined catalog entry. field is
// whitelisted by the params' Normalize.
func searchCatalog(qb squirrel.SelectBuilder, field, search string) squirrel.SelectBuilder {
	search = strings.TrimSpace(search)
	if search == "" {
		return qb
	}
	return qb.Where(squirrel.ILike{"p." + field: "%" + escapeLike(search) + "%"})
}

func applyStockFilters(qb squirrel.SelectBuilder, params ports.StockListParams) squirrel.SelectBuilder {
	if params.OwnerID != nil {
		qb = qb.Where(squirrel.Eq{"i.owner_id": *params.OwnerID})
	}
	if params.ProductType != "" {
		qb = qb.Where(squirrel.Eq{"p.type": params.ProductType})
	}
	if params.MaxCount != nil {
		qb = qb.Where(squirrel.LtOrEq{"i.count": *params.MaxCount})
	}
	return searchCatalog(qb, params.SearchField, params.Search)
}

func buildStockCountQuery(params ports.StockListParams) (string, []interface{}, error) {
	return applyStockFilters(stockFrom("COUNT(*)"), params).ToSql()
}

func buildStockListQuery(params ports.StockListParams) (string, []interface{}, error) {
	orderBy := fmt.Sprintf("%s %s", stockSortColumns[params.SortBy], sqlDirection(params.SortOrder))
	return applyStockFilters(stockFrom(stockItemColumns...), params).
		OrderBy(orderBy, "i.product_id ASC").
		Limit(uint64(params.PageSize)).
		Offset(uint64(params.Offset())).
		ToSql()
}

func applyPurchaseFilters(qb squirrel.SelectBuilder, params ports.PurchaseListParams) squirrel.SelectBuilder {
	if params.OwnerID != nil {
		qb = qb.Where(squirrel.Eq{"pu.owner_id": *params.OwnerID})
	}
	if params.ProductID != nil {
		qb = qb.Where(squirrel.Eq{"pu.product_id": *params.ProductID})
	}
	if params.CreatedAfter != nil {
		qb = qb.Where(squirrel.GtOrEq{"pu.created_at": *params.CreatedAfter})
	}
	if params.CreatedBefore != nil {
		qb = qb.Where(squirrel.Lt{"pu.created_at": *params.CreatedBefore})
	}
	return searchCatalog(qb, params.SearchField, params.Search)
}

func buildPurchaseCountQuery(params ports.PurchaseListParams) (string, []interface{}, error) {
	return applyPurchaseFilters(purchaseFrom("COUNT(*)"), params).ToSql()
}

func buildPurchaseListQuery(params ports.PurchaseListParams) (string, []interface{}, error) {
	orderBy := fmt.Sprintf("%s %s", purchaseSortColumns[params.SortBy], sqlDirection(params.SortOrder))
	return applyPurchaseFilters(purchaseFrom(purchaseItemColumns...), params).
		OrderBy(orderBy, "pu.id ASC").
		Limit(uint64(params.PageSize)).
		Offset(uint64(params.Offset())).
		ToSql()
}

// BulkIncrement applies every delta of the batch inside a savepoint, in
// product id order so concurrent batches lock rows in the same sequence.
// If any entry fails the savepoint is rolled back and the failures are
// classified.
func (r *inventoryRepository) BulkIncrement(ctx context.Context, batch domain.AdjustmentBatch) ([]domain.StockLevel, error) {
	if batch.Empty() {
		return nil, nil
	}

	deltas := append([]domain.StockDelta(nil), batch.Deltas...)
	sort.Slice(deltas, func(i, j int) bool {
		return bytes.Compare(deltas[i].ProductID[:], deltas[j].ProductID[:]) < 0
	})

	tx, err := r.q.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin stock batch: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	levels, rejected, err := r.sendIncrements(ctx, tx, deltas, batch.AllowNegative)
	if err != nil {
		return nil, err
	}

	if len(rejected) > 0 {
		failed, err := r.classifyFailures(ctx, tx, rejected)
		if err != nil {
			return nil, err
		}
		appErr := &domain.InventoryApplicationError{
			OrderID: batch.OrderID,
			Failed:  failed,
			Valid:   len(levels),
		}
		r.logger.WarnContext(ctx, "stock batch rejected",
			slog.String("order_id", batch.OrderID.String()),
			slog.Int("failed", len(failed)),
			slog.Int("entries", len(deltas)))
		return nil, appErr
	}

	if err := insertMovements(ctx, tx, batch.OrderID, batch.Reason, deltas); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit stock batch: %w", err)
	}

	r.logger.DebugContext(ctx, "stock batch applied",
		slog.String("order_id", batch.OrderID.String()),
		slog.String("reason", string(batch.Reason)),
		slog.Int("entries", len(deltas)))

	return levels, nil
}

func (r *inventoryRepository) sendIncrements(ctx context.Context, tx pgx.Tx, deltas []domain.StockDelta,
	allowNegative bool) ([]domain.StockLevel, []domain.StockDelta, error) {
	b := &pgx.Batch{}
	for _, d := range deltas {
		b.Queue(incrementSQL, d.ProductID, d.Delta, allowNegative)
	}

	br := tx.SendBatch(ctx, b)
	defer br.Close()

	levels := make([]domain.StockLevel, 0, len(deltas))
	var rejected []domain.StockDelta
	for _, d := range deltas {
		var count int
		err := br.QueryRow().Scan(&count)
		switch {
		case isNoRows(err):
			rejected = append(rejected, d)
		case err != nil:
			return nil, nil, fmt.Errorf("failed to apply delta for product %s: %w", d.ProductID, err)
		default:
			levels = append(levels, domain.StockLevel{ProductID: d.ProductID, Count: count})
		}
	}

	if err := br.Close(); err != nil {
		return nil, nil, fmt.Errorf("failed to close stock batch: %w", err)
	}
	return levels, rejected, nil
}

func (r *inventoryRepository) classifyFailures(ctx context.Context, tx pgx.Tx, rejected []domain.StockDelta) ([]domain.FailedAdjustment, error) {
	failed := make([]domain.FailedAdjustment, 0, len(rejected))
	for _, d := range rejected {
		var count int
		err := tx.QueryRow(ctx, `SELECT count FROM inventory WHERE product_id = $1`, d.ProductID).Scan(&count)
		switch {
		case isNoRows(err):
			failed = append(failed, domain.FailedAdjustment{
				ProductID: d.ProductID,
				Delta:     d.Delta,
				Reason:    domain.FailureProductNotFound,
			})
		case err != nil:
			return nil, fmt.Errorf("failed to classify rejected delta: %w", err)
		default:
			c := count
			failed = append(failed, domain.FailedAdjustment{
				ProductID: d.ProductID,
				Delta:     d.Delta,
				Reason:    domain.FailureInsufficientStock,
				Count:     &c,
			})
		}
	}
	return failed, nil
}

// RecordPurchase upserts the product's counter, then logs the purchase and
// its ledger row
func (r *inventoryRepository) RecordPurchase(ctx context.Context, p *domain.Purchase) (*domain.InventoryRecord, error) {
	tx, err := r.q.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin purchase: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	const upsert = `
		INSERT INTO inventory (product_id, owner_id, count, sale_price, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)
		ON CONFLICT (product_id) DO UPDATE SET
			count = inventory.count + EXCLUDED.count,
			sale_price = EXCLUDED.sale_price,
			updated_at = EXCLUDED.updated_at
		RETURNING product_id, owner_id, count, sale_price, created_at, updated_at`

	record, err := scanInventory(tx.QueryRow(ctx, upsert,
		p.ProductID, p.OwnerID, p.Count, p.SalePrice, p.CreatedAt))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation {
			return nil, fmt.Errorf("%w: %s", domain.ErrProductNotFound, p.ProductID)
		}
		return nil, fmt.Errorf("failed to upsert inventory: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO purchases (id, product_id, owner_id, count, purchased_price, sale_price, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		p.ID, p.ProductID, p.OwnerID, p.Count, p.PurchasedPrice, p.SalePrice, p.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert purchase: %w", err)
	}

	movement := []domain.StockDelta{{ProductID: p.ProductID, Delta: p.Count}}
	if err := insertMovements(ctx, tx, uuid.Nil, domain.ReasonPurchase, movement); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit purchase: %w", err)
	}

	return record, nil
}

// PruneMovements deletes ledger rows created before the cutoff
func (r *inventoryRepository) PruneMovements(ctx context.Context, before time.Time) (int64, error) {
	tag, err := r.q.Exec(ctx, `DELETE FROM stock_movements WHERE created_at < $1`, before)
	if err != nil {
		return 0, fmt.Errorf("failed to prune stock movements: %w", err)
	}
	return tag.RowsAffected(), nil
}

func insertMovements(ctx context.Context, q DBTX, orderID uuid.UUID, reason domain.MovementReason, deltas []domain.StockDelta) error {
	var ref *uuid.UUID
	if orderID != uuid.Nil {
		ref = &orderID
	}

	qb := psql.Insert("stock_movements").Columns("product_id", "order_id", "delta", "reason")
	for _, d := range deltas {
		qb = qb.Values(d.ProductID, ref, d.Delta, reason)
	}

	query, args, err := qb.ToSql()
	if err != nil {
		return fmt.Errorf("failed to build movement insert: %w", err)
	}
	if _, err := q.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to record stock movements: %w", err)
	}
	return nil
}

func scanStockItem(row pgx.Row) (*domain.StockItem, error) {
	item := &domain.StockItem{Product: &domain.Product{}}
	rec := &item.InventoryRecord
	dest := append([]interface{}{&rec.ProductID, &rec.OwnerID, &rec.Count, &rec.SalePrice, &rec.CreatedAt, &rec.UpdatedAt},
		productDest(item.Product)...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	rec.CreatedAt = rec.CreatedAt.UTC()
	rec.UpdatedAt = rec.UpdatedAt.UTC()
	return item, nil
}

func scanPurchaseItem(row pgx.Row) (*domain.PurchaseItem, error) {
	item := &domain.PurchaseItem{Product: &domain.Product{}}
	p := &item.Purchase
	dest := append([]interface{}{&p.ID, &p.ProductID, &p.OwnerID, &p.Count, &p.PurchasedPrice, &p.SalePrice, &p.CreatedAt},
		productDest(item.Product)...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	p.CreatedAt = p.CreatedAt.UTC()
	return item, nil
}

func scanInventory(row pgx.Row) (*domain.InventoryRecord, error) {
	rec := &domain.InventoryRecord{}
	if err := row.Scan(&rec.ProductID, &rec.OwnerID, &rec.Count, &rec.SalePrice, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
		return nil, err
	}
	rec.CreatedAt = rec.CreatedAt.UTC()
	rec.UpdatedAt = rec.UpdatedAt.UTC()
	return rec, nil
}
