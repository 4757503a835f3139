// internal/adapters/db/product_repository.go
package db

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/ammerola/resell-orders/internal/core/domain"
	"github.com/ammerola/resell-orders/internal/core/ports"
)

var productColumns = []string{
	"id", "type", "name", "color", "smell", "season", "gender",
	"persistence", "slug", "owner_id", "created_at", "updated_at",
}

// productRepository implements ports.ProductRepository
type productRepository struct {
	q      DBTX
	logger *slog.Logger
}

// Statically assert that *productRepository implements the ProductRepository interface.
var _ ports.ProductRepository = (*productRepository)(nil)

// NewProductRepository creates a catalog repository
func NewProductRepository(q DBTX, logger *slog.Logger) ports.ProductRepository {
	return &productRepository{
		q:      q,
		logger: logger.With(slog.String("repository", "products")),
	}
}

// FindByIDs retrieves catalog entries keyed by id; unknown ids are absent
func (r *productRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*domain.Product, error) {
	products := make(map[uuid.UUID]*domain.Product, len(ids))
	if len(ids) == 0 {
		return products, nil
	}

	query, args, err := psql.Select(productColumns...).
		From("products").
		Where(squirrel.Eq{"id": ids}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}

	list, err := ScanMany(rows, func(rows pgx.Rows) (*domain.Product, error) {
		p := &domain.Product{}
		return p, rows.Scan(productDest(p)...)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan products: %w", err)
	}

	for _, p := range list {
		products[p.ID] = p
	}
	return products, nil
}

// Upsert creates or replaces a catalog entry
func (r *productRepository) Upsert(ctx context.Context, p *domain.Product) error {
	now := time.Now().UTC()
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now

	query, args, err := psql.Insert("products").
		Columns(productColumns...).
		Values(p.ID, p.Type, p.Name, p.Color, p.Smell, p.Season, p.Gender,
			p.Persistence, p.Slug, p.OwnerID, p.CreatedAt, p.UpdatedAt).
		Suffix(`ON CONFLICT (id) DO UPDATE SET
			type = EXCLUDED.type, name = EXCLUDED.name, color = EXCLUDED.color,
			smell = EXCLUDED.smell, season = EXCLUDED.season, gender = EXCLUDED.gender,
			persistence = EXCLUDED.persistence, slug = EXCLUDED.slug,
			updated_at = EXCLUDED.updated_at
			RETURNING created_at`).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build upsert: %w", err)
	}

	if err := r.q.QueryRow(ctx, query, args...).Scan(&p.CreatedAt); err != nil {
		return fmt.Errorf("failed to upsert product: %w", err)
	}

	r.logger.DebugContext(ctx, "product upserted", slog.String("product_id", p.ID.String()))
	return nil
}

// productDest returns scan targets in productColumns order
func productDest(p *domain.Product) []interface{} {
	return []interface{}{&p.ID, &p.Type, &p.Name, &p.Color, &p.Smell, &p.Season, &p.Gender,
		&p.Persistence, &p.Slug, &p.OwnerID, &p.CreatedAt, &p.UpdatedAt}
}
