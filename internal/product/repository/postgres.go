package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"freshbonds/backend/internal/product/domain"
)

const productColumns = `id, name, description, price, category, image,
farmer_id, farmer_name, farmer_location, farmer_mobile,
in_stock, is_visible, is_approved, organic, harvest_date, quantity, unit, views,
created_at, updated_at`

// PostgresRepository implements Repository backed by a pgx pool.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	const q = `SELECT ` + productColumns + ` FROM products WHERE id = $1`
	return scanProduct(r.pool.QueryRow(ctx, q, id))
}

func (r *PostgresRepository) ListVisible(ctx context.Context, limit int32) ([]*domain.Product, error) {
	const q = `
SELECT ` + productColumns + `
FROM products
WHERE is_visible AND is_approved
ORDER BY created_at DESC
LIMIT $1`
	return r.list(ctx, q, limit)
}

func (r *PostgresRepository) ListAll(ctx context.Context, limit int32) ([]*domain.Product, error) {
	const q = `
SELECT ` + productColumns + `
FROM products
ORDER BY created_at DESC
LIMIT $1`
	return r.list(ctx, q, limit)
}

func (r *PostgresRepository) ListByFarmer(ctx context.Context, farmerID string) ([]*domain.Product, error) {
	const q = `
SELECT ` + productColumns + `
FROM products
WHERE farmer_id = $1
ORDER BY created_at DESC`
	return r.list(ctx, q, farmerID)
}

func (r *PostgresRepository) Create(ctx context.Context, p *domain.Product) error {
	const q = `
INSERT INTO products (id, name, description, price, category, image,
                      farmer_id, farmer_name, farmer_location, farmer_mobile,
                      in_stock, is_visible, is_approved, organic, harvest_date,
                      quantity, unit, views, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10,
        $11, $12, $13, $14, $15, $16, $17, $18, $19, $19)`
	_, err := r.pool.Exec(ctx, q,
		p.ID, p.Name, p.Description, p.Price, p.Category, p.Image,
		p.FarmerID, p.FarmerName, p.FarmerLocation, nullIfEmpty(p.FarmerMobile),
		p.InStock, p.IsVisible, p.IsApproved, p.Organic, p.HarvestDate,
		p.Quantity, p.Unit, p.Views, p.CreatedAt)
	return err
}

// Update persists the mutable listing fields. The farmer columns stay as
// they were written at creation.
func (r *PostgresRepository) Update(ctx context.Context, p *domain.Product) error {
	const q = `
UPDATE products
SET name = $2, description = $3, price = $4, category = $5, image = $6,
    in_stock = $7, is_visible = $8, organic = $9, harvest_date = $10,
    quantity = $11, unit = $12, updated_at = now()
WHERE id = $1`
	tag, err := r.pool.Exec(ctx, q,
		p.ID, p.Name, p.Description, p.Price, p.Category, p.Image,
		p.InStock, p.IsVisible, p.Organic, p.HarvestDate, p.Quantity, p.Unit)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) IncrementViews(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx, `UPDATE products SET views = views + 1 WHERE id = $1`, id)
	return err
}

func (r *PostgresRepository) list(ctx context.Context, q string, args ...any) ([]*domain.Product, error) {
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func scanProduct(row pgx.Row) (*domain.Product, error) {
	var (
		p      domain.Product
		mobile *string
	)
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Category, &p.Image,
		&p.FarmerID, &p.FarmerName, &p.FarmerLocation, &mobile,
		&p.InStock, &p.IsVisible, &p.IsApproved, &p.Organic, &p.HarvestDate,
		&p.Quantity, &p.Unit, &p.Views, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if mobile != nil {
		p.FarmerMobile = *mobile
	}
	return &p, nil
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
