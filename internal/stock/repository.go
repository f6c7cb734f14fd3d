package stock

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository persists stock entities in Postgres.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a stock repository over a pgx pool.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) ListMaterials(ctx context.Context) ([]RawMaterial, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, stock_quantity, description, category, internal_code, price
		FROM raw_materials ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("stock: list materials: %w", err)
	}
	defer rows.Close()
	var out []RawMaterial
	for rows.Next() {
		var m RawMaterial
		if err := rows.Scan(&m.ID, &m.Name, &m.Quantity, &m.Description, &m.Category, &m.InternalCode, &m.Price); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *Repository) GetMaterial(ctx context.Context, id int64) (RawMaterial, bool, error) {
	var m RawMaterial
	err := r.pool.QueryRow(ctx, `
		SELECT id, name, stock_quantity, description, category, internal_code, price
		FROM raw_materials WHERE id = $1`, id).
		Scan(&m.ID, &m.Name, &m.Quantity, &m.Description, &m.Category, &m.InternalCode, &m.Price)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return RawMaterial{}, false, nil
		}
		return RawMaterial{}, false, fmt.Errorf("stock: get material: %w", err)
	}
	return m, true, nil
}

func (r *Repository) CreateMaterial(ctx context.Context, m RawMaterial) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `
		INSERT INTO raw_materials (name, stock_quantity, description, category, internal_code, price)
		VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`,
		m.Name, m.Quantity, m.Description, m.Category, m.InternalCode, m.Price).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("stock: create material: %w", err)
	}
	return id, nil
}

func (r *Repository) UpdateMaterial(ctx context.Context, m RawMaterial) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE raw_materials
		SET name = $2, stock_quantity = $3, description = $4, category = $5, internal_code = $6, price = $7
		WHERE id = $1`,
		m.ID, m.Name, m.Quantity, m.Description, m.Category, m.InternalCode, m.Price)
	if err != nil {
		return fmt.Errorf("stock: update material: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: raw material %d", ErrNotFound, m.ID)
	}
	return nil
}

func (r *Repository) DeleteMaterial(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM raw_materials WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("stock: delete material: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: raw material %d", ErrNotFound, id)
	}
	return nil
}

func (r *Repository) MissingMaterialIDs(ctx context.Context, ids []int64) ([]int64, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := r.pool.Query(ctx, `SELECT id FROM raw_materials WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, fmt.Errorf("stock: missing material ids: %w", err)
	}
	defer rows.Close()
	found := make(map[int64]bool, len(ids))
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		found[id] = true
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	var missing []int64
	for _, id := range ids {
		if !found[id] {
			missing = append(missing, id)
		}
	}
	return missing, nil
}

func (r *Repository) MaterialNames(ctx context.Context, ids []int64) (map[int64]string, error) {
	out := make(map[int64]string, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	rows, err := r.pool.Query(ctx, `SELECT id, name FROM raw_materials WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, fmt.Errorf("stock: material names: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var id int64
		var name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, err
		}
		out[id] = name
	}
	return out, rows.Err()
}

func (r *Repository) ListProducts(ctx context.Context) ([]Product, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, stock_quantity, description, internal_code, price, production_order_id
		FROM products ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("stock: list products: %w", err)
	}
	defer rows.Close()
	var out []Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Quantity, &p.Description, &p.InternalCode, &p.Price, &p.ProductionOrderID); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *Repository) GetProduct(ctx context.Context, id int64) (Product, bool, error) {
	var p Product
	err := r.pool.QueryRow(ctx, `
		SELECT id, name, stock_quantity, description, internal_code, price, production_order_id
		FROM products WHERE id = $1`, id).
		Scan(&p.ID, &p.Name, &p.Quantity, &p.Description, &p.InternalCode, &p.Price, &p.ProductionOrderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Product{}, false, nil
		}
		return Product{}, false, fmt.Errorf("stock: get product: %w", err)
	}
	return p, true, nil
}

func (r *Repository) CreateProduct(ctx context.Context, p Product) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `
		INSERT INTO products (name, stock_quantity, description, internal_code, price, production_order_id)
		VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`,
		p.Name, p.Quantity, p.Description, p.InternalCode, p.Price, p.ProductionOrderID).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("stock: create product: %w", err)
	}
	return id, nil
}

func (r *Repository) UpdateProduct(ctx context.Context, p Product) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE products
		SET name = $2, stock_quantity = $3, description = $4, internal_code = $5, price = $6, production_order_id = $7
		WHERE id = $1`,
		p.ID, p.Name, p.Quantity, p.Description, p.InternalCode, p.Price, p.ProductionOrderID)
	if err != nil {
		return fmt.Errorf("stock: update product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: product %d", ErrNotFound, p.ID)
	}
	return nil
}

func (r *Repository) AdjustProductQuantity(ctx context.Context, id int64, delta int64) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE products SET stock_quantity = stock_quantity + $2 WHERE id = $1`, id, delta)
	if err != nil {
		return fmt.Errorf("stock: adjust product quantity: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: product %d", ErrNotFound, id)
	}
	return nil
}
