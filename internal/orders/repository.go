package orders

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository persists client orders in Postgres.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs an orders repository over a pgx pool.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) ListOrders(ctx context.Context) ([]OrderSummary, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT o.id, o.ordered_at, o.status, c.name
		FROM client_orders o
		JOIN clients c ON c.id = o.client_id
		ORDER BY o.ordered_at DESC, o.id DESC`)
	if err != nil {
		return nil, fmt.Errorf("orders: list: %w", err)
	}
	defer rows.Close()
	var out []OrderSummary
	for rows.Next() {
		var o OrderSummary
		if err := rows.Scan(&o.ID, &o.OrderedAt, &o.Status, &o.ClientName); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func (r *Repository) GetOrder(ctx context.Context, id int64) (ClientOrder, []OrderItem, error) {
	var o ClientOrder
	err := r.pool.QueryRow(ctx, `
		SELECT id, ordered_at, status, client_id
		FROM client_orders WHERE id = $1`, id).
		Scan(&o.ID, &o.OrderedAt, &o.Status, &o.ClientID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ClientOrder{}, nil, fmt.Errorf("%w: client order %d", ErrNotFound, id)
		}
		return ClientOrder{}, nil, fmt.Errorf("orders: get: %w", err)
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id, order_id, product_id, quantity
		FROM client_order_items WHERE order_id = $1 ORDER BY id`, id)
	if err != nil {
		return ClientOrder{}, nil, fmt.Errorf("orders: items: %w", err)
	}
	defer rows.Close()
	var items []OrderItem
	for rows.Next() {
		var it OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.Quantity); err != nil {
			return ClientOrder{}, nil, err
		}
		items = append(items, it)
	}
	return o, items, rows.Err()
}

func (r *Repository) CreateOrder(ctx context.Context, order ClientOrder) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `
		INSERT INTO client_orders (ordered_at, status, client_id)
		VALUES ($1, $2, $3) RETURNING id`,
		order.OrderedAt, order.Status, order.ClientID).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("orders: create: %w", err)
	}
	return id, nil
}

func (r *Repository) UpdateOrderStatus(ctx context.Context, id int64, status OrderState) error {
	tag, err := r.pool.Exec(ctx, `UPDATE client_orders SET status = $2 WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("orders: update status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: client order %d", ErrNotFound, id)
	}
	return nil
}

func (r *Repository) CreateItem(ctx context.Context, item OrderItem) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `
		INSERT INTO client_order_items (order_id, product_id, quantity)
		VALUES ($1, $2, $3) RETURNING id`,
		item.OrderID, item.ProductID, item.Quantity).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("orders: create item: %w", err)
	}
	return id, nil
}

func (r *Repository) UpdateItemQuantity(ctx context.Context, orderID, itemID, quantity int64) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE client_order_items SET quantity = $3
		WHERE id = $2 AND order_id = $1`, orderID, itemID, quantity)
	if err != nil {
		return fmt.Errorf("orders: update item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: item %d on order %d", ErrNotFound, itemID, orderID)
	}
	return nil
}

// OrderShortages joins order lines through the bill of materials and keeps
// the rows where the warehouse cannot cover the requirement.
func (r *Repository) OrderShortages(ctx context.Context, orderID int64) ([]Shortage, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT m.id, m.name, p.name,
		       pm.quantity_needed * i.quantity AS required,
		       m.stock_quantity
		FROM client_order_items i
		JOIN products p ON p.id = i.product_id
		JOIN product_materials pm ON pm.product_id = i.product_id
		JOIN raw_materials m ON m.id = pm.material_id
		WHERE i.order_id = $1
		  AND m.stock_quantity < pm.quantity_needed * i.quantity
		ORDER BY m.name`, orderID)
	if err != nil {
		return nil, fmt.Errorf("orders: shortages: %w", err)
	}
	defer rows.Close()
	var out []Shortage
	for rows.Next() {
		var s Shortage
		if err := rows.Scan(&s.MaterialID, &s.MaterialName, &s.ProductName, &s.Required, &s.Available); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *Repository) ListRequirements(ctx context.Context, productID int64) ([]Requirement, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, product_id, material_id, quantity_needed
		FROM product_materials WHERE product_id = $1 ORDER BY id`, productID)
	if err != nil {
		return nil, fmt.Errorf("orders: list requirements: %w", err)
	}
	defer rows.Close()
	var out []Requirement
	for rows.Next() {
		var req Requirement
		if err := rows.Scan(&req.ID, &req.ProductID, &req.MaterialID, &req.QuantityNeeded); err != nil {
			return nil, err
		}
		out = append(out, req)
	}
	return out, rows.Err()
}

func (r *Repository) UpsertRequirement(ctx context.Context, req Requirement) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `
		INSERT INTO product_materials (product_id, material_id, quantity_needed)
		VALUES ($1, $2, $3)
		ON CONFLICT (product_id, material_id)
		DO UPDATE SET quantity_needed = EXCLUDED.quantity_needed
		RETURNING id`,
		req.ProductID, req.MaterialID, req.QuantityNeeded).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("orders: upsert requirement: %w", err)
	}
	return id, nil
}
