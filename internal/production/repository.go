package production

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository persists production entities in Postgres.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a production repository over a pgx pool.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const orderColumns = `id, status, quantity, opened_at, closed_at, machine_id, product_id`

func (r *Repository) ListOrders(ctx context.Context, state string) ([]Order, error) {
	query := `SELECT ` + orderColumns + ` FROM production_orders`
	args := []interface{}{}
	if state != "" {
		query += ` WHERE status = $1`
		args = append(args, state)
	}
	query += ` ORDER BY opened_at DESC`
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("production: list orders: %w", err)
	}
	defer rows.Close()
	var out []Order
	for rows.Next() {
		var o Order
		if err := rows.Scan(&o.ID, &o.Status, &o.Quantity, &o.OpenedAt, &o.ClosedAt, &o.MachineID, &o.ProductID); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func (r *Repository) GetOrder(ctx context.Context, id int64) (Order, bool, error) {
	var o Order
	err := r.pool.QueryRow(ctx, `SELECT `+orderColumns+` FROM production_orders WHERE id = $1`, id).
		Scan(&o.ID, &o.Status, &o.Quantity, &o.OpenedAt, &o.ClosedAt, &o.MachineID, &o.ProductID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Order{}, false, nil
		}
		return Order{}, false, fmt.Errorf("production: get order: %w", err)
	}
	return o, true, nil
}

func (r *Repository) CreateOrder(ctx context.Context, o Order) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `
		INSERT INTO production_orders (status, quantity, opened_at, closed_at, machine_id, product_id)
		VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`,
		o.Status, o.Quantity, o.OpenedAt, o.ClosedAt, o.MachineID, o.ProductID).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("production: create order: %w", err)
	}
	return id, nil
}

func (r *Repository) UpdateOrder(ctx context.Context, o Order) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE production_orders SET status = $2, closed_at = $3 WHERE id = $1`,
		o.ID, o.Status, o.ClosedAt)
	if err != nil {
		return fmt.Errorf("production: update order: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: production order %d", ErrNotFound, o.ID)
	}
	return nil
}

const runColumns = `id, status, started_at, notes, operator_id, order_id`

func (r *Repository) GetRun(ctx context.Context, id int64) (Run, bool, error) {
	var run Run
	err := r.pool.QueryRow(ctx, `SELECT `+runColumns+` FROM production_runs WHERE id = $1`, id).
		Scan(&run.ID, &run.Status, &run.StartedAt, &run.Notes, &run.OperatorID, &run.OrderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Run{}, false, nil
		}
		return Run{}, false, fmt.Errorf("production: get run: %w", err)
	}
	return run, true, nil
}

func (r *Repository) ListRunsForOrder(ctx context.Context, orderID int64) ([]Run, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+runColumns+` FROM production_runs WHERE order_id = $1 ORDER BY started_at`, orderID)
	if err != nil {
		return nil, fmt.Errorf("production: list runs: %w", err)
	}
	defer rows.Close()
	var out []Run
	for rows.Next() {
		var run Run
		if err := rows.Scan(&run.ID, &run.Status, &run.StartedAt, &run.Notes, &run.OperatorID, &run.OrderID); err != nil {
			return nil, err
		}
		out = append(out, run)
	}
	return out, rows.Err()
}

func (r *Repository) CreateRun(ctx context.Context, run Run) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `
		INSERT INTO production_runs (status, started_at, notes, operator_id, order_id)
		VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		run.Status, run.StartedAt, run.Notes, run.OperatorID, run.OrderID).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("production: create run: %w", err)
	}
	return id, nil
}

func (r *Repository) UpdateRun(ctx context.Context, run Run) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE production_runs SET status = $2, notes = $3 WHERE id = $1`,
		run.ID, run.Status, run.Notes)
	if err != nil {
		return fmt.Errorf("production: update run: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: production run %d", ErrNotFound, run.ID)
	}
	return nil
}
