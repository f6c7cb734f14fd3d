package maintenance

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository persists maintenance entities in Postgres.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a maintenance repository over a pgx pool.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) ListMachines(ctx context.Context) ([]Machine, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, type, production_line FROM machines ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("maintenance: list machines: %w", err)
	}
	defer rows.Close()
	var out []Machine
	for rows.Next() {
		var m Machine
		if err := rows.Scan(&m.ID, &m.Name, &m.Type, &m.ProductionLine); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *Repository) GetMachine(ctx context.Context, id int64) (Machine, bool, error) {
	var m Machine
	err := r.pool.QueryRow(ctx, `SELECT id, name, type, production_line FROM machines WHERE id = $1`, id).
		Scan(&m.ID, &m.Name, &m.Type, &m.ProductionLine)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Machine{}, false, nil
		}
		return Machine{}, false, fmt.Errorf("maintenance: get machine: %w", err)
	}
	return m, true, nil
}

func (r *Repository) CreateMachine(ctx context.Context, m Machine) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `
		INSERT INTO machines (name, type, production_line) VALUES ($1, $2, $3) RETURNING id`,
		m.Name, m.Type, m.ProductionLine).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("maintenance: create machine: %w", err)
	}
	return id, nil
}

const requestColumns = `id, description, status, opened_at, closed_at, machine_id, reporter_id`

func (r *Repository) ListRequests(ctx context.Context, state string) ([]Request, error) {
	query := `SELECT ` + requestColumns + ` FROM maintenance_requests`
	args := []interface{}{}
	if state != "" {
		query += ` WHERE status = $1`
		args = append(args, state)
	}
	query += ` ORDER BY opened_at DESC`
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("maintenance: list requests: %w", err)
	}
	defer rows.Close()
	return scanRequests(rows)
}

func (r *Repository) ListOverdue(ctx context.Context, before time.Time) ([]Request, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+requestColumns+` FROM maintenance_requests
		WHERE status <> $1 AND opened_at < $2 ORDER BY opened_at`, RequestDone, before)
	if err != nil {
		return nil, fmt.Errorf("maintenance: list overdue: %w", err)
	}
	defer rows.Close()
	return scanRequests(rows)
}

func scanRequests(rows pgx.Rows) ([]Request, error) {
	var out []Request
	for rows.Next() {
		var req Request
		if err := rows.Scan(&req.ID, &req.Description, &req.Status, &req.OpenedAt, &req.ClosedAt, &req.MachineID, &req.ReporterID); err != nil {
			return nil, err
		}
		out = append(out, req)
	}
	return out, rows.Err()
}

func (r *Repository) GetRequest(ctx context.Context, id int64) (Request, bool, error) {
	var req Request
	err := r.pool.QueryRow(ctx, `SELECT `+requestColumns+` FROM maintenance_requests WHERE id = $1`, id).
		Scan(&req.ID, &req.Description, &req.Status, &req.OpenedAt, &req.ClosedAt, &req.MachineID, &req.ReporterID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Request{}, false, nil
		}
		return Request{}, false, fmt.Errorf("maintenance: get request: %w", err)
	}
	return req, true, nil
}

func (r *Repository) CreateRequest(ctx context.Context, req Request) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `
		INSERT INTO maintenance_requests (description, status, opened_at, closed_at, machine_id, reporter_id)
		VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`,
		req.Description, req.Status, req.OpenedAt, req.ClosedAt, req.MachineID, req.ReporterID).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("maintenance: create request: %w", err)
	}
	return id, nil
}

func (r *Repository) UpdateRequest(ctx context.Context, req Request) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE maintenance_requests
		SET description = $2, status = $3, closed_at = $4 WHERE id = $1`,
		req.ID, req.Description, req.Status, req.ClosedAt)
	if err != nil {
		return fmt.Errorf("maintenance: update request: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: maintenance request %d", ErrNotFound, req.ID)
	}
	return nil
}

const recordColumns = `id, description, status, created_at, request_id, technician_id`

func (r *Repository) GetRecord(ctx context.Context, id int64) (Record, bool, error) {
	var rec Record
	err := r.pool.QueryRow(ctx, `SELECT `+recordColumns+` FROM maintenance_records WHERE id = $1`, id).
		Scan(&rec.ID, &rec.Description, &rec.Status, &rec.CreatedAt, &rec.RequestID, &rec.TechnicianID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Record{}, false, nil
		}
		return Record{}, false, fmt.Errorf("maintenance: get record: %w", err)
	}
	return rec, true, nil
}

func (r *Repository) ListRecordsForRequest(ctx context.Context, requestID int64) ([]Record, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+recordColumns+` FROM maintenance_records WHERE request_id = $1 ORDER BY created_at`, requestID)
	if err != nil {
		return nil, fmt.Errorf("maintenance: list records: %w", err)
	}
	defer rows.Close()
	var out []Record
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.ID, &rec.Description, &rec.Status, &rec.CreatedAt, &rec.RequestID, &rec.TechnicianID); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (r *Repository) CreateRecord(ctx context.Context, rec Record) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `
		INSERT INTO maintenance_records (description, status, created_at, request_id, technician_id)
		VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		rec.Description, rec.Status, rec.CreatedAt, rec.RequestID, rec.TechnicianID).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("maintenance: create record: %w", err)
	}
	return id, nil
}

func (r *Repository) UpdateRecord(ctx context.Context, rec Record) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE maintenance_records SET description = $2, status = $3 WHERE id = $1`,
		rec.ID, rec.Description, rec.Status)
	if err != nil {
		return fmt.Errorf("maintenance: update record: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: maintenance record %d", ErrNotFound, rec.ID)
	}
	return nil
}
