package suppliers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/logiscontrol/logiscontrol/internal/masterdata/shared"
)

// Repository is the pgx implementation of RepositoryPort.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository builds Repository instance.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) List(ctx context.Context, filters shared.ListFilters) ([]Supplier, int, error) {
	where := ""
	args := []any{}
	if filters.Search != "" {
		where = ` WHERE name ILIKE $1 OR email ILIKE $1`
		args = append(args, "%"+filters.Search+"%")
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM suppliers`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count suppliers: %w", err)
	}

	query := `SELECT id, name, email, phone, address, created_at, updated_at FROM suppliers` + where +
		` ORDER BY ` + filters.OrderBy("name", "created_at") +
		fmt.Sprintf(` LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
	args = append(args, filters.Limit, filters.Offset())

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list suppliers: %w", err)
	}
	defer rows.Close()

	var out []Supplier
	for rows.Next() {
		var s Supplier
		if err := rows.Scan(&s.ID, &s.Name, &s.Email, &s.Phone, &s.Address, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, 0, err
		}
		out = append(out, s)
	}
	return out, total, rows.Err()
}

func (r *Repository) Get(ctx context.Context, id int64) (Supplier, bool, error) {
	var s Supplier
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, email, phone, address, created_at, updated_at FROM suppliers WHERE id = $1`, id,
	).Scan(&s.ID, &s.Name, &s.Email, &s.Phone, &s.Address, &s.CreatedAt, &s.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Supplier{}, false, nil
	}
	if err != nil {
		return Supplier{}, false, fmt.Errorf("get supplier %d: %w", id, err)
	}
	return s, true, nil
}

func (r *Repository) Create(ctx context.Context, s Supplier) (int64, error) {
	var id int64
	now := time.Now().UTC()
	err := r.pool.QueryRow(ctx,
		`INSERT INTO suppliers (name, email, phone, address, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $5) RETURNING id`,
		s.Name, s.Email, s.Phone, s.Address, now,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("create supplier: %w", err)
	}
	return id, nil
}

func (r *Repository) Update(ctx context.Context, s Supplier) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE suppliers SET name = $1, email = $2, phone = $3, address = $4, updated_at = $5 WHERE id = $6`,
		s.Name, s.Email, s.Phone, s.Address, time.Now().UTC(), s.ID,
	)
	if err != nil {
		return fmt.Errorf("update supplier %d: %w", s.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: supplier %d", ErrNotFound, s.ID)
	}
	return nil
}
