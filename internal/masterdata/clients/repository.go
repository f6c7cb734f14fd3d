package clients

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

const clientColumns = `id, name, tax_number, address, created_at, updated_at`

func (r *Repository) List(ctx context.Context, filters shared.ListFilters) ([]Client, int, error) {
	where := ""
	args := []any{}
	if filters.Search != "" {
		where = ` WHERE name ILIKE $1`
		args = append(args, "%"+filters.Search+"%")
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM clients`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count clients: %w", err)
	}

	query := `SELECT ` + clientColumns + ` FROM clients` + where +
		` ORDER BY ` + filters.OrderBy("name", "tax_number", "created_at") +
		fmt.Sprintf(` LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
	args = append(args, filters.Limit, filters.Offset())

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list clients: %w", err)
	}
	defer rows.Close()

	var out []Client
	for rows.Next() {
		var c Client
		if err := rows.Scan(&c.ID, &c.Name, &c.TaxNumber, &c.Address, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, 0, err
		}
		out = append(out, c)
	}
	return out, total, rows.Err()
}

func (r *Repository) Get(ctx context.Context, id int64) (Client, bool, error) {
	return r.scanOne(ctx, `SELECT `+clientColumns+` FROM clients WHERE id = $1`, id)
}

func (r *Repository) GetByTaxNumber(ctx context.Context, taxNumber int64) (Client, bool, error) {
	return r.scanOne(ctx, `SELECT `+clientColumns+` FROM clients WHERE tax_number = $1`, taxNumber)
}

func (r *Repository) scanOne(ctx context.Context, query string, arg any) (Client, bool, error) {
	var c Client
	err := r.pool.QueryRow(ctx, query, arg).Scan(&c.ID, &c.Name, &c.TaxNumber, &c.Address, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Client{}, false, nil
	}
	if err != nil {
		return Client{}, false, fmt.Errorf("get client: %w", err)
	}
	return c, true, nil
}

func (r *Repository) Create(ctx context.Context, c Client) (int64, error) {
	var id int64
	now := time.Now().UTC()
	err := r.pool.QueryRow(ctx,
		`INSERT INTO clients (name, tax_number, address, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $4) RETURNING id`,
		c.Name, c.TaxNumber, c.Address, now,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("create client: %w", err)
	}
	return id, nil
}

func (r *Repository) Update(ctx context.Context, c Client) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE clients SET name = $1, tax_number = $2, address = $3, updated_at = $4 WHERE id = $5`,
		c.Name, c.TaxNumber, c.Address, time.Now().UTC(), c.ID,
	)
	if err != nil {
		return fmt.Errorf("update client %d: %w", c.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: client %d", ErrNotFound, c.ID)
	}
	return nil
}
