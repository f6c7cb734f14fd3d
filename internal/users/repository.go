package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository persists users in Postgres.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a users repository over a pgx pool.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const userColumns = `id, first_name, last_name, employee_number, password_hash, role, active`

func (r *Repository) ListUsers(ctx context.Context) ([]User, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY last_name, first_name`)
	if err != nil {
		return nil, fmt.Errorf("users: list: %w", err)
	}
	defer rows.Close()
	var out []User
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.FirstName, &u.LastName, &u.EmployeeNumber, &u.PasswordHash, &u.Role, &u.Active); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (r *Repository) GetUser(ctx context.Context, id int64) (User, bool, error) {
	var u User
	err := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id).
		Scan(&u.ID, &u.FirstName, &u.LastName, &u.EmployeeNumber, &u.PasswordHash, &u.Role, &u.Active)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, false, nil
		}
		return User{}, false, fmt.Errorf("users: get: %w", err)
	}
	return u, true, nil
}

func (r *Repository) GetByEmployeeNumber(ctx context.Context, employeeNumber int) (User, bool, error) {
	var u User
	err := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE employee_number = $1`, employeeNumber).
		Scan(&u.ID, &u.FirstName, &u.LastName, &u.EmployeeNumber, &u.PasswordHash, &u.Role, &u.Active)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, false, nil
		}
		return User{}, false, fmt.Errorf("users: get by employee number: %w", err)
	}
	return u, true, nil
}

func (r *Repository) CreateUser(ctx context.Context, u User) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `
		INSERT INTO users (first_name, last_name, employee_number, password_hash, role, active)
		VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`,
		u.FirstName, u.LastName, u.EmployeeNumber, u.PasswordHash, u.Role, u.Active).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("users: create: %w", err)
	}
	return id, nil
}

func (r *Repository) UpdateUser(ctx context.Context, u User) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE users
		SET first_name = $2, last_name = $3, password_hash = $4, role = $5, active = $6
		WHERE id = $1`,
		u.ID, u.FirstName, u.LastName, u.PasswordHash, u.Role, u.Active)
	if err != nil {
		return fmt.Errorf("users: update: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: user %d", ErrNotFound, u.ID)
	}
	return nil
}
