package purchasing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/logiscontrol/logiscontrol/internal/platform/db"
)

type dbtx interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// Repository persists the purchasing aggregates in Postgres.
type Repository struct {
	db   dbtx
	pool *pgxpool.Pool
}

// NewRepository constructs a purchasing repository over a pgx pool.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{db: pool, pool: pool}
}

// WithTx runs fn against a transactional view of the repository.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &Repository{db: tx, pool: r.pool})
	})
}

func (r *Repository) GetRequest(ctx context.Context, id int64) (PurchaseRequest, []RequestLine, error) {
	var req PurchaseRequest
	err := r.db.QueryRow(ctx, `
		SELECT id, description, status, opened_at, closed_at, requester_id
		FROM purchase_requests WHERE id = $1`, id).
		Scan(&req.ID, &req.Description, &req.Status, &req.OpenedAt, &req.ClosedAt, &req.RequesterID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return PurchaseRequest{}, nil, fmt.Errorf("%w: purchase request %d", ErrNotFound, id)
		}
		return PurchaseRequest{}, nil, fmt.Errorf("purchasing: get request: %w", err)
	}
	rows, err := r.db.Query(ctx, `
		SELECT id, request_id, material_id, quantity
		FROM purchase_request_lines WHERE request_id = $1 ORDER BY id`, id)
	if err != nil {
		return PurchaseRequest{}, nil, fmt.Errorf("purchasing: request lines: %w", err)
	}
	defer rows.Close()
	var lines []RequestLine
	for rows.Next() {
		var l RequestLine
		if err := rows.Scan(&l.ID, &l.RequestID, &l.MaterialID, &l.Quantity); err != nil {
			return PurchaseRequest{}, nil, err
		}
		lines = append(lines, l)
	}
	return req, lines, rows.Err()
}

func (r *Repository) ListRequests(ctx context.Context, state string) ([]PurchaseRequest, error) {
	query := `
		SELECT id, description, status, opened_at, closed_at, requester_id
		FROM purchase_requests`
	args := []interface{}{}
	if state != "" {
		query += ` WHERE status = $1`
		args = append(args, state)
	}
	query += ` ORDER BY opened_at DESC, id DESC`
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("purchasing: list requests: %w", err)
	}
	defer rows.Close()
	var out []PurchaseRequest
	for rows.Next() {
		var req PurchaseRequest
		if err := rows.Scan(&req.ID, &req.Description, &req.Status, &req.OpenedAt, &req.ClosedAt, &req.RequesterID); err != nil {
			return nil, err
		}
		out = append(out, req)
	}
	return out, rows.Err()
}

func (r *Repository) GetQuotation(ctx context.Context, id int64) (Quotation, error) {
	var q Quotation
	err := r.db.QueryRow(ctx, `
		SELECT id, description, created_at, status, supplier_id, access_token, request_id
		FROM quotations WHERE id = $1`, id).
		Scan(&q.ID, &q.Description, &q.CreatedAt, &q.Status, &q.SupplierID, &q.AccessToken, &q.RequestID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Quotation{}, fmt.Errorf("%w: quotation %d", ErrNotFound, id)
		}
		return Quotation{}, fmt.Errorf("purchasing: get quotation: %w", err)
	}
	return q, nil
}

func (r *Repository) QuotationForRequest(ctx context.Context, requestID int64) (Quotation, bool, error) {
	var q Quotation
	err := r.db.QueryRow(ctx, `
		SELECT id, description, created_at, status, supplier_id, access_token, request_id
		FROM quotations WHERE request_id = $1 ORDER BY created_at DESC LIMIT 1`, requestID).
		Scan(&q.ID, &q.Description, &q.CreatedAt, &q.Status, &q.SupplierID, &q.AccessToken, &q.RequestID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Quotation{}, false, nil
		}
		return Quotation{}, false, fmt.Errorf("purchasing: quotation for request: %w", err)
	}
	return q, true, nil
}

func (r *Repository) ListBudgets(ctx context.Context, quotationID int64) ([]Budget, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, created_at, status, quotation_id
		FROM budgets WHERE quotation_id = $1 ORDER BY id`, quotationID)
	if err != nil {
		return nil, fmt.Errorf("purchasing: list budgets: %w", err)
	}
	defer rows.Close()
	var out []Budget
	for rows.Next() {
		var b Budget
		if err := rows.Scan(&b.ID, &b.CreatedAt, &b.Status, &b.QuotationID); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *Repository) GetBudget(ctx context.Context, id int64) (Budget, error) {
	var b Budget
	err := r.db.QueryRow(ctx, `
		SELECT id, created_at, status, quotation_id
		FROM budgets WHERE id = $1`, id).
		Scan(&b.ID, &b.CreatedAt, &b.Status, &b.QuotationID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Budget{}, fmt.Errorf("%w: budget %d", ErrNotFound, id)
		}
		return Budget{}, fmt.Errorf("purchasing: get budget: %w", err)
	}
	return b, nil
}

func (r *Repository) ListBudgetLines(ctx context.Context, budgetID int64) ([]BudgetLine, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, budget_id, material_id, quantity, unit_price, lead_time_days
		FROM budget_lines WHERE budget_id = $1 ORDER BY id`, budgetID)
	if err != nil {
		return nil, fmt.Errorf("purchasing: budget lines: %w", err)
	}
	defer rows.Close()
	var out []BudgetLine
	for rows.Next() {
		var l BudgetLine
		if err := rows.Scan(&l.ID, &l.BudgetID, &l.MaterialID, &l.Quantity, &l.UnitPrice, &l.LeadTimeDays); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (r *Repository) GetNote(ctx context.Context, id int64) (DeliveryNote, []DeliveryLine, error) {
	var n DeliveryNote
	err := r.db.QueryRow(ctx, `
		SELECT id, issued_at, status, total_value, budget_id
		FROM delivery_notes WHERE id = $1`, id).
		Scan(&n.ID, &n.IssuedAt, &n.Status, &n.TotalValue, &n.BudgetID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return DeliveryNote{}, nil, fmt.Errorf("%w: delivery note %d", ErrNotFound, id)
		}
		return DeliveryNote{}, nil, fmt.Errorf("purchasing: get note: %w", err)
	}
	rows, err := r.db.Query(ctx, `
		SELECT id, note_id, material_id, quantity, unit_price
		FROM delivery_note_lines WHERE note_id = $1 ORDER BY id`, id)
	if err != nil {
		return DeliveryNote{}, nil, fmt.Errorf("purchasing: note lines: %w", err)
	}
	defer rows.Close()
	var lines []DeliveryLine
	for rows.Next() {
		var l DeliveryLine
		if err := rows.Scan(&l.ID, &l.NoteID, &l.MaterialID, &l.Quantity, &l.UnitPrice); err != nil {
			return DeliveryNote{}, nil, err
		}
		lines = append(lines, l)
	}
	return n, lines, rows.Err()
}

func (r *Repository) ListNotes(ctx context.Context, state string) ([]DeliveryNote, error) {
	query := `
		SELECT id, issued_at, status, total_value, budget_id
		FROM delivery_notes`
	args := []interface{}{}
	if state != "" {
		query += ` WHERE status = $1`
		args = append(args, state)
	}
	query += ` ORDER BY issued_at DESC, id DESC`
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("purchasing: list notes: %w", err)
	}
	defer rows.Close()
	var out []DeliveryNote
	for rows.Next() {
		var n DeliveryNote
		if err := rows.Scan(&n.ID, &n.IssuedAt, &n.Status, &n.TotalValue, &n.BudgetID); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func (r *Repository) ListNotesForBudget(ctx context.Context, budgetID int64) ([]DeliveryNote, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, issued_at, status, total_value, budget_id
		FROM delivery_notes WHERE budget_id = $1 ORDER BY id`, budgetID)
	if err != nil {
		return nil, fmt.Errorf("purchasing: notes for budget: %w", err)
	}
	defer rows.Close()
	var out []DeliveryNote
	for rows.Next() {
		var n DeliveryNote
		if err := rows.Scan(&n.ID, &n.IssuedAt, &n.Status, &n.TotalValue, &n.BudgetID); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func (r *Repository) CreateRequest(ctx context.Context, req PurchaseRequest) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx, `
		INSERT INTO purchase_requests (description, status, opened_at, closed_at, requester_id)
		VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		req.Description, req.Status, req.OpenedAt, req.ClosedAt, req.RequesterID).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("purchasing: create request: %w", err)
	}
	return id, nil
}

func (r *Repository) InsertRequestLine(ctx context.Context, line RequestLine) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO purchase_request_lines (request_id, material_id, quantity)
		VALUES ($1, $2, $3)`, line.RequestID, line.MaterialID, line.Quantity)
	if err != nil {
		return fmt.Errorf("purchasing: insert request line: %w", err)
	}
	return nil
}

func (r *Repository) UpdateRequestStatus(ctx context.Context, id int64, status RequestState, closedAt *time.Time) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE purchase_requests SET status = $2, closed_at = COALESCE($3, closed_at)
		WHERE id = $1`, id, status, closedAt)
	if err != nil {
		return fmt.Errorf("purchasing: update request status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: purchase request %d", ErrNotFound, id)
	}
	return nil
}

func (r *Repository) CreateQuotation(ctx context.Context, q Quotation) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx, `
		INSERT INTO quotations (description, created_at, status, supplier_id, access_token, request_id)
		VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`,
		q.Description, q.CreatedAt, q.Status, q.SupplierID, q.AccessToken, q.RequestID).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("purchasing: create quotation: %w", err)
	}
	return id, nil
}

func (r *Repository) UpdateQuotationStatus(ctx context.Context, id int64, status QuotationState) error {
	tag, err := r.db.Exec(ctx, `UPDATE quotations SET status = $2 WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("purchasing: update quotation status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: quotation %d", ErrNotFound, id)
	}
	return nil
}

func (r *Repository) CreateBudget(ctx context.Context, b Budget) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx, `
		INSERT INTO budgets (created_at, status, quotation_id)
		VALUES ($1, $2, $3) RETURNING id`, b.CreatedAt, b.Status, b.QuotationID).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("purchasing: create budget: %w", err)
	}
	return id, nil
}

func (r *Repository) InsertBudgetLine(ctx context.Context, line BudgetLine) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO budget_lines (budget_id, material_id, quantity, unit_price, lead_time_days)
		VALUES ($1, $2, $3, $4, $5)`,
		line.BudgetID, line.MaterialID, line.Quantity, line.UnitPrice, line.LeadTimeDays)
	if err != nil {
		return fmt.Errorf("purchasing: insert budget line: %w", err)
	}
	return nil
}

func (r *Repository) UpdateBudgetStatus(ctx context.Context, id int64, status BudgetState) error {
	tag, err := r.db.Exec(ctx, `UPDATE budgets SET status = $2 WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("purchasing: update budget status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: budget %d", ErrNotFound, id)
	}
	return nil
}

func (r *Repository) CreateNote(ctx context.Context, n DeliveryNote) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx, `
		INSERT INTO delivery_notes (issued_at, status, total_value, budget_id)
		VALUES ($1, $2, $3, $4) RETURNING id`, n.IssuedAt, n.Status, n.TotalValue, n.BudgetID).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("purchasing: create note: %w", err)
	}
	return id, nil
}

func (r *Repository) InsertNoteLine(ctx context.Context, line DeliveryLine) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO delivery_note_lines (note_id, material_id, quantity, unit_price)
		VALUES ($1, $2, $3, $4)`, line.NoteID, line.MaterialID, line.Quantity, line.UnitPrice)
	if err != nil {
		return fmt.Errorf("purchasing: insert note line: %w", err)
	}
	return nil
}

func (r *Repository) UpdateNoteStatus(ctx context.Context, id int64, status NoteState) error {
	tag, err := r.db.Exec(ctx, `UPDATE delivery_notes SET status = $2 WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("purchasing: update note status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: delivery note %d", ErrNotFound, id)
	}
	return nil
}

func (r *Repository) IncrementMaterialQuantity(ctx context.Context, materialID int64, delta int64) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE raw_materials SET stock_quantity = stock_quantity + $2 WHERE id = $1`,
		materialID, delta)
	if err != nil {
		return fmt.Errorf("purchasing: increment material stock: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: raw material %d", ErrNotFound, materialID)
	}
	return nil
}
