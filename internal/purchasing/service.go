package purchasing

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/logiscontrol/logiscontrol/internal/shared"
)

// RepositoryPort describes repository operations used by Service.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	GetRequest(ctx context.Context, id int64) (PurchaseRequest, []RequestLine, error)
	ListRequests(ctx context.Context, state string) ([]PurchaseRequest, error)
	GetQuotation(ctx context.Context, id int64) (Quotation, error)
	QuotationForRequest(ctx context.Context, requestID int64) (Quotation, bool, error)
	ListBudgets(ctx context.Context, quotationID int64) ([]Budget, error)
	GetBudget(ctx context.Context, id int64) (Budget, error)
	ListBudgetLines(ctx context.Context, budgetID int64) ([]BudgetLine, error)
	GetNote(ctx context.Context, id int64) (DeliveryNote, []DeliveryLine, error)
	ListNotes(ctx context.Context, state string) ([]DeliveryNote, error)
	ListNotesForBudget(ctx context.Context, budgetID int64) ([]DeliveryNote, error)
}

// TxRepository exposes mutations executed inside a transaction.
type TxRepository interface {
	CreateRequest(ctx context.Context, req PurchaseRequest) (int64, error)
	InsertRequestLine(ctx context.Context, line RequestLine) error
	UpdateRequestStatus(ctx context.Context, id int64, status RequestState, closedAt *time.Time) error
	CreateQuotation(ctx context.Context, q Quotation) (int64, error)
	UpdateQuotationStatus(ctx context.Context, id int64, status QuotationState) error
	CreateBudget(ctx context.Context, b Budget) (int64, error)
	InsertBudgetLine(ctx context.Context, line BudgetLine) error
	UpdateBudgetStatus(ctx context.Context, id int64, status BudgetState) error
	CreateNote(ctx context.Context, n DeliveryNote) (int64, error)
	InsertNoteLine(ctx context.Context, line DeliveryLine) error
	UpdateNoteStatus(ctx context.Context, id int64, status NoteState) error
	IncrementMaterialQuantity(ctx context.Context, materialID int64, delta int64) error
}

// SupplierInfo is the supplier projection purchasing needs.
type SupplierInfo struct {
	ID    int64
	Name  string
	Email string
}

// SupplierDirectory resolves suppliers from master data.
type SupplierDirectory interface {
	Get(ctx context.Context, id int64) (SupplierInfo, bool, error)
}

// RequesterDirectory resolves requester display names.
type RequesterDirectory interface {
	DisplayName(ctx context.Context, id int64) (string, error)
}

// MaterialCatalog exposes the raw material lookups purchasing needs.
type MaterialCatalog interface {
	MissingIDs(ctx context.Context, ids []int64) ([]int64, error)
	Names(ctx context.Context, ids []int64) (map[int64]string, error)
}

// Notifier delivers outbound messages. TryNotify is best effort and
// reports whether delivery succeeded.
type Notifier interface {
	Notify(ctx context.Context, to, subject, body string) error
	TryNotify(ctx context.Context, to, subject, body string) bool
}

// AuditTrail records workflow state transitions. May be nil.
type AuditTrail interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// ServiceConfig carries purchasing tunables.
type ServiceConfig struct {
	// PortalBaseURL prefixes supplier quotation links in outbound mail.
	PortalBaseURL string
}

// Service orchestrates the procurement workflow.
type Service struct {
	repo       RepositoryPort
	suppliers  SupplierDirectory
	requesters RequesterDirectory
	materials  MaterialCatalog
	notifier   Notifier
	audit      AuditTrail
	logger     *slog.Logger
	cfg        ServiceConfig
}

// NewService constructs purchasing service.
func NewService(repo RepositoryPort, suppliers SupplierDirectory, requesters RequesterDirectory, materials MaterialCatalog, notifier Notifier, audit AuditTrail, logger *slog.Logger, cfg ServiceConfig) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, suppliers: suppliers, requesters: requesters, materials: materials, notifier: notifier, audit: audit, logger: logger, cfg: cfg}
}

// auditRecord writes a trail entry. Failures are logged, never surfaced;
// the workflow state change has already committed.
func (s *Service) auditRecord(ctx context.Context, actorID int64, action, entity string, entityID int64, meta map[string]any) {
	if s.audit == nil {
		return
	}
	err := s.audit.Record(ctx, shared.AuditLog{
		ActorID:  actorID,
		Action:   action,
		Entity:   entity,
		EntityID: strconv.FormatInt(entityID, 10),
		Meta:     meta,
	})
	if err != nil {
		s.logger.Warn("audit record", slog.String("action", action), slog.Any("error", err))
	}
}

// CreateRequest persists a purchase request header and lines.
func (s *Service) CreateRequest(ctx context.Context, input CreateRequestInput) (PurchaseRequest, error) {
	input.Description = strings.TrimSpace(input.Description)
	if input.Description == "" || input.RequesterID <= 0 {
		return PurchaseRequest{}, ErrValidation
	}
	if len(input.Lines) == 0 {
		return PurchaseRequest{}, fmt.Errorf("%w: minimal 1 line", ErrValidation)
	}
	ids := make([]int64, 0, len(input.Lines))
	for _, line := range input.Lines {
		if line.MaterialID <= 0 || line.Quantity <= 0 {
			return PurchaseRequest{}, ErrValidation
		}
		ids = append(ids, line.MaterialID)
	}
	missing, err := s.materials.MissingIDs(ctx, ids)
	if err != nil {
		return PurchaseRequest{}, err
	}
	if len(missing) > 0 {
		return PurchaseRequest{}, fmt.Errorf("%w: unknown materials %v", ErrValidation, missing)
	}
	req := PurchaseRequest{Description: input.Description, Status: RequestOpen, OpenedAt: time.Now().UTC(), RequesterID: input.RequesterID}
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		id, err := tx.CreateRequest(ctx, req)
		if err != nil {
			return err
		}
		for _, line := range input.Lines {
			if err := tx.InsertRequestLine(ctx, RequestLine{RequestID: id, MaterialID: line.MaterialID, Quantity: line.Quantity}); err != nil {
				return err
			}
		}
		req.ID = id
		return nil
	})
	if err != nil {
		return PurchaseRequest{}, err
	}
	s.auditRecord(ctx, input.RequesterID, "purchase_request.created", "purchase_request", req.ID, map[string]any{"lines": len(input.Lines)})
	return req, nil
}

// ListRequests returns request summaries, optionally filtered by state.
// Unknown state values return the unfiltered set.
func (s *Service) ListRequests(ctx context.Context, state string) ([]RequestSummary, error) {
	if !RequestState(state).Known() {
		state = ""
	}
	reqs, err := s.repo.ListRequests(ctx, state)
	if err != nil {
		return nil, err
	}
	out := make([]RequestSummary, 0, len(reqs))
	for _, r := range reqs {
		name, err := s.requesters.DisplayName(ctx, r.RequesterID)
		if err != nil {
			name = ""
		}
		out = append(out, RequestSummary{ID: r.ID, Description: r.Description, Status: string(r.Status), OpenedAt: r.OpenedAt, ClosedAt: r.ClosedAt, RequesterName: name})
	}
	return out, nil
}

// GetRequestDetail resolves a request with its lines and material names.
func (s *Service) GetRequestDetail(ctx context.Context, id int64) (RequestDetail, error) {
	if id <= 0 {
		return RequestDetail{}, ErrValidation
	}
	req, lines, err := s.repo.GetRequest(ctx, id)
	if err != nil {
		return RequestDetail{}, err
	}
	ids := make([]int64, 0, len(lines))
	for _, l := range lines {
		ids = append(ids, l.MaterialID)
	}
	names, err := s.materials.Names(ctx, ids)
	if err != nil {
		return RequestDetail{}, err
	}
	name, err := s.requesters.DisplayName(ctx, req.RequesterID)
	if err != nil {
		name = ""
	}
	detail := RequestDetail{ID: req.ID, Description: req.Description, Status: string(req.Status), OpenedAt: req.OpenedAt, ClosedAt: req.ClosedAt, RequesterName: name}
	for _, l := range lines {
		detail.Lines = append(detail.Lines, RequestLineDetail{MaterialID: l.MaterialID, MaterialName: names[l.MaterialID], Quantity: l.Quantity})
	}
	return detail, nil
}

// DispatchQuotation moves an open request into quotation and invites the
// supplier by email. The state change is committed before the invitation
// goes out; a failed send never rolls the request back.
func (s *Service) DispatchQuotation(ctx context.Context, requestID, supplierID int64) (DispatchResult, error) {
	if requestID <= 0 || supplierID <= 0 {
		return DispatchResult{}, ErrValidation
	}
	req, _, err := s.repo.GetRequest(ctx, requestID)
	if err != nil {
		return DispatchResult{}, err
	}
	if req.Status != RequestOpen {
		return DispatchResult{}, fmt.Errorf("%w: request %d is %s", ErrConflict, requestID, req.Status)
	}
	supplier, ok, err := s.suppliers.Get(ctx, supplierID)
	if err != nil {
		return DispatchResult{}, err
	}
	if !ok {
		return DispatchResult{}, fmt.Errorf("%w: supplier %d", ErrNotFound, supplierID)
	}
	token := generateAccessToken()
	q := Quotation{
		Description: fmt.Sprintf("Quotation for request #%d: %s", req.ID, req.Description),
		CreatedAt:   time.Now().UTC(),
		Status:      QuotationIssued,
		SupplierID:  supplier.ID,
		AccessToken: token,
		RequestID:   req.ID,
	}
	var quotationID int64
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		if err := tx.UpdateRequestStatus(ctx, req.ID, RequestBeingQuoted, nil); err != nil {
			return err
		}
		id, err := tx.CreateQuotation(ctx, q)
		if err != nil {
			return err
		}
		quotationID = id
		return nil
	})
	if err != nil {
		return DispatchResult{}, err
	}
	s.auditRecord(ctx, 0, "quotation.dispatched", "quotation", quotationID, map[string]any{"request_id": req.ID, "supplier_id": supplier.ID})
	if supplier.Email != "" {
		link := fmt.Sprintf("%s/quotations/%d/supplier?token=%s", strings.TrimRight(s.cfg.PortalBaseURL, "/"), quotationID, token)
		body := fmt.Sprintf("Hello %s,\n\nA new quotation request is available: %s\n\nReview and submit your budget here:\n%s\n", supplier.Name, req.Description, link)
		if !s.notifier.TryNotify(ctx, supplier.Email, "New quotation request", body) {
			s.logger.Warn("quotation invitation not delivered", slog.Int64("quotation_id", quotationID), slog.Int64("supplier_id", supplier.ID))
		}
	}
	return DispatchResult{QuotationID: quotationID, Token: token}, nil
}

// GetQuotationForSupplier returns the supplier view of a quotation after
// validating the access token. Token compare trims whitespace and ignores
// case.
func (s *Service) GetQuotationForSupplier(ctx context.Context, id int64, token string) (QuotationDetail, error) {
	if id <= 0 {
		return QuotationDetail{}, ErrValidation
	}
	q, err := s.repo.GetQuotation(ctx, id)
	if err != nil {
		return QuotationDetail{}, err
	}
	if !tokenMatches(q.AccessToken, token) {
		return QuotationDetail{}, fmt.Errorf("%w: invalid access token", ErrUnauthorized)
	}
	_, lines, err := s.repo.GetRequest(ctx, q.RequestID)
	if err != nil {
		return QuotationDetail{}, err
	}
	header, err := s.quotationHeader(ctx, q)
	if err != nil {
		return QuotationDetail{}, err
	}
	ids := make([]int64, 0, len(lines))
	for _, l := range lines {
		ids = append(ids, l.MaterialID)
	}
	names, err := s.materials.Names(ctx, ids)
	if err != nil {
		return QuotationDetail{}, err
	}
	detail := QuotationDetail{Header: header}
	for _, l := range lines {
		detail.Items = append(detail.Items, QuotationItem{MaterialID: l.MaterialID, MaterialName: names[l.MaterialID], Quantity: l.Quantity})
	}
	return detail, nil
}

// GetQuotationDetail returns the back-office view of a quotation with its
// budgets and priced lines.
func (s *Service) GetQuotationDetail(ctx context.Context, id int64) (QuotationDetail, error) {
	if id <= 0 {
		return QuotationDetail{}, ErrValidation
	}
	q, err := s.repo.GetQuotation(ctx, id)
	if err != nil {
		return QuotationDetail{}, err
	}
	header, err := s.quotationHeader(ctx, q)
	if err != nil {
		return QuotationDetail{}, err
	}
	budgets, err := s.repo.ListBudgets(ctx, q.ID)
	if err != nil {
		return QuotationDetail{}, err
	}
	detail := QuotationDetail{Header: header}
	for _, b := range budgets {
		detail.Budgets = append(detail.Budgets, BudgetSummary{ID: b.ID, QuotationID: b.QuotationID, CreatedAt: b.CreatedAt, Status: string(b.Status)})
		lines, err := s.repo.ListBudgetLines(ctx, b.ID)
		if err != nil {
			return QuotationDetail{}, err
		}
		ids := make([]int64, 0, len(lines))
		for _, l := range lines {
			ids = append(ids, l.MaterialID)
		}
		names, err := s.materials.Names(ctx, ids)
		if err != nil {
			return QuotationDetail{}, err
		}
		for _, l := range lines {
			detail.Items = append(detail.Items, QuotationItem{MaterialID: l.MaterialID, MaterialName: names[l.MaterialID], Quantity: l.Quantity, UnitPrice: l.UnitPrice, LeadTimeDays: l.LeadTimeDays})
		}
	}
	return detail, nil
}

// QuotationForRequest finds the quotation dispatched for a request, if any.
func (s *Service) QuotationForRequest(ctx context.Context, requestID int64) (Quotation, bool, error) {
	if requestID <= 0 {
		return Quotation{}, false, ErrValidation
	}
	return s.repo.QuotationForRequest(ctx, requestID)
}

// AddBudgetLine appends a priced line to the quotation's open budget,
// creating the budget on first use. The quotation and its request advance
// to their has-budgets states.
func (s *Service) AddBudgetLine(ctx context.Context, quotationID int64, input BudgetLineInput) (Budget, error) {
	if quotationID <= 0 || input.MaterialID <= 0 || input.Quantity <= 0 || input.UnitPrice < 0 || input.LeadTimeDays < 0 {
		return Budget{}, ErrValidation
	}
	q, err := s.repo.GetQuotation(ctx, quotationID)
	if err != nil {
		return Budget{}, err
	}
	if q.Status == QuotationFinalized {
		return Budget{}, fmt.Errorf("%w: quotation %d is finalized", ErrConflict, quotationID)
	}
	budgets, err := s.repo.ListBudgets(ctx, quotationID)
	if err != nil {
		return Budget{}, err
	}
	var open Budget
	for _, b := range budgets {
		if b.Status == BudgetResponded {
			open = b
		}
	}
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		if open.ID == 0 {
			b := Budget{CreatedAt: time.Now().UTC(), Status: BudgetResponded, QuotationID: quotationID}
			id, err := tx.CreateBudget(ctx, b)
			if err != nil {
				return err
			}
			b.ID = id
			open = b
		}
		if err := tx.InsertBudgetLine(ctx, BudgetLine{BudgetID: open.ID, MaterialID: input.MaterialID, Quantity: input.Quantity, UnitPrice: input.UnitPrice, LeadTimeDays: input.LeadTimeDays}); err != nil {
			return err
		}
		if q.Status != QuotationHasBudgets {
			if err := tx.UpdateQuotationStatus(ctx, quotationID, QuotationHasBudgets); err != nil {
				return err
			}
		}
		req, _, err := s.repo.GetRequest(ctx, q.RequestID)
		if err != nil {
			return err
		}
		if req.Status != RequestHasBudgets && req.Status.CanTransition(RequestHasBudgets) {
			if err := tx.UpdateRequestStatus(ctx, req.ID, RequestHasBudgets, nil); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return Budget{}, err
	}
	return open, nil
}

// AcceptBudget accepts one budget, rejects its responded siblings,
// finalizes the quotation, closes the request and opens a pending delivery
// note priced from the budget lines.
func (s *Service) AcceptBudget(ctx context.Context, budgetID int64) (DeliveryNote, error) {
	if budgetID <= 0 {
		return DeliveryNote{}, ErrValidation
	}
	budget, err := s.repo.GetBudget(ctx, budgetID)
	if err != nil {
		return DeliveryNote{}, err
	}
	if budget.Status != BudgetResponded {
		return DeliveryNote{}, fmt.Errorf("%w: budget %d is %s", ErrConflict, budgetID, budget.Status)
	}
	q, err := s.repo.GetQuotation(ctx, budget.QuotationID)
	if err != nil {
		return DeliveryNote{}, err
	}
	siblings, err := s.repo.ListBudgets(ctx, budget.QuotationID)
	if err != nil {
		return DeliveryNote{}, err
	}
	lines, err := s.repo.ListBudgetLines(ctx, budgetID)
	if err != nil {
		return DeliveryNote{}, err
	}
	if len(lines) == 0 {
		return DeliveryNote{}, fmt.Errorf("%w: budget %d has no lines", ErrConflict, budgetID)
	}
	var total float64
	for _, l := range lines {
		total += float64(l.Quantity) * l.UnitPrice
	}
	note := DeliveryNote{IssuedAt: time.Now().UTC(), Status: NotePending, TotalValue: total, BudgetID: budgetID}
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		if err := tx.UpdateBudgetStatus(ctx, budgetID, BudgetAccepted); err != nil {
			return err
		}
		for _, sib := range siblings {
			if sib.ID != budgetID && sib.Status == BudgetResponded {
				if err := tx.UpdateBudgetStatus(ctx, sib.ID, BudgetRejected); err != nil {
					return err
				}
			}
		}
		if err := tx.UpdateQuotationStatus(ctx, q.ID, QuotationFinalized); err != nil {
			return err
		}
		now := time.Now().UTC()
		if err := tx.UpdateRequestStatus(ctx, q.RequestID, RequestClosed, &now); err != nil {
			return err
		}
		id, err := tx.CreateNote(ctx, note)
		if err != nil {
			return err
		}
		for _, l := range lines {
			if err := tx.InsertNoteLine(ctx, DeliveryLine{NoteID: id, MaterialID: l.MaterialID, Quantity: l.Quantity, UnitPrice: l.UnitPrice}); err != nil {
				return err
			}
		}
		note.ID = id
		return nil
	})
	if err != nil {
		return DeliveryNote{}, err
	}
	s.auditRecord(ctx, 0, "budget.accepted", "budget", budgetID, map[string]any{"note_id": note.ID, "total": total})
	return note, nil
}

// ReceiveDelivery marks a pending note as received, increments stock for
// every line and moves the originating request to received.
func (s *Service) ReceiveDelivery(ctx context.Context, noteID int64) error {
	if noteID <= 0 {
		return ErrValidation
	}
	note, lines, err := s.repo.GetNote(ctx, noteID)
	if err != nil {
		return err
	}
	if note.Status != NotePending {
		return fmt.Errorf("%w: delivery note %d is %s", ErrConflict, noteID, note.Status)
	}
	budget, err := s.repo.GetBudget(ctx, note.BudgetID)
	if err != nil {
		return err
	}
	q, err := s.repo.GetQuotation(ctx, budget.QuotationID)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		if err := tx.UpdateNoteStatus(ctx, noteID, NoteReceived); err != nil {
			return err
		}
		for _, l := range lines {
			if err := tx.IncrementMaterialQuantity(ctx, l.MaterialID, l.Quantity); err != nil {
				return err
			}
		}
		return tx.UpdateRequestStatus(ctx, q.RequestID, RequestReceived, &now)
	})
	if err != nil {
		return err
	}
	s.auditRecord(ctx, 0, "delivery_note.received", "delivery_note", noteID, map[string]any{"request_id": q.RequestID})
	return nil
}

// DisputeDelivery marks a pending note as disputed. Already disputed or
// redelivered notes are rejected before anything mutates.
func (s *Service) DisputeDelivery(ctx context.Context, noteID int64) error {
	if noteID <= 0 {
		return ErrValidation
	}
	note, _, err := s.repo.GetNote(ctx, noteID)
	if err != nil {
		return err
	}
	if note.Status == NoteDisputed || note.Status == NoteRedelivered {
		return fmt.Errorf("%w: delivery note %d already disputed", ErrConflict, noteID)
	}
	if note.Status != NotePending {
		return fmt.Errorf("%w: delivery note %d is %s", ErrConflict, noteID, note.Status)
	}
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		return tx.UpdateNoteStatus(ctx, noteID, NoteDisputed)
	})
	if err != nil {
		return err
	}
	s.auditRecord(ctx, 0, "delivery_note.disputed", "delivery_note", noteID, nil)
	return nil
}

// NotifySupplierOfDispute emails the supplier behind a disputed note. The
// note must be disputed and its budget must not hold another pending note.
func (s *Service) NotifySupplierOfDispute(ctx context.Context, noteID int64) error {
	if noteID <= 0 {
		return ErrValidation
	}
	note, _, err := s.repo.GetNote(ctx, noteID)
	if err != nil {
		return err
	}
	if note.Status != NoteDisputed {
		return fmt.Errorf("%w: delivery note %d is %s", ErrConflict, noteID, note.Status)
	}
	others, err := s.repo.ListNotesForBudget(ctx, note.BudgetID)
	if err != nil {
		return err
	}
	for _, n := range others {
		if n.ID != note.ID && n.Status == NotePending {
			return fmt.Errorf("%w: redelivery already pending for budget %d", ErrConflict, note.BudgetID)
		}
	}
	budget, err := s.repo.GetBudget(ctx, note.BudgetID)
	if err != nil {
		return err
	}
	q, err := s.repo.GetQuotation(ctx, budget.QuotationID)
	if err != nil {
		return err
	}
	supplier, ok, err := s.suppliers.Get(ctx, q.SupplierID)
	if err != nil {
		return err
	}
	if !ok || supplier.Email == "" {
		return fmt.Errorf("%w: supplier %d has no contact email", ErrNotFound, q.SupplierID)
	}
	body := fmt.Sprintf("Hello %s,\n\nDelivery note #%d has been disputed. Please arrange a redelivery.\n", supplier.Name, note.ID)
	return s.notifier.Notify(ctx, supplier.Email, fmt.Sprintf("Delivery note #%d disputed", note.ID), body)
}

// ConfirmRedelivery closes a disputed note as redelivered and opens a new
// pending note carrying the original lines and total.
func (s *Service) ConfirmRedelivery(ctx context.Context, noteID int64) (DeliveryNote, error) {
	if noteID <= 0 {
		return DeliveryNote{}, ErrValidation
	}
	note, lines, err := s.repo.GetNote(ctx, noteID)
	if err != nil {
		return DeliveryNote{}, err
	}
	if note.Status != NoteDisputed {
		return DeliveryNote{}, fmt.Errorf("%w: delivery note %d is %s", ErrConflict, noteID, note.Status)
	}
	replacement := DeliveryNote{IssuedAt: time.Now().UTC(), Status: NotePending, TotalValue: note.TotalValue, BudgetID: note.BudgetID}
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		if err := tx.UpdateNoteStatus(ctx, noteID, NoteRedelivered); err != nil {
			return err
		}
		id, err := tx.CreateNote(ctx, replacement)
		if err != nil {
			return err
		}
		for _, l := range lines {
			if err := tx.InsertNoteLine(ctx, DeliveryLine{NoteID: id, MaterialID: l.MaterialID, Quantity: l.Quantity, UnitPrice: l.UnitPrice}); err != nil {
				return err
			}
		}
		replacement.ID = id
		return nil
	})
	if err != nil {
		return DeliveryNote{}, err
	}
	s.auditRecord(ctx, 0, "delivery_note.redelivered", "delivery_note", noteID, map[string]any{"replacement_id": replacement.ID})
	return replacement, nil
}

// GetNoteDetail resolves a delivery note with its lines and material names.
// ListNotes returns delivery notes, optionally filtered by state.
// Unknown state values return the unfiltered set.
func (s *Service) ListNotes(ctx context.Context, state string) ([]DeliveryNote, error) {
	if !NoteState(state).Known() {
		state = ""
	}
	return s.repo.ListNotes(ctx, state)
}

func (s *Service) GetNoteDetail(ctx context.Context, id int64) (NoteDetail, error) {
	if id <= 0 {
		return NoteDetail{}, ErrValidation
	}
	note, lines, err := s.repo.GetNote(ctx, id)
	if err != nil {
		return NoteDetail{}, err
	}
	ids := make([]int64, 0, len(lines))
	for _, l := range lines {
		ids = append(ids, l.MaterialID)
	}
	names, err := s.materials.Names(ctx, ids)
	if err != nil {
		return NoteDetail{}, err
	}
	detail := NoteDetail{ID: note.ID, IssuedAt: note.IssuedAt, Status: string(note.Status), TotalValue: note.TotalValue, BudgetID: note.BudgetID}
	for _, l := range lines {
		detail.Lines = append(detail.Lines, NoteLineDetail{MaterialID: l.MaterialID, MaterialName: names[l.MaterialID], Quantity: l.Quantity, UnitPrice: l.UnitPrice})
	}
	return detail, nil
}

func (s *Service) quotationHeader(ctx context.Context, q Quotation) (QuotationHeader, error) {
	supplier, ok, err := s.suppliers.Get(ctx, q.SupplierID)
	if err != nil {
		return QuotationHeader{}, err
	}
	name := ""
	if ok {
		name = supplier.Name
	}
	return QuotationHeader{ID: q.ID, Description: q.Description, CreatedAt: q.CreatedAt, Status: string(q.Status), SupplierID: q.SupplierID, SupplierName: name}, nil
}

func tokenMatches(stored, presented string) bool {
	return stored != "" && strings.EqualFold(strings.TrimSpace(stored), strings.TrimSpace(presented))
}

func generateAccessToken() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}
