package purchasing

import (
	"fmt"
	"time"

	"github.com/logiscontrol/logiscontrol/internal/platform/httpx"
)

// Purchase request lifecycle states.
type RequestState string

const (
	RequestOpen        RequestState = "OPEN"
	RequestBeingQuoted RequestState = "BEING_QUOTED"
	RequestHasBudgets  RequestState = "HAS_BUDGETS"
	RequestClosed      RequestState = "CLOSED"
	RequestReceived    RequestState = "RECEIVED"
)

// Quotation lifecycle states.
type QuotationState string

const (
	QuotationIssued     QuotationState = "ISSUED"
	QuotationHasBudgets QuotationState = "HAS_BUDGETS"
	QuotationFinalized  QuotationState = "FINALIZED"
)

// Budget lifecycle states.
type BudgetState string

const (
	BudgetResponded BudgetState = "RESPONDED"
	BudgetAccepted  BudgetState = "ACCEPTED"
	BudgetRejected  BudgetState = "REJECTED"
)

// Delivery note lifecycle states.
type NoteState string

const (
	NotePending     NoteState = "PENDING"
	NoteReceived    NoteState = "RECEIVED"
	NoteDisputed    NoteState = "DISPUTED"
	NoteRedelivered NoteState = "REDELIVERED"
)

var requestTransitions = map[RequestState][]RequestState{
	RequestOpen:        {RequestBeingQuoted, RequestReceived},
	RequestBeingQuoted: {RequestHasBudgets, RequestClosed, RequestReceived},
	RequestHasBudgets:  {RequestClosed, RequestReceived},
	RequestClosed:      {RequestReceived},
	RequestReceived:    {},
}

var quotationTransitions = map[QuotationState][]QuotationState{
	QuotationIssued:     {QuotationHasBudgets, QuotationFinalized},
	QuotationHasBudgets: {QuotationFinalized},
	QuotationFinalized:  {},
}

var budgetTransitions = map[BudgetState][]BudgetState{
	BudgetResponded: {BudgetAccepted, BudgetRejected},
	BudgetAccepted:  {},
	BudgetRejected:  {},
}

var noteTransitions = map[NoteState][]NoteState{
	NotePending:     {NoteReceived, NoteDisputed},
	NoteDisputed:    {NoteRedelivered},
	NoteReceived:    {},
	NoteRedelivered: {},
}

// CanTransition reports whether moving from s to next is a legal request
// transition. A transition onto the current state is treated as a no-op.
func (s RequestState) CanTransition(next RequestState) bool {
	if s == next {
		return true
	}
	return containsState(requestTransitions[s], next)
}

// Known reports whether s names one of the defined request states.
func (s RequestState) Known() bool {
	switch s {
	case RequestOpen, RequestBeingQuoted, RequestHasBudgets, RequestClosed, RequestReceived:
		return true
	}
	return false
}

// CanTransition reports whether moving from s to next is legal.
func (s QuotationState) CanTransition(next QuotationState) bool {
	if s == next {
		return true
	}
	return containsState(quotationTransitions[s], next)
}

// CanTransition reports whether moving from s to next is legal.
func (s BudgetState) CanTransition(next BudgetState) bool {
	if s == next {
		return true
	}
	return containsState(budgetTransitions[s], next)
}

// Known reports whether s names one of the defined note states.
func (s NoteState) Known() bool {
	switch s {
	case NotePending, NoteReceived, NoteDisputed, NoteRedelivered:
		return true
	}
	return false
}

// CanTransition reports whether moving from s to next is legal.
func (s NoteState) CanTransition(next NoteState) bool {
	if s == next {
		return true
	}
	return containsState(noteTransitions[s], next)
}

func containsState[T comparable](states []T, want T) bool {
	for _, s := range states {
		if s == want {
			return true
		}
	}
	return false
}

// PurchaseRequest is an internal request to buy materials. Requests are
// never deleted; the full lifecycle stays queryable as an audit trail.
type PurchaseRequest struct {
	ID          int64
	Description string
	Status      RequestState
	OpenedAt    time.Time
	ClosedAt    *time.Time
	RequesterID int64
}

// RequestLine is one requested material with its quantity.
type RequestLine struct {
	ID         int64
	RequestID  int64
	MaterialID int64
	Quantity   int64
}

// Quotation is a request for prices sent to a single supplier, guarded by an
// opaque access token. RequestID is zero for quotations without a linked
// purchase request.
type Quotation struct {
	ID          int64
	Description string
	CreatedAt   time.Time
	Status      QuotationState
	SupplierID  int64
	AccessToken string
	RequestID   int64
}

// Budget is a supplier's priced response to a quotation.
type Budget struct {
	ID          int64
	CreatedAt   time.Time
	Status      BudgetState
	QuotationID int64
}

// BudgetLine is one priced material on a budget. LeadTimeDays is zero when
// the supplier did not state one.
type BudgetLine struct {
	ID           int64
	BudgetID     int64
	MaterialID   int64
	Quantity     int64
	UnitPrice    float64
	LeadTimeDays int
}

// DeliveryNote records goods shipped against an accepted budget, pending
// receipt confirmation.
type DeliveryNote struct {
	ID         int64
	IssuedAt   time.Time
	Status     NoteState
	TotalValue float64
	BudgetID   int64
}

// DeliveryLine is one shipped material on a delivery note.
type DeliveryLine struct {
	ID         int64
	NoteID     int64
	MaterialID int64
	Quantity   int64
	UnitPrice  float64
}

// Sentinel errors. They wrap the httpx sentinels so the HTTP layer can map
// any purchasing error onto a status code with errors.Is.
var (
	ErrNotFound     = fmt.Errorf("purchasing: %w", httpx.ErrNotFound)
	ErrValidation   = fmt.Errorf("purchasing: %w", httpx.ErrValidation)
	ErrConflict     = fmt.Errorf("purchasing: %w", httpx.ErrConflict)
	ErrUnauthorized = fmt.Errorf("purchasing: %w", httpx.ErrUnauthorized)
)
