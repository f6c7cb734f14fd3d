package purchasing

import "time"

// CreateRequestInput describes the creation payload.
type CreateRequestInput struct {
	Description string
	RequesterID int64
	Lines       []RequestLineInput
}

// RequestLineInput describes one requested material.
type RequestLineInput struct {
	MaterialID int64 `json:"materialId" validate:"required,gt=0"`
	Quantity   int64 `json:"quantity" validate:"required,gt=0"`
}

// RequestSummary is the listing row for purchase requests.
type RequestSummary struct {
	ID            int64      `json:"id"`
	Description   string     `json:"description"`
	Status        string     `json:"status"`
	OpenedAt      time.Time  `json:"openedAt"`
	ClosedAt      *time.Time `json:"closedAt,omitempty"`
	RequesterName string     `json:"requesterName"`
}

// RequestLineDetail resolves a request line with the material name.
type RequestLineDetail struct {
	MaterialID   int64  `json:"materialId"`
	MaterialName string `json:"materialName"`
	Quantity     int64  `json:"quantity"`
}

// RequestDetail is the full purchase request view.
type RequestDetail struct {
	ID            int64               `json:"id"`
	Description   string              `json:"description"`
	Status        string              `json:"status"`
	OpenedAt      time.Time           `json:"openedAt"`
	ClosedAt      *time.Time          `json:"closedAt,omitempty"`
	RequesterName string              `json:"requesterName"`
	Lines         []RequestLineDetail `json:"lines"`
}

// DispatchResult carries the identifiers a dispatch hands back.
type DispatchResult struct {
	QuotationID int64  `json:"quotationId"`
	Token       string `json:"token"`
}

// QuotationHeader is the quotation view shared by admin and supplier reads.
type QuotationHeader struct {
	ID           int64     `json:"id"`
	Description  string    `json:"description"`
	CreatedAt    time.Time `json:"createdAt"`
	Status       string    `json:"status"`
	SupplierID   int64     `json:"supplierId"`
	SupplierName string    `json:"supplierName"`
}

// BudgetSummary lists a budget without its lines.
type BudgetSummary struct {
	ID          int64     `json:"id"`
	QuotationID int64     `json:"quotationId"`
	CreatedAt   time.Time `json:"createdAt"`
	Status      string    `json:"status"`
}

// QuotationItem is one item row in a quotation view. For the supplier view
// these are the original request lines with zero prices; for the admin view
// they are the priced budget lines.
type QuotationItem struct {
	MaterialID   int64   `json:"materialId"`
	MaterialName string  `json:"materialName"`
	Quantity     int64   `json:"quantity"`
	UnitPrice    float64 `json:"unitPrice"`
	LeadTimeDays int     `json:"leadTimeDays"`
}

// QuotationDetail aggregates a quotation with its budgets and item rows.
type QuotationDetail struct {
	Header  QuotationHeader `json:"header"`
	Budgets []BudgetSummary `json:"budgets"`
	Items   []QuotationItem `json:"items"`
}

// BudgetLineInput describes one priced line a supplier submits.
type BudgetLineInput struct {
	MaterialID   int64   `json:"materialId" validate:"required,gt=0"`
	Quantity     int64   `json:"quantity" validate:"required,gt=0"`
	UnitPrice    float64 `json:"unitPrice" validate:"gte=0"`
	LeadTimeDays int     `json:"leadTimeDays" validate:"gte=0"`
}

// NoteLineDetail resolves a delivery line with the material name.
type NoteLineDetail struct {
	MaterialID   int64   `json:"materialId"`
	MaterialName string  `json:"materialName"`
	Quantity     int64   `json:"quantity"`
	UnitPrice    float64 `json:"unitPrice"`
}

// NoteDetail is the full delivery note view.
type NoteDetail struct {
	ID         int64            `json:"id"`
	IssuedAt   time.Time        `json:"issuedAt"`
	Status     string           `json:"status"`
	TotalValue float64          `json:"totalValue"`
	BudgetID   int64            `json:"budgetId"`
	Lines      []NoteLineDetail `json:"lines"`
}
