package orders

import (
	"fmt"
	"time"

	"github.com/logiscontrol/logiscontrol/internal/platform/httpx"
)

// OrderState tracks a client order through fulfilment.
type OrderState string

const (
	OrderPending       OrderState = "PENDING"
	OrderAwaitingStock OrderState = "AWAITING_STOCK"
	OrderInProduction  OrderState = "IN_PRODUCTION"
	OrderFulfilled     OrderState = "FULFILLED"
	OrderCancelled     OrderState = "CANCELLED"
)

// Known reports whether s names one of the defined order states.
func (s OrderState) Known() bool {
	switch s {
	case OrderPending, OrderAwaitingStock, OrderInProduction, OrderFulfilled, OrderCancelled:
		return true
	}
	return false
}

// ClientOrder is an order placed by a registered client.
type ClientOrder struct {
	ID        int64      `json:"id"`
	OrderedAt time.Time  `json:"orderedAt"`
	Status    OrderState `json:"status"`
	ClientID  int64      `json:"clientId"`
}

// OrderSummary is the list projection with the client resolved.
type OrderSummary struct {
	ID         int64      `json:"id"`
	OrderedAt  time.Time  `json:"orderedAt"`
	Status     OrderState `json:"status"`
	ClientName string     `json:"clientName"`
}

// OrderItem is one product line of a client order.
type OrderItem struct {
	ID        int64 `json:"id"`
	OrderID   int64 `json:"orderId"`
	ProductID int64 `json:"productId"`
	Quantity  int64 `json:"quantity"`
}

// Requirement links a product to a raw material it consumes per unit.
type Requirement struct {
	ID             int64 `json:"id"`
	ProductID      int64 `json:"productId"`
	MaterialID     int64 `json:"materialId"`
	QuantityNeeded int64 `json:"quantityNeeded"`
}

// Shortage is one raw material an order cannot be built from.
type Shortage struct {
	MaterialID   int64  `json:"materialId"`
	MaterialName string `json:"materialName"`
	ProductName  string `json:"productName"`
	Required     int64  `json:"required"`
	Available    int64  `json:"available"`
}

var (
	ErrNotFound   = fmt.Errorf("orders: %w", httpx.ErrNotFound)
	ErrValidation = fmt.Errorf("orders: %w", httpx.ErrValidation)
	ErrConflict   = fmt.Errorf("orders: %w", httpx.ErrConflict)
)
