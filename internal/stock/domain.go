package stock

import (
	"fmt"

	"github.com/logiscontrol/logiscontrol/internal/platform/httpx"
)

// RawMaterial is a purchasable input tracked in stock.
type RawMaterial struct {
	ID           int64   `json:"id"`
	Name         string  `json:"name"`
	Quantity     int64   `json:"quantity"`
	Description  string  `json:"description"`
	Category     string  `json:"category"`
	InternalCode string  `json:"internalCode"`
	Price        float64 `json:"price"`
}

// Product is a manufactured good tracked in stock.
type Product struct {
	ID                int64   `json:"id"`
	Name              string  `json:"name"`
	Quantity          int64   `json:"quantity"`
	Description       string  `json:"description"`
	InternalCode      string  `json:"internalCode"`
	Price             float64 `json:"price"`
	ProductionOrderID *int64  `json:"productionOrderId,omitempty"`
}

var (
	ErrNotFound   = fmt.Errorf("stock: %w", httpx.ErrNotFound)
	ErrValidation = fmt.Errorf("stock: %w", httpx.ErrValidation)
	ErrConflict   = fmt.Errorf("stock: %w", httpx.ErrConflict)
)
