package clients

import (
	"fmt"
	"time"

	"github.com/logiscontrol/logiscontrol/internal/platform/httpx"
)

// Client is a customer the factory produces for.
type Client struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	TaxNumber int64     `json:"taxNumber"`
	Address   string    `json:"address"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

var (
	ErrNotFound           = fmt.Errorf("clients: %w", httpx.ErrNotFound)
	ErrValidation         = fmt.Errorf("clients: %w", httpx.ErrValidation)
	ErrDuplicateTaxNumber = fmt.Errorf("clients: duplicate tax number: %w", httpx.ErrConflict)
)
