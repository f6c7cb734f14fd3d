package suppliers

import (
	"fmt"
	"time"

	"github.com/logiscontrol/logiscontrol/internal/platform/httpx"
)

// Supplier is a vendor the factory sources raw materials from.
type Supplier struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Address   string    `json:"address"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

var (
	ErrNotFound   = fmt.Errorf("suppliers: %w", httpx.ErrNotFound)
	ErrValidation = fmt.Errorf("suppliers: %w", httpx.ErrValidation)
)
