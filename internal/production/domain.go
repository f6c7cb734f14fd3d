package production

import (
	"fmt"
	"time"

	"github.com/logiscontrol/logiscontrol/internal/platform/httpx"
)

// Production order lifecycle states.
type OrderState string

const (
	OrderOpen       OrderState = "OPEN"
	OrderInProgress OrderState = "IN_PROGRESS"
	OrderDone       OrderState = "DONE"
	OrderCancelled  OrderState = "CANCELLED"
)

// Production run lifecycle states.
type RunState string

const (
	RunRunning       RunState = "RUNNING"
	RunProduced      RunState = "PRODUCED"
	RunStoppedDefect RunState = "STOPPED_DEFECT"
	RunCancelled     RunState = "CANCELLED"
)

// Known reports whether s names one of the defined run states.
func (s RunState) Known() bool {
	switch s {
	case RunRunning, RunProduced, RunStoppedDefect, RunCancelled:
		return true
	}
	return false
}

// Order schedules a quantity of a product on a machine.
type Order struct {
	ID        int64      `json:"id"`
	Status    OrderState `json:"status"`
	Quantity  int64      `json:"quantity"`
	OpenedAt  time.Time  `json:"openedAt"`
	ClosedAt  *time.Time `json:"closedAt,omitempty"`
	MachineID int64      `json:"machineId"`
	ProductID int64      `json:"productId"`
}

// Run is one execution attempt of an order on the floor.
type Run struct {
	ID         int64     `json:"id"`
	Status     RunState  `json:"status"`
	StartedAt  time.Time `json:"startedAt"`
	Notes      string    `json:"notes,omitempty"`
	OperatorID int64     `json:"operatorId"`
	OrderID    int64     `json:"orderId"`
}

var (
	ErrNotFound   = fmt.Errorf("production: %w", httpx.ErrNotFound)
	ErrValidation = fmt.Errorf("production: %w", httpx.ErrValidation)
	ErrConflict   = fmt.Errorf("production: %w", httpx.ErrConflict)
)
