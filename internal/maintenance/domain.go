package maintenance

import (
	"fmt"
	"time"

	"github.com/logiscontrol/logiscontrol/internal/platform/httpx"
)

// Maintenance request lifecycle states.
type RequestState string

const (
	RequestWaiting    RequestState = "WAITING"
	RequestInProgress RequestState = "IN_PROGRESS"
	RequestRefused    RequestState = "REFUSED"
	RequestDone       RequestState = "DONE"
)

// Known reports whether s names one of the defined request states.
func (s RequestState) Known() bool {
	switch s {
	case RequestWaiting, RequestInProgress, RequestRefused, RequestDone:
		return true
	}
	return false
}

// Maintenance record lifecycle states.
type RecordState string

const (
	RecordOpen     RecordState = "OPEN"
	RecordResolved RecordState = "RESOLVED"
)

// Machine is a production machine maintenance is tracked for.
type Machine struct {
	ID             int64  `json:"id"`
	Name           string `json:"name"`
	Type           string `json:"type"`
	ProductionLine string `json:"productionLine"`
}

// Request is a maintenance ticket raised against a machine.
type Request struct {
	ID          int64        `json:"id"`
	Description string       `json:"description"`
	Status      RequestState `json:"status"`
	OpenedAt    time.Time    `json:"openedAt"`
	ClosedAt    *time.Time   `json:"closedAt,omitempty"`
	MachineID   int64        `json:"machineId"`
	ReporterID  int64        `json:"reporterId"`
}

// Record documents maintenance work performed for a request.
type Record struct {
	ID           int64       `json:"id"`
	Description  string      `json:"description"`
	Status       RecordState `json:"status"`
	CreatedAt    time.Time   `json:"createdAt"`
	RequestID    int64       `json:"requestId"`
	TechnicianID int64       `json:"technicianId"`
}

var (
	ErrNotFound   = fmt.Errorf("maintenance: %w", httpx.ErrNotFound)
	ErrValidation = fmt.Errorf("maintenance: %w", httpx.ErrValidation)
	ErrConflict   = fmt.Errorf("maintenance: %w", httpx.ErrConflict)
)
