package maintenance

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// Telegram channel names requests are announced on.
const (
	channelMaintenance = "maintenance"
	channelProduction  = "production"
)

// overdueAfter is how long a request may stay unresolved before the
// overdue scan picks it up.
const overdueAfter = 7 * 24 * time.Hour

// RepositoryPort describes repository operations used by Service.
type RepositoryPort interface {
	ListMachines(ctx context.Context) ([]Machine, error)
	GetMachine(ctx context.Context, id int64) (Machine, bool, error)
	CreateMachine(ctx context.Context, m Machine) (int64, error)

	ListRequests(ctx context.Context, state string) ([]Request, error)
	ListOverdue(ctx context.Context, before time.Time) ([]Request, error)
	GetRequest(ctx context.Context, id int64) (Request, bool, error)
	CreateRequest(ctx context.Context, req Request) (int64, error)
	UpdateRequest(ctx context.Context, req Request) error

	GetRecord(ctx context.Context, id int64) (Record, bool, error)
	ListRecordsForRequest(ctx context.Context, requestID int64) ([]Record, error)
	CreateRecord(ctx context.Context, rec Record) (int64, error)
	UpdateRecord(ctx context.Context, rec Record) error
}

// Announcer posts messages to a named channel. Delivery failures are the
// caller's problem; the service treats them as best effort.
type Announcer interface {
	SendMessage(ctx context.Context, channel, text string) error
}

// Service orchestrates maintenance tickets and their work records.
type Service struct {
	repo      RepositoryPort
	announcer Announcer
	logger    *slog.Logger
}

// NewService constructs maintenance service.
func NewService(repo RepositoryPort, announcer Announcer, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, announcer: announcer, logger: logger}
}

// CreateRequestInput is the ticket creation payload.
type CreateRequestInput struct {
	Description string `json:"description" validate:"required"`
	MachineID   int64  `json:"machineId" validate:"required,gt=0"`
}

// CreateMachineInput is the machine registration payload.
type CreateMachineInput struct {
	Name           string `json:"name" validate:"required"`
	Type           string `json:"type"`
	ProductionLine string `json:"productionLine"`
}

// RecordInput documents work performed on a request.
type RecordInput struct {
	Description string `json:"description" validate:"required"`
}

func (s *Service) ListMachines(ctx context.Context) ([]Machine, error) {
	return s.repo.ListMachines(ctx)
}

func (s *Service) CreateMachine(ctx context.Context, input CreateMachineInput) (Machine, error) {
	if strings.TrimSpace(input.Name) == "" {
		return Machine{}, ErrValidation
	}
	m := Machine{Name: strings.TrimSpace(input.Name), Type: input.Type, ProductionLine: input.ProductionLine}
	id, err := s.repo.CreateMachine(ctx, m)
	if err != nil {
		return Machine{}, err
	}
	m.ID = id
	return m, nil
}

// CreateRequest opens a waiting ticket and announces it to the
// maintenance channel. The ticket is persisted before the announcement;
// a failed announcement never rolls it back.
func (s *Service) CreateRequest(ctx context.Context, input CreateRequestInput, reporterID int64) (Request, error) {
	if strings.TrimSpace(input.Description) == "" || input.MachineID <= 0 || reporterID <= 0 {
		return Request{}, ErrValidation
	}
	machine, ok, err := s.repo.GetMachine(ctx, input.MachineID)
	if err != nil {
		return Request{}, err
	}
	if !ok {
		return Request{}, fmt.Errorf("%w: machine %d", ErrNotFound, input.MachineID)
	}
	req := Request{
		Description: strings.TrimSpace(input.Description),
		Status:      RequestWaiting,
		OpenedAt:    time.Now().UTC(),
		MachineID:   machine.ID,
		ReporterID:  reporterID,
	}
	id, err := s.repo.CreateRequest(ctx, req)
	if err != nil {
		return Request{}, err
	}
	req.ID = id
	s.announce(ctx, channelMaintenance, fmt.Sprintf("New maintenance request\nID: %d\nMachine: %s\nDescription: %s", req.ID, machine.Name, req.Description))
	return req, nil
}

// ListRequests returns tickets, optionally filtered by state. Unknown
// state values return the unfiltered set.
func (s *Service) ListRequests(ctx context.Context, state string) ([]Request, error) {
	if !RequestState(state).Known() {
		state = ""
	}
	return s.repo.ListRequests(ctx, state)
}

// ListOverdue returns tickets open longer than a week and not yet done.
func (s *Service) ListOverdue(ctx context.Context) ([]Request, error) {
	return s.repo.ListOverdue(ctx, time.Now().Add(-overdueAfter))
}

// UpdateRequestState moves a ticket to a new state. A refusal closes the
// ticket and tells the production channel.
func (s *Service) UpdateRequestState(ctx context.Context, id int64, state RequestState) error {
	if id <= 0 {
		return ErrValidation
	}
	if !state.Known() {
		return fmt.Errorf("%w: unknown state %q", ErrValidation, state)
	}
	req, ok, err := s.repo.GetRequest(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: maintenance request %d", ErrNotFound, id)
	}
	req.Status = state
	if state == RequestRefused {
		now := time.Now().UTC()
		req.ClosedAt = &now
	}
	if err := s.repo.UpdateRequest(ctx, req); err != nil {
		return err
	}
	if state == RequestRefused {
		machineName := s.machineName(ctx, req.MachineID)
		s.announce(ctx, channelProduction, fmt.Sprintf("Maintenance request refused\nID: %d\nMachine: %s\nDescription: %s", req.ID, machineName, req.Description))
	}
	return nil
}

// ReopenRequest puts a closed ticket back in the waiting state, appends
// the justification to its description and announces the reopening.
func (s *Service) ReopenRequest(ctx context.Context, id int64, justification, actorName string) error {
	if id <= 0 || strings.TrimSpace(justification) == "" {
		return ErrValidation
	}
	req, ok, err := s.repo.GetRequest(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: maintenance request %d", ErrNotFound, id)
	}
	if actorName == "" {
		actorName = "operator"
	}
	req.Description += fmt.Sprintf("\n\nReopened by %s at %s:\n%s", actorName, time.Now().UTC().Format("2006-01-02 15:04"), justification)
	req.Status = RequestWaiting
	req.ClosedAt = nil
	if err := s.repo.UpdateRequest(ctx, req); err != nil {
		return err
	}
	machineName := s.machineName(ctx, req.MachineID)
	s.announce(ctx, channelMaintenance, fmt.Sprintf("Maintenance request reopened\nID: %d\nMachine: %s\nJustification:\n%s", req.ID, machineName, justification))
	return nil
}

// AddRecord attaches an open work record to a ticket and moves the ticket
// into progress.
func (s *Service) AddRecord(ctx context.Context, requestID int64, input RecordInput, technicianID int64) (Record, error) {
	if requestID <= 0 || strings.TrimSpace(input.Description) == "" || technicianID <= 0 {
		return Record{}, ErrValidation
	}
	req, ok, err := s.repo.GetRequest(ctx, requestID)
	if err != nil {
		return Record{}, err
	}
	if !ok {
		return Record{}, fmt.Errorf("%w: maintenance request %d", ErrNotFound, requestID)
	}
	if req.Status == RequestDone || req.Status == RequestRefused {
		return Record{}, fmt.Errorf("%w: request %d is %s", ErrConflict, requestID, req.Status)
	}
	rec := Record{
		Description:  strings.TrimSpace(input.Description),
		Status:       RecordOpen,
		CreatedAt:    time.Now().UTC(),
		RequestID:    requestID,
		TechnicianID: technicianID,
	}
	id, err := s.repo.CreateRecord(ctx, rec)
	if err != nil {
		return Record{}, err
	}
	rec.ID = id
	if req.Status == RequestWaiting {
		req.Status = RequestInProgress
		if err := s.repo.UpdateRequest(ctx, req); err != nil {
			return Record{}, err
		}
	}
	return rec, nil
}

// ResolveRecord marks a record resolved, completes the parent ticket and
// announces the resolution to production.
func (s *Service) ResolveRecord(ctx context.Context, recordID int64, resolution string) error {
	if recordID <= 0 {
		return ErrValidation
	}
	rec, ok, err := s.repo.GetRecord(ctx, recordID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: maintenance record %d", ErrNotFound, recordID)
	}
	if rec.Status == RecordResolved {
		return fmt.Errorf("%w: record %d already resolved", ErrConflict, recordID)
	}
	if strings.TrimSpace(resolution) != "" {
		rec.Description = strings.TrimSpace(resolution)
	}
	rec.Status = RecordResolved
	if err := s.repo.UpdateRecord(ctx, rec); err != nil {
		return err
	}
	req, ok, err := s.repo.GetRequest(ctx, rec.RequestID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: maintenance request %d", ErrNotFound, rec.RequestID)
	}
	now := time.Now().UTC()
	req.Status = RequestDone
	req.ClosedAt = &now
	if err := s.repo.UpdateRequest(ctx, req); err != nil {
		return err
	}
	machineName := s.machineName(ctx, req.MachineID)
	s.announce(ctx, channelProduction, fmt.Sprintf("Maintenance request completed\nID: %d\nMachine: %s\nResolution: %s", req.ID, machineName, rec.Description))
	return nil
}

// RecordsForRequest lists the work records of a ticket.
func (s *Service) RecordsForRequest(ctx context.Context, requestID int64) ([]Record, error) {
	if requestID <= 0 {
		return nil, ErrValidation
	}
	return s.repo.ListRecordsForRequest(ctx, requestID)
}

func (s *Service) machineName(ctx context.Context, id int64) string {
	m, ok, err := s.repo.GetMachine(ctx, id)
	if err != nil || !ok {
		return "unknown"
	}
	return m.Name
}

func (s *Service) announce(ctx context.Context, channel, text string) {
	if s.announcer == nil {
		return
	}
	if err := s.announcer.SendMessage(ctx, channel, text); err != nil {
		s.logger.Warn("telegram announcement failed", slog.String("channel", channel), slog.Any("error", err))
	}
}
