package production

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// RepositoryPort describes repository operations used by Service.
type RepositoryPort interface {
	ListOrders(ctx context.Context, state string) ([]Order, error)
	GetOrder(ctx context.Context, id int64) (Order, bool, error)
	CreateOrder(ctx context.Context, o Order) (int64, error)
	UpdateOrder(ctx context.Context, o Order) error

	GetRun(ctx context.Context, id int64) (Run, bool, error)
	ListRunsForOrder(ctx context.Context, orderID int64) ([]Run, error)
	CreateRun(ctx context.Context, r Run) (int64, error)
	UpdateRun(ctx context.Context, r Run) error
}

// ProductStock adjusts finished-goods stock when a run completes.
type ProductStock interface {
	AdjustProductQuantity(ctx context.Context, productID int64, delta int64) error
}

// Notifier delivers outbound messages.
type Notifier interface {
	TryNotify(ctx context.Context, to, subject, body string) bool
}

// ServiceConfig carries production tunables.
type ServiceConfig struct {
	// AlertRecipient receives production state emails.
	AlertRecipient string
}

// Service orchestrates production orders and floor runs.
type Service struct {
	repo     RepositoryPort
	stock    ProductStock
	notifier Notifier
	logger   *slog.Logger
	cfg      ServiceConfig
}

// NewService constructs production service.
func NewService(repo RepositoryPort, stock ProductStock, notifier Notifier, logger *slog.Logger, cfg ServiceConfig) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, stock: stock, notifier: notifier, logger: logger, cfg: cfg}
}

// CreateOrderInput schedules production.
type CreateOrderInput struct {
	Quantity  int64 `json:"quantity" validate:"required,gt=0"`
	MachineID int64 `json:"machineId" validate:"required,gt=0"`
	ProductID int64 `json:"productId" validate:"required,gt=0"`
}

// CreateOrder opens a production order.
func (s *Service) CreateOrder(ctx context.Context, input CreateOrderInput) (Order, error) {
	if input.Quantity <= 0 || input.MachineID <= 0 || input.ProductID <= 0 {
		return Order{}, ErrValidation
	}
	o := Order{
		Status:    OrderOpen,
		Quantity:  input.Quantity,
		OpenedAt:  time.Now().UTC(),
		MachineID: input.MachineID,
		ProductID: input.ProductID,
	}
	id, err := s.repo.CreateOrder(ctx, o)
	if err != nil {
		return Order{}, err
	}
	o.ID = id
	return o, nil
}

// ListOrders returns orders, optionally filtered by state.
func (s *Service) ListOrders(ctx context.Context, state string) ([]Order, error) {
	switch OrderState(state) {
	case OrderOpen, OrderInProgress, OrderDone, OrderCancelled:
	default:
		state = ""
	}
	return s.repo.ListOrders(ctx, state)
}

// GetOrder returns one order with its runs.
func (s *Service) GetOrder(ctx context.Context, id int64) (Order, []Run, error) {
	if id <= 0 {
		return Order{}, nil, ErrValidation
	}
	o, ok, err := s.repo.GetOrder(ctx, id)
	if err != nil {
		return Order{}, nil, err
	}
	if !ok {
		return Order{}, nil, fmt.Errorf("%w: production order %d", ErrNotFound, id)
	}
	runs, err := s.repo.ListRunsForOrder(ctx, id)
	if err != nil {
		return Order{}, nil, err
	}
	return o, runs, nil
}

// StartRun opens a run for an order and moves the order into progress.
func (s *Service) StartRun(ctx context.Context, orderID, operatorID int64) (Run, error) {
	if orderID <= 0 || operatorID <= 0 {
		return Run{}, ErrValidation
	}
	o, ok, err := s.repo.GetOrder(ctx, orderID)
	if err != nil {
		return Run{}, err
	}
	if !ok {
		return Run{}, fmt.Errorf("%w: production order %d", ErrNotFound, orderID)
	}
	if o.Status == OrderDone || o.Status == OrderCancelled {
		return Run{}, fmt.Errorf("%w: order %d is %s", ErrConflict, orderID, o.Status)
	}
	run := Run{Status: RunRunning, StartedAt: time.Now().UTC(), OperatorID: operatorID, OrderID: orderID}
	id, err := s.repo.CreateRun(ctx, run)
	if err != nil {
		return Run{}, err
	}
	run.ID = id
	if o.Status == OrderOpen {
		o.Status = OrderInProgress
		if err := s.repo.UpdateOrder(ctx, o); err != nil {
			return Run{}, err
		}
	}
	return run, nil
}

// UpdateRun moves a run to a new state and applies the order-level side
// effects: a produced run completes the order and books the quantity into
// product stock, a cancelled run cancels the order, a defect stop only
// alerts. All alerts are best effort.
func (s *Service) UpdateRun(ctx context.Context, runID int64, state RunState, notes string) error {
	if runID <= 0 {
		return ErrValidation
	}
	if !state.Known() {
		return fmt.Errorf("%w: unknown run state %q", ErrValidation, state)
	}
	run, ok, err := s.repo.GetRun(ctx, runID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: production run %d", ErrNotFound, runID)
	}
	if run.Status == RunProduced || run.Status == RunCancelled {
		return fmt.Errorf("%w: run %d is %s", ErrConflict, runID, run.Status)
	}
	run.Status = state
	if strings.TrimSpace(notes) != "" {
		run.Notes = strings.TrimSpace(notes)
	}
	if err := s.repo.UpdateRun(ctx, run); err != nil {
		return err
	}
	order, ok, err := s.repo.GetOrder(ctx, run.OrderID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: production order %d", ErrNotFound, run.OrderID)
	}
	switch state {
	case RunProduced:
		now := time.Now().UTC()
		order.Status = OrderDone
		order.ClosedAt = &now
		if err := s.repo.UpdateOrder(ctx, order); err != nil {
			return err
		}
		if err := s.stock.AdjustProductQuantity(ctx, order.ProductID, order.Quantity); err != nil {
			return err
		}
		s.alert(ctx, "Production completed", fmt.Sprintf("Production run #%d finished successfully.", run.ID))
	case RunCancelled:
		order.Status = OrderCancelled
		if err := s.repo.UpdateOrder(ctx, order); err != nil {
			return err
		}
		s.alert(ctx, "Production cancelled", fmt.Sprintf("Production run #%d was cancelled.", run.ID))
	case RunStoppedDefect:
		s.alert(ctx, "Production stopped on defect", fmt.Sprintf("Production run #%d stopped because of a defect.", run.ID))
	}
	return nil
}

func (s *Service) alert(ctx context.Context, subject, body string) {
	if s.notifier == nil || s.cfg.AlertRecipient == "" {
		return
	}
	if !s.notifier.TryNotify(ctx, s.cfg.AlertRecipient, subject, body) {
		s.logger.Warn("production alert not delivered", slog.String("subject", subject))
	}
}
