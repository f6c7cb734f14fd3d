package stock

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// criticalThreshold is the quantity below which a downward stock move
// triggers an alert.
const criticalThreshold = 10

// RepositoryPort describes repository operations used by Service.
type RepositoryPort interface {
	ListMaterials(ctx context.Context) ([]RawMaterial, error)
	GetMaterial(ctx context.Context, id int64) (RawMaterial, bool, error)
	CreateMaterial(ctx context.Context, m RawMaterial) (int64, error)
	UpdateMaterial(ctx context.Context, m RawMaterial) error
	DeleteMaterial(ctx context.Context, id int64) error
	MissingMaterialIDs(ctx context.Context, ids []int64) ([]int64, error)
	MaterialNames(ctx context.Context, ids []int64) (map[int64]string, error)

	ListProducts(ctx context.Context) ([]Product, error)
	GetProduct(ctx context.Context, id int64) (Product, bool, error)
	CreateProduct(ctx context.Context, p Product) (int64, error)
	UpdateProduct(ctx context.Context, p Product) error
	AdjustProductQuantity(ctx context.Context, id int64, delta int64) error
}

// Notifier delivers outbound messages.
type Notifier interface {
	Notify(ctx context.Context, to, subject, body string) error
	TryNotify(ctx context.Context, to, subject, body string) bool
}

// ServiceConfig carries stock tunables.
type ServiceConfig struct {
	// AlertRecipient receives low-stock alerts.
	AlertRecipient string
}

// Service manages stock levels and emits low-stock alerts.
type Service struct {
	repo     RepositoryPort
	notifier Notifier
	logger   *slog.Logger
	cfg      ServiceConfig
}

// NewService constructs stock service.
func NewService(repo RepositoryPort, notifier Notifier, logger *slog.Logger, cfg ServiceConfig) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, notifier: notifier, logger: logger, cfg: cfg}
}

// MaterialInput is the create/update payload for a raw material.
type MaterialInput struct {
	Name         string  `json:"name" validate:"required"`
	Quantity     int64   `json:"quantity" validate:"gte=0"`
	Description  string  `json:"description"`
	Category     string  `json:"category"`
	InternalCode string  `json:"internalCode"`
	Price        float64 `json:"price" validate:"gte=0"`
}

// ProductInput is the create/update payload for a product.
type ProductInput struct {
	Name              string  `json:"name" validate:"required"`
	Quantity          int64   `json:"quantity" validate:"gte=0"`
	Description       string  `json:"description"`
	InternalCode      string  `json:"internalCode"`
	Price             float64 `json:"price" validate:"gte=0"`
	ProductionOrderID *int64  `json:"productionOrderId,omitempty"`
}

func (s *Service) ListMaterials(ctx context.Context) ([]RawMaterial, error) {
	return s.repo.ListMaterials(ctx)
}

func (s *Service) GetMaterial(ctx context.Context, id int64) (RawMaterial, error) {
	if id <= 0 {
		return RawMaterial{}, ErrValidation
	}
	m, ok, err := s.repo.GetMaterial(ctx, id)
	if err != nil {
		return RawMaterial{}, err
	}
	if !ok {
		return RawMaterial{}, fmt.Errorf("%w: raw material %d", ErrNotFound, id)
	}
	return m, nil
}

func (s *Service) CreateMaterial(ctx context.Context, input MaterialInput) (RawMaterial, error) {
	if strings.TrimSpace(input.Name) == "" || input.Quantity < 0 || input.Price < 0 {
		return RawMaterial{}, ErrValidation
	}
	m := RawMaterial{
		Name:         strings.TrimSpace(input.Name),
		Quantity:     input.Quantity,
		Description:  input.Description,
		Category:     input.Category,
		InternalCode: input.InternalCode,
		Price:        input.Price,
	}
	id, err := s.repo.CreateMaterial(ctx, m)
	if err != nil {
		return RawMaterial{}, err
	}
	m.ID = id
	return m, nil
}

// UpdateMaterial replaces the material fields and runs the critical-stock
// check against the quantity it held before the update.
func (s *Service) UpdateMaterial(ctx context.Context, id int64, input MaterialInput) error {
	if id <= 0 {
		return ErrValidation
	}
	if strings.TrimSpace(input.Name) == "" || input.Quantity < 0 || input.Price < 0 {
		return ErrValidation
	}
	current, ok, err := s.repo.GetMaterial(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: raw material %d", ErrNotFound, id)
	}
	previous := current.Quantity
	current.Name = strings.TrimSpace(input.Name)
	current.Quantity = input.Quantity
	current.Description = input.Description
	current.Category = input.Category
	current.InternalCode = input.InternalCode
	current.Price = input.Price
	if err := s.repo.UpdateMaterial(ctx, current); err != nil {
		return err
	}
	if _, err := s.CheckCriticalMaterial(ctx, id, previous); err != nil {
		s.logger.Warn("critical stock check failed", slog.Int64("material_id", id), slog.Any("error", err))
	}
	return nil
}

func (s *Service) DeleteMaterial(ctx context.Context, id int64) error {
	if id <= 0 {
		return ErrValidation
	}
	return s.repo.DeleteMaterial(ctx, id)
}

// MissingIDs reports which of the given material ids do not exist.
func (s *Service) MissingIDs(ctx context.Context, ids []int64) ([]int64, error) {
	return s.repo.MissingMaterialIDs(ctx, ids)
}

// Names resolves material ids to display names.
func (s *Service) Names(ctx context.Context, ids []int64) (map[int64]string, error) {
	return s.repo.MaterialNames(ctx, ids)
}

// CheckCriticalMaterial alerts the stock owner when a material quantity
// dropped below the critical threshold. A missing material is a silent
// no-op. It returns the number of alerts sent.
func (s *Service) CheckCriticalMaterial(ctx context.Context, id int64, previous int64) (int, error) {
	if id <= 0 {
		return 0, ErrValidation
	}
	m, ok, err := s.repo.GetMaterial(ctx, id)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, nil
	}
	if m.Quantity >= criticalThreshold || m.Quantity >= previous {
		return 0, nil
	}
	subject := fmt.Sprintf("Low stock - %s", m.Name)
	body := fmt.Sprintf("Raw material %q is down to %d units in stock.", m.Name, m.Quantity)
	if err := s.notifier.Notify(ctx, s.cfg.AlertRecipient, subject, body); err != nil {
		return 0, err
	}
	return 1, nil
}

// CheckCriticalProduct mirrors CheckCriticalMaterial for finished products.
func (s *Service) CheckCriticalProduct(ctx context.Context, id int64, previous int64) (int, error) {
	if id <= 0 {
		return 0, ErrValidation
	}
	p, ok, err := s.repo.GetProduct(ctx, id)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, nil
	}
	if p.Quantity >= criticalThreshold || p.Quantity >= previous {
		return 0, nil
	}
	subject := fmt.Sprintf("Low stock - product %s", p.Name)
	body := fmt.Sprintf("Product %q is down to %d units in stock.", p.Name, p.Quantity)
	if err := s.notifier.Notify(ctx, s.cfg.AlertRecipient, subject, body); err != nil {
		return 0, err
	}
	return 1, nil
}

func (s *Service) ListProducts(ctx context.Context) ([]Product, error) {
	return s.repo.ListProducts(ctx)
}

func (s *Service) GetProduct(ctx context.Context, id int64) (Product, error) {
	if id <= 0 {
		return Product{}, ErrValidation
	}
	p, ok, err := s.repo.GetProduct(ctx, id)
	if err != nil {
		return Product{}, err
	}
	if !ok {
		return Product{}, fmt.Errorf("%w: product %d", ErrNotFound, id)
	}
	return p, nil
}

// ProductExists reports whether a product id is registered.
func (s *Service) ProductExists(ctx context.Context, id int64) (bool, error) {
	if id <= 0 {
		return false, nil
	}
	_, ok, err := s.repo.GetProduct(ctx, id)
	return ok, err
}

func (s *Service) CreateProduct(ctx context.Context, input ProductInput) (Product, error) {
	if strings.TrimSpace(input.Name) == "" || input.Quantity < 0 || input.Price < 0 {
		return Product{}, ErrValidation
	}
	p := Product{
		Name:              strings.TrimSpace(input.Name),
		Quantity:          input.Quantity,
		Description:       input.Description,
		InternalCode:      input.InternalCode,
		Price:             input.Price,
		ProductionOrderID: input.ProductionOrderID,
	}
	id, err := s.repo.CreateProduct(ctx, p)
	if err != nil {
		return Product{}, err
	}
	p.ID = id
	return p, nil
}

// UpdateProduct replaces the product fields and runs the critical-stock
// check against the prior quantity.
func (s *Service) UpdateProduct(ctx context.Context, id int64, input ProductInput) error {
	if id <= 0 {
		return ErrValidation
	}
	if strings.TrimSpace(input.Name) == "" || input.Quantity < 0 || input.Price < 0 {
		return ErrValidation
	}
	current, ok, err := s.repo.GetProduct(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: product %d", ErrNotFound, id)
	}
	previous := current.Quantity
	current.Name = strings.TrimSpace(input.Name)
	current.Quantity = input.Quantity
	current.Description = input.Description
	current.InternalCode = input.InternalCode
	current.Price = input.Price
	current.ProductionOrderID = input.ProductionOrderID
	if err := s.repo.UpdateProduct(ctx, current); err != nil {
		return err
	}
	if _, err := s.CheckCriticalProduct(ctx, id, previous); err != nil {
		s.logger.Warn("critical stock check failed", slog.Int64("product_id", id), slog.Any("error", err))
	}
	return nil
}

// AdjustProductQuantity applies a delta to a product's stock and runs the
// critical check afterwards.
func (s *Service) AdjustProductQuantity(ctx context.Context, id int64, delta int64) error {
	if id <= 0 {
		return ErrValidation
	}
	p, ok, err := s.repo.GetProduct(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: product %d", ErrNotFound, id)
	}
	if p.Quantity+delta < 0 {
		return fmt.Errorf("%w: product %d stock cannot go below zero", ErrConflict, id)
	}
	if err := s.repo.AdjustProductQuantity(ctx, id, delta); err != nil {
		return err
	}
	if _, err := s.CheckCriticalProduct(ctx, id, p.Quantity); err != nil {
		s.logger.Warn("critical stock check failed", slog.Int64("product_id", id), slog.Any("error", err))
	}
	return nil
}
