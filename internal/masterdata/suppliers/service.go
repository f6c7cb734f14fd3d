package suppliers

import (
	"context"
	"fmt"
	"strings"

	"github.com/logiscontrol/logiscontrol/internal/masterdata/shared"
)

// RepositoryPort describes the supplier store.
type RepositoryPort interface {
	List(ctx context.Context, filters shared.ListFilters) ([]Supplier, int, error)
	Get(ctx context.Context, id int64) (Supplier, bool, error)
	Create(ctx context.Context, s Supplier) (int64, error)
	Update(ctx context.Context, s Supplier) error
}

// Service manages the supplier register.
type Service struct {
	repo RepositoryPort
}

// NewService constructs suppliers service.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// SupplierInput is the create and update payload.
type SupplierInput struct {
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email" validate:"omitempty,email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

// List returns suppliers with the total count for the current filter.
func (s *Service) List(ctx context.Context, filters shared.ListFilters) ([]Supplier, int, error) {
	return s.repo.List(ctx, filters)
}

// Get returns one supplier.
func (s *Service) Get(ctx context.Context, id int64) (Supplier, error) {
	if id <= 0 {
		return Supplier{}, fmt.Errorf("%w: supplier id must be positive", ErrValidation)
	}
	sup, ok, err := s.repo.Get(ctx, id)
	if err != nil {
		return Supplier{}, err
	}
	if !ok {
		return Supplier{}, fmt.Errorf("%w: supplier %d", ErrNotFound, id)
	}
	return sup, nil
}

// Create registers a supplier.
func (s *Service) Create(ctx context.Context, input SupplierInput) (Supplier, error) {
	sup, err := fromInput(input)
	if err != nil {
		return Supplier{}, err
	}
	id, err := s.repo.Create(ctx, sup)
	if err != nil {
		return Supplier{}, err
	}
	sup.ID = id
	return sup, nil
}

// Update replaces a supplier's contact data.
func (s *Service) Update(ctx context.Context, id int64, input SupplierInput) error {
	if id <= 0 {
		return fmt.Errorf("%w: supplier id must be positive", ErrValidation)
	}
	if _, ok, err := s.repo.Get(ctx, id); err != nil {
		return err
	} else if !ok {
		return fmt.Errorf("%w: supplier %d", ErrNotFound, id)
	}
	sup, err := fromInput(input)
	if err != nil {
		return err
	}
	sup.ID = id
	return s.repo.Update(ctx, sup)
}

func fromInput(input SupplierInput) (Supplier, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return Supplier{}, fmt.Errorf("%w: supplier name is required", ErrValidation)
	}
	return Supplier{
		Name:    name,
		Email:   strings.TrimSpace(input.Email),
		Phone:   strings.TrimSpace(input.Phone),
		Address: strings.TrimSpace(input.Address),
	}, nil
}
