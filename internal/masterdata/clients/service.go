package clients

import (
	"context"
	"fmt"
	"strings"

	"github.com/logiscontrol/logiscontrol/internal/masterdata/shared"
)

// RepositoryPort describes the client store.
type RepositoryPort interface {
	List(ctx context.Context, filters shared.ListFilters) ([]Client, int, error)
	Get(ctx context.Context, id int64) (Client, bool, error)
	GetByTaxNumber(ctx context.Context, taxNumber int64) (Client, bool, error)
	Create(ctx context.Context, c Client) (int64, error)
	Update(ctx context.Context, c Client) error
}

// Service manages the client register.
type Service struct {
	repo RepositoryPort
}

// NewService constructs clients service.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// ClientInput is the create and update payload.
type ClientInput struct {
	Name      string `json:"name" validate:"required"`
	TaxNumber int64  `json:"taxNumber" validate:"required,gt=0"`
	Address   string `json:"address"`
}

// List returns clients with the total count for the current filter.
func (s *Service) List(ctx context.Context, filters shared.ListFilters) ([]Client, int, error) {
	return s.repo.List(ctx, filters)
}

// GetByTaxNumber looks a client up by its fiscal number.
func (s *Service) GetByTaxNumber(ctx context.Context, taxNumber int64) (Client, error) {
	if taxNumber <= 0 {
		return Client{}, fmt.Errorf("%w: tax number must be positive", ErrValidation)
	}
	c, ok, err := s.repo.GetByTaxNumber(ctx, taxNumber)
	if err != nil {
		return Client{}, err
	}
	if !ok {
		return Client{}, fmt.Errorf("%w: client with tax number %d", ErrNotFound, taxNumber)
	}
	return c, nil
}

// Create registers a client. The tax number must be unique.
func (s *Service) Create(ctx context.Context, input ClientInput) (Client, error) {
	c, err := fromInput(input)
	if err != nil {
		return Client{}, err
	}
	if _, exists, err := s.repo.GetByTaxNumber(ctx, c.TaxNumber); err != nil {
		return Client{}, err
	} else if exists {
		return Client{}, fmt.Errorf("%w: %d", ErrDuplicateTaxNumber, c.TaxNumber)
	}
	id, err := s.repo.Create(ctx, c)
	if err != nil {
		return Client{}, err
	}
	c.ID = id
	return c, nil
}

// Update replaces a client's data. The tax number may change but must
// not collide with another client.
func (s *Service) Update(ctx context.Context, id int64, input ClientInput) error {
	if id <= 0 {
		return fmt.Errorf("%w: client id must be positive", ErrValidation)
	}
	if _, ok, err := s.repo.Get(ctx, id); err != nil {
		return err
	} else if !ok {
		return fmt.Errorf("%w: client %d", ErrNotFound, id)
	}
	c, err := fromInput(input)
	if err != nil {
		return err
	}
	if other, exists, err := s.repo.GetByTaxNumber(ctx, c.TaxNumber); err != nil {
		return err
	} else if exists && other.ID != id {
		return fmt.Errorf("%w: %d", ErrDuplicateTaxNumber, c.TaxNumber)
	}
	c.ID = id
	return s.repo.Update(ctx, c)
}

func fromInput(input ClientInput) (Client, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return Client{}, fmt.Errorf("%w: client name is required", ErrValidation)
	}
	if input.TaxNumber <= 0 {
		return Client{}, fmt.Errorf("%w: tax number must be positive", ErrValidation)
	}
	return Client{
		Name:      name,
		TaxNumber: input.TaxNumber,
		Address:   strings.TrimSpace(input.Address),
	}, nil
}
