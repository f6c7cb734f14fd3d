package users

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/logiscontrol/logiscontrol/internal/auth"
)

// RepositoryPort defines data access methods for users.
type RepositoryPort interface {
	ListUsers(ctx context.Context) ([]User, error)
	GetUser(ctx context.Context, id int64) (User, bool, error)
	GetByEmployeeNumber(ctx context.Context, employeeNumber int) (User, bool, error)
	CreateUser(ctx context.Context, u User) (int64, error)
	UpdateUser(ctx context.Context, u User) error
}

// Service handles user business logic.
type Service struct {
	repo RepositoryPort
}

// NewService builds Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// CreateUserInput is the registration payload.
type CreateUserInput struct {
	FirstName      string `json:"firstName" validate:"required"`
	LastName       string `json:"lastName" validate:"required"`
	EmployeeNumber int    `json:"employeeNumber" validate:"required,gt=0"`
	Password       string `json:"password" validate:"required,min=6"`
	Role           string `json:"role" validate:"required"`
}

// UpdateUserInput modifies profile fields; password changes go through
// ResetPassword.
type UpdateUserInput struct {
	FirstName string `json:"firstName" validate:"required"`
	LastName  string `json:"lastName" validate:"required"`
	Role      string `json:"role" validate:"required"`
	Active    bool   `json:"active"`
}

// ListUsers returns all users.
func (s *Service) ListUsers(ctx context.Context) ([]User, error) {
	return s.repo.ListUsers(ctx)
}

// GetUser returns one user by id.
func (s *Service) GetUser(ctx context.Context, id int64) (User, error) {
	if id <= 0 {
		return User{}, ErrValidation
	}
	u, ok, err := s.repo.GetUser(ctx, id)
	if err != nil {
		return User{}, err
	}
	if !ok {
		return User{}, fmt.Errorf("%w: user %d", ErrNotFound, id)
	}
	return u, nil
}

// CreateUser registers a new account. Employee numbers are unique.
func (s *Service) CreateUser(ctx context.Context, input CreateUserInput) (User, error) {
	if strings.TrimSpace(input.FirstName) == "" || strings.TrimSpace(input.LastName) == "" ||
		input.EmployeeNumber <= 0 || strings.TrimSpace(input.Password) == "" || strings.TrimSpace(input.Role) == "" {
		return User{}, ErrValidation
	}
	if _, exists, err := s.repo.GetByEmployeeNumber(ctx, input.EmployeeNumber); err != nil {
		return User{}, err
	} else if exists {
		return User{}, ErrDuplicateNumber
	}
	hash, err := HashPassword(input.Password)
	if err != nil {
		return User{}, err
	}
	u := User{
		FirstName:      strings.TrimSpace(input.FirstName),
		LastName:       strings.TrimSpace(input.LastName),
		EmployeeNumber: input.EmployeeNumber,
		PasswordHash:   hash,
		Role:           input.Role,
		Active:         true,
	}
	id, err := s.repo.CreateUser(ctx, u)
	if err != nil {
		return User{}, err
	}
	u.ID = id
	return u, nil
}

// UpdateUser changes profile fields of an existing account.
func (s *Service) UpdateUser(ctx context.Context, id int64, input UpdateUserInput) error {
	if id <= 0 {
		return ErrValidation
	}
	if strings.TrimSpace(input.FirstName) == "" || strings.TrimSpace(input.LastName) == "" || strings.TrimSpace(input.Role) == "" {
		return ErrValidation
	}
	u, ok, err := s.repo.GetUser(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: user %d", ErrNotFound, id)
	}
	u.FirstName = strings.TrimSpace(input.FirstName)
	u.LastName = strings.TrimSpace(input.LastName)
	u.Role = input.Role
	u.Active = input.Active
	return s.repo.UpdateUser(ctx, u)
}

// ResetPassword replaces the password of the account behind an employee
// number.
func (s *Service) ResetPassword(ctx context.Context, employeeNumber int, newPassword string) error {
	if employeeNumber <= 0 || strings.TrimSpace(newPassword) == "" {
		return ErrValidation
	}
	u, ok, err := s.repo.GetByEmployeeNumber(ctx, employeeNumber)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: employee number %d", ErrNotFound, employeeNumber)
	}
	hash, err := HashPassword(newPassword)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return s.repo.UpdateUser(ctx, u)
}

// ByEmployeeNumber satisfies the auth user source.
func (s *Service) ByEmployeeNumber(ctx context.Context, employeeNumber int) (auth.Credential, bool, error) {
	u, ok, err := s.repo.GetByEmployeeNumber(ctx, employeeNumber)
	if err != nil || !ok {
		return auth.Credential{}, false, err
	}
	return auth.Credential{
		ID:             u.ID,
		EmployeeNumber: u.EmployeeNumber,
		Role:           u.Role,
		PasswordHash:   u.PasswordHash,
		Active:         u.Active,
	}, true, nil
}

// DisplayName resolves a user id to "First Last" for listings.
func (s *Service) DisplayName(ctx context.Context, id int64) (string, error) {
	u, ok, err := s.repo.GetUser(ctx, id)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", fmt.Errorf("%w: user %d", ErrNotFound, id)
	}
	return u.FirstName + " " + u.LastName, nil
}

// HashPassword hashes a password with bcrypt.
func HashPassword(password string) (string, error) {
	if strings.TrimSpace(password) == "" {
		return "", ErrValidation
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("users: hash password: %w", err)
	}
	return string(hash), nil
}
