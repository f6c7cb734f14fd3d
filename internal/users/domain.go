package users

import (
	"fmt"

	"github.com/logiscontrol/logiscontrol/internal/platform/httpx"
)

// User is an employee account.
type User struct {
	ID             int64  `json:"id"`
	FirstName      string `json:"firstName"`
	LastName       string `json:"lastName"`
	EmployeeNumber int    `json:"employeeNumber"`
	PasswordHash   string `json:"-"`
	Role           string `json:"role"`
	Active         bool   `json:"active"`
}

var (
	ErrNotFound        = fmt.Errorf("users: %w", httpx.ErrNotFound)
	ErrValidation      = fmt.Errorf("users: %w", httpx.ErrValidation)
	ErrDuplicateNumber = fmt.Errorf("users: employee number taken: %w", httpx.ErrConflict)
)
